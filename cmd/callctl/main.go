// Command callctl evaluates the calling rules offline: prices, withdrawal
// minimums, levels, leagues, nudge slots and the offer window.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
