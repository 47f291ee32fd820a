// Package withdrawal computes the minimum coin balance a user needs before
// withdrawal is enabled. It is read-only and side-effect free.
package withdrawal

import (
	"time"

	"social-calling/internal/economy"
	"social-calling/internal/pricing"
)

const (
	topLevelMinimum    int64 = 200
	morningMinimum     int64 = 300
	standardMinimum    int64 = 500
	femaleBonusMinimum int64 = 50

	morningStartHour = 7
	morningEndHour   = 9

	newAccountDays = 14
)

type Input struct {
	Level          int
	Gender         pricing.Gender
	AccountAgeDays int
	Now            time.Time
}

// Rule names which branch produced the threshold.
type Rule string

const (
	RuleTopLevel    Rule = "top_level"
	RuleMorning     Rule = "morning_window"
	RuleStandard    Rule = "standard"
	RuleFemaleBonus Rule = "female_bonus"
)

// MinimumWithdraw returns the threshold in coins.
func MinimumWithdraw(in Input) int64 {
	n, _ := minimum(in)
	return n
}

func minimum(in Input) (int64, Rule) {
	n, rule := standardMinimum, RuleStandard
	switch h := in.Now.Hour(); {
	case in.Level >= economy.MaxLevel:
		n, rule = topLevelMinimum, RuleTopLevel
	case h >= morningStartHour && h < morningEndHour:
		n, rule = morningMinimum, RuleMorning
	}

	// Applied after the base rules and always wins for eligible users.
	if in.Gender == pricing.GenderFemale && (in.AccountAgeDays < newAccountDays || in.Now.Weekday() == time.Sunday) {
		n, rule = femaleBonusMinimum, RuleFemaleBonus
	}
	return n, rule
}

type Decision struct {
	MinimumCoins int64 `json:"minimum_coins"`
	Rule         Rule  `json:"rule"`
	BalanceCoins int64 `json:"balance_coins"`
	Eligible     bool  `json:"eligible"`
	// ShortfallCoins is how many more coins are needed; 0 when eligible.
	ShortfallCoins int64 `json:"shortfall_coins"`
}

// Evaluate compares balance against the threshold. Currency conversion is
// left to the caller.
func Evaluate(in Input, balanceCoins int64) Decision {
	n, rule := minimum(in)
	d := Decision{MinimumCoins: n, Rule: rule, BalanceCoins: balanceCoins}
	d.Eligible = balanceCoins >= n
	if !d.Eligible {
		d.ShortfallCoins = n - balanceCoins
	}
	return d
}

// AccountAgeDays counts whole days between joined and now. A zero or future
// join time yields 0.
func AccountAgeDays(joined, now time.Time) int {
	if joined.IsZero() || now.Before(joined) {
		return 0
	}
	return int(now.Sub(joined) / (24 * time.Hour))
}
