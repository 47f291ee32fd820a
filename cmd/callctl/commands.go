package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"social-calling/internal/config"
	"social-calling/internal/economy"
	"social-calling/internal/leaderboard"
	"social-calling/internal/pricing"
	"social-calling/internal/wallet"
	"social-calling/internal/withdrawal"

	"github.com/spf13/cobra"
)

type rootFlags struct {
	at        string
	timezone  string
	overrides string
}

func newRootCmd() *cobra.Command {
	f := &rootFlags{}
	root := &cobra.Command{
		Use:           "callctl",
		Short:         "Evaluate social calling rules offline",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&f.at, "at", "", "Evaluate at this time (RFC 3339 or HH:MM today); default now")
	root.PersistentFlags().StringVar(&f.timezone, "tz", "Local", "IANA zone for day/night and slot windows")
	root.PersistentFlags().StringVar(&f.overrides, "overrides", "", "TOML overrides file (nudge windows, offer policy)")

	root.AddCommand(
		newQuoteCmd(f),
		newTariffsCmd(),
		newWithdrawMinCmd(f),
		newLevelCmd(),
		newLeagueCmd(),
		newNudgeCmd(f),
		newOfferCmd(f),
	)
	return root
}

// now resolves --at in --tz.
func (f *rootFlags) now() (time.Time, error) {
	loc, err := time.LoadLocation(f.timezone)
	if err != nil {
		return time.Time{}, fmt.Errorf("--tz: %w", err)
	}
	base := time.Now().In(loc)
	if f.at == "" {
		return base, nil
	}
	if t, err := time.ParseInLocation(time.RFC3339, f.at, loc); err == nil {
		return t.In(loc), nil
	}
	hm, err := time.Parse("15:04", f.at)
	if err != nil {
		return time.Time{}, fmt.Errorf("--at must be RFC 3339 or HH:MM, got %q", f.at)
	}
	return time.Date(base.Year(), base.Month(), base.Day(), hm.Hour(), hm.Minute(), 0, 0, loc), nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newQuoteCmd(f *rootFlags) *cobra.Command {
	var callType, caller, calleeGender string
	var calleeLevel int
	cmd := &cobra.Command{
		Use:   "quote",
		Short: "Price a call per minute",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ct, ok := pricing.ParseCallType(callType)
			if !ok {
				return fmt.Errorf("--type must be one of voice, video, live")
			}
			now, err := f.now()
			if err != nil {
				return err
			}
			q := pricing.QuoteAt(pricing.ParseGender(caller), pricing.CalleeMeta{
				Gender: pricing.ParseGender(calleeGender),
				Level:  calleeLevel,
			}, ct, now)
			return writeJSON(cmd.OutOrStdout(), map[string]any{"quote": q, "rate_label": q.Window.Label(), "at": now})
		},
	}
	cmd.Flags().StringVar(&callType, "type", "voice", "voice, video or live")
	cmd.Flags().StringVar(&caller, "caller", "M", "caller gender (M, F, O)")
	cmd.Flags().StringVar(&calleeGender, "callee-gender", "", "callee gender")
	cmd.Flags().IntVar(&calleeLevel, "callee-level", 0, "callee level (0 = unknown)")
	return cmd
}

func newTariffsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tariffs",
		Short: "Print the rate card",
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "%-6s %-6s %-5s %s\n", "TYPE", "WINDOW", "STAR", "COINS/MIN")
			for _, t := range pricing.Tariffs() {
				fmt.Fprintf(w, "%-6s %-6s %-5t %d\n", t.Type, t.Window, t.Star, t.CostPerMinute)
			}
			return nil
		},
	}
}

func newWithdrawMinCmd(f *rootFlags) *cobra.Command {
	var (
		level   int
		gender  string
		joined  string
		balance int64
	)
	cmd := &cobra.Command{
		Use:   "withdraw-min",
		Short: "Evaluate the minimum withdrawal",
		RunE: func(cmd *cobra.Command, _ []string) error {
			now, err := f.now()
			if err != nil {
				return err
			}
			var joinedAt time.Time
			if joined != "" {
				joinedAt, err = time.ParseInLocation(time.DateOnly, joined, now.Location())
				if err != nil {
					return fmt.Errorf("--joined must be YYYY-MM-DD: %w", err)
				}
			}
			d := withdrawal.Evaluate(withdrawal.Input{
				Level:          level,
				Gender:         pricing.ParseGender(gender),
				AccountAgeDays: withdrawal.AccountAgeDays(joinedAt, now),
				Now:            now,
			}, balance)
			return writeJSON(cmd.OutOrStdout(), map[string]any{
				"decision":      d,
				"minimum_minor": wallet.CoinsToMinor(d.MinimumCoins),
			})
		},
	}
	cmd.Flags().IntVar(&level, "level", 1, "user level")
	cmd.Flags().StringVar(&gender, "gender", "", "user gender (M, F, O)")
	cmd.Flags().StringVar(&joined, "joined", "", "account creation date, YYYY-MM-DD")
	cmd.Flags().Int64Var(&balance, "balance", 0, "coin balance")
	return cmd
}

func newLevelCmd() *cobra.Command {
	var xp int64
	cmd := &cobra.Command{
		Use:   "level",
		Short: "Level and progress for an XP total",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if xp < 0 {
				return fmt.Errorf("--xp must be non-negative")
			}
			st := economy.State{XP: xp, Level: economy.LevelForXP(xp)}
			return writeJSON(cmd.OutOrStdout(), economy.ProgressFor(st))
		},
	}
	cmd.Flags().Int64Var(&xp, "xp", 0, "total XP")
	return cmd
}

func newLeagueCmd() *cobra.Command {
	var points int64
	cmd := &cobra.Command{
		Use:   "league",
		Short: "League standing for a points total",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if points < 0 {
				return fmt.Errorf("--points must be non-negative")
			}
			return writeJSON(cmd.OutOrStdout(), leaderboard.StandingFor(points))
		},
	}
	cmd.Flags().Int64Var(&points, "points", 0, "leaderboard points")
	return cmd
}

func newNudgeCmd(f *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "nudge",
		Short: "Which engagement slot is open",
		RunE: func(cmd *cobra.Command, _ []string) error {
			now, err := f.now()
			if err != nil {
				return err
			}
			o, err := config.LoadOverrides(f.overrides)
			if err != nil {
				return err
			}
			ws, err := o.NudgeWindows()
			if err != nil {
				return err
			}
			slot, ok := ws.SlotAt(now)
			out := map[string]any{"at": now, "open": ok}
			if ok {
				out["slot"] = slot
				out["message_key"] = slot.MessageKey()
			}
			return writeJSON(cmd.OutOrStdout(), out)
		},
	}
}

func newOfferCmd(f *rootFlags) *cobra.Command {
	var claimed int64
	cmd := &cobra.Command{
		Use:   "offer",
		Short: "Offer window and remaining claims",
		RunE: func(cmd *cobra.Command, _ []string) error {
			now, err := f.now()
			if err != nil {
				return err
			}
			o, err := config.LoadOverrides(f.overrides)
			if err != nil {
				return err
			}
			p, err := o.OfferPolicy()
			if err != nil {
				return err
			}
			in := p.InWindow(now)
			remaining := max(p.DailyLimit-claimed, 0)
			return writeJSON(cmd.OutOrStdout(), map[string]any{
				"in_window": in,
				"window":    strings.Join([]string{fmt.Sprintf("%02d:00", p.StartHour), fmt.Sprintf("%02d:00", p.EndHour)}, "-"),
				"remaining": remaining,
				"can_claim": in && remaining > 0,
				"offer":     wallet.OfferPackage(),
			})
		},
	}
	cmd.Flags().Int64Var(&claimed, "claimed", 0, "claims already made today")
	return cmd
}
