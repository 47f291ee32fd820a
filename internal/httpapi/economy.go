package httpapi

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"social-calling/internal/economy"
	"social-calling/internal/leaderboard"
	"social-calling/internal/wallet"
	"social-calling/internal/withdrawal"

	"github.com/gin-gonic/gin"
)

func (h Handlers) Economy(c *gin.Context) {
	if h.Ledger == nil {
		abort(c, http.StatusInternalServerError, "ledger not configured")
		return
	}
	st := h.Ledger.State()
	c.JSON(http.StatusOK, gin.H{
		"state":    st,
		"progress": economy.ProgressFor(st),
		"standing": leaderboard.StandingFor(st.XP),
	})
}

// WithdrawalMinimum evaluates the caller's threshold. balance is optional;
// without it the wallet backend is asked, and failing that 0 is assumed.
func (h Handlers) WithdrawalMinimum(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	now := h.now()
	level := 1
	if h.Ledger != nil {
		level = h.Ledger.State().Level
	}

	var balance int64
	balanceSource := "none"
	if v := strings.TrimSpace(c.Query("balance")); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n < 0 {
			abort(c, http.StatusBadRequest, "balance must be a non-negative integer")
			return
		}
		balance, balanceSource = n, "query"
	} else if h.Wallet != nil {
		if w, err := h.Wallet.GetWallet(c.Request.Context()); err == nil {
			balance, balanceSource = w.CoinBalance, "wallet"
		}
	}

	d := withdrawal.Evaluate(withdrawal.Input{
		Level:          level,
		Gender:         id.Gender,
		AccountAgeDays: withdrawal.AccountAgeDays(id.JoinedAt, now),
		Now:            now,
	}, balance)

	c.JSON(http.StatusOK, gin.H{
		"decision":       d,
		"minimum_minor":  wallet.CoinsToMinor(d.MinimumCoins),
		"balance_minor":  wallet.CoinsToMinor(d.BalanceCoins),
		"balance_source": balanceSource,
	})
}

type rankRequest struct {
	Entries []leaderboard.Entry `json:"entries"`
}

func (h Handlers) RankLeaderboard(c *gin.Context) {
	var req rankRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, "invalid json")
		return
	}
	for _, e := range req.Entries {
		if e.ID == "" || e.Points < 0 {
			abort(c, http.StatusBadRequest, "each entry needs an id and non-negative points")
			return
		}
	}
	ranked := leaderboard.Rank(req.Entries)
	c.JSON(http.StatusOK, gin.H{"ranked": ranked, "summary": leaderboard.Summarize(ranked)})
}

func (h Handlers) Board(c *gin.Context) {
	if h.Leaderboard == nil {
		abort(c, http.StatusServiceUnavailable, "leaderboard not configured")
		return
	}
	ranked, sum, err := h.Leaderboard.Board(c.Request.Context())
	if err != nil {
		if errors.Is(err, leaderboard.ErrSourceNotConfigured) {
			abort(c, http.StatusServiceUnavailable, "leaderboard not configured")
			return
		}
		abortBackend(c, "leaderboard", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ranked": ranked, "summary": sum})
}
