package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"social-calling/internal/audit"
	"social-calling/internal/auth"
	"social-calling/internal/backend"
	"social-calling/internal/calls"
	"social-calling/internal/economy"
	"social-calling/internal/leaderboard"
	"social-calling/internal/offers"
	"social-calling/internal/pricing"
	"social-calling/internal/wallet"
	"social-calling/pkg/logger"

	"github.com/gin-gonic/gin"
)

// WalletAPI is the subset of the backend wallet the handlers use.
type WalletAPI interface {
	GetWallet(ctx context.Context) (wallet.Wallet, error)
	BuyPackage(ctx context.Context, p wallet.Package) (wallet.PurchaseResult, error)
}

// CalleeResolver looks up pricing metadata for a call target. It never fails.
type CalleeResolver interface {
	CalleeMeta(ctx context.Context, targetID string) pricing.CalleeMeta
}

// Handlers groups HTTP handlers for dependency injection.
// Keep these thin: parse/validate input, call internal services, return JSON.
type Handlers struct {
	Auth        *auth.Manager
	Calls       *calls.Manager
	Pricing     *pricing.Service
	Ledger      *economy.Ledger
	Offers      *offers.Tracker
	Wallet      WalletAPI
	Profiles    CalleeResolver
	Leaderboard *leaderboard.Service
	Audit       *audit.Service
	Events      http.Handler

	// Clock must return times in the product's location.
	Clock func() time.Time
}

func (h Handlers) now() time.Time {
	if h.Clock != nil {
		return h.Clock()
	}
	return time.Now()
}

func abort(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}

// abortBackend maps collaborator failures to 502 and keeps the cause in logs.
func abortBackend(c *gin.Context, op string, err error) {
	logger.FromGin(c).WarnContext(c.Request.Context(), "backend call failed", "op", op, "err", err)
	var se *backend.StatusError
	switch {
	case errors.Is(err, backend.ErrNotConfigured):
		abort(c, http.StatusServiceUnavailable, "backend not configured")
	case errors.As(err, &se) && se.Code == http.StatusUnauthorized:
		abort(c, http.StatusUnauthorized, "backend rejected credentials")
	default:
		abort(c, http.StatusBadGateway, op+" failed")
	}
}

func identity(c *gin.Context) (auth.Identity, bool) {
	id, err := auth.IdentityFrom(c.Request.Context())
	if err != nil {
		abort(c, http.StatusUnauthorized, "identity required")
		return auth.Identity{}, false
	}
	return id, true
}

// --- Auth ---

type devLoginRequest struct {
	UserID   string `json:"user_id"`
	Gender   string `json:"gender"`
	JoinedAt string `json:"joined_at"` // RFC 3339, optional
	Role     string `json:"role"`
}

// DevLogin issues a token pair without credentials. Registered outside
// production only; real tokens come from the backend.
func (h Handlers) DevLogin(c *gin.Context) {
	if h.Auth == nil {
		abort(c, http.StatusInternalServerError, "auth not configured")
		return
	}
	var req devLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, "invalid json")
		return
	}
	if req.UserID == "" || req.Role == "" {
		abort(c, http.StatusBadRequest, "user_id and role required")
		return
	}
	id := auth.Identity{UserID: req.UserID, Gender: pricing.ParseGender(req.Gender), Role: req.Role}
	if req.JoinedAt != "" {
		t, err := time.Parse(time.RFC3339, req.JoinedAt)
		if err != nil {
			abort(c, http.StatusBadRequest, "joined_at must be RFC 3339")
			return
		}
		id.JoinedAt = t
	}
	pair, err := h.Auth.IssuePair(time.Now(), id)
	if err != nil {
		abort(c, http.StatusInternalServerError, "token issuance failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"access_token": pair.AccessToken, "refresh_token": pair.RefreshToken})
}

func (h Handlers) Me(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"user_id": id.UserID, "gender": id.Gender, "joined_at": id.JoinedAt, "role": id.Role})
}

// EventsStream upgrades to the websocket notification stream.
func (h Handlers) EventsStream(c *gin.Context) {
	if h.Events == nil {
		abort(c, http.StatusServiceUnavailable, "event stream not configured")
		return
	}
	h.Events.ServeHTTP(c.Writer, c.Request)
}
