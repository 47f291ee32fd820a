package httpapi

import (
	"net/http"
	"strconv"

	"social-calling/internal/auth"
	"social-calling/internal/pricing"
	"social-calling/pkg/logger"

	"github.com/gin-gonic/gin"
)

func (h Handlers) AdminTariffs(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"tariffs": pricing.Tariffs()})
}

// AdminJournal lists recent advisory economic events. Reads are themselves
// journaled.
func (h Handlers) AdminJournal(c *gin.Context) {
	if h.Audit == nil {
		abort(c, http.StatusServiceUnavailable, "journal not configured")
		return
	}
	limit := 100
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > 1000 {
			abort(c, http.StatusBadRequest, "limit must be between 1 and 1000")
			return
		}
		limit = n
	}

	ctx := c.Request.Context()
	entries, err := h.Audit.Recent(ctx, limit)
	if err != nil {
		abort(c, http.StatusInternalServerError, "journal unavailable")
		return
	}
	actor, _ := auth.UserID(ctx)
	if err := h.Audit.LogAdminAction(ctx, actor, "journal read", ""); err != nil {
		logger.FromGin(c).Warn("journal read not recorded", "err", err)
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries})
}
