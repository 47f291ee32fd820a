package httpapi

import (
	"context"
	"errors"
	"net/http"

	"social-calling/internal/offers"
	"social-calling/internal/wallet"

	"github.com/gin-gonic/gin"
)

func (h Handlers) OfferStatus(c *gin.Context) {
	if h.Offers == nil {
		abort(c, http.StatusInternalServerError, "offers not configured")
		return
	}
	st, err := h.Offers.Status(c.Request.Context(), h.now())
	if err != nil {
		abort(c, http.StatusInternalServerError, "offer status unavailable")
		return
	}
	c.JSON(http.StatusOK, st)
}

func (h Handlers) ClaimOffer(c *gin.Context) {
	h.applyOffer(c)
}

// applyOffer runs the throttled purchase. The wallet buy happens inside the
// tracker's check-then-record so a failed payment does not use up a claim.
func (h Handlers) applyOffer(c *gin.Context) {
	if h.Offers == nil {
		abort(c, http.StatusInternalServerError, "offers not configured")
		return
	}
	var result wallet.PurchaseResult
	var buy offers.Purchase
	if h.Wallet != nil {
		buy = func(ctx context.Context, p wallet.Package) error {
			r, err := h.Wallet.BuyPackage(ctx, p)
			result = r
			return err
		}
	}

	st, err := h.Offers.Apply(c.Request.Context(), h.now(), buy)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"status": st, "purchase": result})
	case errors.Is(err, offers.ErrOutsideWindow), errors.Is(err, offers.ErrDailyLimit):
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": err.Error(), "status": st})
	case errors.Is(err, wallet.ErrPurchaseDeclined):
		c.AbortWithStatusJSON(http.StatusPaymentRequired, gin.H{"error": "payment failed", "status": st})
	default:
		abortBackend(c, "offer purchase", err)
	}
}

func (h Handlers) Packages(c *gin.Context) {
	out := gin.H{"packages": wallet.Packages()}
	if h.Offers != nil {
		if st, err := h.Offers.Status(c.Request.Context(), h.now()); err == nil {
			out["offer"] = st
		}
	}
	c.JSON(http.StatusOK, out)
}

type purchaseRequest struct {
	PackageID string `json:"package_id"`
}

func (h Handlers) Purchase(c *gin.Context) {
	var req purchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, "invalid json")
		return
	}
	p, err := wallet.FindPackage(req.PackageID)
	if err != nil {
		abort(c, http.StatusBadRequest, "unknown package")
		return
	}
	if p.Offer {
		h.applyOffer(c)
		return
	}
	if h.Wallet == nil {
		abort(c, http.StatusServiceUnavailable, "wallet not configured")
		return
	}
	res, err := h.Wallet.BuyPackage(c.Request.Context(), p)
	if errors.Is(err, wallet.ErrPurchaseDeclined) {
		abort(c, http.StatusPaymentRequired, "payment failed")
		return
	}
	if err != nil {
		abortBackend(c, "purchase", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"package": p, "purchase": res})
}

// WalletBalance returns the backend balance for display only.
func (h Handlers) WalletBalance(c *gin.Context) {
	if h.Wallet == nil {
		abort(c, http.StatusServiceUnavailable, "wallet not configured")
		return
	}
	w, err := h.Wallet.GetWallet(c.Request.Context())
	if err != nil {
		abortBackend(c, "wallet", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"wallet": w, "balance_minor": wallet.CoinsToMinor(w.CoinBalance)})
}
