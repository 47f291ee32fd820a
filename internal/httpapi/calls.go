package httpapi

import (
	"net/http"
	"strconv"
	"strings"

	"social-calling/internal/calls"
	"social-calling/internal/pricing"

	"github.com/gin-gonic/gin"
)

type startCallRequest struct {
	Type         string `json:"type"`
	TargetID     string `json:"target_id,omitempty"`
	CalleeGender string `json:"callee_gender,omitempty"`
	CalleeLevel  *int   `json:"callee_level,omitempty"`
}

// StartCall prices and starts the session. A second start while one is
// active is not an error: the current session is returned with started=false.
func (h Handlers) StartCall(c *gin.Context) {
	if h.Calls == nil {
		abort(c, http.StatusInternalServerError, "calls not configured")
		return
	}
	id, ok := identity(c)
	if !ok {
		return
	}
	var req startCallRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, "invalid json")
		return
	}
	ct, ok := pricing.ParseCallType(req.Type)
	if !ok {
		abort(c, http.StatusBadRequest, "type must be one of voice, video, live")
		return
	}

	ctx := c.Request.Context()
	var callee pricing.CalleeMeta
	if req.TargetID != "" && h.Profiles != nil {
		callee = h.Profiles.CalleeMeta(ctx, req.TargetID)
	}
	// Body hints only fill what the profile lookup left unknown.
	if callee.Gender == pricing.GenderUnknown && req.CalleeGender != "" {
		callee.Gender = pricing.ParseGender(req.CalleeGender)
	}
	if callee.Level <= 0 && req.CalleeLevel != nil && *req.CalleeLevel > 0 {
		callee.Level = *req.CalleeLevel
	}

	s, started := h.Calls.StartCall(ctx, calls.StartRequest{Caller: id.Gender, Type: ct, Callee: callee})
	status := http.StatusCreated
	if !started {
		status = http.StatusOK
	}
	c.JSON(status, gin.H{"started": started, "session": s})
}

func (h Handlers) EndCall(c *gin.Context) {
	if h.Calls == nil {
		abort(c, http.StatusInternalServerError, "calls not configured")
		return
	}
	ended, wasActive := h.Calls.EndCall(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"ended": wasActive, "summary": ended})
}

func (h Handlers) ToggleMinimize(c *gin.Context) {
	if h.Calls == nil {
		abort(c, http.StatusInternalServerError, "calls not configured")
		return
	}
	c.JSON(http.StatusOK, h.Calls.ToggleMinimize())
}

func (h Handlers) CurrentCall(c *gin.Context) {
	if h.Calls == nil {
		abort(c, http.StatusInternalServerError, "calls not configured")
		return
	}
	c.JSON(http.StatusOK, h.Calls.Snapshot())
}

// Quote prices a hypothetical call for the caller right now.
func (h Handlers) Quote(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}
	ct, ok := pricing.ParseCallType(c.Query("type"))
	if !ok {
		abort(c, http.StatusBadRequest, "type must be one of voice, video, live")
		return
	}
	callee := pricing.CalleeMeta{Gender: pricing.ParseGender(c.Query("callee_gender"))}
	if v := strings.TrimSpace(c.Query("callee_level")); v != "" {
		lvl, err := strconv.Atoi(v)
		if err != nil || lvl < 0 {
			abort(c, http.StatusBadRequest, "callee_level must be a non-negative integer")
			return
		}
		callee.Level = lvl
	}

	now := h.now()
	var q pricing.Quote
	if h.Pricing != nil {
		q = h.Pricing.Quote(id.Gender, callee, ct, now)
	} else {
		q = pricing.QuoteAt(id.Gender, callee, ct, now)
	}
	c.JSON(http.StatusOK, gin.H{"quote": q, "rate_label": q.Window.Label(), "at": now})
}
