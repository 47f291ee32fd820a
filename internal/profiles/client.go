// Package profiles resolves callee metadata (gender, level) for pricing.
package profiles

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"social-calling/internal/backend"
	"social-calling/internal/pricing"
	"social-calling/pkg/logger"

	"github.com/tidwall/gjson"
)

var (
	ErrEmptyID     = errors.New("profiles: target id is required")
	ErrInvalidJSON = errors.New("profiles: response is not valid json")
)

type Client struct {
	api *backend.Client
	log *slog.Logger
}

func NewClient(api *backend.Client, log *slog.Logger) *Client {
	return &Client{api: api, log: logger.OrDefault(log)}
}

// Lookup fetches /profiles/<id>/ and extracts the pricing-relevant fields.
func (c *Client) Lookup(ctx context.Context, targetID string) (pricing.CalleeMeta, error) {
	targetID = strings.TrimSpace(targetID)
	if targetID == "" {
		return pricing.CalleeMeta{}, ErrEmptyID
	}
	b, err := c.api.Raw(ctx, http.MethodGet, "/profiles/"+url.PathEscape(targetID)+"/", nil)
	if err != nil {
		return pricing.CalleeMeta{}, fmt.Errorf("profiles: lookup %s: %w", targetID, err)
	}
	return ParseCalleeMeta(b)
}

// CalleeMeta never fails: any lookup error yields unknown metadata, which
// prices at the base rate.
func (c *Client) CalleeMeta(ctx context.Context, targetID string) pricing.CalleeMeta {
	m, err := c.Lookup(ctx, targetID)
	if err != nil {
		c.log.WarnContext(ctx, "callee metadata unavailable; using base rates", "target_id", targetID, "err", err)
		return pricing.CalleeMeta{}
	}
	return m
}

// ParseCalleeMeta reads gender and level from a profile document. Level may
// be top-level or nested under user_level. Unknown values stay zero.
func ParseCalleeMeta(b []byte) (pricing.CalleeMeta, error) {
	if !gjson.ValidBytes(b) {
		return pricing.CalleeMeta{}, ErrInvalidJSON
	}
	doc := gjson.ParseBytes(b)

	m := pricing.CalleeMeta{Gender: pricing.ParseGender(doc.Get("gender").String())}
	for _, path := range []string{"level", "user_level.level"} {
		if r := doc.Get(path); r.Exists() && r.Type == gjson.Number {
			if lvl := int(r.Int()); lvl > 0 {
				m.Level = lvl
				break
			}
		}
	}
	return m, nil
}
