package wallet

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"social-calling/internal/backend"
)

var ErrPurchaseDeclined = errors.New("wallet: purchase declined")

// Client talks to the backend wallet. The backend owns the balance and the
// transaction ledger.
type Client struct {
	api *backend.Client
}

func NewClient(api *backend.Client) *Client {
	return &Client{api: api}
}

func (c *Client) GetWallet(ctx context.Context) (Wallet, error) {
	var w Wallet
	if err := c.api.Do(ctx, http.MethodGet, "/wallet/", nil, &w); err != nil {
		return Wallet{}, err
	}
	return w, nil
}

func (c *Client) Transactions(ctx context.Context) (Page[Transaction], error) {
	var p Page[Transaction]
	if err := c.api.Do(ctx, http.MethodGet, "/wallet/transactions/", nil, &p); err != nil {
		return Page[Transaction]{}, err
	}
	return p, nil
}

// Purchase buys coins for amount (whole currency units). A response with
// success=false is reported as ErrPurchaseDeclined.
func (c *Client) Purchase(ctx context.Context, amount, coins int64) (PurchaseResult, error) {
	if amount <= 0 || coins <= 0 {
		return PurchaseResult{}, fmt.Errorf("wallet: amount and coins must be positive")
	}
	var res PurchaseResult
	if err := c.api.Do(ctx, http.MethodPost, "/wallet/purchase/", PurchaseRequest{Amount: amount, Coins: coins}, &res); err != nil {
		return PurchaseResult{}, err
	}
	if !res.Success {
		return res, ErrPurchaseDeclined
	}
	return res, nil
}

// BuyPackage purchases p for its price and total coins.
func (c *Client) BuyPackage(ctx context.Context, p Package) (PurchaseResult, error) {
	return c.Purchase(ctx, p.Price, p.TotalCoins())
}
