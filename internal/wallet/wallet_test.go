package wallet

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"social-calling/internal/backend"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoinsToMinor(t *testing.T) {
	assert.Equal(t, int64(5000), CoinsToMinor(500))
	assert.Equal(t, int64(500), CoinsToMinor(50))
	assert.Zero(t, CoinsToMinor(0))
}

func TestFindPackage(t *testing.T) {
	p, err := FindPackage("2")
	require.NoError(t, err)
	assert.Equal(t, int64(550), p.TotalCoins())

	p, err = FindPackage(OfferPackageID)
	require.NoError(t, err)
	assert.True(t, p.Offer)
	assert.Equal(t, int64(700), p.TotalCoins())

	_, err = FindPackage("nope")
	assert.ErrorIs(t, err, ErrUnknownPackage)

	pkgs := Packages()
	pkgs[0].Coins = 1
	assert.Equal(t, int64(100), Packages()[0].Coins)
}

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(backend.New(backend.Config{BaseURL: srv.URL}, nil))
}

func TestClient_BuyPackage(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/wallet/purchase/", r.URL.Path)
		var req PurchaseRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, PurchaseRequest{Amount: 699, Coins: 1200}, req)
		_, _ = w.Write([]byte(`{"success":true,"payment_id":42}`))
	})
	p, _ := FindPackage("3")
	res, err := c.BuyPackage(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, int64(42), res.PaymentID)
}

func TestClient_PurchaseDeclined(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"success":false}`))
	})
	_, err := c.Purchase(context.Background(), 99, 100)
	assert.ErrorIs(t, err, ErrPurchaseDeclined)
}

func TestClient_WalletAndTransactions(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/wallet/":
			_, _ = w.Write([]byte(`{"id":1,"user":9,"coin_balance":1250,"total_earned":0,"total_spent":300,"updated_at":"2026-01-02T03:04:05Z"}`))
		case "/wallet/transactions/":
			_, _ = w.Write([]byte(`{"count":1,"next":null,"previous":null,"results":[{"id":3,"wallet":1,"transaction_type":"spent","amount":30,"description":"call"}]}`))
		default:
			http.NotFound(w, r)
		}
	})
	ctx := context.Background()
	wlt, err := c.GetWallet(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1250), wlt.CoinBalance)

	page, err := c.Transactions(ctx)
	require.NoError(t, err)
	require.Len(t, page.Results, 1)
	assert.Equal(t, TransactionSpent, page.Results[0].Type)
	assert.Nil(t, page.Next)
}
