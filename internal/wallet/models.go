package wallet

import "time"

// Wallet is the backend's view of the user's coins. Display only: the call
// path never reads it and nothing here is authoritative.
type Wallet struct {
	ID          int64     `json:"id"`
	User        int64     `json:"user"`
	CoinBalance int64     `json:"coin_balance"`
	TotalEarned int64     `json:"total_earned"`
	TotalSpent  int64     `json:"total_spent"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type TransactionType string

const (
	TransactionPurchase   TransactionType = "purchase"
	TransactionSpent      TransactionType = "spent"
	TransactionEarned     TransactionType = "earned"
	TransactionWithdrawal TransactionType = "withdrawal"
)

type Transaction struct {
	ID          int64           `json:"id"`
	Wallet      int64           `json:"wallet"`
	Type        TransactionType `json:"transaction_type"`
	Amount      int64           `json:"amount"`
	Description string          `json:"description"`
	CreatedAt   time.Time       `json:"created_at"`
}

// Page is the backend's paginated list envelope.
type Page[T any] struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

type PurchaseRequest struct {
	// Amount is the price in whole currency units.
	Amount int64 `json:"amount"`
	Coins  int64 `json:"coins"`
}

type PurchaseResult struct {
	Success   bool  `json:"success"`
	PaymentID int64 `json:"payment_id"`
}
