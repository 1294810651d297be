package backend

import "time"

// DepositRequest is the body POSTed to /deposits/webhook.
type DepositRequest struct {
	UserID    string  `json:"userId" validate:"required"`
	Currency  string  `json:"currency" validate:"required,len=3"`
	Amount    float64 `json:"amount" validate:"required,gt=0"`
	Reference string  `json:"reference" validate:"required"`
}

// Money is an amount in a currency or stablecoin.
type Money struct {
	Currency string  `json:"currency"`
	Amount   float64 `json:"amount"`
}

// Fx is the rate the backend applied.
type Fx struct {
	Rate      float64   `json:"rate"`
	Timestamp time.Time `json:"timestamp"`
}

// Deposit is the converted deposit reported by the backend.
type Deposit struct {
	ID        string `json:"id"`
	Status    string `json:"status"`
	From      *Money `json:"from,omitempty"`
	To        *Money `json:"to"`
	Fx        *Fx    `json:"fx"`
	Reference string `json:"reference,omitempty"`
	UserID    string `json:"userId,omitempty"`
}

// WebhookResponse wraps the deposit in a data envelope.
type WebhookResponse struct {
	Data *Deposit `json:"data"`
}

// StatusConverted is the only status accepted as success.
const StatusConverted = "converted"
