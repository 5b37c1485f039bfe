package order

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Payment methods accepted at checkout. Anything unrecognized is treated as
// a bank transfer, matching the storefront's default.
const (
	PaymentBankTransfer = "bank_transfer"
	PaymentCash         = "cash"
)

// NormalizePaymentMethod lowercases the submitted method and falls back to
// bank transfer when the field is absent.
func NormalizePaymentMethod(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return PaymentBankTransfer
	}
	return s
}

// Line is one cart line snapshotted into an order at submit time.
type Line struct {
	ID       string          `json:"id,omitempty"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Category string          `json:"category"`
	Quantity int             `json:"quantity"`
}

// Subtotal returns price × quantity for the line.
func (l Line) Subtotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Record is an accepted order: the validated request plus the payment-proof
// reference and the acceptance timestamp. PaymentProofPath is the transient
// on-disk location of the uploaded proof and is never serialized.
type Record struct {
	CustomerName     string          `json:"customerName"`
	Phone            string          `json:"phone"`
	Address          string          `json:"address"`
	Note             string          `json:"note"`
	Items            []Line          `json:"items"`
	Total            decimal.Decimal `json:"total"`
	PaymentMethod    string          `json:"paymentMethod"`
	PaymentProof     string          `json:"paymentProof,omitempty"`
	PaymentProofPath string          `json:"-"`
	Timestamp        time.Time       `json:"timestamp"`
}
