package domain

import "time"

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentSuccess PaymentStatus = "success"
	PaymentFailed  PaymentStatus = "failed"
)

func (s PaymentStatus) Valid() bool {
	return s == PaymentPending || s == PaymentSuccess || s == PaymentFailed
}

// PaymentMethodUPIUTR is a manual UPI transfer proven by its UTR reference.
const PaymentMethodUPIUTR = "UPI_UTR"

// Payment is an order for field access and the proof submitted against it.
type Payment struct {
	ID            string
	OrderID       string
	UserID        string
	FieldID       string
	Method        string
	AmountPaise   int64
	UTR           string
	ScreenshotKey string
	Status        PaymentStatus
	ReviewedBy    string
	ReviewedAt    *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// HasProof reports whether the payer has submitted a UTR.
func (p Payment) HasProof() bool { return p.UTR != "" }
