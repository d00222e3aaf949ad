package domain

import "time"

// PaymentStatus enumerates payment lifecycle states.
type PaymentStatus string

const (
	PaymentStatusPosted    PaymentStatus = "posted"
	PaymentStatusCancelled PaymentStatus = "cancelled"
)

// Payment is a posted collection against a case balance. Once cancelled a
// payment is immutable.
type Payment struct {
	ID          string
	CaseID      string
	Amount      float64
	Method      string
	Date        time.Time
	Status      PaymentStatus
	Note        string
	Metadata    map[string]any
	CreatedBy   string
	CancelledAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Cancellation is the append-only reversal record for a cancelled payment.
// It exists in 1:1 correspondence with a successfully cancelled payment.
type Cancellation struct {
	ID        string
	PaymentID string
	CaseID    string
	Amount    float64
	Reason    string
	CreatedBy string
	CreatedAt time.Time
}
