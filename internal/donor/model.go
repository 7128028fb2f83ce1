package donor

import (
	"time"

	"github.com/sharath018/donor-backoffice-backend/internal/ledger"
)

// ListQuery selects a page of donors.
type ListQuery struct {
	Search  string
	Country string
	Page    int
	Limit   int
}

// TransactionQuery selects a page of one donor's transactions.
type TransactionQuery struct {
	// ReportableOnly keeps Completed and pending transactions.
	ReportableOnly bool
	Page           int
	Limit          int
}

func normalizePage(page, limit int) (int, int) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return page, limit
}

func totalPages(total int64, limit int) int {
	return int((total + int64(limit) - 1) / int64(limit))
}

// GivingSummary aggregates a donor's reportable transactions.
type GivingSummary struct {
	GiftCount   int64      `json:"gift_count"`
	TotalGiven  float64    `json:"total_given"`
	AverageGift float64    `json:"average_gift"`
	FirstGiftAt *time.Time `json:"first_gift_at"`
	LastGiftAt  *time.Time `json:"last_gift_at"`
}

// Profile is a donor with their giving summary.
type Profile struct {
	ledger.Donor
	FullName string        `json:"full_name"`
	Giving   GivingSummary `json:"giving"`
}

// TransactionView is one transaction in a donor's history.
type TransactionView struct {
	ID            uint                       `json:"id"`
	OrderID       string                     `json:"order_id"`
	TotalAmount   float64                    `json:"total_amount"`
	Currency      string                     `json:"currency"`
	PaymentMethod string                     `json:"payment_method"`
	Status        string                     `json:"status"`
	Reportable    bool                       `json:"reportable"`
	Recurring     bool                       `json:"recurring"`
	Renewal       bool                       `json:"renewal"`
	CreatedAt     time.Time                  `json:"created_at"`
	Details       []ledger.TransactionDetail `json:"details"`
}

type PaginatedDonors struct {
	Data       []ledger.Donor `json:"data"`
	Total      int64          `json:"total"`
	Page       int            `json:"page"`
	Limit      int            `json:"limit"`
	TotalPages int            `json:"total_pages"`
}

type PaginatedTransactions struct {
	Data       []TransactionView `json:"data"`
	Total      int64             `json:"total"`
	Page       int               `json:"page"`
	Limit      int               `json:"limit"`
	TotalPages int               `json:"total_pages"`
}
