package ledger

import (
	"strings"
	"time"
)

// Transaction statuses that count as revenue everywhere in reporting.
const (
	StatusCompleted = "Completed"
	StatusPending   = "pending"
)

// ReportableStatuses is the status set used by every report.
var ReportableStatuses = []string{StatusCompleted, StatusPending}

// Recurrence codes carried on transaction detail lines.
const (
	FrequencyOneTime = 0
	FrequencyMonthly = 1
	FrequencyYearly  = 2
	FrequencyDaily   = 3
	FrequencyWeekly  = 4
)

// RenewalOrderMarker appears in the order id of a recurring plan's renewal
// charges. First charges of a plan do not carry it.
const RenewalOrderMarker = "-renewal"

// Schedule statuses and frequency labels.
const (
	ScheduleActive = "ACTIVE"

	CadenceMonthly = "MONTHLY"
	CadenceWeekly  = "WEEKLY"
	CadenceDaily   = "DAILY"
	CadenceYearly  = "YEARLY"
)

// Transaction is one payment event.
type Transaction struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	DonorID       *uint     `gorm:"index" json:"donor_id"`
	Email         string    `gorm:"size:255;index" json:"email"`
	TotalAmount   float64   `gorm:"type:numeric(12,2);not null" json:"total_amount"`
	Currency      string    `gorm:"size:8" json:"currency"`
	PaymentMethod string    `gorm:"size:50" json:"payment_method"`
	Status        string    `gorm:"size:20;index" json:"status"`
	OrderID       string    `gorm:"size:120" json:"order_id"`
	CreatedAt     time.Time `gorm:"index" json:"created_at"`

	Details []TransactionDetail `gorm:"foreignKey:TransactionID" json:"details,omitempty"`
}

func (Transaction) TableName() string {
	return "transactions"
}

// Reportable reports whether the transaction counts as revenue.
func (t Transaction) Reportable() bool {
	return t.Status == StatusCompleted || t.Status == StatusPending
}

// IsRenewal reports whether the order id carries the renewal marker.
func (t Transaction) IsRenewal() bool {
	return strings.Contains(t.OrderID, RenewalOrderMarker)
}

// MaxFrequency is the highest recurrence code among the detail lines.
func (t Transaction) MaxFrequency() int {
	max := FrequencyOneTime
	for _, d := range t.Details {
		if d.Frequency > max {
			max = d.Frequency
		}
	}
	return max
}

// TransactionDetail is one appeal/fund/amount line of a transaction.
type TransactionDetail struct {
	ID            uint    `gorm:"primaryKey" json:"id"`
	TransactionID uint    `gorm:"index;not null" json:"transaction_id"`
	AppealID      uint    `gorm:"index" json:"appeal_id"`
	FundID        *uint   `gorm:"index" json:"fund_id"`
	AmountID      *uint   `json:"amount_id"`
	Quantity      int     `json:"quantity"`
	Amount        float64 `gorm:"type:numeric(12,2)" json:"amount"`
	Frequency     int     `gorm:"not null;default:0" json:"frequency"`
}

func (TransactionDetail) TableName() string {
	return "transaction_details"
}

// Donor is a giver; transactions reference it by id or, for older rows, by email.
type Donor struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	FirstName string    `gorm:"size:100" json:"first_name"`
	LastName  string    `gorm:"size:100" json:"last_name"`
	Email     string    `gorm:"size:255;index" json:"email"`
	Phone     string    `gorm:"size:40" json:"phone"`
	Country   string    `gorm:"size:2" json:"country"`
	CreatedAt time.Time `json:"created_at"`
}

func (Donor) TableName() string {
	return "donors"
}

// FullName joins first and last name, falling back to the email.
func (d Donor) FullName() string {
	name := strings.TrimSpace(d.FirstName + " " + d.LastName)
	if name == "" {
		return d.Email
	}
	return name
}

// Schedule is a recurring giving plan.
type Schedule struct {
	ID                   uint       `gorm:"primaryKey" json:"id"`
	DonorID              *uint      `gorm:"index" json:"donor_id"`
	AppealID             *uint      `gorm:"index" json:"appeal_id"`
	FundID               *uint      `gorm:"index" json:"fund_id"`
	StartDate            time.Time  `gorm:"type:date;index" json:"start_date"`
	NextRunDate          *time.Time `json:"next_run_date"`
	RemainingOccurrences int        `json:"remaining_occurrences"`
	TotalOccurrences     int        `json:"total_occurrences"`
	Frequency            string     `gorm:"size:16" json:"frequency"`
	Amount               float64    `gorm:"type:numeric(12,2)" json:"amount"`
	Status               string     `gorm:"size:20;index" json:"status"`
	PlanID               *string    `gorm:"size:120" json:"plan_id"`
	SubscriptionID       *string    `gorm:"size:120" json:"subscription_id"`
}

func (Schedule) TableName() string {
	return "schedules"
}

// Valid reports whether both external identifiers are present.
func (s Schedule) Valid() bool {
	return s.PlanID != nil && strings.TrimSpace(*s.PlanID) != "" &&
		s.SubscriptionID != nil && strings.TrimSpace(*s.SubscriptionID) != ""
}

// Active reports whether the plan is valid and in ACTIVE status.
func (s Schedule) Active() bool {
	return s.Valid() && strings.EqualFold(s.Status, ScheduleActive)
}

// CancellationEvent records a plan being canceled.
type CancellationEvent struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	ScheduleID uint      `gorm:"index" json:"schedule_id"`
	CanceledAt time.Time `gorm:"index" json:"canceled_at"`
}

func (CancellationEvent) TableName() string {
	return "cancellation_events"
}

// Names maps ids to display names for appeals or funds.
type Names map[uint]string
