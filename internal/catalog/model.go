package catalog

import (
	"time"

	"github.com/go-playground/validator/v10"
	"gorm.io/datatypes"
)

var validate = validator.New()

// ======================
// Catalog models
// ======================

// Category groups appeals for display.
type Category struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(120);uniqueIndex;not null" json:"name" validate:"required,min=1,max=120"`
	Sort      int       `gorm:"default:0" json:"sort"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Category) TableName() string { return "categories" }

// Country is a donor country supported by the back office.
type Country struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Code      string    `gorm:"type:varchar(2);uniqueIndex;not null" json:"code" validate:"required,len=2,alpha"`
	Name      string    `gorm:"type:varchar(120);not null" json:"name" validate:"required,max=120"`
	Currency  string    `gorm:"type:varchar(3)" json:"currency" validate:"omitempty,len=3,alpha"`
	Enabled   bool      `gorm:"not null" json:"enabled"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Country) TableName() string { return "countries" }

// Appeal is a fundraising campaign donors give to.
type Appeal struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Name        string `gorm:"type:varchar(255);not null" json:"name" validate:"required,min=1,max=255"`
	Description string `gorm:"type:text" json:"description"`
	CategoryID  *uint  `gorm:"index" json:"category_id"`
	CountryID   *uint  `gorm:"index" json:"country_id"`
	Enabled     bool   `gorm:"not null;index" json:"enabled"`
	// one-time, recurring or both
	DonationType     string         `gorm:"type:varchar(20);default:'both'" json:"donation_type" validate:"omitempty,oneof=one-time recurring both"`
	RecurrenceConfig datatypes.JSON `gorm:"type:jsonb" json:"recurrence_config,omitempty"`
	Sort             int            `gorm:"default:0" json:"sort"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`

	Amounts []Amount `gorm:"foreignKey:AppealID" json:"amounts,omitempty"`
	Funds   []Fund   `gorm:"foreignKey:AppealID" json:"funds,omitempty"`
}

func (Appeal) TableName() string { return "appeals" }

// Amount is a suggested giving tier of an appeal.
type Amount struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	AppealID  uint      `gorm:"index;not null" json:"appeal_id"`
	Label     string    `gorm:"type:varchar(120)" json:"label" validate:"max=120"`
	Amount    float64   `gorm:"type:numeric(12,2);not null" json:"amount" validate:"gt=0"`
	Sort      int       `gorm:"default:0" json:"sort"`
	Enabled   bool      `gorm:"not null" json:"enabled"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Amount) TableName() string { return "amounts" }

// Fund is an allocation bucket inside an appeal.
type Fund struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	AppealID  uint      `gorm:"index;not null" json:"appeal_id"`
	Name      string    `gorm:"type:varchar(255);not null" json:"name" validate:"required,min=1,max=255"`
	Enabled   bool      `gorm:"not null" json:"enabled"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Fund) TableName() string { return "funds" }

// RecurrenceConfig is the shape stored in Appeal.RecurrenceConfig.
type RecurrenceConfig struct {
	Frequencies    []string `json:"frequencies" validate:"dive,oneof=DAILY WEEKLY MONTHLY YEARLY"`
	DefaultFreq    string   `json:"default_frequency" validate:"omitempty,oneof=DAILY WEEKLY MONTHLY YEARLY"`
	MaxOccurrences int      `json:"max_occurrences" validate:"gte=0"`
	AllowEndDate   bool     `json:"allow_end_date"`
}

// ======================
// Listing
// ======================

// ListQuery selects a page of catalog rows.
type ListQuery struct {
	Search     string
	CategoryID *uint
	CountryID  *uint
	Enabled    *bool
	Page       int
	Limit      int
}

func (q *ListQuery) normalize() {
	if q.Page <= 0 {
		q.Page = 1
	}
	if q.Limit <= 0 || q.Limit > 100 {
		q.Limit = 20
	}
}

func (q ListQuery) offset() int {
	return (q.Page - 1) * q.Limit
}

// Page is one page of results.
type Page[T any] struct {
	Data       []T   `json:"data"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"total_pages"`
}

func newPage[T any](data []T, total int64, q ListQuery) *Page[T] {
	if data == nil {
		data = []T{}
	}
	pages := int(total) / q.Limit
	if int(total)%q.Limit != 0 {
		pages++
	}
	return &Page[T]{Data: data, Total: total, Page: q.Page, Limit: q.Limit, TotalPages: pages}
}
