package user

import (
	"time"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Account statuses.
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// User is a back office operator.
type User struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	FullName     string     `gorm:"type:varchar(120);not null" json:"full_name" validate:"required,min=1,max=120"`
	Email        string     `gorm:"type:varchar(255);uniqueIndex;not null" json:"email" validate:"required,email,max=255"`
	PasswordHash string     `gorm:"not null" json:"-"`
	Role         string     `gorm:"type:varchar(20);not null" json:"role" validate:"required,oneof=admin manager analyst"`
	Status       string     `gorm:"type:varchar(20);not null;default:'active'" json:"status" validate:"required,oneof=active inactive"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func (User) TableName() string { return "users" }

// ================ REQUESTS =================

type CreateRequest struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type UpdateRequest struct {
	FullName *string `json:"full_name"`
	Role     *string `json:"role"`
	Status   *string `json:"status"`
	Password *string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type TokenResponse struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
	User        *User     `json:"user"`
}

// ListQuery selects a page of users.
type ListQuery struct {
	Search string
	Role   string
	Status string
	Page   int
	Limit  int
}

func (q *ListQuery) normalize() {
	if q.Page <= 0 {
		q.Page = 1
	}
	if q.Limit <= 0 || q.Limit > 100 {
		q.Limit = 20
	}
}

type PaginatedUsers struct {
	Data       []User `json:"data"`
	Total      int64  `json:"total"`
	Page       int    `json:"page"`
	Limit      int    `json:"limit"`
	TotalPages int    `json:"total_pages"`
}
