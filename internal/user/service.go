package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sharath018/donor-backoffice-backend/config"
	"github.com/sharath018/donor-backoffice-backend/internal/apperror"
	"github.com/sharath018/donor-backoffice-backend/internal/auditlog"
	"github.com/sharath018/donor-backoffice-backend/middleware"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const minPasswordLength = 8

// ErrInvalidCredentials is returned by Login for an unknown email, a wrong
// password or an inactive account alike.
var ErrInvalidCredentials = errors.New("invalid credentials")

type Service interface {
	Create(ctx context.Context, req CreateRequest, actor auditlog.Actor) (*User, error)
	Get(ctx context.Context, id uint) (*User, error)
	Update(ctx context.Context, id uint, req UpdateRequest, actor auditlog.Actor) (*User, error)
	List(ctx context.Context, q ListQuery) (*PaginatedUsers, error)
	Login(ctx context.Context, req LoginRequest, ip string) (*TokenResponse, error)

	// Caller resolves the identity behind a verified access token.
	Caller(ctx context.Context, id uint) (middleware.Caller, error)
}

type service struct {
	repo      Repository
	auditSvc  auditlog.Service
	logger    *zap.Logger
	secret    string
	accessTTL time.Duration
	now       func() time.Time
}

func NewService(repo Repository, auditSvc auditlog.Service, cfg *config.Config, logger *zap.Logger) Service {
	return &service{
		repo:      repo,
		auditSvc:  auditSvc,
		logger:    logger.Named("user.service"),
		secret:    cfg.JWTAccessSecret,
		accessTTL: time.Duration(cfg.JWTAccessTTLHours) * time.Hour,
		now:       time.Now,
	}
}

// =============================
// Helpers
// =============================

func checkValid(u *User) error {
	err := validate.Struct(u)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apperror.Validation("invalid input")
	}
	fields := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		fields = append(fields, fmt.Sprintf("%s (%s)", strings.ToLower(fe.Field()), fe.Tag()))
	}
	return apperror.Validation("invalid fields: %s", strings.Join(fields, ", "))
}

func hashPassword(password string) (string, error) {
	if len(password) < minPasswordLength {
		return "", apperror.Validation("password must be at least %d characters", minPasswordLength)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", apperror.Store("hash password", err)
	}
	return string(hash), nil
}

func saveError(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperror.Validation("email already registered")
	}
	return apperror.FromStore("save user", err)
}

func (s *service) audit(ctx context.Context, userID *uint, ip, action string, details map[string]interface{}, status string) {
	if s.auditSvc == nil {
		return
	}
	if err := s.auditSvc.LogAction(ctx, userID, action, details, ip, status); err != nil {
		s.logger.Warn("audit log failed", zap.String("action", action), zap.Error(err))
	}
}

// =============================
// CRUD
// =============================

func (s *service) Create(ctx context.Context, req CreateRequest, actor auditlog.Actor) (*User, error) {
	u := &User{
		FullName: strings.TrimSpace(req.FullName),
		Email:    strings.ToLower(strings.TrimSpace(req.Email)),
		Role:     strings.ToLower(strings.TrimSpace(req.Role)),
		Status:   StatusActive,
	}

	err := checkValid(u)
	if err == nil {
		u.PasswordHash, err = hashPassword(req.Password)
	}
	if err == nil {
		err = saveError(s.repo.Create(ctx, u))
	}

	details := map[string]interface{}{"user_id": u.ID, "email": u.Email, "role": u.Role}
	if err != nil {
		details["error"] = apperror.PublicMessage(err)
		s.audit(ctx, actor.UserID, actor.IP, "USER_CREATE_FAILED", details, auditlog.StatusFailure)
		return nil, err
	}
	s.audit(ctx, actor.UserID, actor.IP, "USER_CREATED", details, auditlog.StatusSuccess)
	return u, nil
}

func (s *service) Get(ctx context.Context, id uint) (*User, error) {
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apperror.FromLookup("user", id, err)
	}
	return u, nil
}

func (s *service) Update(ctx context.Context, id uint, req UpdateRequest, actor auditlog.Actor) (*User, error) {
	u, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	changed := []string{}
	if req.FullName != nil {
		u.FullName = strings.TrimSpace(*req.FullName)
		changed = append(changed, "full_name")
	}
	if req.Role != nil {
		u.Role = strings.ToLower(strings.TrimSpace(*req.Role))
		changed = append(changed, "role")
	}
	if req.Status != nil {
		u.Status = strings.ToLower(strings.TrimSpace(*req.Status))
		changed = append(changed, "status")
	}

	err = checkValid(u)
	if err == nil && req.Password != nil {
		u.PasswordHash, err = hashPassword(*req.Password)
		changed = append(changed, "password")
	}
	if err == nil {
		err = saveError(s.repo.Update(ctx, u))
	}

	details := map[string]interface{}{"user_id": id, "fields": changed}
	if err != nil {
		details["error"] = apperror.PublicMessage(err)
		s.audit(ctx, actor.UserID, actor.IP, "USER_UPDATE_FAILED", details, auditlog.StatusFailure)
		return nil, err
	}
	s.audit(ctx, actor.UserID, actor.IP, "USER_UPDATED", details, auditlog.StatusSuccess)
	return u, nil
}

func (s *service) List(ctx context.Context, q ListQuery) (*PaginatedUsers, error) {
	q.normalize()
	users, total, err := s.repo.List(ctx, q)
	if err != nil {
		return nil, apperror.FromStore("list users", err)
	}
	if users == nil {
		users = []User{}
	}
	pages := int((total + int64(q.Limit) - 1) / int64(q.Limit))
	return &PaginatedUsers{Data: users, Total: total, Page: q.Page, Limit: q.Limit, TotalPages: pages}, nil
}

// =============================
// Login
// =============================

func (s *service) Login(ctx context.Context, req LoginRequest, ip string) (*TokenResponse, error) {
	u, err := s.repo.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.audit(ctx, nil, ip, "LOGIN_FAILED", map[string]interface{}{"email": req.Email, "reason": "unknown email"}, auditlog.StatusFailure)
			return nil, ErrInvalidCredentials
		}
		return nil, apperror.FromStore("find user", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)) != nil {
		s.audit(ctx, &u.ID, ip, "LOGIN_FAILED", map[string]interface{}{"email": u.Email, "reason": "wrong password"}, auditlog.StatusFailure)
		return nil, ErrInvalidCredentials
	}
	if u.Status != StatusActive {
		s.audit(ctx, &u.ID, ip, "LOGIN_FAILED", map[string]interface{}{"email": u.Email, "reason": "inactive"}, auditlog.StatusFailure)
		return nil, ErrInvalidCredentials
	}

	now := s.now()
	expires := now.Add(s.accessTTL)
	claims := jwt.MapClaims{
		"user_id": u.ID,
		"role":    u.Role,
		"iat":     now.Unix(),
		"exp":     expires.Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.secret))
	if err != nil {
		return nil, apperror.Store("sign token", err)
	}

	if err := s.repo.TouchLogin(ctx, u.ID, now); err != nil {
		s.logger.Warn("failed to record login time", zap.Uint("user_id", u.ID), zap.Error(err))
	} else {
		u.LastLoginAt = &now
	}
	s.audit(ctx, &u.ID, ip, "LOGIN_SUCCESS", map[string]interface{}{"email": u.Email}, auditlog.StatusSuccess)

	return &TokenResponse{AccessToken: token, ExpiresAt: expires, User: u}, nil
}

func (s *service) Caller(ctx context.Context, id uint) (middleware.Caller, error) {
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return middleware.Caller{}, apperror.FromLookup("user", id, err)
	}
	if u.Status != StatusActive {
		return middleware.Caller{}, apperror.NotFound("user", id)
	}
	return middleware.NewCaller(u.ID, u.Email, u.Role), nil
}
