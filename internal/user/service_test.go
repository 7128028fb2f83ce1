package user

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/sharath018/donor-backoffice-backend/config"
	"github.com/sharath018/donor-backoffice-backend/internal/apperror"
	"github.com/sharath018/donor-backoffice-backend/internal/auditlog"
	"github.com/sharath018/donor-backoffice-backend/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type memRepo struct {
	users  map[uint]*User
	nextID uint
}

func newMemRepo() *memRepo { return &memRepo{users: map[uint]*User{}} }

func (r *memRepo) Create(ctx context.Context, u *User) error {
	for _, existing := range r.users {
		if existing.Email == u.Email {
			return gorm.ErrDuplicatedKey
		}
	}
	r.nextID++
	u.ID = r.nextID
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *memRepo) FindByID(ctx context.Context, id uint) (*User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *memRepo) FindByEmail(ctx context.Context, email string) (*User, error) {
	for _, u := range r.users {
		if u.Email == strings.ToLower(strings.TrimSpace(email)) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memRepo) Update(ctx context.Context, u *User) error {
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *memRepo) TouchLogin(ctx context.Context, id uint, at time.Time) error {
	r.users[id].LastLoginAt = &at
	return nil
}

func (r *memRepo) List(ctx context.Context, q ListQuery) ([]User, int64, error) {
	var out []User
	for id := uint(1); id <= r.nextID; id++ {
		if u, ok := r.users[id]; ok {
			out = append(out, *u)
		}
	}
	return out, int64(len(out)), nil
}

type recordingAudit struct {
	auditlog.Service
	actions []string
}

func (a *recordingAudit) LogAction(ctx context.Context, userID *uint, action string, details map[string]interface{}, ip string, status string) error {
	a.actions = append(a.actions, action)
	return nil
}

func newTestService() (*service, *memRepo, *recordingAudit) {
	repo := newMemRepo()
	audit := &recordingAudit{}
	cfg := &config.Config{JWTAccessSecret: "test-secret", JWTAccessTTLHours: 2}
	svc := NewService(repo, audit, cfg, zap.NewNop()).(*service)
	svc.now = func() time.Time { return time.Now().Truncate(time.Second) }
	return svc, repo, audit
}

func validCreate() CreateRequest {
	return CreateRequest{FullName: "Ana Diaz", Email: " Ana@Example.org ", Password: "correct-horse", Role: "Analyst"}
}

func TestCreateUser(t *testing.T) {
	svc, repo, audit := newTestService()
	ctx := context.Background()

	u, err := svc.Create(ctx, validCreate(), auditlog.Actor{})
	require.NoError(t, err)
	assert.Equal(t, "ana@example.org", u.Email)
	assert.Equal(t, "analyst", u.Role)
	assert.Equal(t, StatusActive, u.Status)
	assert.NotEqual(t, "correct-horse", repo.users[u.ID].PasswordHash)

	_, err = svc.Create(ctx, validCreate(), auditlog.Actor{})
	assert.True(t, apperror.Is(err, apperror.KindValidation), "duplicate email")

	short := validCreate()
	short.Email = "other@example.org"
	short.Password = "short"
	_, err = svc.Create(ctx, short, auditlog.Actor{})
	assert.True(t, apperror.Is(err, apperror.KindValidation))

	badRole := validCreate()
	badRole.Email = "third@example.org"
	badRole.Role = "owner"
	_, err = svc.Create(ctx, badRole, auditlog.Actor{})
	assert.True(t, apperror.Is(err, apperror.KindValidation))

	assert.Equal(t, []string{"USER_CREATED", "USER_CREATE_FAILED", "USER_CREATE_FAILED", "USER_CREATE_FAILED"}, audit.actions)
}

func TestUpdateUser(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()
	u, err := svc.Create(ctx, validCreate(), auditlog.Actor{})
	require.NoError(t, err)
	oldHash := repo.users[u.ID].PasswordHash

	role := "manager"
	password := "another-secret"
	updated, err := svc.Update(ctx, u.ID, UpdateRequest{Role: &role, Password: &password}, auditlog.Actor{})
	require.NoError(t, err)
	assert.Equal(t, "manager", updated.Role)
	assert.NotEqual(t, oldHash, repo.users[u.ID].PasswordHash)

	status := "suspended"
	_, err = svc.Update(ctx, u.ID, UpdateRequest{Status: &status}, auditlog.Actor{})
	assert.True(t, apperror.Is(err, apperror.KindValidation))

	_, err = svc.Update(ctx, 404, UpdateRequest{Role: &role}, auditlog.Actor{})
	assert.True(t, apperror.Is(err, apperror.KindNotFound))
}

func TestLoginIssuesVerifiableToken(t *testing.T) {
	svc, repo, audit := newTestService()
	ctx := context.Background()
	u, err := svc.Create(ctx, validCreate(), auditlog.Actor{})
	require.NoError(t, err)

	token, err := svc.Login(ctx, LoginRequest{Email: "ANA@example.org", Password: "correct-horse"}, "10.0.0.1")
	require.NoError(t, err)
	assert.NotNil(t, repo.users[u.ID].LastLoginAt)

	claims, err := middleware.ParseAccessToken("test-secret", token.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, float64(u.ID), claims["user_id"])
	assert.Equal(t, "analyst", claims["role"])

	_, err = middleware.ParseAccessToken("other-secret", token.AccessToken)
	assert.Error(t, err)

	assert.Contains(t, audit.actions, "LOGIN_SUCCESS")
}

func TestLoginRejections(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()
	u, err := svc.Create(ctx, validCreate(), auditlog.Actor{})
	require.NoError(t, err)

	_, err = svc.Login(ctx, LoginRequest{Email: "nobody@example.org", Password: "correct-horse"}, "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, LoginRequest{Email: u.Email, Password: "wrong-password"}, "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	inactive := StatusInactive
	_, err = svc.Update(ctx, u.ID, UpdateRequest{Status: &inactive}, auditlog.Actor{})
	require.NoError(t, err)
	_, err = svc.Login(ctx, LoginRequest{Email: u.Email, Password: "correct-horse"}, "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestCallerLookup(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	analyst, err := svc.Create(ctx, validCreate(), auditlog.Actor{})
	require.NoError(t, err)
	admin := validCreate()
	admin.Email = "root@example.org"
	admin.Role = "admin"
	adminUser, err := svc.Create(ctx, admin, auditlog.Actor{})
	require.NoError(t, err)

	caller, err := svc.Caller(ctx, analyst.ID)
	require.NoError(t, err)
	assert.False(t, caller.CanWrite())
	assert.True(t, caller.CanRead())

	caller, err = svc.Caller(ctx, adminUser.ID)
	require.NoError(t, err)
	assert.True(t, caller.CanWrite())

	_, err = svc.Caller(ctx, 999)
	assert.True(t, apperror.Is(err, apperror.KindNotFound))
}

func TestListUsersPaging(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()
	_, err := svc.Create(ctx, validCreate(), auditlog.Actor{})
	require.NoError(t, err)

	page, err := svc.List(ctx, ListQuery{Limit: 500})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 20, page.Limit)
	assert.Equal(t, 1, page.TotalPages)
	assert.Len(t, page.Data, 1)
}
