package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sharath018/donor-backoffice-backend/internal/apperror"
	"github.com/sharath018/donor-backoffice-backend/internal/auditlog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// memRepo keeps catalog rows in maps keyed by id.
type memRepo struct {
	nextID     uint
	categories map[uint]Category
	countries  map[uint]Country
	appeals    map[uint]Appeal
	amounts    map[uint]Amount
	funds      map[uint]Fund
	lastQuery  ListQuery
}

func newMemRepo() *memRepo {
	return &memRepo{
		categories: map[uint]Category{},
		countries:  map[uint]Country{},
		appeals:    map[uint]Appeal{},
		amounts:    map[uint]Amount{},
		funds:      map[uint]Fund{},
	}
}

func (r *memRepo) id() uint {
	r.nextID++
	return r.nextID
}

func get[T any](m map[uint]T, id uint) (*T, error) {
	v, ok := m[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &v, nil
}

func values[T any](m map[uint]T) []T {
	keys := make([]uint, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	out := make([]T, 0, len(m))
	for _, k := range keys {
		out = append(out, m[k])
	}
	return out
}

func (r *memRepo) CreateCategory(ctx context.Context, c *Category) error {
	for _, existing := range r.categories {
		if existing.Name == c.Name {
			return gorm.ErrDuplicatedKey
		}
	}
	c.ID = r.id()
	r.categories[c.ID] = *c
	return nil
}
func (r *memRepo) GetCategoryByID(ctx context.Context, id uint) (*Category, error) {
	return get(r.categories, id)
}
func (r *memRepo) UpdateCategory(ctx context.Context, c *Category) error {
	r.categories[c.ID] = *c
	return nil
}
func (r *memRepo) ListCategories(ctx context.Context, q ListQuery) ([]Category, int64, error) {
	r.lastQuery = q
	rows := values(r.categories)
	return rows, int64(len(rows)), nil
}

func (r *memRepo) CreateCountry(ctx context.Context, c *Country) error {
	c.ID = r.id()
	r.countries[c.ID] = *c
	return nil
}
func (r *memRepo) GetCountryByID(ctx context.Context, id uint) (*Country, error) {
	return get(r.countries, id)
}
func (r *memRepo) UpdateCountry(ctx context.Context, c *Country) error {
	r.countries[c.ID] = *c
	return nil
}
func (r *memRepo) ListCountries(ctx context.Context, q ListQuery) ([]Country, int64, error) {
	rows := values(r.countries)
	return rows, int64(len(rows)), nil
}

func (r *memRepo) CreateAppeal(ctx context.Context, a *Appeal) error {
	a.ID = r.id()
	r.appeals[a.ID] = *a
	return nil
}
func (r *memRepo) GetAppealByID(ctx context.Context, id uint) (*Appeal, error) {
	return get(r.appeals, id)
}
func (r *memRepo) UpdateAppeal(ctx context.Context, a *Appeal) error {
	r.appeals[a.ID] = *a
	return nil
}
func (r *memRepo) ListAppeals(ctx context.Context, q ListQuery) ([]Appeal, int64, error) {
	r.lastQuery = q
	rows := values(r.appeals)
	return rows, int64(len(rows)), nil
}

func (r *memRepo) CreateAmount(ctx context.Context, a *Amount) error {
	a.ID = r.id()
	r.amounts[a.ID] = *a
	return nil
}
func (r *memRepo) GetAmountByID(ctx context.Context, id uint) (*Amount, error) {
	return get(r.amounts, id)
}
func (r *memRepo) UpdateAmount(ctx context.Context, a *Amount) error {
	r.amounts[a.ID] = *a
	return nil
}
func (r *memRepo) ListAmounts(ctx context.Context, appealID uint) ([]Amount, error) {
	var out []Amount
	for _, a := range values(r.amounts) {
		if a.AppealID == appealID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *memRepo) CreateFund(ctx context.Context, f *Fund) error {
	f.ID = r.id()
	r.funds[f.ID] = *f
	return nil
}
func (r *memRepo) GetFundByID(ctx context.Context, id uint) (*Fund, error) {
	return get(r.funds, id)
}
func (r *memRepo) UpdateFund(ctx context.Context, f *Fund) error {
	r.funds[f.ID] = *f
	return nil
}
func (r *memRepo) ListFunds(ctx context.Context, appealID uint) ([]Fund, error) {
	var out []Fund
	for _, f := range values(r.funds) {
		if f.AppealID == appealID {
			out = append(out, f)
		}
	}
	return out, nil
}

type recordingAudit struct {
	auditlog.Service
	actions []string
}

func (a *recordingAudit) LogAction(ctx context.Context, userID *uint, action string, details map[string]interface{}, ip string, status string) error {
	a.actions = append(a.actions, action)
	return nil
}

func ptr[T any](v T) *T { return &v }

func newTestService() (Service, *memRepo, *recordingAudit) {
	repo := newMemRepo()
	audit := &recordingAudit{}
	return NewService(repo, audit, zap.NewNop()), repo, audit
}

func TestCreateCategoryValidatesAndAudits(t *testing.T) {
	svc, _, audit := newTestService()
	ctx := context.Background()

	_, err := svc.CreateCategory(ctx, CategoryRequest{Name: ptr("   ")}, auditlog.Actor{})
	assert.True(t, apperror.Is(err, apperror.KindValidation))

	category, err := svc.CreateCategory(ctx, CategoryRequest{Name: ptr(" Emergency ")}, auditlog.Actor{})
	require.NoError(t, err)
	assert.Equal(t, "Emergency", category.Name)

	_, err = svc.CreateCategory(ctx, CategoryRequest{Name: ptr("Emergency")}, auditlog.Actor{})
	assert.True(t, apperror.Is(err, apperror.KindValidation), "duplicates are rejected")

	assert.Equal(t, []string{"CATEGORY_CREATE_FAILED", "CATEGORY_CREATED", "CATEGORY_CREATE_FAILED"}, audit.actions)
}

func TestCountryNormalization(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	country, err := svc.CreateCountry(ctx, CountryRequest{Code: ptr(" gb "), Name: ptr("United Kingdom"), Currency: ptr("gbp")}, auditlog.Actor{})
	require.NoError(t, err)
	assert.Equal(t, "GB", country.Code)
	assert.Equal(t, "GBP", country.Currency)
	assert.True(t, country.Enabled)

	_, err = svc.CreateCountry(ctx, CountryRequest{Code: ptr("GBR"), Name: ptr("United Kingdom")}, auditlog.Actor{})
	assert.True(t, apperror.Is(err, apperror.KindValidation))

	updated, err := svc.UpdateCountry(ctx, country.ID, CountryRequest{Enabled: ptr(false)}, auditlog.Actor{})
	require.NoError(t, err)
	assert.False(t, updated.Enabled)
	assert.Equal(t, "GB", updated.Code)
}

func TestAppealReferencesAndRecurrence(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()

	_, err := svc.CreateAppeal(ctx, AppealRequest{Name: ptr("Water"), CategoryID: ptr(uint(99))}, auditlog.Actor{})
	assert.True(t, apperror.Is(err, apperror.KindValidation))

	_, err = svc.CreateAppeal(ctx, AppealRequest{
		Name:             ptr("Water"),
		RecurrenceConfig: &RecurrenceConfig{Frequencies: []string{"MONTHLY", "HOURLY"}},
	}, auditlog.Actor{})
	assert.True(t, apperror.Is(err, apperror.KindValidation))

	_, err = svc.CreateAppeal(ctx, AppealRequest{Name: ptr("Water"), DonationType: ptr("sometimes")}, auditlog.Actor{})
	assert.True(t, apperror.Is(err, apperror.KindValidation))

	appeal, err := svc.CreateAppeal(ctx, AppealRequest{
		Name:             ptr("Water"),
		RecurrenceConfig: &RecurrenceConfig{Frequencies: []string{"MONTHLY"}, DefaultFreq: "MONTHLY"},
	}, auditlog.Actor{})
	require.NoError(t, err)
	assert.True(t, appeal.Enabled)
	assert.Equal(t, "both", appeal.DonationType)
	assert.JSONEq(t, `{"frequencies":["MONTHLY"],"default_frequency":"MONTHLY","max_occurrences":0,"allow_end_date":false}`, string(repo.appeals[appeal.ID].RecurrenceConfig))

	_, err = svc.GetAppeal(ctx, 12345)
	assert.True(t, apperror.Is(err, apperror.KindNotFound))
}

func TestAmountsAndFundsBelongToTheirAppeal(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	water, err := svc.CreateAppeal(ctx, AppealRequest{Name: ptr("Water")}, auditlog.Actor{})
	require.NoError(t, err)
	schools, err := svc.CreateAppeal(ctx, AppealRequest{Name: ptr("Schools")}, auditlog.Actor{})
	require.NoError(t, err)

	_, err = svc.CreateAmount(ctx, water.ID, AmountRequest{Amount: ptr(0.0)}, auditlog.Actor{})
	assert.True(t, apperror.Is(err, apperror.KindValidation))

	amount, err := svc.CreateAmount(ctx, water.ID, AmountRequest{Amount: ptr(25.0), Label: ptr("A well")}, auditlog.Actor{})
	require.NoError(t, err)

	_, err = svc.UpdateAmount(ctx, schools.ID, amount.ID, AmountRequest{Amount: ptr(30.0)}, auditlog.Actor{})
	assert.True(t, apperror.Is(err, apperror.KindNotFound))

	_, err = svc.CreateFund(ctx, 999, FundRequest{Name: ptr("General")}, auditlog.Actor{})
	assert.True(t, apperror.Is(err, apperror.KindNotFound))

	fund, err := svc.CreateFund(ctx, water.ID, FundRequest{Name: ptr("General"), Enabled: ptr(false)}, auditlog.Actor{})
	require.NoError(t, err)
	assert.False(t, fund.Enabled)

	funds, err := svc.ListFunds(ctx, water.ID)
	require.NoError(t, err)
	assert.Len(t, funds, 1)
	amounts, err := svc.ListAmounts(ctx, schools.ID)
	require.NoError(t, err)
	assert.Empty(t, amounts)
}

func TestListNormalizesPagination(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()
	for _, name := range []string{"A", "B", "C"} {
		_, err := svc.CreateCategory(ctx, CategoryRequest{Name: ptr(name)}, auditlog.Actor{})
		require.NoError(t, err)
	}

	page, err := svc.ListCategories(ctx, ListQuery{Page: -1, Limit: 1000})
	require.NoError(t, err)
	assert.Equal(t, ListQuery{Page: 1, Limit: 20}, repo.lastQuery)
	assert.Equal(t, int64(3), page.Total)
	assert.Equal(t, 1, page.TotalPages)

	empty, err := svc.ListAppeals(ctx, ListQuery{Limit: 2})
	require.NoError(t, err)
	assert.NotNil(t, empty.Data)
	assert.Equal(t, 0, empty.TotalPages)
}

func TestCatalogHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc, _, _ := newTestService()
	h := NewHandler(svc, zap.NewNop())
	r := gin.New()
	r.POST("/appeals", h.CreateAppeal)
	r.GET("/appeals/:id", h.GetAppeal)

	body, _ := json.Marshal(map[string]interface{}{"name": "Water", "sort": 2})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/appeals", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code)

	var created struct {
		Success bool   `json:"success"`
		Data    Appeal `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.True(t, created.Success)
	assert.Equal(t, 2, created.Data.Sort)

	w = httptest.NewRecorder()
	req, _ = http.NewRequest(http.MethodGet, "/appeals/77", nil)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = httptest.NewRecorder()
	req, _ = http.NewRequest(http.MethodGet, "/appeals/abc", nil)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
