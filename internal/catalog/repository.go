package catalog

import (
	"context"

	"github.com/sharath018/donor-backoffice-backend/internal/predicate"
	"gorm.io/gorm"
)

type Repository interface {
	// Categories
	CreateCategory(ctx context.Context, category *Category) error
	GetCategoryByID(ctx context.Context, id uint) (*Category, error)
	UpdateCategory(ctx context.Context, category *Category) error
	ListCategories(ctx context.Context, q ListQuery) ([]Category, int64, error)

	// Countries
	CreateCountry(ctx context.Context, country *Country) error
	GetCountryByID(ctx context.Context, id uint) (*Country, error)
	UpdateCountry(ctx context.Context, country *Country) error
	ListCountries(ctx context.Context, q ListQuery) ([]Country, int64, error)

	// Appeals with their amounts and funds
	CreateAppeal(ctx context.Context, appeal *Appeal) error
	GetAppealByID(ctx context.Context, id uint) (*Appeal, error)
	UpdateAppeal(ctx context.Context, appeal *Appeal) error
	ListAppeals(ctx context.Context, q ListQuery) ([]Appeal, int64, error)

	CreateAmount(ctx context.Context, amount *Amount) error
	GetAmountByID(ctx context.Context, id uint) (*Amount, error)
	UpdateAmount(ctx context.Context, amount *Amount) error
	ListAmounts(ctx context.Context, appealID uint) ([]Amount, error)

	CreateFund(ctx context.Context, fund *Fund) error
	GetFundByID(ctx context.Context, id uint) (*Fund, error)
	UpdateFund(ctx context.Context, fund *Fund) error
	ListFunds(ctx context.Context, appealID uint) ([]Fund, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func first[T any](ctx context.Context, db *gorm.DB, id uint) (*T, error) {
	var row T
	if err := db.WithContext(ctx).First(&row, id).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// page counts the query and returns one ordered page of it.
func page[T any](query *gorm.DB, q ListQuery, order string) ([]T, int64, error) {
	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []T
	err := query.Order(order).Limit(q.Limit).Offset(q.offset()).Find(&rows).Error
	return rows, total, err
}

// -----------------------------------------
// Categories
// -----------------------------------------

func (r *repository) CreateCategory(ctx context.Context, category *Category) error {
	return r.db.WithContext(ctx).Create(category).Error
}

func (r *repository) GetCategoryByID(ctx context.Context, id uint) (*Category, error) {
	return first[Category](ctx, r.db, id)
}

func (r *repository) UpdateCategory(ctx context.Context, category *Category) error {
	return r.db.WithContext(ctx).Save(category).Error
}

func (r *repository) ListCategories(ctx context.Context, q ListQuery) ([]Category, int64, error) {
	query := r.db.WithContext(ctx).Model(&Category{})
	if q.Search != "" {
		query = query.Where("name ILIKE ?", predicate.ContainsPattern(q.Search))
	}
	return page[Category](query, q, "sort ASC, name ASC")
}

// -----------------------------------------
// Countries
// -----------------------------------------

func (r *repository) CreateCountry(ctx context.Context, country *Country) error {
	return r.db.WithContext(ctx).Create(country).Error
}

func (r *repository) GetCountryByID(ctx context.Context, id uint) (*Country, error) {
	return first[Country](ctx, r.db, id)
}

func (r *repository) UpdateCountry(ctx context.Context, country *Country) error {
	return r.db.WithContext(ctx).Save(country).Error
}

func (r *repository) ListCountries(ctx context.Context, q ListQuery) ([]Country, int64, error) {
	query := r.db.WithContext(ctx).Model(&Country{})
	if q.Search != "" {
		term := predicate.ContainsPattern(q.Search)
		query = query.Where("name ILIKE ? OR code ILIKE ?", term, term)
	}
	if q.Enabled != nil {
		query = query.Where("enabled = ?", *q.Enabled)
	}
	return page[Country](query, q, "name ASC")
}

// -----------------------------------------
// Appeals
// -----------------------------------------

func (r *repository) CreateAppeal(ctx context.Context, appeal *Appeal) error {
	return r.db.WithContext(ctx).Create(appeal).Error
}

func (r *repository) GetAppealByID(ctx context.Context, id uint) (*Appeal, error) {
	var appeal Appeal
	err := r.db.WithContext(ctx).
		Preload("Amounts", func(db *gorm.DB) *gorm.DB { return db.Order("sort ASC, amount ASC") }).
		Preload("Funds", func(db *gorm.DB) *gorm.DB { return db.Order("name ASC") }).
		First(&appeal, id).Error
	if err != nil {
		return nil, err
	}
	return &appeal, nil
}

// UpdateAppeal saves appeal columns only; amounts and funds have their own endpoints.
func (r *repository) UpdateAppeal(ctx context.Context, appeal *Appeal) error {
	return r.db.WithContext(ctx).Omit("Amounts", "Funds").Save(appeal).Error
}

func (r *repository) ListAppeals(ctx context.Context, q ListQuery) ([]Appeal, int64, error) {
	query := r.db.WithContext(ctx).Model(&Appeal{})
	if q.Search != "" {
		term := predicate.ContainsPattern(q.Search)
		query = query.Where("name ILIKE ? OR description ILIKE ?", term, term)
	}
	if q.CategoryID != nil {
		query = query.Where("category_id = ?", *q.CategoryID)
	}
	if q.CountryID != nil {
		query = query.Where("country_id = ?", *q.CountryID)
	}
	if q.Enabled != nil {
		query = query.Where("enabled = ?", *q.Enabled)
	}
	return page[Appeal](query, q, "sort ASC, created_at DESC")
}

func (r *repository) CreateAmount(ctx context.Context, amount *Amount) error {
	return r.db.WithContext(ctx).Create(amount).Error
}

func (r *repository) GetAmountByID(ctx context.Context, id uint) (*Amount, error) {
	return first[Amount](ctx, r.db, id)
}

func (r *repository) UpdateAmount(ctx context.Context, amount *Amount) error {
	return r.db.WithContext(ctx).Save(amount).Error
}

func (r *repository) ListAmounts(ctx context.Context, appealID uint) ([]Amount, error) {
	var amounts []Amount
	err := r.db.WithContext(ctx).
		Where("appeal_id = ?", appealID).
		Order("sort ASC, amount ASC").
		Find(&amounts).Error
	return amounts, err
}

func (r *repository) CreateFund(ctx context.Context, fund *Fund) error {
	return r.db.WithContext(ctx).Create(fund).Error
}

func (r *repository) GetFundByID(ctx context.Context, id uint) (*Fund, error) {
	return first[Fund](ctx, r.db, id)
}

func (r *repository) UpdateFund(ctx context.Context, fund *Fund) error {
	return r.db.WithContext(ctx).Save(fund).Error
}

func (r *repository) ListFunds(ctx context.Context, appealID uint) ([]Fund, error) {
	var funds []Fund
	err := r.db.WithContext(ctx).
		Where("appeal_id = ?", appealID).
		Order("name ASC").
		Find(&funds).Error
	return funds, err
}
