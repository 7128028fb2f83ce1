package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/sharath018/donor-backoffice-backend/internal/apperror"
	"github.com/sharath018/donor-backoffice-backend/internal/auditlog"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Service interface {
	CreateCategory(ctx context.Context, req CategoryRequest, actor auditlog.Actor) (*Category, error)
	UpdateCategory(ctx context.Context, id uint, req CategoryRequest, actor auditlog.Actor) (*Category, error)
	GetCategory(ctx context.Context, id uint) (*Category, error)
	ListCategories(ctx context.Context, q ListQuery) (*Page[Category], error)

	CreateCountry(ctx context.Context, req CountryRequest, actor auditlog.Actor) (*Country, error)
	UpdateCountry(ctx context.Context, id uint, req CountryRequest, actor auditlog.Actor) (*Country, error)
	GetCountry(ctx context.Context, id uint) (*Country, error)
	ListCountries(ctx context.Context, q ListQuery) (*Page[Country], error)

	CreateAppeal(ctx context.Context, req AppealRequest, actor auditlog.Actor) (*Appeal, error)
	UpdateAppeal(ctx context.Context, id uint, req AppealRequest, actor auditlog.Actor) (*Appeal, error)
	GetAppeal(ctx context.Context, id uint) (*Appeal, error)
	ListAppeals(ctx context.Context, q ListQuery) (*Page[Appeal], error)

	CreateAmount(ctx context.Context, appealID uint, req AmountRequest, actor auditlog.Actor) (*Amount, error)
	UpdateAmount(ctx context.Context, appealID, id uint, req AmountRequest, actor auditlog.Actor) (*Amount, error)
	ListAmounts(ctx context.Context, appealID uint) ([]Amount, error)

	CreateFund(ctx context.Context, appealID uint, req FundRequest, actor auditlog.Actor) (*Fund, error)
	UpdateFund(ctx context.Context, appealID, id uint, req FundRequest, actor auditlog.Actor) (*Fund, error)
	ListFunds(ctx context.Context, appealID uint) ([]Fund, error)
}

type service struct {
	repo     Repository
	auditSvc auditlog.Service
	logger   *zap.Logger
}

func NewService(repo Repository, auditSvc auditlog.Service, logger *zap.Logger) Service {
	return &service{repo: repo, auditSvc: auditSvc, logger: logger.Named("catalog.service")}
}

// ===============================
// Helpers
// ===============================

// checkValid runs struct validation and reports failing fields.
func checkValid(v interface{}) error {
	err := validate.Struct(v)
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

// saveError maps write failures; unique violations are a caller mistake.
func saveError(entity string, err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperror.Validation("%s already exists", entity)
	}
	return apperror.FromStore("save "+entity, err)
}

func (s *service) audit(ctx context.Context, actor auditlog.Actor, action string, details map[string]interface{}, status string) {
	if s.auditSvc == nil {
		return
	}
	if err := s.auditSvc.LogAction(ctx, actor.UserID, action, details, actor.IP, status); err != nil {
		s.logger.Warn("audit log failed", zap.String("action", action), zap.Error(err))
	}
}

// record audits the outcome of a write under PREFIX_CREATED / PREFIX_CREATE_FAILED style actions.
func (s *service) record(ctx context.Context, actor auditlog.Actor, prefix, verb string, details map[string]interface{}, err error) {
	if err != nil {
		details["error"] = apperror.PublicMessage(err)
		s.audit(ctx, actor, prefix+"_"+verb+"_FAILED", details, auditlog.StatusFailure)
		return
	}
	s.audit(ctx, actor, prefix+"_"+verb+"D", details, auditlog.StatusSuccess)
}

// ===============================
// Categories
// ===============================

func (s *service) CreateCategory(ctx context.Context, req CategoryRequest, actor auditlog.Actor) (*Category, error) {
	category := &Category{}
	req.apply(category)
	category.Name = strings.TrimSpace(category.Name)

	err := checkValid(category)
	if err == nil {
		err = saveError("category", s.repo.CreateCategory(ctx, category))
	}
	s.record(ctx, actor, "CATEGORY", "CREATE", map[string]interface{}{"category_id": category.ID, "name": category.Name}, err)
	if err != nil {
		return nil, err
	}
	return category, nil
}

func (s *service) UpdateCategory(ctx context.Context, id uint, req CategoryRequest, actor auditlog.Actor) (*Category, error) {
	category, err := s.GetCategory(ctx, id)
	if err != nil {
		return nil, err
	}
	req.apply(category)
	category.Name = strings.TrimSpace(category.Name)

	err = checkValid(category)
	if err == nil {
		err = saveError("category", s.repo.UpdateCategory(ctx, category))
	}
	s.record(ctx, actor, "CATEGORY", "UPDATE", map[string]interface{}{"category_id": id, "name": category.Name}, err)
	if err != nil {
		return nil, err
	}
	return category, nil
}

func (s *service) GetCategory(ctx context.Context, id uint) (*Category, error) {
	category, err := s.repo.GetCategoryByID(ctx, id)
	if err != nil {
		return nil, apperror.FromLookup("category", id, err)
	}
	return category, nil
}

func (s *service) ListCategories(ctx context.Context, q ListQuery) (*Page[Category], error) {
	q.normalize()
	rows, total, err := s.repo.ListCategories(ctx, q)
	if err != nil {
		return nil, apperror.FromStore("list categories", err)
	}
	return newPage(rows, total, q), nil
}

// ===============================
// Countries
// ===============================

func normalizeCountry(c *Country) {
	c.Code = strings.ToUpper(strings.TrimSpace(c.Code))
	c.Currency = strings.ToUpper(strings.TrimSpace(c.Currency))
	c.Name = strings.TrimSpace(c.Name)
}

func (s *service) CreateCountry(ctx context.Context, req CountryRequest, actor auditlog.Actor) (*Country, error) {
	country := &Country{Enabled: true}
	req.apply(country)
	normalizeCountry(country)

	err := checkValid(country)
	if err == nil {
		err = saveError("country", s.repo.CreateCountry(ctx, country))
	}
	s.record(ctx, actor, "COUNTRY", "CREATE", map[string]interface{}{"country_id": country.ID, "code": country.Code}, err)
	if err != nil {
		return nil, err
	}
	return country, nil
}

func (s *service) UpdateCountry(ctx context.Context, id uint, req CountryRequest, actor auditlog.Actor) (*Country, error) {
	country, err := s.GetCountry(ctx, id)
	if err != nil {
		return nil, err
	}
	req.apply(country)
	normalizeCountry(country)

	err = checkValid(country)
	if err == nil {
		err = saveError("country", s.repo.UpdateCountry(ctx, country))
	}
	s.record(ctx, actor, "COUNTRY", "UPDATE", map[string]interface{}{"country_id": id, "code": country.Code}, err)
	if err != nil {
		return nil, err
	}
	return country, nil
}

func (s *service) GetCountry(ctx context.Context, id uint) (*Country, error) {
	country, err := s.repo.GetCountryByID(ctx, id)
	if err != nil {
		return nil, apperror.FromLookup("country", id, err)
	}
	return country, nil
}

func (s *service) ListCountries(ctx context.Context, q ListQuery) (*Page[Country], error) {
	q.normalize()
	rows, total, err := s.repo.ListCountries(ctx, q)
	if err != nil {
		return nil, apperror.FromStore("list countries", err)
	}
	return newPage(rows, total, q), nil
}

// ===============================
// Appeals
// ===============================

// applyAppeal copies set fields and checks that references exist.
func (s *service) applyAppeal(ctx context.Context, appeal *Appeal, req AppealRequest) error {
	if req.Name != nil {
		appeal.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		appeal.Description = *req.Description
	}
	if req.Enabled != nil {
		appeal.Enabled = *req.Enabled
	}
	if req.DonationType != nil {
		appeal.DonationType = *req.DonationType
	}
	if req.Sort != nil {
		appeal.Sort = *req.Sort
	}
	if req.CategoryID != nil {
		if _, err := s.repo.GetCategoryByID(ctx, *req.CategoryID); err != nil {
			return referenceError("category", *req.CategoryID, err)
		}
		appeal.CategoryID = req.CategoryID
	}
	if req.CountryID != nil {
		if _, err := s.repo.GetCountryByID(ctx, *req.CountryID); err != nil {
			return referenceError("country", *req.CountryID, err)
		}
		appeal.CountryID = req.CountryID
	}
	if req.RecurrenceConfig != nil {
		if err := checkValid(req.RecurrenceConfig); err != nil {
			return err
		}
		raw, err := json.Marshal(req.RecurrenceConfig)
		if err != nil {
			return apperror.Validation("invalid recurrence_config")
		}
		appeal.RecurrenceConfig = datatypes.JSON(raw)
	}
	return checkValid(appeal)
}

// referenceError turns a missing referenced row into a validation error.
func referenceError(entity string, id uint, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperror.Validation("%s %d does not exist", entity, id)
	}
	return apperror.FromStore("load "+entity, err)
}

func (s *service) CreateAppeal(ctx context.Context, req AppealRequest, actor auditlog.Actor) (*Appeal, error) {
	appeal := &Appeal{Enabled: true, DonationType: "both"}
	err := s.applyAppeal(ctx, appeal, req)
	if err == nil {
		err = saveError("appeal", s.repo.CreateAppeal(ctx, appeal))
	}
	s.record(ctx, actor, "APPEAL", "CREATE", map[string]interface{}{"appeal_id": appeal.ID, "name": appeal.Name}, err)
	if err != nil {
		return nil, err
	}
	return appeal, nil
}

func (s *service) UpdateAppeal(ctx context.Context, id uint, req AppealRequest, actor auditlog.Actor) (*Appeal, error) {
	appeal, err := s.GetAppeal(ctx, id)
	if err != nil {
		return nil, err
	}
	err = s.applyAppeal(ctx, appeal, req)
	if err == nil {
		err = saveError("appeal", s.repo.UpdateAppeal(ctx, appeal))
	}
	s.record(ctx, actor, "APPEAL", "UPDATE", map[string]interface{}{"appeal_id": id, "name": appeal.Name}, err)
	if err != nil {
		return nil, err
	}
	return appeal, nil
}

func (s *service) GetAppeal(ctx context.Context, id uint) (*Appeal, error) {
	appeal, err := s.repo.GetAppealByID(ctx, id)
	if err != nil {
		return nil, apperror.FromLookup("appeal", id, err)
	}
	return appeal, nil
}

func (s *service) ListAppeals(ctx context.Context, q ListQuery) (*Page[Appeal], error) {
	q.normalize()
	rows, total, err := s.repo.ListAppeals(ctx, q)
	if err != nil {
		return nil, apperror.FromStore("list appeals", err)
	}
	return newPage(rows, total, q), nil
}

// ===============================
// Amounts and funds
// ===============================

func (s *service) requireAppeal(ctx context.Context, appealID uint) error {
	if _, err := s.repo.GetAppealByID(ctx, appealID); err != nil {
		return apperror.FromLookup("appeal", appealID, err)
	}
	return nil
}

func (s *service) CreateAmount(ctx context.Context, appealID uint, req AmountRequest, actor auditlog.Actor) (*Amount, error) {
	if err := s.requireAppeal(ctx, appealID); err != nil {
		return nil, err
	}
	amount := &Amount{AppealID: appealID, Enabled: true}
	req.apply(amount)

	err := checkValid(amount)
	if err == nil {
		err = saveError("amount", s.repo.CreateAmount(ctx, amount))
	}
	s.record(ctx, actor, "AMOUNT", "CREATE", map[string]interface{}{"appeal_id": appealID, "amount_id": amount.ID, "amount": amount.Amount}, err)
	if err != nil {
		return nil, err
	}
	return amount, nil
}

func (s *service) UpdateAmount(ctx context.Context, appealID, id uint, req AmountRequest, actor auditlog.Actor) (*Amount, error) {
	amount, err := s.repo.GetAmountByID(ctx, id)
	if err != nil {
		return nil, apperror.FromLookup("amount", id, err)
	}
	if amount.AppealID != appealID {
		return nil, apperror.NotFound("amount", id)
	}
	req.apply(amount)

	err = checkValid(amount)
	if err == nil {
		err = saveError("amount", s.repo.UpdateAmount(ctx, amount))
	}
	s.record(ctx, actor, "AMOUNT", "UPDATE", map[string]interface{}{"appeal_id": appealID, "amount_id": id, "amount": amount.Amount}, err)
	if err != nil {
		return nil, err
	}
	return amount, nil
}

func (s *service) ListAmounts(ctx context.Context, appealID uint) ([]Amount, error) {
	if err := s.requireAppeal(ctx, appealID); err != nil {
		return nil, err
	}
	amounts, err := s.repo.ListAmounts(ctx, appealID)
	if err != nil {
		return nil, apperror.FromStore("list amounts", err)
	}
	return amounts, nil
}

func (s *service) CreateFund(ctx context.Context, appealID uint, req FundRequest, actor auditlog.Actor) (*Fund, error) {
	if err := s.requireAppeal(ctx, appealID); err != nil {
		return nil, err
	}
	fund := &Fund{AppealID: appealID, Enabled: true}
	req.apply(fund)
	fund.Name = strings.TrimSpace(fund.Name)

	err := checkValid(fund)
	if err == nil {
		err = saveError("fund", s.repo.CreateFund(ctx, fund))
	}
	s.record(ctx, actor, "FUND", "CREATE", map[string]interface{}{"appeal_id": appealID, "fund_id": fund.ID, "name": fund.Name}, err)
	if err != nil {
		return nil, err
	}
	return fund, nil
}

func (s *service) UpdateFund(ctx context.Context, appealID, id uint, req FundRequest, actor auditlog.Actor) (*Fund, error) {
	fund, err := s.repo.GetFundByID(ctx, id)
	if err != nil {
		return nil, apperror.FromLookup("fund", id, err)
	}
	if fund.AppealID != appealID {
		return nil, apperror.NotFound("fund", id)
	}
	req.apply(fund)
	fund.Name = strings.TrimSpace(fund.Name)

	err = checkValid(fund)
	if err == nil {
		err = saveError("fund", s.repo.UpdateFund(ctx, fund))
	}
	s.record(ctx, actor, "FUND", "UPDATE", map[string]interface{}{"appeal_id": appealID, "fund_id": id, "name": fund.Name}, err)
	if err != nil {
		return nil, err
	}
	return fund, nil
}

func (s *service) ListFunds(ctx context.Context, appealID uint) ([]Fund, error) {
	if err := s.requireAppeal(ctx, appealID); err != nil {
		return nil, err
	}
	funds, err := s.repo.ListFunds(ctx, appealID)
	if err != nil {
		return nil, apperror.FromStore("list funds", err)
	}
	return funds, nil
}
