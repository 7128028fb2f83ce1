package donor

import (
	"context"

	"github.com/sharath018/donor-backoffice-backend/internal/apperror"
	"github.com/sharath018/donor-backoffice-backend/internal/ledger"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type Service interface {
	List(ctx context.Context, q ListQuery) (*PaginatedDonors, error)
	Get(ctx context.Context, id uint) (*Profile, error)
	Transactions(ctx context.Context, donorID uint, q TransactionQuery) (*PaginatedTransactions, error)
}

type service struct {
	repo   Repository
	logger *zap.Logger
}

func NewService(repo Repository, logger *zap.Logger) Service {
	return &service{repo: repo, logger: logger.Named("donor.service")}
}

func (s *service) List(ctx context.Context, q ListQuery) (*PaginatedDonors, error) {
	q.Page, q.Limit = normalizePage(q.Page, q.Limit)
	donors, total, err := s.repo.List(ctx, q)
	if err != nil {
		return nil, apperror.FromStore("list donors", err)
	}
	if donors == nil {
		donors = []ledger.Donor{}
	}
	return &PaginatedDonors{
		Data:       donors,
		Total:      total,
		Page:       q.Page,
		Limit:      q.Limit,
		TotalPages: totalPages(total, q.Limit),
	}, nil
}

func (s *service) Get(ctx context.Context, id uint) (*Profile, error) {
	d, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.FromLookup("donor", id, err)
	}

	row, err := s.repo.Summary(ctx, *d)
	if err != nil {
		return nil, apperror.FromStore("summarize donor giving", err)
	}

	total := decimal.NewFromFloat(row.TotalGiven)
	giving := GivingSummary{
		GiftCount:   row.GiftCount,
		TotalGiven:  total.Round(2).InexactFloat64(),
		FirstGiftAt: row.FirstGift,
		LastGiftAt:  row.LastGift,
	}
	if row.GiftCount > 0 {
		giving.AverageGift = total.Div(decimal.NewFromInt(row.GiftCount)).Round(2).InexactFloat64()
	}

	return &Profile{Donor: *d, FullName: d.FullName(), Giving: giving}, nil
}

func (s *service) Transactions(ctx context.Context, donorID uint, q TransactionQuery) (*PaginatedTransactions, error) {
	d, err := s.repo.GetByID(ctx, donorID)
	if err != nil {
		return nil, apperror.FromLookup("donor", donorID, err)
	}

	q.Page, q.Limit = normalizePage(q.Page, q.Limit)
	txns, total, err := s.repo.ListTransactions(ctx, *d, q)
	if err != nil {
		return nil, apperror.FromStore("list donor transactions", err)
	}

	views := make([]TransactionView, 0, len(txns))
	for _, t := range txns {
		details := t.Details
		if details == nil {
			details = []ledger.TransactionDetail{}
		}
		views = append(views, TransactionView{
			ID:            t.ID,
			OrderID:       t.OrderID,
			TotalAmount:   decimal.NewFromFloat(t.TotalAmount).Round(2).InexactFloat64(),
			Currency:      t.Currency,
			PaymentMethod: t.PaymentMethod,
			Status:        t.Status,
			Reportable:    t.Reportable(),
			Recurring:     t.MaxFrequency() >= ledger.FrequencyMonthly,
			Renewal:       t.IsRenewal(),
			CreatedAt:     t.CreatedAt,
			Details:       details,
		})
	}

	return &PaginatedTransactions{
		Data:       views,
		Total:      total,
		Page:       q.Page,
		Limit:      q.Limit,
		TotalPages: totalPages(total, q.Limit),
	}, nil
}
