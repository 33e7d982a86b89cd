package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"budget-api/internal/service/calculate"
	"budget-api/internal/storage"
)

var (
	ErrInvalidStatus           = errors.New("invalid budget status")
	ErrInvalidStatusTransition = errors.New("invalid budget status transition")
	ErrBudgetClosed            = errors.New("budget is closed for changes")
)

type TemplateStorage interface {
	GetTemplate(ctx context.Context, companyID, id string) (*storage.Template, error)
	ListTemplates(ctx context.Context, companyID string, activeOnly bool) ([]storage.TemplateSummary, error)
	CreateTemplate(ctx context.Context, t *storage.Template) error
	UpdateTemplate(ctx context.Context, t *storage.Template) error
	SetTemplateActive(ctx context.Context, companyID, id string, active bool) error
	DeleteTemplate(ctx context.Context, companyID, id string) error
}

type BudgetStorage interface {
	GetBudget(ctx context.Context, companyID, id string) (*storage.Budget, error)
	ListBudgets(ctx context.Context, companyID string, filter storage.BudgetFilter) ([]storage.Budget, error)
	CreateBudget(ctx context.Context, b *storage.Budget) error
	UpdateBudget(ctx context.Context, b *storage.Budget, prevVersion int) error
	UpdateBudgetStatus(ctx context.Context, companyID, id string, status storage.BudgetStatus) error
	DeleteBudget(ctx context.Context, companyID, id string) error
}

type CompanyStorage interface {
	GetCompany(ctx context.Context, id string) (*storage.Company, error)
	ListCompanies(ctx context.Context) ([]storage.Company, error)
	CreateCompany(ctx context.Context, c storage.Company) error
	UpdateCompanySettings(ctx context.Context, id string, settings storage.CompanySettings) error
	CompanyStats(ctx context.Context, companyID string) (*storage.CompanyStats, error)
}

type Storage interface {
	TemplateStorage
	BudgetStorage
	CompanyStorage
}

type TemplateCache interface {
	// Template returns the cached template, or on a miss the generation a
	// later SetTemplate must present.
	Template(ctx context.Context, companyID, id string) (*storage.Template, int64, bool, error)
	SetTemplate(ctx context.Context, t *storage.Template, gen int64) error
	InvalidateTemplate(ctx context.Context, companyID, id string) error
}

type BudgetLocker interface {
	LockBudget(ctx context.Context, companyID, id string) (func(), error)
}

type BudgetService struct {
	log      *slog.Logger
	storage  Storage
	cache    TemplateCache
	locker   BudgetLocker
	defaults storage.CompanySettings
	now      func() time.Time
	newID    func() string
}

type Option func(*BudgetService)

func WithCache(cache TemplateCache) Option {
	return func(s *BudgetService) { s.cache = cache }
}

func WithLocker(locker BudgetLocker) Option {
	return func(s *BudgetService) { s.locker = locker }
}

// WithDefaults sets the policy given to companies created through the admin API.
func WithDefaults(settings storage.CompanySettings) Option {
	return func(s *BudgetService) { s.defaults = settings }
}

func WithClock(now func() time.Time) Option {
	return func(s *BudgetService) { s.now = now }
}

func NewBudgetService(log *slog.Logger, storage Storage, opts ...Option) *BudgetService {
	s := &BudgetService{
		log:     log,
		storage: storage,
		now:     func() time.Time { return time.Now().UTC().Truncate(time.Second) },
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Calculate prices items against a template of the company using the
// company's policy. Nothing is persisted or cached.
func (s *BudgetService) Calculate(ctx context.Context, companyID, templateID string, items json.RawMessage) (calculate.Response, error) {
	const op = "service.BudgetService.Calculate"

	_, _, resp, err := s.evaluate(ctx, companyID, templateID, items)
	if err != nil {
		return calculate.Response{}, fmt.Errorf("%s: %w", op, err)
	}

	return resp, nil
}

// evaluate loads the template and the company concurrently and runs the
// calculation pipeline.
func (s *BudgetService) evaluate(ctx context.Context, companyID, templateID string, items json.RawMessage) (*storage.Template, *storage.Company, calculate.Response, error) {
	var (
		tpl     *storage.Template
		company *storage.Company
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		tpl, err = s.template(gctx, companyID, templateID)
		return err
	})
	g.Go(func() error {
		var err error
		company, err = s.storage.GetCompany(gctx, companyID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, calculate.Response{}, err
	}

	resp, err := calculate.Evaluate(tpl.Template, items, policyOf(company))
	if err != nil {
		return nil, nil, calculate.Response{}, err
	}
	resp.Metadata.Currency = company.Settings.Currency

	return tpl, company, resp, nil
}

func policyOf(c *storage.Company) calculate.Policy {
	return calculate.Policy{
		TaxRate:      c.Settings.TaxRate.Decimal,
		ProfitMargin: c.Settings.ProfitMargin.Decimal,
	}
}

type NewBudget struct {
	TemplateID string
	Name       string
	ClientName string
	Notes      string
	Items      json.RawMessage
}

func (s *BudgetService) CreateBudget(ctx context.Context, companyID string, in NewBudget) (*storage.Budget, error) {
	const op = "service.BudgetService.CreateBudget"

	_, company, resp, err := s.evaluate(ctx, companyID, in.TemplateID, in.Items)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	ts := s.now()
	b := &storage.Budget{
		ID:         s.newID(),
		CompanyID:  companyID,
		TemplateID: in.TemplateID,
		Name:       in.Name,
		ClientName: in.ClientName,
		Notes:      in.Notes,
		Status:     storage.StatusDraft,
		Version:    1,
		CreatedAt:  ts,
		UpdatedAt:  ts,
	}
	applyResult(b, company, resp)

	if err := s.storage.CreateBudget(ctx, b); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return b, nil
}

type BudgetUpdate struct {
	Name       string
	ClientName string
	Notes      string
	Items      json.RawMessage
}

// UpdateBudget recalculates a budget from the submitted items and bumps its
// version. Concurrent updates of one budget are serialized when a locker is
// configured; the stored version check rejects lost updates either way.
func (s *BudgetService) UpdateBudget(ctx context.Context, companyID, id string, in BudgetUpdate) (*storage.Budget, error) {
	const op = "service.BudgetService.UpdateBudget"

	if s.locker != nil {
		unlock, err := s.locker.LockBudget(ctx, companyID, id)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		defer unlock()
	}

	current, err := s.storage.GetBudget(ctx, companyID, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if current.Status.Closed() {
		return nil, fmt.Errorf("%s: budget %s is %s: %w", op, id, current.Status, ErrBudgetClosed)
	}

	_, company, resp, err := s.evaluate(ctx, companyID, current.TemplateID, in.Items)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	next := *current
	next.Name = in.Name
	next.ClientName = in.ClientName
	next.Notes = in.Notes
	next.Version = current.Version + 1
	next.UpdatedAt = s.now()
	applyResult(&next, company, resp)

	if err := s.storage.UpdateBudget(ctx, &next, current.Version); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &next, nil
}

func applyResult(b *storage.Budget, company *storage.Company, resp calculate.Response) {
	b.Currency = company.Settings.Currency
	b.TaxRate = company.Settings.TaxRate
	b.ProfitMargin = company.Settings.ProfitMargin
	b.Subtotal = resp.Subtotal
	b.ProfitAmount = resp.ProfitAmount
	b.TaxAmount = resp.TaxAmount
	b.Total = resp.Total

	b.Items = make([]storage.BudgetItem, 0, len(resp.Items))
	for _, item := range resp.Items {
		b.Items = append(b.Items, storage.BudgetItem{
			CategoryID:  item.CategoryID,
			FieldValues: item.FieldValues,
			Amount:      item.Amount,
			Order:       item.Order,
		})
	}
}

// CanTransition reports whether a budget may move from one status to another.
// A decided budget never goes back to draft.
func CanTransition(from, to storage.BudgetStatus) bool {
	if !to.Valid() {
		return false
	}
	return !(from.Closed() && to == storage.StatusDraft)
}

func (s *BudgetService) UpdateBudgetStatus(ctx context.Context, companyID, id string, status storage.BudgetStatus) (*storage.Budget, error) {
	const op = "service.BudgetService.UpdateBudgetStatus"

	if !status.Valid() {
		return nil, fmt.Errorf("%s: %q: %w", op, status, ErrInvalidStatus)
	}

	b, err := s.storage.GetBudget(ctx, companyID, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if !CanTransition(b.Status, status) {
		return nil, fmt.Errorf("%s: %s -> %s: %w", op, b.Status, status, ErrInvalidStatusTransition)
	}

	if err := s.storage.UpdateBudgetStatus(ctx, companyID, id, status); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	b.Status = status
	b.UpdatedAt = s.now()
	return b, nil
}

func (s *BudgetService) GetBudget(ctx context.Context, companyID, id string) (*storage.Budget, error) {
	const op = "service.BudgetService.GetBudget"

	b, err := s.storage.GetBudget(ctx, companyID, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return b, nil
}

func (s *BudgetService) ListBudgets(ctx context.Context, companyID string, filter storage.BudgetFilter) ([]storage.Budget, error) {
	const op = "service.BudgetService.ListBudgets"

	if filter.Status != "" && !filter.Status.Valid() {
		return nil, fmt.Errorf("%s: %q: %w", op, filter.Status, ErrInvalidStatus)
	}

	budgets, err := s.storage.ListBudgets(ctx, companyID, filter)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return budgets, nil
}

func (s *BudgetService) DeleteBudget(ctx context.Context, companyID, id string) error {
	const op = "service.BudgetService.DeleteBudget"

	if err := s.storage.DeleteBudget(ctx, companyID, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
