package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"sunnah_sayings/internal/model"
	"sunnah_sayings/internal/repository"
)

var (
	ErrQuoteNotFound   = errors.New("quote not found")
	ErrNothingToUpdate = errors.New("no fields to update")
)

// QuoteService defines operations for quotes
type QuoteService interface {
	Create(ctx context.Context, submitterEmail string, req model.CreateQuoteRequest) (*model.Quote, error)
	List(ctx context.Context, submittedBy string) ([]model.Quote, error)
	ListApproved(ctx context.Context) ([]model.Quote, error)
	ListLatest(ctx context.Context) ([]model.Quote, error)
	Get(ctx context.Context, id string) (*model.Quote, error)
	Update(ctx context.Context, id string, req model.UpdateQuoteRequest) (*model.UpdateResult, error)
	UpdateStatus(ctx context.Context, id, status string) (*model.UpdateResult, error)
	Delete(ctx context.Context, id string) error
}

type quoteService struct {
	repo repository.QuoteRepository
	now  func() time.Time
}

// NewQuoteService creates a new QuoteService
func NewQuoteService(repo repository.QuoteRepository) QuoteService {
	return &quoteService{repo: repo, now: time.Now}
}

// Create stores a new pending quote. The caller's verified email wins
// over a submittedBy value in the body.
func (s *quoteService) Create(ctx context.Context, submitterEmail string, req model.CreateQuoteRequest) (*model.Quote, error) {
	submittedBy := NormalizeEmail(submitterEmail)
	if submittedBy == "" {
		submittedBy = NormalizeEmail(req.SubmittedBy)
	}

	quote := &model.Quote{
		Text:          strings.TrimSpace(req.Text),
		Narrator:      strings.TrimSpace(req.Narrator),
		Source:        strings.TrimSpace(req.Source),
		Category:      strings.TrimSpace(req.Category),
		SubmittedBy:   submittedBy,
		SubmitterName: strings.TrimSpace(req.SubmitterName),
		Status:        model.QuoteStatusPending,
		CreatedAt:     s.now().UTC(),
		Extra:         req.Extra,
	}
	if err := s.repo.Create(ctx, quote); err != nil {
		return nil, fmt.Errorf("failed to create quote in repo: %w", err)
	}
	return quote, nil
}

func (s *quoteService) List(ctx context.Context, submittedBy string) ([]model.Quote, error) {
	var filter model.QuoteFilter
	if email := strings.TrimSpace(submittedBy); email != "" {
		filter.SubmittedBy = &email
	}
	return s.repo.Find(ctx, filter)
}

func (s *quoteService) ListApproved(ctx context.Context) ([]model.Quote, error) {
	status := model.QuoteStatusApproved
	return s.repo.Find(ctx, model.QuoteFilter{Status: &status})
}

func (s *quoteService) ListLatest(ctx context.Context) ([]model.Quote, error) {
	return s.repo.FindLatest(ctx, model.QuoteStatusApproved, model.LatestQuotesLimit)
}

func (s *quoteService) Get(ctx context.Context, id string) (*model.Quote, error) {
	quote, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if quote == nil {
		return nil, ErrQuoteNotFound
	}
	return quote, nil
}

// Update applies a partial edit. A match with no changes is not an error;
// the caller sees ModifiedCount == 0.
func (s *quoteService) Update(ctx context.Context, id string, req model.UpdateQuoteRequest) (*model.UpdateResult, error) {
	fields := req.Fields()
	if len(fields) == 0 {
		return nil, ErrNothingToUpdate
	}
	return s.update(ctx, id, fields)
}

// UpdateStatus sets only the status field
func (s *quoteService) UpdateStatus(ctx context.Context, id, status string) (*model.UpdateResult, error) {
	return s.update(ctx, id, map[string]any{"status": status})
}

func (s *quoteService) update(ctx context.Context, id string, fields map[string]any) (*model.UpdateResult, error) {
	res, err := s.repo.Update(ctx, id, fields)
	if err != nil {
		return nil, err
	}
	if res.MatchedCount == 0 {
		return nil, ErrQuoteNotFound
	}
	return res, nil
}

// Delete removes any quote by id; ownership is not checked
func (s *quoteService) Delete(ctx context.Context, id string) error {
	n, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrQuoteNotFound
	}
	return nil
}
