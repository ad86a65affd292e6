package service

import (
	"context"

	"sunnah_sayings/internal/model"

	"github.com/stretchr/testify/mock"
)

type mockUserRepo struct {
	mock.Mock
}

func (m *mockUserRepo) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if u := args.Get(0); u != nil {
		return u.(*model.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserRepo) EnsureIndexes(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

type mockQuoteRepo struct {
	mock.Mock
}

func (m *mockQuoteRepo) Create(ctx context.Context, quote *model.Quote) error {
	return m.Called(ctx, quote).Error(0)
}

func (m *mockQuoteRepo) FindByID(ctx context.Context, id string) (*model.Quote, error) {
	args := m.Called(ctx, id)
	if q := args.Get(0); q != nil {
		return q.(*model.Quote), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockQuoteRepo) Find(ctx context.Context, filter model.QuoteFilter) ([]model.Quote, error) {
	args := m.Called(ctx, filter)
	if q := args.Get(0); q != nil {
		return q.([]model.Quote), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockQuoteRepo) FindLatest(ctx context.Context, status string, limit int64) ([]model.Quote, error) {
	args := m.Called(ctx, status, limit)
	if q := args.Get(0); q != nil {
		return q.([]model.Quote), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockQuoteRepo) Update(ctx context.Context, id string, fields map[string]any) (*model.UpdateResult, error) {
	args := m.Called(ctx, id, fields)
	if r := args.Get(0); r != nil {
		return r.(*model.UpdateResult), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockQuoteRepo) Delete(ctx context.Context, id string) (int64, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockQuoteRepo) EnsureIndexes(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}
