package handler

import (
	"context"
	"errors"
	"reflect"
	"sort"
	"strings"
	"sync"

	"sunnah_sayings/internal/model"
	"sunnah_sayings/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// memUsers and memQuotes are in-memory stand-ins for the mongo
// repositories with the same not-found and id parsing behaviour.

type memUsers struct {
	mu    sync.Mutex
	users []model.User
	fail  error
}

func (m *memUsers) Create(_ context.Context, u *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return m.fail
	}
	for _, existing := range m.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return repository.ErrDuplicateKey
		}
	}
	u.ID = primitive.NewObjectID()
	m.users = append(m.users, *u)
	return nil
}

func (m *memUsers) FindByEmail(_ context.Context, email string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return nil, m.fail
	}
	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			found := u
			return &found, nil
		}
	}
	return nil, nil
}

func (m *memUsers) EnsureIndexes(context.Context) error { return nil }

func (m *memUsers) setRole(email, role string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.users {
		if m.users[i].Email == email {
			m.users[i].Role = role
		}
	}
}

func (m *memUsers) count(email string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, u := range m.users {
		if u.Email == email {
			n++
		}
	}
	return n
}

type memQuotes struct {
	mu     sync.Mutex
	quotes []model.Quote
	fail   error
}

func (m *memQuotes) Create(_ context.Context, q *model.Quote) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return m.fail
	}
	q.ID = primitive.NewObjectID()
	m.quotes = append(m.quotes, *q)
	return nil
}

func (m *memQuotes) FindByID(_ context.Context, id string) (*model.Quote, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, q := range m.quotes {
		if q.ID == oid {
			found := q
			return &found, nil
		}
	}
	return nil, nil
}

func (m *memQuotes) Find(_ context.Context, f model.QuoteFilter) ([]model.Quote, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return nil, m.fail
	}
	out := []model.Quote{}
	for _, q := range m.quotes {
		if f.SubmittedBy != nil && !strings.EqualFold(q.SubmittedBy, *f.SubmittedBy) {
			continue
		}
		if f.Status != nil && q.Status != *f.Status {
			continue
		}
		out = append(out, q)
	}
	return out, nil
}

func (m *memQuotes) FindLatest(ctx context.Context, status string, limit int64) ([]model.Quote, error) {
	out, err := m.Find(ctx, model.QuoteFilter{Status: &status})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memQuotes) Update(_ context.Context, id string, fields map[string]any) (*model.UpdateResult, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.quotes {
		if m.quotes[i].ID != oid {
			continue
		}
		before := m.quotes[i]
		q := &m.quotes[i]
		extra := bson.M{}
		for k, v := range q.Extra {
			extra[k] = v
		}
		for k, v := range fields {
			s, _ := v.(string)
			switch k {
			case "text":
				q.Text = s
			case "narrator":
				q.Narrator = s
			case "source":
				q.Source = s
			case "category":
				q.Category = s
			case "status":
				q.Status = s
			case "submittedBy":
				q.SubmittedBy = s
			case "submitterName":
				q.SubmitterName = s
			case "_id", "createdAt":
				return nil, errors.New("immutable field " + k)
			default:
				extra[k] = v
			}
		}
		if len(extra) > 0 {
			q.Extra = extra
		}
		var modified int64
		if !reflect.DeepEqual(before, *q) {
			modified = 1
		}
		return &model.UpdateResult{MatchedCount: 1, ModifiedCount: modified}, nil
	}
	return &model.UpdateResult{}, nil
}

func (m *memQuotes) Delete(_ context.Context, id string) (int64, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.quotes {
		if m.quotes[i].ID == oid {
			m.quotes = append(m.quotes[:i], m.quotes[i+1:]...)
			return 1, nil
		}
	}
	return 0, nil
}

func (m *memQuotes) EnsureIndexes(context.Context) error { return nil }

func (m *memQuotes) len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.quotes)
}

func (m *memQuotes) get(id primitive.ObjectID) model.Quote {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, q := range m.quotes {
		if q.ID == id {
			return q
		}
	}
	return model.Quote{}
}
