package usecase

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sort"
	"sync"
	"time"

	"civic-report/internal/data/entity"
	"civic-report/internal/data/repository"
	"civic-report/pkg/events"

	"github.com/google/uuid"
)

// =============================================================================
// User repository mock
// =============================================================================

type mockUserRepo struct {
	CreateFunc           func(ctx context.Context, user *entity.User) error
	FindByIDFunc         func(ctx context.Context, id uuid.UUID) (*entity.User, error)
	FindByEmailFunc      func(ctx context.Context, email string) (*entity.User, error)
	FindByResetTokenFunc func(ctx context.Context, hashedToken string) (*entity.User, error)
	FindAllFunc          func(ctx context.Context, limit, offset int) ([]*entity.User, error)
	CountAllFunc         func(ctx context.Context) (int64, error)
	UpdateFunc           func(ctx context.Context, user *entity.User) error
	DeactivateFunc       func(ctx context.Context, id uuid.UUID) error
}

func (m *mockUserRepo) Create(ctx context.Context, user *entity.User) error {
	return m.CreateFunc(ctx, user)
}

func (m *mockUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	return m.FindByIDFunc(ctx, id)
}

func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	return m.FindByEmailFunc(ctx, email)
}

func (m *mockUserRepo) FindByResetToken(ctx context.Context, hashedToken string) (*entity.User, error) {
	return m.FindByResetTokenFunc(ctx, hashedToken)
}

func (m *mockUserRepo) FindAll(ctx context.Context, limit, offset int) ([]*entity.User, error) {
	return m.FindAllFunc(ctx, limit, offset)
}

func (m *mockUserRepo) CountAll(ctx context.Context) (int64, error) {
	return m.CountAllFunc(ctx)
}

func (m *mockUserRepo) Update(ctx context.Context, user *entity.User) error {
	return m.UpdateFunc(ctx, user)
}

func (m *mockUserRepo) Deactivate(ctx context.Context, id uuid.UUID) error {
	return m.DeactivateFunc(ctx, id)
}

// newMemUserRepo backs the mock with a map so flows like signup then login
// can run end to end.
func newMemUserRepo() (*mockUserRepo, map[uuid.UUID]*entity.User) {
	var mu sync.Mutex
	users := make(map[uuid.UUID]*entity.User)

	clone := func(u *entity.User) *entity.User {
		c := *u
		return &c
	}

	repo := &mockUserRepo{
		CreateFunc: func(_ context.Context, user *entity.User) error {
			mu.Lock()
			defer mu.Unlock()
			for _, existing := range users {
				if existing.Email == user.Email {
					return repository.ErrDuplicate
				}
			}
			users[user.ID] = clone(user)
			return nil
		},
		FindByIDFunc: func(_ context.Context, id uuid.UUID) (*entity.User, error) {
			mu.Lock()
			defer mu.Unlock()
			if u, ok := users[id]; ok {
				return clone(u), nil
			}
			return nil, nil
		},
		FindByEmailFunc: func(_ context.Context, email string) (*entity.User, error) {
			mu.Lock()
			defer mu.Unlock()
			for _, u := range users {
				if u.Email == email {
					return clone(u), nil
				}
			}
			return nil, nil
		},
		FindByResetTokenFunc: func(_ context.Context, hashedToken string) (*entity.User, error) {
			mu.Lock()
			defer mu.Unlock()
			for _, u := range users {
				if u.PasswordResetToken != nil && *u.PasswordResetToken == hashedToken &&
					u.PasswordResetExpires != nil && u.PasswordResetExpires.After(time.Now()) && u.Active {
					return clone(u), nil
				}
			}
			return nil, nil
		},
		FindAllFunc: func(_ context.Context, limit, offset int) ([]*entity.User, error) {
			mu.Lock()
			defer mu.Unlock()
			all := make([]*entity.User, 0, len(users))
			for _, u := range users {
				all = append(all, clone(u))
			}
			sort.Slice(all, func(i, j int) bool { return all[i].Email < all[j].Email })
			if offset >= len(all) {
				return []*entity.User{}, nil
			}
			end := offset + limit
			if end > len(all) {
				end = len(all)
			}
			return all[offset:end], nil
		},
		CountAllFunc: func(_ context.Context) (int64, error) {
			mu.Lock()
			defer mu.Unlock()
			return int64(len(users)), nil
		},
		UpdateFunc: func(_ context.Context, user *entity.User) error {
			mu.Lock()
			defer mu.Unlock()
			if _, ok := users[user.ID]; !ok {
				return repository.ErrNotFound
			}
			for id, existing := range users {
				if id != user.ID && existing.Email == user.Email {
					return repository.ErrDuplicate
				}
			}
			users[user.ID] = clone(user)
			return nil
		},
		DeactivateFunc: func(_ context.Context, id uuid.UUID) error {
			mu.Lock()
			defer mu.Unlock()
			u, ok := users[id]
			if !ok {
				return repository.ErrNotFound
			}
			u.Active = false
			return nil
		},
	}

	return repo, users
}

// =============================================================================
// Report repository fake
// =============================================================================

type memReportRepo struct {
	mu      sync.Mutex
	reports map[uuid.UUID]*entity.Report
	votes   map[[2]uuid.UUID]entity.VoteDirection

	createErr         error
	updateStatusCalls int
	beforeUpdate      func()
}

func newMemReportRepo() *memReportRepo {
	return &memReportRepo{
		reports: make(map[uuid.UUID]*entity.Report),
		votes:   make(map[[2]uuid.UUID]entity.VoteDirection),
	}
}

func (m *memReportRepo) clone(r *entity.Report) *entity.Report {
	c := *r
	return &c
}

func (m *memReportRepo) Create(_ context.Context, report *entity.Report) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	m.reports[report.ID] = m.clone(report)
	return nil
}

func (m *memReportRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Report, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r, ok := m.reports[id]; ok {
		return m.clone(r), nil
	}
	return nil, nil
}

func (m *memReportRepo) sorted(keep func(*entity.Report) bool) []*entity.Report {
	out := []*entity.Report{}
	for _, r := range m.reports {
		if keep(r) {
			out = append(out, m.clone(r))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (m *memReportRepo) FindAll(_ context.Context) ([]*entity.Report, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sorted(func(*entity.Report) bool { return true }), nil
}

func (m *memReportRepo) FindByAuthor(_ context.Context, authorID uuid.UUID) ([]*entity.Report, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sorted(func(r *entity.Report) bool { return r.OwnedBy(authorID) }), nil
}

// Update leaves status alone, like the SQL repository
func (m *memReportRepo) Update(_ context.Context, report *entity.Report) error {
	if m.beforeUpdate != nil {
		m.beforeUpdate()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.reports[report.ID]
	if !ok {
		return repository.ErrNotFound
	}
	updated := m.clone(report)
	updated.Status = stored.Status
	m.reports[report.ID] = updated
	return nil
}

func (m *memReportRepo) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.reports[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.reports, id)
	return nil
}

func (m *memReportRepo) UpdateStatus(_ context.Context, id uuid.UUID, status entity.ReportStatus, actorID uuid.UUID, isAdmin bool) (*entity.Report, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updateStatusCalls++
	r, ok := m.reports[id]
	if !ok || !(r.OwnedBy(actorID) || isAdmin) {
		return nil, nil
	}
	r.Status = status
	r.UpdatedAt = time.Now()
	return m.clone(r), nil
}

func (m *memReportRepo) Vote(_ context.Context, reportID, userID uuid.UUID, direction entity.VoteDirection) (*entity.Report, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.reports[reportID]
	if !ok {
		return nil, nil
	}

	key := [2]uuid.UUID{reportID, userID}
	previous := m.votes[key]
	adjust := func(d entity.VoteDirection, delta int) {
		if d == entity.VoteUp {
			r.Upvotes += delta
		} else {
			r.Downvotes += delta
		}
	}

	switch {
	case previous == "":
		m.votes[key] = direction
		adjust(direction, 1)
	case previous == direction:
		delete(m.votes, key)
		adjust(direction, -1)
	default:
		m.votes[key] = direction
		adjust(previous, -1)
		adjust(direction, 1)
	}
	return m.clone(r), nil
}

// =============================================================================
// Store and publisher fakes
// =============================================================================

type memStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	saveErr error
}

func newMemStore() *memStore {
	return &memStore{objects: make(map[string][]byte)}
}

func (s *memStore) Save(_ context.Context, folder, name, _ string, body io.Reader) (string, error) {
	if s.saveErr != nil {
		return "", s.saveErr
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, body); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	ref := "/img/" + folder + "/" + name
	s.objects[ref] = buf.Bytes()
	return ref, nil
}

func (s *memStore) Delete(_ context.Context, ref string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.objects[ref]; !ok {
		return errors.New("unknown object")
	}
	delete(s.objects, ref)
	return nil
}

func (s *memStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.objects)
}

type recordedEvent struct {
	Subject string
	Event   events.ReportEvent
}

type fakePublisher struct {
	mu     sync.Mutex
	events []recordedEvent
	err    error
}

func (p *fakePublisher) Publish(_ context.Context, subject string, event events.ReportEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, recordedEvent{Subject: subject, Event: event})
	return nil
}

func (p *fakePublisher) Close() {}

func (p *fakePublisher) subjects() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.Subject
	}
	return out
}
