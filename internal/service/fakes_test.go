package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/ecoleta/ecoleta-go/internal/model"
	"github.com/ecoleta/ecoleta-go/internal/repository"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(t time.Time) *fakeClock { return &fakeClock{now: t} }

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fakeUsers struct {
	byID map[int64]*model.User
	err  error
}

func newFakeUsers(users ...*model.User) *fakeUsers {
	f := &fakeUsers{byID: make(map[int64]*model.User)}
	for _, u := range users {
		f.byID[u.ID] = u
	}
	return f
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*model.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, u := range f.byID {
		if u.Email == email && u.Active {
			return u, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (f *fakeUsers) GetByID(_ context.Context, id int64) (*model.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	u, ok := f.byID[id]
	if !ok || !u.Active {
		return nil, repository.ErrUserNotFound
	}
	return u, nil
}

type fakeMaterials struct {
	all []model.MaterialType
	err error
}

func (f *fakeMaterials) ListActive(context.Context) ([]model.MaterialType, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []model.MaterialType
	for _, m := range f.all {
		if m.Active {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f *fakeMaterials) FindActiveByIDs(_ context.Context, ids []int64) ([]model.MaterialType, error) {
	if f.err != nil {
		return nil, f.err
	}
	want := make(map[int64]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	out := []model.MaterialType{}
	for _, m := range f.all {
		if want[m.ID] && m.Active {
			out = append(out, m)
		}
	}
	return out, nil
}

type fakeStore struct {
	mu       sync.Mutex
	nextID   int64
	byID     map[int64]model.PickupRequest
	failures []error
}

func newFakeStore() *fakeStore {
	return &fakeStore{nextID: 1, byID: make(map[int64]model.PickupRequest)}
}

func (f *fakeStore) Create(_ context.Context, req model.PickupRequest) (*model.PickupRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.failures) > 0 {
		err := f.failures[0]
		f.failures = f.failures[1:]
		return nil, err
	}
	req.ID = f.nextID
	f.nextID++
	f.byID[req.ID] = req
	return &req, nil
}

func (f *fakeStore) GetByID(_ context.Context, id int64) (*model.PickupRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	req, ok := f.byID[id]
	if !ok {
		return nil, repository.ErrPickupNotFound
	}
	return &req, nil
}

func (f *fakeStore) List(_ context.Context, filter model.PickupFilter) ([]model.PickupRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []model.PickupRequest{}
	for _, req := range f.byID {
		if filter.Status != "" && req.Status != filter.Status {
			continue
		}
		out = append(out, req)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (f *fakeStore) UpdateStatus(_ context.Context, id int64, t model.Transition) (*model.PickupRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	req, ok := f.byID[id]
	if !ok {
		return nil, repository.ErrPickupNotFound
	}
	req.Status = t.Status
	req.Justification = t.Justification
	f.byID[id] = req
	return &req, nil
}
