package service

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/respira/wellness-api/internal/core/domain"
)

// ---------------------------------------------------------------------------
// In-memory stub repositories
// ---------------------------------------------------------------------------

type stubUserRepo struct {
	mu      sync.Mutex
	users   map[string]*domain.User
	roles   *stubRoleRepo
	nextID  int
	findErr error // if set, every lookup returns this error
}

func newStubUserRepo(roles *stubRoleRepo) *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User), roles: roles}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

// Create mirrors the unique indexes on email and username.
func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email || u.Username == user.Username {
			return nil, domain.ErrUserExists
		}
	}
	r.nextID++
	stored := cloneUser(user)
	stored.ID = fmt.Sprintf("u%d", r.nextID)
	stored.Role = domain.RoleRef(user.RoleID())
	r.users[stored.ID] = stored
	return cloneUser(stored), nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	for _, u := range r.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByLogin(_ context.Context, login string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	for _, u := range r.users {
		if u.Email == login || u.Username == login {
			out := cloneUser(u)
			if role, ok := r.roles.byID(u.RoleID()); ok {
				out.Role = role
			}
			return out, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) UsernameTaken(_ context.Context, username, exceptID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, u := range r.users {
		if u.Username == username && id != exceptID {
			return true, nil
		}
	}
	return false, nil
}

func (r *stubUserRepo) UpdateUsername(_ context.Context, id, username string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	u.Username = username
	return cloneUser(u), nil
}

func (r *stubUserRepo) List(_ context.Context) ([]*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, cloneUser(u))
	}
	return out, nil
}

type stubRoleRepo struct {
	mu      sync.Mutex
	roles   map[string]domain.Role
	lookups int   // FindByID calls
	findErr error // if set, FindByID returns this error
}

func newStubRoleRepo(names ...string) *stubRoleRepo {
	r := &stubRoleRepo{roles: make(map[string]domain.Role)}
	for _, n := range names {
		_, _ = r.Create(context.Background(), n)
	}
	return r
}

func (r *stubRoleRepo) byID(id string) (domain.Role, bool) {
	role, ok := r.roles[id]
	return role, ok
}

func (r *stubRoleRepo) Create(_ context.Context, name string) (*domain.Role, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, role := range r.roles {
		if role.Name == name {
			return nil, domain.ErrRoleExists
		}
	}
	role := domain.Role{ID: "role-" + strings.ToLower(name), Name: name}
	r.roles[role.ID] = role
	return &role, nil
}

func (r *stubRoleRepo) FindByID(_ context.Context, id string) (*domain.Role, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lookups++
	if r.findErr != nil {
		return nil, r.findErr
	}
	role, ok := r.roles[id]
	if !ok {
		return nil, domain.ErrRoleNotFound
	}
	return &role, nil
}

func (r *stubRoleRepo) FindByName(_ context.Context, name string) (*domain.Role, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, role := range r.roles {
		if role.Name == name {
			out := role
			return &out, nil
		}
	}
	return nil, domain.ErrRoleNotFound
}

func (r *stubRoleRepo) DeleteByName(_ context.Context, name string) (*domain.Role, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, role := range r.roles {
		if role.Name == name {
			delete(r.roles, id)
			out := role
			return &out, nil
		}
	}
	return nil, domain.ErrRoleNotFound
}

func (r *stubRoleRepo) List(_ context.Context) ([]*domain.Role, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.Role, 0, len(r.roles))
	for _, role := range r.roles {
		role := role
		out = append(out, &role)
	}
	return out, nil
}

func (r *stubRoleRepo) Count(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.roles)), nil
}

type stubRoleCache struct {
	names  map[string]string
	getErr error
}

func newStubRoleCache() *stubRoleCache {
	return &stubRoleCache{names: make(map[string]string)}
}

func (c *stubRoleCache) Get(_ context.Context, id string) (string, bool, error) {
	if c.getErr != nil {
		return "", false, c.getErr
	}
	name, ok := c.names[id]
	return name, ok, nil
}

func (c *stubRoleCache) Set(_ context.Context, id, name string) error {
	c.names[id] = name
	return nil
}

func (c *stubRoleCache) Delete(_ context.Context, id string) error {
	delete(c.names, id)
	return nil
}

type recordingAudit struct {
	mu     sync.Mutex
	events []domain.AuthEvent
}

func (a *recordingAudit) Record(e domain.AuthEvent) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.events = append(a.events, e)
}

func (a *recordingAudit) kinds() []domain.AuthEventKind {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]domain.AuthEventKind, 0, len(a.events))
	for _, e := range a.events {
		out = append(out, e.Kind)
	}
	return out
}
