// Package memory implementa el Identity Store en memoria. Se usa en tests y
// con storage.driver=memory en desarrollo.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dropDatabas3/warden/internal/domain/repository"
)

type pair struct{ a, b int64 }

// Store implementa repository.Store sobre maps protegidos por un RWMutex.
type Store struct {
	mu  sync.RWMutex
	now func() time.Time

	seq int64

	users      map[int64]*repository.User
	roles      map[int64]repository.Role
	groups     map[int64]repository.Group
	userRoles  map[pair]*repository.UserRole
	userGroups map[pair]*repository.UserGroup
	groupRoles map[pair]*repository.GroupRole
	tokens     map[string]repository.RefreshToken
}

// Option configura el Store.
type Option func(*Store)

// WithClock reemplaza time.Now para los campos de auditoría.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New crea un Store vacío.
func New(opts ...Option) *Store {
	s := &Store{
		now:        time.Now,
		users:      map[int64]*repository.User{},
		roles:      map[int64]repository.Role{},
		groups:     map[int64]repository.Group{},
		userRoles:  map[pair]*repository.UserRole{},
		userGroups: map[pair]*repository.UserGroup{},
		groupRoles: map[pair]*repository.GroupRole{},
		tokens:     map[string]repository.RefreshToken{},
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

var _ repository.Store = (*Store)(nil)

func (s *Store) Users() repository.UserRepository      { return (*users)(s) }
func (s *Store) Catalog() repository.CatalogRepository { return (*catalog)(s) }
func (s *Store) Grants() repository.GrantRepository    { return (*grants)(s) }
func (s *Store) GrantReader() repository.GrantReader   { return (*reader)(s) }
func (s *Store) Tokens() repository.TokenRepository    { return (*tokens)(s) }
func (s *Store) Close()                                {}

func (s *Store) nextID() int64 {
	s.seq++
	return s.seq
}

func (s *Store) audit(executorID int64) repository.Audit {
	now := s.now().UTC()
	return repository.Audit{CreatedAt: now, CreatedBy: executorID, ModifiedAt: now, ModifiedBy: executorID}
}

func (s *Store) roleByName(name string) (repository.Role, bool) {
	for _, r := range s.roles {
		if r.Name == name {
			return r, true
		}
	}
	return repository.Role{}, false
}

func (s *Store) groupByName(name string) (repository.Group, bool) {
	for _, g := range s.groups {
		if g.Name == name {
			return g, true
		}
	}
	return repository.Group{}, false
}

func sortRoles(rs []repository.Role) []repository.Role {
	sort.Slice(rs, func(i, j int) bool { return rs[i].Name < rs[j].Name })
	return rs
}

func sortGroups(gs []repository.Group) []repository.Group {
	sort.Slice(gs, func(i, j int) bool { return gs[i].Name < gs[j].Name })
	return gs
}

// ───────────────────────────── users ─────────────────────────────

type users Store

func (u *users) GetByID(ctx context.Context, userID int64) (*repository.User, error) {
	s := (*Store)(u)
	s.mu.RLock()
	defer s.mu.RUnlock()
	usr, ok := s.users[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *usr
	return &cp, nil
}

func (u *users) GetByUsername(ctx context.Context, username string) (*repository.User, error) {
	s := (*Store)(u)
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, usr := range s.users {
		if strings.EqualFold(usr.Username, username) {
			cp := *usr
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (u *users) ExistsEmail(ctx context.Context, email string) (bool, error) {
	s := (*Store)(u)
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, usr := range s.users {
		if strings.EqualFold(usr.Email, email) {
			return true, nil
		}
	}
	return false, nil
}

func (u *users) ExistsUsername(ctx context.Context, username string) (bool, error) {
	_, err := u.GetByUsername(ctx, username)
	if repository.IsNotFound(err) {
		return false, nil
	}
	return err == nil, err
}

func (u *users) Create(ctx context.Context, in repository.CreateUserInput, executorID int64) (*repository.User, error) {
	s := (*Store)(u)
	if strings.TrimSpace(in.Username) == "" || strings.TrimSpace(in.Email) == "" {
		return nil, repository.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, usr := range s.users {
		if strings.EqualFold(usr.Username, in.Username) || strings.EqualFold(usr.Email, in.Email) {
			return nil, repository.ErrConflict
		}
	}
	usr := &repository.User{
		ID:           s.nextID(),
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: in.PasswordHash,
		Locale:       in.Locale,
		Audit:        s.audit(executorID),
	}
	s.users[usr.ID] = usr
	cp := *usr
	return &cp, nil
}

func (u *users) TouchLastLogin(ctx context.Context, userID int64, at time.Time) (*time.Time, error) {
	s := (*Store)(u)
	s.mu.Lock()
	defer s.mu.Unlock()
	usr, ok := s.users[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	prev := usr.LastLoginAt
	t := at.UTC()
	usr.LastLoginAt = &t
	return prev, nil
}

// ───────────────────────────── catalog ─────────────────────────────

type catalog Store

func (c *catalog) GetRoleByName(ctx context.Context, name string) (*repository.Role, error) {
	s := (*Store)(c)
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.roleByName(name)
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &r, nil
}

func (c *catalog) GetGroupByName(ctx context.Context, name string) (*repository.Group, error) {
	s := (*Store)(c)
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.groupByName(name)
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &g, nil
}

func (c *catalog) CreateRole(ctx context.Context, name, description string, executorID int64) (*repository.Role, error) {
	s := (*Store)(c)
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, repository.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.roleByName(name); ok {
		return nil, repository.ErrConflict
	}
	r := repository.Role{ID: s.nextID(), Name: name, Description: description}
	s.roles[r.ID] = r
	return &r, nil
}

func (c *catalog) CreateGroup(ctx context.Context, name, description string, executorID int64) (*repository.Group, error) {
	s := (*Store)(c)
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, repository.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.groupByName(name); ok {
		return nil, repository.ErrConflict
	}
	g := repository.Group{ID: s.nextID(), Name: name, Description: description}
	s.groups[g.ID] = g
	return &g, nil
}

func (c *catalog) ListRoles(ctx context.Context) ([]repository.Role, error) {
	s := (*Store)(c)
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]repository.Role, 0, len(s.roles))
	for _, r := range s.roles {
		out = append(out, r)
	}
	return sortRoles(out), nil
}

func (c *catalog) ListGroups(ctx context.Context) ([]repository.Group, error) {
	s := (*Store)(c)
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]repository.Group, 0, len(s.groups))
	for _, g := range s.groups {
		out = append(out, g)
	}
	return sortGroups(out), nil
}
