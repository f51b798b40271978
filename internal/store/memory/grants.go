package memory

import (
	"context"
	"time"

	"github.com/dropDatabas3/warden/internal/domain/repository"
)

type grants Store

// reactivate limpia archived_at de una arista existente.
func (s *Store) reactivate(e *repository.Edge, executorID int64) {
	now := s.now().UTC()
	e.ArchivedAt = nil
	e.ArchivedBy = nil
	e.ModifiedAt = now
	e.ModifiedBy = executorID
}

func (s *Store) archive(e *repository.Edge, executorID int64) error {
	now := s.now().UTC()
	if !e.ActiveAt(now) {
		return repository.ErrNotFound
	}
	by := executorID
	e.ArchivedAt = &now
	e.ArchivedBy = &by
	e.ModifiedAt = now
	e.ModifiedBy = executorID
	return nil
}

func (g *grants) AssignRole(ctx context.Context, userID, roleID, executorID int64) error {
	s := (*Store)(g)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[userID]; !ok {
		return repository.ErrNotFound
	}
	if _, ok := s.roles[roleID]; !ok {
		return repository.ErrNotFound
	}
	k := pair{userID, roleID}
	if e, ok := s.userRoles[k]; ok {
		s.reactivate(&e.Edge, executorID)
		return nil
	}
	s.userRoles[k] = &repository.UserRole{UserID: userID, RoleID: roleID, Edge: repository.Edge{Audit: s.audit(executorID)}}
	return nil
}

func (g *grants) ArchiveRole(ctx context.Context, userID, roleID, executorID int64) error {
	s := (*Store)(g)
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.userRoles[pair{userID, roleID}]
	if !ok {
		return repository.ErrNotFound
	}
	return s.archive(&e.Edge, executorID)
}

func (g *grants) DeleteRole(ctx context.Context, userID, roleID int64) error {
	s := (*Store)(g)
	s.mu.Lock()
	defer s.mu.Unlock()
	k := pair{userID, roleID}
	if _, ok := s.userRoles[k]; !ok {
		return repository.ErrNotFound
	}
	delete(s.userRoles, k)
	return nil
}

func (g *grants) AddToGroup(ctx context.Context, userID, groupID, executorID int64) error {
	s := (*Store)(g)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[userID]; !ok {
		return repository.ErrNotFound
	}
	if _, ok := s.groups[groupID]; !ok {
		return repository.ErrNotFound
	}
	k := pair{userID, groupID}
	if e, ok := s.userGroups[k]; ok {
		s.reactivate(&e.Edge, executorID)
		return nil
	}
	s.userGroups[k] = &repository.UserGroup{UserID: userID, GroupID: groupID, Edge: repository.Edge{Audit: s.audit(executorID)}}
	return nil
}

func (g *grants) ArchiveGroupMembership(ctx context.Context, userID, groupID, executorID int64) error {
	s := (*Store)(g)
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.userGroups[pair{userID, groupID}]
	if !ok {
		return repository.ErrNotFound
	}
	return s.archive(&e.Edge, executorID)
}

func (g *grants) GrantGroupRole(ctx context.Context, groupID, roleID, executorID int64) error {
	s := (*Store)(g)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.groups[groupID]; !ok {
		return repository.ErrNotFound
	}
	if _, ok := s.roles[roleID]; !ok {
		return repository.ErrNotFound
	}
	k := pair{groupID, roleID}
	if e, ok := s.groupRoles[k]; ok {
		s.reactivate(&e.Edge, executorID)
		return nil
	}
	s.groupRoles[k] = &repository.GroupRole{GroupID: groupID, RoleID: roleID, Edge: repository.Edge{Audit: s.audit(executorID)}}
	return nil
}

func (g *grants) ArchiveGroupRole(ctx context.Context, groupID, roleID, executorID int64) error {
	s := (*Store)(g)
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.groupRoles[pair{groupID, roleID}]
	if !ok {
		return repository.ErrNotFound
	}
	return s.archive(&e.Edge, executorID)
}

// ───────────────────────────── reader ─────────────────────────────

type reader Store

func (r *reader) DirectRoles(ctx context.Context, userID int64, now time.Time) ([]repository.Role, error) {
	s := (*Store)(r)
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []repository.Role
	for k, e := range s.userRoles {
		if k.a == userID && e.ActiveAt(now) {
			out = append(out, s.roles[k.b])
		}
	}
	return sortRoles(out), nil
}

func (r *reader) MemberGroups(ctx context.Context, userID int64, now time.Time) ([]repository.Group, error) {
	s := (*Store)(r)
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortGroups(s.activeGroups(userID, now)), nil
}

func (s *Store) activeGroups(userID int64, now time.Time) []repository.Group {
	var out []repository.Group
	for k, e := range s.userGroups {
		if k.a == userID && e.ActiveAt(now) {
			out = append(out, s.groups[k.b])
		}
	}
	return out
}

func (r *reader) GroupRoles(ctx context.Context, userID int64, now time.Time) ([]repository.Role, error) {
	s := (*Store)(r)
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []repository.Role
	for _, g := range s.activeGroups(userID, now) {
		for k, e := range s.groupRoles {
			if k.a == g.ID && e.ActiveAt(now) {
				out = append(out, s.roles[k.b])
			}
		}
	}
	return sortRoles(out), nil
}

func (r *reader) HasDirectRole(ctx context.Context, userID int64, roleName string, now time.Time) (bool, error) {
	s := (*Store)(r)
	s.mu.RLock()
	defer s.mu.RUnlock()
	role, ok := s.roleByName(roleName)
	if !ok {
		return false, nil
	}
	e, ok := s.userRoles[pair{userID, role.ID}]
	return ok && e.ActiveAt(now), nil
}

func (r *reader) HasGroupRole(ctx context.Context, userID int64, roleName string, now time.Time) (bool, error) {
	s := (*Store)(r)
	s.mu.RLock()
	defer s.mu.RUnlock()
	role, ok := s.roleByName(roleName)
	if !ok {
		return false, nil
	}
	for _, g := range s.activeGroups(userID, now) {
		if e, ok := s.groupRoles[pair{g.ID, role.ID}]; ok && e.ActiveAt(now) {
			return true, nil
		}
	}
	return false, nil
}

func (r *reader) HasGroup(ctx context.Context, userID int64, groupName string, now time.Time) (bool, error) {
	s := (*Store)(r)
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.groupByName(groupName)
	if !ok {
		return false, nil
	}
	e, ok := s.userGroups[pair{userID, g.ID}]
	return ok && e.ActiveAt(now), nil
}

// ───────────────────────────── tokens ─────────────────────────────

type tokens Store

func (t *tokens) Append(ctx context.Context, rt repository.RefreshToken) error {
	s := (*Store)(t)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tokens[rt.Handle]; ok {
		return repository.ErrConflict
	}
	s.tokens[rt.Handle] = rt
	return nil
}

func (t *tokens) GetByHandle(ctx context.Context, handle string) (*repository.RefreshToken, error) {
	s := (*Store)(t)
	s.mu.RLock()
	defer s.mu.RUnlock()
	rt, ok := s.tokens[handle]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &rt, nil
}
