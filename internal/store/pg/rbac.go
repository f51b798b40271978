package pg

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dropDatabas3/warden/internal/domain/repository"
)

// activeEdge es el predicado SQL de arista vigente respecto de un parámetro "now".
func activeEdge(alias, nowParam string) string {
	return "(" + alias + ".archived_at IS NULL OR " + alias + ".archived_at > " + nowParam + ")"
}

// ---------- LECTURAS ----------

type grantReader struct{ pool *pgxpool.Pool }

var _ repository.GrantReader = (*grantReader)(nil)

func (r *grantReader) DirectRoles(ctx context.Context, userID int64, now time.Time) ([]repository.Role, error) {
	q := `
SELECT r.id, r.name, r.description
FROM user_has_role ur
JOIN role r ON r.id = ur.role_id
WHERE ur.user_id = $1 AND ` + activeEdge("ur", "$2") + `
ORDER BY r.name;`
	return queryRoles(ctx, r.pool, q, userID, now)
}

func (r *grantReader) MemberGroups(ctx context.Context, userID int64, now time.Time) ([]repository.Group, error) {
	q := `
SELECT g.id, g.name, g.description
FROM user_has_group ug
JOIN app_group g ON g.id = ug.group_id
WHERE ug.user_id = $1 AND ` + activeEdge("ug", "$2") + `
ORDER BY g.name;`
	rows, err := r.pool.Query(ctx, q, userID, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []repository.Group
	for rows.Next() {
		var g repository.Group
		if err := rows.Scan(&g.ID, &g.Name, &g.Description); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

func (r *grantReader) GroupRoles(ctx context.Context, userID int64, now time.Time) ([]repository.Role, error) {
	q := `
SELECT r.id, r.name, r.description
FROM user_has_group ug
JOIN group_has_role gr ON gr.group_id = ug.group_id
JOIN role r ON r.id = gr.role_id
WHERE ug.user_id = $1 AND ` + activeEdge("ug", "$2") + ` AND ` + activeEdge("gr", "$2") + `
ORDER BY r.name;`
	return queryRoles(ctx, r.pool, q, userID, now)
}

func (r *grantReader) HasDirectRole(ctx context.Context, userID int64, roleName string, now time.Time) (bool, error) {
	q := `
SELECT EXISTS (
  SELECT 1
  FROM user_has_role ur
  JOIN role r ON r.id = ur.role_id
  WHERE ur.user_id = $1 AND r.name = $2 AND ` + activeEdge("ur", "$3") + `
);`
	var ok bool
	err := r.pool.QueryRow(ctx, q, userID, roleName, now).Scan(&ok)
	return ok, err
}

func (r *grantReader) HasGroupRole(ctx context.Context, userID int64, roleName string, now time.Time) (bool, error) {
	q := `
SELECT EXISTS (
  SELECT 1
  FROM user_has_group ug
  JOIN group_has_role gr ON gr.group_id = ug.group_id
  JOIN role r ON r.id = gr.role_id
  WHERE ug.user_id = $1 AND r.name = $2
    AND ` + activeEdge("ug", "$3") + `
    AND ` + activeEdge("gr", "$3") + `
);`
	var ok bool
	err := r.pool.QueryRow(ctx, q, userID, roleName, now).Scan(&ok)
	return ok, err
}

func (r *grantReader) HasGroup(ctx context.Context, userID int64, groupName string, now time.Time) (bool, error) {
	q := `
SELECT EXISTS (
  SELECT 1
  FROM user_has_group ug
  JOIN app_group g ON g.id = ug.group_id
  WHERE ug.user_id = $1 AND g.name = $2 AND ` + activeEdge("ug", "$3") + `
);`
	var ok bool
	err := r.pool.QueryRow(ctx, q, userID, groupName, now).Scan(&ok)
	return ok, err
}

func queryRoles(ctx context.Context, pool *pgxpool.Pool, q string, args ...any) ([]repository.Role, error) {
	rows, err := pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []repository.Role
	for rows.Next() {
		var role repository.Role
		if err := rows.Scan(&role.ID, &role.Name, &role.Description); err != nil {
			return nil, err
		}
		out = append(out, role)
	}
	return out, rows.Err()
}

// ---------- CATÁLOGO ----------

type catalogRepo struct{ pool *pgxpool.Pool }

func (r *catalogRepo) GetRoleByName(ctx context.Context, name string) (*repository.Role, error) {
	var role repository.Role
	err := r.pool.QueryRow(ctx, `SELECT id, name, description FROM role WHERE name = $1`, name).
		Scan(&role.ID, &role.Name, &role.Description)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &role, nil
}

func (r *catalogRepo) GetGroupByName(ctx context.Context, name string) (*repository.Group, error) {
	var g repository.Group
	err := r.pool.QueryRow(ctx, `SELECT id, name, description FROM app_group WHERE name = $1`, name).
		Scan(&g.ID, &g.Name, &g.Description)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &g, nil
}

func (r *catalogRepo) CreateRole(ctx context.Context, name, description string, executorID int64) (*repository.Role, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, repository.ErrInvalidInput
	}
	role := repository.Role{Name: name, Description: description}
	err := r.pool.QueryRow(ctx,
		`INSERT INTO role (name, description, created_by) VALUES ($1, $2, $3) RETURNING id`,
		name, description, executorID).Scan(&role.ID)
	if err != nil {
		return nil, mapErr(err)
	}
	return &role, nil
}

func (r *catalogRepo) CreateGroup(ctx context.Context, name, description string, executorID int64) (*repository.Group, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, repository.ErrInvalidInput
	}
	g := repository.Group{Name: name, Description: description}
	err := r.pool.QueryRow(ctx,
		`INSERT INTO app_group (name, description, created_by) VALUES ($1, $2, $3) RETURNING id`,
		name, description, executorID).Scan(&g.ID)
	if err != nil {
		return nil, mapErr(err)
	}
	return &g, nil
}

func (r *catalogRepo) ListRoles(ctx context.Context) ([]repository.Role, error) {
	return queryRoles(ctx, r.pool, `SELECT id, name, description FROM role ORDER BY name`)
}

func (r *catalogRepo) ListGroups(ctx context.Context) ([]repository.Group, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, description FROM app_group ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []repository.Group
	for rows.Next() {
		var g repository.Group
		if err := rows.Scan(&g.ID, &g.Name, &g.Description); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

// ---------- ESCRITURAS ----------

type grantRepo struct{ pool *pgxpool.Pool }

// upsertEdge inserta la arista o, si existía archivada, la reactiva.
func (r *grantRepo) upsertEdge(ctx context.Context, table, colA, colB string, a, b, executorID int64) error {
	q := `
INSERT INTO ` + table + ` (` + colA + `, ` + colB + `, created_by, modified_by)
VALUES ($1, $2, $3, $3)
ON CONFLICT (` + colA + `, ` + colB + `) DO UPDATE
   SET archived_at = NULL, archived_by = NULL, modified_at = NOW(), modified_by = $3`
	_, err := r.pool.Exec(ctx, q, a, b, executorID)
	return mapErr(err)
}

// archiveEdge marca archived_at; ErrNotFound si no hay arista vigente.
func (r *grantRepo) archiveEdge(ctx context.Context, table, colA, colB string, a, b, executorID int64) error {
	q := `
UPDATE ` + table + `
   SET archived_at = NOW(), archived_by = $3, modified_at = NOW(), modified_by = $3
 WHERE ` + colA + ` = $1 AND ` + colB + ` = $2
   AND (archived_at IS NULL OR archived_at > NOW())`
	tag, err := r.pool.Exec(ctx, q, a, b, executorID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *grantRepo) AssignRole(ctx context.Context, userID, roleID, executorID int64) error {
	return r.upsertEdge(ctx, "user_has_role", "user_id", "role_id", userID, roleID, executorID)
}

func (r *grantRepo) ArchiveRole(ctx context.Context, userID, roleID, executorID int64) error {
	return r.archiveEdge(ctx, "user_has_role", "user_id", "role_id", userID, roleID, executorID)
}

func (r *grantRepo) DeleteRole(ctx context.Context, userID, roleID int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM user_has_role WHERE user_id = $1 AND role_id = $2`, userID, roleID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *grantRepo) AddToGroup(ctx context.Context, userID, groupID, executorID int64) error {
	return r.upsertEdge(ctx, "user_has_group", "user_id", "group_id", userID, groupID, executorID)
}

func (r *grantRepo) ArchiveGroupMembership(ctx context.Context, userID, groupID, executorID int64) error {
	return r.archiveEdge(ctx, "user_has_group", "user_id", "group_id", userID, groupID, executorID)
}

func (r *grantRepo) GrantGroupRole(ctx context.Context, groupID, roleID, executorID int64) error {
	return r.upsertEdge(ctx, "group_has_role", "group_id", "role_id", groupID, roleID, executorID)
}

func (r *grantRepo) ArchiveGroupRole(ctx context.Context, groupID, roleID, executorID int64) error {
	return r.archiveEdge(ctx, "group_has_role", "group_id", "role_id", groupID, roleID, executorID)
}
