// Package validation valida nombres de roles y grupos.
package validation

import "regexp"

// Reglas de nombre de rol/grupo:
// - Sólo minúsculas, dígitos y [._-].
// - Empieza y termina con [a-z0-9].
// - Largo 1..64.
//
// Válidos: role.user, group.user, role.security.admin, a
// Inválidos: Role.User, "role user", .lead, trail., role;drop
var nameRe = regexp.MustCompile(`^[a-z0-9](?:[a-z0-9_.-]{0,62}[a-z0-9])?$`)

// ValidName indica si name es un nombre de rol o grupo aceptable.
func ValidName(name string) bool {
	return nameRe.MatchString(name)
}
