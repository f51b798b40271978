// Package util reúne helpers chicos sin dependencias del dominio.
package util

import (
	"net/url"
	"strings"
)

// MaskEmail deja la primera letra del usuario y del dominio: "j…@e….com".
func MaskEmail(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	i := strings.IndexByte(s, '@')
	if i <= 0 {
		if s == "" {
			return ""
		}
		if len(s) <= 3 {
			return "***"
		}
		return s[:1] + "…" + s[len(s)-1:]
	}
	user, dom := s[:i], s[i+1:]
	if len(user) > 1 {
		user = user[:1] + "…"
	}
	parts := strings.Split(dom, ".")
	if len(parts[0]) > 1 {
		parts[0] = parts[0][:1] + "…"
	}
	return user + "@" + strings.Join(parts, ".")
}

// MaskDSN oculta la password de un DSN postgres en formato URL. Un DSN que no
// es URL (key=value) se reemplaza entero.
func MaskDSN(dsn string) string {
	if dsn == "" {
		return ""
	}
	u, err := url.Parse(dsn)
	if err != nil || u.Scheme == "" {
		return "***"
	}
	return u.Redacted()
}
