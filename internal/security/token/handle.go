// Package token deriva los identificadores opacos que acompañan a un JWT:
// el refresh handle y el id de usuario ofuscado.
package token

import (
	"crypto/sha256"
	"encoding/base64"
	"strconv"
	"strings"
	"time"
)

// DeriveRefreshHandle calcula base64url(sha256(userID|iat|exp|now)). now en
// nanosegundos separa dos emisiones del mismo usuario dentro del mismo segundo.
func DeriveRefreshHandle(userID int64, issuedAt, expiresAt, now time.Time) string {
	var b strings.Builder
	b.WriteString(strconv.FormatInt(userID, 10))
	b.WriteByte('|')
	b.WriteString(strconv.FormatInt(issuedAt.Unix(), 10))
	b.WriteByte('|')
	b.WriteString(strconv.FormatInt(expiresAt.Unix(), 10))
	b.WriteByte('|')
	b.WriteString(strconv.FormatInt(now.UnixNano(), 10))
	return SHA256Base64URL(b.String())
}

// SHA256Base64URL devuelve sha256(input) en base64url sin padding.
func SHA256Base64URL(s string) string {
	sum := sha256.Sum256([]byte(s))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}
