// Package password hashea y verifica contraseñas con argon2id (formato PHC).
package password

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

var (
	ErrEmptyPassword = errors.New("password: empty password")
	ErrMalformedHash = errors.New("password: malformed hash")
)

type Params struct {
	Memory      uint32 // KiB
	Time        uint32
	Parallelism uint8
	KeyLen      uint32
	SaltLen     int
}

var Default = Params{Memory: 64 * 1024, Time: 3, Parallelism: 1, KeyLen: 32, SaltLen: 16}

// Hash devuelve $argon2id$v=19$m=...,t=...,p=...$<salt>$<key>
func Hash(p Params, plain string) (string, error) {
	if plain == "" {
		return "", ErrEmptyPassword
	}
	if p.SaltLen <= 0 {
		p.SaltLen = 16
	}
	salt := make([]byte, p.SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}
	dk := argon2.IDKey([]byte(plain), salt, p.Time, p.Memory, p.Parallelism, p.KeyLen)
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, p.Memory, p.Time, p.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(dk),
	), nil
}

func decode(phc string) (Params, []byte, []byte, error) {
	parts := strings.Split(phc, "$")
	// "", "argon2id", "v=19", "m=..,t=..,p=..", salt, key
	if len(parts) != 6 || parts[1] != "argon2id" {
		return Params{}, nil, nil, ErrMalformedHash
	}
	var v int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &v); err != nil || v != argon2.Version {
		return Params{}, nil, nil, ErrMalformedHash
	}
	var p Params
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.Memory, &p.Time, &p.Parallelism); err != nil {
		return Params{}, nil, nil, ErrMalformedHash
	}
	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return Params{}, nil, nil, ErrMalformedHash
	}
	dk, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(dk) == 0 {
		return Params{}, nil, nil, ErrMalformedHash
	}
	p.KeyLen = uint32(len(dk))
	p.SaltLen = len(salt)
	return p, salt, dk, nil
}

// Verify compara en tiempo constante. Un hash malformado nunca verifica.
func Verify(plain, phc string) bool {
	p, salt, dkStored, err := decode(phc)
	if err != nil {
		return false
	}
	key := argon2.IDKey([]byte(plain), salt, p.Time, p.Memory, p.Parallelism, p.KeyLen)
	return subtle.ConstantTimeCompare(key, dkStored) == 1
}

// NeedsRehash indica si el hash fue generado con parámetros distintos a p.
func NeedsRehash(p Params, phc string) bool {
	got, _, _, err := decode(phc)
	if err != nil {
		return true
	}
	return got.Memory != p.Memory || got.Time != p.Time || got.Parallelism != p.Parallelism || got.KeyLen != p.KeyLen
}
