// Package jwt emite y valida los tokens de sesión.
//
// Un token se firma con la clave privada configurada (RS512 por defecto) y
// lleva en "data" el id opaco del usuario, su último login, la foto de roles
// directos y grupos, y su locale. Cada emisión genera además un refresh
// handle que se persiste (append-only) junto al token.
package jwt

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
	"github.com/oklog/ulid/v2"
	"golang.org/x/sync/errgroup"

	"github.com/dropDatabas3/warden/internal/domain/repository"
	"github.com/dropDatabas3/warden/internal/permission"
	"github.com/dropDatabas3/warden/internal/security/token"
)

const (
	DefaultTTL       = 15 * time.Minute
	DefaultAlgorithm = "RS512"
	DefaultLocale    = "en"
)

type Config struct {
	Issuer        string
	Audience      string
	TTL           time.Duration
	Algorithm     string
	DefaultLocale string
}

// Deps son los colaboradores que sólo necesita Issue/TokenAge.
type Deps struct {
	Users    repository.UserRepository
	Tokens   repository.TokenRepository
	Resolver *permission.Resolver
}

// Issued es el resultado de una emisión.
type Issued struct {
	Token        string
	RefreshToken string
	ExpiresAt    time.Time
}

type Codec struct {
	cfg    Config
	method jwtv5.SigningMethod
	keys   *KeySource
	hasher *token.UserHasher
	deps   Deps
	now    func() time.Time
	parser *jwtv5.Parser
}

type Option func(*Codec)

// WithClock inyecta el reloj de emisión y validación.
func WithClock(now func() time.Time) Option {
	return func(c *Codec) {
		if now != nil {
			c.now = now
		}
	}
}

func NewCodec(cfg Config, keys *KeySource, hasher *token.UserHasher, deps Deps, opts ...Option) (*Codec, error) {
	if keys == nil || hasher == nil {
		return nil, errors.New("jwt: key source and user hasher are required")
	}
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	if cfg.Algorithm == "" {
		cfg.Algorithm = DefaultAlgorithm
	}
	if strings.TrimSpace(cfg.DefaultLocale) == "" {
		cfg.DefaultLocale = DefaultLocale
	}
	method, err := SigningMethod(cfg.Algorithm)
	if err != nil {
		return nil, err
	}
	c := &Codec{cfg: cfg, method: method, keys: keys, hasher: hasher, deps: deps, now: time.Now}
	for _, o := range opts {
		o(c)
	}

	popts := []jwtv5.ParserOption{
		jwtv5.WithValidMethods([]string{method.Alg()}),
		jwtv5.WithExpirationRequired(),
		jwtv5.WithTimeFunc(c.now),
	}
	if cfg.Issuer != "" {
		popts = append(popts, jwtv5.WithIssuer(cfg.Issuer))
	}
	if cfg.Audience != "" {
		popts = append(popts, jwtv5.WithAudience(cfg.Audience))
	}
	c.parser = jwtv5.NewParser(popts...)
	return c, nil
}

// Verify carga la clave y confirma que corresponde al algoritmo. Se llama al arrancar.
func (c *Codec) Verify() error {
	s, err := c.keys.Signer()
	if err != nil {
		return err
	}
	return checkKey(c.method, s)
}

func (c *Codec) Algorithm() string  { return c.method.Alg() }
func (c *Codec) TTL() time.Duration { return c.cfg.TTL }

// Issue emite un token para userID y persiste su refresh handle.
func (c *Codec) Issue(ctx context.Context, userID int64) (*Issued, error) {
	if c.deps.Users == nil || c.deps.Tokens == nil || c.deps.Resolver == nil {
		return nil, errors.New("jwt: codec built without issuing dependencies")
	}
	now := c.now()

	prev, err := c.deps.Users.TouchLastLogin(ctx, userID, now)
	if err != nil {
		return nil, fmt.Errorf("jwt: touch last login: %w", err)
	}
	lastLogin := now.UTC()
	if prev != nil {
		lastLogin = prev.UTC()
	}

	var (
		roles  []repository.Role
		groups []repository.Group
		locale string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		roles, err = c.deps.Resolver.FindAssignedRoles(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		groups, err = c.deps.Resolver.FindAssignedGroups(gctx, userID)
		return err
	})
	g.Go(func() error {
		u, err := c.deps.Users.GetByID(gctx, userID)
		if err != nil {
			return err
		}
		locale = u.Locale
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("jwt: resolve claims: %w", err)
	}
	if strings.TrimSpace(locale) == "" {
		locale = c.cfg.DefaultLocale
	}

	opaqueID, err := c.hasher.Encode(userID)
	if err != nil {
		return nil, err
	}
	iat := now.UTC().Truncate(time.Second)
	exp := iat.Add(c.cfg.TTL)

	claims := &Claims{
		Issuer:    c.cfg.Issuer,
		Audience:  c.cfg.Audience,
		IssuedAt:  jwtv5.NewNumericDate(iat),
		NotBefore: jwtv5.NewNumericDate(iat),
		ExpiresAt: jwtv5.NewNumericDate(exp),
		Data: Data{
			ID:        opaqueID,
			LastLogin: &lastLogin,
			Roles:     permission.RoleNames(roles),
			Groups:    permission.GroupNames(groups),
			Locale:    locale,
		},
	}
	signed, err := c.Sign(claims)
	if err != nil {
		return nil, err
	}

	handle := token.DeriveRefreshHandle(userID, iat, exp, now)
	rec := repository.RefreshToken{
		ID:        ulid.MustNew(ulid.Timestamp(now), ulid.DefaultEntropy()).String(),
		UserID:    userID,
		Token:     signed,
		Handle:    handle,
		IssuedAt:  iat,
		ExpiresAt: exp,
	}
	if err := c.deps.Tokens.Append(ctx, rec); err != nil {
		return nil, fmt.Errorf("jwt: persist refresh token: %w", err)
	}
	return &Issued{Token: signed, RefreshToken: handle, ExpiresAt: exp}, nil
}

// Sign firma claims arbitrarias con la clave y algoritmo configurados.
func (c *Codec) Sign(claims *Claims) (string, error) {
	s, err := c.keys.Signer()
	if err != nil {
		return "", err
	}
	if err := checkKey(c.method, s); err != nil {
		return "", err
	}
	tk := jwtv5.NewWithClaims(c.method, claims)
	tk.Header["typ"] = "JWT"
	signed, err := tk.SignedString(s)
	if err != nil {
		return "", fmt.Errorf("jwt: sign: %w", err)
	}
	return signed, nil
}

// Decode verifica firma, algoritmo, iss, aud, vigencia y campos requeridos.
// Un token inaceptable devuelve *AuthenticationError.
func (c *Codec) Decode(raw string) (*Claims, error) {
	pub, err := c.keys.Public()
	if err != nil {
		return nil, err
	}
	claims := &Claims{}
	_, err = c.parser.ParseWithClaims(raw, claims, func(*jwtv5.Token) (any, error) { return pub, nil })
	if err != nil {
		if errors.Is(err, jwtv5.ErrTokenExpired) {
			return nil, &AuthenticationError{Reason: ReasonExpired, Err: err}
		}
		return nil, &AuthenticationError{Reason: ReasonInvalid, Err: err}
	}
	return claims, nil
}

// IsValid es una consulta informativa; nunca reemplaza a Decode.
func (c *Codec) IsValid(raw string) bool {
	_, err := c.Decode(raw)
	return err == nil
}

// UserID recupera el id numérico del "data.id" opaco.
func (c *Codec) UserID(claims *Claims) (int64, error) {
	if claims == nil {
		return 0, &AuthenticationError{Reason: ReasonInvalid, Err: ErrMissingClaim}
	}
	id, err := c.hasher.Decode(claims.Data.ID)
	if err != nil {
		return 0, &AuthenticationError{Reason: ReasonInvalid, Err: err}
	}
	return id, nil
}

// TokenAge devuelve cuánto pasó desde la emisión del token asociado al handle.
func (c *Codec) TokenAge(ctx context.Context, handle string) (time.Duration, error) {
	if c.deps.Tokens == nil {
		return 0, errors.New("jwt: codec built without token repository")
	}
	rec, err := c.deps.Tokens.GetByHandle(ctx, handle)
	if err != nil {
		return 0, err
	}
	return c.now().Sub(rec.IssuedAt), nil
}

// PublicKeyPEM exporta el material de verificación.
func (c *Codec) PublicKeyPEM() ([]byte, error) {
	pub, err := c.keys.Public()
	if err != nil {
		return nil, err
	}
	return EncodePublicKeyPEM(pub)
}
