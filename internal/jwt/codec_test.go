package jwt

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/warden/internal/domain/repository"
	"github.com/dropDatabas3/warden/internal/permission"
	"github.com/dropDatabas3/warden/internal/security/token"
	"github.com/dropDatabas3/warden/internal/store/memory"
)

var issuedAt = time.Date(2024, 5, 10, 9, 30, 0, 0, time.UTC)

type clock struct{ t time.Time }

func (c *clock) Now() time.Time { return c.t }

type env struct {
	codec *Codec
	store *memory.Store
	clock *clock
	user  int64
}

// newEnv prepara el escenario de referencia: usuario 3 con role.user y group.user.
func newEnv(t *testing.T, alg string) *env {
	t.Helper()
	ctx := context.Background()
	clk := &clock{t: issuedAt}
	st := memory.New(memory.WithClock(clk.Now))

	var user *repository.User
	for _, name := range []string{"uno", "dos", "tres"} {
		u, err := st.Users().Create(ctx, repository.CreateUserInput{Username: name, Email: name + "@example.com", Locale: "es"}, 0)
		require.NoError(t, err)
		user = u
	}
	require.Equal(t, int64(3), user.ID)

	role, err := st.Catalog().CreateRole(ctx, permission.RoleUser, "", 0)
	require.NoError(t, err)
	group, err := st.Catalog().CreateGroup(ctx, permission.GroupUser, "", 0)
	require.NoError(t, err)
	require.NoError(t, st.Grants().AssignRole(ctx, user.ID, role.ID, 0))
	require.NoError(t, st.Grants().AddToGroup(ctx, user.ID, group.ID, 0))

	signer, err := GenerateKey(alg)
	require.NoError(t, err)
	hasher, err := token.NewUserHasher("test-salt", 8)
	require.NoError(t, err)

	codec, err := NewCodec(
		Config{Issuer: "warden", Audience: "warden-api", TTL: 900 * time.Second, Algorithm: alg},
		NewStaticKeySource(signer), hasher,
		Deps{Users: st.Users(), Tokens: st.Tokens(), Resolver: permission.NewResolver(st.GrantReader(), permission.WithClock(clk.Now))},
		WithClock(clk.Now),
	)
	require.NoError(t, err)
	require.NoError(t, codec.Verify())
	return &env{codec: codec, store: st, clock: clk, user: user.ID}
}

func payload(t *testing.T, raw string) map[string]any {
	t.Helper()
	parts := strings.Split(raw, ".")
	require.Len(t, parts, 3)
	b, err := base64.RawURLEncoding.DecodeString(parts[1])
	require.NoError(t, err)
	var m map[string]any
	require.NoError(t, json.Unmarshal(b, &m))
	return m
}

func TestIssueDecode_RoundTrip(t *testing.T) {
	e := newEnv(t, "ES256")
	ctx := context.Background()

	out, err := e.codec.Issue(ctx, e.user)
	require.NoError(t, err)
	assert.NotEmpty(t, out.RefreshToken)
	assert.Equal(t, issuedAt.Add(900*time.Second), out.ExpiresAt)

	claims, err := e.codec.Decode(out.Token)
	require.NoError(t, err)
	assert.Equal(t, []string{permission.RoleUser}, claims.Data.Roles)
	assert.Equal(t, []string{permission.GroupUser}, claims.Data.Groups)
	assert.Equal(t, "es", claims.Data.Locale)
	assert.Equal(t, int64(900), claims.ExpiresAt.Unix()-claims.IssuedAt.Unix())
	assert.NotEqual(t, "3", claims.Data.ID)

	id, err := e.codec.UserID(claims)
	require.NoError(t, err)
	assert.Equal(t, int64(3), id)

	// primer login: last_login = ahora
	require.NotNil(t, claims.Data.LastLogin)
	assert.True(t, claims.Data.LastLogin.Equal(issuedAt))

	m := payload(t, out.Token)
	assert.Equal(t, "warden-api", m["aud"], "aud como string simple")
	assert.Equal(t, "warden", m["iss"])
	data := m["data"].(map[string]any)
	assert.Equal(t, claims.Data.ID, data["id"])

	rec, err := e.store.Tokens().GetByHandle(ctx, out.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, out.Token, rec.Token)
	assert.Equal(t, int64(3), rec.UserID)
	assert.Len(t, rec.ID, 26)
}

func TestIssue_SecondLoginCarriesPreviousLastLogin(t *testing.T) {
	e := newEnv(t, "EdDSA")
	ctx := context.Background()

	first, err := e.codec.Issue(ctx, e.user)
	require.NoError(t, err)

	e.clock.t = issuedAt.Add(time.Hour)
	second, err := e.codec.Issue(ctx, e.user)
	require.NoError(t, err)
	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)

	claims, err := e.codec.Decode(second.Token)
	require.NoError(t, err)
	assert.True(t, claims.Data.LastLogin.Equal(issuedAt))

	age, err := e.codec.TokenAge(ctx, first.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, time.Hour, age)
}

func TestIssue_UnknownUser(t *testing.T) {
	e := newEnv(t, "ES256")
	_, err := e.codec.Issue(context.Background(), 999)
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestDecode_ExpiryIsDeterministic(t *testing.T) {
	e := newEnv(t, "ES256")
	out, err := e.codec.Issue(context.Background(), e.user)
	require.NoError(t, err)

	e.clock.t = out.ExpiresAt.Add(-time.Second)
	_, err = e.codec.Decode(out.Token)
	require.NoError(t, err)
	assert.True(t, e.codec.IsValid(out.Token))

	for _, at := range []time.Time{out.ExpiresAt, out.ExpiresAt.Add(time.Second), out.ExpiresAt.Add(24 * time.Hour)} {
		e.clock.t = at
		_, err = e.codec.Decode(out.Token)
		var ae *AuthenticationError
		require.ErrorAs(t, err, &ae, at)
		assert.Equal(t, ReasonExpired, ae.Reason)
		assert.True(t, IsExpired(err))
		assert.False(t, e.codec.IsValid(out.Token))
	}
}

func TestDecode_RejectsForgedSignature(t *testing.T) {
	e := newEnv(t, "ES256")
	out, err := e.codec.Issue(context.Background(), e.user)
	require.NoError(t, err)

	other, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	claims, err := e.codec.Decode(out.Token)
	require.NoError(t, err)
	forged, err := jwtv5.NewWithClaims(jwtv5.SigningMethodES256, claims).SignedString(other)
	require.NoError(t, err)

	_, err = e.codec.Decode(forged)
	var ae *AuthenticationError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, ReasonInvalid, ae.Reason)

	_, err = e.codec.Decode("not.a.jwt")
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, ReasonInvalid, ae.Reason)
}

func TestDecode_RejectsOtherAlgorithm(t *testing.T) {
	e := newEnv(t, "ES256")
	out, err := e.codec.Issue(context.Background(), e.user)
	require.NoError(t, err)
	claims, err := e.codec.Decode(out.Token)
	require.NoError(t, err)

	hs, err := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, claims).SignedString([]byte("secret"))
	require.NoError(t, err)
	_, err = e.codec.Decode(hs)
	require.Error(t, err)

	none, err := jwtv5.NewWithClaims(jwtv5.SigningMethodNone, claims).SignedString(jwtv5.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = e.codec.Decode(none)
	require.Error(t, err)
}

func TestDecode_RequiredFields(t *testing.T) {
	e := newEnv(t, "ES256")
	base := func() *Claims {
		return &Claims{
			Issuer:    "warden",
			Audience:  "warden-api",
			IssuedAt:  jwtv5.NewNumericDate(issuedAt),
			NotBefore: jwtv5.NewNumericDate(issuedAt),
			ExpiresAt: jwtv5.NewNumericDate(issuedAt.Add(time.Minute)),
			Data:      Data{ID: "abc", Locale: "es"},
		}
	}
	cases := map[string]func(c *Claims){
		"sin iat":       func(c *Claims) { c.IssuedAt = nil },
		"sin nbf":       func(c *Claims) { c.NotBefore = nil },
		"sin exp":       func(c *Claims) { c.ExpiresAt = nil },
		"sin data.id":   func(c *Claims) { c.Data.ID = "" },
		"sin locale":    func(c *Claims) { c.Data.Locale = "" },
		"otro issuer":   func(c *Claims) { c.Issuer = "intruso" },
		"otra audience": func(c *Claims) { c.Audience = "otra" },
		"nbf futuro":    func(c *Claims) { c.NotBefore = jwtv5.NewNumericDate(issuedAt.Add(time.Minute)) },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			c := base()
			mutate(c)
			raw, err := e.codec.Sign(c)
			require.NoError(t, err)
			_, err = e.codec.Decode(raw)
			var ae *AuthenticationError
			require.ErrorAs(t, err, &ae)
			assert.Equal(t, ReasonInvalid, ae.Reason)
		})
	}

	raw, err := e.codec.Sign(base())
	require.NoError(t, err)
	_, err = e.codec.Decode(raw)
	require.NoError(t, err)
}

func TestKeySource_EncryptedFiles(t *testing.T) {
	dir := t.TempDir()
	priv := filepath.Join(dir, "keys", "private.pem")
	pub := filepath.Join(dir, "keys", "public.pem")
	require.NoError(t, GenerateKeyFiles("ES384", "s3cret", priv, pub))

	raw, err := os.ReadFile(priv)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "ENCRYPTED PRIVATE KEY")

	ks := NewKeySource(priv, "s3cret")
	s, err := ks.Signer()
	require.NoError(t, err)
	k, ok := s.(*ecdsa.PrivateKey)
	require.True(t, ok)
	assert.Equal(t, 384, k.Curve.Params().BitSize)

	again, err := ks.Signer()
	require.NoError(t, err)
	assert.Same(t, k, again.(*ecdsa.PrivateKey))

	hasher, err := token.NewUserHasher("salt", 0)
	require.NoError(t, err)
	codec, err := NewCodec(Config{Algorithm: "ES384"}, ks, hasher, Deps{})
	require.NoError(t, err)
	require.NoError(t, codec.Verify())

	exported, err := codec.PublicKeyPEM()
	require.NoError(t, err)
	onDisk, err := os.ReadFile(pub)
	require.NoError(t, err)
	assert.Equal(t, string(onDisk), string(exported))

	_, err = NewKeySource(priv, "wrong").Signer()
	require.Error(t, err)
}

func TestCodec_KeyAlgorithmMismatch(t *testing.T) {
	signer, err := GenerateKey("EdDSA")
	require.NoError(t, err)
	hasher, err := token.NewUserHasher("salt", 0)
	require.NoError(t, err)

	codec, err := NewCodec(Config{Algorithm: "ES256"}, NewStaticKeySource(signer), hasher, Deps{})
	require.NoError(t, err)
	require.ErrorIs(t, codec.Verify(), ErrKeyMismatch)

	_, err = NewCodec(Config{Algorithm: "HS256"}, NewStaticKeySource(signer), hasher, Deps{})
	require.ErrorIs(t, err, ErrUnsupportedAlgorithm)
}

func TestCodec_DefaultsToRS512(t *testing.T) {
	signer, err := GenerateKey("RS512")
	require.NoError(t, err)
	hasher, err := token.NewUserHasher("salt", 0)
	require.NoError(t, err)
	codec, err := NewCodec(Config{}, NewStaticKeySource(signer), hasher, Deps{})
	require.NoError(t, err)
	assert.Equal(t, "RS512", codec.Algorithm())
	assert.Equal(t, DefaultTTL, codec.TTL())
	require.NoError(t, codec.Verify())
}
