package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/dropDatabas3/warden/internal/audit"
	"github.com/dropDatabas3/warden/internal/domain/repository"
	httperrors "github.com/dropDatabas3/warden/internal/http/errors"
	"github.com/dropDatabas3/warden/internal/http/helpers"
	"github.com/dropDatabas3/warden/internal/observability/logger"
	"github.com/dropDatabas3/warden/internal/security/password"
)

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token        string    `json:"token"`
	RefreshToken string    `json:"refresh_token"`
	TokenType    string    `json:"token_type"`
	ExpiresIn    int64     `json:"expires_in"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// Login valida usuario y contraseña (argon2id) y emite el token de sesión.
type Login struct{ deps Deps }

func NewLogin(d Deps) *Login { return &Login{deps: d} }

func (h *Login) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		httperrors.WriteError(w, httperrors.ErrMissingField.WithDetail("username y password son requeridos"))
		return
	}

	ctx := r.Context()
	log := logger.From(ctx).With(logger.Op("login"))

	u, err := h.deps.Store.Users().GetByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			audit.Log(ctx, audit.EventLoginFailed, logger.Reason("unknown_user"))
			httperrors.WriteError(w, httperrors.ErrInvalidCredentials)
			return
		}
		httperrors.WriteError(w, err)
		return
	}
	if u.PasswordHash == "" || !password.Verify(req.Password, u.PasswordHash) {
		audit.Log(ctx, audit.EventLoginFailed, logger.Reason("bad_password"), logger.UserID(u.ID))
		httperrors.WriteError(w, httperrors.ErrInvalidCredentials)
		return
	}

	out, err := h.deps.Codec.Issue(ctx, u.ID)
	if err != nil {
		log.Error("issue failed", logger.UserID(u.ID), logger.Err(err))
		httperrors.WriteError(w, err)
		return
	}

	audit.Log(ctx, audit.EventLoginSucceeded, logger.UserID(u.ID))
	helpers.NoStore(w)
	helpers.WriteJSON(w, http.StatusOK, LoginResponse{
		Token:        out.Token,
		RefreshToken: out.RefreshToken,
		TokenType:    "Bearer",
		ExpiresIn:    int64(h.deps.Codec.TTL().Seconds()),
		ExpiresAt:    out.ExpiresAt,
	})
}

type TokenAgeRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type TokenAgeResponse struct {
	AgeSeconds int64 `json:"age_seconds"`
}

// TokenAge informa cuánto hace que se emitió el token de un refresh handle.
type TokenAge struct{ deps Deps }

func NewTokenAge(d Deps) *TokenAge { return &TokenAge{deps: d} }

func (h *TokenAge) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req TokenAgeRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.RefreshToken) == "" {
		httperrors.WriteError(w, httperrors.ErrMissingField.WithDetail("refresh_token"))
		return
	}
	age, err := h.deps.Codec.TokenAge(r.Context(), req.RefreshToken)
	if err != nil {
		httperrors.WriteError(w, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, TokenAgeResponse{AgeSeconds: int64(age / time.Second)})
}

// PublicKey exporta la clave pública (PEM) para verificación externa.
type PublicKey struct{ deps Deps }

func NewPublicKey(d Deps) *PublicKey { return &PublicKey{deps: d} }

func (h *PublicKey) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	pemBytes, err := h.deps.Codec.PublicKeyPEM()
	if err != nil {
		logger.From(r.Context()).Error("public key export failed", logger.Err(err))
		httperrors.WriteError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/x-pem-file")
	w.Header().Set("X-Token-Algorithm", h.deps.Codec.Algorithm())
	w.Header().Set("Cache-Control", "public, max-age=300")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pemBytes)
}
