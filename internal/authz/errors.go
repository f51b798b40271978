package authz

import (
	"errors"
	"fmt"
)

// Reason es el motivo interno de una decisión negativa. Nunca se expone al cliente.
type Reason string

const (
	ReasonMissingCredential  Reason = "missing_credential"
	ReasonInvalidCredential  Reason = "invalid_credential"
	ReasonExpiredCredential  Reason = "expired_credential"
	ReasonPolicyDenied       Reason = "policy_denied"
	ReasonConfigurationFault Reason = "configuration_fault"
)

// IsAuthFailure: los motivos que se responden con el 401 uniforme.
func (r Reason) IsAuthFailure() bool {
	switch r {
	case ReasonMissingCredential, ReasonInvalidCredential, ReasonExpiredCredential, ReasonPolicyDenied:
		return true
	}
	return false
}

type Error struct {
	Reason Reason
	Route  string
	Err    error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("authz: %s", e.Reason)
	if e.Route != "" {
		msg += " on " + e.Route
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// ReasonOf extrae el Reason de un *Error envuelto.
func ReasonOf(err error) (Reason, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Reason, true
	}
	return "", false
}

var (
	ErrNilRule         = errors.New("authz: nil rule")
	ErrDuplicateRule   = errors.New("authz: duplicate rule")
	ErrNotAuthorizable = errors.New("authz: handler does not implement Authorizable")
)
