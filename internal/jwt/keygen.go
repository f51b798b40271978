package jwt

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/rand"
	"crypto/rsa"
	"encoding/pem"
	"fmt"

	jwtv5 "github.com/golang-jwt/jwt/v5"
	"github.com/youmark/pkcs8"

	"github.com/dropDatabas3/warden/internal/util/atomicwrite"
)

const rsaKeyBits = 3072

// GenerateKey crea una clave nueva apta para alg.
func GenerateKey(alg string) (crypto.Signer, error) {
	method, err := SigningMethod(alg)
	if err != nil {
		return nil, err
	}
	switch method.(type) {
	case *jwtv5.SigningMethodRSA, *jwtv5.SigningMethodRSAPSS:
		return rsa.GenerateKey(rand.Reader, rsaKeyBits)
	case *jwtv5.SigningMethodECDSA:
		return ecdsa.GenerateKey(curveFor(alg), rand.Reader)
	default:
		_, priv, err := ed25519.GenerateKey(rand.Reader)
		return priv, err
	}
}

// EncodePrivateKeyPEM serializa en PKCS#8; con password el bloque queda
// como "ENCRYPTED PRIVATE KEY" (PBES2, AES-256-CBC).
func EncodePrivateKeyPEM(signer crypto.Signer, password string) ([]byte, error) {
	var pw []byte
	if password != "" {
		pw = []byte(password)
	}
	der, err := pkcs8.MarshalPrivateKey(signer, pw, nil)
	if err != nil {
		return nil, fmt.Errorf("jwt: marshal private key: %w", err)
	}
	typ := "PRIVATE KEY"
	if pw != nil {
		typ = "ENCRYPTED PRIVATE KEY"
	}
	return pem.EncodeToMemory(&pem.Block{Type: typ, Bytes: der}), nil
}

// GenerateKeyFiles escribe el par (privada 0600, pública 0644).
func GenerateKeyFiles(alg, password, privPath, pubPath string) error {
	signer, err := GenerateKey(alg)
	if err != nil {
		return err
	}
	privPEM, err := EncodePrivateKeyPEM(signer, password)
	if err != nil {
		return err
	}
	pubPEM, err := EncodePublicKeyPEM(signer.Public())
	if err != nil {
		return err
	}
	if err := atomicwrite.WriteFile(privPath, privPEM, 0o600); err != nil {
		return err
	}
	if pubPath == "" {
		return nil
	}
	return atomicwrite.WriteFile(pubPath, pubPEM, 0o644)
}
