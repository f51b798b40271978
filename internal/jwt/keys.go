package jwt

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/elliptic"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	jwtv5 "github.com/golang-jwt/jwt/v5"
	"github.com/youmark/pkcs8"
)

// SigningMethod resuelve el nombre de algoritmo configurado.
func SigningMethod(alg string) (jwtv5.SigningMethod, error) {
	switch alg {
	case "RS256", "RS384", "RS512", "PS256", "PS384", "PS512",
		"ES256", "ES384", "ES512", "EdDSA":
		return jwtv5.GetSigningMethod(alg), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedAlgorithm, alg)
}

// KeySource carga la clave privada de un PEM protegido con contraseña y la
// mantiene en memoria durante la vida del proceso.
type KeySource struct {
	path     string
	password []byte

	mu     sync.RWMutex
	signer crypto.Signer
}

func NewKeySource(path, password string) *KeySource {
	return &KeySource{path: filepath.Clean(path), password: []byte(password)}
}

// NewStaticKeySource envuelve una clave ya cargada.
func NewStaticKeySource(signer crypto.Signer) *KeySource {
	return &KeySource{signer: signer}
}

// Signer devuelve la clave privada, leyéndola del disco la primera vez.
func (k *KeySource) Signer() (crypto.Signer, error) {
	k.mu.RLock()
	if k.signer != nil {
		defer k.mu.RUnlock()
		return k.signer, nil
	}
	k.mu.RUnlock()

	k.mu.Lock()
	defer k.mu.Unlock()
	if k.signer != nil {
		return k.signer, nil
	}
	raw, err := os.ReadFile(k.path)
	if err != nil {
		return nil, fmt.Errorf("jwt: read private key: %w", err)
	}
	s, err := ParsePrivateKeyPEM(raw, k.password)
	if err != nil {
		return nil, err
	}
	k.signer = s
	return s, nil
}

func (k *KeySource) Public() (crypto.PublicKey, error) {
	s, err := k.Signer()
	if err != nil {
		return nil, err
	}
	return s.Public(), nil
}

// ParsePrivateKeyPEM acepta PKCS#8 cifrado, PKCS#8 plano y los formatos
// tradicionales (PKCS#1 / SEC1), incluso cifrados con Proc-Type.
func ParsePrivateKeyPEM(data, password []byte) (crypto.Signer, error) {
	block, _ := pem.Decode(data)
	if block == nil {
		return nil, ErrKeyFormat
	}

	var (
		key any
		err error
	)
	switch {
	case block.Type == "ENCRYPTED PRIVATE KEY":
		key, err = pkcs8.ParsePKCS8PrivateKey(block.Bytes, password)
	//nolint:staticcheck // claves heredadas con cifrado RFC 1423
	case x509.IsEncryptedPEMBlock(block):
		var der []byte
		der, err = x509.DecryptPEMBlock(block, password) //nolint:staticcheck
		if err == nil {
			key, err = parseDER(block.Type, der)
		}
	default:
		key, err = parseDER(block.Type, block.Bytes)
	}
	if err != nil {
		return nil, fmt.Errorf("jwt: decode private key: %w", err)
	}

	signer, ok := key.(crypto.Signer)
	if !ok {
		return nil, ErrKeyFormat
	}
	// ed25519 puede venir como valor o puntero según el parser
	if p, ok := signer.(*ed25519.PrivateKey); ok {
		signer = *p
	}
	return signer, nil
}

func parseDER(blockType string, der []byte) (any, error) {
	switch blockType {
	case "RSA PRIVATE KEY":
		return x509.ParsePKCS1PrivateKey(der)
	case "EC PRIVATE KEY":
		return x509.ParseECPrivateKey(der)
	case "PRIVATE KEY":
		return x509.ParsePKCS8PrivateKey(der)
	}
	return nil, fmt.Errorf("%w: %s", ErrKeyFormat, blockType)
}

// checkKey verifica que la clave sirve para el método configurado.
func checkKey(method jwtv5.SigningMethod, signer crypto.Signer) error {
	switch m := method.(type) {
	case *jwtv5.SigningMethodRSA, *jwtv5.SigningMethodRSAPSS:
		if _, ok := signer.(*rsa.PrivateKey); ok {
			return nil
		}
	case *jwtv5.SigningMethodECDSA:
		if k, ok := signer.(*ecdsa.PrivateKey); ok && k.Curve.Params().BitSize == m.CurveBits {
			return nil
		}
	case *jwtv5.SigningMethodEd25519:
		if _, ok := signer.(ed25519.PrivateKey); ok {
			return nil
		}
	}
	return fmt.Errorf("%w: %s with %T", ErrKeyMismatch, method.Alg(), signer)
}

// EncodePublicKeyPEM serializa la pública en PKIX ("PUBLIC KEY").
func EncodePublicKeyPEM(pub crypto.PublicKey) ([]byte, error) {
	der, err := x509.MarshalPKIXPublicKey(pub)
	if err != nil {
		return nil, err
	}
	return pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der}), nil
}

func curveFor(alg string) elliptic.Curve {
	switch alg {
	case "ES384":
		return elliptic.P384()
	case "ES512":
		return elliptic.P521()
	}
	return elliptic.P256()
}
