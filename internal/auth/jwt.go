// Package auth signs and verifies the bearer tokens that guard write routes.
package auth

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"jrm-intake-api/internal/config"
)

// Token kinds.
const (
	KindUser    = "user"
	KindService = "service"
)

// Claims represents JWT claims used by this service.
type Claims struct {
	Kind  string   `json:"kind"`
	Roles []string `json:"roles,omitempty"`
	jwt.RegisteredClaims
}

type tokenKeys struct {
	method    jwt.SigningMethod
	signKey   any
	verifyKey any
}

func loadKeys(cfg *config.Config) (*tokenKeys, error) {
	hs := &tokenKeys{method: jwt.SigningMethodHS256, signKey: []byte(cfg.JWT.HSSecret), verifyKey: []byte(cfg.JWT.HSSecret)}
	switch cfg.JWT.Algo {
	case "RS256":
		if cfg.JWT.RSPrivateKey == "" || cfg.JWT.RSPublicKey == "" {
			return hs, nil
		}
		priv, err := parseRSAPrivateKeyFromPEM([]byte(cfg.JWT.RSPrivateKey))
		if err != nil {
			return nil, err
		}
		pub, err := parseRSAPublicKeyFromPEM([]byte(cfg.JWT.RSPublicKey))
		if err != nil {
			return nil, err
		}
		return &tokenKeys{method: jwt.SigningMethodRS256, signKey: priv, verifyKey: pub}, nil
	case "", "HS256":
		if cfg.JWT.HSSecret == "" {
			return nil, errors.New("JWT_SECRET is not set")
		}
		return hs, nil
	default:
		return nil, errors.New("unsupported JWT_ALGO")
	}
}

func parseRSAPrivateKeyFromPEM(pemBytes []byte) (*rsa.PrivateKey, error) {
	block, _ := pem.Decode(pemBytes)
	if block == nil {
		return nil, errors.New("invalid RSA private PEM")
	}
	key, err := x509.ParsePKCS1PrivateKey(block.Bytes)
	if err == nil {
		return key, nil
	}
	k8, err2 := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err2 != nil {
		return nil, err
	}
	k, ok := k8.(*rsa.PrivateKey)
	if !ok {
		return nil, errors.New("unsupported PKCS8 private key type")
	}
	return k, nil
}

func parseRSAPublicKeyFromPEM(pemBytes []byte) (*rsa.PublicKey, error) {
	block, _ := pem.Decode(pemBytes)
	if block == nil {
		return nil, errors.New("invalid RSA public PEM")
	}
	pub, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, err
	}
	k, ok := pub.(*rsa.PublicKey)
	if !ok {
		return nil, errors.New("unsupported public key type")
	}
	return k, nil
}

// SignAccess issues an access token for sub. It returns the token and its id.
func SignAccess(cfg *config.Config, sub, kind string, roles []string) (string, string, error) {
	keys, err := loadKeys(cfg)
	if err != nil {
		return "", "", err
	}
	now := time.Now().UTC()
	jti := uuid.NewString()
	claims := &Claims{
		Kind:  kind,
		Roles: roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    cfg.JWT.Issuer,
			Audience:  jwt.ClaimStrings{cfg.JWT.Audience},
			Subject:   sub,
			ID:        jti,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(cfg.JWT.AccessMin) * time.Minute)),
		},
	}
	s, err := jwt.NewWithClaims(keys.method, claims).SignedString(keys.signKey)
	return s, jti, err
}

// ParseAndValidate verifies a token string and returns its claims. Issuer
// and audience must match the configured ones when set.
func ParseAndValidate(cfg *config.Config, tokenStr string) (*Claims, error) {
	keys, err := loadKeys(cfg)
	if err != nil {
		return nil, err
	}
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{keys.method.Alg()})}
	if cfg.JWT.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.JWT.Issuer))
	}
	if cfg.JWT.Audience != "" {
		opts = append(opts, jwt.WithAudience(cfg.JWT.Audience))
	}
	tok, err := jwt.NewParser(opts...).ParseWithClaims(tokenStr, &Claims{}, func(_ *jwt.Token) (any, error) {
		return keys.verifyKey, nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := tok.Claims.(*Claims)
	if !ok || !tok.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// Parser adapts ParseAndValidate to the middleware's token parser, reading
// the current config on every call.
func Parser(current func() *config.Config) func(token string) (string, string, []string, error) {
	return func(token string) (string, string, []string, error) {
		claims, err := ParseAndValidate(current(), token)
		if err != nil {
			return "", "", nil, err
		}
		return claims.Subject, claims.Kind, claims.Roles, nil
	}
}
