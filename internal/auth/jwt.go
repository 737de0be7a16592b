package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Class distinguishes access tokens from refresh tokens. The class is baked
// into the signed claims so a token can never be replayed as the other kind.
type Class string

const (
	ClassAccess  Class = "access"
	ClassRefresh Class = "refresh"
)

// Sentinel errors returned by Verify.
var (
	ErrExpired      = errors.New("token expired")
	ErrBadSignature = errors.New("token signature invalid")
	ErrWrongClass   = errors.New("token class mismatch")
	ErrMalformed    = errors.New("token malformed")
)

// Claims is the fixed, explicitly typed JWT payload. A typed struct (rather
// than a claim map) prevents claim-confusion: the class claim is always
// present and always a known value.
type Claims struct {
	Class Class `json:"cls"`
	jwt.RegisteredClaims
}

// Token is the decoded, verified form of a signed token string. It is
// ephemeral: reconstructed on every decode, never persisted.
type Token struct {
	Subject   string
	ID        string
	Class     Class
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Remaining returns the token's remaining lifetime at the given instant.
// Zero or negative means the token has already expired.
func (t *Token) Remaining(now time.Time) time.Duration {
	return t.ExpiresAt.Sub(now)
}

// Codec mints and verifies signed, expiring tokens. Access and refresh
// tokens are signed with distinct secrets. Codec is stateless after
// construction and safe for concurrent use.
type Codec struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	leeway        time.Duration
	now           func() time.Time
}

// CodecConfig holds the signing secrets and lifetimes for a Codec.
type CodecConfig struct {
	AccessSecret  string
	RefreshSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration

	// Leeway is the clock-skew tolerance applied to expiry checks only.
	// Signature checks are never relaxed. Default 0.
	Leeway time.Duration
}

// NewCodec creates a token codec. The two secrets must be non-empty and
// distinct; sharing one secret would let a refresh token be replayed as an
// access token.
func NewCodec(cfg CodecConfig) (*Codec, error) {
	if cfg.AccessSecret == "" || cfg.RefreshSecret == "" {
		return nil, errors.New("token codec: both signing secrets are required")
	}
	if cfg.AccessSecret == cfg.RefreshSecret {
		return nil, errors.New("token codec: access and refresh secrets must differ")
	}
	if cfg.AccessTTL <= 0 || cfg.RefreshTTL <= 0 {
		return nil, errors.New("token codec: token lifetimes must be positive")
	}

	return &Codec{
		accessSecret:  []byte(cfg.AccessSecret),
		refreshSecret: []byte(cfg.RefreshSecret),
		accessTTL:     cfg.AccessTTL,
		refreshTTL:    cfg.RefreshTTL,
		leeway:        cfg.Leeway,
		now:           time.Now,
	}, nil
}

// Mint creates a signed token for the subject: iat=now, exp=now+TTL for the
// class, and a fresh random jti.
func (c *Codec) Mint(subject string, class Class) (string, *Token, error) {
	secret, err := c.secretFor(class)
	if err != nil {
		return "", nil, err
	}

	now := c.now().UTC()
	tok := &Token{
		Subject:   subject,
		ID:        uuid.New().String(),
		Class:     class,
		IssuedAt:  now,
		ExpiresAt: now.Add(c.ttlFor(class)),
	}

	claims := &Claims{
		Class: class,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   tok.Subject,
			ID:        tok.ID,
			IssuedAt:  jwt.NewNumericDate(tok.IssuedAt),
			ExpiresAt: jwt.NewNumericDate(tok.ExpiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", nil, fmt.Errorf("sign %s token: %w", class, err)
	}

	return signed, tok, nil
}

// Verify parses and validates a signed token string against the expected
// class. The keyfunc selects the secret by the token's claimed class, so a
// well-signed token of the wrong class fails deterministically with
// ErrWrongClass rather than as a signature error; it remains unforgeable
// because whichever class a token claims, that class's secret must have
// produced the signature. Revocation is NOT checked here; that composition
// is the caller's responsibility.
func (c *Codec) Verify(tokenString string, expectedClass Class) (*Token, error) {
	if _, err := c.secretFor(expectedClass); err != nil {
		return nil, err
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Header["alg"])
		}
		return c.secretFor(claims.Class)
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(c.now),
		jwt.WithLeeway(c.leeway),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, mapJWTError(err)
	}

	if claims.Class != expectedClass {
		return nil, ErrWrongClass
	}
	if claims.ExpiresAt == nil || claims.IssuedAt == nil {
		return nil, ErrMalformed
	}

	return &Token{
		Subject:   claims.Subject,
		ID:        claims.RegisteredClaims.ID,
		Class:     claims.Class,
		IssuedAt:  claims.IssuedAt.Time,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// Leeway returns the configured clock-skew tolerance. A token remains
// verifiable for this long past its exp, so revocation records must outlive
// the nominal remaining lifetime by the same margin.
func (c *Codec) Leeway() time.Duration {
	return c.leeway
}

func (c *Codec) secretFor(class Class) ([]byte, error) {
	switch class {
	case ClassAccess:
		return c.accessSecret, nil
	case ClassRefresh:
		return c.refreshSecret, nil
	default:
		return nil, fmt.Errorf("%w: unknown token class %q", ErrMalformed, class)
	}
}

func (c *Codec) ttlFor(class Class) time.Duration {
	if class == ClassAccess {
		return c.accessTTL
	}
	return c.refreshTTL
}

func mapJWTError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return ErrBadSignature
	case errors.Is(err, ErrMalformed):
		return err
	default:
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
}
