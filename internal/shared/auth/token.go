package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/MicahParks/keyfunc"
	"github.com/golang-jwt/jwt/v4"
)

// ErrInvalidToken wraps every token verification failure
var ErrInvalidToken = errors.New("invalid token")

// Claims are the JWT claims read from identity provider and admin tokens
type Claims struct {
	SessionID string `json:"sid,omitempty"`
	jwt.RegisteredClaims
}

// Verifier checks token signatures and registered claims
type Verifier struct {
	keyfunc  jwt.Keyfunc
	methods  []string
	issuer   string
	audience string
	jwks     *keyfunc.JWKS
}

// NewHMACVerifier verifies HS256 tokens signed with secret.
// Empty issuer or audience skip the corresponding check.
func NewHMACVerifier(secret, issuer, audience string) *Verifier {
	key := []byte(secret)
	return &Verifier{
		keyfunc:  func(*jwt.Token) (interface{}, error) { return key, nil },
		methods:  []string{jwt.SigningMethodHS256.Alg()},
		issuer:   issuer,
		audience: audience,
	}
}

// JWKSOptions configures key refresh for NewJWKSVerifier
type JWKSOptions struct {
	RefreshInterval time.Duration
	RefreshTimeout  time.Duration
	// OnRefreshError receives background refresh failures
	OnRefreshError func(err error)
}

// NewJWKSVerifier fetches the identity provider key set and verifies RS256 tokens against it.
// The key set is refreshed in the background until Close is called.
func NewJWKSVerifier(jwksURL, issuer string, opts JWKSOptions) (*Verifier, error) {
	if opts.RefreshTimeout == 0 {
		opts.RefreshTimeout = 10 * time.Second
	}
	jwks, err := keyfunc.Get(jwksURL, keyfunc.Options{
		RefreshInterval:     opts.RefreshInterval,
		RefreshTimeout:      opts.RefreshTimeout,
		RefreshRateLimit:    time.Minute,
		RefreshUnknownKID:   true,
		RefreshErrorHandler: opts.OnRefreshError,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load JWKS from %s: %w", jwksURL, err)
	}
	return &Verifier{
		keyfunc: jwks.Keyfunc,
		methods: []string{jwt.SigningMethodRS256.Alg()},
		issuer:  issuer,
		jwks:    jwks,
	}, nil
}

// Verify parses token and returns its claims. The subject is required.
func (v *Verifier) Verify(token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, v.keyfunc, jwt.WithValidMethods(v.methods))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !parsed.Valid {
		return nil, ErrInvalidToken
	}
	if v.issuer != "" && !claims.VerifyIssuer(v.issuer, true) {
		return nil, fmt.Errorf("%w: unexpected issuer %q", ErrInvalidToken, claims.Issuer)
	}
	if v.audience != "" && !claims.VerifyAudience(v.audience, true) {
		return nil, fmt.Errorf("%w: unexpected audience", ErrInvalidToken)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	return claims, nil
}

// Close stops the background key refresh
func (v *Verifier) Close() {
	if v.jwks != nil {
		v.jwks.EndBackground()
	}
}

// Signer issues HS256 tokens
type Signer struct {
	secret   []byte
	issuer   string
	audience string
	ttl      time.Duration
	now      func() time.Time
}

// NewSigner creates a signer whose tokens expire after ttl
func NewSigner(secret, issuer, audience string, ttl time.Duration) *Signer {
	return &Signer{
		secret:   []byte(secret),
		issuer:   issuer,
		audience: audience,
		ttl:      ttl,
		now:      time.Now,
	}
}

// Sign issues a token for subject and returns it with its expiry
func (s *Signer) Sign(subject string) (string, time.Time, error) {
	now := s.now()
	expires := now.Add(s.ttl)
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	if s.audience != "" {
		claims.Audience = jwt.ClaimStrings{s.audience}
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return token, expires, nil
}
