package auth

import (
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignerVerifierRoundTrip(t *testing.T) {
	signer := NewSigner("my-secret-key", "dynamite", "admin", time.Hour)
	verifier := NewHMACVerifier("my-secret-key", "dynamite", "admin")

	token, expires, err := signer.Sign("admin")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expires, 5*time.Second)

	claims, err := verifier.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Subject)
}

func TestVerify_Rejections(t *testing.T) {
	verifier := NewHMACVerifier("my-secret-key", "dynamite", "admin")

	expired := NewSigner("my-secret-key", "dynamite", "admin", time.Hour)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expiredToken, _, err := expired.Sign("admin")
	require.NoError(t, err)

	wrongSecret, _, _ := NewSigner("other-secret", "dynamite", "admin", time.Hour).Sign("admin")
	wrongIssuer, _, _ := NewSigner("my-secret-key", "someone-else", "admin", time.Hour).Sign("admin")
	wrongAudience, _, _ := NewSigner("my-secret-key", "dynamite", "user", time.Hour).Sign("admin")
	noSubject, _, _ := NewSigner("my-secret-key", "dynamite", "admin", time.Hour).Sign("")

	good, _, _ := NewSigner("my-secret-key", "dynamite", "admin", time.Hour).Sign("admin")
	parts := strings.Split(good, ".")
	tampered := parts[0] + "." + parts[1] + ".invalid-signature"

	tests := map[string]string{
		"expired":        expiredToken,
		"wrong secret":   wrongSecret,
		"wrong issuer":   wrongIssuer,
		"wrong audience": wrongAudience,
		"no subject":     noSubject,
		"tampered":       tampered,
		"garbage":        "invalid.token",
	}

	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := verifier.Verify(token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestVerify_RejectsAlgorithmSwitch(t *testing.T) {
	// An HS256 verifier must not accept an unsigned token
	claims := jwt.RegisteredClaims{Subject: "user_1", ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = NewHMACVerifier("my-secret-key", "", "").Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWKSVerifier(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	jwks := map[string]interface{}{
		"keys": []map[string]string{{
			"kty": "RSA",
			"kid": "test-key",
			"alg": "RS256",
			"use": "sig",
			"n":   base64.RawURLEncoding.EncodeToString(key.N.Bytes()),
			"e":   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(key.E)).Bytes()),
		}},
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(jwks)
	}))
	defer srv.Close()

	verifier, err := NewJWKSVerifier(srv.URL, "https://clerk.example.com", JWKSOptions{})
	require.NoError(t, err)
	defer verifier.Close()

	sign := func(issuer string) string {
		tok := jwt.NewWithClaims(jwt.SigningMethodRS256, Claims{
			SessionID: "sess_1",
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   "user_2abc",
				Issuer:    issuer,
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
			},
		})
		tok.Header["kid"] = "test-key"
		s, err := tok.SignedString(key)
		require.NoError(t, err)
		return s
	}

	claims, err := verifier.Verify(sign("https://clerk.example.com"))
	require.NoError(t, err)
	assert.Equal(t, "user_2abc", claims.Subject)
	assert.Equal(t, "sess_1", claims.SessionID)

	_, err = verifier.Verify(sign("https://evil.example.com"))
	assert.ErrorIs(t, err, ErrInvalidToken)

	hmacToken, _, err := NewSigner("secret", "https://clerk.example.com", "", time.Minute).Sign("user_2abc")
	require.NoError(t, err)
	_, err = verifier.Verify(hmacToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
