package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// PasswordHasher is the one-way hashing capability used for stored
// credentials. Verification re-hashes the candidate; plaintext is never
// compared or stored.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(hashed, candidate string) bool
}

// TokenSigner issues and validates signed session tokens.
type TokenSigner interface {
	Sign(userID, email, role string) (token string, expiresAt time.Time, err error)
	Verify(token string) (*TokenClaims, error)
}

// TokenClaims is the decoded payload of a session token.
type TokenClaims struct {
	UserID    string
	Email     string
	Role      string
	ExpiresAt time.Time
}

// BcryptHasher hashes passwords with bcrypt at a configurable work factor.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher creates a hasher with the given cost; out-of-range costs
// fall back to the bcrypt default (10).
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

func (h *BcryptHasher) Hash(plaintext string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

func (h *BcryptHasher) Verify(hashed, candidate string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(candidate)) == nil
}

// JWTSigner signs session tokens with HMAC-SHA256.
type JWTSigner struct {
	secret []byte
	expiry time.Duration
}

// NewJWTSigner creates a signer with the configured secret and expiry window.
func NewJWTSigner(secret string, expiry time.Duration) *JWTSigner {
	return &JWTSigner{secret: []byte(secret), expiry: expiry}
}

// Expiry returns the configured token lifetime.
func (s *JWTSigner) Expiry() time.Duration {
	return s.expiry
}

func (s *JWTSigner) Sign(userID, email, role string) (string, time.Time, error) {
	now := time.Now().UTC()
	exp := now.Add(s.expiry)
	claims := jwt.MapClaims{
		"sub":   userID,
		"email": email,
		"role":  role,
		"iat":   now.Unix(),
		"exp":   exp.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

func (s *JWTSigner) Verify(tokenStr string) (*TokenClaims, error) {
	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	out := &TokenClaims{}
	if sub, ok := claims["sub"].(string); ok {
		out.UserID = sub
	}
	if email, ok := claims["email"].(string); ok {
		out.Email = email
	}
	if role, ok := claims["role"].(string); ok {
		out.Role = role
	}
	if exp, ok := claims["exp"].(float64); ok {
		out.ExpiresAt = time.Unix(int64(exp), 0).UTC()
	}
	return out, nil
}
