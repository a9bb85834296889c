package mock

import (
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// DefaultTokenTTL is how long issued tokens stay valid.
const DefaultTokenTTL = 24 * time.Hour

// Claims is the token payload. Subject carries the user id.
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// UserID returns the numeric user id held in Subject.
func (c *Claims) UserID() (int64, error) {
	return strconv.ParseInt(c.Subject, 10, 64)
}

type signer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func newSigner(secret []byte, ttl time.Duration) *signer {
	if len(secret) == 0 {
		secret = []byte(uuid.NewString() + uuid.NewString())
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &signer{secret: secret, ttl: ttl, now: time.Now}
}

func (s *signer) issue(u *User) (string, error) {
	now := s.now()
	claims := Claims{
		Email: u.CompanyEmail,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(u.ID, 10),
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// verify parses an HS256 token and checks its signature and expiry. Errors
// wrap the jwt sentinel errors (jwt.ErrTokenExpired and friends).
func (s *signer) verify(token string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, err
	}
	return claims, nil
}
