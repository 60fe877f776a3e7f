package web

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var errBadReviewToken = errors.New("invalid review token")

// ReviewTokens mints and parses the short-lived tokens that authorize the
// term-confirmation handshake. A token is scoped to one user and one job;
// it is handed out with the status response once a job pauses for review.
type ReviewTokens struct {
	secret []byte
	ttl    time.Duration
}

func NewReviewTokens(secret string, ttl time.Duration) *ReviewTokens {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &ReviewTokens{secret: []byte(secret), ttl: ttl}
}

type reviewClaims struct {
	UserID string `json:"uid"`
	JobID  string `json:"jid"`
	jwt.RegisteredClaims
}

func (t *ReviewTokens) Mint(userID, jobID string) (string, error) {
	now := time.Now()
	claims := reviewClaims{
		UserID: userID,
		JobID:  jobID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
}

// Parse validates the signature and expiry and returns the token's scope.
func (t *ReviewTokens) Parse(token string) (userID, jobID string, err error) {
	var claims reviewClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(tok *jwt.Token) (interface{}, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errBadReviewToken
		}
		return t.secret, nil
	})
	if err != nil || !parsed.Valid {
		return "", "", errBadReviewToken
	}
	if claims.UserID == "" || claims.JobID == "" {
		return "", "", errBadReviewToken
	}
	return claims.UserID, claims.JobID, nil
}
