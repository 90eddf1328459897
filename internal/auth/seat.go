package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// ErrInvalidSeatToken is returned for tokens that fail signature, expiry or
// claim checks.
var ErrInvalidSeatToken = errors.New("invalid seat token")

// SeatClaims binds a bearer to one seat of one match.
type SeatClaims struct {
	MatchID string `json:"match_id"`
	Seat    int    `json:"seat"`
	jwt.RegisteredClaims
}

// IssueSeatToken signs an HS256 token for seat 1 or 2 of matchID.
func IssueSeatToken(secret, matchID string, seat int, ttl time.Duration) (string, error) {
	if seat != 1 && seat != 2 {
		return "", fmt.Errorf("seat must be 1 or 2, got %d", seat)
	}
	if secret == "" {
		return "", errors.New("jwt secret not configured")
	}

	now := time.Now()
	claims := SeatClaims{
		MatchID: matchID,
		Seat:    seat,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprintf("%s:%d", matchID, seat),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign seat token: %w", err)
	}
	return signed, nil
}

// ParseSeatToken verifies raw and returns its claims.
func ParseSeatToken(secret, raw string) (*SeatClaims, error) {
	claims := &SeatClaims{}
	parsed, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidSeatToken
	}
	if claims.MatchID == "" || (claims.Seat != 1 && claims.Seat != 2) {
		return nil, ErrInvalidSeatToken
	}
	return claims, nil
}
