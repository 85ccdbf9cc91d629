package sec

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidTicket = errors.New("invalid ticket")

// IssueHS256Ticket signs a short-lived single-purpose token.
// sub binds it to a subject (a session ID), the returned jti identifies this issue.
func IssueHS256Ticket(key []byte, issuer string, sub string, ttl time.Duration, now time.Time) (string, string, error) {
	jti, err := GenerateOpaqueToken(16)
	if err != nil {
		return "", "", err
	}
	claims := jwt.RegisteredClaims{
		Issuer:    issuer,
		Subject:   sub,
		ID:        jti,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(key)
	if err != nil {
		return "", "", fmt.Errorf("sign ticket: %w", err)
	}
	return signed, jti, nil
}

// ParseHS256Ticket verifies signature, algorithm, issuer and expiry against now
func ParseHS256Ticket(key []byte, issuer string, signed string, now time.Time) (*jwt.RegisteredClaims, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(
		signed,
		claims,
		func(token *jwt.Token) (interface{}, error) {
			// ensure alg is HS256
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return key, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTicket, err)
	}
	if !token.Valid {
		return nil, ErrInvalidTicket
	}
	return claims, nil
}
