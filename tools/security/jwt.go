package security

import (
	"fmt"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"

	"chatapp/tools/errs"
)

// Options controls token signing. HS256 only; the secret comes from config.
type Options struct {
	Secret []byte
	TTL    time.Duration // defaults to 24h
}

func DefaultOptions(secret []byte) Options {
	return Options{Secret: secret, TTL: 24 * time.Hour}
}

// Generate signs a token whose subject is the user id.
func Generate(opts Options, userID string) (token string, expireAt time.Time, err error) {
	if opts.TTL <= 0 {
		opts.TTL = 24 * time.Hour
	}
	now := time.Now()
	exp := now.Add(opts.TTL)

	claims := jwtlib.MapClaims{
		"sub": userID,
		"iat": now.Unix(),
		"nbf": now.Unix(),
		"exp": exp.Unix(),
	}
	signed, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString(opts.Secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// Verify parses the token and returns the user id it was issued for.
// Every failure collapses to ErrUnauthenticated; callers never see parser
// internals.
func Verify(opts Options, token string) (string, error) {
	parsed, err := jwtlib.Parse(token, func(t *jwtlib.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwtlib.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected alg: %v", t.Header["alg"])
		}
		return opts.Secret, nil
	})
	if err != nil || !parsed.Valid {
		return "", errs.ErrUnauthenticated.WithDetail("invalid token")
	}
	claims, ok := parsed.Claims.(jwtlib.MapClaims)
	if !ok {
		return "", errs.ErrUnauthenticated.WithDetail("claims type mismatch")
	}
	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return "", errs.ErrUnauthenticated.WithDetail("missing subject")
	}
	return sub, nil
}
