package transport

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// CookieName carries the signed editor session.
const CookieName = "showcase_editor"

var (
	ErrInvalidSession = errors.New("invalid editor session")
	ErrExpiredSession = errors.New("editor session expired")
)

// SessionSigner issues and verifies HS256 editor session tokens.
type SessionSigner struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewSessionSigner creates a signer. secret must not be empty.
func NewSessionSigner(secret []byte, ttl time.Duration) (*SessionSigner, error) {
	if len(secret) == 0 {
		return nil, errors.New("session secret is required")
	}
	if ttl <= 0 {
		return nil, errors.New("session ttl must be positive")
	}
	return &SessionSigner{secret: secret, ttl: ttl, now: time.Now}, nil
}

// Issue signs a session for editor and returns the token with its expiry.
func (s *SessionSigner) Issue(editor string) (string, time.Time, error) {
	now := s.now()
	exp := now.Add(s.ttl)
	claims := jwt.MapClaims{
		"sub": editor,
		"iat": now.Unix(),
		"exp": exp.Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("signing session: %w", err)
	}
	return token, exp, nil
}

// Verify checks a token and returns its editor.
func (s *SessionSigner) Verify(token string) (string, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrExpiredSession
		}
		return "", fmt.Errorf("%w: %w", ErrInvalidSession, err)
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok || !parsed.Valid {
		return "", ErrInvalidSession
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return "", fmt.Errorf("%w: missing sub", ErrInvalidSession)
	}
	return sub, nil
}

// SetCookie writes the session cookie.
func SetCookie(w http.ResponseWriter, token string, expires time.Time, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearCookie expires the session cookie.
func ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
