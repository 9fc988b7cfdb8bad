// Package storage holds the binary document stores.
package storage

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrInvalidKey is returned for keys that would escape the store.
	ErrInvalidKey = errors.New("invalid storage key")
	// ErrNotFound is returned when no object exists under a key.
	ErrNotFound = errors.New("object not found")
	// ErrInvalidToken is returned for missing, expired or mismatched download tokens.
	ErrInvalidToken = errors.New("invalid download token")
)

// DownloadPath is the route prefix that serves LocalStore objects.
const DownloadPath = "/files/documents/"

const tokenIssuer = "quotedesk"

func validateKey(key string) error {
	if key == "" || strings.HasPrefix(key, "/") || strings.Contains(key, "\\") || !filepath.IsLocal(key) {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return nil
}

// LocalStore keeps documents on disk. Links point at DownloadPath and carry
// a signed token that expires.
type LocalStore struct {
	dir     string
	baseURL string
	secret  []byte
}

// NewLocalStore creates dir if needed.
func NewLocalStore(dir, baseURL, secret string) (*LocalStore, error) {
	if secret == "" {
		return nil, errors.New("local storage requires a signing secret")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &LocalStore{dir: dir, baseURL: strings.TrimRight(baseURL, "/"), secret: []byte(secret)}, nil
}

func (s *LocalStore) path(key string) string {
	return filepath.Join(s.dir, filepath.FromSlash(key))
}

// Put writes data under key and returns its unsigned link.
func (s *LocalStore) Put(_ context.Context, key string, data []byte, _ string) (string, error) {
	if err := validateKey(key); err != nil {
		return "", err
	}
	p := s.path(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return "", fmt.Errorf("create object dir: %w", err)
	}
	tmp := p + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return "", fmt.Errorf("write object: %w", err)
	}
	if err := os.Rename(tmp, p); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("write object: %w", err)
	}
	return s.baseURL + DownloadPath + key, nil
}

// Get reads the object stored under key.
func (s *LocalStore) Get(key string) ([]byte, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	if err != nil {
		return nil, fmt.Errorf("read object: %w", err)
	}
	return data, nil
}

// SignedURL returns a link to key that is accepted until ttl elapses.
func (s *LocalStore) SignedURL(_ context.Context, key string, ttl time.Duration) (string, error) {
	if err := validateKey(key); err != nil {
		return "", err
	}
	token, err := s.Sign(key, ttl)
	if err != nil {
		return "", err
	}
	return s.baseURL + DownloadPath + key + "?token=" + url.QueryEscape(token), nil
}

// Sign issues a download token bound to key.
func (s *LocalStore) Sign(key string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Issuer:    tokenIssuer,
		Subject:   key,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign download token: %w", err)
	}
	return signed, nil
}

// Verify checks that token was issued by this store for key and has not expired.
func (s *LocalStore) Verify(key, token string) error {
	if token == "" {
		return ErrInvalidToken
	}
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithIssuer(tokenIssuer))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Subject != key {
		return fmt.Errorf("%w: token is for another document", ErrInvalidToken)
	}
	return nil
}
