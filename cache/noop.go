// Package cache holds the signed download link caches.
package cache

import (
	"context"
	"time"
)

// Noop never stores anything. It is used when Redis is not configured.
type Noop struct{}

// Get always misses.
func (Noop) Get(context.Context, string) (string, error) { return "", nil }

// Set discards the value.
func (Noop) Set(context.Context, string, string, time.Duration) error { return nil }
