// Package storage defines the durable store behind the relay's small
// persistence needs: support-agent accounts and the JSON blobs kept under
// fixed keys (currently the exchange-rate snapshot).
package storage

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("storage: not found")

type Agent struct {
	ID           int64
	Username     string
	PasswordHash string
}

type Store interface {
	// GetKV returns the raw value under key, or ErrNotFound.
	GetKV(ctx context.Context, key string) ([]byte, error)
	// PutKV inserts or overwrites the value under key.
	PutKV(ctx context.Context, key string, value []byte) error

	AgentByUsername(ctx context.Context, username string) (*Agent, error)
	CreateAgent(ctx context.Context, username, passwordHash string) (int64, error)

	Migrate() error
	Ping(ctx context.Context) error
	Close() error
}
