// Package storage provides the key/value backends the client persists its
// cart, session and drafts into.
package storage

import (
	"context"
	"fmt"
)

// Storage is a flat string key/value store. Get returns domain.ErrNotFound
// when the key is absent.
type Storage interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// Kinds accepted by config.
const (
	KindMemory   = "memory"
	KindFile     = "file"
	KindRedis    = "redis"
	KindPostgres = "postgres"
)

func namespacedKey(namespace, key string) string {
	if namespace == "" {
		return key
	}
	return fmt.Sprintf("%s:%s", namespace, key)
}
