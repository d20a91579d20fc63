// Package storage provides the key-value scopes the storefront persists its
// session into: a token scope, a session scope and a durable scope.
package storage

import (
	"context"
	"encoding/json"
	"fmt"
)

// Well-known keys of the persisted state layout
const (
	KeyAuthToken   = "authToken"
	KeyCurrentUser = "currentUser"
	KeyCart        = "cart"
)

// Scope is a string key-value store. Get reports ok=false for a missing key.
type Scope interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// Scopes bundles the three scopes a storefront session persists into
type Scopes struct {
	Token   Scope
	Session Scope
	Durable Scope
}

// NewMemoryScopes returns a bundle that lives as long as the process
func NewMemoryScopes() Scopes {
	return Scopes{
		Token:   NewMemoryScope(),
		Session: NewMemoryScope(),
		Durable: NewMemoryScope(),
	}
}

// GetJSON decodes the value stored at key into v. A missing key returns ok=false and leaves v untouched.
func GetJSON(ctx context.Context, s Scope, key string, v any) (bool, error) {
	raw, ok, err := s.Get(ctx, key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return true, fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return true, nil
}

// SetJSON stores v at key as JSON
func SetJSON(ctx context.Context, s Scope, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	return s.Set(ctx, key, string(data))
}
