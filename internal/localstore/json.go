package localstore

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// LoadList parses the array stored under key. Absent, empty and "null" values
// load as an empty slice.
func LoadList[T any](ctx context.Context, s Store, key string) ([]T, error) {
	raw, ok, err := s.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", key, err)
	}
	items := []T{}
	if !ok || isBlank(raw) {
		return items, nil
	}
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", key, err)
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

// SaveList serializes items and overwrites key.
func SaveList[T any](ctx context.Context, s Store, key string, items []T) error {
	if items == nil {
		items = []T{}
	}
	return SaveValue(ctx, s, key, items)
}

// LoadValue parses the value under key into a T, returning the zero value when absent.
func LoadValue[T any](ctx context.Context, s Store, key string) (T, error) {
	var v T
	raw, ok, err := s.Get(ctx, key)
	if err != nil {
		return v, fmt.Errorf("reading %s: %w", key, err)
	}
	if !ok || isBlank(raw) {
		return v, nil
	}
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return v, fmt.Errorf("decoding %s: %w", key, err)
	}
	return v, nil
}

// SaveValue serializes v and overwrites key.
func SaveValue[T any](ctx context.Context, s Store, key string, v T) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}
	if err := s.Set(ctx, key, string(data)); err != nil {
		return fmt.Errorf("writing %s: %w", key, err)
	}
	return nil
}

func isBlank(raw string) bool {
	raw = strings.TrimSpace(raw)
	return raw == "" || raw == "null"
}
