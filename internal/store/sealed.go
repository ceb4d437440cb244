package store

import (
	"context"
	"fmt"

	"github.com/aussiebroadwan/stockroom/pkg/cryptox"
)

// Sealed encrypts values before handing them to the wrapped Store so tokens
// are never at rest in clear text. Keys are stored as is.
type Sealed struct {
	inner  Store
	sealer *cryptox.Sealer
}

func NewSealed(inner Store, sealer *cryptox.Sealer) *Sealed {
	return &Sealed{inner: inner, sealer: sealer}
}

func (s *Sealed) Get(ctx context.Context, key string) (string, bool, error) {
	sealed, ok, err := s.inner.Get(ctx, key)
	if err != nil || !ok {
		return "", ok, err
	}

	plain, err := s.sealer.Open(sealed)
	if err != nil {
		return "", false, fmt.Errorf("store: open %q: %w", key, err)
	}
	return plain, true, nil
}

func (s *Sealed) Set(ctx context.Context, key, value string) error {
	return s.SetMany(ctx, map[string]string{key: value})
}

func (s *Sealed) SetMany(ctx context.Context, entries map[string]string) error {
	out := make(map[string]string, len(entries))
	for k, v := range entries {
		sealed, err := s.sealer.Seal(v)
		if err != nil {
			return fmt.Errorf("store: seal %q: %w", k, err)
		}
		out[k] = sealed
	}
	return s.inner.SetMany(ctx, out)
}

func (s *Sealed) Delete(ctx context.Context, key string) error { return s.inner.Delete(ctx, key) }
func (s *Sealed) Clear(ctx context.Context) error              { return s.inner.Clear(ctx) }
func (s *Sealed) Close() error                                 { return s.inner.Close() }
