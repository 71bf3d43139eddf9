// Package capability provides a registry for optional features backed by
// heavyweight or optional math libraries. A feature path that needs one looks
// it up at the point of use; a missing capability is an error only then, never
// at startup.
package capability

import (
	"errors"
	"fmt"
	"sync"
)

// ErrUnavailable is returned when a looked-up capability has no provider.
var ErrUnavailable = errors.New("capability unavailable")

// Well-known capability names.
const (
	Geodesic = "geodesic"
	HexGrid  = "hexgrid"
)

// guidance maps capability names to install/enable hints included in the
// error when the capability is absent.
var guidance = map[string]string{
	Geodesic: "ensure the geo package is linked into the binary",
	HexGrid:  "no hex-grid provider is bundled; register one with capability.Register",
}

var (
	mu       sync.RWMutex
	registry = make(map[string]any)
)

// Register installs a provider for the named capability, replacing any
// previous one.
func Register(name string, provider any) {
	mu.Lock()
	defer mu.Unlock()
	registry[name] = provider
}

// Unregister removes the named capability. Mainly useful in tests.
func Unregister(name string) {
	mu.Lock()
	defer mu.Unlock()
	delete(registry, name)
}

// Lookup resolves the named capability. The caller type-asserts the returned
// provider to the expected function or interface type.
func Lookup(name string) (any, error) {
	mu.RLock()
	provider, ok := registry[name]
	mu.RUnlock()
	if !ok {
		if hint, known := guidance[name]; known {
			return nil, fmt.Errorf("%w: %s (%s)", ErrUnavailable, name, hint)
		}
		return nil, fmt.Errorf("%w: %s", ErrUnavailable, name)
	}
	return provider, nil
}
