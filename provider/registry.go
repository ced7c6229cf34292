package provider

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"
)

// Factory creates a new Client from the given configuration.
// Each provider registers its own factory function.
type Factory func(cfg Config) (Client, error)

// Provider names are case-insensitive. aliases maps an alternate name to the
// canonical one it stands for.
var (
	registryMu sync.RWMutex
	registry   = make(map[string]Factory)
	aliases    = make(map[string]string)
)

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Register adds a provider factory under name and any aliases.
// Providers call this in their init() function.
// Panics if name or an alias is already taken.
//
//	func init() {
//	    provider.Register("azure-openai", newFromProviderConfig, "azure")
//	}
func Register(name string, factory Factory, alias ...string) {
	registryMu.Lock()
	defer registryMu.Unlock()

	canonical := normalizeName(name)
	if taken(canonical) {
		panic(fmt.Sprintf("provider %q already registered", name))
	}
	registry[canonical] = factory
	for _, a := range alias {
		a = normalizeName(a)
		if taken(a) {
			panic(fmt.Sprintf("provider alias %q already registered", a))
		}
		aliases[a] = canonical
	}
}

// taken must be called with registryMu held.
func taken(name string) bool {
	_, isProvider := registry[name]
	_, isAlias := aliases[name]
	return isProvider || isAlias
}

// Canonical resolves name (or one of its aliases) to the registered
// provider name. ok is false when nothing is registered under name.
func Canonical(name string) (canonical string, ok bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return lookup(name)
}

// lookup must be called with registryMu held.
func lookup(name string) (string, bool) {
	n := normalizeName(name)
	if _, ok := registry[n]; ok {
		return n, true
	}
	if target, ok := aliases[n]; ok {
		return target, true
	}
	return "", false
}

// New creates a new Client using the named provider or alias.
// Returns ErrUnknownProvider if nothing is registered under name.
// cfg.Provider is set to the canonical name before the factory runs.
//
//	client, err := provider.New("anthropic", provider.Config{
//	    Model: "claude-3-5-haiku-latest",
//	})
func New(name string, cfg Config) (Client, error) {
	registryMu.RLock()
	canonical, ok := lookup(name)
	factory := registry[canonical]
	registryMu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, name)
	}
	cfg.Provider = canonical
	return factory(cfg)
}

// FromConfig validates cfg and creates a Client using cfg.Provider.
func FromConfig(cfg Config) (Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return New(cfg.Provider, cfg)
}

// MustNew creates a new Client, panicking on error.
// Use only when provider availability is guaranteed (e.g., in tests).
func MustNew(name string, cfg Config) Client {
	client, err := New(name, cfg)
	if err != nil {
		panic(fmt.Sprintf("provider.MustNew(%q): %v", name, err))
	}
	return client
}

// Available returns the canonical names of all registered providers, sorted.
func Available() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return slices.Sorted(maps.Keys(registry))
}

// IsRegistered reports whether name or an alias of that name is registered.
func IsRegistered(name string) bool {
	_, ok := Canonical(name)
	return ok
}

// Unregister removes a provider and its aliases.
// This is primarily useful for testing.
func Unregister(name string) {
	registryMu.Lock()
	defer registryMu.Unlock()

	canonical, ok := lookup(name)
	if !ok {
		return
	}
	delete(registry, canonical)
	for a, target := range aliases {
		if target == canonical {
			delete(aliases, a)
		}
	}
}

// ClearRegistry removes all registered providers.
// This is primarily useful for testing.
func ClearRegistry() {
	registryMu.Lock()
	defer registryMu.Unlock()

	registry = make(map[string]Factory)
	aliases = make(map[string]string)
}
