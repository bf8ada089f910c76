// Package backend selects a tensor backend by name.
package backend

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/born-ml/perplexity/internal/backend/cpu"
	"github.com/born-ml/perplexity/internal/backend/gonum"
	"github.com/born-ml/perplexity/internal/parallel"
	"github.com/born-ml/perplexity/internal/tensor"
)

// ErrUnknownBackend is returned by Open for unregistered names.
var ErrUnknownBackend = errors.New("unknown backend")

// Backend names accepted by Open.
const (
	CPU   = "cpu"
	Gonum = "gonum"
)

var constructors = map[string]func(parallel.Config) tensor.Backend{
	CPU:   func(cfg parallel.Config) tensor.Backend { return cpu.NewWithConfig(cfg) },
	Gonum: func(parallel.Config) tensor.Backend { return gonum.New() },
}

// Open returns the backend registered under name (case-insensitive).
func Open(name string) (tensor.Backend, error) {
	return OpenWithConfig(name, parallel.DefaultConfig())
}

// OpenWithConfig is Open with explicit parallelism settings for backends
// that use them.
func OpenWithConfig(name string, cfg parallel.Config) (tensor.Backend, error) {
	ctor, ok := constructors[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("%w %q (available: %s)", ErrUnknownBackend, name, strings.Join(Names(), ", "))
	}
	return ctor(cfg), nil
}

// Names lists the registered backend names in sorted order.
func Names() []string {
	names := make([]string, 0, len(constructors))
	for name := range constructors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
