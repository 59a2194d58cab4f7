// Package translator turns source regions into positionally aligned
// translated regions. The backend is a capability variant selected once by
// explicit configuration, never by sniffing the environment at call time.
package translator

import (
	"context"
	"fmt"

	"golang.org/x/text/language"

	"github.com/rasterloc/rasterloc/internal/region"
)

// Translator produces a translated region list aligned one-to-one with the
// input. Implementations must return exactly len(regions) results or an
// error; silent padding or truncation is forbidden.
type Translator interface {
	Translate(ctx context.Context, regions []region.TextRegion, source, target language.Tag) ([]region.TextRegion, error)
}

// Backend names a translator variant.
type Backend string

const (
	BackendStub   Backend = "stub"
	BackendOpenAI Backend = "openai"
)

// Config selects and parameterizes a backend.
type Config struct {
	Backend Backend
	// Model is the chat model or deployment name (openai backend).
	Model string
	// Endpoint overrides the API base URL; empty uses the default.
	Endpoint string
	// APIKey authenticates the openai backend.
	APIKey string
	// Glossary holds exact term translations the backend must honor.
	Glossary map[string]string
	// MaxRetries bounds retry attempts around the network call.
	MaxRetries uint64
}

// DefaultConfig returns an offline stub configuration.
func DefaultConfig() Config {
	return Config{Backend: BackendStub, MaxRetries: 3}
}

// New constructs the configured translator variant.
func New(cfg Config) (Translator, error) {
	switch cfg.Backend {
	case BackendStub, "":
		return &Stub{}, nil
	case BackendOpenAI:
		return newOpenAI(cfg)
	default:
		return nil, fmt.Errorf("unknown translator backend: %q", cfg.Backend)
	}
}
