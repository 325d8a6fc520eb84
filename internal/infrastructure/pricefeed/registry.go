package pricefeed

import (
	"sort"
	"time"

	"github.com/rs/zerolog/log"

	"etfmon/internal/application/port"
)

// Options are the source-agnostic connection settings handed to a factory.
// Empty fields fall back to the source's own defaults.
type Options struct {
	BaseURL   string
	Locale    string
	Currency  string
	UserAgent string
	Timeout   time.Duration
}

// Factory builds a price source from options.
type Factory func(opts Options) port.PriceSource

// registry maps source names to their factories
var registry = make(map[string]Factory)

// Register is called from the init() of each source package.
func Register(name string, factory Factory) {
	if factory == nil {
		log.Warn().Str("source", name).Msg("invalid price source factory")
		return
	}
	if _, exists := registry[name]; exists {
		log.Warn().Str("source", name).Msg("price source factory already registered, overwriting")
	}
	registry[name] = factory
	log.Debug().Str("source", name).Msg("price source factory registered")
}

func Get(name string) (Factory, bool) {
	factory, ok := registry[name]
	return factory, ok
}

// Names lists registered sources, sorted.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
