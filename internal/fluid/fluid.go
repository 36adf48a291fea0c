// Package fluid supplies thermophysical properties for process streams.
//
// A Provider answers (substance, temperature) with the four properties the
// sizing pipeline needs. Providers fail loudly: a lookup that cannot be
// answered returns ErrUnavailable, ErrMalformed or ErrUnknownSubstance and
// never a zero-filled Properties.
package fluid

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ErrUnavailable      = errors.New("fluid: property source unavailable")
	ErrMalformed        = errors.New("fluid: malformed property data")
	ErrUnknownSubstance = errors.New("fluid: unknown substance")
	ErrOutOfRange       = errors.New("fluid: temperature outside tabulated range")
	ErrInvalid          = errors.New("fluid: invalid properties")
)

var lookupsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "hx_property_lookups_total",
	Help: "Fluid property lookups by source and result",
}, []string{"source", "result"})

// Properties in US engineering units.
type Properties struct {
	DensityLbFt3       float64 `json:"density_lb_ft3" yaml:"density_lb_ft3"`
	SpecificHeatBtuLbF float64 `json:"specific_heat_btu_lb_f" yaml:"specific_heat_btu_lb_f"`
	ViscosityLbFtH     float64 `json:"viscosity_lb_ft_h" yaml:"viscosity_lb_ft_h"`
	ConductivityBtuHFt float64 `json:"conductivity_btu_h_ft_f" yaml:"conductivity_btu_h_ft_f"`
}

// Validate rejects non-positive values.
func (p Properties) Validate() error {
	if p.DensityLbFt3 <= 0 || p.SpecificHeatBtuLbF <= 0 || p.ViscosityLbFtH <= 0 || p.ConductivityBtuHFt <= 0 {
		return fmt.Errorf("%w: all properties must be positive (%+v)", ErrInvalid, p)
	}
	return nil
}

// Provider looks up properties for a substance at a temperature in °F.
type Provider interface {
	Lookup(ctx context.Context, substance string, temperatureF float64) (Properties, error)
}

// Normalize folds substance names to the key used by the providers.
func Normalize(substance string) string {
	return strings.ToLower(strings.TrimSpace(substance))
}

// Observe counts one lookup against a property source.
func Observe(source string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	lookupsTotal.WithLabelValues(source, result).Inc()
}

type cacheKey struct {
	substance string
	temp      float64
}

// Cache memoises successful lookups of another provider. Failures are not
// cached so a transient outage does not stick.
type Cache struct {
	Next Provider

	mu      sync.RWMutex
	entries map[cacheKey]Properties
}

func NewCache(next Provider) *Cache {
	return &Cache{Next: next, entries: make(map[cacheKey]Properties)}
}

func (c *Cache) Lookup(ctx context.Context, substance string, temperatureF float64) (Properties, error) {
	key := cacheKey{Normalize(substance), temperatureF}
	c.mu.RLock()
	p, ok := c.entries[key]
	c.mu.RUnlock()
	if ok {
		return p, nil
	}
	p, err := c.Next.Lookup(ctx, substance, temperatureF)
	if err != nil {
		return Properties{}, err
	}
	c.mu.Lock()
	c.entries[key] = p
	c.mu.Unlock()
	return p, nil
}
