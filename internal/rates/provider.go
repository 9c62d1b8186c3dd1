package rates

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"github.com/Alias1177/GoldPredictor/internal/observability"
	"github.com/Alias1177/GoldPredictor/models"
)

const (
	// DefaultTTL is how long a resolved quote is reused
	DefaultTTL = 300 * time.Second
	// DefaultFallbackRate is returned when every live lookup fails
	DefaultFallbackRate = 84.5

	baseCurrency  = "USD"
	quoteCurrency = "INR"
)

// Fetcher performs the two remote lookups.
type Fetcher interface {
	Convert(ctx context.Context, from, to string) (float64, error)
	Latest(ctx context.Context, base, symbol string) (float64, error)
}

// Options tune the provider. Zero values take the defaults above.
type Options struct {
	TTL          time.Duration
	FallbackRate float64
	Now          Clock
	Metrics      *observability.Metrics
}

// Provider resolves USD->INR: cache, then /convert, then /latest, then a constant.
// Every resolved quote is kept in process as well, so an unreachable shared
// cache still serves the same quote for the whole TTL.
type Provider struct {
	fetcher  Fetcher
	local    *MemoryCache
	shared   models.RateCache
	ttl      time.Duration
	fallback float64
	now      Clock
	metrics  *observability.Metrics
	group    singleflight.Group
	logger   zerolog.Logger
}

var _ models.RateProvider = (*Provider)(nil)

// NewProvider wires a fetcher to an optional shared cache.
func NewProvider(fetcher Fetcher, shared models.RateCache, opts Options) *Provider {
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	if opts.FallbackRate <= 0 {
		opts.FallbackRate = DefaultFallbackRate
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Provider{
		fetcher:  fetcher,
		local:    NewMemoryCache(opts.Now),
		shared:   shared,
		ttl:      opts.TTL,
		fallback: opts.FallbackRate,
		now:      opts.Now,
		metrics:  opts.Metrics,
		logger:   log.With().Str("component", "rate_provider").Logger(),
	}
}

// GetRate returns the cached quote if it is still fresh, otherwise resolves
// a new one. It always yields a positive rate.
func (p *Provider) GetRate(ctx context.Context) models.RateQuote {
	if q, ok := p.cached(ctx); ok {
		return q
	}

	v, _, _ := p.group.Do(baseCurrency+quoteCurrency, func() (interface{}, error) {
		// another caller may have refreshed while we waited
		if q, ok := p.cached(ctx); ok {
			return q, nil
		}

		q := p.resolve(context.WithoutCancel(ctx))
		_ = p.local.Set(ctx, q, p.ttl)
		if p.shared != nil {
			if err := p.shared.Set(ctx, q, p.ttl); err != nil {
				p.metrics.ObserveRateCacheError()
				p.logger.Warn().Err(err).Msg("Could not store exchange rate in shared cache")
			}
		}
		return q, nil
	})

	return v.(models.RateQuote)
}

func (p *Provider) cached(ctx context.Context) (models.RateQuote, bool) {
	if q, found, _ := p.local.Get(ctx); found {
		p.metrics.ObserveRateCacheHit()
		return q, true
	}
	if p.shared == nil {
		return models.RateQuote{}, false
	}

	q, found, err := p.shared.Get(ctx)
	if err != nil {
		p.metrics.ObserveRateCacheError()
		p.logger.Warn().Err(err).Msg("Shared exchange rate cache read failed, treating as miss")
		return models.RateQuote{}, false
	}
	if !found {
		return models.RateQuote{}, false
	}
	p.metrics.ObserveRateCacheHit()

	// keep the shared expiry so every instance refreshes at the same moment
	if remaining := p.ttl - p.now().Sub(q.FetchedAt); remaining > 0 {
		_ = p.local.Set(ctx, q, remaining)
	}
	return q, true
}

func (p *Provider) resolve(ctx context.Context) models.RateQuote {
	rate, primaryErr := p.fetcher.Convert(ctx, baseCurrency, quoteCurrency)
	if primaryErr == nil {
		return p.quote(rate, models.RateSourcePrimary, nil)
	}
	p.logger.Warn().Err(primaryErr).Msg("Primary rate lookup failed, trying fallback endpoint")

	rate, secondaryErr := p.fetcher.Latest(ctx, baseCurrency, quoteCurrency)
	if secondaryErr == nil {
		return p.quote(rate, models.RateSourceSecondary, primaryErr)
	}
	p.logger.Warn().Err(secondaryErr).Float64("fallback", p.fallback).Msg("Could not fetch live rate, using static fallback")

	q := p.quote(p.fallback, models.RateSourceStatic, errors.Join(primaryErr, secondaryErr))
	q.Warning = fmt.Sprintf("Could not fetch live rate. Using default fallback (₹%g/USD).", p.fallback)
	return q
}

func (p *Provider) quote(rate float64, source string, cause error) models.RateQuote {
	p.metrics.ObserveRate(source, rate)
	return models.RateQuote{
		Rate:      rate,
		Source:    source,
		FetchedAt: p.now(),
		Cause:     cause,
	}
}
