package currency

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/Veraticus/cashflow/internal/common"
	"github.com/Veraticus/cashflow/internal/model"
	"github.com/Veraticus/cashflow/internal/service"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"
)

// sharedLookupTimeout bounds a provider call that callers share.
const sharedLookupTimeout = 30 * time.Second

// ErrSuperseded reports that a newer selection overtook a request before its
// rate could be applied.
var ErrSuperseded = errors.New("currency selection superseded")

// Request identifies one currency selection.
type Request struct {
	Currency   string
	Generation uint64
}

// Quote is a currency code together with the rate from the base currency.
type Quote struct {
	Currency string
	Rate     float64
}

// BaseQuote is the identity quote for the base currency.
func BaseQuote() Quote {
	return Quote{Currency: model.BaseCurrency, Rate: 1}
}

// Format converts a base amount and rounds it to two decimal places.
// Results beyond the float64 range saturate at ±math.MaxFloat64 and NaN
// inputs give 0.
func (q Quote) Format(baseAmount float64) float64 {
	if math.IsNaN(baseAmount) || math.IsNaN(q.Rate) {
		return 0
	}
	if math.IsInf(baseAmount, 0) || math.IsInf(q.Rate, 0) {
		return saturate(baseAmount * q.Rate)
	}
	converted := decimal.NewFromFloat(baseAmount).
		Mul(decimal.NewFromFloat(q.Rate)).
		Round(2).
		InexactFloat64()
	return saturate(converted)
}

func saturate(v float64) float64 {
	switch {
	case math.IsNaN(v):
		return 0
	case math.IsInf(v, 1):
		return math.MaxFloat64
	case math.IsInf(v, -1):
		return -math.MaxFloat64
	}
	return v
}

// Converter tracks the display currency and its rate.
type Converter struct {
	provider service.RateProvider
	logger   *slog.Logger
	flight   singleflight.Group
	quote    Quote
	pending  string
	latest   uint64
	mu       sync.RWMutex
}

// NewConverter creates a converter showing the base currency.
func NewConverter(provider service.RateProvider, logger *slog.Logger) *Converter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Converter{
		provider: provider,
		logger:   logger,
		quote:    BaseQuote(),
	}
}

// NormalizeCode upper-cases code and checks it looks like an ISO 4217 code.
func NormalizeCode(code string) (string, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if len(code) != 3 {
		return "", common.InvalidInput("currency code %q must have three letters", code)
	}
	for _, r := range code {
		if r < 'A' || r > 'Z' {
			return "", common.InvalidInput("currency code %q must have three letters", code)
		}
	}
	return code, nil
}

// Quote returns the quote currently in effect.
func (c *Converter) Quote() Quote {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.quote
}

// Pending returns the currency of an outstanding request, or "" if none.
func (c *Converter) Pending() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.pending
}

// Request records a new selection. For the base currency the identity rate is
// applied immediately and done is true; otherwise the caller must Resolve and
// Apply the returned request.
func (c *Converter) Request(code string) (Request, bool, error) {
	code, err := NormalizeCode(code)
	if err != nil {
		return Request{}, false, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.latest++
	req := Request{Currency: code, Generation: c.latest}

	if code == model.BaseCurrency {
		c.quote = BaseQuote()
		c.pending = ""
		return req, true, nil
	}

	c.pending = code
	return req, false, nil
}

// Resolve asks the provider for the rate of req. Concurrent lookups of the
// same currency share one provider call.
func (c *Converter) Resolve(ctx context.Context, req Request) (float64, error) {
	if c.provider == nil {
		return 0, fmt.Errorf("%w: no rate provider configured", common.ErrConversionFailure)
	}

	// The shared lookup outlives any single caller; each caller stops
	// waiting when its own ctx ends.
	ch := c.flight.DoChan(req.Currency, func() (any, error) {
		lookupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sharedLookupTimeout)
		defer cancel()
		return c.provider.Rate(lookupCtx, model.BaseCurrency, req.Currency)
	})

	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		return 0, wrapConversion(ctx.Err())
	}

	v, err, shared := res.Val, res.Err, res.Shared
	if err != nil {
		c.logger.Warn("Exchange rate lookup failed",
			"currency", req.Currency,
			"generation", req.Generation,
			"error", err)
		return 0, wrapConversion(err)
	}

	rate, _ := v.(float64)
	if math.IsNaN(rate) || math.IsInf(rate, 0) || rate <= 0 {
		return 0, fmt.Errorf("%w: provider returned rate %v for %s", common.ErrConversionFailure, rate, req.Currency)
	}

	c.logger.Debug("Resolved exchange rate",
		"currency", req.Currency,
		"rate", rate,
		"shared", shared)
	return rate, nil
}

// Apply makes rate current if req is still the latest request. It reports
// whether the rate was applied.
func (c *Converter) Apply(req Request, rate float64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if req.Generation != c.latest {
		c.logger.Debug("Discarding stale exchange rate",
			"currency", req.Currency,
			"generation", req.Generation,
			"latest", c.latest)
		return false
	}

	c.quote = Quote{Currency: req.Currency, Rate: rate}
	c.pending = ""
	return true
}

// Fail clears the pending marker if req is still the latest request, leaving
// the previous quote in effect. It reports whether req was current.
func (c *Converter) Fail(req Request) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if req.Generation != c.latest {
		return false
	}
	c.pending = ""
	return true
}

// Select runs Request, Resolve and Apply synchronously.
func (c *Converter) Select(ctx context.Context, code string) (Quote, error) {
	req, done, err := c.Request(code)
	if err != nil {
		return c.Quote(), err
	}
	if done {
		return c.Quote(), nil
	}

	rate, err := c.Resolve(ctx, req)
	if err != nil {
		if !c.Fail(req) {
			return c.Quote(), fmt.Errorf("%w: %w", ErrSuperseded, err)
		}
		return c.Quote(), err
	}

	if !c.Apply(req, rate) {
		return c.Quote(), ErrSuperseded
	}
	return c.Quote(), nil
}

func wrapConversion(err error) error {
	if errors.Is(err, common.ErrConversionFailure) {
		return err
	}
	return fmt.Errorf("%w: %w", common.ErrConversionFailure, err)
}
