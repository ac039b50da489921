package engine

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"time"
)

// AcceptFunc decides whether a fetched page is usable. A rejected page makes
// the dispatcher escalate to the next engine.
type AcceptFunc func(*FetchResult) bool

// Dispatcher tries engines one after another, cheapest first, and returns
// the first accepted result. Engines never run concurrently. The last
// engine's result is returned even if the accept check rejects it, unless
// an earlier engine failed outright: that failure is returned instead, so a
// navigation error is never masked by a page without cards.
type Dispatcher struct {
	engines []Engine
	accept  AcceptFunc
	memory  *DomainMemory
}

// NewDispatcher creates a Dispatcher. accept may be nil to accept every
// successful fetch.
func NewDispatcher(engines []Engine, accept AcceptFunc, memory *DomainMemory) *Dispatcher {
	if memory == nil {
		memory = NewDomainMemory(time.Hour)
	}
	return &Dispatcher{
		engines: engines,
		accept:  accept,
		memory:  memory,
	}
}

// Fetch runs the escalation chain for one page. If every engine fails, the
// last error is returned unchanged so callers can inspect it.
func (d *Dispatcher) Fetch(ctx context.Context, req *FetchRequest) (*FetchResult, error) {
	if len(d.engines) == 0 {
		return nil, fmt.Errorf("dispatcher: no engines configured")
	}
	domain := extractDomain(req.URL)
	engines := d.order(domain)

	var lastErr, fetchErr error
	for i, eng := range engines {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		last := i == len(engines)-1

		slog.Debug("engine starting", "engine", eng.Name(), "url", req.URL)
		result, err := eng.Fetch(ctx, req)
		if err != nil {
			slog.Debug("engine failed", "engine", eng.Name(), "url", req.URL, "error", err)
			if d.memory.Get(domain) == eng.Name() {
				d.memory.Delete(domain)
			}
			lastErr, fetchErr = err, err
			continue
		}
		if d.accept != nil && !d.accept(result) {
			if last && fetchErr != nil {
				slog.Info("fallback result rejected, reporting earlier failure",
					"engine", eng.Name(), "url", req.URL, "error", fetchErr,
				)
				return nil, fetchErr
			}
			if !last {
				slog.Info("engine result rejected, escalating", "engine", eng.Name(), "url", req.URL)
				if d.memory.Get(domain) == eng.Name() {
					d.memory.Delete(domain)
				}
				lastErr = fmt.Errorf("dispatcher: %s result rejected for %s", eng.Name(), req.URL)
				continue
			}
		}

		d.memory.Set(domain, eng.Name())
		return result, nil
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("dispatcher: all engines failed for %s", req.URL)
	}
	return nil, lastErr
}

// order returns the engines with the remembered winner for domain first.
func (d *Dispatcher) order(domain string) []Engine {
	remembered := d.memory.Get(domain)
	if remembered == "" {
		return d.engines
	}
	ordered := make([]Engine, 0, len(d.engines))
	for _, eng := range d.engines {
		if eng.Name() == remembered {
			ordered = append(ordered, eng)
		}
	}
	if len(ordered) == 0 {
		return d.engines
	}
	for _, eng := range d.engines {
		if eng.Name() != remembered {
			ordered = append(ordered, eng)
		}
	}
	return ordered
}

// extractDomain parses the hostname from a URL string.
func extractDomain(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	return u.Hostname()
}
