package engine

import (
	"context"
	"log/slog"
	"sync"

	"github.com/thirdwheel/companion-backend/pkg/logger"
)

// BuildFunc assembles a fresh engine, opening the context store.
type BuildFunc func(ctx context.Context) (*Engine, error)

// Provider hands out a process-wide engine, built lazily on first use and
// reused until Invalidate. Build failures are not cached; the next request
// retries.
type Provider struct {
	build BuildFunc

	mu     sync.Mutex
	engine *Engine
}

func NewProvider(build BuildFunc) *Provider {
	return &Provider{build: build}
}

func (p *Provider) Engine(ctx context.Context) (*Engine, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.engine != nil {
		return p.engine, nil
	}

	engine, err := p.build(ctx)
	if err != nil {
		return nil, err
	}
	p.engine = engine
	return engine, nil
}

// Invalidate discards the cached engine so the next request rebuilds it.
// Called when the index artifacts change on disk.
func (p *Provider) Invalidate() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.engine == nil {
		return
	}
	if err := p.engine.Close(); err != nil {
		slog.Error("closing invalidated engine", logger.Err(err))
	}
	p.engine = nil
}
