package resilience

import (
	"context"
	"errors"
	"sync"
	"time"
)

// Common pool errors.
var (
	ErrPoolFull    = errors.New("worker pool is full")
	ErrPoolTimeout = errors.New("worker pool wait timeout")
	ErrPoolClosed  = errors.New("worker pool is closed")
)

// PoolConfig configures a worker pool.
type PoolConfig struct {
	// Name identifies this pool for logging.
	Name string
	// Workers is the maximum number of functions running at once.
	Workers int
	// MaxWait is how long Run waits for a free worker. 0 means fail immediately.
	MaxWait time.Duration
	// OnReject is called when Run cannot obtain a worker.
	OnReject func(name string, err error)
}

// DefaultPoolConfig returns sensible defaults.
func DefaultPoolConfig(name string) PoolConfig {
	return PoolConfig{
		Name:    name,
		Workers: 16,
		MaxWait: 30 * time.Second,
	}
}

// Pool bounds the number of concurrently running functions. Run blocks the
// calling goroutine until a worker slot is free, so callers that must not
// block start Run on their own goroutine.
type Pool struct {
	config PoolConfig
	sem    chan struct{}

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// NewPool creates a worker pool.
func NewPool(config PoolConfig) *Pool {
	if config.Workers <= 0 {
		config.Workers = 16
	}
	return &Pool{
		config: config,
		sem:    make(chan struct{}, config.Workers),
	}
}

// Run executes fn once a worker slot is free. It returns ErrPoolClosed,
// ErrPoolFull, ErrPoolTimeout or ctx.Err() without running fn when no slot
// could be obtained.
func (p *Pool) Run(ctx context.Context, fn func()) error {
	p.mu.RLock()
	if p.closed {
		p.mu.RUnlock()
		return p.reject(ErrPoolClosed)
	}
	p.wg.Add(1)
	p.mu.RUnlock()
	defer p.wg.Done()

	if err := p.acquire(ctx); err != nil {
		return p.reject(err)
	}
	defer func() { <-p.sem }()

	fn()
	return nil
}

// Close stops accepting work and waits for running and queued functions to
// finish, or for ctx to end.
func (p *Pool) Close(ctx context.Context) error {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Closed reports whether Close has been called.
func (p *Pool) Closed() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.closed
}

// InUse returns the number of busy workers.
func (p *Pool) InUse() int {
	return len(p.sem)
}

// Workers returns the pool size.
func (p *Pool) Workers() int {
	return p.config.Workers
}

func (p *Pool) acquire(ctx context.Context) error {
	select {
	case p.sem <- struct{}{}:
		return nil
	default:
	}

	if p.config.MaxWait <= 0 {
		return ErrPoolFull
	}

	timer := time.NewTimer(p.config.MaxWait)
	defer timer.Stop()

	select {
	case p.sem <- struct{}{}:
		return nil
	case <-timer.C:
		return ErrPoolTimeout
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *Pool) reject(err error) error {
	if p.config.OnReject != nil {
		p.config.OnReject(p.config.Name, err)
	}
	return err
}
