package bridge

import (
	"context"
	"fmt"
	"sync"

	"github.com/kbukum/synchttp/component"
)

// Component manages a config-built client's lifecycle.
type Component struct {
	config Config
	opts   []Option

	mu     sync.RWMutex
	client *Client
}

var (
	_ component.Component   = (*Component)(nil)
	_ component.Describable = (*Component)(nil)
)

// NewComponent creates a component. The client is built in Start.
func NewComponent(cfg Config, opts ...Option) *Component {
	cfg.ApplyDefaults()
	return &Component{config: cfg, opts: opts}
}

// Name returns the transport name.
func (c *Component) Name() string {
	return c.config.Transport.Name
}

// Start builds the client.
func (c *Component) Start(_ context.Context) error {
	client, err := NewFromConfig(c.config, c.opts...)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.client = client
	c.mu.Unlock()
	return nil
}

// Stop closes the transport, waiting for in-flight calls.
func (c *Component) Stop(ctx context.Context) error {
	c.mu.RLock()
	client := c.client
	c.mu.RUnlock()
	if client == nil {
		return nil
	}
	return client.Close(ctx)
}

// Client returns the running client, or nil before Start.
func (c *Component) Client() *Client {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.client
}

type availability interface {
	Available() bool
}

// Health reports unhealthy before Start, after Stop, and while the
// circuit breaker is open.
func (c *Component) Health(_ context.Context) component.Health {
	h := component.Health{Name: c.Name(), Status: component.StatusHealthy}
	client := c.Client()
	if client == nil {
		h.Status, h.Message = component.StatusUnhealthy, "not started"
		return h
	}
	if a, ok := client.Transport().(availability); ok && !a.Available() {
		h.Status, h.Message = component.StatusUnhealthy, "transport unavailable"
	}
	return h
}

// Describe summarizes the client configuration.
func (c *Component) Describe() component.Description {
	t := c.config.Transport
	target := t.BaseURL
	if target == "" {
		target = "absolute URLs"
	}
	return component.Description{
		Name:    "HTTP Client",
		Type:    "http-client",
		Details: fmt.Sprintf("%s workers=%d timeout=%s", target, t.Workers, c.config.Timeout),
	}
}
