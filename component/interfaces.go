package component

import "context"

// HealthStatus represents the health state of a component.
type HealthStatus string

const (
	StatusHealthy   HealthStatus = "healthy"
	StatusUnhealthy HealthStatus = "unhealthy"
	StatusDegraded  HealthStatus = "degraded"
)

// Health holds health information for a component.
type Health struct {
	Name    string       `json:"name"`
	Status  HealthStatus `json:"status"`
	Message string       `json:"message,omitempty"`
}

// Component is a lifecycle-managed client.
type Component interface {
	// Name returns the unique name of the component.
	Name() string
	// Start initializes the component.
	Start(ctx context.Context) error
	// Stop shuts the component down and releases its resources.
	Stop(ctx context.Context) error
	// Health reports the current health of the component.
	Health(ctx context.Context) Health
}

// Description is a one-line summary of a component.
type Description struct {
	// Name is the display name; empty means Name().
	Name string
	// Type categorizes the component, e.g. "http-client".
	Type string
	// Details is shown next to the name, e.g. "https://api.example.com workers=16".
	Details string
}

// Describable is optionally implemented by components that summarize
// their configuration.
type Describable interface {
	Describe() Description
}
