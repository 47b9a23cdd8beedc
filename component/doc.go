// Package component defines the lifecycle contract for long-lived clients
// and a registry that starts them in order and stops them in reverse.
package component
