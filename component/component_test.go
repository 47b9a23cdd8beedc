package component

import (
	"context"
	"fmt"
	"strings"
	"testing"
)

type mockComponent struct {
	name     string
	startErr error
	stopErr  error
	health   Health
	order    *[]string
}

func (m *mockComponent) Name() string { return m.name }

func (m *mockComponent) Start(context.Context) error {
	if m.order != nil {
		*m.order = append(*m.order, "start:"+m.name)
	}
	return m.startErr
}

func (m *mockComponent) Stop(context.Context) error {
	if m.order != nil {
		*m.order = append(*m.order, "stop:"+m.name)
	}
	return m.stopErr
}

func (m *mockComponent) Health(context.Context) Health { return m.health }

func (m *mockComponent) Describe() Description {
	return Description{Type: "mock", Details: m.name}
}

func TestRegistry_RegisterDuplicate(t *testing.T) {
	r := NewRegistry(nil)
	if err := r.Register(&mockComponent{name: "api"}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := r.Register(&mockComponent{name: "api"}); err == nil {
		t.Error("expected error for duplicate registration")
	}
	if r.Get("api") == nil || r.Get("missing") != nil {
		t.Error("Get returned unexpected result")
	}
}

func TestRegistry_StartStopOrder(t *testing.T) {
	var order []string
	r := NewRegistry(nil)
	for _, name := range []string{"a", "b", "c"} {
		_ = r.Register(&mockComponent{name: name, order: &order})
	}

	ctx := context.Background()
	if err := r.StartAll(ctx); err != nil {
		t.Fatalf("StartAll: %v", err)
	}
	if err := r.StopAll(ctx); err != nil {
		t.Fatalf("StopAll: %v", err)
	}

	want := "[start:a start:b start:c stop:c stop:b stop:a]"
	if got := fmt.Sprint(order); got != want {
		t.Errorf("order = %s, want %s", got, want)
	}
}

func TestRegistry_StartFailureStopsOnlyStarted(t *testing.T) {
	var order []string
	r := NewRegistry(nil)
	_ = r.Register(&mockComponent{name: "a", order: &order})
	_ = r.Register(&mockComponent{name: "b", order: &order, startErr: fmt.Errorf("boom")})
	_ = r.Register(&mockComponent{name: "c", order: &order})

	ctx := context.Background()
	if err := r.StartAll(ctx); err == nil || !strings.Contains(err.Error(), "start b") {
		t.Fatalf("unexpected StartAll error: %v", err)
	}
	_ = r.StopAll(ctx)

	want := "[start:a start:b stop:a]"
	if got := fmt.Sprint(order); got != want {
		t.Errorf("order = %s, want %s", got, want)
	}
}

func TestRegistry_StopErrorsCollected(t *testing.T) {
	r := NewRegistry(nil)
	_ = r.Register(&mockComponent{name: "a", stopErr: fmt.Errorf("stuck")})
	_ = r.Register(&mockComponent{name: "b"})

	ctx := context.Background()
	_ = r.StartAll(ctx)
	if err := r.StopAll(ctx); err == nil || !strings.Contains(err.Error(), "stop a") {
		t.Errorf("unexpected StopAll error: %v", err)
	}
}

func TestRegistry_HealthAll(t *testing.T) {
	r := NewRegistry(nil)
	_ = r.Register(&mockComponent{name: "a", health: Health{Name: "a", Status: StatusHealthy}})
	_ = r.Register(&mockComponent{name: "b", health: Health{Name: "b", Status: StatusUnhealthy, Message: "closed"}})

	got := r.HealthAll(context.Background())
	if len(got) != 2 || got[0].Status != StatusHealthy || got[1].Status != StatusUnhealthy {
		t.Errorf("HealthAll() = %+v", got)
	}
}
