package health

import (
	"context"
	"testing"
)

func namedCheck(name string) Check {
	return NewCheckFunc(name, func(ctx context.Context) Result { return Healthy("") })
}

func TestRegistry_Register(t *testing.T) {
	r := NewRegistry()
	r.Register(namedCheck("a"))
	r.Register(namedCheck("b"))

	if r.Len() != 2 {
		t.Fatalf("expected 2 checks, got %d", r.Len())
	}
	if _, ok := r.Get("a"); !ok {
		t.Error("expected check 'a' to be registered")
	}
}

func TestRegistry_RegisterIdempotent(t *testing.T) {
	r := NewRegistry()
	first := namedCheck("a")
	second := namedCheck("a")
	r.Register(first)
	r.Register(second)

	if r.Len() != 1 {
		t.Fatalf("re-registering a name must not duplicate, got %d entries", r.Len())
	}
	got, _ := r.Get("a")
	if got != second {
		t.Error("re-registering should replace the check")
	}
	if names := r.Names(); len(names) != 1 || names[0] != "a" {
		t.Errorf("unexpected names: %v", names)
	}
}

func TestRegistry_Unregister(t *testing.T) {
	r := NewRegistry()
	r.Register(namedCheck("a"))
	r.Register(namedCheck("b"))
	r.Unregister("a")

	if r.Len() != 1 {
		t.Fatalf("expected 1 check after unregister, got %d", r.Len())
	}
	if _, ok := r.Get("a"); ok {
		t.Error("check 'a' should be gone")
	}
	// Unregistering a missing name is tolerated
	r.Unregister("missing")
}

func TestRegistry_OrderPreserved(t *testing.T) {
	r := NewRegistry()
	for _, name := range []string{"c", "a", "b"} {
		r.Register(namedCheck(name))
	}

	names := r.Names()
	want := []string{"c", "a", "b"}
	for i, name := range want {
		if names[i] != name {
			t.Fatalf("expected registration order %v, got %v", want, names)
		}
	}

	checks := r.All()
	if len(checks) != 3 || checks[0].Name() != "c" {
		t.Errorf("All() should follow registration order, got %d checks", len(checks))
	}
}

func TestRegistry_Reconcile(t *testing.T) {
	r := NewRegistry()
	r.Register(namedCheck("direct"))

	p := StaticProvider(namedCheck("p1"), namedCheck("p2"))
	r.Reconcile([]Provider{p})

	if r.Len() != 3 {
		t.Fatalf("expected direct + 2 provider checks, got %d", r.Len())
	}

	// Provider stops contributing p2
	shrunk := StaticProvider(namedCheck("p1"))
	r.Reconcile([]Provider{shrunk})

	if _, ok := r.Get("p2"); ok {
		t.Error("vanished provider check should be unregistered")
	}
	if _, ok := r.Get("direct"); !ok {
		t.Error("directly registered check must survive reconciliation")
	}
	if _, ok := r.Get("p1"); !ok {
		t.Error("still-contributed provider check must remain")
	}
}

func TestRegistry_ReconcileRepeatedProviderStable(t *testing.T) {
	r := NewRegistry()
	p := StaticProvider(namedCheck("x"))

	for i := 0; i < 5; i++ {
		r.Reconcile([]Provider{p})
	}
	if r.Len() != 1 {
		t.Errorf("repeated reconciliation must stay idempotent, got %d entries", r.Len())
	}
}
