package rbac

import (
	"errors"
	"testing"

	"mdip/core/store"
)

func TestDomainRoleOwnsOnlyItsCollection(t *testing.T) {
	gate, err := NewGate()
	if err != nil {
		t.Fatalf("new gate: %v", err)
	}

	cases := []struct {
		role       string
		collection string
		want       bool
	}{
		{store.RoleCybersecurity, CollectionIncidents, true},
		{store.RoleCybersecurity, CollectionDatasets, false},
		{store.RoleCybersecurity, CollectionTickets, false},
		{store.RoleDatascience, CollectionDatasets, true},
		{store.RoleDatascience, CollectionIncidents, false},
		{store.RoleITOperations, CollectionTickets, true},
		{store.RoleITOperations, CollectionDatasets, false},
	}
	for _, tc := range cases {
		for _, act := range []string{ActionView, ActionManage, ActionAssist} {
			if got := gate.Allowed(tc.role, tc.collection, act); got != tc.want {
				t.Fatalf("%s %s %s: got %v, want %v", tc.role, tc.collection, act, got, tc.want)
			}
		}
	}
}

func TestAdminReachesEveryCollection(t *testing.T) {
	gate, err := NewGate()
	if err != nil {
		t.Fatalf("new gate: %v", err)
	}
	for _, collection := range []string{CollectionIncidents, CollectionDatasets, CollectionTickets} {
		for _, act := range []string{ActionView, ActionManage, ActionAssist} {
			if err := gate.Require(store.RoleAdmin, collection, act); err != nil {
				t.Fatalf("admin %s %s: %v", collection, act, err)
			}
		}
	}
}

func TestRequireReturnsForbidden(t *testing.T) {
	gate, err := NewGate()
	if err != nil {
		t.Fatalf("new gate: %v", err)
	}
	err = gate.Require(store.RoleDatascience, CollectionIncidents, ActionView)
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	// Unknown roles hold nothing.
	if gate.Allowed("visitor", CollectionIncidents, ActionView) {
		t.Fatal("unknown role should be denied")
	}
}

func TestCollectionForRole(t *testing.T) {
	if c, ok := CollectionForRole(store.RoleITOperations); !ok || c != CollectionTickets {
		t.Fatalf("it_operations: %q %v", c, ok)
	}
	if _, ok := CollectionForRole(store.RoleAdmin); ok {
		t.Fatal("admin owns no single collection")
	}
	if _, ok := CollectionForRole("visitor"); ok {
		t.Fatal("unknown role owns no collection")
	}
}
