package rbac

import (
	"errors"
	"fmt"

	"mdip/core/store"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
)

var ErrForbidden = errors.New("forbidden")

// Collections a role can own. Admin reaches all of them through grouping
// policies rather than a wildcard, so the matcher stays trivial.
const (
	CollectionIncidents = "incidents"
	CollectionDatasets  = "datasets"
	CollectionTickets   = "tickets"
)

// Actions over a collection.
const (
	ActionView   = "view"
	ActionManage = "manage"
	ActionAssist = "assist"
)

const modelText = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub) && r.obj == p.obj && r.act == p.act
`

// Gate answers "may role X do action Y on collection Z". The policy set is
// fixed at startup; there is no runtime policy editing surface.
type Gate struct {
	enforcer *casbin.Enforcer
}

func NewGate() (*Gate, error) {
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, err
	}
	e, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, err
	}
	ownership := map[string]string{
		store.RoleCybersecurity: CollectionIncidents,
		store.RoleDatascience:   CollectionDatasets,
		store.RoleITOperations:  CollectionTickets,
	}
	for role, collection := range ownership {
		for _, act := range []string{ActionView, ActionManage, ActionAssist} {
			if _, err := e.AddPolicy(role, collection, act); err != nil {
				return nil, err
			}
		}
		// Admin inherits every domain role.
		if _, err := e.AddGroupingPolicy(store.RoleAdmin, role); err != nil {
			return nil, err
		}
	}
	return &Gate{enforcer: e}, nil
}

// Require returns ErrForbidden unless the role may perform the action on the
// collection.
func (g *Gate) Require(role, collection, action string) error {
	ok, err := g.enforcer.Enforce(role, collection, action)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: role %s may not %s %s", ErrForbidden, role, action, collection)
	}
	return nil
}

func (g *Gate) Allowed(role, collection, action string) bool {
	ok, _ := g.enforcer.Enforce(role, collection, action)
	return ok
}

// CollectionForRole returns the single collection a domain role owns; admin
// and unknown roles own none.
func CollectionForRole(role string) (string, bool) {
	switch role {
	case store.RoleCybersecurity:
		return CollectionIncidents, true
	case store.RoleDatascience:
		return CollectionDatasets, true
	case store.RoleITOperations:
		return CollectionTickets, true
	}
	return "", false
}
