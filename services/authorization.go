package services

import (
	"fmt"

	"github.com/Kariqs/amexan-storefront/models"
	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
)

const roleAnonymous = "anonymous"

const rbacModel = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub) && keyMatch2(r.obj, p.obj) && regexMatch(r.act, p.act)
`

var defaultPolicies = [][]string{
	{models.RoleUser, "/user/*", "GET|PUT"},
	{models.RoleUser, "/order", "POST"},
	{models.RoleUser, "/order/*", "GET|POST"},
	{models.RoleAdmin, "/admin/*", "GET|PUT|DELETE"},
	{models.RoleAdmin, "/product", "POST"},
	{models.RoleAdmin, "/product/*", "POST|PUT|DELETE"},
}

var defaultRoles = [][]string{
	{models.RoleAdmin, models.RoleUser},
}

// Authorizer decides which role may call which route.
type Authorizer struct {
	enforcer *casbin.Enforcer
}

func NewAuthorizer() (*Authorizer, error) {
	m, err := model.NewModelFromString(rbacModel)
	if err != nil {
		return nil, fmt.Errorf("failed to load RBAC model: %w", err)
	}
	enforcer, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize RBAC enforcer: %w", err)
	}
	if _, err := enforcer.AddPolicies(defaultPolicies); err != nil {
		return nil, fmt.Errorf("failed to add policies: %w", err)
	}
	if _, err := enforcer.AddGroupingPolicies(defaultRoles); err != nil {
		return nil, fmt.Errorf("failed to add roles: %w", err)
	}
	return &Authorizer{enforcer: enforcer}, nil
}

// Allowed reports whether identity may call method on path. A nil identity
// is checked as anonymous.
func (a *Authorizer) Allowed(identity *Identity, path, method string) (bool, error) {
	role := roleAnonymous
	if identity != nil && identity.Role != "" {
		role = identity.Role
	}
	allowed, err := a.enforcer.Enforce(role, path, method)
	if err != nil {
		return false, fmt.Errorf("RBAC permission check failed: %w", err)
	}
	return allowed, nil
}
