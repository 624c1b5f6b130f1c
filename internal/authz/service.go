// internal/authz/service.go
package authz

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/casbin/casbin/v3"
	"github.com/casbin/casbin/v3/model"
	"github.com/casbin/casbin/v3/util"
	gormadapter "github.com/casbin/gorm-adapter/v3"
	"gorm.io/gorm"
)

const (
	apiV1Prefix     = "/api/v1"
	casbinTableName = "casbin_rule"
	rolePrefix      = "role:"
)

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
m = (g(r.sub, p.sub) || r.sub == p.sub) && keyMatch2(r.obj, p.obj) && (r.act == p.act || p.act == "*")
`

// ErrInvalidPolicy is returned for a policy without a role or action
var ErrInvalidPolicy = errors.New("invalid policy")

// Policy grants an action on a route pattern
type Policy struct {
	Subject string `json:"subject"`
	Object  string `json:"object" binding:"required"`
	Action  string `json:"action" binding:"required"`
}

// Service authorizes staff roles against API routes. Policies live in the
// casbin_rule table.
type Service struct {
	enforcer *casbin.SyncedEnforcer
}

// NewService creates the authorization service and loads stored policies
func NewService(db *gorm.DB) (*Service, error) {
	if db == nil {
		return nil, fmt.Errorf("authz db is nil")
	}

	adapter, err := gormadapter.NewAdapterByDBUseTableName(db, "", casbinTableName)
	if err != nil {
		return nil, fmt.Errorf("failed to create authz adapter: %w", err)
	}

	m, err := model.NewModelFromString(rbacModel)
	if err != nil {
		return nil, fmt.Errorf("failed to load authz model: %w", err)
	}

	enforcer, err := casbin.NewSyncedEnforcer(m, adapter)
	if err != nil {
		return nil, fmt.Errorf("failed to init authz enforcer: %w", err)
	}
	enforcer.AddFunction("keyMatch2", util.KeyMatch2Func)
	enforcer.EnableAutoSave(true)

	if err := enforcer.LoadPolicy(); err != nil {
		return nil, fmt.Errorf("failed to load authz policy: %w", err)
	}

	return &Service{enforcer: enforcer}, nil
}

// Enforce reports whether a role may perform method on path
func (s *Service) Enforce(role, path, method string) (bool, error) {
	subject, err := NormalizeRole(role)
	if err != nil {
		return false, err
	}
	return s.enforcer.Enforce(subject, NormalizeObject(path), NormalizeAction(method))
}

// GrantRolePolicy grants a role an action on a route pattern
func (s *Service) GrantRolePolicy(role, object, action string) error {
	subject, err := NormalizeRole(role)
	if err != nil {
		return err
	}
	normalizedAction := NormalizeAction(action)
	if normalizedAction == "" {
		return fmt.Errorf("%w: action is required", ErrInvalidPolicy)
	}

	if _, err := s.enforcer.AddPolicy(subject, NormalizeObject(object), normalizedAction); err != nil {
		return fmt.Errorf("failed to grant policy: %w", err)
	}
	return nil
}

// RevokeRolePolicy removes a policy from a role
func (s *Service) RevokeRolePolicy(role, object, action string) error {
	subject, err := NormalizeRole(role)
	if err != nil {
		return err
	}

	if _, err := s.enforcer.RemovePolicy(subject, NormalizeObject(object), NormalizeAction(action)); err != nil {
		return fmt.Errorf("failed to revoke policy: %w", err)
	}
	return nil
}

// GetRolePolicies lists the policies of a role
func (s *Service) GetRolePolicies(role string) ([]Policy, error) {
	subject, err := NormalizeRole(role)
	if err != nil {
		return nil, err
	}

	rules, err := s.enforcer.GetFilteredPolicy(0, subject)
	if err != nil {
		return nil, fmt.Errorf("failed to get role policies: %w", err)
	}

	policies := make([]Policy, 0, len(rules))
	for _, rule := range rules {
		if len(rule) < 3 {
			continue
		}
		policies = append(policies, Policy{
			Subject: rule[0],
			Object:  rule[1],
			Action:  rule[2],
		})
	}
	sort.Slice(policies, func(i, j int) bool {
		if policies[i].Object == policies[j].Object {
			return policies[i].Action < policies[j].Action
		}
		return policies[i].Object < policies[j].Object
	})
	return policies, nil
}

// NormalizeRole maps a user role to its casbin subject
func NormalizeRole(role string) (string, error) {
	normalized := strings.TrimSpace(role)
	if normalized == "" {
		return "", fmt.Errorf("%w: role is required", ErrInvalidPolicy)
	}
	if !strings.HasPrefix(normalized, rolePrefix) {
		normalized = rolePrefix + normalized
	}
	if len(normalized) <= len(rolePrefix) {
		return "", fmt.Errorf("%w: role is required", ErrInvalidPolicy)
	}
	return normalized, nil
}

// NormalizeObject strips the API prefix from a route
func NormalizeObject(object string) string {
	normalized := strings.TrimSpace(object)
	if normalized == "" {
		return "/"
	}
	if !strings.HasPrefix(normalized, "/") {
		normalized = "/" + normalized
	}
	if strings.HasPrefix(normalized, apiV1Prefix+"/") {
		return strings.TrimPrefix(normalized, apiV1Prefix)
	}
	if normalized == apiV1Prefix {
		return "/"
	}
	return normalized
}

// NormalizeAction upper-cases an HTTP method
func NormalizeAction(action string) string {
	return strings.ToUpper(strings.TrimSpace(action))
}
