// internal/authz/bootstrap.go
package authz

import "fmt"

// RoleSeed is a built-in role and its default policies
type RoleSeed struct {
	Role     string
	Policies []Policy
}

// BuiltinRoleSeeds returns the default policy matrix. Admins may call every
// route; representatives work the counter: carts, customers, their orders.
func BuiltinRoleSeeds() []RoleSeed {
	return []RoleSeed{
		{
			Role: "admin",
			Policies: []Policy{
				{Object: "/*", Action: "*"},
			},
		},
		{
			Role: "representative",
			Policies: []Policy{
				{Object: "/auth/*", Action: "*"},
				{Object: "/dashboard", Action: "GET"},
				{Object: "/cart", Action: "*"},
				{Object: "/cart/*", Action: "*"},
				{Object: "/products", Action: "GET"},
				{Object: "/products/:id", Action: "GET"},
				{Object: "/categories", Action: "GET"},
				{Object: "/categories/:id", Action: "GET"},
				{Object: "/stock", Action: "GET"},
				{Object: "/stock/low", Action: "GET"},
				{Object: "/stock/pack-sizes/:packSizeId", Action: "GET"},
				{Object: "/customers", Action: "GET"},
				{Object: "/customers", Action: "POST"},
				{Object: "/customers/:id", Action: "GET"},
				{Object: "/customers/:id", Action: "PUT"},
				{Object: "/orders", Action: "GET"},
				{Object: "/orders", Action: "POST"},
				{Object: "/orders/statuses", Action: "GET"},
				{Object: "/orders/number/:number", Action: "GET"},
				{Object: "/orders/:id", Action: "GET"},
				{Object: "/orders/:id/cancel", Action: "POST"},
				{Object: "/orders/:id/invoice", Action: "GET"},
				{Object: "/orders/:id/invoice/data", Action: "GET"},
				{Object: "/orders/:id/invoice/email", Action: "POST"},
			},
		},
	}
}

// BootstrapBuiltinRoles adds the default policies that are missing. Policies
// granted later through the API are kept.
func (s *Service) BootstrapBuiltinRoles() error {
	for _, seed := range BuiltinRoleSeeds() {
		for _, policy := range seed.Policies {
			if err := s.GrantRolePolicy(seed.Role, policy.Object, policy.Action); err != nil {
				return fmt.Errorf("failed to seed %s policies: %w", seed.Role, err)
			}
		}
	}
	return nil
}
