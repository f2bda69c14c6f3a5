package auth

import "strings"

// SellerRole is the role that unlocks seller features.
const SellerRole = "SELLER"

// DefaultRoleNamespace prefixes the custom role claim set by the identity
// provider.
const DefaultRoleNamespace = "https://giftshop.app"

// Claims is the loosely typed user object of a session.
type Claims map[string]any

// RoleExtractor is one named strategy for reading a role.
type RoleExtractor struct {
	Name    string
	Extract func(Claims) (string, bool)
}

// NamespacedClaim reads "<namespace>/role", accepting a string or the first
// entry of a list.
func NamespacedClaim(namespace string) RoleExtractor {
	key := strings.TrimRight(namespace, "/") + "/role"
	return RoleExtractor{
		Name:    "namespaced_claim",
		Extract: func(c Claims) (string, bool) { return stringClaim(c, key) },
	}
}

// FlatClaim reads the plain "role" claim.
func FlatClaim() RoleExtractor {
	return RoleExtractor{
		Name:    "flat_claim",
		Extract: func(c Claims) (string, bool) { return stringClaim(c, "role") },
	}
}

// ClaimExtractors returns the claim strategies in precedence order.
func ClaimExtractors(namespace string) []RoleExtractor {
	if namespace == "" {
		namespace = DefaultRoleNamespace
	}
	return []RoleExtractor{NamespacedClaim(namespace), FlatClaim()}
}

func stringClaim(c Claims, key string) (string, bool) {
	switch v := c[key].(type) {
	case string:
		v = strings.TrimSpace(v)
		return v, v != ""
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
				return strings.TrimSpace(s), true
			}
		}
	case []string:
		for _, s := range v {
			if strings.TrimSpace(s) != "" {
				return strings.TrimSpace(s), true
			}
		}
	}
	return "", false
}

// ResolveRole tries extractors in order and reports which one matched.
func ResolveRole(c Claims, extractors []RoleExtractor) (role, source string) {
	for _, ex := range extractors {
		if ex.Extract == nil {
			continue
		}
		if r, ok := ex.Extract(c); ok {
			return r, ex.Name
		}
	}
	return "", ""
}
