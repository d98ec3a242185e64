package models

import "strings"

// Principal is the authenticated user behind a request. Identity is issued
// by the external identity provider; the gateway only reads its claims.
type Principal struct {
	UserID string   `json:"user_id"`
	Email  string   `json:"email,omitempty"`
	Name   string   `json:"name,omitempty"`
	Scopes []string `json:"scopes,omitempty"`
}

// HasScope checks if the principal holds a scope.
// Supports wildcard scopes like "catalog:*"
func (p *Principal) HasScope(required string) bool {
	if p == nil {
		return false
	}

	for _, scope := range p.Scopes {
		if scope == required || scope == "*" {
			return true
		}

		// "catalog:*" matches "catalog:refresh"
		if strings.HasSuffix(scope, ":*") {
			prefix := strings.TrimSuffix(scope, "*")
			if strings.HasPrefix(required, prefix) {
				return true
			}
		}
	}

	return false
}

// MaskedUserID returns a shortened user id for logging
func (p *Principal) MaskedUserID() string {
	if len(p.UserID) < 8 {
		return p.UserID
	}
	return p.UserID[:8] + "..."
}
