package auth

import (
	"strings"

	"ctfboard/internal/model"
)

// RolePolicy assigns roles from a username allow-list.
// This is a demo mechanism: any client can log in under an allow-listed name.
type RolePolicy struct {
	admins map[string]struct{}
}

// NewRolePolicy builds a policy granting admin to the given usernames (case-insensitive).
func NewRolePolicy(adminUsernames []string) *RolePolicy {
	admins := make(map[string]struct{}, len(adminUsernames))
	for _, name := range adminUsernames {
		if name = strings.ToLower(strings.TrimSpace(name)); name != "" {
			admins[name] = struct{}{}
		}
	}
	return &RolePolicy{admins: admins}
}

// RoleFor returns the role a username receives at login.
func (p *RolePolicy) RoleFor(username string) model.Role {
	if _, ok := p.admins[strings.ToLower(strings.TrimSpace(username))]; ok {
		return model.RoleAdmin
	}
	return model.RoleUser
}
