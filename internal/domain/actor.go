// Package domain contains the core forum entities, query parameters and the
// ports implemented by the infrastructure layer.
package domain

import (
	"slices"
	"strings"
)

// Built-in group names.
const (
	GroupGuests  = "guests"
	GroupMembers = "members"
	GroupAdmins  = "admins"
)

// Actor is the user on whose behalf a request is executed.
type Actor struct {
	ID       int64    `json:"id"`
	Username string   `json:"username"`
	Groups   []string `json:"groups"`
	IsAdmin  bool     `json:"is_admin"`

	// Token is forwarded to a remote API and never serialized.
	Token string `json:"-"`
}

// Guest returns the actor used for unauthenticated requests.
func Guest() *Actor {
	return &Actor{Groups: []string{GroupGuests}}
}

// IsGuest reports whether the actor is not logged in.
func (a *Actor) IsGuest() bool {
	return a == nil || a.ID == 0
}

// InAnyGroup reports whether the actor belongs to at least one of groups.
// Admins belong to every group.
func (a *Actor) InAnyGroup(groups []string) bool {
	if a == nil {
		return false
	}
	if a.IsAdmin {
		return true
	}
	for _, g := range groups {
		if slices.Contains(a.Groups, g) {
			return true
		}
		if g == GroupMembers && !a.IsGuest() {
			return true
		}
	}

	return false
}

// Scope returns a stable key describing everything that affects what the
// actor is allowed to see. Two actors with the same scope see the same tags.
func (a *Actor) Scope() string {
	if a == nil {
		return GroupGuests
	}
	if a.IsAdmin {
		return GroupAdmins
	}
	groups := slices.Clone(a.Groups)
	if !a.IsGuest() && !slices.Contains(groups, GroupMembers) {
		groups = append(groups, GroupMembers)
	}
	if len(groups) == 0 {
		return GroupGuests
	}
	slices.Sort(groups)

	return strings.Join(slices.Compact(groups), ",")
}
