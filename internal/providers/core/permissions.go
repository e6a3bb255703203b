package core

import "strings"

// ManageBoards is the board-management grant: either global, or held for a
// specific set of bodies.
type ManageBoards struct {
	Global  bool
	PerBody map[int64]bool
}

// For reports whether boards of the given body may be managed.
func (m ManageBoards) For(bodyID int64) bool {
	return m.Global || m.PerBody[bodyID]
}

// Permissions is the per-request decision object attached by the auth
// middleware.
type Permissions struct {
	ViewBoard    bool
	ManageBoards ManageBoards
}

func hasPermission(permissions []Permission, combined string) bool {
	for _, p := range permissions {
		if strings.HasSuffix(p.Combined, combined) {
			return true
		}
	}
	return false
}

func bodiesFromPermissions(permissions []BodyPermission) map[int64]bool {
	bodies := make(map[int64]bool, len(permissions))
	for _, p := range permissions {
		if p.BodyID != 0 {
			bodies[p.BodyID] = true
		}
	}
	return bodies
}

// ResolvePermissions combines the caller's profile, general grants and the
// scoped manage-boards lookup into a decision object. Every body listed on
// the profile gets an explicit per-body entry.
func ResolvePermissions(member *Member, general []Permission, manage []BodyPermission) *Permissions {
	perms := &Permissions{
		ViewBoard: hasPermission(general, "view:board"),
		ManageBoards: ManageBoards{
			Global:  hasPermission(general, "global:manage_network:boards"),
			PerBody: make(map[int64]bool),
		},
	}

	granted := bodiesFromPermissions(manage)
	if member != nil {
		for _, body := range member.Bodies {
			perms.ManageBoards.PerBody[body.ID] = granted[body.ID]
		}
	}

	return perms
}
