package middleware

import (
	"boards-backend/internal/providers/core"
	"boards-backend/internal/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	permissionsKey = "permissions"
	authTokenKey   = "auth_token"
)

// Authenticate gates every request on the X-Auth-Token header and attaches
// the resolved permission decision to the context. The profile and general
// permission lookups run concurrently with the scoped manage-boards lookup.
// A failed profile lookup means the caller is unauthenticated; failures of
// the permission lookups are internal errors.
func Authenticate(client *core.Client, logger *zap.Logger) gin.HandlerFunc {
	log := logger.Sugar()

	return func(c *gin.Context) {
		token := c.GetHeader("X-Auth-Token")
		if token == "" {
			utils.RespondUnauthorized(c, "No auth token provided.")
			return
		}

		var (
			member    *core.Member
			memberErr error

			general    []core.Permission
			generalErr error

			manage    []core.BodyPermission
			manageErr error
		)

		// No shared cancellation: each lookup fails independently so a
		// permission failure cannot masquerade as an authentication one.
		var g errgroup.Group
		ctx := c.Request.Context()
		g.Go(func() error {
			member, memberErr = client.GetMyProfile(ctx, token)
			return memberErr
		})
		g.Go(func() error {
			general, generalErr = client.GetMyPermissions(ctx, token)
			return generalErr
		})
		g.Go(func() error {
			manage, manageErr = client.GetBoardManagePermissions(ctx, token)
			return manageErr
		})
		_ = g.Wait()

		if memberErr != nil {
			utils.RespondUnauthorized(c, "Error fetching user: user is not authenticated.")
			return
		}
		if generalErr != nil {
			log.Errorw("Permission lookup failed", "error", generalErr)
			utils.RespondInternalError(c)
			return
		}
		if manageErr != nil {
			log.Errorw("Scoped permission lookup failed", "error", manageErr)
			utils.RespondInternalError(c)
			return
		}

		c.Set(permissionsKey, core.ResolvePermissions(member, general, manage))
		c.Set(authTokenKey, token)
		c.Next()
	}
}

// GetPermissions returns the decision object attached by Authenticate.
func GetPermissions(c *gin.Context) *core.Permissions {
	if perms, ok := c.Get(permissionsKey); ok {
		return perms.(*core.Permissions)
	}
	return &core.Permissions{}
}

// GetToken returns the caller's auth token for onward identity lookups.
func GetToken(c *gin.Context) string {
	return c.GetString(authTokenKey)
}
