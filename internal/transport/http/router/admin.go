package router

import (
	"github.com/gin-gonic/gin"

	"user-api/internal/domain"
	mdw "user-api/internal/transport/http/middleware"
)

func NewAdminEngine(d Deps) *gin.Engine {
	r := newEngine(d)

	// 管理端 v1（统一要求 admin 角色）
	admin := r.Group("/admin/v1",
		mdw.AuthJWT(d.Tokens, true),
		mdw.RequireRole(d.RoleOf, domain.RoleAdmin),
	)
	d.Registry.MountAllAdmin(admin)
	return r
}
