package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"user-api/internal/core/auth"
	"user-api/internal/domain"
	resp "user-api/internal/transport/http/response"
)

const (
	KeyClaims = "claims"
	KeyUserID = "userId"
)

type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

// bearer 支持 "Bearer xxx" 和裸 token
func bearer(c *gin.Context) string {
	ah := strings.TrimSpace(c.GetHeader("Authorization"))
	if len(ah) > 7 && strings.EqualFold(ah[:7], "Bearer ") {
		return strings.TrimSpace(ah[7:])
	}
	return ah
}

// AuthJWT 校验 token 并写入 claims / userId；required=false 时无 token 直接放行
func AuthJWT(j TokenVerifier, required bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		tok := bearer(c)
		if tok == "" {
			if required {
				resp.Abort(c, http.StatusUnauthorized, resp.MsgNoToken)
				return
			}
			c.Next()
			return
		}
		claims, err := j.Verify(tok)
		if err != nil {
			resp.Abort(c, http.StatusUnauthorized, resp.MsgBadToken)
			return
		}
		c.Set(KeyClaims, claims)
		c.Set(KeyUserID, claims.UserID())
		c.Next()
	}
}

// UserID 当前请求的调用者，未登录为空
func UserID(c *gin.Context) string { return c.GetString(KeyUserID) }

type RoleLookup func(ctx context.Context, id string) (domain.Role, error)

// RequireRole 必须挂在 AuthJWT 之后；角色按库里的当前值判断
func RequireRole(lookup RoleLookup, role domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := UserID(c)
		if id == "" {
			resp.Abort(c, http.StatusUnauthorized, resp.MsgNoToken)
			return
		}
		got, err := lookup(c.Request.Context(), id)
		if errors.Is(err, domain.ErrNotFound) {
			resp.Abort(c, http.StatusForbidden, resp.MsgForbidden)
			return
		}
		if err != nil {
			resp.Fail(c, err)
			return
		}
		if got != role {
			resp.Abort(c, http.StatusForbidden, resp.MsgForbidden)
			return
		}
		c.Next()
	}
}
