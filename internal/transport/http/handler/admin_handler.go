package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"user-api/internal/domain"
	"user-api/internal/feature/user"
	"user-api/internal/service"
	"user-api/internal/transport/http/ez"
	mdw "user-api/internal/transport/http/middleware"
)

// AdminHandler 后台接口，分组已要求 admin 角色
type AdminHandler struct {
	svc *service.UserService
}

func NewAdminHandler(svc *service.UserService) *AdminHandler {
	return &AdminHandler{svc: svc}
}

type deletedOut struct {
	Deleted int64 `json:"deleted"`
}

func (h *AdminHandler) MountAdmin(g *gin.RouterGroup) {
	a := ez.New(g)

	ez.Register(a, ez.Action[struct{}, []domain.User]{
		Method:  http.MethodGet,
		Path:    "/users",
		Binder:  ez.BindNone,
		Message: ez.Msg("Users retrieved successfully"),
		Handler: func(c *gin.Context, _ *struct{}) ([]domain.User, error) {
			return h.svc.List(c.Request.Context())
		},
	})
	ez.Register(a, ez.Action[ez.Body, *domain.User]{
		Method:  http.MethodPut,
		Path:    "/users/id/:id/role",
		Binder:  ez.BindJSON,
		Message: ez.MsgParam("Role of user {} updated successfully", "id"),
		Handler: func(c *gin.Context, in *ez.Body) (*domain.User, error) {
			role, err := user.ParseRole(*in)
			if err != nil {
				return nil, err
			}
			return h.svc.SetRole(c.Request.Context(), mdw.UserID(c), c.Param("id"), role)
		},
	})
	ez.Register(a, ez.Action[struct{}, deletedOut]{
		Method:  http.MethodDelete,
		Path:    "/users/all",
		Binder:  ez.BindNone,
		Message: ez.Msg("All users deleted successfully"),
		Handler: func(c *gin.Context, _ *struct{}) (deletedOut, error) {
			n, err := h.svc.DeleteAll(c.Request.Context())
			return deletedOut{Deleted: n}, err
		},
	})
}
