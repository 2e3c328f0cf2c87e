package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"user-api/internal/domain"
	"user-api/internal/feature/user"
	"user-api/internal/service"
	"user-api/internal/transport/http/ez"
	mdw "user-api/internal/transport/http/middleware"
	"user-api/internal/transport/http/router"
)

type UserHandler struct {
	svc *service.UserService
}

func NewUserHandler(svc *service.UserService) *UserHandler {
	return &UserHandler{svc: svc}
}

type tokenOut struct {
	Token string `json:"token"`
}

// MountAPI 公共组：注册/登录；受保护组：查询/修改/删除
func (h *UserHandler) MountAPI(g router.Groups) {
	pub := ez.New(g.Public.Group("/users"))
	prot := ez.New(g.Protected.Group("/users"))

	ez.Register(pub, ez.Action[ez.Body, *domain.User]{
		Method:  http.MethodPost,
		Path:    "/register",
		Binder:  ez.BindJSON,
		Status:  http.StatusCreated,
		Message: ez.Msg("User created successfully"),
		Handler: func(c *gin.Context, in *ez.Body) (*domain.User, error) {
			ri, err := user.ParseRegister(*in)
			if err != nil {
				return nil, err
			}
			return h.svc.Register(c.Request.Context(), mdw.UserID(c), ri)
		},
	})
	ez.Register(pub, ez.Action[ez.Body, tokenOut]{
		Method:  http.MethodPost,
		Path:    "/login",
		Binder:  ez.BindJSON,
		Message: ez.Msg("Login successful"),
		Handler: func(c *gin.Context, in *ez.Body) (tokenOut, error) {
			li, err := user.ParseLogin(*in)
			if err != nil {
				return tokenOut{}, err
			}
			tok, err := h.svc.Login(c.Request.Context(), li)
			return tokenOut{Token: tok}, err
		},
	})

	ez.Register(prot, ez.Action[struct{}, []domain.User]{
		Method:  http.MethodGet,
		Path:    "",
		Binder:  ez.BindNone,
		Message: ez.Msg("Users retrieved successfully"),
		Handler: func(c *gin.Context, _ *struct{}) ([]domain.User, error) {
			return h.svc.List(c.Request.Context())
		},
	})
	ez.Register(prot, ez.Action[struct{}, *domain.User]{
		Method:  http.MethodGet,
		Path:    "/id/:id",
		Binder:  ez.BindNone,
		Message: ez.Msg("User retrieved successfully"),
		Handler: func(c *gin.Context, _ *struct{}) (*domain.User, error) {
			return h.svc.FindByID(c.Request.Context(), c.Param("id"))
		},
	})
	ez.Register(prot, ez.Action[struct{}, *domain.User]{
		Method:  http.MethodGet,
		Path:    "/username/:username",
		Binder:  ez.BindNone,
		Message: ez.MsgParam("Username {} retrieved successfully", "username"),
		Handler: func(c *gin.Context, _ *struct{}) (*domain.User, error) {
			return h.svc.FindByEmail(c.Request.Context(), c.Param("username"))
		},
	})

	ez.Register(prot, ez.Action[ez.Body, *domain.User]{
		Method:  http.MethodPut,
		Path:    "/id/:id",
		Binder:  ez.BindJSON,
		Message: ez.MsgParam("User with ID {} updated successfully", "id"),
		Handler: func(c *gin.Context, in *ez.Body) (*domain.User, error) {
			ui, err := user.ParseUpdate(*in)
			if err != nil {
				return nil, err
			}
			return h.svc.UpdateByID(c.Request.Context(), mdw.UserID(c), c.Param("id"), ui)
		},
	})
	ez.Register(prot, ez.Action[ez.Body, *domain.User]{
		Method:  http.MethodPut,
		Path:    "/username/:username",
		Binder:  ez.BindJSON,
		Message: ez.MsgParam("User {} updated successfully", "username"),
		Handler: func(c *gin.Context, in *ez.Body) (*domain.User, error) {
			ui, err := user.ParseUpdate(*in)
			if err != nil {
				return nil, err
			}
			return h.svc.UpdateByEmail(c.Request.Context(), mdw.UserID(c), c.Param("username"), ui)
		},
	})

	ez.Register(prot, ez.Action[struct{}, any]{
		Method:  http.MethodDelete,
		Path:    "/all",
		Binder:  ez.BindNone,
		Message: ez.Msg("All users deleted successfully"),
		Handler: func(c *gin.Context, _ *struct{}) (any, error) {
			_, err := h.svc.DeleteAll(c.Request.Context())
			return nil, err
		},
	})
	ez.Register(prot, ez.Action[struct{}, any]{
		Method:  http.MethodDelete,
		Path:    "/id/:id",
		Binder:  ez.BindNone,
		Message: ez.MsgParam("User with ID {} deleted successfully", "id"),
		Handler: func(c *gin.Context, _ *struct{}) (any, error) {
			return nil, h.svc.DeleteByID(c.Request.Context(), c.Param("id"))
		},
	})
	ez.Register(prot, ez.Action[struct{}, any]{
		Method:  http.MethodDelete,
		Path:    "/username/:username",
		Binder:  ez.BindNone,
		Message: ez.MsgParam("Username {} deleted successfully", "username"),
		Handler: func(c *gin.Context, _ *struct{}) (any, error) {
			return nil, h.svc.DeleteByEmail(c.Request.Context(), c.Param("username"))
		},
	})
}
