package ez

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	mdw "user-api/internal/transport/http/middleware"
	resp "user-api/internal/transport/http/response"
)

type EZ struct{ g *gin.RouterGroup }

func New(g *gin.RouterGroup) EZ { return EZ{g: g} }

// 绑定方式
type Binder string

const (
	BindJSON Binder = "json" // JSON 对象 → map[string]any，由 DTO 校验
	BindNone Binder = "none" // 不绑定，自己从 c.Param 取
)

// Body 原始请求体，字段校验交给 feature 层的 Shape
type Body = map[string]any

// Action 一行注册一个接口：I 入参，O 出参
type Action[I any, O any] struct {
	Method  string
	Path    string
	Binder  Binder
	Status  int                         // 成功状态码，默认 200
	Message func(c *gin.Context) string // 成功文案
	Handler func(c *gin.Context, in *I) (O, error)
}

// Msg 固定文案
func Msg(s string) func(*gin.Context) string {
	return func(*gin.Context) string { return s }
}

// MsgParam 文案里带一个路径参数
func MsgParam(format, param string) func(*gin.Context) string {
	return func(c *gin.Context) string { return strings.ReplaceAll(format, "{}", c.Param(param)) }
}

func bind(c *gin.Context, b Binder, in any) error {
	if b != BindJSON {
		return nil
	}
	err := c.ShouldBindJSON(in)
	if errors.Is(err, io.EOF) {
		// 空 body 视为空对象，让 DTO 报缺字段
		return nil
	}
	return err
}

func Register[I any, O any](e EZ, a Action[I, O]) {
	status := a.Status
	if status == 0 {
		status = http.StatusOK
	}
	h := func(c *gin.Context) {
		var in I
		if err := bind(c, a.Binder, &in); err != nil {
			if mdw.TooLarge(err) {
				resp.Abort(c, http.StatusRequestEntityTooLarge, resp.MsgBodyTooLarge)
				return
			}
			resp.Abort(c, http.StatusBadRequest, resp.MsgBadJSON)
			return
		}
		out, err := a.Handler(c, &in)
		if err != nil {
			resp.Fail(c, err)
			return
		}
		msg := ""
		if a.Message != nil {
			msg = a.Message(c)
		}
		resp.JSON(c, status, msg, out)
	}

	switch strings.ToUpper(a.Method) {
	case http.MethodGet:
		e.g.GET(a.Path, h)
	case http.MethodPut:
		e.g.PUT(a.Path, h)
	case http.MethodDelete:
		e.g.DELETE(a.Path, h)
	default: // 默认 POST
		e.g.POST(a.Path, h)
	}
}
