package response

import (
	"net/http"

	"user-api/internal/domain"
)

// 固定文案
const (
	MsgInternal      = "internal error"
	MsgNoToken       = "Token not provided"
	MsgBadToken      = "Invalid token"
	MsgForbidden     = "Forbidden"
	MsgTooMany       = "too many requests"
	MsgBusy          = "server busy"
	MsgBodyTooLarge  = "request body too large"
	MsgTimeout       = "timeout"
	MsgBadJSON       = "Invalid JSON body"
	MsgRouteNotFound = "Not Found"
)

var kindStatus = map[domain.Kind]int{
	domain.KindValidation:      http.StatusBadRequest,
	domain.KindNotFound:        http.StatusNotFound,
	domain.KindConflict:        http.StatusConflict,
	domain.KindUnauthorized:    http.StatusUnauthorized,
	domain.KindForbidden:       http.StatusForbidden,
	domain.KindEmptyCollection: http.StatusNotFound,
	domain.KindInternal:        http.StatusInternalServerError,
}

// StatusOf 错误分类 → HTTP 状态，全项目只在这里映射
func StatusOf(err error) int {
	if err == nil {
		return http.StatusOK
	}
	if s, ok := kindStatus[domain.KindOf(err)]; ok {
		return s
	}
	return http.StatusInternalServerError
}
