package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"user-api/internal/domain"
)

func TestStatusOf(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{nil, http.StatusOK},
		{domain.Invalid([]domain.Violation{{Field: "x", Message: "bad"}}), http.StatusBadRequest},
		{domain.NotFound("nope"), http.StatusNotFound},
		{domain.EmptyCollection("none"), http.StatusNotFound},
		{domain.Conflict("dup"), http.StatusConflict},
		{domain.Unauthorized("no"), http.StatusUnauthorized},
		{domain.Forbidden("no"), http.StatusForbidden},
		{domain.Internal("boom", errors.New("db down")), http.StatusInternalServerError},
		{errors.New("plain"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, StatusOf(tc.err), "%v", tc.err)
	}
}

func failBody(t *testing.T, err error) (int, map[string]any) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	Fail(c, err)
	var m map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &m))
	return w.Code, m
}

func TestFail_Validation(t *testing.T) {
	code, m := failBody(t, domain.Invalid([]domain.Violation{
		{Field: "name", Message: "Name is required"},
		{Field: "email", Message: "Email is invalid"},
	}))
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Name is required, Email is invalid", m["message"])
	errs, ok := m["errors"].([]any)
	require.True(t, ok)
	assert.Len(t, errs, 2)
	_, hasData := m["data"]
	assert.False(t, hasData)
}

func TestFail_InternalHidesCause(t *testing.T) {
	code, m := failBody(t, domain.Internal("query users", errors.New("password=secret")))
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, MsgInternal, m["message"])
}

func TestFail_NotFoundKeepsMessage(t *testing.T) {
	code, m := failBody(t, domain.NotFound("User with ID 1 not found"))
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "User with ID 1 not found", m["message"])
	_, hasErrors := m["errors"]
	assert.False(t, hasErrors)
}
