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

	"github.com/planwerk/cockpit-backend/internal/apperr"
)

func render(t *testing.T, err error) (*httptest.ResponseRecorder, ErrorEnvelope) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	rr := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rr)
	Error(c, err)

	var env ErrorEnvelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env))
	return rr, env
}

func TestError_Mapping(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{apperr.NotFound("plan version not found"), http.StatusNotFound, "not_found"},
		{apperr.Validation("file must be a PDF"), http.StatusBadRequest, "validation_error"},
		{apperr.Conflict("version number already exists"), http.StatusConflict, "conflict"},
		{apperr.Storage(errors.New("503"), "write"), http.StatusInternalServerError, "storage_error"},
		{apperr.Fatal("no current version"), http.StatusInternalServerError, "fatal_inconsistency"},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			rr, env := render(t, tt.err)
			assert.Equal(t, tt.status, rr.Code)
			assert.False(t, env.OK)
			assert.Equal(t, tt.code, env.Code)
			assert.Equal(t, tt.err.Error(), env.Error)
		})
	}
}

func TestError_InternalIsMasked(t *testing.T) {
	rr, env := render(t, errors.New("pq: password authentication failed"))
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, "internal_error", env.Code)
	assert.Equal(t, "internal error", env.Error)
}

func TestOKAndCreated(t *testing.T) {
	gin.SetMode(gin.TestMode)

	rr := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rr)
	Created(c, gin.H{"project": gin.H{"name": "Haus Berger"}})
	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.JSONEq(t, `{"ok":true,"project":{"name":"Haus Berger"}}`, rr.Body.String())

	rr = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(rr)
	OK(c, nil)
	assert.JSONEq(t, `{"ok":true}`, rr.Body.String())
}
