package http

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planwerk/cockpit-backend/internal/blobstore"
	"github.com/planwerk/cockpit-backend/internal/plans/domain"
	"github.com/planwerk/cockpit-backend/internal/plans/service"
	projdomain "github.com/planwerk/cockpit-backend/internal/projects/domain"
	"github.com/planwerk/cockpit-backend/internal/storage/memory"
)

var pdf = []byte("%PDF-1.7\n%plan\n")

type testEnv struct {
	router *gin.Engine
	store  *memory.Store
	blobs  *blobstore.MemoryStore
}

func setup(t *testing.T, opts ...func(*service.Deps, *Options)) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	env := &testEnv{store: memory.New(), blobs: blobstore.NewMemory()}
	d := service.Deps{
		Projects:      env.store.Projects(),
		Plans:         env.store.Plans(),
		Versions:      env.store.Versions(),
		Blobs:         env.blobs,
		PublicBaseURL: "https://cockpit.example.at",
	}
	var o Options
	for _, opt := range opts {
		opt(&d, &o)
	}

	h := New(service.NewRegistry(d), service.NewLedger(d), service.NewVerifier(d), service.NewQRRenderer(d), o)
	env.router = gin.New()
	h.RegisterCockpit(env.router.Group("/api/v1"))
	h.RegisterPublic(env.router.Group("/api/v1/public"))
	return env
}

func (e *testEnv) project(t *testing.T, number string) *projdomain.Project {
	t.Helper()
	p := &projdomain.Project{
		ID:            uuid.New(),
		ProjectNumber: number,
		Name:          "Haus Berger",
		Status:        projdomain.StatusInProgress,
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}
	require.NoError(t, e.store.Projects().Create(context.Background(), p))
	return p
}

func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr
}

func (e *testEnv) doJSON(method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return e.do(req)
}

func uploadRequest(t *testing.T, target, versionNumber, description, fileName string, data []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	require.NoError(t, w.WriteField("versionNumber", versionNumber))
	if description != "" {
		require.NoError(t, w.WriteField("description", description))
	}
	if fileName != "" {
		part, err := w.CreateFormFile("file", fileName)
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, target, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func (e *testEnv) plan(t *testing.T, projectID uuid.UUID, title string) domain.TrackedPlan {
	t.Helper()
	rr := e.doJSON(http.MethodPost, "/api/v1/projects/"+projectID.String()+"/tracked-plans", `{"title":"`+title+`"}`)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var body struct {
		Plan domain.TrackedPlan `json:"plan"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	return body.Plan
}

func (e *testEnv) upload(t *testing.T, planID uuid.UUID, n, desc string) domain.PlanVersion {
	t.Helper()
	rr := e.do(uploadRequest(t, "/api/v1/plans/"+planID.String()+"/versions", n, desc, "grundriss.pdf", pdf))
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var body struct {
		OK      bool               `json:"ok"`
		Version domain.PlanVersion `json:"version"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	require.True(t, body.OK)
	return body.Version
}

func errorCode(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var env struct {
		OK   bool   `json:"ok"`
		Code string `json:"code"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env), rr.Body.String())
	assert.False(t, env.OK)
	return env.Code
}

func TestPlansHandler_TrackedPlans(t *testing.T) {
	env := setup(t)
	p := env.project(t, "24-007")
	base := "/api/v1/projects/" + p.ID.String() + "/tracked-plans"

	plan := env.plan(t, p.ID, "Grundriss EG")
	assert.Equal(t, "Grundriss EG", plan.Title)

	rr := env.doJSON(http.MethodPost, base, `{"title":"Grundriss EG"}`)
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, "conflict", errorCode(t, rr))

	rr = env.doJSON(http.MethodPost, base, `{}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "validation_error", errorCode(t, rr))

	rr = env.doJSON(http.MethodPost, "/api/v1/projects/"+uuid.NewString()+"/tracked-plans", `{"title":"Lageplan"}`)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	env.upload(t, plan.ID, "1", "Erstversion")
	env.upload(t, plan.ID, "2", "nach Statikänderung")

	rr = env.doJSON(http.MethodGet, base, "")
	require.Equal(t, http.StatusOK, rr.Code)
	var list struct {
		Plans []domain.TrackedPlan `json:"plans"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &list))
	require.Len(t, list.Plans, 1)
	require.Len(t, list.Plans[0].Versions, 2)
	assert.Equal(t, 2, list.Plans[0].Versions[0].VersionNumber)

	rr = env.doJSON(http.MethodGet, "/api/v1/plans/"+plan.ID.String(), "")
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = env.doJSON(http.MethodGet, "/api/v1/plans?projectNumber=24-007&planTitle=Grundriss%20EG", "")
	assert.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = env.doJSON(http.MethodGet, "/api/v1/plans/"+uuid.NewString(), "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestPlansHandler_CreateVersion(t *testing.T) {
	env := setup(t)
	p := env.project(t, "24-007")
	plan := env.plan(t, p.ID, "Grundriss EG")
	target := "/api/v1/plans/" + plan.ID.String() + "/versions"

	v := env.upload(t, plan.ID, "1", "Erstversion")
	assert.Equal(t, 1, v.VersionNumber)
	assert.True(t, strings.HasPrefix(v.FilePath, "/Projekte/24-007/Pläne/Grundriss EG/V1/24-007_Grundriss EG_V1_"))
	require.NotNil(t, v.Description)
	assert.Equal(t, "Erstversion", *v.Description)

	tests := []struct {
		name     string
		req      *http.Request
		wantCode int
		wantKind string
	}{
		{"duplicate", uploadRequest(t, target, "1", "", "a.pdf", pdf), http.StatusConflict, "conflict"},
		{"not a number", uploadRequest(t, target, "eins", "", "a.pdf", pdf), http.StatusBadRequest, "validation_error"},
		{"zero", uploadRequest(t, target, "0", "", "a.pdf", pdf), http.StatusBadRequest, "validation_error"},
		{"above int4", uploadRequest(t, target, "3000000000", "", "a.pdf", pdf), http.StatusBadRequest, "validation_error"},
		{"not a pdf", uploadRequest(t, target, "2", "", "a.dwg", pdf), http.StatusBadRequest, "validation_error"},
		{"no file", uploadRequest(t, target, "2", "", "", nil), http.StatusBadRequest, "validation_error"},
		{"unknown plan", uploadRequest(t, "/api/v1/plans/"+uuid.NewString()+"/versions", "2", "", "a.pdf", pdf), http.StatusNotFound, "not_found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := env.do(tt.req)
			assert.Equal(t, tt.wantCode, rr.Code, rr.Body.String())
			assert.Equal(t, tt.wantKind, errorCode(t, rr))
		})
	}

	rr := env.doJSON(http.MethodPost, target, `{"versionNumber":2}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	files, err := env.blobs.List(context.Background(), "/")
	require.NoError(t, err)
	assert.Len(t, files, 1)
}

func TestPlansHandler_UploadTooLarge(t *testing.T) {
	env := setup(t, func(_ *service.Deps, o *Options) { o.MaxUploadBytes = 1024 })
	p := env.project(t, "24-007")
	plan := env.plan(t, p.ID, "Grundriss EG")

	big := append([]byte("%PDF"), bytes.Repeat([]byte("x"), 4096)...)
	rr := env.do(uploadRequest(t, "/api/v1/plans/"+plan.ID.String()+"/versions", "1", "", "a.pdf", big))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestPlansHandler_CurrentVersion(t *testing.T) {
	env := setup(t)
	p := env.project(t, "24-007")
	plan := env.plan(t, p.ID, "Grundriss EG")
	path := "/api/v1/plans/" + plan.ID.String() + "/versions/current"

	rr := env.doJSON(http.MethodGet, path, "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "no_current_version", errorCode(t, rr))

	env.upload(t, plan.ID, "1", "")
	env.upload(t, plan.ID, "5", "")
	env.upload(t, plan.ID, "3", "")

	rr = env.doJSON(http.MethodGet, path, "")
	require.Equal(t, http.StatusOK, rr.Code)
	var body struct {
		Version domain.PlanVersion `json:"version"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, 5, body.Version.VersionNumber)

	rr = env.doJSON(http.MethodGet, "/api/v1/plans/"+uuid.NewString()+"/versions/current", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "not_found", errorCode(t, rr))
}

func TestPlansHandler_EventsUnavailableWithoutRedis(t *testing.T) {
	env := setup(t)
	p := env.project(t, "24-007")
	plan := env.plan(t, p.ID, "Grundriss EG")

	rr := env.doJSON(http.MethodGet, "/api/v1/plans/"+plan.ID.String()+"/events", "")
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.Equal(t, "events_unavailable", errorCode(t, rr))
}
