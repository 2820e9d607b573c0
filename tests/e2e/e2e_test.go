package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"casehub/internal/database"
	"casehub/internal/domain/access"
	"casehub/internal/domain/audit"
	"casehub/internal/domain/auth"
	"casehub/internal/domain/cases"
	"casehub/internal/domain/extmap"
	"casehub/internal/domain/files"
	"casehub/internal/middleware"
	jwtsvc "casehub/internal/pkg/jwt"
	"casehub/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type testSuite struct {
	router *gin.Engine
	db     *gorm.DB
	store  *fakeStore
}

// fakeStore stands in for S3 so the whole API flow runs against sqlite only.
type fakeStore struct {
	nextID    int
	created   map[string]string
	completed map[string][]storage.CompletedPart
}

func (f *fakeStore) CreateMultipartUpload(_ context.Context, key, _ string) (string, error) {
	f.nextID++
	uploadID := fmt.Sprintf("upload-%d", f.nextID)
	f.created[uploadID] = key
	return uploadID, nil
}

func (f *fakeStore) PresignUploadPart(key, uploadID string, partNumber int64) (string, error) {
	return fmt.Sprintf("https://storage.test/%s?uploadId=%s&partNumber=%d&sig=abc", key, uploadID, partNumber), nil
}

func (f *fakeStore) CompleteMultipartUpload(_ context.Context, _, uploadID string, parts []storage.CompletedPart) error {
	f.completed[uploadID] = parts
	return nil
}

func (f *fakeStore) AbortMultipartUpload(_ context.Context, _, _ string) error { return nil }

func (f *fakeStore) PresignDownload(key string) (string, error) {
	return fmt.Sprintf("https://storage.test/%s?sig=read&expires=300", key), nil
}

func (f *fakeStore) ObjectURL(key string) string {
	return "https://bucket.s3.amazonaws.com/" + key
}

func setupSuite(t *testing.T) *testSuite {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.Connect(fmt.Sprintf("file:e2e_%s?mode=memory&cache=shared", t.Name()))
	require.NoError(t, err, "Failed to connect to test database")

	require.NoError(t, db.AutoMigrate(
		&auth.User{},
		&cases.Case{},
		&access.Grant{},
		&files.File{},
		&files.UploadSession{},
		&extmap.Mapping{},
		&audit.Entry{},
	))

	store := &fakeStore{
		created:   map[string]string{},
		completed: map[string][]storage.CompletedPart{},
	}

	j := jwtsvc.New("e2e-secret", time.Hour)
	auditRec := audit.NewRecorder(db)
	accessService := access.NewService(db, auditRec)

	authHandler := auth.NewHandler(auth.NewService(auth.NewRepository(db), j))
	caseHandler := cases.NewHandler(cases.NewService(db, auditRec))
	accessHandler := access.NewHandler(accessService)
	mappingHandler := extmap.NewHandler(extmap.NewService(db, accessService, auditRec))
	fileHandler := files.NewHandler(files.NewService(db, store, accessService, auditRec, time.Hour))

	r := gin.New()
	v1 := r.Group("/api/v1")
	auth.RegisterRoutes(v1, authHandler)
	protected := v1.Group("/")
	protected.Use(middleware.JWTAuth(j))
	cases.RegisterRoutes(protected, caseHandler)
	access.RegisterRoutes(protected, accessHandler)
	extmap.RegisterRoutes(protected, mappingHandler)
	files.RegisterRoutes(protected, fileHandler)

	return &testSuite{router: r, db: db, store: store}
}

func (s *testSuite) do(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body == nil {
		reader = bytes.NewReader(nil)
	} else {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rr := httptest.NewRecorder()
	s.router.ServeHTTP(rr, req)
	return rr
}

func (s *testSuite) registerAndLogin(t *testing.T, username, role string) string {
	t.Helper()
	rr := s.do(t, http.MethodPost, "/api/v1/auth/register",
		map[string]any{"username": username, "password": username + "-password", "role": role}, "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = s.do(t, http.MethodPost, "/api/v1/auth/login",
		map[string]any{"username": username, "password": username + "-password"}, "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var resp struct {
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Data.Token)
	return resp.Data.Token
}

func data(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var resp struct {
		Data map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return resp.Data
}

func TestCaseCollaborationFlow(t *testing.T) {
	s := setupSuite(t)

	tokenA := s.registerAndLogin(t, "alice", "investigator")
	tokenB := s.registerAndLogin(t, "bob", "reviewer")

	// A creates a case and implicitly holds admin
	rr := s.do(t, http.MethodPost, "/api/v1/cases",
		map[string]any{"title": "Contract Review", "description": "vendor contracts"}, tokenA)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	caseID := int64(data(t, rr)["id"].(float64))
	require.NotZero(t, caseID)

	casePath := fmt.Sprintf("/api/v1/cases/%d", caseID)

	// B cannot see any cases yet
	rr = s.do(t, http.MethodGet, "/api/v1/cases", nil, tokenB)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"data":[]`)

	// A grants B read; bob's user id is 2 (second registration)
	rr = s.do(t, http.MethodPost, casePath+"/add-user",
		map[string]any{"userId": 2, "accessLevel": "read"}, tokenA)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	// B lists case users and sees itself with read
	rr = s.do(t, http.MethodGet, casePath+"/users", nil, tokenB)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Contains(t, rr.Body.String(), `"username":"bob"`)
	assert.Contains(t, rr.Body.String(), `"access_level":"read"`)

	// B cannot prepare an upload with read access
	rr = s.do(t, http.MethodPost, "/api/v1/files/prepare-upload",
		map[string]any{"caseId": caseID, "filename": "contract.pdf", "contentType": "application/pdf"}, tokenB)
	require.Equal(t, http.StatusForbidden, rr.Code, rr.Body.String())

	// A runs the full three-phase upload for a 2-part file
	rr = s.do(t, http.MethodPost, "/api/v1/files/prepare-upload",
		map[string]any{"caseId": caseID, "filename": "contract.pdf", "contentType": "application/pdf"}, tokenA)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	prep := data(t, rr)
	uploadID := prep["uploadId"].(string)
	key := prep["key"].(string)
	require.Equal(t, fmt.Sprintf("cases/%d/files/contract.pdf", caseID), key)

	for part := 1; part <= 2; part++ {
		rr = s.do(t, http.MethodGet,
			fmt.Sprintf("/api/v1/files/sign-part?key=%s&uploadId=%s&partNumber=%d", key, uploadID, part), nil, tokenA)
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		assert.Contains(t, rr.Body.String(), "https://storage.test/")
	}

	rr = s.do(t, http.MethodPost, "/api/v1/files/complete-upload", map[string]any{
		"key":      key,
		"uploadId": uploadID,
		"parts": []map[string]any{
			{"PartNumber": 1, "ETag": "etag-1"},
			{"PartNumber": 2, "ETag": "etag-2"},
		},
		"fileSize": 2048,
		"metadata": map[string]any{"pages": 12},
	}, tokenA)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	// exactly one file record with the right size, one upload_file audit entry
	var fileRecords []files.File
	require.NoError(t, s.db.Find(&fileRecords).Error)
	require.Len(t, fileRecords, 1)
	assert.Equal(t, int64(2048), fileRecords[0].FileSize)
	assert.Equal(t, "contract.pdf", fileRecords[0].Filename)

	var uploadAudits int64
	s.db.Model(&audit.Entry{}).Where("action = ?", audit.ActionUploadFile).Count(&uploadAudits)
	assert.Equal(t, int64(1), uploadAudits)

	// B downloads the file with read access and receives a time-limited URL
	rr = s.do(t, http.MethodGet, fmt.Sprintf("/api/v1/files/download/%d", fileRecords[0].ID), nil, tokenB)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Contains(t, rr.Body.String(), "sig=read")

	// revoke B and the download stops working
	rr = s.do(t, http.MethodDelete, fmt.Sprintf("%s/remove-user/%d", casePath, 2), nil, tokenA)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = s.do(t, http.MethodGet, fmt.Sprintf("/api/v1/files/download/%d", fileRecords[0].ID), nil, tokenB)
	require.Equal(t, http.StatusForbidden, rr.Code, rr.Body.String())
}

func TestExternalMappingFlow(t *testing.T) {
	s := setupSuite(t)

	tokenA := s.registerAndLogin(t, "alice", "investigator")
	tokenB := s.registerAndLogin(t, "bob", "reviewer")

	rr := s.do(t, http.MethodPost, "/api/v1/cases",
		map[string]any{"title": "Incident 42"}, tokenA)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	caseID := int64(data(t, rr)["id"].(float64))

	mappingPath := fmt.Sprintf("/api/v1/cases/%d/external-case-mapping", caseID)

	// grant B read so it can look but not create
	rr = s.do(t, http.MethodPost, fmt.Sprintf("/api/v1/cases/%d/add-user", caseID),
		map[string]any{"userId": 2, "accessLevel": "read"}, tokenA)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	// no mapping yet: empty object, not an error
	rr = s.do(t, http.MethodGet, mappingPath, nil, tokenB)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Contains(t, rr.Body.String(), `"data":{}`)

	// reader cannot create
	rr = s.do(t, http.MethodPost, mappingPath,
		map[string]any{"external_case_id": "EXT-9", "external_system": "jira"}, tokenB)
	require.Equal(t, http.StatusForbidden, rr.Code, rr.Body.String())

	// admin creates, duplicate conflicts
	rr = s.do(t, http.MethodPost, mappingPath,
		map[string]any{"external_case_id": "EXT-9", "external_system": "jira"}, tokenA)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = s.do(t, http.MethodPost, mappingPath,
		map[string]any{"external_case_id": "EXT-10", "external_system": "jira"}, tokenA)
	require.Equal(t, http.StatusConflict, rr.Code, rr.Body.String())

	// reader fetches the mapping
	rr = s.do(t, http.MethodGet, mappingPath, nil, tokenB)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Contains(t, rr.Body.String(), `"external_case_id":"EXT-9"`)
}
