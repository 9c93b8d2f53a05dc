package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rdblue/avro/pkg/registry"
	"github.com/rdblue/avro/pkg/schema"
)

// withURLParam injects a chi URL parameter so handlers can be exercised
// without the full router.
func withURLParam(r *http.Request, key, value string) *http.Request {
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, routeCtx))
}

// fakeRegistry implements IRegistry in memory for handler tests.
type fakeRegistry struct {
	schemas map[string]string
	nextID  int
}

func newFakeRegistry() *fakeRegistry {
	return &fakeRegistry{schemas: map[string]string{}}
}

func (f *fakeRegistry) Register(schemaJSON []byte) (string, error) {
	parsed, err := schema.ParseJSON(schemaJSON)
	if err != nil {
		return "", err
	}
	canonical, err := schema.ToJSON(parsed)
	if err != nil {
		return "", err
	}
	f.nextID++
	id := string(rune('a' + f.nextID - 1))
	f.schemas[id] = string(canonical)
	return id, nil
}

func (f *fakeRegistry) Get(id string) (schema.Schema, []byte, error) {
	stored, ok := f.schemas[id]
	if !ok {
		return nil, nil, registry.ErrNotFound
	}
	parsed, err := schema.ParseJSON([]byte(stored))
	if err != nil {
		return nil, nil, err
	}
	return parsed, []byte(stored), nil
}

func (f *fakeRegistry) List() ([]registry.Entry, error) {
	var entries []registry.Entry
	for id, stored := range f.schemas {
		entries = append(entries, registry.Entry{ID: id, Schema: stored})
	}
	return entries, nil
}

func (f *fakeRegistry) CheckCompat(writerID, readerID string) (bool, error) {
	writer, _, err := f.Get(writerID)
	if err != nil {
		return false, err
	}
	reader, _, err := f.Get(readerID)
	if err != nil {
		return false, err
	}
	return schema.Match(writer, reader), nil
}

func newTestServer() (*Server, *fakeRegistry) {
	reg := newFakeRegistry()
	return NewServer(reg, ServerConfig{}, nil), reg
}

func postJSON(t *testing.T, handler http.HandlerFunc, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest("POST", "/", bytes.NewReader(payload))
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) APIResponse {
	t.Helper()
	var resp APIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestHandleRegister(t *testing.T) {
	server, _ := newTestServer()

	rec := postJSON(t, server.handleRegister, RegisterRequest{Schema: `"int"`})
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	assert.True(t, resp.Success)
}

func TestHandleRegister_InvalidSchema(t *testing.T) {
	server, _ := newTestServer()

	rec := postJSON(t, server.handleRegister, RegisterRequest{Schema: `{"type":"fixed","name":"F","size":-1}`})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeResponse(t, rec)
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Error, "invalid schema")
}

func TestHandleRegister_MissingBody(t *testing.T) {
	server, _ := newTestServer()

	rec := postJSON(t, server.handleRegister, RegisterRequest{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleGetSchema(t *testing.T) {
	server, reg := newTestServer()
	id, err := reg.Register([]byte(`"string"`))
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/api/v1/schemas/"+id, nil)
	req = withURLParam(req, "id", id)
	rec := httptest.NewRecorder()
	server.handleGetSchema(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	assert.True(t, resp.Success)
}

func TestHandleGetSchema_NotFound(t *testing.T) {
	server, _ := newTestServer()

	req := httptest.NewRequest("GET", "/api/v1/schemas/zzz", nil)
	req = withURLParam(req, "id", "zzz")
	rec := httptest.NewRecorder()
	server.handleGetSchema(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleCompat(t *testing.T) {
	server, reg := newTestServer()
	writerID, err := reg.Register([]byte(`"int"`))
	require.NoError(t, err)
	readerID, err := reg.Register([]byte(`"long"`))
	require.NoError(t, err)

	rec := postJSON(t, server.handleCompat, CompatRequest{WriterID: writerID, ReaderID: readerID})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Success bool           `json:"success"`
		Data    CompatResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Data.Compatible)

	rec = postJSON(t, server.handleCompat, CompatRequest{WriterID: readerID, ReaderID: writerID})
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Data.Compatible)
}

func TestAPIKeyMiddleware(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	protected := apiKeyMiddleware("secret", nil)(next)

	req := httptest.NewRequest("GET", "/", nil)
	rec := httptest.NewRecorder()
	protected.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code, "missing key rejected")

	req = httptest.NewRequest("GET", "/", nil)
	req.Header.Set("X-API-Key", "wrong")
	rec = httptest.NewRecorder()
	protected.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code, "wrong key rejected")

	req = httptest.NewRequest("GET", "/", nil)
	req.Header.Set("X-API-Key", "secret")
	rec = httptest.NewRecorder()
	protected.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
