package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hupe1980/agentfleet/cache"
	"github.com/hupe1980/agentfleet/coordinator"
	"github.com/hupe1980/agentfleet/core"
	"github.com/hupe1980/agentfleet/model"
	"github.com/hupe1980/agentfleet/session"
	"github.com/hupe1980/agentfleet/store"
	"github.com/hupe1980/agentfleet/team"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, optFns ...func(o *Options)) *Server {
	t.Helper()

	providers := team.NewProviderRegistry()
	for _, p := range []core.ModelProvider{core.ProviderOpenAI, core.ProviderClaude, core.ProviderGemini, core.ProviderGroq} {
		provider := p
		providers.Register(provider, team.Provider{
			CredentialPresent: func() bool { return true },
			Build: func(modelID string) (model.Model, error) {
				return model.NewMockModel(modelID, string(provider)), nil
			},
		})
	}

	factory := team.NewFactory(func(o *team.FactoryOptions) { o.Providers = providers })
	coord := coordinator.New(
		store.NewInMemoryStore(),
		cache.NewInstanceCache(),
		factory,
		session.NewBinder(session.NewInMemoryStore()),
	)

	srv := New(coord, optFns...)
	t.Cleanup(func() { srv.rateLimiter.Stop() })
	return srv
}

func doJSON(t *testing.T, srv *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeBodyInto(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v))
}

func upsertTeam(t *testing.T, srv *Server) {
	t.Helper()
	rec := doJSON(t, srv, http.MethodPut, "/agent/hierarchy", coordinator.UpsertRequest{
		TenantID:   "t1",
		InstanceID: "i1",
		Agents: []core.AgentSpec{
			{Name: "Assistant", Role: "Handles everything", Provider: core.ProviderOpenAI, ModelID: "gpt-4o"},
		},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestRootEndpoint(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp rootResponse
	decodeBodyInto(t, rec, &resp)
	assert.Equal(t, "agentfleet", resp.Service)
	assert.Equal(t, "running", resp.Status)
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp healthResponse
	decodeBodyInto(t, rec, &resp)
	assert.Equal(t, "healthy", resp.Status)
}

func TestChatEndpoint(t *testing.T) {
	srv := newTestServer(t)
	upsertTeam(t, srv)

	rec := doJSON(t, srv, http.MethodPost, "/agent/chat", coordinator.ChatRequest{
		TenantID: "t1", InstanceID: "i1", SessionID: "s1", Message: "hello",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp coordinator.ChatResponse
	decodeBodyInto(t, rec, &resp)
	assert.True(t, resp.Success)
	assert.Equal(t, "s1", resp.SessionID)
	assert.NotEmpty(t, resp.Response)
}

func TestChatValidation(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name string
		req  coordinator.ChatRequest
	}{
		{"missing tenant", coordinator.ChatRequest{InstanceID: "i1", SessionID: "s1", Message: "m"}},
		{"missing instance", coordinator.ChatRequest{TenantID: "t1", SessionID: "s1", Message: "m"}},
		{"missing session", coordinator.ChatRequest{TenantID: "t1", InstanceID: "i1", Message: "m"}},
		{"missing message", coordinator.ChatRequest{TenantID: "t1", InstanceID: "i1", SessionID: "s1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, srv, http.MethodPost, "/agent/chat", tt.req)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestChatMalformedBody(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/agent/chat", bytes.NewBufferString("{not json"))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestChatUnknownInstance(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/agent/chat", coordinator.ChatRequest{
		TenantID: "t1", InstanceID: "ghost", SessionID: "s1", Message: "hello",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestChatInvalidConfigReturnsUnprocessable(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPut, "/agent/hierarchy", coordinator.UpsertRequest{
		TenantID: "t1", InstanceID: "i1",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, srv, http.MethodPost, "/agent/chat", coordinator.ChatRequest{
		TenantID: "t1", InstanceID: "i1", SessionID: "s1", Message: "hello",
	})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var resp errorResponse
	decodeBodyInto(t, rec, &resp)
	assert.Equal(t, "EMPTY_TEAM", resp.Reason)
}

func TestHierarchyUpsertBumpsVersion(t *testing.T) {
	srv := newTestServer(t)
	upsertTeam(t, srv)
	upsertTeam(t, srv)

	rec := doJSON(t, srv, http.MethodPut, "/agent/hierarchy", coordinator.UpsertRequest{
		TenantID:   "t1",
		InstanceID: "i1",
		Agents:     []core.AgentSpec{{Name: "A", Role: "r", Provider: core.ProviderOpenAI}},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp hierarchyResponse
	decodeBodyInto(t, rec, &resp)
	assert.Equal(t, int64(3), resp.Version)
	assert.Equal(t, 1, resp.Agents)
	assert.True(t, resp.Success)
}

func TestHierarchyValidation(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPut, "/agent/hierarchy", coordinator.UpsertRequest{TenantID: "t1"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestInstancesEndpoint(t *testing.T) {
	srv := newTestServer(t)
	upsertTeam(t, srv)

	rec := doJSON(t, srv, http.MethodGet, "/agent/instances/t1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp instancesResponse
	decodeBodyInto(t, rec, &resp)
	assert.Equal(t, "t1", resp.TenantID)
	assert.Equal(t, 1, resp.Count)
	require.Len(t, resp.Instances, 1)
	assert.Equal(t, "i1", resp.Instances[0].InstanceID)

	rec = doJSON(t, srv, http.MethodGet, "/agent/instances/t2", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeBodyInto(t, rec, &resp)
	assert.Equal(t, 0, resp.Count)
}

func TestRateLimitExceeded(t *testing.T) {
	srv := newTestServer(t, func(o *Options) { o.RateLimitPerMinute = 2 })
	upsertTeam(t, srv)

	rec := doJSON(t, srv, http.MethodGet, "/agent/instances/t1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, srv, http.MethodGet, "/agent/instances/t1", nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
}

func TestShutdownRefusesNewRequests(t *testing.T) {
	srv := newTestServer(t, func(o *Options) { o.ShutdownTimeout = 0 })
	require.NoError(t, srv.Stop())

	rec := doJSON(t, srv, http.MethodGet, "/agent/instances/t1", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
