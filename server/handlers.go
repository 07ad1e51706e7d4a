package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/hupe1980/agentfleet/coordinator"
	"github.com/hupe1980/agentfleet/core"
)

const maxBodySize = 1 << 20 // 1MB

type errorResponse struct {
	Error  string `json:"error"`
	Reason string `json:"reason,omitempty"`
	Agent  string `json:"agent,omitempty"`
}

type rootResponse struct {
	Service string `json:"service"`
	Status  string `json:"status"`
}

type healthResponse struct {
	Status        string `json:"status"`
	UptimeSeconds int64  `json:"uptime_seconds"`
}

type hierarchyResponse struct {
	TenantID   string `json:"tenant_id"`
	InstanceID string `json:"instance_id"`
	Version    int64  `json:"version"`
	Agents     int    `json:"agents"`
	Success    bool   `json:"success"`
}

type instancesResponse struct {
	TenantID  string                 `json:"tenant_id"`
	Instances []*core.InstanceConfig `json:"instances"`
	Count     int                    `json:"count"`
}

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, rootResponse{Service: "agentfleet", Status: "running"})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:        "healthy",
		UptimeSeconds: int64(time.Since(s.startTime).Seconds()),
	})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req coordinator.ChatRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.TenantID == "" || req.InstanceID == "" || req.SessionID == "" || req.Message == "" {
		writeError(w, http.StatusBadRequest, "tenant_id, instance_id, session_id and message are required")
		return
	}

	resp, err := s.coord.Handle(r.Context(), req)
	if err != nil {
		s.logger.Error("chat.failed",
			"tenant_id", req.TenantID,
			"instance_id", req.InstanceID,
			"session_id", req.SessionID,
			"error", err,
		)
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHierarchy(w http.ResponseWriter, r *http.Request) {
	var req coordinator.UpsertRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.TenantID == "" || req.InstanceID == "" {
		writeError(w, http.StatusBadRequest, "tenant_id and instance_id are required")
		return
	}

	stored, err := s.coord.UpsertInstance(r.Context(), req)
	if err != nil {
		s.logger.Error("hierarchy.upsert.failed",
			"tenant_id", req.TenantID,
			"instance_id", req.InstanceID,
			"error", err,
		)
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, hierarchyResponse{
		TenantID:   stored.TenantID,
		InstanceID: stored.InstanceID,
		Version:    stored.Version,
		Agents:     len(stored.Agents),
		Success:    true,
	})
}

func (s *Server) handleInstances(w http.ResponseWriter, r *http.Request) {
	tenantID := r.PathValue("tenant_id")
	if tenantID == "" {
		writeError(w, http.StatusBadRequest, "tenant_id is required")
		return
	}

	instances, err := s.coord.ListInstances(r.Context(), tenantID)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, instancesResponse{
		TenantID:  tenantID,
		Instances: instances,
		Count:     len(instances),
	})
}

// writeDomainError maps coordinator errors onto HTTP statuses. Validation
// build failures are the caller's fault (422), transient ones are retryable
// (503), dispatch failures point at an upstream model or tool (502).
func (s *Server) writeDomainError(w http.ResponseWriter, err error) {
	var buildErr *core.BuildError
	var dispatchErr *core.DispatchError

	switch {
	case errors.Is(err, core.ErrInstanceNotFound):
		writeError(w, http.StatusNotFound, "instance not found")
	case errors.As(err, &buildErr):
		status := http.StatusUnprocessableEntity
		if buildErr.Temporary() {
			status = http.StatusServiceUnavailable
		}
		writeJSON(w, status, errorResponse{
			Error:  buildErr.Error(),
			Reason: string(buildErr.Reason),
			Agent:  buildErr.Agent,
		})
	case errors.As(err, &dispatchErr):
		writeError(w, http.StatusBadGateway, dispatchErr.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
