package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/sandevgo/medgraph/internal/service/agent"
	"github.com/sandevgo/medgraph/pkg/log"
)

// Runner is the orchestration entry point the chat endpoint delegates to.
type Runner interface {
	Run(ctx context.Context, sessionID, input string) (*agent.Result, error)
}

// Pinger reports reachability of one dependent service.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingerFunc adapts a plain function to the Pinger interface.
type PingerFunc func(ctx context.Context) error

func (f PingerFunc) Ping(ctx context.Context) error { return f(ctx) }

type ChatRequest struct {
	Message   string `json:"message" validate:"required"`
	SessionID string `json:"session_id"`
}

type ChatResponse struct {
	Response  string             `json:"response"`
	SessionID string             `json:"session_id"`
	ToolTrace []agent.TraceEntry `json:"tool_trace,omitempty"`
}

type ErrorResponse struct {
	Detail string `json:"detail"`
}

type HealthResponse struct {
	Status            string          `json:"status"`
	DependentServices map[string]bool `json:"dependent_services"`
}

type Handler struct {
	runner   Runner
	pingers  map[string]Pinger
	validate *validator.Validate
}

func NewHandler(runner Runner, pingers map[string]Pinger) *Handler {
	return &Handler{
		runner:   runner,
		pingers:  pingers,
		validate: validator.New(),
	}
}

func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Detail: "invalid request body"})
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Detail: "message is required"})
		return
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = uuid.New().String()
	}

	result, err := h.runner.Run(r.Context(), sessionID, req.Message)
	if err != nil {
		log.FromCtx(r.Context()).Error().Err(err).Str("session_id", sessionID).Msg("chat run failed")

		var oerr *agent.OrchestrationError
		if errors.As(err, &oerr) {
			code := http.StatusBadGateway
			if errors.Is(err, context.DeadlineExceeded) {
				code = http.StatusGatewayTimeout
			}
			writeJSON(w, code, ErrorResponse{Detail: oerr.Reason})
			return
		}
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Detail: "internal error"})
		return
	}

	writeJSON(w, http.StatusOK, ChatResponse{
		Response:  result.Answer,
		SessionID: sessionID,
		ToolTrace: result.Trace,
	})
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	status := "healthy"
	services := make(map[string]bool, len(h.pingers))
	for name, pinger := range h.pingers {
		err := pinger.Ping(r.Context())
		services[name] = err == nil
		if err != nil {
			status = "degraded"
			log.FromCtx(r.Context()).Warn().Err(err).Str("service", name).Msg("dependency unreachable")
		}
	}

	code := http.StatusOK
	if status != "healthy" {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, HealthResponse{Status: status, DependentServices: services})
}

func writeJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(payload)
}
