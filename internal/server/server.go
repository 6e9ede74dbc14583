package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"email-trade-bot/internal/interfaces"
	"email-trade-bot/internal/logger"
	"email-trade-bot/internal/mail"
	"email-trade-bot/internal/store"
)

const serviceName = "email->gpt->ibkr"

// Server is the single-process HTTP surface: liveness, debug echoes, and the
// inbound email webhook.
type Server struct {
	httpServer *http.Server
	cfg        *store.Config
	engine     interfaces.Engine
	decider    interfaces.Decider
	broker     interfaces.Broker
}

func New(cfg *store.Config, eng interfaces.Engine, decider interfaces.Decider, broker interfaces.Broker) *Server {
	s := &Server{
		cfg:     cfg,
		engine:  eng,
		decider: decider,
		broker:  broker,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleHealth)
	mux.HandleFunc("GET /debug/openai", s.handleDebugOpenAI)
	mux.HandleFunc("GET /debug/broker", s.handleDebugBroker)
	mux.HandleFunc("POST /email-inbound", s.handleEmailInbound)

	s.httpServer = &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           s.withRecover(mux),
		ReadHeaderTimeout: 5 * time.Second,
	}

	return s
}

// Handler exposes the configured handler (tests).
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start blocks serving HTTP until Shutdown is called.
func (s *Server) Start() error {
	err := s.httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// withRecover is the single error boundary: a panic anywhere in the request
// path becomes a 500, never a dead process.
func (s *Server) withRecover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				logger.Error(r.Context(), "Panic while handling request",
					"path", r.URL.Path,
					"panic", rec,
				)
				writeJSON(w, http.StatusInternalServerError, map[string]any{
					"error": "internal server error",
				})
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":      true,
		"service": serviceName,
		"dry_run": s.cfg.DryRun,
	})
}

// handleDebugOpenAI pings the classifier. Always 200; failures are reported
// in the body.
func (s *Server) handleDebugOpenAI(w http.ResponseWriter, r *http.Request) {
	reply, err := s.decider.Ping(r.Context())
	if err != nil {
		writeJSON(w, http.StatusOK, map[string]any{
			"ok":    false,
			"model": s.cfg.LLM.Model,
			"error": err.Error(),
		})
		return
	}
	if len(reply) > 40 {
		reply = reply[:40]
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":       true,
		"model":    s.cfg.LLM.Model,
		"response": reply,
	})
}

// handleDebugBroker reports gateway connectivity. Always 200.
func (s *Server) handleDebugBroker(w http.ResponseWriter, r *http.Request) {
	status, err := s.broker.Health(r.Context())
	if err != nil {
		writeJSON(w, http.StatusOK, map[string]any{
			"ok":    false,
			"error": err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":     true,
		"status": status,
	})
}

func (s *Server) handleEmailInbound(w http.ResponseWriter, r *http.Request) {
	payload := mail.ParseRequest(r)

	result, err := s.engine.Process(r.Context(), payload)
	if err != nil {
		logger.ErrorWithErr(r.Context(), "Failed to handle inbound email", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"error": err.Error(),
		})
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
