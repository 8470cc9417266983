package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/newsroom-agent/internal/protocol"
	"github.com/jonathan/newsroom-agent/internal/registry"
	"github.com/jonathan/newsroom-agent/internal/server/middleware"
	"github.com/jonathan/newsroom-agent/internal/server/ratelimit"
)

// AgentName identifies the coordinator on its capability card.
const AgentName = "newsroom-coordinator"

// Pipeline runs one story end to end. Satisfied by the orchestrator.
type Pipeline interface {
	Run(ctx context.Context, storyID uuid.UUID)
}

// Server represents the coordinator HTTP server.
type Server struct {
	httpServer  *http.Server
	registry    *registry.Registry
	pipeline    Pipeline
	rateLimiter *ratelimit.Limiter
	jwtService  *JWTService
	card        protocol.CapabilityCard
}

// Config holds server configuration.
type Config struct {
	Addr string
	// JWTService guards destructive actions; nil disables the guard.
	JWTService *JWTService
	// RateLimit overrides the environment-derived limiter config in tests.
	RateLimit *ratelimit.Config
}

// New creates a new server instance around an existing registry and pipeline.
func New(reg *registry.Registry, pipeline Pipeline, cfg Config) *Server {
	s := &Server{
		registry:   reg,
		pipeline:   pipeline,
		jwtService: cfg.JWTService,
		card:       buildCoordinatorCard(),
	}

	rlConfig := cfg.RateLimit
	if rlConfig == nil {
		rlConfig = ratelimit.LoadConfig()
	}
	s.rateLimiter = ratelimit.NewLimiter(rlConfig)

	addr := cfg.Addr
	if addr == "" {
		addr = ":8080"
	}
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Handler builds the full middleware-wrapped route tree.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /agent", s.handleAgent)
	mux.HandleFunc("POST /rpc", s.handleRPC)
	mux.HandleFunc("GET /agent/card", s.handleCard)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /stories", s.handleListStories)
	mux.HandleFunc("GET /stories/{id}", s.handleGetStory)

	clearHandler := http.Handler(http.HandlerFunc(s.handleClearStories))
	if s.jwtService != nil {
		clearHandler = middleware.AuthMiddleware(s.jwtService.AsTokenValidator())(clearHandler)
	}
	mux.Handle("DELETE /stories", clearHandler)

	return s.withRateLimit(s.withLogging(s.withCORS(mux)))
}

// buildCoordinatorCard lists the actions the coordinator exposes.
func buildCoordinatorCard() protocol.CapabilityCard {
	return protocol.BuildCapabilityCard(AgentName, []protocol.Skill{
		{ID: ActionAssignStory, Name: "Assign story", Description: "Register a story assignment and run it through the newsroom pipeline"},
		{ID: ActionGetStoryStatus, Name: "Get story status", Description: "Snapshot the current state of one story"},
		{ID: ActionListActiveStories, Name: "List active stories", Description: "Snapshot every story not yet published or failed"},
		{ID: ActionClear, Name: "Clear registry", Description: "Drop all stories and return to idle (operator only)"},
	})
}

// Start begins listening for requests and blocks until shutdown.
func (s *Server) Start() error {
	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("[server] listening on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("[server] error: %v", err)
		}
	}()

	<-stop
	log.Println("[server] shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}

	log.Println("[server] stopped")
	return nil
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withRateLimit adds rate limiting middleware
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientID := s.extractClientID(r)

		allowed, info := s.rateLimiter.Allow(clientID, r.URL.Path, r.Method)
		if !allowed {
			s.setRateLimitHeaders(w, info)
			s.rateLimitResponse(w, info)
			return
		}

		s.setRateLimitHeaders(w, info)
		next.ServeHTTP(w, r)
	})
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		log.Printf("[%s] %s %s", r.Method, r.URL.Path, r.RemoteAddr)
		next.ServeHTTP(w, r)
		log.Printf("[%s] %s completed in %v", r.Method, r.URL.Path, time.Since(start))
	})
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"stories": s.registry.Len(),
	})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("[server] error encoding JSON response: %v", err)
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}

// extractClientID extracts the client identifier from the request.
// This uses the IP address from RemoteAddr; X-Forwarded-For would only be
// trustworthy behind a known proxy.
func (s *Server) extractClientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// setRateLimitHeaders sets standard rate limit headers on the response.
func (s *Server) setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", info.Limit))
		w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", info.Remaining))
		w.Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", info.ResetTime.Unix()))
	}
}

// rateLimitResponse writes a 429 Too Many Requests response with rate limit information.
func (s *Server) rateLimitResponse(w http.ResponseWriter, info ratelimit.Info) {
	response := map[string]any{
		"error":     "rate_limit_exceeded",
		"message":   "Rate limit exceeded. Please try again later.",
		"limit":     info.Limit,
		"remaining": info.Remaining,
		"reset_at":  info.ResetTime.Format(time.RFC3339),
	}

	if info.RetryAfter > 0 {
		response["retry_after"] = int(info.RetryAfter.Seconds())
		w.Header().Set("Retry-After", fmt.Sprintf("%d", int(info.RetryAfter.Seconds())))
	}

	log.Printf("[rate-limit] limit exceeded: Limit=%d Remaining=%d Reset=%s",
		info.Limit, info.Remaining, info.ResetTime.Format(time.RFC3339))

	s.jsonResponse(w, http.StatusTooManyRequests, response)
}
