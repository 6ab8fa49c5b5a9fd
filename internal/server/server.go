// internal/server/server.go
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/ThinkInAIXYZ/go-mcp/protocol"

	apperrors "mcp-meal-generator/internal/errors"
	"mcp-meal-generator/internal/generator"
	"mcp-meal-generator/internal/storage"
)

// TransportHTTP is the only supported transport.
const TransportHTTP = "http"

type Config struct {
	Transport string
	Host      string
	Port      int
	Version   string
}

type MealServer struct {
	httpServer *http.Server
	repo       storage.Repository
	generator  *generator.Generator
	tools      map[string]toolHandler
	config     *Config
}

func NewMealServer(cfg *Config, repo storage.Repository, gen *generator.Generator) (*MealServer, error) {
	if cfg.Transport == "" {
		cfg.Transport = TransportHTTP
	}
	if cfg.Transport != TransportHTTP {
		return nil, fmt.Errorf("unsupported transport %q", cfg.Transport)
	}
	if cfg.Version == "" {
		cfg.Version = "dev"
	}

	mealServer := &MealServer{
		repo:      repo,
		generator: gen,
		config:    cfg,
	}
	mealServer.registerTools()

	mux := http.NewServeMux()
	mux.HandleFunc("/", mealServer.handleHTTP)

	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	mealServer.httpServer = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return mealServer, nil
}

// Handler exposes the MCP tool-call handler, mainly for tests.
func (s *MealServer) Handler() http.Handler {
	return s.httpServer.Handler
}

// Info describes this server in MCP terms.
func (s *MealServer) Info() protocol.Implementation {
	return protocol.Implementation{
		Name:    "meal-generator",
		Version: s.config.Version,
	}
}

func (s *MealServer) handleHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var request protocol.CallToolRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, fmt.Sprintf("Invalid JSON: %v", err), http.StatusBadRequest)
		return
	}

	handler, ok := s.tools[request.Name]
	if !ok {
		http.Error(w, fmt.Sprintf("Unknown tool: %s", request.Name), http.StatusNotFound)
		return
	}

	start := time.Now()
	result, err := handler(&request)
	logAttrs := []any{
		"tool", request.Name,
		"duration_ms", time.Since(start).Milliseconds(),
	}
	if err != nil {
		status := statusFor(err)
		slog.Warn("tool call failed", append(logAttrs, "status", status, "error", err)...)
		http.Error(w, err.Error(), status)
		return
	}
	slog.Info("tool call", logAttrs...)

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(result); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// statusFor maps the error taxonomy onto HTTP status codes.
func statusFor(err error) int {
	switch apperrors.CodeOf(err) {
	case apperrors.ErrCodeEmptySelection:
		return http.StatusUnprocessableEntity
	case apperrors.ErrCodeInvalidRequest:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Start serves until ctx is cancelled or the listener fails.
func (s *MealServer) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		info := s.Info()
		slog.Info("starting meal generator server",
			"addr", s.httpServer.Addr,
			"name", info.Name,
			"server_version", info.Version,
		)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return s.Stop()
	}
}

func (s *MealServer) Stop() error {
	if s.httpServer == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.httpServer.Shutdown(ctx)
}

func (s *MealServer) createJSONResponse(data interface{}) (*protocol.CallToolResult, error) {
	jsonBytes, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal response: %w", err)
	}

	return &protocol.CallToolResult{
		Content: []protocol.Content{
			protocol.TextContent{
				Type: "text",
				Text: string(jsonBytes),
			},
		},
	}, nil
}
