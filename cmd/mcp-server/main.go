// Command mcp-server exposes the gocalc tools as an HTTP endpoint for AI
// agent frameworks.
//
// Usage:
//
//	go run ./cmd/mcp-server -addr :8080
//
// Tool call endpoint: POST /tool
// Schema endpoint:    GET  /schema
// Health endpoint:    GET  /health
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"runtime/debug"
	"time"

	"github.com/google/uuid"

	"github.com/njchilds90/gocalc/calc"
	"github.com/njchilds90/gocalc/internal/config"
	"github.com/njchilds90/gocalc/internal/logging"
	"github.com/njchilds90/gocalc/internal/toolapi"
	"github.com/njchilds90/gocalc/numeric"
	"github.com/njchilds90/gocalc/symbolic"
)

const requestIDHeader = "X-Request-ID"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, logging.FormatError("load config", err))
		os.Exit(1)
	}
	addr := flag.String("addr", cfg.Server.Addr, "Address to listen on")
	flag.Parse()

	logger, err := logging.New(cfg, os.Stderr)
	if err != nil {
		fmt.Fprintln(os.Stderr, logging.FormatError("logger", err))
		os.Exit(1)
	}
	h, err := newToolHandler(cfg, logger)
	if err != nil {
		logger.Error("invalid batch config", "err", err)
		os.Exit(1)
	}

	logger.Info("gocalc MCP server listening", "addr", *addr)
	logger.Info("  POST /tool   execute a tool call")
	logger.Info("  GET  /schema tool schema for agent registration")
	logger.Info("  GET  /health health check")

	srv := &http.Server{
		Addr:              *addr,
		Handler:           newMux(h, logger, cfg.Server.MaxBodyBytes),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       cfg.Server.ReadTimeout(),
		WriteTimeout:      cfg.Server.WriteTimeout(),
		IdleTimeout:       60 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server stopped", "err", err)
		os.Exit(1)
	}
}

func newToolHandler(cfg config.Config, logger *slog.Logger) (*toolapi.Handler, error) {
	ops, err := cfg.Batch.ParsedOperations()
	if err != nil {
		return nil, err
	}
	dir, err := cfg.Batch.Direction()
	if err != nil {
		return nil, err
	}
	orch := calc.New(symbolic.NewEngine(), numeric.NewEngine(), calc.WithLogger(logger))
	return toolapi.NewHandler(orch, toolapi.Defaults{
		Operations: ops,
		Approach:   cfg.Batch.LimitApproach,
		Direction:  dir,
	}), nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func newMux(h *toolapi.Handler, logger *slog.Logger, maxBodyBytes int64) *http.ServeMux {
	mux := http.NewServeMux()

	// POST /tool: handle a tool call
	mux.HandleFunc("/tool", func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		log := logger.With("request_id", id)

		defer func() {
			if rec := recover(); rec != nil {
				log.Error("panic in /tool", "panic", rec, "stack", string(debug.Stack()))
				http.Error(w, "internal server error", http.StatusInternalServerError)
			}
		}()

		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		defer r.Body.Close()

		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()

		var req toolapi.ToolRequest
		if err := dec.Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		// Ensure there's no trailing junk.
		if dec.More() {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: trailing data"})
			return
		}

		start := time.Now()
		resp := h.HandleToolCall(r.Context(), req)
		log.Debug("tool call", "tool", req.Tool, "error", resp.Error, "elapsed_ms", time.Since(start).Milliseconds())
		writeJSON(w, http.StatusOK, resp)
	})

	// GET /schema: tool schema for agent registration
	mux.HandleFunc("/schema", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, toolapi.ToolSpec())
	})

	// GET /health: liveness check
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"status": "ok",
			"time":   time.Now().UTC().Format(time.RFC3339),
		})
	})
	return mux
}
