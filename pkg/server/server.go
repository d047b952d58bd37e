// SPDX-License-Identifier: AGPL-3.0
// Copyright 2025 Kadir Pekel
//
// Licensed under the GNU Affero General Public License v3.0 (AGPL-3.0) (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.gnu.org/licenses/agpl-3.0.en.html
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package server assembles the MCP tool surface and serves it over the
// configured transport (stdio or streamable HTTP).
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	mcpserver "github.com/mark3labs/mcp-go/server"

	agiloftmcp "github.com/kadirpekel/agiloft-mcp"
	"github.com/kadirpekel/agiloft-mcp/pkg/agiloft"
	"github.com/kadirpekel/agiloft-mcp/pkg/config"
	"github.com/kadirpekel/agiloft-mcp/pkg/tools"
)

const serverName = "agiloft-mcp"

// Server hosts the assembled MCP server and its transports.
type Server struct {
	cfg     *config.Config
	mcp     *mcpserver.MCPServer
	metrics *Metrics
	logger  *slog.Logger
}

// New assembles the MCP server: per-entity tools, workflow tools and prompts,
// all routed through the dispatcher.
func New(cfg *config.Config, dispatcher *agiloft.Dispatcher, metrics *Metrics) *Server {
	mcp := mcpserver.NewMCPServer(serverName, agiloftmcp.Version,
		mcpserver.WithToolCapabilities(false),
		mcpserver.WithPromptCapabilities(false),
		mcpserver.WithRecovery(),
	)

	handler := tools.NewHandler(dispatcher)
	entityTools := tools.GenerateTools(dispatcher.Registry())
	for _, t := range entityTools {
		mcp.AddTool(t.Tool, handler.Bind(t))
	}

	workflowTools := tools.NewWorkflows(dispatcher).Tools()
	for _, wt := range workflowTools {
		mcp.AddTool(wt.Tool, wt.Handler)
	}

	prompts := tools.Prompts()
	for _, p := range prompts {
		mcp.AddPrompt(p.Prompt, p.Handler)
	}

	logger := slog.Default().With("component", "server")
	logger.Info("MCP server assembled",
		"entity_tools", len(entityTools),
		"workflow_tools", len(workflowTools),
		"prompts", len(prompts),
	)

	return &Server{
		cfg:     cfg,
		mcp:     mcp,
		metrics: metrics,
		logger:  logger,
	}
}

// Run serves until the context is cancelled or the transport ends.
func (s *Server) Run(ctx context.Context) error {
	switch s.cfg.Server.Transport {
	case config.TransportHTTP:
		return s.serveHTTP(ctx)
	default:
		return s.serveStdio(ctx)
	}
}

// serveStdio speaks MCP over stdin/stdout. Logging must stay off stdout
// here; the protocol owns it.
func (s *Server) serveStdio(ctx context.Context) error {
	s.logger.Info("Serving MCP over stdio")
	stdio := mcpserver.NewStdioServer(s.mcp)
	return stdio.Listen(ctx, os.Stdin, os.Stdout)
}

func (s *Server) serveHTTP(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:    s.cfg.Server.Address(),
		Handler: s.httpHandler(),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("HTTP shutdown failed", "error", err)
		}
	}()

	s.logger.Info("Serving MCP over HTTP",
		"address", httpServer.Addr,
		"metrics", s.cfg.Server.MetricsEnabled(),
	)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// httpHandler builds the HTTP routing tree: the MCP endpoint plus the
// operational endpoints.
func (s *Server) httpHandler() http.Handler {
	r := chi.NewRouter()
	r.Use(s.requestLogging)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{
			"status":  "ok",
			"version": agiloftmcp.Version,
		})
	})
	if s.cfg.Server.MetricsEnabled() && s.metrics != nil {
		r.Get("/metrics", s.metrics.Handler().ServeHTTP)
	}
	r.Mount("/mcp", mcpserver.NewStreamableHTTPServer(s.mcp))

	return r
}

func (s *Server) requestLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug("HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"duration", time.Since(start),
		)
	})
}
