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

package main

import (
	"context"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/kadirpekel/agiloft-mcp/pkg/agiloft"
	"github.com/kadirpekel/agiloft-mcp/pkg/config"
	"github.com/kadirpekel/agiloft-mcp/pkg/server"
)

// ServeCmd starts the MCP server.
type ServeCmd struct {
	Transport string `help:"MCP transport (stdio, http). Overrides the config file."`
	Port      int    `help:"HTTP port to listen on. Overrides the config file."`
}

func (c *ServeCmd) Run(cli *CLI) error {
	cfg, err := cli.loadConfig()
	if err != nil {
		return err
	}
	if c.Transport != "" {
		cfg.Server.Transport = config.TransportType(c.Transport)
	}
	if c.Port != 0 {
		cfg.Server.Port = c.Port
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	cleanup, err := initLogging(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	session := agiloft.NewSession(agiloft.SessionConfig{
		BaseURL:      cfg.Agiloft.BaseURL,
		Username:     cfg.Agiloft.Username,
		Password:     cfg.Agiloft.Password,
		KB:           cfg.Agiloft.KB,
		Language:     cfg.Agiloft.Language,
		SafetyMargin: cfg.Agiloft.TokenSafetyMargin,
		HTTPClient:   &http.Client{Timeout: cfg.Agiloft.Timeout},
	})
	client := agiloft.NewClient(cfg.Agiloft.BaseURL, session,
		agiloft.WithHTTPClient(&http.Client{Timeout: cfg.Agiloft.Timeout}),
		agiloft.WithLanguage(cfg.Agiloft.Language),
	)

	metrics := server.NewMetrics()
	dispatcher := agiloft.NewDispatcher(
		agiloft.MustDefaultRegistry(),
		client,
		agiloft.WithRecorder(metrics),
	)

	srv := server.New(cfg, dispatcher, metrics)
	runErr := srv.Run(ctx)

	// Best-effort server-side session invalidation on the way out.
	logoutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := session.Logout(logoutCtx); err != nil {
		slog.Warn("Logout failed", "error", err)
	}

	return runErr
}
