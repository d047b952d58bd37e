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

package agiloft

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"
)

const (
	// DefaultSafetyMargin is the lead time before token expiry at which a
	// credential request triggers a proactive refresh.
	DefaultSafetyMargin = 60 * time.Second

	// defaultTokenValidity matches the backend's token window when the login
	// response omits expires_in.
	defaultTokenValidityMinutes = 15
)

// SessionConfig configures a Session.
type SessionConfig struct {
	// BaseURL is the resolved Agiloft REST base URL.
	BaseURL string

	// Username, Password and KB are the login exchange inputs.
	Username string
	Password string
	KB       string

	// Language is sent with the login exchange (default "en").
	Language string

	// SafetyMargin overrides DefaultSafetyMargin.
	SafetyMargin time.Duration

	// HTTPClient overrides the client used for the login exchange.
	HTTPClient *http.Client

	// Now overrides the clock, for tests.
	Now func() time.Time
}

// Session owns the bearer credential for the Agiloft API. A credential
// handed out by Token is valid for at least the safety margin; when the
// backend nonetheless rejects it, ForceRefresh performs the single
// re-authentication of the reactive retry path.
//
// The mutex is held across the login exchange, so concurrent callers
// observe at most one in-flight authentication and reuse its result.
type Session struct {
	cfg    SessionConfig
	http   *http.Client
	now    func() time.Time
	logger *slog.Logger

	mu        sync.Mutex
	token     string
	expiresAt time.Time
}

// NewSession creates a session in the unauthenticated state. No network
// activity happens until the first credential request.
func NewSession(cfg SessionConfig) *Session {
	if cfg.SafetyMargin <= 0 {
		cfg.SafetyMargin = DefaultSafetyMargin
	}
	if cfg.Language == "" {
		cfg.Language = "en"
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Session{
		cfg:    cfg,
		http:   httpClient,
		now:    now,
		logger: slog.Default().With("component", "session"),
	}
}

// Token returns a bearer token valid for at least the safety margin,
// authenticating or refreshing first when needed.
func (s *Session) Token(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token != "" && s.now().Before(s.expiresAt.Add(-s.cfg.SafetyMargin)) {
		return s.token, nil
	}
	if err := s.loginLocked(ctx); err != nil {
		return "", err
	}
	return s.token, nil
}

// ForceRefresh discards the stale credential and performs exactly one
// re-authentication. When another caller already replaced the stale token,
// its result is reused instead of issuing a duplicate login.
func (s *Session) ForceRefresh(ctx context.Context, stale string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token != "" && s.token != stale {
		return s.token, nil
	}
	s.token = ""
	if err := s.loginLocked(ctx); err != nil {
		return "", err
	}
	return s.token, nil
}

// Logout invalidates the server-side session and drops the cached
// credential. Errors are reported but leave the session cleared.
func (s *Session) Logout(ctx context.Context) error {
	s.mu.Lock()
	token := s.token
	s.token = ""
	s.expiresAt = time.Time{}
	s.mu.Unlock()

	if token == "" {
		return nil
	}

	url := strings.TrimRight(s.cfg.BaseURL, "/") + "/logout"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := s.http.Do(req)
	if err != nil {
		return fmt.Errorf("logout failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("logout failed: HTTP %d", resp.StatusCode)
	}
	return nil
}

type loginResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Result  struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	} `json:"result"`
}

// loginLocked performs the login exchange. The caller must hold s.mu.
// The backend's refresh exchange is the same endpoint, so a failed refresh
// and a fresh login are one and the same path.
func (s *Session) loginLocked(ctx context.Context) error {
	body, err := json.Marshal(map[string]string{
		"login":    s.cfg.Username,
		"password": s.cfg.Password,
		"KB":       s.cfg.KB,
		"lang":     s.cfg.Language,
	})
	if err != nil {
		return err
	}

	url := strings.TrimRight(s.cfg.BaseURL, "/") + "/login"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	s.logger.Debug("Authenticating with Agiloft", "kb", s.cfg.KB, "username", s.cfg.Username)

	resp, err := s.http.Do(req)
	if err != nil {
		return &AuthenticationError{Message: "login endpoint unreachable", Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &AuthenticationError{Message: "failed to read login response", Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		return &AuthenticationError{
			Message:    strings.TrimSpace(string(raw)),
			StatusCode: resp.StatusCode,
		}
	}

	var parsed loginResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return &AuthenticationError{Message: "malformed login response", Err: err}
	}
	if !parsed.Success {
		msg := parsed.Message
		if msg == "" {
			msg = "unknown error"
		}
		return &AuthenticationError{Message: msg, StatusCode: resp.StatusCode}
	}
	if parsed.Result.AccessToken == "" {
		return &AuthenticationError{Message: "login response carried no access token"}
	}

	validity := parsed.Result.ExpiresIn
	if validity <= 0 {
		validity = defaultTokenValidityMinutes
	}

	s.token = parsed.Result.AccessToken
	s.expiresAt = s.now().Add(time.Duration(validity) * time.Minute)

	s.logger.Info("Authentication successful", "expires_at", s.expiresAt)
	return nil
}
