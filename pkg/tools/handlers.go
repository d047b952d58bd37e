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

package tools

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mitchellh/mapstructure"

	"github.com/kadirpekel/agiloft-mcp/pkg/agiloft"
)

// Handler turns generated entity tools into MCP tool handlers backed by the
// dispatcher.
type Handler struct {
	dispatcher *agiloft.Dispatcher
	logger     *slog.Logger
}

// NewHandler creates a Handler over the dispatcher.
func NewHandler(dispatcher *agiloft.Dispatcher) *Handler {
	return &Handler{
		dispatcher: dispatcher,
		logger:     slog.Default().With("component", "tools"),
	}
}

// Bind returns the MCP handler func for one generated entity tool. Every
// failure is reported inside the tool result envelope; a protocol-level error
// is reserved for malformed argument payloads.
func (h *Handler) Bind(t EntityTool) func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, err := DecodeArgs(req.GetArguments())
		if err != nil {
			return errorResult(t.Operation, t.EntityKey, err.Error(), 0), nil
		}

		result, err := h.dispatcher.Execute(ctx, t.EntityKey, t.Operation, args)
		if err != nil {
			return errorResult(t.Operation, t.EntityKey, err.Error(), args.RecordID), nil
		}
		return successResult(result), nil
	}
}

// DecodeArgs converts raw MCP tool arguments into dispatcher Args. The
// file payload arrives base64-encoded and is decoded here.
func DecodeArgs(raw map[string]any) (agiloft.Args, error) {
	var args agiloft.Args
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &args,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return args, fmt.Errorf("failed to create decoder: %w", err)
	}
	if err := decoder.Decode(raw); err != nil {
		return args, fmt.Errorf("invalid arguments: %w", err)
	}

	if encoded, ok := raw["file_content_base64"].(string); ok && encoded != "" {
		content, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			return args, fmt.Errorf("invalid base64 content: %w", err)
		}
		args.FileContent = content
	}

	return args, nil
}

// successResult renders the standard success envelope as a text result.
func successResult(result *agiloft.Result) *mcp.CallToolResult {
	envelope := map[string]any{
		"success":   true,
		"operation": result.Operation,
		"entity":    result.Entity,
	}
	if result.RecordID != 0 {
		envelope["record_id"] = result.RecordID
	}
	if result.Records != nil {
		envelope["count"] = len(result.Records)
		envelope["data"] = result.Records
	} else {
		envelope["data"] = result.Data
	}
	return mcp.NewToolResultText(marshalEnvelope(envelope))
}

// errorResult renders the standard error envelope. Dispatch failures are tool
// results, not protocol errors: the calling agent is expected to read them
// and adjust.
func errorResult(op agiloft.Operation, entity, message string, recordID int64) *mcp.CallToolResult {
	envelope := map[string]any{
		"success":   false,
		"operation": op,
		"entity":    entity,
		"error":     message,
	}
	if recordID != 0 {
		envelope["record_id"] = recordID
	}
	return mcp.NewToolResultText(marshalEnvelope(envelope))
}

func marshalEnvelope(envelope map[string]any) string {
	data, err := json.MarshalIndent(envelope, "", "  ")
	if err != nil {
		return fmt.Sprintf(`{"success": false, "error": %q}`, err.Error())
	}
	return string(data)
}
