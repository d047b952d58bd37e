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

// Package tools generates the MCP tool surface from the entity registry and
// routes tool calls into the dispatcher.
package tools

import (
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/kadirpekel/agiloft-mcp/pkg/agiloft"
)

// EntityTool binds a generated MCP tool to the (entity, operation) pair it
// dispatches to.
type EntityTool struct {
	Tool      mcp.Tool
	EntityKey string
	Operation agiloft.Operation
}

// GenerateTools produces one MCP tool per supported (entity, operation) pair.
// Tool names follow the agiloft_{operation}_{entity} convention, with the
// plural entity key for search.
func GenerateTools(reg *agiloft.Registry) []EntityTool {
	var generated []EntityTool
	for _, key := range reg.Keys() {
		entity, err := reg.Lookup(key)
		if err != nil {
			continue
		}
		for _, op := range agiloft.AllOperations {
			if !entity.Supports(op) {
				continue
			}
			generated = append(generated, EntityTool{
				Tool:      buildTool(entity, op),
				EntityKey: entity.Key,
				Operation: op,
			})
		}
	}
	return generated
}

// ToolName returns the MCP tool name for an (entity, operation) pair.
func ToolName(e *agiloft.Entity, op agiloft.Operation) string {
	name := e.Key
	if op == agiloft.OpSearch {
		name = e.KeyPlural
	}
	return fmt.Sprintf("agiloft_%s_%s", op, name)
}

func buildTool(e *agiloft.Entity, op agiloft.Operation) mcp.Tool {
	lower := strings.ToLower(e.DisplayName)

	switch op {
	case agiloft.OpSearch:
		searchable := "key fields"
		if len(e.SearchFields) > 0 {
			searchable = strings.Join(e.SearchFields, ", ")
		}
		return tool(e, op,
			fmt.Sprintf("Search for %s in Agiloft. Use structured queries like "+
				"'status=Active AND field>value' or text search against %s. "+
				"Returns matching records with key fields.",
				strings.ToLower(e.DisplayNamePlural), searchable),
			schema(props{
				"query": prop("string", fmt.Sprintf(
					"Structured query (e.g. 'status=Active AND field>value') "+
						"or text to search in %s using LIKE matching", searchable)),
				"fields": arrayProp(fmt.Sprintf(
					"Fields to return. Defaults to: %s", strings.Join(e.DefaultFields, ", "))),
				"limit": props{
					"type":        "integer",
					"description": "Maximum results to return (default 50)",
					"default":     agiloft.DefaultSearchLimit,
					"minimum":     1,
					"maximum":     500,
				},
			}, "query"))

	case agiloft.OpGet:
		return tool(e, op,
			fmt.Sprintf("Retrieve a specific %s by ID with full details.", lower),
			schema(props{
				"record_id": recordIDProp(lower),
				"fields":    arrayProp("Specific fields to return. If omitted, returns all fields."),
			}, "record_id"))

	case agiloft.OpCreate:
		required := "none"
		if len(e.RequiredFields) > 0 {
			required = strings.Join(e.RequiredFields, ", ")
		}
		return tool(e, op,
			fmt.Sprintf("Create a new %s in Agiloft. Required fields: %s. "+
				"Key fields are shown in the schema; any valid Agiloft field can be included.",
				lower, required),
			schema(props{
				"data": dataSchema(e, fmt.Sprintf(
					"%s data. Key fields shown below; any valid Agiloft %s field can be included.",
					e.DisplayName, lower)),
			}, "data"))

	case agiloft.OpUpdate:
		return tool(e, op,
			fmt.Sprintf("Update an existing %s in Agiloft. Only include fields that need to be changed.", lower),
			schema(props{
				"record_id": recordIDProp(lower),
				"data":      dataSchema(e, fmt.Sprintf("Fields to update on the %s.", lower)),
			}, "record_id", "data"))

	case agiloft.OpDelete:
		return tool(e, op,
			fmt.Sprintf("Delete a %s from Agiloft. This is irreversible. "+
				"The delete_rule controls how dependent records are handled.", lower),
			schema(props{
				"record_id": recordIDProp(lower),
				"delete_rule": props{
					"type":        "string",
					"description": "How to handle dependent records",
					"enum":        deleteRuleValues(),
					"default":     string(agiloft.DefaultDeleteRule),
				},
			}, "record_id"))

	case agiloft.OpUpsert:
		return tool(e, op,
			fmt.Sprintf("Insert or update a %s. If a record matching the query exists, "+
				"updates it; otherwise creates a new one. Query format: fieldName~='value'.", lower),
			schema(props{
				"query": prop("string", "Match query: fieldName~='value' to find existing record"),
				"data":  dataSchema(e, fmt.Sprintf("%s data to insert or update.", e.DisplayName)),
			}, "query", "data"))

	case agiloft.OpAttachFile:
		return tool(e, op,
			fmt.Sprintf("Upload a file attachment to a %s record. Requires the record ID, "+
				"target field name, file name, and base64-encoded file content.", lower),
			schema(props{
				"record_id":           recordIDProp(lower),
				"field":               prop("string", "The file field name to attach to (e.g., 'attached_file')"),
				"file_name":           prop("string", "Name of the file being uploaded"),
				"file_content_base64": prop("string", "Base64-encoded file content"),
			}, "record_id", "field", "file_name", "file_content_base64"))

	case agiloft.OpRetrieveAttachment:
		return tool(e, op,
			fmt.Sprintf("Download an attachment from a %s record. Use get_attachment_info "+
				"first to find the correct field and file position.", lower),
			schema(props{
				"record_id":     recordIDProp(lower),
				"field":         prop("string", "The file field name to retrieve from"),
				"file_position": filePositionProp("Position of the file in the field (0-based, default 0)"),
			}, "record_id", "field"))

	case agiloft.OpRemoveAttachment:
		return tool(e, op,
			fmt.Sprintf("Remove an attachment from a %s record's file field. "+
				"Use get_attachment_info first to confirm the file position.", lower),
			schema(props{
				"record_id":     recordIDProp(lower),
				"field":         prop("string", "The file field name to remove from"),
				"file_position": filePositionProp("Position of the file to remove (0-based, default 0)"),
			}, "record_id", "field"))

	case agiloft.OpAttachmentInfo:
		return tool(e, op,
			fmt.Sprintf("Get metadata about files attached to a %s record's file field, "+
				"including file names, sizes, and positions. Use this before "+
				"retrieve_attachment to find the correct file position.", lower),
			schema(props{
				"record_id": recordIDProp(lower),
				"field":     prop("string", "The file field name to get info for"),
			}, "record_id", "field"))

	case agiloft.OpActionButton:
		return tool(e, op,
			fmt.Sprintf("Trigger an action button on a %s record. "+
				"Executes the named workflow action button.", lower),
			schema(props{
				"record_id":   recordIDProp(lower),
				"button_name": prop("string", "Name of the action button to trigger"),
			}, "record_id", "button_name"))

	case agiloft.OpEvaluateFormat:
		return tool(e, op,
			fmt.Sprintf("Evaluate a formula/format expression against a %s record. "+
				"Returns the computed result.", lower),
			schema(props{
				"record_id": recordIDProp(lower),
				"formula":   prop("string", "Agiloft formula expression to evaluate"),
			}, "record_id", "formula"))
	}

	return mcp.Tool{}
}

// Schema helpers, shared with the workflow tools.

type props = map[string]any

func tool(e *agiloft.Entity, op agiloft.Operation, description string, inputSchema mcp.ToolInputSchema) mcp.Tool {
	return mcp.Tool{
		Name:        ToolName(e, op),
		Description: description,
		InputSchema: inputSchema,
	}
}

func schema(properties props, required ...string) mcp.ToolInputSchema {
	return mcp.ToolInputSchema{
		Type:       "object",
		Properties: properties,
		Required:   required,
	}
}

func prop(typ, description string) props {
	return props{"type": typ, "description": description}
}

func arrayProp(description string) props {
	return props{
		"type":        "array",
		"items":       props{"type": "string"},
		"description": description,
	}
}

func recordIDProp(lower string) props {
	return props{
		"type":        "integer",
		"description": fmt.Sprintf("The ID of the %s record", lower),
		"minimum":     1,
	}
}

func filePositionProp(description string) props {
	return props{
		"type":        "integer",
		"description": description,
		"default":     0,
		"minimum":     0,
	}
}

// dataSchema builds a data object schema with the entity's key fields plus
// additionalProperties for the rest of the backend's field surface.
func dataSchema(e *agiloft.Entity, description string) props {
	properties := props{}
	for name, field := range e.Fields {
		properties[name] = prop(field.Type, field.Description)
	}
	return props{
		"type":                 "object",
		"description":          description,
		"properties":           properties,
		"additionalProperties": true,
	}
}

func deleteRuleValues() []string {
	values := make([]string, len(agiloft.DeleteRules))
	for i, r := range agiloft.DeleteRules {
		values[i] = string(r)
	}
	return values
}
