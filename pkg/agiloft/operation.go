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
	"fmt"
	"strconv"
)

// Operation identifies one of the uniform operations an entity can support.
// Each operation has a fixed HTTP method and path shape, independent of the
// entity it is applied to.
type Operation string

const (
	OpSearch             Operation = "search"
	OpGet                Operation = "get"
	OpCreate             Operation = "create"
	OpUpdate             Operation = "update"
	OpDelete             Operation = "delete"
	OpUpsert             Operation = "upsert"
	OpAttachFile         Operation = "attach_file"
	OpRetrieveAttachment Operation = "retrieve_attachment"
	OpRemoveAttachment   Operation = "remove_attachment"
	OpAttachmentInfo     Operation = "get_attachment_info"
	OpActionButton       Operation = "action_button"
	OpEvaluateFormat     Operation = "evaluate_format"
)

// AllOperations lists every operation in a stable order, used when an entity
// supports the full surface.
var AllOperations = []Operation{
	OpSearch, OpGet, OpCreate, OpUpdate, OpDelete, OpUpsert,
	OpAttachFile, OpRetrieveAttachment, OpRemoveAttachment,
	OpAttachmentInfo, OpActionButton, OpEvaluateFormat,
}

// DeleteRule controls how dependent records are handled on delete.
type DeleteRule string

const (
	DeleteRuleError               DeleteRule = "ERROR_IF_DEPENDANTS"
	DeleteRuleApplyWherePossible  DeleteRule = "APPLY_DELETE_WHERE_POSSIBLE"
	DeleteRuleDeleteElseUnlink    DeleteRule = "DELETE_WHERE_POSSIBLE_OTHERWISE_UNLINK"
	DeleteRuleUnlinkElseDelete    DeleteRule = "UNLINK_WHERE_POSSIBLE_OTHERWISE_DELETE"
	DefaultDeleteRule                        = DeleteRuleUnlinkElseDelete
)

// DeleteRules lists the delete strategies accepted by the backend.
var DeleteRules = []DeleteRule{
	DeleteRuleError,
	DeleteRuleApplyWherePossible,
	DeleteRuleDeleteElseUnlink,
	DeleteRuleUnlinkElseDelete,
}

// ValidDeleteRule reports whether rule is one of the accepted strategies.
func ValidDeleteRule(rule DeleteRule) bool {
	for _, r := range DeleteRules {
		if r == rule {
			return true
		}
	}
	return false
}

// Record is a raw Agiloft record as returned by the backend.
type Record map[string]any

// ID returns the record identifier, or 0 when the record carries none.
// JSON decoding yields float64 for numbers, but the backend occasionally
// returns identifiers as strings.
func (r Record) ID() int64 {
	switch v := r["id"].(type) {
	case float64:
		return int64(v)
	case int64:
		return v
	case int:
		return int64(v)
	case string:
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0
		}
		return id
	default:
		return 0
	}
}

// Args carries the caller-supplied inputs for a single operation. Only the
// fields relevant to the requested operation are consulted.
type Args struct {
	// Query is the search query (search) or the upsert match query (upsert).
	Query string `mapstructure:"query"`

	// Fields selects the projection for search and get.
	Fields []string `mapstructure:"fields"`

	// Limit caps the number of search results. Zero means the default (50).
	Limit int `mapstructure:"limit"`

	// RecordID targets a specific record for id-scoped operations.
	RecordID int64 `mapstructure:"record_id"`

	// Data is the field map for create, update and upsert.
	Data map[string]any `mapstructure:"data"`

	// DeleteRule selects the dependent-record strategy for delete.
	DeleteRule string `mapstructure:"delete_rule"`

	// Field names the file field for attachment operations.
	Field string `mapstructure:"field"`

	// FileName is the name of the uploaded file for attach_file.
	FileName string `mapstructure:"file_name"`

	// FileContent is the raw file payload for attach_file.
	FileContent []byte `mapstructure:"-"`

	// FilePosition selects one file within a multi-file field.
	FilePosition int `mapstructure:"file_position"`

	// ButtonName names the action button to trigger.
	ButtonName string `mapstructure:"button_name"`

	// Formula is the expression for evaluate_format.
	Formula string `mapstructure:"formula"`
}

// Result is the normalized outcome of a dispatched operation.
type Result struct {
	Entity    string    `json:"entity"`
	Operation Operation `json:"operation"`

	// RecordID is set for id-scoped operations.
	RecordID int64 `json:"record_id,omitempty"`

	// Records holds search results.
	Records []Record `json:"records,omitempty"`

	// Data holds the backend payload for single-record operations.
	Data any `json:"data,omitempty"`
}

func (r *Result) String() string {
	if r.Records != nil {
		return fmt.Sprintf("%s %s: %d records", r.Entity, r.Operation, len(r.Records))
	}
	return fmt.Sprintf("%s %s", r.Entity, r.Operation)
}
