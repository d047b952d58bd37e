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
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// Request is a fully built backend invocation, ready for Client.Execute.
// Entity, Operation and RecordID ride along for error context only.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   map[string]any
	File   *FilePayload

	Entity    string
	Operation Operation
	RecordID  int64
}

// FilePayload carries raw attachment bytes. Contents are never inspected.
type FilePayload struct {
	Name    string
	Content []byte
}

// BuildRequest translates (entity, operation, args) into a concrete REST
// invocation. It performs only local, pre-flight work: argument validation
// and the backend's mandatory value transforms. Nothing is sent.
func BuildRequest(e *Entity, op Operation, args Args) (*Request, error) {
	req := &Request{
		Query:     url.Values{},
		Entity:    e.Key,
		Operation: op,
		RecordID:  args.RecordID,
	}

	switch op {
	case OpSearch:
		req.Method = http.MethodPost
		req.Path = e.Path + "/search"
		fields := args.Fields
		if len(fields) == 0 {
			fields = e.DefaultFields
		}
		// Only the query body field is honored by the backend; the search
		// body field is documented to be rejected and must stay empty.
		req.Body = map[string]any{
			"search": "",
			"field":  fields,
			"query":  args.Query,
		}

	case OpGet:
		if err := requireRecordID(op, args); err != nil {
			return nil, err
		}
		req.Method = http.MethodGet
		req.Path = recordPath(e, args.RecordID)
		if len(args.Fields) > 0 {
			req.Query.Set("fields", strings.Join(args.Fields, ","))
		}

	case OpCreate:
		req.Method = http.MethodPost
		req.Path = e.Path
		req.Body = encodeFields(e, args.Data)

	case OpUpdate:
		if err := requireRecordID(op, args); err != nil {
			return nil, err
		}
		req.Method = http.MethodPut
		req.Path = recordPath(e, args.RecordID)
		req.Body = encodeFields(e, args.Data)

	case OpDelete:
		if err := requireRecordID(op, args); err != nil {
			return nil, err
		}
		rule := DeleteRule(args.DeleteRule)
		if rule == "" {
			rule = DefaultDeleteRule
		}
		if !ValidDeleteRule(rule) {
			return nil, &InvalidArgumentError{Operation: op, Reason: fmt.Sprintf("unknown delete rule %q", args.DeleteRule)}
		}
		req.Method = http.MethodDelete
		req.Path = recordPath(e, args.RecordID)
		req.Query.Set("deleteRule", string(rule))

	case OpUpsert:
		// The match query is a required caller input, never synthesized
		// from the body.
		if strings.TrimSpace(args.Query) == "" {
			return nil, &InvalidArgumentError{Operation: op, Reason: "upsert requires a match query (e.g. field~='value')"}
		}
		req.Method = http.MethodPost
		req.Path = e.Path + "/upsert"
		req.Query.Set("query", args.Query)
		req.Body = encodeFields(e, args.Data)

	case OpAttachFile:
		if err := requireRecordID(op, args); err != nil {
			return nil, err
		}
		if args.Field == "" {
			return nil, &InvalidArgumentError{Operation: op, Reason: "field is required"}
		}
		if args.FileName == "" {
			return nil, &InvalidArgumentError{Operation: op, Reason: "file_name is required"}
		}
		if len(args.FileContent) == 0 {
			return nil, &InvalidArgumentError{Operation: op, Reason: "file content is empty"}
		}
		req.Method = http.MethodPost
		req.Path = subPath(e, "attach", args.RecordID)
		req.Query.Set("field", args.Field)
		req.Query.Set("fileName", args.FileName)
		req.File = &FilePayload{Name: args.FileName, Content: args.FileContent}

	case OpRetrieveAttachment:
		return attachmentRequest(e, op, args, "retrieveAttach", true)

	case OpRemoveAttachment:
		return attachmentRequest(e, op, args, "removeAttach", true)

	case OpAttachmentInfo:
		return attachmentRequest(e, op, args, "attachInfo", false)

	case OpActionButton:
		if err := requireRecordID(op, args); err != nil {
			return nil, err
		}
		if args.ButtonName == "" {
			return nil, &InvalidArgumentError{Operation: op, Reason: "button_name is required"}
		}
		req.Method = http.MethodPost
		req.Path = subPath(e, "actionButton", args.RecordID)
		req.Query.Set("name", args.ButtonName)

	case OpEvaluateFormat:
		if err := requireRecordID(op, args); err != nil {
			return nil, err
		}
		if args.Formula == "" {
			return nil, &InvalidArgumentError{Operation: op, Reason: "formula is required"}
		}
		req.Method = http.MethodPost
		req.Path = subPath(e, "evaluateFormat", args.RecordID)
		req.Body = map[string]any{"formula": args.Formula}

	default:
		return nil, &InvalidArgumentError{Operation: op, Reason: "unknown operation"}
	}

	return req, nil
}

func attachmentRequest(e *Entity, op Operation, args Args, segment string, withPosition bool) (*Request, error) {
	if err := requireRecordID(op, args); err != nil {
		return nil, err
	}
	if args.Field == "" {
		return nil, &InvalidArgumentError{Operation: op, Reason: "field is required"}
	}
	req := &Request{
		Method:    http.MethodPost,
		Path:      subPath(e, segment, args.RecordID),
		Query:     url.Values{},
		Entity:    e.Key,
		Operation: op,
		RecordID:  args.RecordID,
	}
	req.Query.Set("field", args.Field)
	if withPosition {
		req.Query.Set("filePosition", strconv.Itoa(args.FilePosition))
	}
	return req, nil
}

func requireRecordID(op Operation, args Args) error {
	if args.RecordID <= 0 {
		return &InvalidArgumentError{Operation: op, Reason: "record_id is required"}
	}
	return nil
}

func recordPath(e *Entity, id int64) string {
	return fmt.Sprintf("%s/%d", e.Path, id)
}

func subPath(e *Entity, segment string, id int64) string {
	return fmt.Sprintf("%s/%s/%d", e.Path, segment, id)
}

// encodeFields applies the backend's mandatory value transforms to an
// outgoing field map: empty values are dropped (the backend rejects empty
// strings on linked fields, and treats absence as "no value"), and linked
// field values are prefixed with the ":" relation marker.
func encodeFields(e *Entity, data map[string]any) map[string]any {
	out := make(map[string]any, len(data))
	for k, v := range data {
		if v == nil || v == "" {
			continue
		}
		if s, ok := v.(string); ok && e.IsLinked(k) && !strings.HasPrefix(s, ":") {
			v = ":" + s
		}
		out[k] = v
	}
	return out
}
