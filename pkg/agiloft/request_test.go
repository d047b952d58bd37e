package agiloft

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildRequest_Paths(t *testing.T) {
	e := testEntity()

	tests := []struct {
		name       string
		op         Operation
		args       Args
		wantMethod string
		wantPath   string
	}{
		{
			name:       "search",
			op:         OpSearch,
			args:       Args{Query: "name~='acme'"},
			wantMethod: http.MethodPost,
			wantPath:   "/widget/search",
		},
		{
			name:       "get",
			op:         OpGet,
			args:       Args{RecordID: 12},
			wantMethod: http.MethodGet,
			wantPath:   "/widget/12",
		},
		{
			name:       "create",
			op:         OpCreate,
			args:       Args{Data: map[string]any{"name": "x"}},
			wantMethod: http.MethodPost,
			wantPath:   "/widget",
		},
		{
			name:       "update",
			op:         OpUpdate,
			args:       Args{RecordID: 12, Data: map[string]any{"name": "x"}},
			wantMethod: http.MethodPut,
			wantPath:   "/widget/12",
		},
		{
			name:       "delete",
			op:         OpDelete,
			args:       Args{RecordID: 12},
			wantMethod: http.MethodDelete,
			wantPath:   "/widget/12",
		},
		{
			name:       "upsert",
			op:         OpUpsert,
			args:       Args{Query: "name='x'", Data: map[string]any{"name": "x"}},
			wantMethod: http.MethodPost,
			wantPath:   "/widget/upsert",
		},
		{
			name:       "attach_file",
			op:         OpAttachFile,
			args:       Args{RecordID: 12, Field: "doc", FileName: "a.pdf", FileContent: []byte("x")},
			wantMethod: http.MethodPost,
			wantPath:   "/widget/attach/12",
		},
		{
			name:       "retrieve_attachment",
			op:         OpRetrieveAttachment,
			args:       Args{RecordID: 12, Field: "doc"},
			wantMethod: http.MethodPost,
			wantPath:   "/widget/retrieveAttach/12",
		},
		{
			name:       "remove_attachment",
			op:         OpRemoveAttachment,
			args:       Args{RecordID: 12, Field: "doc", FilePosition: 1},
			wantMethod: http.MethodPost,
			wantPath:   "/widget/removeAttach/12",
		},
		{
			name:       "attachment_info",
			op:         OpAttachmentInfo,
			args:       Args{RecordID: 12, Field: "doc"},
			wantMethod: http.MethodPost,
			wantPath:   "/widget/attachInfo/12",
		},
		{
			name:       "action_button",
			op:         OpActionButton,
			args:       Args{RecordID: 12, ButtonName: "Approve"},
			wantMethod: http.MethodPost,
			wantPath:   "/widget/actionButton/12",
		},
		{
			name:       "evaluate_format",
			op:         OpEvaluateFormat,
			args:       Args{RecordID: 12, Formula: "$amount * 2"},
			wantMethod: http.MethodPost,
			wantPath:   "/widget/evaluateFormat/12",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := BuildRequest(e, tt.op, tt.args)
			require.NoError(t, err)
			assert.Equal(t, tt.wantMethod, req.Method)
			assert.Equal(t, tt.wantPath, req.Path)
			assert.Equal(t, "widget", req.Entity)
			assert.Equal(t, tt.op, req.Operation)
		})
	}
}

func TestBuildRequest_SearchBody(t *testing.T) {
	e := testEntity()

	req, err := BuildRequest(e, OpSearch, Args{Query: "acme"})
	require.NoError(t, err)

	// The backend honors only the query body field; search must stay empty.
	assert.Equal(t, "", req.Body["search"])
	assert.Equal(t, "acme", req.Body["query"])
	assert.Equal(t, []string{"id", "name"}, req.Body["field"], "default projection applies")

	req, err = BuildRequest(e, OpSearch, Args{Query: "acme", Fields: []string{"name"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"name"}, req.Body["field"])
}

func TestBuildRequest_LinkedFieldTransform(t *testing.T) {
	e := testEntity()

	req, err := BuildRequest(e, OpCreate, Args{Data: map[string]any{
		"name":  "Widget A",
		"owner": "Acme",
	}})
	require.NoError(t, err)
	assert.Equal(t, ":Acme", req.Body["owner"], "linked values get the relation marker")
	assert.Equal(t, "Widget A", req.Body["name"], "plain fields pass through")

	// An already-prefixed value is not double-prefixed.
	req, err = BuildRequest(e, OpCreate, Args{Data: map[string]any{"owner": ":Acme"}})
	require.NoError(t, err)
	assert.Equal(t, ":Acme", req.Body["owner"])
}

func TestBuildRequest_EmptyValuesStripped(t *testing.T) {
	e := testEntity()

	req, err := BuildRequest(e, OpCreate, Args{Data: map[string]any{
		"name":  "Widget A",
		"owner": "",
		"notes": nil,
	}})
	require.NoError(t, err)

	_, hasOwner := req.Body["owner"]
	_, hasNotes := req.Body["notes"]
	assert.False(t, hasOwner, "empty linked values must be dropped, not sent")
	assert.False(t, hasNotes)
	assert.Equal(t, "Widget A", req.Body["name"])
}

func TestBuildRequest_UpsertRequiresQuery(t *testing.T) {
	e := testEntity()

	_, err := BuildRequest(e, OpUpsert, Args{Data: map[string]any{"name": "x"}})
	require.Error(t, err)
	var invalid *InvalidArgumentError
	require.True(t, errors.As(err, &invalid))
	assert.Equal(t, OpUpsert, invalid.Operation)

	req, err := BuildRequest(e, OpUpsert, Args{Query: "name~='x'", Data: map[string]any{"name": "x"}})
	require.NoError(t, err)
	assert.Equal(t, "name~='x'", req.Query.Get("query"))
}

func TestBuildRequest_DeleteRule(t *testing.T) {
	e := testEntity()

	req, err := BuildRequest(e, OpDelete, Args{RecordID: 5})
	require.NoError(t, err)
	assert.Equal(t, string(DeleteRuleUnlinkElseDelete), req.Query.Get("deleteRule"))

	req, err = BuildRequest(e, OpDelete, Args{RecordID: 5, DeleteRule: "ERROR_IF_DEPENDANTS"})
	require.NoError(t, err)
	assert.Equal(t, "ERROR_IF_DEPENDANTS", req.Query.Get("deleteRule"))

	_, err = BuildRequest(e, OpDelete, Args{RecordID: 5, DeleteRule: "DROP_TABLE"})
	require.Error(t, err)
	var invalid *InvalidArgumentError
	assert.True(t, errors.As(err, &invalid))
}

func TestBuildRequest_MissingRecordID(t *testing.T) {
	e := testEntity()

	for _, op := range []Operation{OpGet, OpUpdate, OpDelete, OpAttachFile, OpRetrieveAttachment, OpRemoveAttachment, OpAttachmentInfo, OpActionButton, OpEvaluateFormat} {
		_, err := BuildRequest(e, op, Args{})
		require.Error(t, err, "operation %s", op)
		var invalid *InvalidArgumentError
		assert.True(t, errors.As(err, &invalid), "operation %s", op)
	}
}

func TestBuildRequest_AttachmentArguments(t *testing.T) {
	e := testEntity()

	_, err := BuildRequest(e, OpAttachFile, Args{RecordID: 1, FileName: "a.pdf", FileContent: []byte("x")})
	require.Error(t, err, "field is required")

	_, err = BuildRequest(e, OpAttachFile, Args{RecordID: 1, Field: "doc", FileContent: []byte("x")})
	require.Error(t, err, "file_name is required")

	_, err = BuildRequest(e, OpAttachFile, Args{RecordID: 1, Field: "doc", FileName: "a.pdf"})
	require.Error(t, err, "content is required")

	req, err := BuildRequest(e, OpAttachFile, Args{RecordID: 1, Field: "doc", FileName: "a.pdf", FileContent: []byte("data")})
	require.NoError(t, err)
	assert.Equal(t, "doc", req.Query.Get("field"))
	assert.Equal(t, "a.pdf", req.Query.Get("fileName"))
	require.NotNil(t, req.File)
	assert.Equal(t, []byte("data"), req.File.Content)

	req, err = BuildRequest(e, OpRetrieveAttachment, Args{RecordID: 1, Field: "doc", FilePosition: 2})
	require.NoError(t, err)
	assert.Equal(t, "2", req.Query.Get("filePosition"))
}
