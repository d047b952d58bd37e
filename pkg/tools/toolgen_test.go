package tools

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kadirpekel/agiloft-mcp/pkg/agiloft"
)

func findTool(t *testing.T, generated []EntityTool, name string) EntityTool {
	t.Helper()
	for _, g := range generated {
		if g.Tool.Name == name {
			return g
		}
	}
	t.Fatalf("tool %q not generated", name)
	return EntityTool{}
}

func TestToolName_PluralForSearch(t *testing.T) {
	reg := agiloft.MustDefaultRegistry()
	contract, err := reg.Lookup("contract")
	require.NoError(t, err)

	assert.Equal(t, "agiloft_search_contracts", ToolName(contract, agiloft.OpSearch))
	assert.Equal(t, "agiloft_get_contract", ToolName(contract, agiloft.OpGet))
	assert.Equal(t, "agiloft_get_attachment_info_contract", ToolName(contract, agiloft.OpAttachmentInfo))

	company, err := reg.Lookup("company")
	require.NoError(t, err)
	assert.Equal(t, "agiloft_search_companies", ToolName(company, agiloft.OpSearch))
}

func TestGenerateTools_CoversSupportedOperations(t *testing.T) {
	reg := agiloft.MustDefaultRegistry()
	generated := GenerateTools(reg)

	want := 0
	for _, e := range reg.Entities() {
		want += len(e.Operations)
	}
	assert.Len(t, generated, want)

	seen := map[string]bool{}
	for _, g := range generated {
		require.NotEmpty(t, g.Tool.Name)
		require.NotEmpty(t, g.Tool.Description)
		assert.Falsef(t, seen[g.Tool.Name], "duplicate tool name %s", g.Tool.Name)
		seen[g.Tool.Name] = true

		entity, err := reg.Lookup(g.EntityKey)
		require.NoError(t, err)
		assert.True(t, entity.Supports(g.Operation))
	}
}

func TestGenerateTools_SearchSchema(t *testing.T) {
	generated := GenerateTools(agiloft.MustDefaultRegistry())
	search := findTool(t, generated, "agiloft_search_contracts")

	assert.Equal(t, "object", search.Tool.InputSchema.Type)
	assert.Equal(t, []string{"query"}, search.Tool.InputSchema.Required)

	limit, ok := search.Tool.InputSchema.Properties["limit"].(props)
	require.True(t, ok)
	assert.Equal(t, agiloft.DefaultSearchLimit, limit["default"])
	assert.Equal(t, 500, limit["maximum"])
}

func TestGenerateTools_DeleteSchemaEnumeratesRules(t *testing.T) {
	generated := GenerateTools(agiloft.MustDefaultRegistry())
	del := findTool(t, generated, "agiloft_delete_contract")

	rule, ok := del.Tool.InputSchema.Properties["delete_rule"].(props)
	require.True(t, ok)

	enum, ok := rule["enum"].([]string)
	require.True(t, ok)
	assert.Len(t, enum, len(agiloft.DeleteRules))
	assert.Contains(t, enum, string(agiloft.DefaultDeleteRule))
	assert.Equal(t, string(agiloft.DefaultDeleteRule), rule["default"])
}

func TestGenerateTools_AttachFileSchema(t *testing.T) {
	generated := GenerateTools(agiloft.MustDefaultRegistry())
	attach := findTool(t, generated, "agiloft_attach_file_attachment")

	assert.ElementsMatch(t,
		[]string{"record_id", "field", "file_name", "file_content_base64"},
		attach.Tool.InputSchema.Required)
}

func TestGenerateTools_CreateSchemaExposesEntityFields(t *testing.T) {
	reg := agiloft.MustDefaultRegistry()
	generated := GenerateTools(reg)
	create := findTool(t, generated, "agiloft_create_contract")

	assert.Equal(t, []string{"data"}, create.Tool.InputSchema.Required)

	data, ok := create.Tool.InputSchema.Properties["data"].(props)
	require.True(t, ok)
	assert.Equal(t, true, data["additionalProperties"])

	fields, ok := data["properties"].(props)
	require.True(t, ok)
	contract, err := reg.Lookup("contract")
	require.NoError(t, err)
	for name := range contract.Fields {
		assert.Contains(t, fields, name, fmt.Sprintf("field %s missing from create schema", name))
	}
}
