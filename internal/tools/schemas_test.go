package tools

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArgvOrdering(t *testing.T) {
	tests := []struct {
		name string
		req  Request
		want []string
	}{
		{
			name: "list",
			req:  ListRequest{ListName: "Active"},
			want: []string{"list", "Active", "--json"},
		},
		{
			name: "create without optionals",
			req:  CreateRequest{Title: "Buy milk", List: "Backlog"},
			want: []string{"add", "Buy milk", "--list", "Backlog"},
		},
		{
			name: "create with all fields",
			req:  CreateRequest{Title: "Pay rent", List: "Active", Due: Optional("tomorrow"), Notes: Optional("transfer")},
			want: []string{"add", "Pay rent", "--list", "Active", "--due", "tomorrow", "--notes", "transfer"},
		},
		{
			name: "create with notes only",
			req:  CreateRequest{Title: "Pay rent", List: "Active", Notes: Optional("transfer")},
			want: []string{"add", "Pay rent", "--list", "Active", "--notes", "transfer"},
		},
		{
			name: "edit notes only",
			req:  EditRequest{ID: "42", Notes: Optional("urgent")},
			want: []string{"edit", "42", "--notes", "urgent"},
		},
		{
			name: "edit all fields",
			req:  EditRequest{ID: "42", Title: Optional("New"), Due: Optional("2026-11-01"), Notes: Optional("urgent")},
			want: []string{"edit", "42", "--title", "New", "--due", "2026-11-01", "--notes", "urgent"},
		},
		{
			name: "edit with empty optionals",
			req:  EditRequest{ID: "42", Title: Optional(""), Notes: new(string)},
			want: []string{"edit", "42"},
		},
		{
			name: "edit id only",
			req:  EditRequest{ID: "42"},
			want: []string{"edit", "42"},
		},
		{
			name: "complete",
			req:  CompleteRequest{ID: "7"},
			want: []string{"complete", "7"},
		},
		{
			name: "delete",
			req:  DeleteRequest{ID: "7"},
			want: []string{"delete", "7", "--force"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.req.Argv())
		})
	}
}

func TestDescriptorsCoverEveryTool(t *testing.T) {
	descs := Descriptors()
	require.Len(t, descs, 5)

	for i, name := range Names() {
		assert.Equal(t, name, descs[i].Name)
		assert.NotEmpty(t, descs[i].Description)
		assert.Equal(t, "object", descs[i].InputSchema["type"])
	}
}

func TestDescriptorSchemaShape(t *testing.T) {
	d, ok := Lookup(ToolCreateReminder)
	require.True(t, ok)

	// Round-trip through JSON to inspect the schema the way a client sees it.
	data, err := json.Marshal(d)
	require.NoError(t, err)

	var doc struct {
		InputSchema struct {
			Properties map[string]struct {
				Type string   `json:"type"`
				Enum []string `json:"enum"`
			} `json:"properties"`
			Required []string `json:"required"`
		} `json:"inputSchema"`
	}
	require.NoError(t, json.Unmarshal(data, &doc))

	assert.ElementsMatch(t, []string{"title", "list"}, doc.InputSchema.Required)
	assert.Equal(t, []string{"Active", "Delegated", "Backlog"}, doc.InputSchema.Properties["list"].Enum)
	assert.Equal(t, "string", doc.InputSchema.Properties["due"].Type)
	assert.Contains(t, doc.InputSchema.Properties, "notes")
}

func TestLookupUnknown(t *testing.T) {
	_, ok := Lookup("reminders_archive")
	assert.False(t, ok)
}
