// Package tools defines the five reminder tools exposed over MCP: their
// names, typed request variants, JSON input schemas and the argument
// vectors they translate to.
package tools

import (
	"github.com/localrivet/remindersmcp/internal/reminders"
)

const (
	// ToolListReminders is the name of the reminders_list MCP tool
	ToolListReminders = "reminders_list"

	// ToolCreateReminder is the name of the reminders_create MCP tool
	ToolCreateReminder = "reminders_create"

	// ToolEditReminder is the name of the reminders_edit MCP tool
	ToolEditReminder = "reminders_edit"

	// ToolCompleteReminder is the name of the reminders_complete MCP tool
	ToolCompleteReminder = "reminders_complete"

	// ToolDeleteReminder is the name of the reminders_delete MCP tool
	ToolDeleteReminder = "reminders_delete"
)

// Names returns the tool names in the order they are advertised.
func Names() []string {
	return []string{
		ToolListReminders,
		ToolCreateReminder,
		ToolEditReminder,
		ToolCompleteReminder,
		ToolDeleteReminder,
	}
}

// Request is one validated tool invocation. The set of implementations is
// closed: ListRequest, CreateRequest, EditRequest, CompleteRequest and
// DeleteRequest.
type Request interface {
	// Tool returns the MCP tool name.
	Tool() string

	// Argv returns the remindctl argument vector for this request.
	Argv() []string

	isRequest()
}

// ListRequest defines the input schema for reminders_list tool
type ListRequest struct {
	// ListName is the list to read
	ListName string `json:"listName" required:"true" enum:"Active,Delegated,Backlog" description:"The name of the list to retrieve reminders from"`
}

// CreateRequest defines the input schema for reminders_create tool.
// Optional fields are pointers so they are not advertised as required.
type CreateRequest struct {
	Title string `json:"title" required:"true" minLength:"1" description:"The title of the reminder"`
	List  string `json:"list" required:"true" enum:"Active,Delegated,Backlog" description:"The list to add the reminder to"`

	// Due is passed through to remindctl unparsed
	Due   *string `json:"due,omitempty" description:"Due date (YYYY-MM-DD or natural language like 'tomorrow')"`
	Notes *string `json:"notes,omitempty" description:"Notes for the reminder"`
}

// EditRequest defines the input schema for reminders_edit tool.
// Every field but ID is optional; absent or empty fields are left untouched.
type EditRequest struct {
	ID    string  `json:"id" required:"true" minLength:"1" description:"The ID of the reminder to edit"`
	Title *string `json:"title,omitempty" description:"New title"`
	Due   *string `json:"due,omitempty" description:"New due date"`
	Notes *string `json:"notes,omitempty" description:"New notes"`
}

// CompleteRequest defines the input schema for reminders_complete tool
type CompleteRequest struct {
	ID string `json:"id" required:"true" minLength:"1" description:"The ID of the reminder to complete"`
}

// DeleteRequest defines the input schema for reminders_delete tool
type DeleteRequest struct {
	ID string `json:"id" required:"true" minLength:"1" description:"The ID of the reminder to delete"`
}

func (ListRequest) Tool() string     { return ToolListReminders }
func (CreateRequest) Tool() string   { return ToolCreateReminder }
func (EditRequest) Tool() string     { return ToolEditReminder }
func (CompleteRequest) Tool() string { return ToolCompleteReminder }
func (DeleteRequest) Tool() string   { return ToolDeleteReminder }

func (ListRequest) isRequest()     {}
func (CreateRequest) isRequest()   {}
func (EditRequest) isRequest()     {}
func (CompleteRequest) isRequest() {}
func (DeleteRequest) isRequest()   {}

// Argv returns `list <listName> --json`.
func (r ListRequest) Argv() []string {
	return []string{"list", r.ListName, "--json"}
}

// Argv returns `add <title> --list <list> [--due <due>] [--notes <notes>]`.
func (r CreateRequest) Argv() []string {
	args := []string{"add", r.Title, "--list", r.List}
	args = appendFlag(args, "--due", r.Due)
	args = appendFlag(args, "--notes", r.Notes)
	return args
}

// Argv returns `edit <id> [--title <title>] [--due <due>] [--notes <notes>]`.
func (r EditRequest) Argv() []string {
	args := []string{"edit", r.ID}
	args = appendFlag(args, "--title", r.Title)
	args = appendFlag(args, "--due", r.Due)
	args = appendFlag(args, "--notes", r.Notes)
	return args
}

// Argv returns `complete <id>`.
func (r CompleteRequest) Argv() []string {
	return []string{"complete", r.ID}
}

// Argv returns `delete <id> --force`. remindctl would otherwise prompt.
func (r DeleteRequest) Argv() []string {
	return []string{"delete", r.ID, "--force"}
}

// Optional returns nil for an empty string and a pointer to s otherwise.
func Optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func appendFlag(args []string, flag string, value *string) []string {
	if value == nil || *value == "" {
		return args
	}
	return append(args, flag, *value)
}

// Descriptor describes one tool for "list tools" responses.
type Descriptor struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

type property struct {
	name        string
	description string
	required    bool
	nonEmpty    bool
	enum        []string
}

func objectSchema(props ...property) map[string]interface{} {
	properties := make(map[string]interface{}, len(props))
	required := []string{}

	for _, p := range props {
		s := map[string]interface{}{
			"type":        "string",
			"description": p.description,
		}
		if p.nonEmpty {
			s["minLength"] = 1
		}
		if len(p.enum) > 0 {
			s["enum"] = p.enum
		}
		properties[p.name] = s
		if p.required {
			required = append(required, p.name)
		}
	}

	schema := map[string]interface{}{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

// Descriptors returns the five tool descriptors in advertised order.
// Each call returns fresh maps, so callers may modify the result.
func Descriptors() []Descriptor {
	lists := reminders.ListStrings()

	return []Descriptor{
		{
			Name:        ToolListReminders,
			Description: "List reminders from a specific list (Active, Delegated, Backlog)",
			InputSchema: objectSchema(
				property{name: "listName", description: "The name of the list to retrieve reminders from", required: true, enum: lists},
			),
		},
		{
			Name:        ToolCreateReminder,
			Description: "Create a new reminder",
			InputSchema: objectSchema(
				property{name: "title", description: "The title of the reminder", required: true, nonEmpty: true},
				property{name: "list", description: "The list to add the reminder to", required: true, enum: lists},
				property{name: "due", description: "Due date (YYYY-MM-DD or natural language like 'tomorrow')"},
				property{name: "notes", description: "Notes for the reminder"},
			),
		},
		{
			Name:        ToolEditReminder,
			Description: "Edit an existing reminder",
			InputSchema: objectSchema(
				property{name: "id", description: "The ID of the reminder to edit", required: true, nonEmpty: true},
				property{name: "title", description: "New title"},
				property{name: "due", description: "New due date"},
				property{name: "notes", description: "New notes"},
			),
		},
		{
			Name:        ToolCompleteReminder,
			Description: "Mark a reminder as complete",
			InputSchema: objectSchema(
				property{name: "id", description: "The ID of the reminder to complete", required: true, nonEmpty: true},
			),
		},
		{
			Name:        ToolDeleteReminder,
			Description: "Delete a reminder",
			InputSchema: objectSchema(
				property{name: "id", description: "The ID of the reminder to delete", required: true, nonEmpty: true},
			),
		},
	}
}

// Lookup returns the descriptor for name.
func Lookup(name string) (Descriptor, bool) {
	for _, d := range Descriptors() {
		if d.Name == name {
			return d, true
		}
	}
	return Descriptor{}, false
}
