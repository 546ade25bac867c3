package reminder

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const (
	serverName    = "reminder"
	serverVersion = "1.0.0"
)

// Server is the MCP server for reminder management. It only talks to the
// shared durable store; the watcher process picks up changes on its next
// poll cycle, so there is no direct channel between the two.
type Server struct {
	mcpServer *server.MCPServer
	store     *Store
}

// NewServer creates a new Reminder MCP server backed by the given store.
func NewServer(store *Store) *Server {
	s := &Server{
		store: store,
	}

	s.mcpServer = server.NewMCPServer(
		serverName,
		serverVersion,
		server.WithToolCapabilities(false),
	)

	s.registerTools()
	return s
}

// MCPServer returns the underlying MCP server for serving.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

func (s *Server) registerTools() {
	// set_reminders
	s.mcpServer.AddTool(
		mcp.NewTool("set_reminders",
			mcp.WithDescription("Set one or more reminders. Each reminder needs a title, message and due_at timestamp in RFC3339 format (e.g. 2026-01-15T09:00:00Z). Reminders are delivered by the reminderd watcher."),
			mcp.WithArray("reminders", mcp.Required(),
				mcp.Description("Reminders to set"),
				mcp.Items(map[string]any{
					"type": "object",
					"properties": map[string]any{
						"title":          map[string]any{"type": "string", "description": "Short reminder title"},
						"message":        map[string]any{"type": "string", "description": "Reminder body shown in the notification"},
						"due_at":         map[string]any{"type": "string", "description": "Due timestamp, RFC3339 (e.g. 2026-01-15T09:00:00Z)"},
						"linked_task_id": map[string]any{"type": "string", "description": "Optional task to associate with this reminder"},
					},
					"required": []string{"title", "due_at"},
				}),
			),
			mcp.WithString("linked_task_id", mcp.Description("Optional task to associate with all reminders (overridden per reminder)")),
		),
		s.handleSetReminders,
	)

	// list_reminders
	s.mcpServer.AddTool(
		mcp.NewTool("list_reminders",
			mcp.WithDescription("List all scheduled reminders in insertion order"),
		),
		s.handleListReminders,
	)

	// remove_reminders
	s.mcpServer.AddTool(
		mcp.NewTool("remove_reminders",
			mcp.WithDescription("Remove reminders by ID, or all of them. Unknown IDs are ignored since the watcher may have delivered them already."),
			mcp.WithArray("ids",
				mcp.Description("Reminder IDs to remove"),
				mcp.Items(map[string]any{"type": "string"}),
			),
			mcp.WithBoolean("all", mcp.Description("Remove every reminder")),
		),
		s.handleRemoveReminders,
	)
}

type reminderInput struct {
	Title        string `json:"title"`
	Message      string `json:"message"`
	DueAt        string `json:"due_at"`
	LinkedTaskID string `json:"linked_task_id"`
}

func (s *Server) handleSetReminders(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, ok := req.GetArguments()["reminders"]
	if !ok {
		return mcp.NewToolResultError("reminders is required"), nil
	}

	// Round-trip through JSON to coerce the untyped tool arguments.
	data, err := json.Marshal(raw)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid reminders payload: %v", err)), nil
	}
	var inputs []reminderInput
	if err := json.Unmarshal(data, &inputs); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("reminders must be a list of objects: %v", err)), nil
	}
	if len(inputs) == 0 {
		return mcp.NewToolResultError("reminders list is empty"), nil
	}

	defaultTask := req.GetString("linked_task_id", "")

	added := make([]Reminder, 0, len(inputs))
	for i, in := range inputs {
		if in.Title == "" {
			return mcp.NewToolResultError(fmt.Sprintf("reminder %d: title is required", i)), nil
		}
		if in.DueAt == "" {
			return mcp.NewToolResultError(fmt.Sprintf("reminder %d: due_at is required", i)), nil
		}
		dueAt, err := time.Parse(time.RFC3339, in.DueAt)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("reminder %d: invalid due_at: %v (use RFC3339, e.g. 2026-01-15T09:00:00Z)", i, err)), nil
		}

		linked := in.LinkedTaskID
		if linked == "" {
			linked = defaultTask
		}

		r, err := s.store.Add(Reminder{
			Title:        in.Title,
			Message:      in.Message,
			DueAt:        dueAt,
			LinkedTaskID: linked,
		})
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to add reminder: %v", err)), nil
		}
		added = append(added, r)
	}

	output, _ := json.MarshalIndent(added, "", "  ")
	return mcp.NewToolResultText(string(output)), nil
}

func (s *Server) handleListReminders(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	reminders, err := s.store.List()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list reminders: %v", err)), nil
	}

	if len(reminders) == 0 {
		return mcp.NewToolResultText("No reminders scheduled."), nil
	}

	output, _ := json.MarshalIndent(reminders, "", "  ")
	return mcp.NewToolResultText(string(output)), nil
}

func (s *Server) handleRemoveReminders(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if req.GetBool("all", false) {
		if err := s.store.RemoveAll(); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to remove reminders: %v", err)), nil
		}
		return mcp.NewToolResultText("All reminders removed."), nil
	}

	ids := req.GetStringSlice("ids", nil)
	if len(ids) == 0 {
		return mcp.NewToolResultError("provide ids or set all=true"), nil
	}

	removed, err := s.store.Remove(ids...)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to remove reminders: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Removed %d reminder(s).", removed)), nil
}
