// Command mcp-reminder provides an MCP server for reminder management.
//
// This server provides tools for setting, listing and removing reminders
// stored in the shared reminderd store. Delivery is handled by the
// reminderd watcher process; the two communicate only through the durable
// store file.
//
// Usage:
//
//	./mcp-reminder          # Start MCP server (stdio)
//	./mcp-reminder --help   # Show help
//
// Environment:
//
//	REMINDERD_CONFIG    Path to config file (default: ~/.reminderd/config.yaml)
//	REMINDERD_DATA_DIR  Data directory holding the store (default: ~/.reminderd)
package main

import (
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/server"

	"github.com/notexe/reminderd/internal/config"
	"github.com/notexe/reminderd/internal/logger"
	"github.com/notexe/reminderd/internal/reminder"
)

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--help", "-h":
			printHelp()
			return
		}
	}

	cfg, err := config.Load(os.Getenv("REMINDERD_CONFIG"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid config: %v\n", err)
		os.Exit(1)
	}
	logger.SetLevel(cfg.Logging.Level)

	if err := cfg.EnsureDataDir(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	store, err := reminder.NewStore(cfg.StorePath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open reminder store: %v\n", err)
		os.Exit(1)
	}

	s := reminder.NewServer(store)

	if err := server.ServeStdio(s.MCPServer()); err != nil {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		os.Exit(1)
	}
}

func printHelp() {
	fmt.Println(`MCP Reminder Server - Reminder management via MCP protocol

USAGE:
    mcp-reminder          Start MCP server (communicates via stdio)
    mcp-reminder --help   Show this help

ENVIRONMENT:
    REMINDERD_CONFIG    Config file path
                        Default: ~/.reminderd/config.yaml
    REMINDERD_DATA_DIR  Data directory holding the reminder store
                        Default: ~/.reminderd

TOOLS:
    set_reminders     Set one or more reminders (title, message, due_at, linked_task_id)
    list_reminders    List all scheduled reminders
    remove_reminders  Remove reminders by ID, or all of them

CONFIGURATION:
    Add to your MCP client config:
    {
      "mcpServers": {
        "reminder": {
          "command": "/path/to/mcp-reminder",
          "args": []
        }
      }
    }`)
}
