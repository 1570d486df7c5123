// Package cmd provides CLI commands for Lagoon.
//
// Commands:
//   - chat <chat-id>: open a chat panel (Bubble Tea TUI)
//   - chats: list the account's chats
//
// Signal handling and graceful shutdown are implemented via context
// cancellation.
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/lagoonchat/lagoon/internal/log"
)

// Execute is the main entry point for the Lagoon CLI application.
func Execute() error {
	// Initialize logger once at entry point. Logs go to stderr; stdout
	// belongs to the TUI and to listing output.
	slog.SetDefault(log.New(log.Config{Level: logLevel()}))

	if len(os.Args) < 2 {
		runHelp()
		return nil
	}

	switch os.Args[1] {
	case "chat":
		if len(os.Args) < 3 {
			return fmt.Errorf("usage: lagoon chat <chat-id>")
		}
		return runChat(os.Args[2])
	case "chats":
		return runChats()
	case "version", "--version", "-v":
		runVersion()
		return nil
	case "help", "--help", "-h":
		runHelp()
		return nil
	default:
		return fmt.Errorf("unknown command: %s", os.Args[1])
	}
}

func logLevel() slog.Level {
	if os.Getenv("DEBUG") != "" {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

// runHelp displays the help message.
func runHelp() {
	fmt.Println("Lagoon - terminal chats for Pleroma and Akkoma")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  lagoon chats           List your chats")
	fmt.Println("  lagoon chat <chat-id>  Open a chat panel")
	fmt.Println("  lagoon --version       Show version information")
	fmt.Println("  lagoon --help          Show this help")
	fmt.Println()
	fmt.Println("Panel commands:")
	fmt.Println("  /attach <file>...      Upload files as one batch")
	fmt.Println("  /remove <n>            Remove attachment n")
	fmt.Println("  /clear                 Clear the message pane")
	fmt.Println("  /exit, /quit           Close the panel")
	fmt.Println()
	fmt.Println("Shortcuts:")
	fmt.Println("  Enter                  Send message")
	fmt.Println("  Shift+Enter            New line")
	fmt.Println("  Ctrl+C                 Discard draft (twice to quit)")
	fmt.Println("  Ctrl+D                 Exit")
	fmt.Println()
	fmt.Println("Environment Variables:")
	fmt.Println("  LAGOON_SERVER_URL      Required: your instance, e.g. https://example.social")
	fmt.Println("  LAGOON_ACCESS_TOKEN    Required: OAuth access token")
	fmt.Println("  DEBUG                  Optional: Enable debug logging")
	fmt.Println()
	fmt.Println("Learn more: https://github.com/lagoonchat/lagoon")
}
