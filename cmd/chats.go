package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"strings"
	"syscall"

	"github.com/lagoonchat/lagoon/internal/api"
	"github.com/lagoonchat/lagoon/internal/config"
)

// runChats prints the account's chats, most recently updated first.
func runChats() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	client, err := api.New(cfg, slog.Default().With("component", "api"))
	if err != nil {
		return fmt.Errorf("failed to create API client: %w", err)
	}

	chats, err := client.ListChats(ctx)
	if err != nil {
		return fmt.Errorf("failed to list chats: %w", err)
	}

	if len(chats) == 0 {
		fmt.Println("No chats yet.")
		return nil
	}

	for _, chat := range chats {
		fmt.Println(formatChatLine(chat))
	}
	return nil
}

// formatChatLine renders one chat as a single listing line.
func formatChatLine(chat api.Chat) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%-20s @%s", chat.ID, chat.Account.Acct)
	if chat.Account.DisplayName != "" {
		fmt.Fprintf(&b, " (%s)", chat.Account.DisplayName)
	}
	if !chat.Accepted {
		b.WriteString("  [pending]")
	}
	if chat.Unread > 0 {
		fmt.Fprintf(&b, "  %d unread", chat.Unread)
	}
	if chat.LastMessage != nil && chat.LastMessage.Content != "" {
		fmt.Fprintf(&b, "  · %s", truncate(chat.LastMessage.Content, 60))
	}
	return b.String()
}

// truncate shortens s to at most n runes, never splitting a rune.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-3]) + "..."
}
