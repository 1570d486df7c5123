package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	tea "charm.land/bubbletea/v2"

	"github.com/lagoonchat/lagoon/internal/api"
	"github.com/lagoonchat/lagoon/internal/composer"
	"github.com/lagoonchat/lagoon/internal/config"
	"github.com/lagoonchat/lagoon/internal/tui"
)

// runChat opens the interactive chat panel for one conversation.
func runChat(chatID string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger := slog.Default()

	client, err := api.New(cfg, logger.With("component", "api"))
	if err != nil {
		return fmt.Errorf("failed to create API client: %w", err)
	}

	chat, err := client.GetChat(ctx, chatID)
	if err != nil {
		return fmt.Errorf("failed to load chat %s: %w", chatID, err)
	}

	history, err := client.ListMessages(ctx, chatID, cfg.HistoryLimit)
	if err != nil {
		return fmt.Errorf("failed to load messages: %w", err)
	}

	comp, err := composer.New(composer.Config{
		Client:          client,
		Notifier:        stderrNotifier{logger: logger},
		Logger:          logger.With("component", "composer"),
		AttachmentLimit: cfg.AttachmentLimit,
	})
	if err != nil {
		return fmt.Errorf("failed to create composer: %w", err)
	}

	model, err := tui.New(ctx, tui.Config{
		Composer: comp,
		Chat:     chat,
		History:  history,
		Logger:   logger.With("component", "tui"),
	})
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}

	program := tea.NewProgram(model, tea.WithContext(ctx))
	if _, err = program.Run(); err != nil {
		return fmt.Errorf("TUI exited: %w", err)
	}

	// Let in-flight sends and uploads settle before the process ends.
	comp.Wait()
	return nil
}

// stderrNotifier routes pipeline notices into the log. The panel shows its
// own notice line; this sink exists so notices survive when the panel is
// gone.
type stderrNotifier struct {
	logger *slog.Logger
}

func (n stderrNotifier) Error(msg string) {
	n.logger.Warn(msg)
}
