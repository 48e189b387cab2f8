// ABOUTME: Terminal chat mode for talking to the bot locally
// ABOUTME: Feeds stdin lines through the router and prints replies

package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/fatih/color"

	"github.com/mundonet/dexbot/internal/config"
	"github.com/mundonet/dexbot/internal/gateway"
	"github.com/mundonet/dexbot/internal/menu"
	"github.com/mundonet/dexbot/internal/router"
)

// logChannel logs outbound replies instead of delivering them. Used by serve
// when no transport is attached.
type logChannel struct {
	logger *slog.Logger
}

func (c logChannel) Send(ctx context.Context, convID string, replies []menu.Reply) error {
	for _, r := range replies {
		c.logger.Info("outbound reply", "conversation_id", convID, "text", r.Text, "image", r.ImagePath)
	}
	return nil
}

// consoleChannel prints replies to the terminal.
type consoleChannel struct{}

func (consoleChannel) Send(ctx context.Context, convID string, replies []menu.Reply) error {
	cyan := color.New(color.FgCyan)
	for _, r := range replies {
		cyan.Println("  dex:")
		for _, line := range strings.Split(r.Text, "\n") {
			fmt.Printf("    %s\n", line)
		}
		if r.ImagePath != "" {
			fmt.Printf("    [image: %s]\n", r.ImagePath)
		}
	}
	return nil
}

// runChat starts an interactive conversation from the terminal. The terminal
// plays the role of one customer; /img simulates an attachment.
func runChat(ctx context.Context) error {
	configPath := getConfigPath()

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Keep the log out of the conversation.
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	gw, err := gateway.New(cfg, consoleChannel{}, logger)
	if err != nil {
		return fmt.Errorf("creating gateway: %w", err)
	}

	// Run the engine in the background so persistence and maintenance work
	// while we chat.
	runCtx, cancelRun := context.WithCancel(ctx)
	defer cancelRun()
	engineDone := make(chan error, 1)
	go func() { engineDone <- gw.Run(runCtx) }()
	defer func() {
		cancelRun()
		<-engineDone
	}()

	cyan := color.New(color.FgCyan)
	cyan.Print(banner)
	fmt.Println("    chat mode: you are +258845550000")
	fmt.Println("    /img sends a fake attachment, /quit exits")
	fmt.Println()

	reader := bufio.NewReader(os.Stdin)
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		fmt.Print("  you: ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return nil
		}
		line = strings.TrimSpace(line)
		if line == "/quit" {
			return nil
		}

		msg := router.InboundMessage{
			ConversationID:    "+258845550000",
			SenderDisplayName: "Operador",
			BodyText:          line,
		}
		if line == "/img" {
			msg.BodyText = ""
			msg.HasAttachment = true
		}

		if err := gw.Router().HandleMessage(ctx, msg); err != nil {
			fmt.Fprintf(os.Stderr, "  error: %v\n", err)
		}
	}
}
