// ABOUTME: Admin chat commands for the customer registry
// ABOUTME: Parses !clientes queries and formats the report reply

package admincmd

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mundonet/dexbot/internal/store"
)

// maxReportLines caps how many customers one report message lists. The
// remainder is summarized so a large registry cannot blow up a single chat
// message.
const maxReportLines = 50

const emptyReportText = "Nenhum cliente."

// Command is a parsed admin command. Token is the operator-facing window
// token as typed (empty for the unfiltered form); it is echoed back in the
// report header.
type Command struct {
	Window store.Window
	Token  string
}

// Parse recognizes the !clientes command family. ok is false when the text is
// not an admin command at all, or when the window token is not one we know;
// either way the message falls through to the normal conversation flow.
func Parse(text string) (Command, bool) {
	t := strings.TrimSpace(strings.ToLower(text))
	if !strings.HasPrefix(t, "!clientes") {
		return Command{}, false
	}

	rest := strings.TrimSpace(strings.TrimPrefix(t, "!clientes"))
	if rest == "" {
		return Command{Window: store.WindowAll}, true
	}
	if strings.ContainsAny(rest, " \t") {
		return Command{}, false
	}
	win, ok := store.ParseWindowToken(rest)
	if !ok {
		return Command{}, false
	}
	return Command{Window: win, Token: rest}, true
}

// Handler executes admin commands against the registry.
type Handler struct {
	store  store.Store
	logger *slog.Logger
}

// NewHandler creates a Handler.
func NewHandler(st store.Store, logger *slog.Logger) *Handler {
	return &Handler{
		store:  st,
		logger: logger.With("component", "admincmd"),
	}
}

// Execute runs a parsed command and returns the report text. A failing store
// degrades to the empty report instead of surfacing an error to the chat.
func (h *Handler) Execute(ctx context.Context, cmd Command) string {
	customers, err := h.store.QueryByRecency(ctx, cmd.Window)
	if err != nil {
		h.logger.Error("customer query failed", "window", cmd.Window, "error", err)
		return emptyReportText
	}
	return FormatReport(cmd, customers)
}

// FormatReport renders the customer list for the admin chat.
func FormatReport(cmd Command, customers []*store.Customer) string {
	if len(customers) == 0 {
		return emptyReportText
	}

	var b strings.Builder
	if cmd.Window == store.WindowAll {
		fmt.Fprintf(&b, "📋 *TODOS OS CLIENTES (%d)*\n\n", len(customers))
	} else {
		fmt.Fprintf(&b, "📋 *CLIENTES (%s) - %d*\n\n", strings.ToUpper(cmd.Token), len(customers))
	}

	shown := customers
	if len(shown) > maxReportLines {
		shown = shown[:maxReportLines]
	}
	for _, c := range shown {
		fmt.Fprintf(&b, "👤 %s - %s\n", c.Name, c.PhoneNumber)
	}
	if extra := len(customers) - len(shown); extra > 0 {
		fmt.Fprintf(&b, "... e mais %d\n", extra)
	}
	return strings.TrimRight(b.String(), "\n")
}
