package aeos

import (
	"context"
	"sync"

	"aeosinnotion/pkg/logx"
)

// NotifyFormat is the built-in command that emits a notification.
const NotifyFormat = "notify ${title}: ${body}"

// Handler receives a notification. It returns false when it did not deliver it.
type Handler func(ctx context.Context, title, body string) bool

type namedHandler struct {
	name    string
	handler Handler
}

// Notifier fans notifications out to named handlers in registration order.
type Notifier struct {
	mu       sync.RWMutex
	handlers []namedHandler
	logger   *logx.Logger
}

// NewNotifier creates a notifier with no handlers.
func NewNotifier() *Notifier {
	return &Notifier{logger: logx.NewLogger("notifications")}
}

// Register adds or replaces the handler called name.
func (n *Notifier) Register(name string, h Handler) {
	n.mu.Lock()
	defer n.mu.Unlock()
	for i := range n.handlers {
		if n.handlers[i].name == name {
			n.handlers[i].handler = h
			return
		}
	}
	n.handlers = append(n.handlers, namedHandler{name: name, handler: h})
}

// Unregister removes the handler called name.
func (n *Notifier) Unregister(name string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	for i := range n.handlers {
		if n.handlers[i].name == name {
			n.handlers = append(n.handlers[:i], n.handlers[i+1:]...)
			return
		}
	}
}

// Notify calls every handler and returns how many delivered the notification.
func (n *Notifier) Notify(ctx context.Context, title, body string) int {
	n.mu.RLock()
	handlers := append([]namedHandler(nil), n.handlers...)
	n.mu.RUnlock()

	delivered := 0
	for _, h := range handlers {
		if h.handler(ctx, title, body) {
			delivered++
		} else {
			n.logger.Debug("handler %s skipped notification %q", h.name, title)
		}
	}
	n.logger.Info("%s: %s (%d/%d handlers)", title, body, delivered, len(handlers))
	return delivered
}

// Command returns the built-in notify command bound to n.
func (n *Notifier) Command() Command {
	return Command{
		Format:      NotifyFormat,
		Description: "Send a notification to every registered handler",
		Function: func(ctx context.Context, args Args) Result {
			if args["title"] == "" {
				return Fail("No title provided")
			}
			n.Notify(ctx, args["title"], args["body"])
			return Ok("")
		},
	}
}
