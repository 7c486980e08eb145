package relay

import (
	"context"
	"strings"

	"github.com/denisAlshanov/reelgrab/internal/models"
	"github.com/denisAlshanov/reelgrab/internal/services/telegram"
	"github.com/denisAlshanov/reelgrab/internal/utils"
)

// Router sends /start and /help to the greeting and everything else to the
// link handler.
type Router struct {
	messenger   telegram.Messenger
	links       *LinkHandler
	botUsername string
}

func NewRouter(messenger telegram.Messenger, links *LinkHandler, botUsername string) *Router {
	return &Router{
		messenger:   messenger,
		links:       links,
		botUsername: botUsername,
	}
}

// Dispatch handles one message. It has the telegram.HandlerFunc signature.
func (r *Router) Dispatch(ctx context.Context, msg models.IncomingMessage) {
	switch r.command(msg.Text) {
	case "start", "help":
		utils.LogInfo(ctx, "Sending greeting", utils.Fields{"chat_id": msg.ChatID})
		if err := r.messenger.SendText(ctx, msg, greetingText); err != nil {
			utils.LogError(ctx, "Failed to send greeting", utils.NewSendError(err), utils.Fields{"chat_id": msg.ChatID})
		}
	default:
		r.links.Handle(ctx, msg)
	}
}

// command returns the lowercased command name of text, or "" when text is
// not a command addressed to this bot.
func (r *Router) command(text string) string {
	tokens := strings.Fields(text)
	if len(tokens) == 0 || !strings.HasPrefix(tokens[0], "/") {
		return ""
	}

	name := strings.TrimPrefix(tokens[0], "/")
	if at := strings.Index(name, "@"); at >= 0 {
		mention := name[at+1:]
		name = name[:at]
		if r.botUsername != "" && !strings.EqualFold(mention, r.botUsername) {
			return ""
		}
	}
	return strings.ToLower(name)
}
