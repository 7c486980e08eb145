package telegram

import (
	"context"

	"github.com/denisAlshanov/reelgrab/internal/models"
)

// Messenger defines how handlers reply to the chat a message came from.
type Messenger interface {
	SendText(ctx context.Context, to models.IncomingMessage, text string) error
	SendVideo(ctx context.Context, to models.IncomingMessage, path string) error
}

// HandlerFunc processes one inbound message. It must not return until the
// message is fully handled; the receiver calls it sequentially.
type HandlerFunc func(ctx context.Context, msg models.IncomingMessage)
