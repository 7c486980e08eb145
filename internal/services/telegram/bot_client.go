package telegram

import (
	"context"
	"fmt"
	"runtime/debug"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/denisAlshanov/reelgrab/internal/config"
	"github.com/denisAlshanov/reelgrab/internal/models"
	"github.com/denisAlshanov/reelgrab/internal/utils"
)

// BotClient uses Telegram Bot API (requires bot token)
type BotClient struct {
	bot *tgbotapi.BotAPI
	cfg *config.TelegramConfig
}

func NewBotClient(cfg *config.TelegramConfig) (*BotClient, error) {
	if cfg.BotToken == "" {
		return nil, fmt.Errorf("bot token is required")
	}

	if err := tgbotapi.SetLogger(utils.GetLogger()); err != nil {
		return nil, fmt.Errorf("failed to set bot logger: %w", err)
	}

	// NewBotAPI calls getMe, so a rejected token fails here.
	bot, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}
	bot.Debug = cfg.Debug

	return &BotClient{
		bot: bot,
		cfg: cfg,
	}, nil
}

func (c *BotClient) Username() string {
	return c.bot.Self.UserName
}

// Run long-polls for updates and hands each text message to handle, one at
// a time, until ctx is canceled.
func (c *BotClient) Run(ctx context.Context, handle HandlerFunc) error {
	if c.cfg.DropPending {
		if _, err := c.bot.Request(tgbotapi.DeleteWebhookConfig{DropPendingUpdates: true}); err != nil {
			utils.LogWarn(ctx, "Failed to drop pending updates", utils.Fields{"error": err.Error()})
		}
	}

	u := tgbotapi.NewUpdate(0)
	u.Timeout = c.cfg.PollTimeout
	updates := c.bot.GetUpdatesChan(u)

	utils.LogInfo(ctx, "Telegram polling started", utils.Fields{
		"username": c.bot.Self.UserName,
		"timeout":  c.cfg.PollTimeout,
	})

	err := consumeUpdates(ctx, updates, handle)
	c.bot.StopReceivingUpdates()
	utils.LogInfo(ctx, "Telegram polling stopped")
	return err
}

func (c *BotClient) SendText(ctx context.Context, to models.IncomingMessage, text string) error {
	msg := tgbotapi.NewMessage(to.ChatID, text)
	msg.ReplyToMessageID = to.MessageID

	if _, err := c.bot.Send(msg); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}

// SendVideo uploads the file at path. The upload has finished when it
// returns, so the caller may delete the file afterwards.
func (c *BotClient) SendVideo(ctx context.Context, to models.IncomingMessage, path string) error {
	video := tgbotapi.NewVideo(to.ChatID, tgbotapi.FilePath(path))
	video.ReplyToMessageID = to.MessageID
	video.SupportsStreaming = true

	if _, err := c.bot.Send(video); err != nil {
		return fmt.Errorf("failed to send video: %w", err)
	}
	return nil
}

func (c *BotClient) Close() error {
	// Bot API doesn't need explicit cleanup; Run stops the poller.
	return nil
}

// consumeUpdates drains updates until ctx is done or the channel closes.
func consumeUpdates(ctx context.Context, updates <-chan tgbotapi.Update, handle HandlerFunc) error {
	var tracker updateTracker

	for {
		select {
		case <-ctx.Done():
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if !tracker.accept(update.UpdateID) {
				utils.LogDebug(ctx, "Skipping already handled update", utils.Fields{"update_id": update.UpdateID})
				continue
			}
			msg, ok := toIncomingMessage(update)
			if !ok {
				continue
			}
			dispatchSafely(ctx, msg, handle)
		}
	}
}

// updateTracker enforces at-most-once handling per update id.
type updateTracker struct {
	last int
}

func (t *updateTracker) accept(updateID int) bool {
	if updateID <= t.last {
		return false
	}
	t.last = updateID
	return true
}

// toIncomingMessage keeps only updates that carry a text message.
func toIncomingMessage(update tgbotapi.Update) (models.IncomingMessage, bool) {
	m := update.Message
	if m == nil || m.Chat == nil || strings.TrimSpace(m.Text) == "" {
		return models.IncomingMessage{}, false
	}

	msg := models.IncomingMessage{
		UpdateID:  update.UpdateID,
		ChatID:    m.Chat.ID,
		MessageID: m.MessageID,
		Text:      m.Text,
	}
	if m.From != nil {
		msg.SenderID = m.From.ID
		msg.SenderName = m.From.UserName
	}
	return msg, true
}

// dispatchSafely runs handle under a fresh correlation id and keeps a panic
// from escaping into the polling loop.
func dispatchSafely(ctx context.Context, msg models.IncomingMessage, handle HandlerFunc) {
	ctx = utils.WithCorrelationID(ctx, utils.GenerateCorrelationID())

	defer func() {
		if r := recover(); r != nil {
			utils.LogError(ctx, "Recovered from panic in message handler", fmt.Errorf("%v", r), utils.Fields{
				"update_id": msg.UpdateID,
				"chat_id":   msg.ChatID,
				"stack":     string(debug.Stack()),
			})
		}
	}()

	handle(ctx, msg)
}
