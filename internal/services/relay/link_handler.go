package relay

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/denisAlshanov/reelgrab/internal/config"
	"github.com/denisAlshanov/reelgrab/internal/models"
	"github.com/denisAlshanov/reelgrab/internal/services/telegram"
	"github.com/denisAlshanov/reelgrab/internal/utils"
)

const (
	videoFormat    = "mp4"
	outputPattern  = "%(id)s.%(ext)s"
	tempDirPattern = "reelgrab-*"
)

// LinkHandler turns a message with an Instagram or TikTok link into video
// replies.
type LinkHandler struct {
	messenger telegram.Messenger
	extractor Extractor
	archiver  Archiver
	cfg       config.DownloadConfig
}

// NewLinkHandler creates a handler. archiver may be nil to disable archiving.
func NewLinkHandler(messenger telegram.Messenger, extractor Extractor, archiver Archiver, cfg config.DownloadConfig) *LinkHandler {
	return &LinkHandler{
		messenger: messenger,
		extractor: extractor,
		archiver:  archiver,
		cfg:       cfg,
	}
}

// Handle processes one message. Failures are logged and reported to the
// chat; nothing is returned to the caller.
func (h *LinkHandler) Handle(ctx context.Context, msg models.IncomingMessage) {
	link := strings.TrimSpace(msg.Text)
	platform := models.DetectPlatform(link)

	if platform == models.PlatformUnknown {
		h.reply(ctx, msg, guidanceText)
		return
	}

	fields := utils.Fields{
		"chat_id":  msg.ChatID,
		"platform": string(platform),
	}
	utils.LogInfo(ctx, "Processing link", fields)

	h.reply(ctx, msg, ackText(platform))

	workDir, err := os.MkdirTemp(h.cfg.TempDir, tempDirPattern)
	if err != nil {
		utils.LogError(ctx, "Failed to create work directory", err, fields)
		h.reply(ctx, msg, failureText(platform, fallbackFailureReason))
		return
	}
	defer func() {
		if err := os.RemoveAll(workDir); err != nil {
			utils.LogWarn(ctx, "Failed to remove work directory", utils.Fields{"dir": workDir, "error": err.Error()})
		}
	}()

	result, err := h.extractor.Extract(ctx, link, h.downloadOptions(platform, workDir))
	if err != nil {
		utils.LogError(ctx, "Failed to download media", err, fields)
		h.reply(ctx, msg, failureText(platform, userReason(err)))
		return
	}

	for i, path := range result.Files {
		if err := h.messenger.SendVideo(ctx, msg, path); err != nil {
			sendErr := utils.NewSendError(err).
				WithDetail("file", filepath.Base(path)).
				WithDetail("index", i)
			utils.LogError(ctx, "Failed to send video", sendErr, fields)
			h.reply(ctx, msg, failureText(platform, sendErr.Message))
			return
		}
		h.archive(ctx, msg, platform, path)
	}

	utils.LogInfo(ctx, "Link processed", utils.Fields{
		"chat_id":  msg.ChatID,
		"platform": string(platform),
		"videos":   len(result.Files),
	})
}

// downloadOptions builds the per-request options for platform, writing into
// dir.
func (h *LinkHandler) downloadOptions(platform models.Platform, dir string) models.DownloadOptions {
	opts := models.DownloadOptions{
		Format:         videoFormat,
		OutputDir:      dir,
		OutputTemplate: filepath.Join(dir, outputPattern),
		Quiet:          true,
		MaxFileSize:    h.cfg.MaxFileSize,
	}

	switch platform {
	case models.PlatformInstagram:
		// A missing cookie file is not an error; the download runs anonymously.
		if h.cfg.InstagramCookieFile != "" {
			if info, err := os.Stat(h.cfg.InstagramCookieFile); err == nil && info.Mode().IsRegular() {
				opts.CookieFile = h.cfg.InstagramCookieFile
			}
		}
	case models.PlatformTikTok:
		if h.cfg.TikTokCookies != "" {
			opts.Headers = map[string]string{"Cookie": h.cfg.TikTokCookies}
		}
	}

	return opts
}

func (h *LinkHandler) archive(ctx context.Context, msg models.IncomingMessage, platform models.Platform, path string) {
	if h.archiver == nil {
		return
	}

	key, err := h.archiver.Archive(ctx, platform, path, map[string]string{
		"chat_id":    strconv.FormatInt(msg.ChatID, 10),
		"message_id": strconv.Itoa(msg.MessageID),
	})
	if err != nil {
		utils.LogError(ctx, "Failed to archive video", err, utils.Fields{"chat_id": msg.ChatID})
		return
	}
	utils.LogDebug(ctx, "Video archived", utils.Fields{"key": key})
}

func (h *LinkHandler) reply(ctx context.Context, msg models.IncomingMessage, text string) {
	if err := h.messenger.SendText(ctx, msg, text); err != nil {
		utils.LogError(ctx, "Failed to send reply", utils.NewSendError(err), utils.Fields{"chat_id": msg.ChatID})
	}
}

// userReason is the part of err that may be shown in a chat.
func userReason(err error) string {
	if appErr, ok := utils.AsAppError(err); ok && appErr.Message != "" {
		return appErr.Message
	}
	return fallbackFailureReason
}
