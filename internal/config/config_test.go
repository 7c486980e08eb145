package config

import (
	"errors"
	"testing"
	"time"

	"github.com/denisAlshanov/reelgrab/internal/utils"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"BOT_TOKEN", "TT_COOKIES", "INSTAGRAM_COOKIE_FILE", "PORT", "SERVER_HOST",
		"TELEGRAM_POLL_TIMEOUT", "TELEGRAM_DROP_PENDING", "TELEGRAM_DEBUG",
		"YTDLP_PATH", "TEMP_DIR", "DOWNLOAD_TIMEOUT", "MAX_FILE_SIZE",
		"S3_BUCKET_NAME", "AWS_ENDPOINT_URL", "LOG_LEVEL", "LOG_FORMAT",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_MissingBotToken(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if !errors.Is(err, ErrMissingBotToken) {
		t.Fatalf("err = %v, want %v", err, ErrMissingBotToken)
	}
	if appErr, ok := utils.AsAppError(err); !ok || appErr.Code != utils.ErrorCodeInvalidConfig {
		t.Errorf("err = %v, want INVALID_CONFIG", err)
	}
	if cfg != nil {
		t.Error("config should be nil when the token is missing")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("BOT_TOKEN", "123:abc")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != "10000" {
		t.Errorf("port = %q, want %q", cfg.Server.Port, "10000")
	}
	if cfg.Server.Addr() != "0.0.0.0:10000" {
		t.Errorf("addr = %q, want %q", cfg.Server.Addr(), "0.0.0.0:10000")
	}
	if cfg.Telegram.PollTimeout != 60 {
		t.Errorf("poll timeout = %d, want 60", cfg.Telegram.PollTimeout)
	}
	if !cfg.Telegram.DropPending {
		t.Error("pending updates should be dropped by default")
	}
	if cfg.Download.YtDlpPath != "yt-dlp" {
		t.Errorf("yt-dlp path = %q", cfg.Download.YtDlpPath)
	}
	if cfg.Download.InstagramCookieFile != "instagram_cookies.txt" {
		t.Errorf("cookie file = %q", cfg.Download.InstagramCookieFile)
	}
	if cfg.Download.Timeout != 0 {
		t.Errorf("download timeout = %v, want disabled", cfg.Download.Timeout)
	}
	if cfg.Download.MaxFileSize != 50*1024*1024 {
		t.Errorf("max file size = %d", cfg.Download.MaxFileSize)
	}
	if cfg.S3.Enabled() {
		t.Error("archive should be disabled without a bucket")
	}
	if cfg.Log.Level != "info" || cfg.Log.Format != "json" {
		t.Errorf("log config = %+v", cfg.Log)
	}
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("BOT_TOKEN", "123:abc")
	t.Setenv("PORT", "8081")
	t.Setenv("TT_COOKIES", "sessionid=xyz")
	t.Setenv("DOWNLOAD_TIMEOUT", "2m")
	t.Setenv("TELEGRAM_DROP_PENDING", "false")
	t.Setenv("TELEGRAM_DEBUG", "1")
	t.Setenv("MAX_FILE_SIZE", "0")
	t.Setenv("S3_BUCKET_NAME", "videos")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != "8081" {
		t.Errorf("port = %q, want %q", cfg.Server.Port, "8081")
	}
	if cfg.Download.TikTokCookies != "sessionid=xyz" {
		t.Errorf("tiktok cookies = %q", cfg.Download.TikTokCookies)
	}
	if cfg.Download.Timeout != 2*time.Minute {
		t.Errorf("download timeout = %v, want 2m", cfg.Download.Timeout)
	}
	if cfg.Telegram.DropPending {
		t.Error("drop pending should be disabled")
	}
	if !cfg.Telegram.Debug {
		t.Error("debug should be enabled")
	}
	if cfg.Download.MaxFileSize != 0 {
		t.Errorf("max file size = %d, want 0 (disabled)", cfg.Download.MaxFileSize)
	}
	if !cfg.S3.Enabled() {
		t.Error("archive should be enabled with a bucket")
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	testCases := []struct {
		name  string
		key   string
		value string
	}{
		{name: "port", key: "PORT", value: "http"},
		{name: "poll timeout", key: "TELEGRAM_POLL_TIMEOUT", value: "soon"},
		{name: "download timeout", key: "DOWNLOAD_TIMEOUT", value: "forever"},
		{name: "max file size", key: "MAX_FILE_SIZE", value: "fifty-megs"},
		{name: "max file size overflow", key: "MAX_FILE_SIZE", value: "99999999999999999999"},
		{name: "drop pending", key: "TELEGRAM_DROP_PENDING", value: "nope"},
		{name: "debug", key: "TELEGRAM_DEBUG", value: "loud"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("BOT_TOKEN", "123:abc")
			t.Setenv(tc.key, tc.value)

			cfg, err := Load()
			if err == nil {
				t.Fatalf("expected error for %s=%q", tc.key, tc.value)
			}
			if cfg != nil {
				t.Error("config should be nil on error")
			}

			appErr, ok := utils.AsAppError(err)
			if !ok {
				t.Fatalf("err = %T, want *utils.AppError", err)
			}
			if appErr.Code != utils.ErrorCodeInvalidConfig {
				t.Errorf("code = %s, want %s", appErr.Code, utils.ErrorCodeInvalidConfig)
			}
			if appErr.Details["key"] != tc.key {
				t.Errorf("key detail = %v, want %s", appErr.Details["key"], tc.key)
			}
		})
	}
}
