package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/denisAlshanov/reelgrab/internal/utils"
)

type Config struct {
	Server   ServerConfig
	Telegram TelegramConfig
	Download DownloadConfig
	S3       S3Config
	Log      LogConfig
}

type ServerConfig struct {
	Port string
	Host string
}

type TelegramConfig struct {
	BotToken    string
	PollTimeout int
	DropPending bool
	Debug       bool
}

type DownloadConfig struct {
	YtDlpPath           string
	TempDir             string
	InstagramCookieFile string
	TikTokCookies       string
	Timeout             time.Duration
	MaxFileSize         int64
}

type S3Config struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	EndpointURL     string
}

// Enabled reports whether delivered videos should be archived.
func (c S3Config) Enabled() bool {
	return c.BucketName != ""
}

type LogConfig struct {
	Level  string
	Format string
}

// ErrMissingBotToken is wrapped by the error Load returns when BOT_TOKEN
// is not set.
var ErrMissingBotToken = errors.New("required environment variable BOT_TOKEN is not set")

// Load reads the configuration. Every failure is an *utils.AppError with
// code INVALID_CONFIG.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		fmt.Println("Warning: .env file not found, using environment variables")
	}

	cfg := &Config{}
	var err error

	// Telegram configuration
	cfg.Telegram.BotToken = os.Getenv("BOT_TOKEN")
	if cfg.Telegram.BotToken == "" {
		return nil, utils.NewErrorWithDetails(
			utils.ErrorCodeInvalidConfig,
			"BOT_TOKEN is not set",
			ErrMissingBotToken,
			map[string]interface{}{"key": "BOT_TOKEN"},
		)
	}
	if cfg.Telegram.PollTimeout, err = getEnvIntStrict("TELEGRAM_POLL_TIMEOUT", 60); err != nil {
		return nil, err
	}
	if cfg.Telegram.DropPending, err = getEnvBoolStrict("TELEGRAM_DROP_PENDING", true); err != nil {
		return nil, err
	}
	if cfg.Telegram.Debug, err = getEnvBoolStrict("TELEGRAM_DEBUG", false); err != nil {
		return nil, err
	}

	// Liveness server configuration
	cfg.Server.Port = getEnv("PORT", "10000")
	if _, err := strconv.Atoi(cfg.Server.Port); err != nil {
		return nil, invalidSetting("PORT", cfg.Server.Port, err)
	}
	cfg.Server.Host = getEnv("SERVER_HOST", "0.0.0.0")

	// Download configuration
	cfg.Download.YtDlpPath = getEnv("YTDLP_PATH", "yt-dlp")
	cfg.Download.TempDir = getEnv("TEMP_DIR", os.TempDir())
	// Relative paths resolve against the working directory.
	cfg.Download.InstagramCookieFile = getEnv("INSTAGRAM_COOKIE_FILE", "instagram_cookies.txt")
	cfg.Download.TikTokCookies = os.Getenv("TT_COOKIES")
	if cfg.Download.Timeout, err = getEnvDurationStrict("DOWNLOAD_TIMEOUT", 0); err != nil {
		return nil, err
	}
	// Bot API upload limit
	if cfg.Download.MaxFileSize, err = getEnvInt64Strict("MAX_FILE_SIZE", 50*1024*1024); err != nil {
		return nil, err
	}

	// S3 archive configuration (optional)
	cfg.S3.Region = getEnv("AWS_REGION", "us-east-1")
	cfg.S3.BucketName = getEnv("S3_BUCKET_NAME", "")
	cfg.S3.EndpointURL = getEnv("AWS_ENDPOINT_URL", "")
	cfg.S3.AccessKeyID = getEnv("AWS_ACCESS_KEY_ID", "")
	cfg.S3.SecretAccessKey = getEnv("AWS_SECRET_ACCESS_KEY", "")

	// Logging
	cfg.Log.Level = getEnv("LOG_LEVEL", "info")
	cfg.Log.Format = getEnv("LOG_FORMAT", "json")

	return cfg, nil
}

// Addr returns the host:port the liveness server binds to.
func (c ServerConfig) Addr() string {
	return c.Host + ":" + c.Port
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntStrict(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		return 0, invalidSetting(key, value, err)
	}
	return intValue, nil
}

func getEnvInt64Strict(key string, defaultValue int64) (int64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	intValue, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, invalidSetting(key, value, err)
	}
	return intValue, nil
}

func getEnvBoolStrict(key string, defaultValue bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	boolValue, err := strconv.ParseBool(value)
	if err != nil {
		return false, invalidSetting(key, value, err)
	}
	return boolValue, nil
}

func getEnvDurationStrict(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, invalidSetting(key, value, err)
	}
	return d, nil
}

func invalidSetting(key, value string, err error) *utils.AppError {
	return utils.NewErrorWithDetails(
		utils.ErrorCodeInvalidConfig,
		fmt.Sprintf("invalid %s", key),
		err,
		map[string]interface{}{"key": key, "value": value},
	)
}
