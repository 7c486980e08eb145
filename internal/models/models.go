package models

import "strings"

// IncomingMessage is one inbound text message, created per update by the
// receiver and consumed once by the router.
type IncomingMessage struct {
	UpdateID   int    `json:"update_id"`
	ChatID     int64  `json:"chat_id"`
	MessageID  int    `json:"message_id"`
	SenderID   int64  `json:"sender_id"`
	SenderName string `json:"sender_name,omitempty"`
	Text       string `json:"text"`
}

type Platform string

const (
	PlatformUnknown   Platform = ""
	PlatformInstagram Platform = "instagram"
	PlatformTikTok    Platform = "tiktok"
)

// DisplayName is the platform name shown in replies.
func (p Platform) DisplayName() string {
	switch p {
	case PlatformInstagram:
		return "Instagram"
	case PlatformTikTok:
		return "TikTok"
	default:
		return "unknown"
	}
}

var platformMarkers = []struct {
	platform Platform
	markers  []string
}{
	// Order matters: a text mentioning both platforms is treated as Instagram.
	{PlatformInstagram, []string{"instagram.com", "instagr.am"}},
	{PlatformTikTok, []string{"tiktok.com", "vm.tiktok.com"}},
}

// DetectPlatform picks the platform whose domain marker occurs in text.
func DetectPlatform(text string) Platform {
	for _, p := range platformMarkers {
		for _, marker := range p.markers {
			if strings.Contains(text, marker) {
				return p.platform
			}
		}
	}
	return PlatformUnknown
}

// DownloadOptions configures a single downloader run.
type DownloadOptions struct {
	Format         string            `json:"format"`
	OutputDir      string            `json:"output_dir"`
	OutputTemplate string            `json:"output_template"`
	CookieFile     string            `json:"cookie_file,omitempty"`
	Headers        map[string]string `json:"headers,omitempty"`
	Quiet          bool              `json:"quiet"`
	MaxFileSize    int64             `json:"max_file_size,omitempty"`
}

// ExtractionResult lists the files produced for one link, in the order the
// downloader reported them.
type ExtractionResult struct {
	Files []string `json:"files"`
}
