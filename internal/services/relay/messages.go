package relay

import (
	"fmt"

	"github.com/denisAlshanov/reelgrab/internal/models"
)

const (
	greetingText = "Привіт! Надішліть лінк на Instagram чи TikTok — я закачаю всі відео 🎬"
	guidanceText = "❗ Надішліть прямий лінк на Instagram чи TikTok."

	// failureIndicator prefixes every reply that reports a failed request.
	failureIndicator = "🥲"

	fallbackFailureReason = "failed to download the video"
)

func ackText(platform models.Platform) string {
	return fmt.Sprintf("🔍 Завантажую %s відео…", platform.DisplayName())
}

func failureText(platform models.Platform, reason string) string {
	return fmt.Sprintf("%s Не вдалося завантажити %s:\n%s", failureIndicator, platform.DisplayName(), reason)
}
