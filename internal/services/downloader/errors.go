package downloader

import (
	"strings"

	"github.com/denisAlshanov/reelgrab/internal/utils"
)

type failureRule struct {
	code    utils.ErrorCode
	message string
	markers []string
}

// Checked in order against lowercased stderr; the first match wins.
var failureRules = []failureRule{
	{
		code:    utils.ErrorCodeLoginRequired,
		message: "the platform requires login to access this video",
		markers: []string{"login required", "sign in to confirm", "use --cookies", "account authentication"},
	},
	{
		code:    utils.ErrorCodeContentUnavailable,
		message: "the video is unavailable, private or removed",
		markers: []string{"video unavailable", "this video is unavailable", "private video", "has been removed", "content is not available", "post isn't available", "http error 404", "http error 410"},
	},
	{
		code:    utils.ErrorCodeUnsupportedURL,
		message: "this link is not supported",
		markers: []string{"unsupported url", "is not a valid url"},
	},
	{
		code:    utils.ErrorCodeUnsupportedFormat,
		message: "the video is not available in a supported format",
		markers: []string{"requested format is not available"},
	},
	{
		code:    utils.ErrorCodeNetworkError,
		message: "network error while downloading",
		markers: []string{"unable to download webpage", "connection refused", "connection reset", "timed out", "temporary failure in name resolution", "name or service not known", "network is unreachable", "ssl:"},
	},
}

// classifyFailure maps a failed yt-dlp run to an AppError using its stderr.
func classifyFailure(stderr string, cause error) *utils.AppError {
	lower := strings.ToLower(stderr)
	for _, rule := range failureRules {
		for _, marker := range rule.markers {
			if strings.Contains(lower, marker) {
				return utils.NewError(rule.code, rule.message, cause)
			}
		}
	}

	message := "failed to download the video"
	if line := lastErrorLine(stderr); line != "" {
		message = truncate(line, 200)
	}
	return utils.NewError(utils.ErrorCodeExtractionFailed, message, cause)
}

// lastErrorLine returns the last "ERROR:" line of yt-dlp output without its prefix.
func lastErrorLine(stderr string) string {
	lines := strings.Split(stderr, "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])
		if strings.HasPrefix(line, "ERROR:") {
			return strings.TrimSpace(strings.TrimPrefix(line, "ERROR:"))
		}
	}
	return ""
}
