package downloader

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/denisAlshanov/reelgrab/internal/config"
	"github.com/denisAlshanov/reelgrab/internal/models"
	"github.com/denisAlshanov/reelgrab/internal/utils"
)

// maxStderrDetail bounds how much yt-dlp stderr is kept in error details.
const maxStderrDetail = 4000

// defaultWaitDelay bounds how long Extract waits for output pipes after
// yt-dlp is killed. Child processes such as ffmpeg may still hold them open.
const defaultWaitDelay = 5 * time.Second

// Downloader runs yt-dlp for a single link and reports the files it wrote.
type Downloader struct {
	ytDlpPath string
	timeout   time.Duration
	waitDelay time.Duration
}

func NewDownloader(cfg *config.DownloadConfig) *Downloader {
	path := cfg.YtDlpPath
	if path == "" {
		path = "yt-dlp"
	}
	return &Downloader{
		ytDlpPath: path,
		timeout:   cfg.Timeout,
		waitDelay: defaultWaitDelay,
	}
}

// Extract downloads every entry behind link into opts.OutputDir. It blocks
// until yt-dlp exits. Failures are returned as *utils.AppError.
func (d *Downloader) Extract(ctx context.Context, link string, opts models.DownloadOptions) (*models.ExtractionResult, error) {
	runCtx := ctx
	if d.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(runCtx, d.ytDlpPath, buildArgs(link, opts)...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = d.waitDelay

	start := time.Now()
	err := cmd.Run()
	elapsed := time.Since(start)

	if err != nil {
		var appErr *utils.AppError
		switch {
		case errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist):
			appErr = utils.NewDownloaderMissingError(d.ytDlpPath, err)
		case errors.Is(runCtx.Err(), context.DeadlineExceeded):
			appErr = utils.NewDownloadTimeoutError(err).WithDetail("timeout", d.timeout.String())
		case errors.Is(ctx.Err(), context.Canceled):
			appErr = utils.NewDownloadCanceledError(err)
		default:
			appErr = classifyFailure(stderr.String(), err)
		}
		return nil, appErr.
			WithDetail("link", link).
			WithDetail("stderr", tail(stderr.String(), maxStderrDetail)).
			WithDetail("elapsed", elapsed.String())
	}

	files := collectFiles(stdout.String(), opts.OutputDir)
	if len(files) == 0 {
		return nil, utils.NewNoMediaError(link).
			WithDetail("stderr", tail(stderr.String(), maxStderrDetail))
	}

	utils.LogDebug(ctx, "yt-dlp finished", utils.Fields{
		"link":    link,
		"files":   len(files),
		"elapsed": elapsed.String(),
	})

	return &models.ExtractionResult{Files: files}, nil
}

// CheckBinary verifies that yt-dlp can be executed and returns its version.
func (d *Downloader) CheckBinary(ctx context.Context) (string, error) {
	out, err := exec.CommandContext(ctx, d.ytDlpPath, "--version").Output()
	if err != nil {
		return "", utils.NewDownloaderMissingError(d.ytDlpPath, err)
	}
	return strings.TrimSpace(string(out)), nil
}

// buildArgs translates DownloadOptions into yt-dlp flags. Every produced
// file path is printed on its own line after post-processing, in entry order.
func buildArgs(link string, opts models.DownloadOptions) []string {
	args := []string{
		"--no-progress",
		"--no-simulate",
		"--print", "after_move:filepath",
		"-o", opts.OutputTemplate,
	}

	if opts.Quiet {
		args = append(args, "--quiet", "--no-warnings")
	}

	if opts.Format != "" {
		args = append(args, "-f", opts.Format)
	}

	if opts.CookieFile != "" {
		args = append(args, "--cookies", opts.CookieFile)
	}

	if opts.MaxFileSize > 0 {
		args = append(args, "--max-filesize", strconv.FormatInt(opts.MaxFileSize, 10))
	}

	// Sorted so the command line is stable for a given set of headers.
	keys := make([]string, 0, len(opts.Headers))
	for k := range opts.Headers {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		args = append(args, "--add-header", fmt.Sprintf("%s:%s", k, opts.Headers[k]))
	}

	// Message text must never be parsed as an option.
	return append(args, "--", link)
}

// collectFiles keeps the printed paths that exist inside outputDir, in order
// and without duplicates.
func collectFiles(stdout, outputDir string) []string {
	var files []string
	seen := make(map[string]bool)

	for _, line := range strings.Split(stdout, "\n") {
		path := strings.TrimSpace(line)
		if path == "" {
			continue
		}
		path = filepath.Clean(path)
		if seen[path] || !withinDir(path, outputDir) {
			continue
		}
		info, err := os.Stat(path)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		seen[path] = true
		files = append(files, path)
	}

	return files
}

func withinDir(path, dir string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel != "." && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "…"
}

// tail keeps the end of s, where yt-dlp writes its final error.
func tail(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[len(s)-max:]
}
