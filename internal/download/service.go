package download

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/lrstanley/go-ytdlp"
	log "github.com/sirupsen/logrus"

	"github.com/ytget/mediatask/internal/model"
	"github.com/ytget/mediatask/internal/platform"
)

// Retry and format constants
const (
	// MaxAttempts is the total number of download attempts before giving up
	MaxAttempts = 3

	// DefaultFormatSelector picks the best available video+audio streams
	DefaultFormatSelector = "bestvideo+bestaudio/best"

	// DefaultAudioFormat for audio-only downloads
	DefaultAudioFormat = "mp3"

	// ProgressInterval between progress callback invocations
	ProgressInterval = 500 * time.Millisecond

	// OutputTemplate names downloaded files after the media title
	OutputTemplate = "%(title)s.%(ext)s"
)

// Service downloads media through the yt-dlp engine. Retry with exponential
// backoff lives here, not in the task manager: a failed attempt sleeps
// 2^attempt seconds before the next one.
type Service struct {
	outputDir string
	attempts  int
	runner    func(ctx context.Context, dl *ytdlp.Command, url string) (*ytdlp.Result, error)
}

// NewService creates a download service writing into outputDir
func NewService(outputDir string) *Service {
	return &Service{
		outputDir: outputDir,
		attempts:  MaxAttempts,
		runner: func(ctx context.Context, dl *ytdlp.Command, url string) (*ytdlp.Result, error) {
			return dl.Run(ctx, url)
		},
	}
}

// WithAttempts overrides the retry budget. Values below 1 are ignored.
func (s *Service) WithAttempts(attempts int) *Service {
	if attempts >= 1 {
		s.attempts = attempts
	}
	return s
}

// DownloadVideo downloads a single video and returns the resulting file
// path. An empty formatSelector falls back to the default selector.
func (s *Service) DownloadVideo(ctx context.Context, url, formatSelector string, sink model.ProgressSink) (string, error) {
	if formatSelector == "" {
		formatSelector = DefaultFormatSelector
	}

	dl := ytdlp.New().
		ForceOverwrites().
		RestrictFilenames().
		Format(formatSelector).
		Output(filepath.Join(s.outputDir, OutputTemplate))

	return s.run(ctx, dl, url, sink)
}

// DownloadAudio downloads a URL and extracts its audio track in the given
// format (default mp3).
func (s *Service) DownloadAudio(ctx context.Context, url, audioFormat string, sink model.ProgressSink) (string, error) {
	if audioFormat == "" {
		audioFormat = DefaultAudioFormat
	}

	dl := ytdlp.New().
		ForceOverwrites().
		RestrictFilenames().
		ExtractAudio().
		AudioFormat(audioFormat).
		Output(filepath.Join(s.outputDir, OutputTemplate))

	return s.run(ctx, dl, url, sink)
}

func (s *Service) run(ctx context.Context, dl *ytdlp.Command, url string, sink model.ProgressSink) (string, error) {
	cleaned := platform.CleanURL(url)
	if cleaned != url {
		log.Debugf("cleaned URL: %s -> %s", url, cleaned)
	}

	if sink != nil {
		dl.ProgressFunc(ProgressInterval, func(update ytdlp.ProgressUpdate) {
			sink(progressSnapshot(&update))
		})
	}

	result, err := s.runWithRetry(ctx, dl, cleaned)
	if err != nil {
		return "", err
	}

	return extractFilePath(result)
}

// runWithRetry attempts the download up to s.attempts times with exponential
// backoff between attempts. Context cancellation aborts both the attempt in
// flight and any backoff sleep.
func (s *Service) runWithRetry(ctx context.Context, dl *ytdlp.Command, url string) (*ytdlp.Result, error) {
	var lastErr error

	for attempt := 0; attempt < s.attempts; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(backoffDelay(attempt)):
			case <-ctx.Done():
				return nil, ctx.Err()
			}

			log.WithFields(log.Fields{"url": url, "attempt": attempt + 1}).Debug("retrying download")
		}

		result, err := s.runner(ctx, dl, url)
		if err == nil {
			return result, nil
		}

		lastErr = err
		log.Warnf("download attempt %d/%d failed: %v", attempt+1, s.attempts, err)

		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
	}

	return nil, fmt.Errorf("download failed after %d attempts: %w", s.attempts, lastErr)
}

// backoffDelay returns the sleep before the given attempt: 1s, 2s, 4s, ...
func backoffDelay(attempt int) time.Duration {
	return time.Duration(1<<(attempt-1)) * time.Second
}

// progressSnapshot converts a yt-dlp progress update into the shared
// progress shape.
func progressSnapshot(update *ytdlp.ProgressUpdate) model.Progress {
	p := model.Progress{
		Status:     "downloading",
		ETASeconds: -1,
	}

	if update.TotalBytes > 0 {
		p.Percentage = float64(update.DownloadedBytes) / float64(update.TotalBytes) * 100
	}

	if !update.Started.IsZero() {
		if elapsed := time.Since(update.Started); elapsed.Seconds() > 0 {
			p.Rate = float64(update.DownloadedBytes) / elapsed.Seconds()
		}
	}

	if eta := update.ETA(); eta > 0 {
		p.ETASeconds = int(eta.Seconds())
	}

	if update.Info != nil && update.Info.Title != nil {
		p.Label = *update.Info.Title
	}

	return p
}

// extractFilePath pulls the downloaded file path out of the yt-dlp result
func extractFilePath(result *ytdlp.Result) (string, error) {
	if result == nil {
		return "", fmt.Errorf("download produced no result")
	}

	info, err := result.GetExtractedInfo()
	if err != nil {
		return "", fmt.Errorf("extract download info: %w", err)
	}
	if len(info) == 0 || info[0].Filename == nil {
		return "", fmt.Errorf("download result has no file path")
	}

	return *info[0].Filename, nil
}
