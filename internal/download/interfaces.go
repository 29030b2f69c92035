package download

import (
	"context"

	"github.com/ytget/mediatask/internal/model"
)

// Downloader defines the interface for the download collaborator. Each call
// blocks until the file is on disk or the attempts are exhausted; a nil sink
// disables progress reporting.
type Downloader interface {
	DownloadVideo(ctx context.Context, url, formatSelector string, sink model.ProgressSink) (string, error)
	DownloadAudio(ctx context.Context, url, audioFormat string, sink model.ProgressSink) (string, error)
}
