package download

import (
	"context"

	"github.com/ytget/mediatask/internal/model"
)

// Job labels
const (
	VideoJobLabel = "download-video"
	AudioJobLabel = "download-audio"
)

// VideoJob downloads one URL as a task. It satisfies the task package's
// progress-reporting job contract.
type VideoJob struct {
	Service Downloader
	URL     string
	Format  string
}

// Label returns the job kind
func (j *VideoJob) Label() string { return VideoJobLabel }

// Run downloads without progress reporting
func (j *VideoJob) Run(ctx context.Context) (any, error) {
	return j.RunWithProgress(ctx, nil)
}

// RunWithProgress downloads and forwards progress to the sink
func (j *VideoJob) RunWithProgress(ctx context.Context, sink model.ProgressSink) (any, error) {
	path, err := j.Service.DownloadVideo(ctx, j.URL, j.Format, sink)
	if err != nil {
		return nil, err
	}
	return path, nil
}

// AudioJob downloads one URL and extracts its audio track as a task.
type AudioJob struct {
	Service     Downloader
	URL         string
	AudioFormat string
}

// Label returns the job kind
func (j *AudioJob) Label() string { return AudioJobLabel }

// Run downloads without progress reporting
func (j *AudioJob) Run(ctx context.Context) (any, error) {
	return j.RunWithProgress(ctx, nil)
}

// RunWithProgress downloads and forwards progress to the sink
func (j *AudioJob) RunWithProgress(ctx context.Context, sink model.ProgressSink) (any, error) {
	path, err := j.Service.DownloadAudio(ctx, j.URL, j.AudioFormat, sink)
	if err != nil {
		return nil, err
	}
	return path, nil
}
