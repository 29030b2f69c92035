package convert

import (
	"context"

	"github.com/ytget/mediatask/internal/model"
)

// Job labels
const (
	ConvertJobLabel      = "convert"
	ExtractAudioJobLabel = "extract-audio"
)

// ConvertJob transcodes one file as a task. It satisfies the task package's
// progress-reporting job contract.
type ConvertJob struct {
	Service    Converter
	InputPath  string
	OutputPath string
	Options    Options
}

// Label returns the job kind
func (j *ConvertJob) Label() string { return ConvertJobLabel }

// Run converts without progress reporting
func (j *ConvertJob) Run(ctx context.Context) (any, error) {
	return j.RunWithProgress(ctx, nil)
}

// RunWithProgress converts and forwards progress to the sink
func (j *ConvertJob) RunWithProgress(ctx context.Context, sink model.ProgressSink) (any, error) {
	path, err := j.Service.Convert(ctx, j.InputPath, j.OutputPath, j.Options, sink)
	if err != nil {
		return nil, err
	}
	return path, nil
}

// ExtractAudioJob pulls the audio track of one file as a task.
type ExtractAudioJob struct {
	Service     Converter
	InputPath   string
	OutputPath  string
	AudioFormat string
}

// Label returns the job kind
func (j *ExtractAudioJob) Label() string { return ExtractAudioJobLabel }

// Run extracts without progress reporting
func (j *ExtractAudioJob) Run(ctx context.Context) (any, error) {
	return j.RunWithProgress(ctx, nil)
}

// RunWithProgress extracts and forwards progress to the sink
func (j *ExtractAudioJob) RunWithProgress(ctx context.Context, sink model.ProgressSink) (any, error) {
	path, err := j.Service.ExtractAudio(ctx, j.InputPath, j.OutputPath, j.AudioFormat, sink)
	if err != nil {
		return nil, err
	}
	return path, nil
}
