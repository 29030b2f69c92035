package convert

import (
	"context"

	"github.com/ytget/mediatask/internal/model"
)

// Converter defines the interface for the transcode collaborator. Each call
// blocks until the output file is written or the engine fails; there is no
// internal retry.
type Converter interface {
	Convert(ctx context.Context, inputPath, outputPath string, opts Options, sink model.ProgressSink) (string, error)
	ExtractAudio(ctx context.Context, inputPath, outputPath, audioFormat string, sink model.ProgressSink) (string, error)
}
