package convert

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/ytget/mediatask/internal/model"
	"github.com/ytget/mediatask/internal/platform"
)

// FFmpeg defaults
const (
	DefaultVideoCodec   = "libx264"
	DefaultVideoPreset  = "medium"
	DefaultVideoCRF     = "23"
	DefaultAudioCodec   = "aac"
	DefaultAudioBitrate = "128k"

	// Container flags
	FastStartFlag = "+faststart"

	// Executable and I/O constants
	FFmpegCommand       = "ffmpeg"
	FFprobeCommand      = "ffprobe"
	FFprobeLogLevel     = "error"
	FFprobeShowEntries  = "format=duration"
	FFprobeOutputFormat = "csv=p=0"
	ProgressPipeTarget  = "pipe:2"
	ProgressTimePrefix  = "out_time_us="

	// Output naming
	ConvertedSuffix    = "-converted"
	OutputExtensionMP4 = ".mp4"
)

// audioCodecs maps extraction formats to ffmpeg encoder names
var audioCodecs = map[string]string{
	"mp3":  "libmp3lame",
	"aac":  "aac",
	"wav":  "pcm_s16le",
	"flac": "flac",
	"ogg":  "libvorbis",
}

// Options control the ffmpeg invocation. Zero-value fields fall back to the
// package defaults.
type Options struct {
	VideoCodec   string
	Preset       string
	CRF          string
	AudioCodec   string
	AudioBitrate string
}

func (o Options) withDefaults() Options {
	if o.VideoCodec == "" {
		o.VideoCodec = DefaultVideoCodec
	}
	if o.Preset == "" {
		o.Preset = DefaultVideoPreset
	}
	if o.CRF == "" {
		o.CRF = DefaultVideoCRF
	}
	if o.AudioCodec == "" {
		o.AudioCodec = DefaultAudioCodec
	}
	if o.AudioBitrate == "" {
		o.AudioBitrate = DefaultAudioBitrate
	}
	return o
}

// Service converts media files through the ffmpeg engine. Every operation is
// a single attempt with no internal retry.
type Service struct{}

// NewService creates a conversion service
func NewService() *Service {
	return &Service{}
}

// Convert transcodes inputPath into outputPath and returns the output path.
// An empty outputPath derives one next to the input. Progress is reported to
// sink as a percentage of the input duration; a nil sink disables it. On
// failure or cancellation the partial output file is removed.
func (s *Service) Convert(ctx context.Context, inputPath, outputPath string, opts Options, sink model.ProgressSink) (string, error) {
	if _, err := os.Stat(inputPath); os.IsNotExist(err) {
		return "", fmt.Errorf("input file does not exist: %s", inputPath)
	}
	if outputPath == "" {
		outputPath = platform.UniquePath(defaultOutputPath(inputPath))
	}

	args := BuildFFmpegArgs(inputPath, outputPath, opts.withDefaults())

	return s.runFFmpeg(ctx, inputPath, outputPath, args, "converting", sink)
}

// ExtractAudio pulls the audio track of inputPath into a standalone file in
// the given format (default mp3).
func (s *Service) ExtractAudio(ctx context.Context, inputPath, outputPath, audioFormat string, sink model.ProgressSink) (string, error) {
	if _, err := os.Stat(inputPath); os.IsNotExist(err) {
		return "", fmt.Errorf("input file does not exist: %s", inputPath)
	}
	if audioFormat == "" {
		audioFormat = "mp3"
	}

	codec, ok := audioCodecs[audioFormat]
	if !ok {
		return "", fmt.Errorf("unsupported audio format: %s", audioFormat)
	}
	if outputPath == "" {
		ext := filepath.Ext(inputPath)
		outputPath = platform.UniquePath(strings.TrimSuffix(inputPath, ext) + "." + audioFormat)
	}

	args := []string{
		"-y",
		"-i", inputPath,
		"-vn",
		"-acodec", codec,
		"-progress", ProgressPipeTarget,
		"-nostats",
		outputPath,
	}

	return s.runFFmpeg(ctx, inputPath, outputPath, args, "extracting audio", sink)
}

// runFFmpeg starts ffmpeg, monitors its progress stream, and cleans up
// partial output on failure.
func (s *Service) runFFmpeg(ctx context.Context, inputPath, outputPath string, args []string, phase string, sink model.ProgressSink) (string, error) {
	duration, err := s.probeDuration(ctx, inputPath)
	if err != nil {
		return "", err
	}

	cmd := exec.CommandContext(ctx, FFmpegCommand, args...)

	stderr, err := cmd.StderrPipe()
	if err != nil {
		return "", fmt.Errorf("create stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return "", fmt.Errorf("start ffmpeg: %w", err)
	}

	log.WithFields(log.Fields{"input": inputPath, "output": outputPath}).Debugf("ffmpeg started: %s", phase)

	monitorDone := make(chan struct{})
	go func() {
		defer close(monitorDone)
		s.monitorProgress(stderr, duration, phase, sink)
	}()

	err = cmd.Wait()
	<-monitorDone

	if ctx.Err() != nil {
		os.Remove(outputPath)
		return "", ctx.Err()
	}
	if err != nil {
		os.Remove(outputPath)
		return "", fmt.Errorf("ffmpeg: %w", err)
	}

	if sink != nil {
		sink(model.Progress{Percentage: 100, Status: phase})
	}

	return outputPath, nil
}

// BuildFFmpegArgs builds the ffmpeg command arguments for a conversion
func BuildFFmpegArgs(inputPath, outputPath string, opts Options) []string {
	return []string{
		"-y",            // Overwrite output file
		"-i", inputPath, // Input file
		"-c:v", opts.VideoCodec, // Video codec
		"-preset", opts.Preset, // Encoding preset
		"-crf", opts.CRF, // Constant rate factor
		"-c:a", opts.AudioCodec, // Audio codec
		"-b:a", opts.AudioBitrate, // Audio bitrate
		"-movflags", FastStartFlag, // MP4 optimization
		"-progress", ProgressPipeTarget, // Progress to stderr
		"-nostats", // No stats output
		outputPath, // Output file
	}
}

// probeDuration gets the duration of a media file in seconds using ffprobe
func (s *Service) probeDuration(ctx context.Context, filePath string) (float64, error) {
	cmd := exec.CommandContext(ctx, FFprobeCommand,
		"-v", FFprobeLogLevel,
		"-show_entries", FFprobeShowEntries,
		"-of", FFprobeOutputFormat,
		filePath)

	output, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("run ffprobe: %w", err)
	}

	durationStr := strings.TrimSpace(string(output))
	duration, err := strconv.ParseFloat(durationStr, 64)
	if err != nil {
		return 0, fmt.Errorf("parse duration: %w", err)
	}

	return duration, nil
}

// monitorProgress parses ffmpeg's progress stream and forwards percentages
// to the sink.
func (s *Service) monitorProgress(stderr io.ReadCloser, totalDuration float64, phase string, sink model.ProgressSink) {
	defer stderr.Close()
	scanner := bufio.NewScanner(stderr)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if !strings.HasPrefix(line, ProgressTimePrefix) {
			continue
		}

		percentage, ok := parseProgressLine(line, totalDuration)
		if !ok {
			continue
		}

		if sink != nil {
			sink(model.Progress{Percentage: percentage, Status: phase})
		}
	}
}

// parseProgressLine converts an out_time_us line into a percentage of the
// total duration.
func parseProgressLine(line string, totalDuration float64) (float64, bool) {
	if totalDuration <= 0 {
		return 0, false
	}

	timeStr := strings.TrimPrefix(line, ProgressTimePrefix)
	timeMicroseconds, err := strconv.ParseInt(timeStr, 10, 64)
	if err != nil {
		return 0, false
	}

	timeSeconds := float64(timeMicroseconds) / 1000000.0

	percentage := timeSeconds / totalDuration * 100
	if percentage > 100 {
		percentage = 100
	}

	return percentage, true
}

// defaultOutputPath derives the converted file name from the input path
func defaultOutputPath(inputPath string) string {
	ext := filepath.Ext(inputPath)
	baseName := strings.TrimSuffix(inputPath, ext)
	return baseName + ConvertedSuffix + OutputExtensionMP4
}
