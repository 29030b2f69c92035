// Package convert implements the transcode collaborator built on the ffmpeg
// and ffprobe binaries: single-attempt conversion and audio extraction with
// progress parsed from ffmpeg's machine-readable output.
package convert
