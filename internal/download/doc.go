// Package download implements the download collaborator built on top of
// yt-dlp (via github.com/lrstanley/go-ytdlp). It owns retry with exponential
// backoff, URL cleanup, and progress propagation; task scheduling lives in
// the task package.
package download
