package main

import (
	"fmt"
	"os"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/ytget/mediatask/internal/config"
	"github.com/ytget/mediatask/internal/convert"
	"github.com/ytget/mediatask/internal/download"
	"github.com/ytget/mediatask/internal/model"
	"github.com/ytget/mediatask/internal/platform"
	"github.com/ytget/mediatask/internal/task"
)

// Application metadata
const (
	AppName  = "mediatask"
	AppUsage = "download and convert media through a local task pool"
)

func main() {
	app := &cli.App{
		Name:  AppName,
		Usage: AppUsage,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to YAML config file",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "enable debug logging",
			},
			&cli.IntFlag{
				Name:  "workers",
				Usage: "worker pool size (overrides config)",
			},
			&cli.StringFlag{
				Name:  "executor",
				Usage: "execution strategy: goroutine or osthread (overrides config)",
			},
		},
		Commands: []*cli.Command{
			downloadCommand(),
			batchCommand(),
			convertCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func downloadCommand() *cli.Command {
	return &cli.Command{
		Name:      "download",
		Usage:     "download one or more URLs",
		ArgsUsage: "URL [URL...]",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "audio",
				Aliases: []string{"a"},
				Usage:   "extract audio instead of downloading video",
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "yt-dlp format selector",
			},
			&cli.StringFlag{
				Name:  "audio-format",
				Usage: "audio format for --audio downloads",
			},
			&cli.StringFlag{
				Name:    "output-dir",
				Aliases: []string{"o"},
				Usage:   "directory for downloaded files",
			},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() == 0 {
				return fmt.Errorf("at least one URL is required")
			}
			return runDownload(c, c.Args().Slice())
		},
	}
}

func batchCommand() *cli.Command {
	return &cli.Command{
		Name:  "batch",
		Usage: "download every URL listed in a file",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "file",
				Aliases:  []string{"i"},
				Usage:    "text file with one URL per line",
				Required: true,
			},
			&cli.BoolFlag{
				Name:    "audio",
				Aliases: []string{"a"},
				Usage:   "extract audio instead of downloading video",
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "yt-dlp format selector",
			},
			&cli.StringFlag{
				Name:  "audio-format",
				Usage: "audio format for --audio downloads",
			},
			&cli.StringFlag{
				Name:    "output-dir",
				Aliases: []string{"o"},
				Usage:   "directory for downloaded files",
			},
			&cli.IntFlag{
				Name:  "batch-size",
				Usage: "items per batch round (overrides config)",
			},
		},
		Action: runBatch,
	}
}

func convertCommand() *cli.Command {
	return &cli.Command{
		Name:      "convert",
		Usage:     "convert a local media file with ffmpeg",
		ArgsUsage: "INPUT [OUTPUT]",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "extract-audio",
				Usage: "extract the audio track instead of transcoding",
			},
			&cli.StringFlag{
				Name:  "audio-format",
				Usage: "audio format for --extract-audio",
			},
			&cli.StringFlag{
				Name:  "video-codec",
				Usage: "video codec for transcoding",
			},
			&cli.StringFlag{
				Name:  "crf",
				Usage: "constant rate factor for transcoding",
			},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() == 0 {
				return fmt.Errorf("an input file is required")
			}
			return runConvert(c)
		},
	}
}

// loadConfig resolves the effective configuration from the config file and
// command line overrides, and applies the log level.
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg := config.Default()

	if path := c.String("config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if workers := c.Int("workers"); workers > 0 {
		cfg.Workers = workers
	}
	if executor := c.String("executor"); executor != "" {
		cfg.Executor = executor
	}
	if dir := c.String("output-dir"); dir != "" {
		cfg.DownloadDir = dir
	}
	if format := c.String("format"); format != "" {
		cfg.FormatSelector = format
	}
	if audioFormat := c.String("audio-format"); audioFormat != "" {
		cfg.AudioFormat = audioFormat
	}
	if size := c.Int("batch-size"); size > 0 {
		cfg.BatchSize = size
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	level := cfg.LogLevel
	if c.Bool("verbose") {
		level = "debug"
	}
	parsed, err := log.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("parse log level: %w", err)
	}
	log.SetLevel(parsed)

	return cfg, nil
}

func runDownload(c *cli.Context, urls []string) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	if err := platform.CreateDirectoryIfNotExists(cfg.DownloadDir); err != nil {
		return fmt.Errorf("create download directory: %w", err)
	}

	manager := task.NewManager(task.Options{Workers: cfg.Workers, Executor: cfg.Executor})
	defer manager.Shutdown(true)

	service := download.NewService(cfg.DownloadDir).WithAttempts(cfg.Retries)

	for _, url := range urls {
		job := downloadJob(service, url, c.Bool("audio"), cfg)
		id, err := manager.SubmitWithProgress(job, progressPrinter(url))
		if err != nil {
			return fmt.Errorf("submit %s: %w", url, err)
		}
		log.WithFields(log.Fields{"task": id, "url": url}).Debug("download queued")
	}

	finished := manager.Wait(nil, 0)
	fmt.Println()

	failed := reportResults(finished)
	logStatistics(manager)

	if failed > 0 {
		return fmt.Errorf("%d of %d downloads failed", failed, len(urls))
	}
	return nil
}

func runBatch(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	urls, err := platform.ParseURLListFile(c.String("file"))
	if err != nil {
		return err
	}
	if len(urls) == 0 {
		return fmt.Errorf("no URLs found in %s", c.String("file"))
	}
	if err := platform.CreateDirectoryIfNotExists(cfg.DownloadDir); err != nil {
		return fmt.Errorf("create download directory: %w", err)
	}

	manager := task.NewManager(task.Options{Workers: cfg.Workers, Executor: cfg.Executor})
	defer manager.Shutdown(true)

	service := download.NewService(cfg.DownloadDir).WithAttempts(cfg.Retries)
	audio := c.Bool("audio")

	coordinator := task.NewCoordinator(manager, cfg.BatchSize)
	coordinator.OnProgress = func(overall float64) {
		fmt.Printf("\roverall: %5.1f%%", overall)
	}

	items := make([]any, len(urls))
	for i, url := range urls {
		items[i] = url
	}

	result := coordinator.Process(items, func(item any) task.Job {
		return downloadJob(service, item.(string), audio, cfg)
	})
	fmt.Println()

	for _, outcome := range result.Completed {
		fmt.Printf("done: %v -> %v\n", outcome.Item, outcome.Result)
	}
	for _, outcome := range result.Failed {
		fmt.Printf("failed: %v (%v)\n", outcome.Item, outcome.Err)
	}
	logStatistics(manager)

	if len(result.Failed) > 0 {
		return fmt.Errorf("%d of %d batch items failed", len(result.Failed), result.Total)
	}
	return nil
}

func runConvert(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	input := c.Args().Get(0)
	output := c.Args().Get(1)

	manager := task.NewManager(task.Options{Workers: cfg.Workers, Executor: cfg.Executor})
	defer manager.Shutdown(true)

	service := convert.NewService()

	var job task.Job
	if c.Bool("extract-audio") {
		job = &convert.ExtractAudioJob{
			Service:     service,
			InputPath:   input,
			OutputPath:  output,
			AudioFormat: cfg.AudioFormat,
		}
	} else {
		job = &convert.ConvertJob{
			Service:    service,
			InputPath:  input,
			OutputPath: output,
			Options: convert.Options{
				VideoCodec: c.String("video-codec"),
				CRF:        c.String("crf"),
			},
		}
	}

	if _, err := manager.SubmitWithProgress(job, progressPrinter(input)); err != nil {
		return fmt.Errorf("submit conversion: %w", err)
	}

	finished := manager.Wait(nil, 0)
	fmt.Println()

	if failed := reportResults(finished); failed > 0 {
		return fmt.Errorf("conversion failed")
	}
	return nil
}

// downloadJob builds the job shape for one URL depending on the audio flag
func downloadJob(service *download.Service, url string, audio bool, cfg *config.Config) task.Job {
	if audio {
		return &download.AudioJob{Service: service, URL: url, AudioFormat: cfg.AudioFormat}
	}
	return &download.VideoJob{Service: service, URL: url, Format: cfg.FormatSelector}
}

// progressPrinter renders one task's progress on the terminal
func progressPrinter(label string) model.ProgressSink {
	return func(p model.Progress) {
		line := fmt.Sprintf("\r%s: %5.1f%%", label, p.Percentage)
		if rate := p.GetRateString(); rate != "" {
			line += " " + rate
		}
		if eta := p.GetETAString(); eta != "—" {
			line += " ETA " + eta
		}
		fmt.Print(line)
	}
}

// reportResults prints each task's outcome and returns the failure count
func reportResults(finished map[string]*model.TaskRecord) int {
	failed := 0
	for _, record := range finished {
		switch record.Status {
		case model.TaskStatusCompleted:
			fmt.Printf("done: %v (%s in %s)\n", record.Result, record.Label, record.Duration().Round(100*time.Millisecond))
		case model.TaskStatusCancelled:
			fmt.Printf("cancelled: %s\n", record.Label)
			failed++
		default:
			fmt.Printf("failed: %s (%s)\n", record.Label, record.Error)
			failed++
		}
	}
	return failed
}

func logStatistics(m *task.Manager) {
	stats := m.Statistics()
	log.WithFields(log.Fields{
		"submitted": stats.Submitted,
		"completed": stats.Completed,
		"failed":    stats.Failed,
		"cancelled": stats.Cancelled,
		"executor":  stats.ExecutorKind,
		"workers":   stats.MaxWorkers,
	}).Info("run finished")
}
