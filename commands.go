package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/yeti47/fer-collector/camera"
	"github.com/yeti47/fer-collector/common"
	"github.com/yeti47/fer-collector/config"
	filemanagement "github.com/yeti47/fer-collector/file-management"
	"github.com/yeti47/fer-collector/labels"
	"github.com/yeti47/fer-collector/logging"
	postprocessing "github.com/yeti47/fer-collector/post-processing"
	processingqueue "github.com/yeti47/fer-collector/processing-queue"
	"github.com/yeti47/fer-collector/recording"
	"github.com/yeti47/fer-collector/session"
	"github.com/yeti47/fer-collector/ui"
	"github.com/yeti47/fer-collector/video"
)

type rootFlags struct {
	configPath   string
	outputDir    string
	cameraDevice string
	duration     int
	category     string
	logLevel     string
	postProcess  bool
}

func newRootCommand() *cobra.Command {
	var flags rootFlags

	rootCmd := &cobra.Command{
		Use:           "fer-collector",
		Short:         "Record labeled webcam clips for expression and engagement datasets",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig(cmd, &flags)
			if err != nil {
				return err
			}
			return runCollector(cmd.Context(), flags.configPath, cfg)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "config.json", "Configuration file path")
	rootCmd.Flags().StringVarP(&flags.outputDir, "output-dir", "o", "", "Directory clips are saved to (overrides config)")
	rootCmd.Flags().StringVar(&flags.cameraDevice, "camera-device", "", "Camera index or device path (overrides config)")
	rootCmd.Flags().IntVarP(&flags.duration, "duration", "d", 0, "Clip duration in seconds, 3-10 (overrides config)")
	rootCmd.Flags().StringVar(&flags.category, "category", "", "Label category: Emotions or Engagement (overrides config)")
	rootCmd.Flags().StringVar(&flags.logLevel, "log-level", "", "Log level: debug, info, warn, error (overrides config)")
	rootCmd.Flags().BoolVar(&flags.postProcess, "post-process", false, "Transcode saved clips with ffmpeg (overrides config)")

	rootCmd.AddCommand(newInitConfigCommand(&flags))
	rootCmd.AddCommand(newLabelsCommand())
	rootCmd.AddCommand(newStatsCommand(&flags))

	return rootCmd
}

// loadConfig reads the config file and applies the flags the user set
func loadConfig(cmd *cobra.Command, flags *rootFlags) (*config.Config, config.ConfigOverrides, error) {
	cfg, err := config.LoadConfig(flags.configPath)
	if err != nil {
		return nil, config.ConfigOverrides{}, fmt.Errorf("failed to load configuration: %w", err)
	}

	var overrides config.ConfigOverrides
	changed := cmd.Flags().Changed
	if changed("output-dir") {
		overrides.OutputDir = &flags.outputDir
	}
	if changed("camera-device") {
		overrides.CameraDevice = &flags.cameraDevice
	}
	if changed("duration") {
		overrides.ClipDurationSeconds = &flags.duration
	}
	if changed("category") {
		overrides.Category = &flags.category
	}
	if changed("log-level") {
		overrides.LogLevel = &flags.logLevel
	}
	if changed("post-process") {
		overrides.PostProcess = &flags.postProcess
	}

	cfg.Override(overrides)
	if err := cfg.Validate(); err != nil {
		return nil, overrides, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, overrides, nil
}

// startupSettings freezes the validated config for the lifetime of the process.
// Edits to the file take effect on the next start.
func startupSettings(cfg *config.Config) config.SettingsProvider[config.Config] {
	return config.NewStaticSettingsProvider(*cfg)
}

func runCollector(ctx context.Context, configPath string, cfg *config.Config) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := logging.CreateLogger(logging.ParseLogLevel(cfg.LogLevel), cfg.LogPath, "fer-collector", cfg.LogToConsole)
	logger.Info("Configuration loaded",
		"config", configPath,
		"camera_device", cfg.CameraDevice,
		"output_dir", cfg.OutputDir,
		"clip_duration_seconds", cfg.ClipDurationSeconds,
		"category", cfg.Category,
		"clip_codec", video.ClipCodec,
		"clip_frame_rate", video.ClipFrameRate,
		"post_processing", cfg.PostProcessing.Enabled)

	settingsProvider := startupSettings(cfg)

	cam, err := camera.Open(cfg.CameraDevice, cfg.FrameSize(), logging.With(logger, "component", "camera"))
	if err != nil {
		return err
	}
	defer cam.Close()

	sess, err := session.New(cfg.LabelCategory(), cfg.ClipDurationSeconds, cfg.OutputDir)
	if err != nil {
		return err
	}

	fileTracker := filemanagement.NewLocalFileTracker(logging.With(logger, "component", "files"))
	postProcessingSettings := postprocessing.NewPostProcessingSettingsProvider(settingsProvider)

	var queue processingqueue.ProcessingQueue
	if cfg.PostProcessing.Enabled {
		processor := postprocessing.NewFfmpegPostProcessor(
			postProcessingSettings,
			common.NewFFmpegCodecProvider(logger),
			logging.With(logger, "component", "post-processing"),
		)
		queue = processingqueue.NewProcessingQueue(
			processor,
			cfg.PostProcessing.QueueSize,
			cfg.PostProcessing.MaxRetries,
			time.Duration(cfg.PostProcessing.DrainTimeoutSeconds)*time.Second,
			logging.With(logger, "component", "processing-queue"),
		)
	}

	collector := NewCollector(queue, fileTracker, postProcessingSettings, cfg.OutputDir, logger)

	slot := ui.NewFrameSlot()
	defer slot.Close()

	controller, err := session.NewController(sess, session.Options{
		Recorder: recording.NewRecorder(cam, recording.NewRecordingSettingsProvider(settingsProvider),
			logging.With(logger, "component", "recorder")),
		Encoder:     video.NewGoCVEncoder(logging.With(logger, "component", "encoder")),
		Display:     slot,
		OnClipSaved: collector.OnClipSaved,
		Logger:      logging.With(logger, "component", "session"),
	})
	if err != nil {
		return err
	}

	if err := collector.Start(ctx, controller); err != nil {
		return err
	}
	defer collector.Stop()

	window := ui.NewWindow(ui.DefaultWindowSettings(), slot, logging.With(logger, "component", "ui"))
	return window.Run(ctx, controller, cam)
}

func newInitConfigCommand(flags *rootFlags) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init-config",
		Short: "Write a configuration file with default values",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(flags.configPath); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", flags.configPath)
			}
			if err := config.DefaultConfig().SaveConfig(flags.configPath); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", flags.configPath)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")
	return cmd
}

func newLabelsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "labels",
		Short: "List the label categories and their classes in recording order",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			for _, category := range labels.Categories {
				fmt.Fprintf(out, "%s: %s\n", category, strings.Join(category.Labels(), ", "))
			}
			return nil
		},
	}
}

func newStatsCommand(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "stats [dir]",
		Short: "Count the saved clips per label",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := ""
			if len(args) == 1 {
				dir = args[0]
			} else {
				cfg, err := config.LoadConfig(flags.configPath)
				if err != nil {
					return fmt.Errorf("failed to load configuration: %w", err)
				}
				dir = cfg.OutputDir
			}

			counts, err := filemanagement.NewLocalFileTracker(nil).CountClips(dir)
			if err != nil {
				return err
			}
			writeStats(cmd, dir, counts)
			return nil
		},
	}
}

func writeStats(cmd *cobra.Command, dir string, counts map[string]int) {
	out := cmd.OutOrStdout()
	names := make([]string, 0, len(counts))
	total := 0
	for name, n := range counts {
		names = append(names, name)
		total += n
	}
	sort.Strings(names)

	fmt.Fprintf(out, "%s: %d clips\n", dir, total)
	for _, name := range names {
		fmt.Fprintf(out, "  %-12s %d\n", name, counts[name])
	}
}
