package main

import (
	"context"
	"fmt"
	"log"
	"math/rand/v2"
	"os"
	"runtime/debug"

	"github.com/charmbracelet/lipgloss"
	"github.com/journalehsan/tron-legacy-terminal/internal/app"
	"github.com/journalehsan/tron-legacy-terminal/internal/config"
	"github.com/journalehsan/tron-legacy-terminal/internal/engine"
	"github.com/journalehsan/tron-legacy-terminal/internal/logging"
	"github.com/journalehsan/tron-legacy-terminal/internal/render"
	"github.com/journalehsan/tron-legacy-terminal/internal/shutdown"
	"github.com/journalehsan/tron-legacy-terminal/internal/stats"
	"github.com/journalehsan/tron-legacy-terminal/internal/surface"
	"github.com/journalehsan/tron-legacy-terminal/internal/theme"
	"github.com/journalehsan/tron-legacy-terminal/internal/tui"
	"github.com/spf13/cobra"
)

var (
	configFile string
	preset     string
	renderer   string
	themeName  string
	seed       int64
	skipBoot   bool
	logFile    string
	plain      bool
	// headless commands
	rows   int
	cols   int
	frames int
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "tronterm",
		Short:        "tron legacy terminal animation",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSession(config.DefaultConfig())
		},
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run the boot sequence and animation",
		Args:  cobra.NoArgs,
		RunE:  runAnimation,
	}
	runCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml), cannot be combined with --preset")
	runCmd.Flags().StringVar(&preset, "preset", "", "use preset configuration, cannot be combined with --config")
	runCmd.Flags().StringVar(&renderer, "renderer", config.DefaultRenderer, "terminal backend (tcell|bubbletea)")
	runCmd.Flags().StringVar(&themeName, "theme", config.DefaultTheme, "color theme")
	runCmd.Flags().Int64Var(&seed, "seed", 0, "random seed (0 = time based)")
	runCmd.Flags().BoolVar(&skipBoot, "skip-boot", false, "go straight to the animation")
	runCmd.Flags().StringVar(&logFile, "log-file", "", "append logs to this file")
	runCmd.MarkFlagsMutuallyExclusive("config", "preset")

	snapshotCmd := &cobra.Command{
		Use:   "snapshot",
		Short: "render frames headless and print the last one",
		Args:  cobra.NoArgs,
		RunE:  runSnapshot,
	}
	addHeadlessFlags(snapshotCmd)
	snapshotCmd.Flags().StringVar(&themeName, "theme", config.DefaultTheme, "color theme")
	snapshotCmd.Flags().BoolVar(&plain, "plain", false, "print glyphs without colors")

	statsCmd := &cobra.Command{
		Use:   "stats",
		Short: "plot grid fill and the observed mutation rate",
		Args:  cobra.NoArgs,
		RunE:  runStats,
	}
	addHeadlessFlags(statsCmd)

	themesCmd := &cobra.Command{
		Use:   "themes",
		Short: "list color themes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			name := lipgloss.NewStyle().Bold(true).Width(8)
			fmt.Fprintln(cmd.OutOrStdout(), "available themes:")
			for _, th := range theme.Themes {
				fmt.Fprintf(cmd.OutOrStdout(), "  %s %s\n", name.Render(th.Name), th.Swatch())
			}
			return nil
		},
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), "available presets:")
			for _, p := range config.ListPresets() {
				fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", p)
			}
			return nil
		},
	}

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "manage config files",
	}
	initCmd := &cobra.Command{
		Use:   "init <path>",
		Short: "write a config file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := presetOrDefault()
			if err != nil {
				return err
			}
			if err := config.Save(args[0], cfg); err != nil {
				return fmt.Errorf("failed to write config: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", args[0])
			return nil
		},
	}
	initCmd.Flags().StringVar(&preset, "preset", "", "start from a preset")
	configCmd.AddCommand(initCmd)

	rootCmd.AddCommand(runCmd, snapshotCmd, statsCmd, themesCmd, presetsCmd, configCmd)
	return rootCmd
}

func addHeadlessFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&rows, "rows", 24, "grid rows")
	cmd.Flags().IntVar(&cols, "cols", 80, "grid columns")
	cmd.Flags().IntVar(&frames, "frames", 40, "frames to render")
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed (0 = time based)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset animation settings")
}

func presetOrDefault() (*config.Config, error) {
	if preset == "" {
		return config.DefaultConfig(), nil
	}
	cfg := config.GetPreset(preset)
	if cfg == nil {
		return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
	}
	return cfg, nil
}

// resolveConfig starts from the preset or the config file, then applies
// explicitly set flags.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	if configFile != "" && preset != "" {
		return nil, fmt.Errorf("%w: --config and --preset cannot be combined", config.ErrInvalidConfig)
	}
	cfg, err := presetOrDefault()
	if err != nil {
		return nil, err
	}

	if configFile != "" {
		cfg, err = config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}

	flags := cmd.Flags()
	if flags.Changed("renderer") {
		cfg.Renderer = renderer
	}
	if flags.Changed("theme") {
		cfg.Theme = themeName
	}
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("skip-boot") {
		cfg.Boot.Skip = skipBoot
	}
	if flags.Changed("log-file") {
		cfg.LogFile = logFile
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if _, err := theme.Lookup(cfg.Theme); err != nil {
		return nil, fmt.Errorf("%w: %v", config.ErrInvalidConfig, err)
	}
	return cfg, nil
}

func runAnimation(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	return runSession(cfg)
}

func runSession(cfg *config.Config) error {
	closer, err := logging.Init(cfg.LogFile)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer closer.Close()

	th, err := theme.Lookup(cfg.Theme)
	if err != nil {
		return err
	}

	ctx := context.Background()
	handler := shutdown.NewHandler(shutdown.NewToken(), nil)
	stop := handler.Listen(ctx)
	defer stop()

	surf, err := openSurface(ctx, cfg.Renderer, th, handler.Trigger)
	if err != nil {
		return err
	}
	handler.OnShutdown(surf.Restore)

	defer func() {
		if r := recover(); r != nil {
			surf.Restore()
			fmt.Fprintf(os.Stderr, "panic: %v\n%s", r, debug.Stack())
			os.Exit(1)
		}
	}()

	session := app.NewSession(surf, cfg, handler.Token(), nil)
	outcome, err := session.Run(ctx)
	log.Printf("exit: %s after %d frames", outcome, session.Frames())
	if t, ok := surf.(*tui.Surface); ok {
		if perr := t.Err(); perr != nil {
			log.Printf("exit: bubbletea program: %v", perr)
		}
	}
	return err
}

func openSurface(ctx context.Context, name string, th theme.Theme, onInterrupt func()) (surface.Surface, error) {
	switch name {
	case config.RendererBubbletea:
		s := tui.NewSurface(th, onInterrupt)
		if err := s.Start(ctx); err != nil {
			return nil, err
		}
		return s, nil
	case config.RendererTcell:
		t, err := surface.NewTcell(th, onInterrupt)
		if err != nil {
			return nil, err
		}
		return t, nil
	default:
		return nil, fmt.Errorf("%w: unknown renderer %q", config.ErrInvalidConfig, name)
	}
}

// headless steps a fresh engine over an in-memory surface.
func headless(observers ...engine.Observer) (*surface.Memory, *config.Config, error) {
	if rows <= 0 || cols <= 0 {
		return nil, nil, fmt.Errorf("%w: grid must be at least 1x1, got %dx%d", config.ErrInvalidConfig, rows, cols)
	}
	if frames < 1 {
		return nil, nil, fmt.Errorf("%w: frames must be positive, got %d", config.ErrInvalidConfig, frames)
	}
	cfg, err := presetOrDefault()
	if err != nil {
		return nil, nil, err
	}

	mem := surface.NewMemory(rows, cols)
	mem.SetRecording(false)

	var rng *rand.Rand
	if seed != 0 {
		rng = app.NewRand(seed)
	}
	eng := engine.New(mem, nil, cfg.Animation, rng)
	for _, o := range observers {
		eng.AddObserver(o)
	}
	for i := 0; i < frames; i++ {
		if err := eng.Step(); err != nil {
			return nil, nil, err
		}
	}
	return mem, cfg, nil
}

func runSnapshot(cmd *cobra.Command, args []string) error {
	th, err := theme.Lookup(themeName)
	if err != nil {
		return fmt.Errorf("%w: %v", config.ErrInvalidConfig, err)
	}
	mem, _, err := headless()
	if err != nil {
		return err
	}
	if plain {
		fmt.Fprintln(cmd.OutOrStdout(), render.Plain(mem))
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), render.Frame(mem, th))
	return nil
}

func runStats(cmd *cobra.Command, args []string) error {
	cov := stats.NewCoverage()
	_, cfg, err := headless(cov)
	if err != nil {
		return err
	}

	width := min(cols, 80)
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, cov.Plot(width, 10))
	fmt.Fprintln(out)
	fmt.Fprintln(out, cov.Summary(cfg.Animation.MutationProbability))
	return nil
}
