package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/mpcsim/internal/config"
	"github.com/san-kum/mpcsim/internal/export"
	"github.com/san-kum/mpcsim/internal/metrics"
	"github.com/san-kum/mpcsim/internal/optim"
	"github.com/san-kum/mpcsim/internal/scene"
	"github.com/san-kum/mpcsim/internal/storage"
	"github.com/san-kum/mpcsim/internal/viz"
	"github.com/spf13/cobra"
)

var (
	dataDir   string
	storeKind string
	verbose   bool

	scenePath    string
	outPath      string
	configFile   string
	preset       string
	dt           float64
	eps          float64
	controlIters int
	rolloutIters int
	workers      int
	seed         int64
	maxSteps     int

	svgOut  string
	svgSize int

	benchSteps  int
	tuneSamples string
	tuneRollout string
	tuneTrials  int
)

var logger = log.NewWithOptions(os.Stderr, log.Options{
	ReportTimestamp: true,
	TimeFormat:      time.Kitchen,
	Prefix:          "mpcsim",
})

func main() {
	rootCmd := &cobra.Command{
		Use:           "mpcsim",
		Short:         "sampling-based MPC simulator",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				logger.SetLevel(log.DebugLevel)
			}
		},
		// bare invocation loads the default scene, runs it and saves the result
		RunE: runScene,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".mpcsim", "data directory")
	rootCmd.PersistentFlags().StringVar(&storeKind, "store", config.DefaultStore, "run store (file, sqlite)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	addSceneFlags(rootCmd)

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a scene until an agent reaches its goal",
		RunE:  runScene,
	}
	addSceneFlags(runCmd)

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run a scene with live visualization",
		RunE:  runLive,
	}
	addSceneFlags(liveCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot goal distance of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	svgCmd := &cobra.Command{
		Use:   "svg [run_id]",
		Short: "draw agent paths of a run as SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  svgRun,
	}
	svgCmd.Flags().StringVarP(&svgOut, "output", "o", "", "output file (default stdout)")
	svgCmd.Flags().IntVar(&svgSize, "size", 600, "image size in pixels")

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "time scene steps sequentially and in parallel",
		RunE:  benchScene,
	}
	addSceneFlags(benchCmd)
	benchCmd.Flags().IntVar(&benchSteps, "steps", 20, "steps per measurement")

	tuneCmd := &cobra.Command{
		Use:   "tune",
		Short: "grid search sample counts for fewest steps to goal",
		RunE:  tuneScene,
	}
	addSceneFlags(tuneCmd)
	tuneCmd.Flags().StringVar(&tuneSamples, "samples-grid", "100,1000,10000", "comma separated sample counts")
	tuneCmd.Flags().StringVar(&tuneRollout, "rollout-grid", "5,10,20", "comma separated rollout lengths")
	tuneCmd.Flags().IntVar(&tuneTrials, "trials", 3, "seeds per combination")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tDT\tEPS\tSAMPLES\tROLLOUT")
			for _, name := range config.ListPresets() {
				p := config.GetPreset(name)
				fmt.Fprintf(w, "%s\t%g\t%g\t%d\t%d\n", name, p.Dt, p.Eps, p.ControlIters, p.RolloutIters)
			}
			return w.Flush()
		},
	}

	rootCmd.AddCommand(runCmd, liveCmd, listCmd, plotCmd, exportCmd, svgCmd, benchCmd, tuneCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		logger.Error("command failed", "err", err)
		os.Exit(1)
	}
}

func addSceneFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&scenePath, "scene", config.DefaultScene, "scene file to load (.toml or .yaml)")
	f.StringVar(&outPath, "out", config.DefaultOut, "where to save the final scene")
	f.StringVar(&configFile, "config", "", "config file path (yaml)")
	f.StringVar(&preset, "preset", "", "use preset run constants")
	f.Float64Var(&dt, "dt", config.DefaultDt, "timestep")
	f.Float64Var(&eps, "eps", config.DefaultEps, "arrival distance")
	f.IntVar(&controlIters, "samples", config.DefaultControlIters, "candidate actions per step")
	f.IntVar(&rolloutIters, "rollout", config.DefaultRolloutIters, "rollout length per candidate")
	f.IntVar(&workers, "workers", config.DefaultWorkers, "parallel workers (1 = sequential)")
	f.Int64Var(&seed, "seed", 0, "base random seed; agent i uses seed+i")
	f.IntVar(&maxSteps, "max-steps", 0, "step cap (0 = until arrival)")
}

// resolveConfig layers defaults, the config file, a preset and finally the
// flags the user actually set.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	if preset != "" {
		p := config.GetPreset(preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
		cfg.Apply(p)
	}

	flags := cmd.Flags()
	if flags.Changed("scene") {
		cfg.Scene = scenePath
	}
	if flags.Changed("out") {
		cfg.Out = outPath
	}
	if flags.Changed("dt") {
		cfg.Dt = dt
	}
	if flags.Changed("eps") {
		cfg.Eps = eps
	}
	if flags.Changed("samples") {
		cfg.ControlIters = controlIters
	}
	if flags.Changed("rollout") {
		cfg.RolloutIters = rolloutIters
	}
	if flags.Changed("workers") {
		cfg.Workers = workers
	}
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("max-steps") {
		cfg.MaxSteps = maxSteps
	}
	if flags.Changed("store") {
		cfg.Store = storeKind
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func openStore(ctx context.Context, kind string) (storage.Store, error) {
	st, err := storage.NewStore(kind, dataDir)
	if err != nil {
		return nil, err
	}
	if err := st.Init(ctx); err != nil {
		return nil, err
	}
	return st, nil
}

func runScene(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	s, err := scene.Load(cfg.Scene, cfg.Params())
	if err != nil {
		return fmt.Errorf("failed to load scene: %w", err)
	}
	s.SetLogger(logger)

	ms := metrics.Defaults()
	traj := metrics.NewTrajectory()
	for _, m := range ms {
		s.AddObserver(m)
	}
	s.AddObserver(traj)
	traj.Start(s.Agents())

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	logger.Info("running scene", "scene", cfg.Scene, "agents", len(s.Agents()),
		"samples", cfg.ControlIters, "rollout", cfg.RolloutIters, "workers", cfg.Params().Workers)
	start := time.Now()

	steps, runErr := s.RunContext(ctx, cfg.MaxSteps)
	elapsed := time.Since(start)

	switch {
	case runErr == nil:
		logger.Info("scene done", "steps", steps, "elapsed", elapsed)
	case errors.Is(runErr, scene.ErrStepLimit), errors.Is(runErr, context.Canceled):
		logger.Warn("scene stopped early", "steps", steps, "reason", runErr)
	default:
		return runErr
	}

	if err := s.Save(cfg.Out); err != nil {
		logger.Error("failed to save scene", "path", cfg.Out, "err", err)
	} else {
		logger.Info("scene saved", "path", cfg.Out)
	}

	st, err := openStore(context.Background(), cfg.Store)
	if err != nil {
		logger.Error("failed to open run store", "err", err)
		return nil
	}
	defer storage.CloseIfSupported(st)

	meta := storage.RunMetadata{
		Scene:        cfg.Scene,
		Timestamp:    start,
		Seed:         cfg.Seed,
		Dt:           cfg.Dt,
		Eps:          cfg.Eps,
		ControlIters: cfg.ControlIters,
		RolloutIters: cfg.RolloutIters,
		Agents:       len(s.Agents()),
		Steps:        s.Steps(),
		Arrived:      s.Done(),
		Metrics:      metrics.Collect(ms),
	}
	runID, err := st.Save(context.Background(), meta, traj.Samples)
	if err != nil {
		logger.Error("failed to record run", "err", err)
		return nil
	}

	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("steps: %d\n", s.Steps())
	fmt.Println("\nmetrics:")
	for _, m := range ms {
		fmt.Printf("  %s: %.6f\n", m.Name(), m.Value())
	}

	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	s, err := scene.Load(cfg.Scene, cfg.Params())
	if err != nil {
		return fmt.Errorf("failed to load scene: %w", err)
	}

	m := viz.NewModel(s, cfg.Scene)
	_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
	// quitting mid-step leaves RunOnce running; let it finish before reading s
	m.Wait()
	if err != nil {
		return err
	}

	if s.Done() {
		if err := s.Save(cfg.Out); err != nil {
			logger.Error("failed to save scene", "path", cfg.Out, "err", err)
		} else {
			logger.Info("scene saved", "path", cfg.Out, "steps", s.Steps())
		}
	}
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	st, err := openStore(ctx, storeKind)
	if err != nil {
		return err
	}
	defer storage.CloseIfSupported(st)

	runs, err := st.List(ctx)
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSCENE\tTIME\tAGENTS\tSTEPS\tSAMPLES\tARRIVED")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%dx%d\t%t\n",
			run.ID,
			run.Scene,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Agents,
			run.Steps,
			run.ControlIters, run.RolloutIters,
			run.Arrived,
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	st, err := openStore(ctx, storeKind)
	if err != nil {
		return err
	}
	defer storage.CloseIfSupported(st)

	meta, err := st.Load(ctx, args[0])
	if err != nil {
		return err
	}
	samples, err := st.LoadTrajectory(ctx, args[0])
	if err != nil {
		return err
	}
	if len(samples) == 0 {
		return fmt.Errorf("no data to plot")
	}

	traj := metrics.Trajectory{Samples: samples}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("scene: %s\n", meta.Scene)
	fmt.Printf("steps: %d\n\n", meta.Steps)

	for i := 0; i < meta.Agents; i++ {
		data := traj.Agent(i)
		if len(data) == 0 {
			continue
		}
		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(fmt.Sprintf("agent %d goal distance", i)),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	st, err := openStore(ctx, storeKind)
	if err != nil {
		return err
	}
	defer storage.CloseIfSupported(st)

	meta, err := st.Load(ctx, args[0])
	if err != nil {
		return err
	}
	samples, err := st.LoadTrajectory(ctx, args[0])
	if err != nil {
		return err
	}

	return storage.ExportJSON(os.Stdout, *meta, samples)
}

func svgRun(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	st, err := openStore(ctx, storeKind)
	if err != nil {
		return err
	}
	defer storage.CloseIfSupported(st)

	samples, err := st.LoadTrajectory(ctx, args[0])
	if err != nil {
		return err
	}

	if svgOut == "" {
		return export.TrajectorySVG(os.Stdout, samples, svgSize)
	}

	f, err := os.Create(svgOut)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := export.TrajectorySVG(f, samples, svgSize); err != nil {
		return err
	}
	logger.Info("svg written", "path", svgOut)
	return nil
}

func benchScene(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	counts := []int{1}
	if n := runtime.NumCPU(); n > 1 {
		counts = append(counts, n)
	}

	fmt.Printf("benchmarking %s, %d samples x %d rollout\n\n", cfg.Scene, cfg.ControlIters, cfg.RolloutIters)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "WORKERS\tSTEPS\tTIME\tSTEPS/SEC")

	for _, n := range counts {
		p := cfg.Params()
		p.Workers = n
		s, err := scene.Load(cfg.Scene, p)
		if err != nil {
			return fmt.Errorf("failed to load scene: %w", err)
		}

		start := time.Now()
		for i := 0; i < benchSteps; i++ {
			s.RunOnce()
		}
		elapsed := time.Since(start)

		fmt.Fprintf(w, "%d\t%d\t%v\t%.1f\n", n, benchSteps, elapsed, float64(benchSteps)/elapsed.Seconds())
	}

	return w.Flush()
}

func tuneScene(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	samples, err := parseGrid(tuneSamples)
	if err != nil {
		return fmt.Errorf("samples-grid: %w", err)
	}
	rollout, err := parseGrid(tuneRollout)
	if err != nil {
		return fmt.Errorf("rollout-grid: %w", err)
	}

	limit := cfg.MaxSteps
	if limit == 0 {
		limit = 5000
	}

	gs := optim.NewGridSearch(
		[]string{"samples", "rollout"},
		[][]float64{samples, rollout},
		tuneTrials, limit,
	)

	build := func(params map[string]float64, trial int) (*scene.Scene, error) {
		p := cfg.Params()
		p.ControlIters = int(params["samples"])
		p.RolloutIters = int(params["rollout"])
		p.Seed = cfg.Seed + int64(trial)*1000
		logger.Debug("trial", "samples", p.ControlIters, "rollout", p.RolloutIters, "trial", trial)
		return scene.Load(cfg.Scene, p)
	}

	best, steps, err := gs.Search(cmd.Context(), build)
	if err != nil {
		return err
	}

	fmt.Printf("best: %d samples, %d rollout (%.1f steps on average)\n",
		int(best["samples"]), int(best["rollout"]), steps)
	return nil
}

func parseGrid(s string) ([]float64, error) {
	parts := strings.Split(s, ",")
	out := make([]float64, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, err
		}
		if v < 0 {
			return nil, fmt.Errorf("negative value %d", v)
		}
		out = append(out, float64(v))
	}
	return out, nil
}
