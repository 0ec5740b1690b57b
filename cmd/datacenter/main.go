package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"datacenter/internal/collector"
	"datacenter/internal/config"
	"datacenter/internal/problem"
	"datacenter/internal/progress"
	"datacenter/internal/random"
	"datacenter/internal/ratelimit"
	"datacenter/internal/scenario"
	"datacenter/internal/script"
	"datacenter/internal/ticket"
)

const (
	ExitSuccess    = 0
	ExitUnresolved = 1
	ExitError      = 2
)

// errUnresolved marks a replay that ran to the end without closing the ticket.
var errUnresolved = errors.New("problem was not resolved")

type options struct {
	configPath string
	seed       int64
	types      []string
	output     string
	verbose    bool
	quiet      bool
	scriptPath string
	rate       float64
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	cmd := newRootCmd(stdout, stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	switch {
	case err == nil:
		return ExitSuccess
	case errors.Is(err, errUnresolved):
		return ExitUnresolved
	default:
		fmt.Fprintf(stderr, "error: %v\n", err)
		return ExitError
	}
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "datacenter",
		Short:         "generate and play datacenter hardware problems",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.output != "text" && opts.output != "json" {
				return fmt.Errorf("--output must be 'text' or 'json', got %q", opts.output)
			}
			return nil
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	flags := root.PersistentFlags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "path to YAML scenario file (default layout when empty)")
	flags.Int64Var(&opts.seed, "seed", 0, "random seed (overrides the config and script seed)")
	flags.StringSliceVar(&opts.types, "types", nil, "problem types to draw from (default all)")
	flags.StringVar(&opts.output, "output", "text", "output format: text, json")
	flags.BoolVar(&opts.verbose, "verbose", false, "enable debug logging")
	flags.BoolVar(&opts.quiet, "quiet", false, "only log warnings and suppress progress output")

	root.AddCommand(
		newTypesCmd(opts, stdout),
		newGenerateCmd(opts, stdout, stderr),
		newReplayCmd(opts, stdout, stderr),
	)
	return root
}

func newTypesCmd(opts *options, stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "types",
		Short: "list the registered problem types",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			regs := problem.DefaultRegistry().Registrations()
			if opts.output == "json" {
				type entry struct {
					Name         string `json:"name"`
					HardwareType string `json:"hardwareType"`
					TaskType     string `json:"taskType"`
				}
				out := make([]entry, 0, len(regs))
				for _, r := range regs {
					out = append(out, entry{string(r.Name), r.HardwareTypeName, r.TaskTypeName})
				}
				return writeJSON(stdout, out)
			}
			for _, r := range regs {
				fmt.Fprintf(stdout, "%-22s %-5s %s\n", r.Name, r.HardwareTypeName, r.TaskTypeName)
			}
			return nil
		},
	}
}

func newGenerateCmd(opts *options, stdout, stderr io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "generate",
		Short: "generate a problem, populate the datacenter and print the ticket",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger(stderr, opts)
			cfg, err := loadConfig(cmd, opts, nil)
			if err != nil {
				return err
			}
			s, seed, err := newScenario(cfg, logger)
			if err != nil {
				return err
			}
			defer s.Close()

			hp, err := s.Start()
			if err != nil {
				return err
			}
			return printProblem(stdout, opts.output, seed, hp, s.Activities(), s.Desk().Options())
		},
	}
}

func newReplayCmd(opts *options, stdout, stderr io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "replay",
		Short: "replay a script of player actions against a generated problem",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger(stderr, opts)
			sc, err := script.Load(opts.scriptPath)
			if err != nil {
				return err
			}
			cfg, err := loadConfig(cmd, opts, sc.Seed)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("rate") {
				cfg.Replay.ActionsPerSecond = opts.rate
			}
			if cfg.Replay.ActionsPerSecond < 0 {
				return errors.New("--rate must not be negative")
			}
			return replay(cmd.Context(), cfg, sc, opts, stdout, stderr, logger)
		},
	}
	cmd.Flags().StringVar(&opts.scriptPath, "script", "", "path to JSON replay script (required)")
	cmd.Flags().Float64Var(&opts.rate, "rate", 0, "actions per second (0 = unpaced, overrides the config)")
	_ = cmd.MarkFlagRequired("script")
	return cmd
}

func replay(ctx context.Context, cfg *config.Config, sc *script.Script, opts *options, stdout, stderr io.Writer, logger zerolog.Logger) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			cancel()
		case <-ctx.Done():
		}
	}()

	s, seed, err := newScenario(cfg, logger)
	if err != nil {
		return err
	}
	defer s.Close()

	coll := collector.NewCollector()
	coll.Subscribe(s.Bus())
	prog := progress.NewProgress(len(sc.Actions), opts.quiet)
	prog.SetOutput(stderr)
	prog.Observe(s.Bus())

	hp, err := s.Start()
	if err != nil {
		return err
	}
	prog.Printf("Seed %d: %s at %s, replaying %d actions", seed, hp.Type.Name(), hp.Location, len(sc.Actions))

	var pacer *ratelimit.Pacer
	if cfg.Replay.ActionsPerSecond > 0 {
		pacer = ratelimit.NewPacer(cfg.Replay.ActionsPerSecond)
	}

	prog.Start()
	replayErr := s.Replay(ctx, sc.Actions, pacer, func(script.Action) { prog.Step() })
	prog.Stop()
	coll.Close()

	summary := collector.Compute(hp, s.Activities(), coll.Events(), coll.Duration())
	checks := summary.Check()
	if opts.output == "json" {
		collector.FormatJSON(stdout, summary, checks)
	} else {
		collector.FormatText(stdout, summary, checks)
	}

	switch {
	case errors.Is(replayErr, context.Canceled):
		prog.Print("Replay interrupted")
		return nil
	case replayErr != nil:
		return replayErr
	case !checks.Passed:
		if opts.output == "text" {
			fmt.Fprintln(stderr, "\nProblem was not resolved!")
		}
		return errUnresolved
	}
	return nil
}

func newLogger(w io.Writer, opts *options) zerolog.Logger {
	level := zerolog.InfoLevel
	switch {
	case opts.verbose:
		level = zerolog.DebugLevel
	case opts.quiet:
		level = zerolog.WarnLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05"}).
		Level(level).
		With().
		Timestamp().
		Logger()
}

// loadConfig reads the scenario file and applies flag overrides. The seed
// comes from --seed, then the script, then the file.
func loadConfig(cmd *cobra.Command, opts *options, scriptSeed *int64) (*config.Config, error) {
	cfg := config.Default()
	if opts.configPath != "" {
		var err error
		if cfg, err = config.LoadConfig(opts.configPath); err != nil {
			return nil, err
		}
	}

	switch {
	case cmd.Flags().Changed("seed"):
		seed := opts.seed
		cfg.Seed = &seed
	case scriptSeed != nil:
		cfg.Seed = scriptSeed
	}
	if len(opts.types) > 0 {
		cfg.ProblemTypes = opts.types
	}
	return cfg, nil
}

func newScenario(cfg *config.Config, logger zerolog.Logger) (*scenario.Scenario, int64, error) {
	var (
		rng  random.Rand
		seed int64
	)
	if cfg.Seed != nil {
		seed = *cfg.Seed
		rng = random.New(seed)
	} else {
		rng, seed = random.NewTimeSeeded()
	}
	logger.Debug().Int64("seed", seed).Msg("seeded scenario")

	s, err := scenario.New(cfg, rng, logger)
	if err != nil {
		return nil, 0, err
	}
	return s, seed, nil
}

func printProblem(w io.Writer, format string, seed int64, hp *problem.HardwareProblem, activities []*problem.Activity, form ticket.Options) error {
	names := make([]string, len(activities))
	for i, a := range activities {
		names[i] = a.Name
	}

	if format == "json" {
		return writeJSON(w, struct {
			Seed        int64          `json:"seed"`
			Location    string         `json:"location"`
			ProblemType string         `json:"problemType"`
			Message     string         `json:"message"`
			Ticket      ticket.Answer  `json:"ticket"`
			Form        ticket.Options `json:"form"`
			Activities  []string       `json:"activities"`
		}{
			Seed:        seed,
			Location:    hp.Location.String(),
			ProblemType: string(hp.Type.Name()),
			Message:     hp.Message(),
			Ticket:      ticket.AnswerFor(hp),
			Form:        form,
			Activities:  names,
		})
	}

	answer := ticket.AnswerFor(hp)
	fmt.Fprintf(w, "Seed:      %d\n", seed)
	fmt.Fprintf(w, "Location:  %s\n", hp.Location)
	fmt.Fprintf(w, "Problem:   %s (%s / %s)\n", hp.Type.Name(), answer.HardwareType, answer.TaskType)
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, hp.Message())
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Activities:")
	for _, name := range names {
		fmt.Fprintf(w, "  [ ] %s\n", name)
	}
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Ticket form:")
	fmt.Fprintf(w, "  Container:     %s\n", strings.Join(form.Containers, ", "))
	fmt.Fprintf(w, "  Server:        %s\n", strings.Join(form.Servers, ", "))
	fmt.Fprintf(w, "  Hardware type: %s\n", strings.Join(form.HardwareTypes, ", "))
	fmt.Fprintf(w, "  Task type:     %s\n", strings.Join(form.TaskTypes, ", "))
	return nil
}

func writeJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
