package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/naoko-ai/naoko/internal/agent"
	"github.com/naoko-ai/naoko/internal/auth"
	"github.com/naoko-ai/naoko/internal/config"
	"github.com/naoko-ai/naoko/internal/console"
	"github.com/naoko-ai/naoko/internal/docparse"
	"github.com/naoko-ai/naoko/internal/gen"
	"github.com/naoko-ai/naoko/internal/gitops"
	"github.com/naoko-ai/naoko/internal/logging"
	"github.com/naoko-ai/naoko/internal/navigator"
	"github.com/naoko-ai/naoko/internal/orchestrator"
	"github.com/naoko-ai/naoko/internal/patch"
	"github.com/naoko-ai/naoko/internal/prompt"
	"github.com/naoko-ai/naoko/internal/review"
	"github.com/naoko-ai/naoko/internal/session"
)

var startCmd = &cobra.Command{
	Use:   "start <document>",
	Short: "Run the workflow for a planning document",
	Long: `Start a run for the given planning document. The document is turned
into a requirements request, implemented as a patch against the current
working tree, then reviewed and refined round by round.

Use --resume to continue an interrupted run; completed phases whose
artifacts are still present are not re-executed.`,
	Args: cobra.ExactArgs(1),
	RunE: runStart,
}

var (
	startMaxRounds  int
	startDryRun     bool
	startEntryPoint string
	startExisting   bool
	startResume     string
	startTier       string
)

func init() {
	rootCmd.AddCommand(startCmd)

	startCmd.Flags().IntVar(&startMaxRounds, "max-rounds", 0, "review round budget (default from config)")
	startCmd.Flags().BoolVar(&startDryRun, "dry-run", false, "validate patches without touching the working tree")
	startCmd.Flags().StringVar(&startEntryPoint, "entry-point", "", "entry-point source file; enables style analysis and suppresses auto-commit")
	startCmd.Flags().BoolVar(&startExisting, "existing-project", false, "apply changes but do not commit")
	startCmd.Flags().StringVar(&startResume, "resume", "", "resume an existing session by id")
	startCmd.Flags().StringVar(&startTier, "tier", "pro", "planning/review model quality (pro|flash)")
}

func runStart(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if !slices.Contains(config.ValidTiers(), startTier) {
		return fmt.Errorf("invalid tier %q, must be one of: %s",
			startTier, strings.Join(config.ValidTiers(), ", "))
	}
	if startMaxRounds > 0 {
		cfg.Run.MaxRounds = startMaxRounds
	}

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get current directory: %w", err)
	}

	store, err := session.NewStore(filepath.Join(cfg.Paths.StateDir, "sessions"))
	if err != nil {
		return err
	}

	var state *session.State
	if startResume != "" {
		// Resuming an unknown id fails here, before anything is written.
		state, err = store.Load(startResume)
	} else {
		state, err = store.Create("")
	}
	if err != nil {
		return err
	}

	logger := logging.NopLogger()
	if cfg.Logging.Enabled {
		logger, err = logging.NewLogger(store.Dir(state.ID()), cfg.Logging.Level)
		if err != nil {
			return err
		}
		defer logger.Close()
	}
	logger = logger.WithSession(state.ID())

	reporter := console.NewWriter(os.Stdout)
	reporter.Info("Session %s", state.ID())

	asker := prompt.NewReader(os.Stdin, reporter)
	errlog := logging.NewErrorLog(filepath.Join(cfg.Paths.StateDir, "errors.log"))

	geminiModel := cfg.Backends.Gemini.ProModel
	if startTier == "flash" {
		geminiModel = cfg.Backends.Gemini.FlashModel
	}

	// Planner/reviewer chain: a single gemini CLI tier at the chosen quality.
	planPipeline := gen.NewPipeline(
		[]gen.Backend{
			gen.NewGeminiCLI(cfg.Backends.Gemini.Command, geminiModel, cfg.Backends.Gemini.Timeout()),
		},
		asker, reporter, logger, errlog,
		cfg.Run.ProgressInterval(), cfg.Run.WaitPromptTimeout(),
	)

	// Implementer chain: codex CLI, then the hosted API on the codex
	// credential, then gemini CLI as the last resort.
	implPipeline := gen.NewPipeline(
		[]gen.Backend{
			gen.NewCodexCLI(cfg.Backends.Codex.Command, cfg.Backends.Codex.Timeout()),
			gen.NewHostedBackend(
				cfg.Backends.API.URL, cfg.Backends.API.Model,
				cfg.Backends.API.Attempts, cfg.Backends.API.Backoff(), cfg.Backends.API.Timeout(),
				func() string { return auth.Token(cfg.Backends.Codex.AuthFile, logger) },
			),
			gen.NewGeminiCLI(cfg.Backends.Gemini.Command, geminiModel, cfg.Backends.Gemini.Timeout()),
		},
		asker, reporter, logger, errlog,
		cfg.Run.ProgressInterval(), cfg.Run.WaitPromptTimeout(),
	)

	gate := patch.NewGate(cwd, nil, reporter, logger)
	gemini := agent.NewGemini(planPipeline, docparse.NewFileParser(logger),
		navigator.New(cwd, logger), cfg.Paths.ArtifactsDir, reporter, logger)
	codex := agent.NewCodex(implPipeline, gate, cfg.Paths.ArtifactsDir, startDryRun, reporter, logger)

	cycle := review.NewCycle(gemini, codex, asker, reporter, logger,
		startEntryPoint, cfg.Review.QuestionTimeout(), cfg.Review.HoldTimeout())

	orch := orchestrator.New(store, gemini, gemini, codex, cycle,
		gitops.NewRepo(cwd, reporter, logger), reporter, logger)

	return orch.Run(cmd.Context(), state, orchestrator.Options{
		Document:        args[0],
		EntryPoint:      startEntryPoint,
		MaxRounds:       cfg.Run.MaxRounds,
		DryRun:          startDryRun,
		ExistingProject: startExisting,
	})
}
