package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/specsmith/specsmith/internal/config"
	"github.com/specsmith/specsmith/internal/event"
	"github.com/specsmith/specsmith/internal/tui"
)

var (
	generateWatch  bool
	generateOutput string
)

var generateCmd = &cobra.Command{
	Use:   "generate <idea>",
	Short: "Generate a specification from a product idea",
	Long: `Run the full pipeline for a product idea: the expert panel asks
clarifying questions, researches, challenges each other, synthesizes,
reviews, and votes. When at least 60% approve (or after three rounds) the
final specification is generated and written to the output file.

Use --watch for a live view of the stages and dialogue. If the run is
paused mid-way, resume it later with 'specsmith sessions resume'.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)
	generateCmd.Flags().BoolVarP(&generateWatch, "watch", "w", false, "show live progress in a TUI")
	generateCmd.Flags().StringVarP(&generateOutput, "output", "o", "", "spec output file (default from config)")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	d, err := buildDeps(cfg)
	if err != nil {
		return err
	}
	defer d.Close()

	input := strings.Join(args, " ")
	ctx := cmd.Context()

	var runErr error
	if generateWatch {
		runErr = runWithTUI(ctx, d, func(runCtx context.Context) error {
			return d.orch.StartGeneration(runCtx, input)
		})
	} else {
		unsub := subscribePrinter(d.bus, cfg)
		defer d.bus.Unsubscribe(unsub)
		runErr = d.orch.StartGeneration(ctx, input)
	}

	return finishRun(d, runErr)
}

// runWithTUI runs the pipeline in the background while the watch model owns
// the terminal. Pause takes effect at the next round boundary; resume picks
// the queued round back up in a fresh goroutine.
func runWithTUI(ctx context.Context, d *deps, run func(context.Context) error) error {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	styles := tui.NewStyles(tui.PaletteFor(d.cfg.TUI.Theme))
	var program *tea.Program

	resume := func() {
		go func() {
			if err := d.orch.Resume(runCtx, ""); err != nil {
				d.logger.Error("resume failed", "error", err)
			}
		}()
	}
	model := tui.New(styles, d.orch.Pause, resume)
	program = tea.NewProgram(model)

	sub := tui.Subscribe(d.bus, program)
	defer d.bus.Unsubscribe(sub)

	done := make(chan error, 1)
	go func() { done <- run(runCtx) }()

	if _, err := program.Run(); err != nil {
		cancel()
		<-done
		return err
	}
	cancel()
	return <-done
}

// finishRun persists the snapshot and writes the spec file when one was
// generated. Run errors surface after the snapshot is safe on disk.
func finishRun(d *deps, runErr error) error {
	snap := d.orch.Snapshot()
	if snap.SessionState.ID != "" {
		if err := d.store.Save(snap); err != nil {
			d.logger.Error("failed to save session", "error", err)
		}
	}

	if runErr != nil {
		if cerr := d.orch.LastError(); cerr != nil {
			fmt.Fprintf(os.Stderr, "\n%s\n%s\n", cerr.Title, cerr.Message)
		}
		return runErr
	}

	if d.orch.IsPaused() && snap.SessionState.PendingResume != nil {
		fmt.Printf("Paused before round %d. Resume with:\n  specsmith sessions resume %s\n",
			snap.SessionState.PendingResume.NextRound, snap.SessionState.ID)
		return nil
	}

	spec, stack := d.orch.GeneratedSpec()
	if spec == "" {
		return nil
	}

	out := generateOutput
	if out == "" {
		out = d.cfg.Output.SpecFile
	}
	if err := os.WriteFile(out, []byte(spec), 0o644); err != nil {
		return fmt.Errorf("writing spec: %w", err)
	}
	fmt.Printf("Specification written to %s", out)
	if len(stack) > 0 {
		fmt.Printf(" (stack: %s)", strings.Join(stack, ", "))
	}
	fmt.Println()
	return nil
}

// subscribePrinter streams bus events as plain styled lines for non-watch
// runs.
func subscribePrinter(bus *event.Bus, cfg *config.Config) uint64 {
	styles := tui.NewStyles(tui.PaletteFor(cfg.TUI.Theme))
	return bus.SubscribeAll(func(e event.Event) {
		switch e := e.(type) {
		case event.StageStartedEvent:
			fmt.Printf("%s round %d\n", styles.StageLive.Render("▸ "+e.Stage), e.Round)
		case event.DialogueAppendedEvent:
			fmt.Printf("  %s %s\n", styles.Agent.Render(e.Agent+":"), e.Message)
		case event.RoundCompletedEvent:
			verdict := "another round"
			if e.Advancing {
				verdict = "advancing to spec"
			}
			fmt.Printf("%s approval %.0f%%, %s\n",
				styles.StageDone.Render("✓ round complete —"), e.ApprovalRate*100, verdict)
		case event.GenerationPausedEvent:
			fmt.Println(styles.Paused.Render(fmt.Sprintf("⏸ paused before round %d", e.NextRound)))
		case event.StageFailedEvent:
			fmt.Println(styles.ErrorTitle.Render(e.Title))
		}
	})
}
