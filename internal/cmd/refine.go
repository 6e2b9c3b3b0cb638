package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/specsmith/specsmith/internal/config"
)

var refineCmd = &cobra.Command{
	Use:   "refine <idea>",
	Short: "Refine an idea in dialogue before generating",
	Long: `Start with a clarifying question from the panel lead instead of the
full pipeline. Answer in as many turns as you like; an empty line (or "go")
hands the collected dialogue to the generation pipeline.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRefine,
}

func init() {
	rootCmd.AddCommand(refineCmd)
	refineCmd.Flags().StringVarP(&generateOutput, "output", "o", "", "spec output file (default from config)")
}

func runRefine(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	d, err := buildDeps(cfg)
	if err != nil {
		return err
	}
	defer d.Close()

	ctx := cmd.Context()
	input := strings.Join(args, " ")

	if err := d.orch.StartRefinement(ctx, input); err != nil {
		return finishRun(d, err)
	}

	dialogue := d.orch.Dialogue()
	if len(dialogue) > 0 {
		last := dialogue[len(dialogue)-1]
		fmt.Printf("%s: %s\n", last.Agent, last.Message)
	}

	fmt.Println(`Reply below. An empty line or "go" starts generation.`)
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.EqualFold(line, "go") {
			break
		}
		d.orch.AddUserMessage(line)
	}
	if err := scanner.Err(); err != nil {
		return err
	}

	unsub := subscribePrinter(d.bus, cfg)
	defer d.bus.Unsubscribe(unsub)
	return finishRun(d, d.orch.ProceedToGeneration(ctx))
}
