package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/specsmith/specsmith/internal/config"
	"github.com/specsmith/specsmith/internal/persona"
)

var personasCmd = &cobra.Command{
	Use:   "personas",
	Short: "Inspect the expert panel",
	Long: `Commands for listing and validating the persona panel that reviews
each generation round.`,
}

var personasListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the configured personas",
	RunE:  runPersonasList,
}

var personasValidateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Validate a personas YAML file",
	Args:  cobra.ExactArgs(1),
	RunE:  runPersonasValidate,
}

func init() {
	rootCmd.AddCommand(personasCmd)
	personasCmd.AddCommand(personasListCmd)
	personasCmd.AddCommand(personasValidateCmd)
}

func runPersonasList(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	panel, err := buildPanel(cfg)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tROLE\tTEMP\tENABLED")
	for _, a := range panel.All() {
		fmt.Fprintf(w, "%s\t%s\t%.1f\t%v\n", a.Name, a.Role, a.Temperature, a.Enabled)
	}
	return w.Flush()
}

func runPersonasValidate(cmd *cobra.Command, args []string) error {
	panel, err := persona.LoadFile(args[0])
	if err != nil {
		return err
	}
	enabled := len(panel.Enabled())
	fmt.Printf("%s: %d personas (%d enabled)\n", args[0], len(panel.All()), enabled)
	if enabled == 0 {
		return fmt.Errorf("no personas are enabled")
	}
	return nil
}
