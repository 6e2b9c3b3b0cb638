package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/specsmith/specsmith/internal/config"
	"github.com/specsmith/specsmith/internal/errors"
	"github.com/specsmith/specsmith/internal/session"
)

var resumeComment string

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Manage saved generation sessions",
	Long:  `Commands for listing, resuming, and deleting saved generation sessions.`,
}

var sessionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved sessions",
	RunE:  runSessionsList,
}

var sessionsResumeCmd = &cobra.Command{
	Use:   "resume [session-id]",
	Short: "Resume a paused session",
	Long: `Resume a session that was paused at a round boundary. With no ID the
most recently saved session is used. An optional --comment is recorded and
carried into the next round's context.

Sessions older than the configured staleness cutoff (24h by default) are
refused; delete them or adjust session.max_age_hours.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSessionsResume,
}

var sessionsDeleteCmd = &cobra.Command{
	Use:   "delete <session-id>",
	Short: "Delete a saved session",
	Args:  cobra.ExactArgs(1),
	RunE:  runSessionsDelete,
}

func init() {
	rootCmd.AddCommand(sessionsCmd)
	sessionsCmd.AddCommand(sessionsListCmd)
	sessionsCmd.AddCommand(sessionsResumeCmd)
	sessionsCmd.AddCommand(sessionsDeleteCmd)
	sessionsResumeCmd.Flags().StringVarP(&resumeComment, "comment", "m", "", "guidance for the next round")
}

func runSessionsList(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	store, err := session.NewStore(cfg.Session.ResolveDir(),
		session.WithMaxAge(cfg.Session.MaxAge()))
	if err != nil {
		return err
	}

	infos, err := store.List()
	if err != nil {
		return err
	}
	if len(infos) == 0 {
		fmt.Println("No saved sessions.")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSAVED\tROUNDS\tSTATUS")
	for _, info := range infos {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\n",
			info.ID, info.SavedAt.Format("2006-01-02 15:04"), info.Rounds, sessionStatus(info))
	}
	return w.Flush()
}

func sessionStatus(info session.Info) string {
	switch {
	case info.HasSpec:
		return "complete"
	case info.Paused:
		return "paused"
	default:
		return "failed"
	}
}

func runSessionsResume(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	d, err := buildDeps(cfg)
	if err != nil {
		return err
	}
	defer d.Close()

	id := ""
	if len(args) == 1 {
		id = args[0]
	} else {
		id, err = d.store.Latest()
		if err != nil {
			return err
		}
	}

	snap, err := d.store.Load(id)
	if errors.Is(err, session.ErrSnapshotStale) {
		return fmt.Errorf("session %s is older than the staleness cutoff; delete it or raise session.max_age_hours", id)
	}
	if err != nil {
		return err
	}

	if err := d.orch.Hydrate(snap); err != nil {
		return err
	}
	if snap.SessionState.PendingResume == nil {
		status := "failed"
		if snap.SessionState.GeneratedSpec != "" {
			status = "complete"
		}
		return fmt.Errorf("session %s (status: %s): %w", id, status, errors.ErrNoPendingResume)
	}

	unsub := subscribePrinter(d.bus, cfg)
	defer d.bus.Unsubscribe(unsub)
	return finishRun(d, d.orch.Resume(cmd.Context(), resumeComment))
}

func runSessionsDelete(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	store, err := session.NewStore(cfg.Session.ResolveDir())
	if err != nil {
		return err
	}
	if err := store.Delete(args[0]); err != nil {
		return err
	}
	fmt.Printf("Deleted session %s\n", args[0])
	return nil
}
