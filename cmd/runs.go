package main

import (
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/rob-mau/hippopt/internal/store"
)

var runsDataDir string

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Manage stored solve runs",
	Long:  `List, inspect, and delete solved runs stored by the solve command.`,
}

var listRunsCmd = &cobra.Command{
	Use:   "list",
	Short: "List all stored runs",
	RunE:  runListRuns,
}

var showRunCmd = &cobra.Command{
	Use:   "show [run-id]",
	Short: "Show one run in detail",
	Args:  cobra.ExactArgs(1),
	RunE:  runShowRun,
}

var deleteRunCmd = &cobra.Command{
	Use:   "delete [run-id]",
	Short: "Delete a stored run",
	Args:  cobra.ExactArgs(1),
	RunE:  runDeleteRun,
}

func init() {
	rootCmd.AddCommand(runsCmd)
	runsCmd.AddCommand(listRunsCmd)
	runsCmd.AddCommand(showRunCmd)
	runsCmd.AddCommand(deleteRunCmd)

	runsCmd.PersistentFlags().StringVar(&runsDataDir, "data-dir", "./data", "Base directory for run storage")
}

func runListRuns(cmd *cobra.Command, args []string) error {
	runStore, err := store.NewFSStore(runsDataDir)
	if err != nil {
		return fmt.Errorf("failed to create run store: %w", err)
	}

	infos, err := runStore.ListRuns()
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	if len(infos) == 0 {
		fmt.Println("No runs found.")
		return nil
	}

	sort.Slice(infos, func(i, j int) bool {
		return infos[i].Timestamp.After(infos[j].Timestamp)
	})

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "RUN ID\tPROBLEM\tCOST\tLEAVES\tSOLVED AT")
	for _, info := range infos {
		fmt.Fprintf(w, "%s\t%s\t%.4f\t%d\t%s\n",
			info.RunID,
			info.Problem,
			info.Cost,
			info.Leaves,
			info.Timestamp.Format("2006-01-02 15:04:05"),
		)
	}
	return w.Flush()
}

func runShowRun(cmd *cobra.Command, args []string) error {
	runStore, err := store.NewFSStore(runsDataDir)
	if err != nil {
		return fmt.Errorf("failed to create run store: %w", err)
	}

	run, err := runStore.LoadRun(args[0])
	if err != nil {
		return fmt.Errorf("failed to load run: %w", err)
	}

	fmt.Printf("Run:       %s\n", run.RunID)
	fmt.Printf("Problem:   %s\n", run.Config.Problem)
	fmt.Printf("Cost:      %.6f\n", run.Cost)
	fmt.Printf("Elapsed:   %s\n", run.Elapsed)
	fmt.Printf("Solved at: %s\n", run.Timestamp.Format("2006-01-02 15:04:05"))
	fmt.Printf("Config:    knots=%d dt=%.3f iters=%d pop=%d seed=%d\n",
		run.Config.Knots, run.Config.DT, run.Config.Iters, run.Config.PopSize, run.Config.Seed)

	paths := make([]string, 0, len(run.Leaves))
	for path := range run.Leaves {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	fmt.Println("Leaves:")
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	for _, path := range paths {
		fmt.Fprintf(w, "  %s\t%s\n", path, run.Leaves[path])
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if entries, err := store.ReadTrace(runsDataDir, run.RunID); err == nil && len(entries) > 0 {
		fmt.Printf("Trace:     %d improvements, %.6f -> %.6f\n",
			len(entries), entries[0].Cost, entries[len(entries)-1].Cost)
	}

	return nil
}

func runDeleteRun(cmd *cobra.Command, args []string) error {
	runStore, err := store.NewFSStore(runsDataDir)
	if err != nil {
		return fmt.Errorf("failed to create run store: %w", err)
	}

	if err := runStore.DeleteRun(args[0]); err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}

	fmt.Printf("Deleted %s\n", args[0])
	return nil
}
