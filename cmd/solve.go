package main

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/rob-mau/hippopt/internal/opti"
	"github.com/rob-mau/hippopt/internal/solver"
	"github.com/rob-mau/hippopt/internal/store"
	"github.com/rob-mau/hippopt/internal/traj"
)

var (
	runID        string
	dataDir      string
	knots        int
	dt           float64
	startPos     []float64
	targetPos    []float64
	effortWeight float64
	iters        int
	popSize      int
	seed         int64
	bound        float64
)

var solveCmd = &cobra.Command{
	Use:   "solve",
	Short: "Solve the point-mass reach problem",
	Long: `Builds the double-integrator reach problem as a structured record
tree, binds it to the mayfly backend, solves, and stores the resulting
solution tree.`,
	RunE: runSolve,
}

func init() {
	solveCmd.Flags().StringVar(&runID, "run-id", "", "Run identifier (generated if empty)")
	solveCmd.Flags().StringVar(&dataDir, "data-dir", "./data", "Base directory for run storage")
	solveCmd.Flags().IntVar(&knots, "knots", 5, "Number of trajectory knots")
	solveCmd.Flags().Float64Var(&dt, "dt", 0.2, "Time step between knots")
	solveCmd.Flags().Float64SliceVar(&startPos, "start", []float64{0, 0}, "Start position (x,y)")
	solveCmd.Flags().Float64SliceVar(&targetPos, "target", []float64{1, 1}, "Target position (x,y)")
	solveCmd.Flags().Float64Var(&effortWeight, "effort", 0.1, "Control effort weight")
	solveCmd.Flags().IntVar(&iters, "iters", 300, "Max iterations")
	solveCmd.Flags().IntVar(&popSize, "pop", 30, "Population size")
	solveCmd.Flags().Int64Var(&seed, "seed", 42, "Random seed")
	solveCmd.Flags().Float64Var(&bound, "bound", 10, "Symmetric bound on decision scalars")

	rootCmd.AddCommand(solveCmd)
}

func runSolve(cmd *cobra.Command, args []string) error {
	if runID == "" {
		runID = "run-" + strings.Split(uuid.New().String(), "-")[0]
	}

	cfg := traj.Config{
		Knots:        knots,
		DT:           dt,
		Start:        startPos,
		Target:       targetPos,
		EffortWeight: effortWeight,
	}

	opts := solver.DefaultMayflyOptions()
	opts.Iterations = iters
	opts.Population = popSize
	opts.Seed = seed
	opts.LowerBound = -bound
	opts.UpperBound = bound

	slog.Info("Building problem", "run_id", runID, "knots", knots, "dt", dt)

	problem, err := traj.Build(solver.NewMayfly(opts), cfg)
	if err != nil {
		return fmt.Errorf("failed to build problem: %w", err)
	}

	start := time.Now()
	if err := problem.Solve(); err != nil {
		return fmt.Errorf("solve failed: %w", err)
	}
	elapsed := time.Since(start)

	result, err := problem.Result()
	if err != nil {
		return fmt.Errorf("failed to read result: %w", err)
	}
	trace, err := problem.Session.Trace()
	if err != nil {
		return fmt.Errorf("failed to read trace: %w", err)
	}

	slog.Info("Solve complete",
		"run_id", runID,
		"elapsed", elapsed,
		"cost", result.Cost,
		"distance_to_target", result.Distance,
	)

	runStore, err := store.NewFSStore(dataDir)
	if err != nil {
		return fmt.Errorf("failed to create run store: %w", err)
	}

	record := &store.RunRecord{
		RunID:      runID,
		Cost:       result.Cost,
		Iterations: len(trace),
		Elapsed:    elapsed,
		Timestamp:  time.Now(),
		Leaves:     opti.LeafValues(result.Values),
		Config: store.RunConfig{
			Problem: "pointmass-reach",
			Knots:   knots,
			DT:      dt,
			Iters:   iters,
			PopSize: popSize,
			Seed:    seed,
		},
	}
	if err := record.Validate(); err != nil {
		return fmt.Errorf("invalid run record: %w", err)
	}
	if err := runStore.SaveRun(runID, record); err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}

	tw, err := store.NewTraceWriter(dataDir, runID)
	if err != nil {
		return fmt.Errorf("failed to create trace writer: %w", err)
	}
	if err := tw.WriteHistory(trace); err != nil {
		tw.Close()
		return fmt.Errorf("failed to write trace: %w", err)
	}
	if err := tw.Close(); err != nil {
		return fmt.Errorf("failed to close trace: %w", err)
	}

	fmt.Printf("Saved %s (cost: %.4f, final: [%.3f %.3f], distance: %.4f)\n",
		runID, result.Cost, result.Final[0], result.Final[1], result.Distance)

	return nil
}
