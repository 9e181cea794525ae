package store

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rob-mau/hippopt/internal/nd"
)

// setupTestStore creates a temporary directory and returns an FSStore.
func setupTestStore(t *testing.T) (*FSStore, string) {
	t.Helper()

	tempDir := t.TempDir()
	st, err := NewFSStore(tempDir)
	if err != nil {
		t.Fatalf("Failed to create test store: %v", err)
	}
	return st, tempDir
}

// createTestRun creates a run record with test data.
func createTestRun(runID string) *RunRecord {
	return &RunRecord{
		RunID:      runID,
		Cost:       0.0234,
		Iterations: 12,
		Elapsed:    3 * time.Second,
		Timestamp:  time.Now(),
		Leaves: map[string]*nd.Array{
			"knots[0].position": {Dims: []int{2, 1}, Data: []float64{0, 0}},
			"controls[0]":       {Dims: []int{2, 1}, Data: []float64{1.5, -0.5}},
		},
		Config: RunConfig{
			Problem: "pointmass-reach",
			Knots:   5,
			DT:      0.2,
			Iters:   300,
			PopSize: 30,
			Seed:    42,
		},
	}
}

func TestNewFSStore(t *testing.T) {
	tempDir := t.TempDir()

	st, err := NewFSStore(tempDir)
	if err != nil {
		t.Fatalf("NewFSStore failed: %v", err)
	}
	if st == nil {
		t.Fatal("Expected non-nil store")
	}
}

func TestSaveRun(t *testing.T) {
	st, tempDir := setupTestStore(t)

	runID := "test-run-123"
	if err := st.SaveRun(runID, createTestRun(runID)); err != nil {
		t.Fatalf("SaveRun failed: %v", err)
	}

	expectedPath := filepath.Join(tempDir, "runs", runID, "run.json")
	if _, err := os.Stat(expectedPath); os.IsNotExist(err) {
		t.Fatalf("Run file was not created at %s", expectedPath)
	}

	// Verify no temp file remains
	if _, err := os.Stat(expectedPath + ".tmp"); !os.IsNotExist(err) {
		t.Errorf("Temp file should not exist after save")
	}
}

func TestSaveRun_EmptyRunID(t *testing.T) {
	st, _ := setupTestStore(t)

	if err := st.SaveRun("", createTestRun("any-id")); err == nil {
		t.Fatal("Expected error for empty runID")
	}
}

func TestSaveRun_NilRecord(t *testing.T) {
	st, _ := setupTestStore(t)

	if err := st.SaveRun("test-run", nil); err == nil {
		t.Fatal("Expected error for nil record")
	}
}

func TestLoadRunRoundTrip(t *testing.T) {
	st, _ := setupTestStore(t)

	runID := "test-run-roundtrip"
	saved := createTestRun(runID)
	if err := st.SaveRun(runID, saved); err != nil {
		t.Fatalf("SaveRun failed: %v", err)
	}

	loaded, err := st.LoadRun(runID)
	if err != nil {
		t.Fatalf("LoadRun failed: %v", err)
	}

	if loaded.RunID != saved.RunID {
		t.Errorf("RunID mismatch: %s != %s", loaded.RunID, saved.RunID)
	}
	if loaded.Cost != saved.Cost {
		t.Errorf("Cost mismatch: %f != %f", loaded.Cost, saved.Cost)
	}
	if loaded.Config.Problem != "pointmass-reach" {
		t.Errorf("Unexpected problem: %s", loaded.Config.Problem)
	}

	leaf, ok := loaded.Leaves["controls[0]"]
	if !ok {
		t.Fatal("Expected controls[0] leaf")
	}
	if !leaf.Equal(saved.Leaves["controls[0]"]) {
		t.Errorf("Leaf mismatch: %v != %v", leaf, saved.Leaves["controls[0]"])
	}
}

func TestLoadRun_NotFound(t *testing.T) {
	st, _ := setupTestStore(t)

	_, err := st.LoadRun("does-not-exist")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}
}

func TestSaveRun_Overwrite(t *testing.T) {
	st, _ := setupTestStore(t)

	runID := "test-run-overwrite"
	run1 := createTestRun(runID)
	run1.Cost = 0.5
	run2 := createTestRun(runID)
	run2.Cost = 0.1

	if err := st.SaveRun(runID, run1); err != nil {
		t.Fatalf("First save failed: %v", err)
	}
	if err := st.SaveRun(runID, run2); err != nil {
		t.Fatalf("Second save failed: %v", err)
	}

	loaded, err := st.LoadRun(runID)
	if err != nil {
		t.Fatalf("LoadRun failed: %v", err)
	}
	if loaded.Cost != 0.1 {
		t.Errorf("Expected overwritten cost 0.1, got %f", loaded.Cost)
	}
}

func TestListRuns(t *testing.T) {
	st, _ := setupTestStore(t)

	// Empty store lists nothing
	infos, err := st.ListRuns()
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if len(infos) != 0 {
		t.Fatalf("Expected no runs, got %d", len(infos))
	}

	for _, id := range []string{"run-a", "run-b"} {
		if err := st.SaveRun(id, createTestRun(id)); err != nil {
			t.Fatalf("SaveRun failed: %v", err)
		}
	}

	infos, err = st.ListRuns()
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if len(infos) != 2 {
		t.Fatalf("Expected 2 runs, got %d", len(infos))
	}
	for _, info := range infos {
		if info.Leaves != 2 {
			t.Errorf("Expected 2 leaves in info, got %d", info.Leaves)
		}
	}
}

func TestDeleteRun(t *testing.T) {
	st, tempDir := setupTestStore(t)

	runID := "test-run-delete"
	if err := st.SaveRun(runID, createTestRun(runID)); err != nil {
		t.Fatalf("SaveRun failed: %v", err)
	}

	if err := st.DeleteRun(runID); err != nil {
		t.Fatalf("DeleteRun failed: %v", err)
	}

	if _, err := os.Stat(filepath.Join(tempDir, "runs", runID)); !os.IsNotExist(err) {
		t.Error("Run directory should be removed")
	}

	if err := st.DeleteRun(runID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound for second delete, got %v", err)
	}
}
