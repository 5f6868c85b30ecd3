package output

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/bytedance/sonic"

	"github.com/fantasyops/espn-extractor/internal/domain/athlete"
	"github.com/fantasyops/espn-extractor/internal/platform/logging"
	"github.com/fantasyops/espn-extractor/internal/usecase"
)

func fixedClock() time.Time {
	return time.Date(2025, 8, 23, 14, 30, 5, 0, time.UTC)
}

func newTestWriter(t *testing.T) (*Writer, string) {
	t.Helper()
	dir := t.TempDir()
	writer, err := NewWriter(dir, logging.NewNop())
	if err != nil {
		t.Fatalf("new writer: %v", err)
	}
	return writer.WithClock(fixedClock), dir
}

func record(id int, name string, percentOwned float64) athlete.ValidatedRecord {
	return athlete.ValidatedRecord{
		ID:           id,
		Name:         name,
		PercentOwned: percentOwned,
	}
}

func TestWriteAthletes_TimestampedFiles(t *testing.T) {
	writer, dir := newTestWriter(t)

	paths, err := writer.WriteAthletes(context.Background(), 2025,
		[]athlete.ValidatedRecord{record(1, "Ace Starter", 90)},
		[]athlete.ValidatedRecord{record(2, "Slugger", 85)},
	)
	if err != nil {
		t.Fatalf("write athletes: %v", err)
	}
	if len(paths) != 2 {
		t.Fatalf("expected 2 paths, got %v", paths)
	}

	wantPitchers := filepath.Join(dir, "espn_pitchers_2025_20250823_143005.json")
	wantBatters := filepath.Join(dir, "espn_batters_2025_20250823_143005.json")
	if paths[0] != wantPitchers || paths[1] != wantBatters {
		t.Fatalf("paths = %v", paths)
	}

	raw, err := os.ReadFile(wantPitchers)
	if err != nil {
		t.Fatalf("read pitcher file: %v", err)
	}
	var decoded []athlete.ValidatedRecord
	if err := sonic.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal pitcher file: %v", err)
	}
	if len(decoded) != 1 || decoded[0].Name != "Ace Starter" {
		t.Fatalf("pitcher file content wrong: %+v", decoded)
	}
}

func TestWriteAthletes_SortsByOwnershipDescending(t *testing.T) {
	writer, _ := newTestWriter(t)

	batters := []athlete.ValidatedRecord{
		record(1, "Unowned", -1),
		record(2, "Star", 99.5),
		record(3, "Bench Bat", 12),
	}
	paths, err := writer.WriteAthletes(context.Background(), 2025, nil, batters)
	if err != nil {
		t.Fatalf("write athletes: %v", err)
	}

	raw, err := os.ReadFile(paths[1])
	if err != nil {
		t.Fatalf("read batter file: %v", err)
	}
	var decoded []athlete.ValidatedRecord
	if err := sonic.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal batter file: %v", err)
	}
	if decoded[0].ID != 2 || decoded[1].ID != 3 || decoded[2].ID != 1 {
		t.Fatalf("ownership order wrong: %+v", decoded)
	}
}

func TestWriteAthletes_EmptyGroupStillWritten(t *testing.T) {
	writer, _ := newTestWriter(t)

	paths, err := writer.WriteAthletes(context.Background(), 2025, nil, nil)
	if err != nil {
		t.Fatalf("write athletes: %v", err)
	}
	for _, path := range paths {
		raw, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("read %s: %v", path, err)
		}
		if !strings.HasPrefix(strings.TrimSpace(string(raw)), "[") {
			t.Fatalf("empty group should encode as array: %q", raw)
		}
	}
}

func TestWriteFailures(t *testing.T) {
	writer, dir := newTestWriter(t)

	failures := []usecase.HydrationFailure{
		{ID: 7, Stage: usecase.StageBiography, Reason: "espn fatal: status=401"},
		{ID: 99, Stage: usecase.StagePopulation, Reason: "known downstream but absent from upstream population"},
	}
	path, err := writer.WriteFailures(context.Background(), 2025, failures)
	if err != nil {
		t.Fatalf("write failures: %v", err)
	}
	if want := filepath.Join(dir, "failures_2025_20250823_143005.json"); path != want {
		t.Fatalf("path = %q, want %q", path, want)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read failure manifest: %v", err)
	}
	var decoded failureManifest
	if err := sonic.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal failure manifest: %v", err)
	}
	if decoded.Count != 2 || len(decoded.Failures) != 2 {
		t.Fatalf("manifest wrong: %+v", decoded)
	}
	if decoded.Failures[0].Stage != usecase.StageBiography {
		t.Fatalf("first failure stage = %q", decoded.Failures[0].Stage)
	}
}
