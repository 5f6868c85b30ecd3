package output

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/bytedance/sonic"
	"github.com/valyala/bytebufferpool"

	"github.com/fantasyops/espn-extractor/internal/domain/athlete"
	"github.com/fantasyops/espn-extractor/internal/platform/logging"
	"github.com/fantasyops/espn-extractor/internal/usecase"
)

const timestampLayout = "20060102_150405"

// Writer persists finished runs as timestamped JSON files in a single
// output directory. Every run produces fresh files; nothing is ever
// overwritten in place.
type Writer struct {
	dir    string
	now    func() time.Time
	logger *logging.Logger
}

func NewWriter(dir string, logger *logging.Logger) (*Writer, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory %s: %w", dir, err)
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Writer{dir: dir, now: time.Now, logger: logger}, nil
}

// WithClock overrides the timestamp source.
func (w *Writer) WithClock(now func() time.Time) *Writer {
	w.now = now
	return w
}

// WriteAthletes writes the pitcher and batter files, each sorted by
// ownership percentage descending so the most rostered athletes lead.
func (w *Writer) WriteAthletes(ctx context.Context, year int, pitchers, batters []athlete.ValidatedRecord) ([]string, error) {
	stamp := w.now().Format(timestampLayout)

	paths := make([]string, 0, 2)
	for _, group := range []struct {
		kind    string
		records []athlete.ValidatedRecord
	}{
		{"pitchers", pitchers},
		{"batters", batters},
	} {
		sortByOwnership(group.records)

		path := filepath.Join(w.dir, fmt.Sprintf("espn_%s_%d_%s.json", group.kind, year, stamp))
		if err := w.writeJSON(path, group.records); err != nil {
			return nil, err
		}
		paths = append(paths, path)

		w.logger.InfoContext(ctx, "wrote athlete file",
			"kind", group.kind,
			"count", len(group.records),
			"path", path,
		)
	}

	return paths, nil
}

type failureManifest struct {
	Failures []usecase.HydrationFailure `json:"failures"`
	Count    int                        `json:"count"`
}

// WriteFailures writes the failure manifest for a run.
func (w *Writer) WriteFailures(ctx context.Context, year int, failures []usecase.HydrationFailure) (string, error) {
	stamp := w.now().Format(timestampLayout)
	path := filepath.Join(w.dir, fmt.Sprintf("failures_%d_%s.json", year, stamp))

	manifest := failureManifest{Failures: failures, Count: len(failures)}
	if manifest.Failures == nil {
		manifest.Failures = []usecase.HydrationFailure{}
	}
	if err := w.writeJSON(path, manifest); err != nil {
		return "", err
	}

	w.logger.InfoContext(ctx, "wrote failure manifest", "count", len(failures), "path", path)
	return path, nil
}

func (w *Writer) writeJSON(path string, payload any) error {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	enc := sonic.ConfigDefault.NewEncoder(buf)
	if err := enc.Encode(payload); err != nil {
		return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}

	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// sortByOwnership orders records by ownership percentage descending.
// Records without ownership data carry the -1 sentinel and sink to the
// bottom; ties keep their pipeline order.
func sortByOwnership(records []athlete.ValidatedRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].PercentOwned > records[j].PercentOwned
	})
}
