package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/baxromumarov/gig-crawler/internal/project"
)

// JSONFile writes each batch to <dir>/<platform>_batch_<timestamp>.json.
// The file appears only once fully written.
type JSONFile struct {
	dir    string
	now    func() time.Time
	logger *slog.Logger
}

func NewJSONFile(dir string, logger *slog.Logger) *JSONFile {
	if logger == nil {
		logger = slog.Default()
	}
	return &JSONFile{dir: dir, now: time.Now, logger: logger}
}

func (s *JSONFile) SaveMany(ctx context.Context, projects []project.Project) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	name := fmt.Sprintf("%s_batch_%s.json", batchPlatform(projects), s.now().In(project.JST).Format("20060102T150405.000"))
	tmp, err := os.CreateTemp(s.dir, ".batch-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if projects == nil {
		projects = []project.Project{}
	}
	enc := json.NewEncoder(tmp)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(projects); err != nil {
		tmp.Close()
		return fmt.Errorf("encode batch: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	path := filepath.Join(s.dir, name)
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename batch file: %w", err)
	}
	s.logger.Info("batch written", "path", path, "count", len(projects))
	return nil
}
