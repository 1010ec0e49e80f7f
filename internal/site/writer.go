package site

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
)

// Writer emits the finished site into the output directory: the report
// document, the season snapshot JSON, and a copy of the static asset tree.
// Writing is the one fatal surface of a build; data problems upstream have
// already degraded by the time bytes reach the Writer.
type Writer struct {
	outputDir string
	assetsDir string
	logger    *logrus.Logger
}

// NewWriter creates a site writer. assetsDir may be empty to skip asset
// copying.
func NewWriter(outputDir, assetsDir string, logger *logrus.Logger) *Writer {
	return &Writer{
		outputDir: outputDir,
		assetsDir: assetsDir,
		logger:    logger,
	}
}

// OutputDir returns the directory the writer emits into.
func (w *Writer) OutputDir() string {
	return w.outputDir
}

// Write lays down index.html and season.json, then copies the asset tree.
// Existing files are overwritten so repeated builds stay idempotent.
func (w *Writer) Write(document, seasonJSON []byte) error {
	if err := os.MkdirAll(w.outputDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	indexPath := filepath.Join(w.outputDir, "index.html")
	if err := os.WriteFile(indexPath, document, 0o644); err != nil {
		return fmt.Errorf("failed to write index.html: %w", err)
	}
	w.logger.Debugf("Wrote %s (%d bytes)", indexPath, len(document))

	seasonPath := filepath.Join(w.outputDir, "season.json")
	if err := os.WriteFile(seasonPath, seasonJSON, 0o644); err != nil {
		return fmt.Errorf("failed to write season.json: %w", err)
	}
	w.logger.Debugf("Wrote %s (%d bytes)", seasonPath, len(seasonJSON))

	return w.copyAssets()
}

// copyAssets mirrors the asset tree (css, js, favicon) into the output
// directory. A missing assets directory is logged and skipped; the report
// renders unstyled but intact.
func (w *Writer) copyAssets() error {
	if w.assetsDir == "" {
		return nil
	}
	if _, err := os.Stat(w.assetsDir); os.IsNotExist(err) {
		w.logger.Warnf("Assets directory %s does not exist, skipping asset copy", w.assetsDir)
		return nil
	}

	copied := 0
	err := filepath.WalkDir(w.assetsDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(w.assetsDir, path)
		if err != nil {
			return err
		}
		dst := filepath.Join(w.outputDir, rel)

		if d.IsDir() {
			return os.MkdirAll(dst, 0o755)
		}
		if err := copyFile(path, dst); err != nil {
			return err
		}
		copied++
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to copy assets: %w", err)
	}

	w.logger.Debugf("Copied %d asset files from %s", copied, w.assetsDir)
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}
