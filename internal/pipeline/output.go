package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
)

// Output file names.
const (
	ScoresFileML        = "wallet_scores_ml.csv"
	ScoresFileHeuristic = "wallet_scores.csv"
	ReportFile          = "MODEL_REPORT.md"
	EvaluationsFile     = "model_evaluations.csv"
)

// outputFile is one file to be published into the output directory.
type outputFile struct {
	name string
	data []byte
}

// publish writes every file to a temp sibling first and renames them into
// place only once all writes succeeded. On failure no final file is touched.
func publish(dir string, files []outputFile) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	staged := make([]string, 0, len(files))
	cleanup := func() {
		for _, tmp := range staged {
			_ = os.Remove(tmp)
		}
	}

	for _, f := range files {
		tmp, err := stage(dir, f)
		if err != nil {
			cleanup()
			return err
		}
		staged = append(staged, tmp)
	}

	for i, f := range files {
		if err := os.Rename(staged[i], filepath.Join(dir, f.name)); err != nil {
			cleanup()
			return fmt.Errorf("publish %s: %w", f.name, err)
		}
	}
	return nil
}

func stage(dir string, f outputFile) (string, error) {
	tmp, err := os.CreateTemp(dir, "."+f.name+".tmp-*")
	if err != nil {
		return "", fmt.Errorf("stage %s: %w", f.name, err)
	}

	if _, err := tmp.Write(f.data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("write %s: %w", f.name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("close %s: %w", f.name, err)
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("chmod %s: %w", f.name, err)
	}
	return tmp.Name(), nil
}
