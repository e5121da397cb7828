package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/de-tools/report-atlas/pkg/models/domain"
	"gopkg.in/yaml.v3"
)

// SummaryPath places the summary next to the generated document.
func SummaryPath(document string) string {
	return strings.TrimSuffix(document, filepath.Ext(document)) + ".summary.yaml"
}

// WriteSummary writes the run summary as YAML.
func WriteSummary(path string, run domain.RunSummary) error {
	data, err := yaml.Marshal(run)
	if err != nil {
		return fmt.Errorf("failed to encode run summary: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write run summary: %w", err)
	}
	return nil
}
