package replay

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// saveReport writes the report as indented JSON.
func saveReport(filename string, report *Report) error {
	dir := filepath.Dir(filename)
	if dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	if err := os.WriteFile(filename, data, filePermission); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}
