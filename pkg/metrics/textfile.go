package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// WriteTextfile writes the global registry to path in the text exposition
// format read by node-exporter's textfile collector.
func WriteTextfile(path string) error {
	return writeTextfile(path, customRegistry)
}

func writeTextfile(path string, g prometheus.Gatherer) error {
	if path == "" {
		return fmt.Errorf("empty path: %w", ErrExportFailed)
	}
	if err := prometheus.WriteToTextfile(path, g); err != nil {
		return fmt.Errorf("%s: %w: %w", path, ErrExportFailed, err)
	}
	return nil
}
