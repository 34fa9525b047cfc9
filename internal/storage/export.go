package storage

import (
	"encoding/json"
	"io"
	"os"

	"github.com/san-kum/marionette/internal/sim"
)

// FrameExport is the JSON layout of an exported snapshot.
type FrameExport struct {
	Scenario string             `json:"scenario,omitempty"`
	Params   map[string]float64 `json:"params,omitempty"`
	Frame    sim.Frame          `json:"frame"`
}

// ExportFrame writes a snapshot to path. An empty path or "-" writes to
// stdout.
func ExportFrame(path string, data FrameExport) error {
	if path == "" || path == "-" {
		return writeFrame(os.Stdout, data)
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return writeFrame(file, data)
}

func writeFrame(w io.Writer, data FrameExport) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

func LoadFrame(path string) (*FrameExport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var out FrameExport
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
