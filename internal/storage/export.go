package storage

import (
	"encoding/json"
	"io"
	"os"

	"github.com/san-kum/fold/internal/config"
	"github.com/san-kum/fold/internal/experiment"
)

type ExportData struct {
	Scenario  string                  `json:"scenario"`
	DeltaTime float64                 `json:"delta_time"`
	Steps     int                     `json:"steps"`
	Records   []experiment.StepRecord `json:"records"`
	Metrics   map[string]float64      `json:"metrics"`
	Final     []float64               `json:"final_positions"`
}

func newExport(sc *config.Scenario, result *experiment.Result) ExportData {
	return ExportData{
		Scenario:  sc.Name,
		DeltaTime: sc.DeltaTime,
		Steps:     len(result.Records),
		Records:   result.Records,
		Metrics:   result.Metrics,
		Final:     result.Positions,
	}
}

func ExportJSON(path string, sc *config.Scenario, result *experiment.Result) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return WriteJSON(file, sc, result)
}

func WriteJSON(w io.Writer, sc *config.Scenario, result *experiment.Result) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(newExport(sc, result))
}
