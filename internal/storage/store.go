package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/san-kum/fold/internal/config"
	"github.com/san-kum/fold/internal/experiment"
)

const (
	metadataFile = "metadata.json"
	stepsFile    = "steps.csv"
	stepColumns  = 6
)

var ErrRunNotFound = errors.New("storage: run not found")

type Store struct {
	baseDir string
	now     func() time.Time
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir, now: time.Now}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID          string             `json:"id"`
	Scenario    string             `json:"scenario"`
	Timestamp   time.Time          `json:"timestamp"`
	DeltaTime   float64            `json:"delta_time"`
	Steps       int                `json:"steps"`
	Predictor   string             `json:"predictor"`
	Constraints int                `json:"constraints"`
	DOFs        int                `json:"dofs"`
	Metrics     map[string]float64 `json:"metrics"`
}

func (s *Store) Save(sc *config.Scenario, result *experiment.Result) (string, error) {
	runID := fmt.Sprintf("%s_%s", sc.Name, uuid.NewString()[:8])
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:          runID,
		Scenario:    sc.Name,
		Timestamp:   s.now().UTC(),
		DeltaTime:   sc.DeltaTime,
		Steps:       len(result.Records),
		Predictor:   sc.Predictor,
		Constraints: len(sc.Constraints),
		DOFs:        len(sc.Positions),
		Metrics:     result.Metrics,
	}
	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}
	if err := writeSteps(filepath.Join(runDir, stepsFile), len(sc.Positions), result.Records); err != nil {
		return "", err
	}
	return runID, nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func writeSteps(path string, dofs int, records []experiment.StepRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := []string{"step", "time", "iterations", "converged", "beta", "energy"}
	for i := 0; i < dofs; i++ {
		header = append(header, fmt.Sprintf("x%d", i))
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for _, rec := range records {
		row := []string{
			strconv.Itoa(rec.Step),
			formatFloat(rec.Time),
			strconv.Itoa(rec.Iterations),
			strconv.FormatBool(rec.Converged),
			formatFloat(rec.Beta),
			formatFloat(rec.Energy),
		}
		for _, x := range rec.Positions {
			row = append(row, formatFloat(x))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// List returns every readable run, newest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.SliceStable(runs, func(i, j int) bool {
		return runs[i].Timestamp.After(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("decode %s: %w", runID, err)
	}
	return &meta, nil
}

func (s *Store) LoadSteps(runID string) ([]experiment.StepRecord, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, stepsFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) < 2 {
		return []experiment.StepRecord{}, nil
	}

	records := make([]experiment.StepRecord, 0, len(rows)-1)
	for i, row := range rows[1:] {
		rec, err := parseStep(row)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", stepsFile, i+2, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

func parseStep(row []string) (experiment.StepRecord, error) {
	var rec experiment.StepRecord
	if len(row) < stepColumns {
		return rec, fmt.Errorf("expected at least %d columns, got %d", stepColumns, len(row))
	}

	var err error
	if rec.Step, err = strconv.Atoi(row[0]); err != nil {
		return rec, err
	}
	if rec.Time, err = strconv.ParseFloat(row[1], 64); err != nil {
		return rec, err
	}
	if rec.Iterations, err = strconv.Atoi(row[2]); err != nil {
		return rec, err
	}
	if rec.Converged, err = strconv.ParseBool(row[3]); err != nil {
		return rec, err
	}
	if rec.Beta, err = strconv.ParseFloat(row[4], 64); err != nil {
		return rec, err
	}
	if rec.Energy, err = strconv.ParseFloat(row[5], 64); err != nil {
		return rec, err
	}
	rec.Positions = make([]float64, 0, len(row)-stepColumns)
	for _, cell := range row[stepColumns:] {
		x, err := strconv.ParseFloat(cell, 64)
		if err != nil {
			return rec, err
		}
		rec.Positions = append(rec.Positions, x)
	}
	return rec, nil
}
