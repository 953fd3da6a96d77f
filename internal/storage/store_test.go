package storage

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/fold/internal/config"
	"github.com/san-kum/fold/internal/experiment"
)

func sampleRun() (*config.Scenario, *experiment.Result) {
	sc := config.GetPreset("drop")
	res := &experiment.Result{
		Scenario: sc.Name,
		Records: []experiment.StepRecord{
			{Step: 1, Time: 0.01, Iterations: 0, Converged: true, Positions: []float64{0, 0, 0.49}},
			{Step: 2, Time: 0.02, Iterations: 7, Converged: false, Beta: 0.00999, Energy: 1.2345678e-7, Positions: []float64{0, 0, -0.0031}},
		},
		Metrics:   map[string]float64{"peak_energy": 1.2345678e-7},
		Positions: []float64{0, 0, -0.0031},
	}
	return sc, res
}

func TestStoreSaveLoad(t *testing.T) {
	st := New(t.TempDir())
	require.NoError(t, st.Init())

	sc, res := sampleRun()
	runID, err := st.Save(sc, res)
	require.NoError(t, err)
	assert.Contains(t, runID, "drop_")

	meta, err := st.Load(runID)
	require.NoError(t, err)
	assert.Equal(t, runID, meta.ID)
	assert.Equal(t, "drop", meta.Scenario)
	assert.Equal(t, 2, meta.Steps)
	assert.Equal(t, 3, meta.DOFs)
	assert.Equal(t, 1, meta.Constraints)
	assert.Equal(t, res.Metrics, meta.Metrics)

	steps, err := st.LoadSteps(runID)
	require.NoError(t, err)
	assert.Equal(t, res.Records, steps)
}

func TestStoreList(t *testing.T) {
	st := New(t.TempDir())
	require.NoError(t, st.Init())

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	var ids []string
	for i := 0; i < 3; i++ {
		at := base.Add(time.Duration(i) * time.Minute)
		st.now = func() time.Time { return at }
		sc, res := sampleRun()
		id, err := st.Save(sc, res)
		require.NoError(t, err)
		ids = append(ids, id)
	}
	require.NoError(t, os.WriteFile(filepath.Join(st.baseDir, "stray.txt"), nil, 0644))
	require.NoError(t, os.MkdirAll(filepath.Join(st.baseDir, "broken"), 0755))

	runs, err := st.List()
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, ids[2], runs[0].ID, "newest first")
	assert.Equal(t, ids[0], runs[2].ID)
}

func TestStoreList_MissingDir(t *testing.T) {
	runs, err := New(filepath.Join(t.TempDir(), "absent")).List()
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestStoreLoad_NotFound(t *testing.T) {
	st := New(t.TempDir())

	_, err := st.Load("nope")
	require.ErrorIs(t, err, ErrRunNotFound)
	_, err = st.LoadSteps("nope")
	require.ErrorIs(t, err, ErrRunNotFound)
}

func TestLoadSteps_Malformed(t *testing.T) {
	st := New(t.TempDir())
	dir := filepath.Join(st.baseDir, "bad")
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, stepsFile), []byte("step,time\n1,abc,0,true,0,0\n"), 0644))

	_, err := st.LoadSteps("bad")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
}

func TestWriteJSON(t *testing.T) {
	sc, res := sampleRun()
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, sc, res))

	var got ExportData
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "drop", got.Scenario)
	assert.Equal(t, 2, got.Steps)
	assert.Equal(t, res.Positions, got.Final)

	path := filepath.Join(t.TempDir(), "run.json")
	require.NoError(t, ExportJSON(path, sc, res))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, buf.String(), string(data))
}
