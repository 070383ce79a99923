package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"geodata/internal/merge"
)

func TestObserveReport(t *testing.T) {
	ObserveReport(merge.Report{
		Source:       "metrics_test",
		Records:      5,
		Matched:      3,
		Written:      2,
		Unresolved:   []string{"A", "B"},
		SkippedCells: 1,
	})
	assert.Equal(t, 5.0, testutil.ToFloat64(SourceRecordsTotal.WithLabelValues("metrics_test")))
	assert.Equal(t, 3.0, testutil.ToFloat64(SourceMatchedTotal.WithLabelValues("metrics_test")))
	assert.Equal(t, 2.0, testutil.ToFloat64(SourceUnresolvedTotal.WithLabelValues("metrics_test")))
	assert.Equal(t, 2.0, testutil.ToFloat64(FieldsWrittenTotal.WithLabelValues("metrics_test")))
	assert.Equal(t, 1.0, testutil.ToFloat64(CellsSkippedTotal.WithLabelValues("metrics_test")))
}

func TestWriteTextfile(t *testing.T) {
	require.NoError(t, WriteTextfile(""))

	ObserveReport(merge.Report{Source: "textfile_test", Records: 1})
	path := filepath.Join(t.TempDir(), "geodata.prom")
	require.NoError(t, WriteTextfile(path))
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), `geodata_source_records_total{source="textfile_test"} 1`)
}

func TestObserveBuild(t *testing.T) {
	ObserveBuild(3, 10, 1500*time.Millisecond)
	assert.Equal(t, 3.0, testutil.ToFloat64(JurisdictionsTotal.WithLabelValues("country")))
	assert.Equal(t, 7.0, testutil.ToFloat64(JurisdictionsTotal.WithLabelValues("subdivision")))
	assert.Equal(t, 1500.0, testutil.ToFloat64(BuildDurationMs))
	assert.Greater(t, testutil.ToFloat64(LastBuildTimestamp), 0.0)
}
