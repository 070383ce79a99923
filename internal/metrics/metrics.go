package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"geodata/internal/merge"
)

// Registry：构建指标使用独立注册表，只导出本次构建的计数，不混入进程级运行时指标
var Registry = prometheus.NewRegistry()

var (
	JurisdictionsTotal = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "geodata_jurisdictions",
		Help: "Number of jurisdictions in the built tree by level",
	}, []string{"level"})
	SourceRecordsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "geodata_source_records_total",
		Help: "Total records read from a statistics source",
	}, []string{"source"})
	SourceMatchedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "geodata_source_matched_total",
		Help: "Total source records resolved to a jurisdiction",
	}, []string{"source"})
	SourceUnresolvedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "geodata_source_unresolved_total",
		Help: "Total source records whose key did not resolve",
	}, []string{"source"})
	FieldsWrittenTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "geodata_fields_written_total",
		Help: "Total statistic fields filled by a source",
	}, []string{"source"})
	CellsSkippedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "geodata_cells_skipped_total",
		Help: "Total malformed cells skipped while scanning a source",
	}, []string{"source"})
	BuildDurationMs = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "geodata_build_duration_ms",
		Help: "Duration of the last build in milliseconds",
	})
	LastBuildTimestamp = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "geodata_last_build_timestamp_seconds",
		Help: "Unix time of the last successful build",
	})
)

func init() {
	Registry.MustRegister(JurisdictionsTotal)
	Registry.MustRegister(SourceRecordsTotal)
	Registry.MustRegister(SourceMatchedTotal)
	Registry.MustRegister(SourceUnresolvedTotal)
	Registry.MustRegister(FieldsWrittenTotal)
	Registry.MustRegister(CellsSkippedTotal)
	Registry.MustRegister(BuildDurationMs)
	Registry.MustRegister(LastBuildTimestamp)
}

// ObserveReport：将一次合并报告累加到按来源标记的计数器
func ObserveReport(r merge.Report) {
	SourceRecordsTotal.WithLabelValues(r.Source).Add(float64(r.Records))
	SourceMatchedTotal.WithLabelValues(r.Source).Add(float64(r.Matched))
	SourceUnresolvedTotal.WithLabelValues(r.Source).Add(float64(len(r.Unresolved)))
	FieldsWrittenTotal.WithLabelValues(r.Source).Add(float64(r.Written))
	CellsSkippedTotal.WithLabelValues(r.Source).Add(float64(r.SkippedCells))
}

// 文档注释：将指标写入 node_exporter 文本文件
// 背景：构建是一次性批处理进程，无法被 Prometheus 抓取；通过 textfile collector 暴露最近一次构建结果。
// 约束：path 为空时不写入；写入为先写临时文件再重命名（由 client_golang 保证）。
func WriteTextfile(path string) error {
	if path == "" {
		return nil
	}
	return prometheus.WriteToTextfile(path, Registry)
}

// ObserveBuild：记录树规模、构建耗时与完成时间
func ObserveBuild(countries, jurisdictions int, d time.Duration) {
	JurisdictionsTotal.WithLabelValues("country").Set(float64(countries))
	JurisdictionsTotal.WithLabelValues("subdivision").Set(float64(jurisdictions - countries))
	BuildDurationMs.Set(float64(d.Milliseconds()))
	LastBuildTimestamp.SetToCurrentTime()
}
