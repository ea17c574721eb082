package contracts

// Pipeline stage definitions.
//
// Medallion flow:
//   BRONZE → SILVER → QUALITY → GOLD
//   Ingest   Clean    Gate      Aggregate

// Stage represents a pipeline stage
type Stage string

const (
	// StageBronze: raw ingestion from the Open Brewery DB API
	// Location: internal/bronze/
	StageBronze Stage = "BRONZE_INGEST"

	// StageSilver: validation, deduplication, standardization
	// Location: internal/silver/
	StageSilver Stage = "SILVER_CLEAN"

	// StageQuality: integrity checks gating downstream aggregation
	// Location: internal/quality/
	StageQuality Stage = "QUALITY_GATE"

	// StageGold: the eight analytical aggregations
	// Location: internal/gold/
	StageGold Stage = "GOLD_AGGREGATE"
)

// String returns the stage name
func (s Stage) String() string {
	return string(s)
}

// ShortName returns the layer label used in logs and run history
func (s Stage) ShortName() string {
	switch s {
	case StageBronze:
		return "bronze"
	case StageSilver:
		return "silver"
	case StageQuality:
		return "quality"
	case StageGold:
		return "gold"
	default:
		return "unknown"
	}
}

// AllStages returns the stages in pipeline order
func AllStages() []Stage {
	return []Stage{StageBronze, StageSilver, StageQuality, StageGold}
}

// PipelineResult captures a single stage execution for run history
type PipelineResult struct {
	Stage       Stage  `json:"stage"`
	Success     bool   `json:"success"`
	InputCount  int    `json:"input_count"`
	OutputCount int    `json:"output_count"`
	DurationMS  int64  `json:"duration_ms"`
	Error       string `json:"error,omitempty"`
}
