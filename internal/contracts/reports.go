package contracts

import "fmt"

// CleaningReport summarizes one cleaning engine run.
// Returned alongside the cleaned records; never persisted by the core.
type CleaningReport struct {
	InputCount      int         `json:"input_count"`
	OutputCount     int         `json:"output_count"`
	RejectedCount   int         `json:"rejected_count"`
	DuplicateCount  int         `json:"duplicate_count"`
	NormalizedCount int         `json:"normalized_count"`
	Warnings        []string    `json:"warnings,omitempty"`
	Rejections      []Rejection `json:"rejections,omitempty"`
}

// Rejection records a single raw record dropped during validation
type Rejection struct {
	ID     string `json:"id,omitempty"`
	Reason string `json:"reason"`
}

// Severity classifies a quality violation
type Severity string

const (
	SeverityWarning Severity = "warning"
	SeverityHard    Severity = "hard"
)

// Violation is one failed quality check
type Violation struct {
	Check    string   `json:"check"`
	Severity Severity `json:"severity"`
	Country  string   `json:"country,omitempty"`
	Message  string   `json:"message"`
}

func (v Violation) String() string {
	if v.Country != "" {
		return fmt.Sprintf("[%s] %s (%s): %s", v.Severity, v.Check, v.Country, v.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", v.Severity, v.Check, v.Message)
}

// QualityReport is the quality gate verdict over a cleaned record set.
// Passed is true iff no hard-severity violation exists; warning-level
// violations are carried for visibility but do not block the pipeline.
type QualityReport struct {
	RecordCount int         `json:"record_count"`
	Passed      bool        `json:"passed"`
	Violations  []Violation `json:"violations,omitempty"`
}

// HardViolations returns only the blocking violations
func (r *QualityReport) HardViolations() []Violation {
	hard := make([]Violation, 0)
	for _, v := range r.Violations {
		if v.Severity == SeverityHard {
			hard = append(hard, v)
		}
	}
	return hard
}

// WarningCount returns the number of warning-level violations
func (r *QualityReport) WarningCount() int {
	count := 0
	for _, v := range r.Violations {
		if v.Severity == SeverityWarning {
			count++
		}
	}
	return count
}
