package reporter

import (
	"encoding/json"
	"io"

	"ddl-lint/internal/model"
)

// JSONReporter writes the authoritative structured report form:
// severity counts plus the ordered finding records.
type JSONReporter struct {
	out io.Writer
}

func NewJSONReporter(out io.Writer) *JSONReporter {
	return &JSONReporter{out: out}
}

func (r *JSONReporter) Report(rep *model.Report) error {
	findings := rep.Findings
	if findings == nil {
		findings = []model.Finding{}
	}
	enc := json.NewEncoder(r.out)
	enc.SetIndent("", "  ")
	return enc.Encode(jsonReport{
		Counts: map[string]int{
			"error":   rep.Counts[model.SeverityError],
			"warning": rep.Counts[model.SeverityWarning],
			"info":    rep.Counts[model.SeverityInfo],
		},
		Findings: findings,
	})
}

type jsonReport struct {
	Counts   map[string]int  `json:"counts"`
	Findings []model.Finding `json:"findings"`
}
