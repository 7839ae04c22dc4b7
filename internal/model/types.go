package model

import (
	"fmt"
	"strings"
)

// Location represents where a statement was found in the input
type Location struct {
	FilePath string
	Line     int
}

func (l Location) String() string {
	if l.FilePath == "" {
		return fmt.Sprintf("line %d", l.Line)
	}
	return fmt.Sprintf("%s:%d", l.FilePath, l.Line)
}

// ObjectKind distinguishes the DDL object types we lint
type ObjectKind string

const (
	KindTable            ObjectKind = "TABLE"
	KindView             ObjectKind = "VIEW"
	KindMaterializedView ObjectKind = "MATERIALIZED_VIEW"
)

// DataType is a parsed column type, e.g. VARCHAR(500) or NUMBER(18,2).
// Args holds the parenthesized parameters in declaration order.
type DataType struct {
	Base string
	Args []int
}

func (dt DataType) String() string {
	if len(dt.Args) == 0 {
		return dt.Base
	}
	parts := make([]string, len(dt.Args))
	for i, a := range dt.Args {
		parts[i] = fmt.Sprintf("%d", a)
	}
	return fmt.Sprintf("%s(%s)", dt.Base, strings.Join(parts, ","))
}

// Equal compares base type (case-insensitive) and parameters.
func (dt DataType) Equal(other DataType) bool {
	if !strings.EqualFold(dt.Base, other.Base) {
		return false
	}
	if len(dt.Args) != len(other.Args) {
		return false
	}
	for i := range dt.Args {
		if dt.Args[i] != other.Args[i] {
			return false
		}
	}
	return true
}

// Column is one column definition inside a SchemaObject
type Column struct {
	Name          string
	DataType      DataType
	Nullable      bool
	DefaultExpr   string
	MaskingPolicy string
	Tags          map[string]string
	Comment       string
}

// ForeignKeyRef is one named FOREIGN KEY ... REFERENCES constraint
type ForeignKeyRef struct {
	ConstraintName string
	ChildColumns   []string
	ParentTable    string
	ParentColumns  []string
	Enforced       bool
}

// SchemaObject is one parsed CREATE TABLE / CREATE VIEW statement.
// Immutable once the parser returns it; rules must not modify it.
type SchemaObject struct {
	Name        string
	Kind        ObjectKind
	Columns     []Column
	PrimaryKey  []string
	ForeignKeys []ForeignKeyRef
	Comment     string
	Location    Location
	// Partial is set when the parser recovered from unparseable
	// constructs and the descriptor may be incomplete.
	Partial bool
}

// ColumnNamed returns the column with the given name (case-insensitive),
// or nil if the object has no such column.
func (o *SchemaObject) ColumnNamed(name string) *Column {
	for i := range o.Columns {
		if strings.EqualFold(o.Columns[i].Name, name) {
			return &o.Columns[i]
		}
	}
	return nil
}

// Severity classifies a finding
type Severity string

const (
	SeverityError   Severity = "ERROR"
	SeverityWarning Severity = "WARNING"
	SeverityInfo    Severity = "INFO"
)

// ParseSeverity maps a config string to a Severity, case-insensitively.
func ParseSeverity(s string) (Severity, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "ERROR":
		return SeverityError, nil
	case "WARNING":
		return SeverityWarning, nil
	case "INFO":
		return SeverityInfo, nil
	}
	return "", fmt.Errorf("unknown severity %q", s)
}

// Finding is the result of one rule evaluation against one object or column
type Finding struct {
	RuleID     string   `json:"ruleId"`
	Severity   Severity `json:"severity"`
	ObjectName string   `json:"object"`
	ColumnName string   `json:"column,omitempty"`
	Message    string   `json:"message"`
	Location   Location `json:"-"`
}

// Report aggregates findings for output. Counts is keyed by severity.
type Report struct {
	Counts   map[Severity]int `json:"counts"`
	Findings []Finding        `json:"findings"`
}

// NewReport builds a Report from findings, preserving their order.
func NewReport(findings []Finding) *Report {
	r := &Report{
		Counts:   map[Severity]int{},
		Findings: findings,
	}
	for _, f := range findings {
		r.Counts[f.Severity]++
	}
	return r
}

// HasErrors reports whether any ERROR-severity finding exists.
// WARNING and INFO findings never fail a run.
func (r *Report) HasErrors() bool {
	return r.Counts[SeverityError] > 0
}
