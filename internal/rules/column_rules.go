package rules

import (
	"fmt"
	"strings"

	"ddl-lint/internal/config"
	"ddl-lint/internal/model"
)

// AuditColumnsRule requires every table to carry the warehouse audit
// columns with the prescribed type. One finding per missing or
// mistyped column.
type AuditColumnsRule struct {
	Std *config.Standard
	Sev model.Severity
}

func (r *AuditColumnsRule) ID() string { return RuleAuditColumns }

func (r *AuditColumnsRule) Check(obj *model.SchemaObject) []model.Finding {
	if obj.Kind != model.KindTable {
		return nil
	}
	var out []model.Finding
	for _, req := range r.Std.AuditColumns {
		col := obj.ColumnNamed(req.Name)
		if col == nil {
			out = append(out, finding(r.ID(), r.Sev, obj, "",
				fmt.Sprintf("missing required audit column %s %s", req.Name, req.Type)))
			continue
		}
		if !typeMatches(col.DataType, req.Type) {
			out = append(out, finding(r.ID(), r.Sev, obj, col.Name,
				fmt.Sprintf("audit column %s must be %s, found %s", col.Name, req.Type, col.DataType)))
		}
	}
	return out
}

// SCD2Rule: a table with BEGIN_DATE is a type-2 dimension and must
// carry the full validity-tracking column set.
type SCD2Rule struct {
	Sev model.Severity
}

func (r *SCD2Rule) ID() string { return RuleSCD2Columns }

func (r *SCD2Rule) Check(obj *model.SchemaObject) []model.Finding {
	if obj.Kind != model.KindTable || obj.ColumnNamed("BEGIN_DATE") == nil {
		return nil
	}
	var out []model.Finding

	if obj.ColumnNamed("END_DATE") == nil {
		out = append(out, finding(r.ID(), r.Sev, obj, "",
			"SCD2 table is missing END_DATE"))
	}

	if flag := obj.ColumnNamed("CURRENT_RECORD_FLAG"); flag == nil {
		out = append(out, finding(r.ID(), r.Sev, obj, "",
			"SCD2 table is missing CURRENT_RECORD_FLAG BOOLEAN NOT NULL"))
	} else {
		if !strings.EqualFold(flag.DataType.Base, "BOOLEAN") {
			out = append(out, finding(r.ID(), r.Sev, obj, flag.Name,
				fmt.Sprintf("CURRENT_RECORD_FLAG must be BOOLEAN, found %s", flag.DataType)))
		}
		if flag.Nullable {
			out = append(out, finding(r.ID(), r.Sev, obj, flag.Name,
				"CURRENT_RECORD_FLAG must be NOT NULL"))
		}
	}

	if hash := obj.ColumnNamed("HASH_CHECK_VALUE"); hash == nil {
		out = append(out, finding(r.ID(), r.Sev, obj, "",
			"SCD2 table is missing HASH_CHECK_VALUE BINARY"))
	} else if !strings.EqualFold(hash.DataType.Base, "BINARY") {
		out = append(out, finding(r.ID(), r.Sev, obj, hash.Name,
			fmt.Sprintf("HASH_CHECK_VALUE must be BINARY, found %s", hash.DataType)))
	}

	return out
}

// TypeStandardRule checks the data-type-by-suffix table: a column
// whose name matches a registered suffix must use the prescribed
// type. The longest matching suffix wins.
type TypeStandardRule struct {
	Std *config.Standard
	Sev model.Severity
}

func (r *TypeStandardRule) ID() string { return RuleTypeStandard }

func (r *TypeStandardRule) Check(obj *model.SchemaObject) []model.Finding {
	var out []model.Finding
	for i := range obj.Columns {
		col := &obj.Columns[i]
		if col.DataType.Base == "" {
			continue // view column lists carry no types
		}
		st := matchSuffix(r.Std, col.Name)
		if st == nil || col.DataType.Equal(st.Type) {
			continue
		}
		out = append(out, finding(r.ID(), r.Sev, obj, col.Name,
			fmt.Sprintf("column %s should be %s (suffix %s), found %s",
				col.Name, st.Type, st.Suffix, col.DataType)))
	}
	return out
}

// typeMatches compares a declared type against a required one. When
// the requirement names no parameters, any parameterization of the
// same base type is accepted (TIMESTAMP_TZ admits TIMESTAMP_TZ(9)).
func typeMatches(declared, required model.DataType) bool {
	if !strings.EqualFold(declared.Base, required.Base) {
		return false
	}
	if len(required.Args) == 0 {
		return true
	}
	return declared.Equal(required)
}
