package rules

import (
	"fmt"
	"strings"

	"ddl-lint/internal/model"
)

// FKNamingRule enforces the FK_{child}_{parent} constraint naming
// pattern. Comparison is case-insensitive like all identifier checks.
type FKNamingRule struct {
	Sev model.Severity
}

func (r *FKNamingRule) ID() string { return RuleFKNaming }

func (r *FKNamingRule) Check(obj *model.SchemaObject) []model.Finding {
	var out []model.Finding
	for _, fk := range obj.ForeignKeys {
		expected := fmt.Sprintf("FK_%s_%s", obj.Name, fk.ParentTable)
		if strings.EqualFold(fk.ConstraintName, expected) {
			continue
		}
		msg := fmt.Sprintf("foreign key constraint %s should be named %s", fk.ConstraintName, expected)
		if fk.ConstraintName == "" {
			msg = fmt.Sprintf("foreign key to %s has no constraint name (expected %s)", fk.ParentTable, expected)
		}
		out = append(out, finding(r.ID(), r.Sev, obj, "", msg))
	}
	return out
}
