package parser

import (
	"fmt"
	"sort"
	"strings"

	"ddl-lint/internal/model"
)

// RenderDDL serializes a schema object back into a canonical CREATE
// statement. Parsing the rendered text yields a structurally equal
// object, which is what the round-trip tests rely on.
func RenderDDL(obj *model.SchemaObject) string {
	var sb strings.Builder

	switch obj.Kind {
	case model.KindView, model.KindMaterializedView:
		sb.WriteString("CREATE ")
		if obj.Kind == model.KindMaterializedView {
			sb.WriteString("MATERIALIZED ")
		}
		sb.WriteString("VIEW ")
		sb.WriteString(obj.Name)
		if len(obj.Columns) > 0 {
			names := make([]string, len(obj.Columns))
			for i, c := range obj.Columns {
				names[i] = c.Name
			}
			fmt.Fprintf(&sb, " (%s)", strings.Join(names, ", "))
		}
		if obj.Comment != "" {
			fmt.Fprintf(&sb, " COMMENT = %s", quote(obj.Comment))
		}
		sb.WriteString(";\n")
		return sb.String()
	}

	fmt.Fprintf(&sb, "CREATE TABLE %s (\n", obj.Name)
	var lines []string
	for _, col := range obj.Columns {
		lines = append(lines, "    "+renderColumn(&col))
	}
	if len(obj.PrimaryKey) > 0 {
		lines = append(lines, fmt.Sprintf("    PRIMARY KEY (%s)", strings.Join(obj.PrimaryKey, ", ")))
	}
	for _, fk := range obj.ForeignKeys {
		lines = append(lines, "    "+renderForeignKey(&fk))
	}
	sb.WriteString(strings.Join(lines, ",\n"))
	sb.WriteString("\n)")
	if obj.Comment != "" {
		fmt.Fprintf(&sb, " COMMENT = %s", quote(obj.Comment))
	}
	sb.WriteString(";\n")
	return sb.String()
}

func renderColumn(col *model.Column) string {
	parts := []string{col.Name, col.DataType.String()}
	if !col.Nullable {
		parts = append(parts, "NOT NULL")
	}
	if col.DefaultExpr != "" {
		parts = append(parts, "DEFAULT "+col.DefaultExpr)
	}
	if col.MaskingPolicy != "" {
		parts = append(parts, "WITH MASKING POLICY "+col.MaskingPolicy)
	}
	if len(col.Tags) > 0 {
		names := make([]string, 0, len(col.Tags))
		for name := range col.Tags {
			names = append(names, name)
		}
		sort.Strings(names)
		pairs := make([]string, len(names))
		for i, name := range names {
			pairs[i] = fmt.Sprintf("%s = %s", name, quote(col.Tags[name]))
		}
		parts = append(parts, fmt.Sprintf("WITH TAG (%s)", strings.Join(pairs, ", ")))
	}
	if col.Comment != "" {
		parts = append(parts, "COMMENT "+quote(col.Comment))
	}
	return strings.Join(parts, " ")
}

func renderForeignKey(fk *model.ForeignKeyRef) string {
	var sb strings.Builder
	if fk.ConstraintName != "" {
		fmt.Fprintf(&sb, "CONSTRAINT %s ", fk.ConstraintName)
	}
	fmt.Fprintf(&sb, "FOREIGN KEY (%s) REFERENCES %s", strings.Join(fk.ChildColumns, ", "), fk.ParentTable)
	if len(fk.ParentColumns) > 0 {
		fmt.Fprintf(&sb, " (%s)", strings.Join(fk.ParentColumns, ", "))
	}
	if !fk.Enforced {
		sb.WriteString(" NOT ENFORCED")
	}
	return sb.String()
}

func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
