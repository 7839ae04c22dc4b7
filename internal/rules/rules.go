package rules

import (
	"fmt"
	"strings"

	"ddl-lint/internal/config"
	"ddl-lint/internal/model"
)

// Rule IDs, referenced from severity_overrides and disabled lists.
const (
	RuleObjectPrefix   = "OBJECT_PREFIX"
	RuleAuditColumns   = "AUDIT_COLUMNS"
	RulePrimaryKey     = "PRIMARY_KEY"
	RuleSCD2Columns    = "SCD2_COLUMNS"
	RuleFKNaming       = "FK_NAMING"
	RuleTypeStandard   = "TYPE_STANDARD"
	RulePIIMasking     = "PII_MASKING"
	RuleCommentMissing = "COMMENT_MISSING"
)

// IDs returns every rule ID this package implements, in registration
// order.
func IDs() []string {
	return []string{
		RuleObjectPrefix,
		RuleAuditColumns,
		RulePrimaryKey,
		RuleSCD2Columns,
		RuleFKNaming,
		RuleTypeStandard,
		RulePIIMasking,
		RuleCommentMissing,
	}
}

// Defaults builds the full rule set for a standard, honoring its
// severity overrides and disabled list. Registration order here fixes
// the finding order within each object.
func Defaults(std *config.Standard) []model.Rule {
	all := []model.Rule{
		&PrefixRule{Std: std, Sev: std.Severity(RuleObjectPrefix, model.SeverityError)},
		&AuditColumnsRule{Std: std, Sev: std.Severity(RuleAuditColumns, model.SeverityError)},
		&PrimaryKeyRule{Sev: std.Severity(RulePrimaryKey, model.SeverityError)},
		&SCD2Rule{Sev: std.Severity(RuleSCD2Columns, model.SeverityError)},
		&FKNamingRule{Sev: std.Severity(RuleFKNaming, model.SeverityWarning)},
		&TypeStandardRule{Std: std, Sev: std.Severity(RuleTypeStandard, model.SeverityWarning)},
		&PIIRule{Std: std, Sev: std.Severity(RulePIIMasking, model.SeverityError)},
		&CommentRule{Std: std, Sev: std.Severity(RuleCommentMissing, model.SeverityWarning)},
	}
	var enabled []model.Rule
	for _, r := range all {
		if !std.Disabled(r.ID()) {
			enabled = append(enabled, r)
		}
	}
	return enabled
}

func finding(ruleID string, sev model.Severity, obj *model.SchemaObject, column, msg string) model.Finding {
	return model.Finding{
		RuleID:     ruleID,
		Severity:   sev,
		ObjectName: obj.Name,
		ColumnName: column,
		Message:    msg,
		Location:   obj.Location,
	}
}

// PrefixRule checks that the object name starts with a prefix
// registered for its kind.
type PrefixRule struct {
	Std *config.Standard
	Sev model.Severity
}

func (r *PrefixRule) ID() string { return RuleObjectPrefix }

func (r *PrefixRule) Check(obj *model.SchemaObject) []model.Finding {
	name := strings.ToUpper(obj.Name)
	prefixes := r.Std.PrefixesFor(obj.Kind)
	for _, p := range prefixes {
		if strings.HasPrefix(name, p) {
			return nil
		}
	}
	kindWord := "table"
	switch obj.Kind {
	case model.KindView:
		kindWord = "view"
	case model.KindMaterializedView:
		kindWord = "materialized view"
	}
	return []model.Finding{finding(r.ID(), r.Sev, obj, "",
		fmt.Sprintf("%s does not match any registered %s prefix (%s)",
			obj.Name, kindWord, strings.Join(prefixes, ", ")))}
}

// PrimaryKeyRule requires every table to declare a primary key.
type PrimaryKeyRule struct {
	Sev model.Severity
}

func (r *PrimaryKeyRule) ID() string { return RulePrimaryKey }

func (r *PrimaryKeyRule) Check(obj *model.SchemaObject) []model.Finding {
	if obj.Kind != model.KindTable {
		return nil
	}
	if len(obj.PrimaryKey) > 0 {
		return nil
	}
	return []model.Finding{finding(r.ID(), r.Sev, obj, "", "no primary key defined")}
}

// CommentRule wants a comment on the object and on every column the
// standard considers significant (PII matches and suffix-typed
// business columns). Advisory, so WARNING by default.
type CommentRule struct {
	Std *config.Standard
	Sev model.Severity
}

func (r *CommentRule) ID() string { return RuleCommentMissing }

func (r *CommentRule) Check(obj *model.SchemaObject) []model.Finding {
	var out []model.Finding
	if obj.Comment == "" {
		out = append(out, finding(r.ID(), r.Sev, obj, "",
			fmt.Sprintf("%s %s has no comment", strings.ToLower(string(obj.Kind)), obj.Name)))
	}
	for i := range obj.Columns {
		col := &obj.Columns[i]
		if col.Comment != "" {
			continue
		}
		if matchPIIPattern(r.Std, col.Name) == "" && matchSuffix(r.Std, col.Name) == nil {
			continue
		}
		out = append(out, finding(r.ID(), r.Sev, obj, col.Name,
			fmt.Sprintf("column %s has no comment", col.Name)))
	}
	return out
}

// matchPIIPattern returns the first configured PII pattern contained
// in the column name, or "" when none match.
func matchPIIPattern(std *config.Standard, columnName string) string {
	upper := strings.ToUpper(columnName)
	for _, p := range std.PIIPatterns {
		if p != "" && strings.Contains(upper, p) {
			return p
		}
	}
	return ""
}

// matchSuffix returns the longest configured suffix binding matching
// the column name, or nil.
func matchSuffix(std *config.Standard, columnName string) *config.SuffixType {
	upper := strings.ToUpper(columnName)
	for i := range std.TypeSuffixes {
		if strings.HasSuffix(upper, std.TypeSuffixes[i].Suffix) {
			return &std.TypeSuffixes[i]
		}
	}
	return nil
}
