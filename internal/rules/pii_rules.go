package rules

import (
	"fmt"
	"strings"

	"ddl-lint/internal/config"
	"ddl-lint/internal/model"
)

// PrivacyCategoryTag is the tag every masked PII column must carry.
const PrivacyCategoryTag = "PRIVACY_CATEGORY"

// PIIRule: columns whose names match a configured PII pattern must be
// masked and tagged. Exactly one finding per violating column, however
// many patterns matched.
type PIIRule struct {
	Std *config.Standard
	Sev model.Severity
}

func (r *PIIRule) ID() string { return RulePIIMasking }

func (r *PIIRule) Check(obj *model.SchemaObject) []model.Finding {
	var out []model.Finding
	for i := range obj.Columns {
		col := &obj.Columns[i]
		pattern := matchPIIPattern(r.Std, col.Name)
		if pattern == "" {
			continue
		}

		var missing []string
		if col.MaskingPolicy == "" {
			missing = append(missing, "a masking policy")
		}
		if _, ok := col.Tags[PrivacyCategoryTag]; !ok {
			missing = append(missing, "a "+PrivacyCategoryTag+" tag")
		}
		if len(missing) == 0 {
			continue
		}
		out = append(out, finding(r.ID(), r.Sev, obj, col.Name,
			fmt.Sprintf("column %s matches PII pattern %s but lacks %s",
				col.Name, pattern, strings.Join(missing, " and "))))
	}
	return out
}
