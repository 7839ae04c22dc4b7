package linter

import (
	"fmt"

	"ddl-lint/internal/model"

	"github.com/rs/zerolog/log"
)

// RuleIDPanic identifies findings produced when a rule fails to
// evaluate; the failure is isolated, remaining rules still run.
const RuleIDPanic = "RULE_PANIC"

// Linter runs a registered rule set over parsed schema objects.
type Linter struct {
	rules []model.Rule
}

func New(rules ...model.Rule) *Linter {
	return &Linter{rules: rules}
}

func (l *Linter) Register(rule model.Rule) {
	l.rules = append(l.rules, rule)
}

// Run evaluates every rule against every object. Findings come out
// grouped by object in input order, then by rule registration order.
func (l *Linter) Run(objects []model.SchemaObject) []model.Finding {
	var all []model.Finding
	for i := range objects {
		obj := &objects[i]
		for _, rule := range l.rules {
			all = append(all, l.check(rule, obj)...)
		}
	}
	return all
}

func (l *Linter) check(rule model.Rule, obj *model.SchemaObject) (findings []model.Finding) {
	defer func() {
		if r := recover(); r != nil {
			log.Debug().Str("rule", rule.ID()).Str("object", obj.Name).
				Interface("panic", r).Msg("rule evaluation failed")
			findings = []model.Finding{{
				RuleID:     RuleIDPanic,
				Severity:   model.SeverityInfo,
				ObjectName: obj.Name,
				Message:    fmt.Sprintf("rule %s could not evaluate %s: %v", rule.ID(), obj.Name, r),
				Location:   obj.Location,
			}}
		}
	}()
	return rule.Check(obj)
}
