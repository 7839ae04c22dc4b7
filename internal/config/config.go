package config

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"ddl-lint/internal/model"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// FileConfig mirrors the on-disk standard file (ddl-lint.yaml).
// Every field has a built-in default so the tool runs without a file.
type FileConfig struct {
	Prefixes struct {
		Table            []string `mapstructure:"table" yaml:"table"`
		View             []string `mapstructure:"view" yaml:"view"`
		MaterializedView []string `mapstructure:"materialized_view" yaml:"materialized_view"`
	} `mapstructure:"prefixes" yaml:"prefixes"`
	AuditColumns      map[string]string `mapstructure:"audit_columns" yaml:"audit_columns"`
	PIIPatterns       []string          `mapstructure:"pii_patterns" yaml:"pii_patterns"`
	TypeSuffixes      map[string]string `mapstructure:"type_suffixes" yaml:"type_suffixes"`
	SeverityOverrides map[string]string `mapstructure:"severity_overrides" yaml:"severity_overrides,omitempty"`
	Disabled          []string          `mapstructure:"disabled" yaml:"disabled,omitempty"`
}

// RequiredColumn is one column the standard mandates, with its type.
type RequiredColumn struct {
	Name string
	Type model.DataType
}

// SuffixType binds a column-name suffix to its prescribed type.
type SuffixType struct {
	Suffix string
	Type   model.DataType
}

// Standard is the validated, resolved lint standard used by the rules.
type Standard struct {
	TablePrefixes            []string
	ViewPrefixes             []string
	MaterializedViewPrefixes []string
	AuditColumns             []RequiredColumn
	PIIPatterns              []string
	TypeSuffixes             []SuffixType // sorted longest suffix first
	severityOverrides        map[string]model.Severity
	disabled                 map[string]bool
}

// Default returns the built-in standard file content.
func Default() *FileConfig {
	fc := &FileConfig{
		AuditColumns: map[string]string{
			"EDW_CREATED_AT":   "TIMESTAMP_TZ",
			"EDW_UPDATED_AT":   "TIMESTAMP_TZ",
			"EDW_PROCESSED_AT": "TIMESTAMP_TZ",
		},
		PIIPatterns: []string{"EMAIL", "NAME", "PHONE", "ADDRESS"},
		TypeSuffixes: map[string]string{
			"_AMT":   "NUMBER(18,2)",
			"_COUNT": "NUMBER(18,0)",
			"_NUM":   "NUMBER(18,0)",
			"_FLAG":  "BOOLEAN",
			"_AT":    "TIMESTAMP_TZ(9)",
		},
	}
	fc.Prefixes.Table = []string{"D_", "F_", "B_", "A_", "RPT_", "SRC_", "STG_", "REF_", "HIST_"}
	fc.Prefixes.View = []string{"VW_"}
	fc.Prefixes.MaterializedView = []string{"MV_"}
	return fc
}

// Load reads the standard from path via viper, falling back to the
// built-in defaults when path is empty or the file does not exist.
// knownRuleIDs is used to reject overrides for rules that do not exist.
func Load(path string, knownRuleIDs []string) (*Standard, error) {
	fc := Default()

	if path != "" {
		v := viper.New()
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			if _, statErr := os.Stat(path); statErr == nil {
				return nil, fmt.Errorf("reading standard %s: %w", path, err)
			}
			return nil, fmt.Errorf("standard file not found: %s", path)
		}
		if err := v.Unmarshal(fc); err != nil {
			return nil, fmt.Errorf("parsing standard %s: %w", path, err)
		}
	}

	return resolve(fc, knownRuleIDs)
}

// resolve validates a FileConfig and produces the Standard. Any problem
// here is an operator mistake and fails the whole run before parsing.
func resolve(fc *FileConfig, knownRuleIDs []string) (*Standard, error) {
	if len(fc.Prefixes.Table) == 0 {
		return nil, fmt.Errorf("prefixes.table must not be empty")
	}
	std := &Standard{
		TablePrefixes:            upperAll(fc.Prefixes.Table),
		ViewPrefixes:             upperAll(fc.Prefixes.View),
		MaterializedViewPrefixes: upperAll(fc.Prefixes.MaterializedView),
		PIIPatterns:              normalizePatterns(fc.PIIPatterns),
		severityOverrides:        map[string]model.Severity{},
		disabled:                 map[string]bool{},
	}

	for name, typeSpec := range fc.AuditColumns {
		dt, err := ParseTypeSpec(typeSpec)
		if err != nil {
			return nil, fmt.Errorf("audit_columns.%s: %w", name, err)
		}
		std.AuditColumns = append(std.AuditColumns, RequiredColumn{Name: strings.ToUpper(name), Type: dt})
	}
	sort.Slice(std.AuditColumns, func(i, j int) bool {
		return std.AuditColumns[i].Name < std.AuditColumns[j].Name
	})

	for suffix, typeSpec := range fc.TypeSuffixes {
		dt, err := ParseTypeSpec(typeSpec)
		if err != nil {
			return nil, fmt.Errorf("type_suffixes.%s: %w", suffix, err)
		}
		std.TypeSuffixes = append(std.TypeSuffixes, SuffixType{Suffix: strings.ToUpper(suffix), Type: dt})
	}
	// Longest suffix wins when several match; ties break alphabetically
	// so evaluation order is deterministic.
	sort.Slice(std.TypeSuffixes, func(i, j int) bool {
		a, b := std.TypeSuffixes[i], std.TypeSuffixes[j]
		if len(a.Suffix) != len(b.Suffix) {
			return len(a.Suffix) > len(b.Suffix)
		}
		return a.Suffix < b.Suffix
	})

	known := map[string]bool{}
	for _, id := range knownRuleIDs {
		known[id] = true
	}
	for ruleID, sevName := range fc.SeverityOverrides {
		id := strings.ToUpper(ruleID)
		if !known[id] {
			return nil, fmt.Errorf("severity_overrides: unknown rule %q", ruleID)
		}
		sev, err := model.ParseSeverity(sevName)
		if err != nil {
			return nil, fmt.Errorf("severity_overrides.%s: %w", ruleID, err)
		}
		std.severityOverrides[id] = sev
	}
	for _, ruleID := range fc.Disabled {
		id := strings.ToUpper(ruleID)
		if !known[id] {
			return nil, fmt.Errorf("disabled: unknown rule %q", ruleID)
		}
		std.disabled[id] = true
	}

	return std, nil
}

// Severity returns the effective severity for a rule, honoring overrides.
func (s *Standard) Severity(ruleID string, def model.Severity) model.Severity {
	if sev, ok := s.severityOverrides[ruleID]; ok {
		return sev
	}
	return def
}

// Disabled reports whether the standard switches a rule off.
func (s *Standard) Disabled(ruleID string) bool {
	return s.disabled[ruleID]
}

// PrefixesFor returns the registered prefixes for an object kind.
func (s *Standard) PrefixesFor(kind model.ObjectKind) []string {
	switch kind {
	case model.KindView:
		return s.ViewPrefixes
	case model.KindMaterializedView:
		return s.MaterializedViewPrefixes
	default:
		return s.TablePrefixes
	}
}

// ParseTypeSpec parses a type spec string like "NUMBER(18,2)" or
// "TIMESTAMP_TZ" into a DataType.
func ParseTypeSpec(spec string) (model.DataType, error) {
	spec = strings.TrimSpace(spec)
	open := strings.IndexByte(spec, '(')
	if open < 0 {
		if spec == "" || strings.ContainsAny(spec, " )") {
			return model.DataType{}, fmt.Errorf("malformed type spec %q", spec)
		}
		return model.DataType{Base: strings.ToUpper(spec)}, nil
	}
	if !strings.HasSuffix(spec, ")") || open == 0 {
		return model.DataType{}, fmt.Errorf("malformed type spec %q", spec)
	}
	dt := model.DataType{Base: strings.ToUpper(spec[:open])}
	for _, part := range strings.Split(spec[open+1:len(spec)-1], ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return model.DataType{}, fmt.Errorf("malformed type spec %q: %w", spec, err)
		}
		dt.Args = append(dt.Args, n)
	}
	return dt, nil
}

// WriteDefault writes the built-in standard to path as YAML, for the
// init-config command. Refuses to overwrite an existing file.
func WriteDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	}
	out, err := yaml.Marshal(Default())
	if err != nil {
		return err
	}
	return os.WriteFile(path, out, 0o644)
}

// normalizePatterns uppercases PII patterns and strips glob stars, so
// "*EMAIL*" and "email" both become the substring match EMAIL.
func normalizePatterns(in []string) []string {
	out := make([]string, 0, len(in))
	for _, p := range in {
		p = strings.ToUpper(strings.Trim(strings.TrimSpace(p), "*"))
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func upperAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.ToUpper(strings.TrimSpace(s))
	}
	return out
}
