package config

import (
	"os"
	"path/filepath"
	"testing"

	"ddl-lint/internal/model"
)

var knownIDs = []string{"OBJECT_PREFIX", "FK_NAMING", "TYPE_STANDARD"}

func TestLoad_Defaults(t *testing.T) {
	std, err := Load("", knownIDs)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if len(std.TablePrefixes) != 9 {
		t.Errorf("table prefixes = %v", std.TablePrefixes)
	}
	if len(std.ViewPrefixes) != 1 || std.ViewPrefixes[0] != "VW_" {
		t.Errorf("view prefixes = %v", std.ViewPrefixes)
	}
	if len(std.AuditColumns) != 3 {
		t.Errorf("audit columns = %v", std.AuditColumns)
	}
	if got := std.Severity("FK_NAMING", model.SeverityWarning); got != model.SeverityWarning {
		t.Errorf("Severity() = %s without overrides", got)
	}

	// Longest suffix must sort first so _COUNT beats shorter matches.
	if len(std.TypeSuffixes) == 0 || len(std.TypeSuffixes[0].Suffix) < len(std.TypeSuffixes[len(std.TypeSuffixes)-1].Suffix) {
		t.Errorf("type suffixes not sorted longest-first: %v", std.TypeSuffixes)
	}
}

func TestLoad_FromFile(t *testing.T) {
	content := `
prefixes:
  table: [DIM_, FCT_]
  view: [V_]
  materialized_view: [MV_]
pii_patterns: ["*SSN*", "email"]
severity_overrides:
  fk_naming: error
disabled:
  - TYPE_STANDARD
`
	path := writeTemp(t, content)

	std, err := Load(path, knownIDs)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if len(std.TablePrefixes) != 2 || std.TablePrefixes[0] != "DIM_" {
		t.Errorf("table prefixes = %v", std.TablePrefixes)
	}
	// Glob stars are stripped, patterns uppercased
	if len(std.PIIPatterns) != 2 || std.PIIPatterns[0] != "SSN" || std.PIIPatterns[1] != "EMAIL" {
		t.Errorf("pii patterns = %v", std.PIIPatterns)
	}
	if got := std.Severity("FK_NAMING", model.SeverityWarning); got != model.SeverityError {
		t.Errorf("override not applied, Severity() = %s", got)
	}
	if !std.Disabled("TYPE_STANDARD") {
		t.Error("TYPE_STANDARD should be disabled")
	}
	if std.Disabled("OBJECT_PREFIX") {
		t.Error("OBJECT_PREFIX should stay enabled")
	}
}

func TestLoad_ConfigurationErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name: "unknown severity name",
			content: `
severity_overrides:
  FK_NAMING: blocker
`,
		},
		{
			name: "unknown rule in overrides",
			content: `
severity_overrides:
  NO_SUCH_RULE: ERROR
`,
		},
		{
			name: "unknown rule in disabled",
			content: `
disabled: [NO_SUCH_RULE]
`,
		},
		{
			name: "empty table prefixes",
			content: `
prefixes:
  table: []
`,
		},
		{
			name: "malformed suffix type",
			content: `
type_suffixes:
  _AMT: "NUMBER(18,"
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeTemp(t, tt.content)
			if _, err := Load(path, knownIDs); err == nil {
				t.Error("Load() should fail for invalid standard")
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml"), knownIDs); err == nil {
		t.Error("Load() should fail when an explicit standard file is missing")
	}
}

func TestParseTypeSpec(t *testing.T) {
	tests := []struct {
		spec    string
		want    model.DataType
		wantErr bool
	}{
		{spec: "TIMESTAMP_TZ", want: model.DataType{Base: "TIMESTAMP_TZ"}},
		{spec: "NUMBER(18,2)", want: model.DataType{Base: "NUMBER", Args: []int{18, 2}}},
		{spec: "number(18, 0)", want: model.DataType{Base: "NUMBER", Args: []int{18, 0}}},
		{spec: "varchar(500)", want: model.DataType{Base: "VARCHAR", Args: []int{500}}},
		{spec: "", wantErr: true},
		{spec: "NUMBER(", wantErr: true},
		{spec: "NUMBER(x)", wantErr: true},
		{spec: "(18)", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			got, err := ParseTypeSpec(tt.spec)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseTypeSpec(%q) error = %v, wantErr %v", tt.spec, err, tt.wantErr)
			}
			if !tt.wantErr && !got.Equal(tt.want) {
				t.Errorf("ParseTypeSpec(%q) = %v, want %v", tt.spec, got, tt.want)
			}
		})
	}
}

func TestWriteDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ddl-lint.yaml")
	if err := WriteDefault(path); err != nil {
		t.Fatalf("WriteDefault() error = %v", err)
	}

	std, err := Load(path, knownIDs)
	if err != nil {
		t.Fatalf("scaffolded standard should load: %v", err)
	}
	if len(std.TablePrefixes) != 9 {
		t.Errorf("table prefixes = %v", std.TablePrefixes)
	}

	if err := WriteDefault(path); err == nil {
		t.Error("WriteDefault() should refuse to overwrite")
	}
}

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "standard.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}
