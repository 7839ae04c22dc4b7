package rules

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"ddl-lint/internal/config"
	"ddl-lint/internal/model"
	"ddl-lint/internal/parser"
)

func testStandard(t *testing.T) *config.Standard {
	t.Helper()
	std, err := config.Load("", IDs())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	return std
}

func parseOne(t *testing.T, ddl string) *model.SchemaObject {
	t.Helper()
	res := parser.New().Parse(ddl, "")
	if len(res.Objects) != 1 {
		t.Fatalf("expected 1 object, got %d", len(res.Objects))
	}
	return &res.Objects[0]
}

func TestPrefixRule_Check(t *testing.T) {
	std := testStandard(t)
	rule := &PrefixRule{Std: std, Sev: model.SeverityError}

	tests := []struct {
		name       string
		ddl        string
		wantIssues int
	}{
		{
			name:       "unprefixed table",
			ddl:        "CREATE TABLE CUSTOMER (ID NUMBER(38,0));",
			wantIssues: 1,
		},
		{
			name:       "dimension prefix",
			ddl:        "CREATE TABLE D_CUSTOMER (ID NUMBER(38,0));",
			wantIssues: 0,
		},
		{
			name:       "fact prefix lowercase source",
			ddl:        "create table f_order (id number(38,0));",
			wantIssues: 0,
		},
		{
			name:       "view with table prefix",
			ddl:        "CREATE VIEW D_CUSTOMER AS SELECT 1;",
			wantIssues: 1,
		},
		{
			name:       "view prefix",
			ddl:        "CREATE VIEW VW_CUSTOMER AS SELECT 1;",
			wantIssues: 0,
		},
		{
			name:       "materialized view prefix",
			ddl:        "CREATE MATERIALIZED VIEW MV_DAILY AS SELECT 1;",
			wantIssues: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			findings := rule.Check(parseOne(t, tt.ddl))
			if len(findings) != tt.wantIssues {
				t.Errorf("Check() got %d findings, want %d: %v", len(findings), tt.wantIssues, findings)
			}
		})
	}
}

func TestPrefixRule_Message(t *testing.T) {
	std := testStandard(t)
	rule := &PrefixRule{Std: std, Sev: model.SeverityError}

	findings := rule.Check(parseOne(t, "CREATE TABLE CUSTOMER (ID NUMBER(38,0));"))
	if len(findings) != 1 {
		t.Fatalf("expected 1 finding, got %d", len(findings))
	}
	if !strings.Contains(findings[0].Message, "CUSTOMER does not match any registered table prefix") {
		t.Errorf("message = %q", findings[0].Message)
	}
}

func TestPrimaryKeyRule_Check(t *testing.T) {
	rule := &PrimaryKeyRule{Sev: model.SeverityError}

	tests := []struct {
		name       string
		ddl        string
		wantIssues int
	}{
		{
			name:       "no primary key",
			ddl:        "CREATE TABLE D_CUSTOMER (ID NUMBER(38,0));",
			wantIssues: 1,
		},
		{
			name:       "table constraint",
			ddl:        "CREATE TABLE D_CUSTOMER (ID NUMBER(38,0), PRIMARY KEY (ID));",
			wantIssues: 0,
		},
		{
			name:       "inline primary key",
			ddl:        "CREATE TABLE D_CUSTOMER (ID NUMBER(38,0) PRIMARY KEY);",
			wantIssues: 0,
		},
		{
			name:       "views are exempt",
			ddl:        "CREATE VIEW VW_CUSTOMER AS SELECT 1;",
			wantIssues: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			findings := rule.Check(parseOne(t, tt.ddl))
			if len(findings) != tt.wantIssues {
				t.Errorf("Check() got %d findings, want %d", len(findings), tt.wantIssues)
			}
		})
	}
}

func TestFKNamingRule_Check(t *testing.T) {
	rule := &FKNamingRule{Sev: model.SeverityWarning}

	t.Run("wrong constraint name", func(t *testing.T) {
		obj := parseOne(t, `CREATE TABLE F_ORDER (
			CUSTOMER_SK NUMBER(38,0),
			CONSTRAINT FK_WRONG FOREIGN KEY (CUSTOMER_SK) REFERENCES D_CUSTOMER (CUSTOMER_SK)
		);`)
		findings := rule.Check(obj)
		if len(findings) != 1 {
			t.Fatalf("expected 1 finding, got %d", len(findings))
		}
		if findings[0].Severity != model.SeverityWarning {
			t.Errorf("severity = %s", findings[0].Severity)
		}
		if !strings.Contains(findings[0].Message, "FK_F_ORDER_D_CUSTOMER") {
			t.Errorf("message should name the expected constraint, got %q", findings[0].Message)
		}
	})

	t.Run("conforming name", func(t *testing.T) {
		obj := parseOne(t, `CREATE TABLE F_ORDER (
			CUSTOMER_SK NUMBER(38,0),
			CONSTRAINT FK_F_ORDER_D_CUSTOMER FOREIGN KEY (CUSTOMER_SK) REFERENCES D_CUSTOMER (CUSTOMER_SK)
		);`)
		if findings := rule.Check(obj); len(findings) != 0 {
			t.Errorf("unexpected findings: %v", findings)
		}
	})

	t.Run("case-insensitive match", func(t *testing.T) {
		obj := parseOne(t, `CREATE TABLE f_order (
			customer_sk NUMBER(38,0),
			CONSTRAINT fk_f_order_d_customer FOREIGN KEY (customer_sk) REFERENCES d_customer (customer_sk)
		);`)
		if findings := rule.Check(obj); len(findings) != 0 {
			t.Errorf("unexpected findings: %v", findings)
		}
	})

	t.Run("unnamed inline reference", func(t *testing.T) {
		obj := parseOne(t, `CREATE TABLE F_ORDER (
			CUSTOMER_SK NUMBER(38,0) REFERENCES D_CUSTOMER (CUSTOMER_SK)
		);`)
		findings := rule.Check(obj)
		if len(findings) != 1 {
			t.Fatalf("expected 1 finding, got %d", len(findings))
		}
		if !strings.Contains(findings[0].Message, "no constraint name") {
			t.Errorf("message = %q", findings[0].Message)
		}
	})
}

func TestDefaults_RegistrationOrder(t *testing.T) {
	std := testStandard(t)
	all := Defaults(std)
	if len(all) != len(IDs()) {
		t.Fatalf("expected %d rules, got %d", len(IDs()), len(all))
	}
	for i, r := range all {
		if r.ID() != IDs()[i] {
			t.Errorf("registration order: rule %d = %s, want %s", i, r.ID(), IDs()[i])
		}
	}
}

func TestDefaults_HonorsOverridesAndDisabled(t *testing.T) {
	content := `
severity_overrides:
  FK_NAMING: ERROR
disabled:
  - COMMENT_MISSING
`
	path := filepath.Join(t.TempDir(), "standard.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	std, err := config.Load(path, IDs())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	all := Defaults(std)
	if len(all) != len(IDs())-1 {
		t.Fatalf("expected %d rules with one disabled, got %d", len(IDs())-1, len(all))
	}

	var fkRule *FKNamingRule
	for _, r := range all {
		if r.ID() == RuleCommentMissing {
			t.Error("disabled rule must not be constructed")
		}
		if fk, ok := r.(*FKNamingRule); ok {
			fkRule = fk
		}
	}
	if fkRule == nil {
		t.Fatal("FK naming rule missing")
	}
	if fkRule.Sev != model.SeverityError {
		t.Errorf("override not applied, severity = %s", fkRule.Sev)
	}

	obj := parseOne(t, `CREATE TABLE F_ORDER (
		CUSTOMER_SK NUMBER(38,0),
		CONSTRAINT FK_WRONG FOREIGN KEY (CUSTOMER_SK) REFERENCES D_CUSTOMER (CUSTOMER_SK)
	);`)
	findings := fkRule.Check(obj)
	if len(findings) != 1 || findings[0].Severity != model.SeverityError {
		t.Errorf("overridden rule should emit ERROR findings, got %+v", findings)
	}
}
