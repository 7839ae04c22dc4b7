package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"ddl-lint/internal/model"
)

func TestEmit_RejectsUnknownFormat(t *testing.T) {
	origFmt, origOut := reportFmt, outputFile
	defer func() { reportFmt, outputFile = origFmt, origOut }()

	reportFmt = "xml"
	outputFile = ""
	if err := emit(model.NewReport(nil)); err == nil {
		t.Error("emit() should fail for an unknown format")
	}
}

func TestEmit_WritesJSONToFile(t *testing.T) {
	origFmt, origOut := reportFmt, outputFile
	defer func() { reportFmt, outputFile = origFmt, origOut }()

	reportFmt = "json"
	outputFile = filepath.Join(t.TempDir(), "report.json")

	report := model.NewReport([]model.Finding{{
		RuleID:     "PRIMARY_KEY",
		Severity:   model.SeverityError,
		ObjectName: "D_CUSTOMER",
		Message:    "no primary key defined",
	}})
	if err := emit(report); err != nil {
		t.Fatalf("emit() error = %v", err)
	}

	content, err := os.ReadFile(outputFile)
	if err != nil {
		t.Fatalf("report file not written: %v", err)
	}
	if !strings.Contains(string(content), `"ruleId": "PRIMARY_KEY"`) {
		t.Errorf("report content = %s", content)
	}
}
