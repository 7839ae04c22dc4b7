package reporter

import (
	"fmt"
	"io"

	"ddl-lint/internal/model"

	"github.com/fatih/color"
)

type ConsoleReporter struct {
	out io.Writer
}

func NewConsoleReporter(out io.Writer) *ConsoleReporter {
	return &ConsoleReporter{out: out}
}

func (r *ConsoleReporter) Report(rep *model.Report) error {
	if len(rep.Findings) == 0 {
		fmt.Fprintln(r.out, color.GreenString("✔ All DDL conforms to the standard."))
		return nil
	}

	for _, f := range rep.Findings {
		var levelColor *color.Color
		switch f.Severity {
		case model.SeverityError:
			levelColor = color.New(color.FgRed, color.Bold)
		case model.SeverityWarning:
			levelColor = color.New(color.FgYellow, color.Bold)
		default:
			levelColor = color.New(color.FgBlue, color.Bold)
		}

		target := f.ObjectName
		if f.ColumnName != "" {
			target = f.ObjectName + "." + f.ColumnName
		}
		fmt.Fprintf(r.out, "%s: [%s] %s: %s (%s)\n",
			f.Location, levelColor.Sprint(f.Severity), color.CyanString(target), f.Message, f.RuleID)
	}

	fmt.Fprintf(r.out, "\n%d error(s), %d warning(s), %d info\n",
		rep.Counts[model.SeverityError],
		rep.Counts[model.SeverityWarning],
		rep.Counts[model.SeverityInfo])
	if rep.HasErrors() {
		fmt.Fprintf(r.out, "%s standard violations found.\n", color.RedString("✘"))
	}
	return nil
}
