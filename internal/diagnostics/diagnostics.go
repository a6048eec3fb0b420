// Package diagnostics accumulates and prints the compiler's structured
// error Reports in source order, and derives the process exit code.
package diagnostics

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/wybec/wybe/internal/errors"
)

var (
	errorPrefix   = color.New(color.FgRed, color.Bold).SprintFunc()
	warningPrefix = color.New(color.FgYellow, color.Bold).SprintFunc()
	notePrefix    = color.New(color.FgCyan).SprintFunc()
)

// Buffer accumulates Reports in source (emission) order and tracks
// whether any Error-severity message was seen (§7 "User-visible").
type Buffer struct {
	reports   []*errors.Report
	errorSeen bool
}

// NewBuffer returns an empty diagnostic buffer.
func NewBuffer() *Buffer {
	return &Buffer{}
}

// Emit appends a Report. Internal-severity reports are fatal; the
// caller is expected to stop the pipeline after emitting a Report for
// which Fatal returns true.
func (b *Buffer) Emit(r *errors.Report) {
	if r == nil {
		return
	}
	b.reports = append(b.reports, r)
	if r.Severity != errors.SeverityWarning {
		b.errorSeen = true
	}
}

// ErrorSeen reports whether any Error- or Internal-severity Report was
// emitted.
func (b *Buffer) ErrorSeen() bool { return b.errorSeen }

// Reports returns all emitted Reports in emission order.
func (b *Buffer) Reports() []*errors.Report {
	return b.reports
}

// Fatal reports whether r is a fatal internal invariant violation.
func Fatal(r *errors.Report) bool {
	return r != nil && r.Severity == errors.SeverityInternal
}

// Flush writes every buffered Report to w in source order, severity
// colored per §A.1. Exit code per §6: 0 if no Error/Internal severity
// was emitted, nonzero otherwise.
func (b *Buffer) Flush(w io.Writer) int {
	for _, r := range b.reports {
		prefix := errorPrefix("error")
		switch r.Severity {
		case errors.SeverityWarning:
			prefix = warningPrefix("warning")
		case errors.SeverityInternal:
			prefix = errorPrefix("internal error")
		}
		fmt.Fprintf(w, "%s[%s] %s: %s\n", prefix, r.Code, r.Pos, r.Message)
		if r.Fix != "" {
			fmt.Fprintf(w, "  %s %s\n", notePrefix("fix:"), r.Fix)
		}
	}
	if b.errorSeen {
		return 1
	}
	return 0
}
