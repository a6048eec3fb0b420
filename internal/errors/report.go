package errors

import (
	"encoding/json"
	"errors"

	"github.com/wybec/wybe/internal/ident"
)

// Report is the canonical structured diagnostic type. Every error
// builder in the compiler returns a *Report, which is wrapped as a
// ReportError to travel through ordinary Go error-handling paths.
type Report struct {
	Schema   string         `json:"schema"` // always "wybe.error/v1"
	Code     string         `json:"code"`
	Phase    string         `json:"phase"`
	Message  string         `json:"message"`
	Pos      ident.OptPos   `json:"-"`
	Data     map[string]any `json:"data,omitempty"`
	Fix      string         `json:"fix,omitempty"`
	Severity Severity       `json:"-"`
}

// New builds a Report for code, looking up its phase/severity from the
// Registry.
func New(code, message string, pos ident.OptPos) *Report {
	info, _ := Info(code)
	return &Report{
		Schema:   "wybe.error/v1",
		Code:     code,
		Phase:    info.Phase,
		Message:  message,
		Pos:      pos,
		Severity: info.Severity,
		Data:     map[string]any{},
	}
}

// WithData attaches a structured data field and returns the Report for
// chaining.
func (r *Report) WithData(key string, value any) *Report {
	r.Data[key] = value
	return r
}

// WithFix attaches a suggested fix and returns the Report for chaining.
func (r *Report) WithFix(fix string) *Report {
	r.Fix = fix
	return r
}

// ReportError wraps a Report as an error so it survives errors.As
// unwrapping through ordinary Go error chains.
type ReportError struct {
	Rep *Report
}

func (e *ReportError) Error() string {
	if e.Rep == nil {
		return "unknown error"
	}
	return e.Rep.Code + ": " + e.Rep.Message
}

// AsReport extracts a Report from an error chain, if present.
func AsReport(err error) (*Report, bool) {
	var re *ReportError
	if errors.As(err, &re) {
		return re.Rep, true
	}
	return nil, false
}

// Wrap wraps a Report as an error.
func Wrap(r *Report) error {
	if r == nil {
		return nil
	}
	return &ReportError{Rep: r}
}

// ToJSON serializes the Report deterministically.
func (r *Report) ToJSON(compact bool) (string, error) {
	var data []byte
	var err error
	if compact {
		data, err = json.Marshal(r)
	} else {
		data, err = json.MarshalIndent(r, "", "  ")
	}
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Internal builds an ICE-severity Report, used for invariant
// violations the pipeline cannot recover from (§7).
func Internal(code, message string, pos ident.OptPos) *Report {
	r := New(code, message, pos)
	r.Severity = SeverityInternal
	return r
}
