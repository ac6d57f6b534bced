package model

// Severity indicates the importance of a validation issue
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Check classifies which integrity check produced an issue
type Check string

const (
	CheckDataLoss           Check = "data_loss"
	CheckMissingParticipant Check = "missing_participant"
	CheckNameMismatch       Check = "name_mismatch"
	CheckDuplicateScore     Check = "duplicate_score"
	CheckStructural         Check = "structural"
	CheckLoad               Check = "load"
)

// Issue is one validation finding with transparent supporting data
type Issue struct {
	Check    Check                  `json:"check"`
	Severity Severity               `json:"severity"`
	Message  string                 `json:"message"`
	Data     map[string]interface{} `json:"data,omitempty"`
}

// ReportStats summarizes the identity accounting for one run
type ReportStats struct {
	SourceIdentityCount       int     `json:"source_identity_count"`
	ConsolidatedIdentityCount int     `json:"consolidated_identity_count"`
	DataLossPercent           float64 `json:"data_loss_percent"`
}

// ValidationReport collects every finding from the integrity checks.
// Only error-severity issues abort a run; warnings and info entries are
// advisory and never cause data to be dropped.
type ValidationReport struct {
	Errors   []Issue     `json:"errors"`
	Warnings []Issue     `json:"warnings"`
	Info     []Issue     `json:"info"`
	Stats    ReportStats `json:"stats"`
}

// NewValidationReport creates an empty report
func NewValidationReport() *ValidationReport {
	return &ValidationReport{
		Errors:   []Issue{},
		Warnings: []Issue{},
		Info:     []Issue{},
	}
}

// AddError appends a fatal finding
func (r *ValidationReport) AddError(check Check, message string, data map[string]interface{}) {
	r.Errors = append(r.Errors, Issue{Check: check, Severity: SeverityError, Message: message, Data: data})
}

// AddWarning appends an advisory finding
func (r *ValidationReport) AddWarning(check Check, message string, data map[string]interface{}) {
	r.Warnings = append(r.Warnings, Issue{Check: check, Severity: SeverityWarning, Message: message, Data: data})
}

// AddInfo appends an informational finding
func (r *ValidationReport) AddInfo(check Check, message string, data map[string]interface{}) {
	r.Info = append(r.Info, Issue{Check: check, Severity: SeverityInfo, Message: message, Data: data})
}

// HasErrors reports whether any fatal finding was recorded
func (r *ValidationReport) HasErrors() bool {
	return len(r.Errors) > 0
}

// IssueCount returns the total number of findings of all severities
func (r *ValidationReport) IssueCount() int {
	return len(r.Errors) + len(r.Warnings) + len(r.Info)
}
