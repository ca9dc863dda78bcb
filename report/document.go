package report

// Source records which path produced the report body.
type Source string

const (
	SourceGenerative Source = "generated"
	SourceRules      Source = "rules_based"
)

// Document is the envelope returned to API clients. GeneratedAt is
// RFC3339 UTC. Report is guaranteed to satisfy the formatter contract
// regardless of Source.
type Document struct {
	AppName            string   `json:"app_name"`
	ReportID           string   `json:"report_id"`
	PatientID          string   `json:"patient_id"`
	PatientName        string   `json:"patient_name"`
	GeneratedAt        string   `json:"generated_at"`
	Report             string   `json:"report"`
	Source             Source   `json:"source"`
	UnknownMedications []string `json:"unknown_medications,omitempty"`
}
