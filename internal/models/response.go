package models

// WriteReport describes what a write transaction did, or where it failed.
type WriteReport struct {
	// TxnID uniquely identifies the transaction attempt.
	TxnID string `json:"txnId"`
	// Step names the transaction step that failed, if any.
	Step     string   `json:"step,omitempty"`
	Message  string   `json:"message"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

// WriteResponse is the result of submitting an intent to the write engine.
type WriteResponse struct {
	Success  bool        `json:"success"`
	RecordID string      `json:"recordId,omitempty"`
	Report   WriteReport `json:"report"`
}

// QueryRequest selects and ranks digest candidates.
type QueryRequest struct {
	ScopeType ScopeType `json:"scopeType,omitempty"`
	ScopeID   string    `json:"scopeId,omitempty"`
	Goal      string    `json:"goal,omitempty"`
	TopK      int       `json:"topK,omitempty"`
}

// QueryCandidate is one ranked digest row.
type QueryCandidate struct {
	RecordID string   `json:"recordId"`
	Title    string   `json:"title"`
	Summary  string   `json:"summary"`
	Tags     []string `json:"tags"`
	Status   Status   `json:"status"`
	Score    int      `json:"score"`
}

// QueryResponse carries the ranked candidates plus the total number of active
// rows that survived scope filtering.
type QueryResponse struct {
	Candidates []QueryCandidate `json:"candidates"`
	Total      int              `json:"total"`
}

// Scope identifies the subject the caller is working on behalf of. The YAML
// tags let it double as the front matter of the user profile document.
type Scope struct {
	ScopeType ScopeType `json:"scopeType" yaml:"scopeType"`
	ScopeID   string    `json:"scopeId" yaml:"scopeId"`
}

// DriftMismatch reports one manifest entry whose on-disk file diverged.
type DriftMismatch struct {
	Path     string `json:"path"`
	Reason   string `json:"reason"` // "missing" or "hash mismatch"
	Expected string `json:"expected,omitempty"`
	Actual   string `json:"actual,omitempty"`
}

// RecordDetail is the full record plus a short document preview.
type RecordDetail struct {
	Record  *Record `json:"record"`
	Preview string  `json:"preview,omitempty"`
}

// Contaminant reports an SSOT-typed record with an unconfirmed source.
type Contaminant struct {
	RecordID   string     `json:"recordId"`
	Type       RecordType `json:"type"`
	SourceType SourceType `json:"sourceType"`
}

// Backref reports an active record referencing a deprecated one.
type Backref struct {
	ActiveID     string `json:"activeId"`
	DeprecatedID string `json:"deprecatedId"`
	Field        string `json:"field"` // "sourceRef" or "summary"
}
