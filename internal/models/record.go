// Package models defines the core data structures used throughout the store.
package models

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// TimestampFormat is the ISO-8601 UTC millisecond format used for all
// persisted timestamps.
const TimestampFormat = "2006-01-02T15:04:05.000Z"

// FormatTimestamp renders t in the persisted timestamp format.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampFormat)
}

// ParseTimestamp parses a persisted timestamp back into a time.Time.
func ParseTimestamp(s string) (time.Time, error) {
	return time.Parse(TimestampFormat, s)
}

// ScopeType selects the category folder a record belongs to.
type ScopeType string

const (
	ScopeProject ScopeType = "project"
	ScopeAgent   ScopeType = "agent"
	ScopeUser    ScopeType = "user"
	ScopeTopic   ScopeType = "topic"
)

// scopeAbbrevs maps scope types to the fixed abbreviation encoded in record
// IDs. The abbreviation enables substring-based scope filtering in the digest
// and must not change.
var scopeAbbrevs = map[ScopeType]string{
	ScopeProject: "proj",
	ScopeAgent:   "agent",
	ScopeUser:    "user",
	ScopeTopic:   "topic",
}

// Abbrev returns the fixed record-ID abbreviation for the scope type, or ""
// for an unknown scope.
func (s ScopeType) Abbrev() string {
	return scopeAbbrevs[s]
}

// Valid reports whether the scope type is one of the known variants.
func (s ScopeType) Valid() bool {
	_, ok := scopeAbbrevs[s]
	return ok
}

// RecordType classifies what a record captures.
type RecordType string

const (
	TypeRule         RecordType = "rule"
	TypeDecision     RecordType = "decision"
	TypeProfile      RecordType = "profile"
	TypeLog          RecordType = "log"
	TypeRef          RecordType = "ref"
	TypeNote         RecordType = "note"
	TypeCandidate    RecordType = "candidate"
	TypeReminder     RecordType = "reminder"
	TypeProjectState RecordType = "project_state"
)

var recordTypes = map[RecordType]bool{
	TypeRule: true, TypeDecision: true, TypeProfile: true, TypeLog: true,
	TypeRef: true, TypeNote: true, TypeCandidate: true, TypeReminder: true,
	TypeProjectState: true,
}

// Valid reports whether the record type is one of the known variants.
func (t RecordType) Valid() bool {
	return recordTypes[t]
}

// IsSSOT reports whether the record type is a single-source-of-truth type,
// which requires a user-confirmed source.
func (t RecordType) IsSSOT() bool {
	return t == TypeRule || t == TypeDecision
}

// SourceType records where a memory came from. It gates promotion to SSOT
// types.
type SourceType string

const (
	SourceUserConfirmed SourceType = "user_confirmed"
	SourceCandidate     SourceType = "candidate"
	SourceChatLog       SourceType = "chat_log"
	SourceExternalDoc   SourceType = "external_doc"
	SourceInference     SourceType = "inference"
)

var sourceTypes = map[SourceType]bool{
	SourceUserConfirmed: true, SourceCandidate: true, SourceChatLog: true,
	SourceExternalDoc: true, SourceInference: true,
}

// Valid reports whether the source type is one of the known variants.
func (s SourceType) Valid() bool {
	return sourceTypes[s]
}

// Status is the lifecycle state of a record.
type Status string

const (
	StatusActive     Status = "active"
	StatusDeprecated Status = "deprecated"
	StatusArchived   Status = "archived"
)

// Valid reports whether the status is one of the known variants.
func (s Status) Valid() bool {
	return s == StatusActive || s == StatusDeprecated || s == StatusArchived
}

// ReplacedObsolete is the sentinel replacedBy value for a deprecation with no
// successor record. It requires a non-empty deprecationReason.
const ReplacedObsolete = "obsolete"

// slugRe matches scope IDs: lowercase alphanumerics plus underscore and dash.
var slugRe = regexp.MustCompile(`^[a-z0-9_-]+$`)

// ValidSlug reports whether s is a valid scope ID slug.
func ValidSlug(s string) bool {
	return slugRe.MatchString(s)
}

// hashRe matches a content hash: "sha256:" plus 64 lowercase hex characters.
var hashRe = regexp.MustCompile(`^sha256:[0-9a-f]{64}$`)

// ValidHash reports whether s is a well-formed content hash.
func ValidHash(s string) bool {
	return hashRe.MatchString(s)
}

// Record is the unit the index tracks. All fourteen fields are mandatory;
// nullable fields carry an explicit null.
type Record struct {
	RecordID          string     `json:"recordId"`
	ScopeType         ScopeType  `json:"scopeType"`
	ScopeID           string     `json:"scopeId"`
	Type              RecordType `json:"type"`
	Title             string     `json:"title"`
	Summary           string     `json:"summary"`
	Tags              []string   `json:"tags"`
	SourceType        SourceType `json:"sourceType"`
	SourceRef         string     `json:"sourceRef"`
	Status            Status     `json:"status"`
	ReplacedBy        *string    `json:"replacedBy"`
	DeprecationReason *string    `json:"deprecationReason"`
	UpdatedAt         string     `json:"updatedAt"`
	ContentHash       string     `json:"contentHash"`
}

// Clone returns a deep copy of the record.
func (r *Record) Clone() *Record {
	c := *r
	if r.Tags != nil {
		c.Tags = append([]string(nil), r.Tags...)
	}
	if r.ReplacedBy != nil {
		v := *r.ReplacedBy
		c.ReplacedBy = &v
	}
	if r.DeprecationReason != nil {
		v := *r.DeprecationReason
		c.DeprecationReason = &v
	}
	return &c
}

// ValidTag reports whether tag is an axis/value pair on a permitted axis.
func ValidTag(tag string, axes []string) bool {
	axis, value, ok := strings.Cut(tag, "/")
	if !ok || value == "" {
		return false
	}
	for _, a := range axes {
		if axis == a {
			return true
		}
	}
	return false
}

// DefaultAxes are the two tag axes the store permits.
var DefaultAxes = []string{"domain", "intent"}

// Problems returns the list of per-field rule violations for the record.
// An empty list means the record is structurally valid.
func (r *Record) Problems() []string {
	var problems []string
	if r.RecordID == "" {
		problems = append(problems, "recordId: must not be empty")
	}
	if !r.ScopeType.Valid() {
		problems = append(problems, fmt.Sprintf("scopeType: unknown value %q", r.ScopeType))
	}
	if !ValidSlug(r.ScopeID) {
		problems = append(problems, fmt.Sprintf("scopeId: %q is not a slug (lowercase alphanumerics, _ and -)", r.ScopeID))
	}
	if !r.Type.Valid() {
		problems = append(problems, fmt.Sprintf("type: unknown value %q", r.Type))
	}
	if r.Title == "" {
		problems = append(problems, "title: must not be empty")
	}
	if !r.SourceType.Valid() {
		problems = append(problems, fmt.Sprintf("sourceType: unknown value %q", r.SourceType))
	}
	if !r.Status.Valid() {
		problems = append(problems, fmt.Sprintf("status: unknown value %q", r.Status))
	}
	for _, tag := range r.Tags {
		if !ValidTag(tag, DefaultAxes) {
			problems = append(problems, fmt.Sprintf("tags: %q is not axis/value on a permitted axis", tag))
		}
	}
	if r.Status == StatusDeprecated {
		if r.ReplacedBy == nil {
			problems = append(problems, "replacedBy: required when status is deprecated")
		} else if *r.ReplacedBy == ReplacedObsolete && (r.DeprecationReason == nil || *r.DeprecationReason == "") {
			problems = append(problems, "deprecationReason: required when replacedBy is \"obsolete\"")
		}
	}
	if _, err := ParseTimestamp(r.UpdatedAt); err != nil {
		problems = append(problems, fmt.Sprintf("updatedAt: %q is not an ISO-8601 UTC millisecond timestamp", r.UpdatedAt))
	}
	if !ValidHash(r.ContentHash) {
		problems = append(problems, fmt.Sprintf("contentHash: %q is not sha256:<64 hex>", r.ContentHash))
	}
	return problems
}
