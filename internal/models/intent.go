package models

// Action names a write-engine mutation.
type Action string

const (
	ActionCreate    Action = "create"
	ActionUpdate    Action = "update"
	ActionDeprecate Action = "deprecate"
	ActionDelete    Action = "delete"
)

// Valid reports whether the action is one of the known variants.
func (a Action) Valid() bool {
	return a == ActionCreate || a == ActionUpdate || a == ActionDeprecate || a == ActionDelete
}

// Draft carries the caller-supplied record fields for a create intent. The
// engine mints the record ID and fills status, updatedAt, and contentHash.
type Draft struct {
	ScopeType  ScopeType  `json:"scopeType"`
	ScopeID    string     `json:"scopeId"`
	Type       RecordType `json:"type"`
	Title      string     `json:"title"`
	Summary    string     `json:"summary"`
	Tags       []string   `json:"tags"`
	SourceType SourceType `json:"sourceType"`
}

// Patch carries optional record fields for an update intent. Nil pointers
// leave the field untouched.
type Patch struct {
	Title      *string     `json:"title,omitempty"`
	Summary    *string     `json:"summary,omitempty"`
	Tags       *[]string   `json:"tags,omitempty"`
	Type       *RecordType `json:"type,omitempty"`
	SourceType *SourceType `json:"sourceType,omitempty"`
}

// Empty reports whether the patch changes nothing.
func (p *Patch) Empty() bool {
	if p == nil {
		return true
	}
	return p.Title == nil && p.Summary == nil && p.Tags == nil && p.Type == nil && p.SourceType == nil
}

// Intent is the caller-supplied request object for a single write
// transaction.
type Intent struct {
	Action Action `json:"action"`

	// create
	SourceRef string `json:"sourceRef,omitempty"`
	Record    *Draft `json:"record,omitempty"`

	// create, update
	Content *string `json:"content,omitempty"`

	// update, deprecate, delete
	RecordID string `json:"recordId,omitempty"`

	// update
	Patch *Patch `json:"patch,omitempty"`

	// deprecate
	ReplacedBy        string `json:"replacedBy,omitempty"`
	DeprecationReason string `json:"deprecationReason,omitempty"`

	// AllowNewFolder lets a create place its document under a top-level path
	// whose folder does not exist yet. Paths under 30_topics/ never need it.
	AllowNewFolder bool `json:"allowNewFolder,omitempty"`
}

// Problems returns the list of structural violations for the intent, per
// action. An empty list means the intent is well-formed.
func (in *Intent) Problems() []string {
	var problems []string
	if !in.Action.Valid() {
		return append(problems, "action: must be one of create, update, deprecate, delete")
	}
	switch in.Action {
	case ActionCreate:
		if in.SourceRef == "" {
			problems = append(problems, "sourceRef: required for create")
		}
		if in.Content == nil {
			problems = append(problems, "content: required for create")
		}
		if in.Record == nil {
			problems = append(problems, "record: required for create")
		} else {
			d := in.Record
			if !d.ScopeType.Valid() {
				problems = append(problems, "record.scopeType: must be one of project, agent, user, topic")
			}
			if !ValidSlug(d.ScopeID) {
				problems = append(problems, "record.scopeId: must be a slug (lowercase alphanumerics, _ and -)")
			}
			if !d.Type.Valid() {
				problems = append(problems, "record.type: unknown record type")
			}
			if !d.SourceType.Valid() {
				problems = append(problems, "record.sourceType: unknown source type")
			}
			for _, tag := range d.Tags {
				if !ValidTag(tag, DefaultAxes) {
					problems = append(problems, "record.tags: "+tag+" is not axis/value on a permitted axis")
				}
			}
		}
	case ActionUpdate:
		if in.RecordID == "" {
			problems = append(problems, "recordId: required for update")
		}
		if in.Content == nil && in.Patch.Empty() {
			problems = append(problems, "update: needs content or at least one patch field")
		}
		if in.Patch != nil {
			if in.Patch.Type != nil && !in.Patch.Type.Valid() {
				problems = append(problems, "patch.type: unknown record type")
			}
			if in.Patch.SourceType != nil && !in.Patch.SourceType.Valid() {
				problems = append(problems, "patch.sourceType: unknown source type")
			}
			if in.Patch.Tags != nil {
				for _, tag := range *in.Patch.Tags {
					if !ValidTag(tag, DefaultAxes) {
						problems = append(problems, "patch.tags: "+tag+" is not axis/value on a permitted axis")
					}
				}
			}
		}
	case ActionDeprecate:
		if in.RecordID == "" {
			problems = append(problems, "recordId: required for deprecate")
		}
		if in.ReplacedBy == "" {
			problems = append(problems, "replacedBy: required for deprecate")
		}
		if in.ReplacedBy == ReplacedObsolete && in.DeprecationReason == "" {
			problems = append(problems, "deprecationReason: required when replacedBy is \"obsolete\"")
		}
	case ActionDelete:
		if in.RecordID == "" {
			problems = append(problems, "recordId: required for delete")
		}
	}
	return problems
}
