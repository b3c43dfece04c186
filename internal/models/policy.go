package models

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultMaxRecordsWarn is the record count past which the validator emits a
// growth warning.
const DefaultMaxRecordsWarn = 100

// Policy is the store's governing document, persisted as
// 99_policy/brainPolicy.md with YAML front matter followed by a prose body.
// Boot cannot proceed without it.
type Policy struct {
	Version        int      `yaml:"version"`
	MaxRecordsWarn int      `yaml:"maxRecordsWarn"`
	SSOTTypes      []string `yaml:"ssotTypes"`
	Axes           []string `yaml:"axes"`

	// Body is the prose part of the document, after the front matter.
	Body string `yaml:"-"`
}

// DefaultPolicy returns the policy the initializer writes for a fresh store.
func DefaultPolicy() *Policy {
	return &Policy{
		Version:        1,
		MaxRecordsWarn: DefaultMaxRecordsWarn,
		SSOTTypes:      []string{string(TypeRule), string(TypeDecision)},
		Axes:           DefaultAxes,
		Body: strings.Join([]string{
			"# Brain policy",
			"",
			"Records of type rule or decision are single sources of truth and",
			"must come from a user-confirmed source. Deprecate instead of",
			"editing history; delete only deprecated records from a previous",
			"session, with an explicit confirmation.",
			"",
		}, "\n"),
	}
}

// ParsePolicy parses a policy document: YAML front matter delimited by ---
// lines, then the prose body.
func ParsePolicy(data []byte) (*Policy, error) {
	content := string(data)
	if !strings.HasPrefix(content, "---\n") {
		return nil, fmt.Errorf("policy document has no front matter")
	}
	parts := strings.SplitN(content, "\n---\n", 2)
	if len(parts) != 2 {
		return nil, fmt.Errorf("policy front matter is not terminated")
	}
	p := &Policy{}
	if err := yaml.Unmarshal([]byte(parts[0][4:]), p); err != nil {
		return nil, fmt.Errorf("failed to parse policy front matter: %w", err)
	}
	if p.MaxRecordsWarn <= 0 {
		p.MaxRecordsWarn = DefaultMaxRecordsWarn
	}
	if len(p.Axes) == 0 {
		p.Axes = DefaultAxes
	}
	p.Body = strings.TrimPrefix(parts[1], "\n")
	return p, nil
}

// Format renders the policy back into its on-disk document form.
func (p *Policy) Format() ([]byte, error) {
	front, err := yaml.Marshal(struct {
		Version        int      `yaml:"version"`
		MaxRecordsWarn int      `yaml:"maxRecordsWarn"`
		SSOTTypes      []string `yaml:"ssotTypes"`
		Axes           []string `yaml:"axes"`
	}{p.Version, p.MaxRecordsWarn, p.SSOTTypes, p.Axes})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal policy front matter: %w", err)
	}
	var b strings.Builder
	b.WriteString("---\n")
	b.Write(front)
	b.WriteString("---\n\n")
	b.WriteString(p.Body)
	return []byte(b.String()), nil
}
