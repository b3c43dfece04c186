package storage

import (
	"fmt"
	"strings"

	"github.com/agentbrain/brain/internal/models"
)

// digestHeader is the fixed three-line header of the digest artifact.
const digestHeader = "# brain records digest\n" +
	"# recordId | title | summary | tags | status\n" +
	"# derived from records.jsonl on every commit; do not edit by hand\n"

// DigestLine is one parsed digest row.
type DigestLine struct {
	RecordID string
	Title    string
	Summary  string
	Tags     []string
	Status   models.Status
}

// digestField flattens free text into a single digest column: newlines become
// spaces and the column separator is degraded so the row stays parseable.
func digestField(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "|", "/")
	return strings.TrimSpace(s)
}

// ProjectDigest renders the records sequence into the digest artifact. The
// projection is deterministic: same records, same order, same bytes.
func ProjectDigest(records []models.Record) string {
	var b strings.Builder
	b.WriteString(digestHeader)
	for _, r := range records {
		fmt.Fprintf(&b, "%s | %s | %s | %s | %s\n",
			r.RecordID,
			digestField(r.Title),
			digestField(r.Summary),
			digestField(strings.Join(r.Tags, ",")),
			r.Status)
	}
	return b.String()
}

// ParseDigest parses digest data, skipping blank lines and header lines
// starting with '#'. A data line with fewer than five columns fails with its
// 1-based line number.
func ParseDigest(data string) ([]DigestLine, error) {
	var lines []DigestLine
	for i, raw := range strings.Split(data, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Split(line, " | ")
		if len(fields) != 5 {
			return nil, fmt.Errorf("digest line %d: expected 5 fields, got %d", i+1, len(fields))
		}
		var tags []string
		if fields[3] != "" {
			tags = strings.Split(fields[3], ",")
		}
		lines = append(lines, DigestLine{
			RecordID: fields[0],
			Title:    fields[1],
			Summary:  fields[2],
			Tags:     tags,
			Status:   models.Status(fields[4]),
		})
	}
	return lines, nil
}
