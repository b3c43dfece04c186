package storage

import (
	"os"
	"sort"
	"strings"

	"github.com/agentbrain/brain/internal/errors"
	"github.com/agentbrain/brain/internal/jsonldb"
	"github.com/agentbrain/brain/internal/models"
)

// DefaultTopK is the candidate count returned when the caller does not ask
// for a specific one.
const DefaultTopK = 10

// Scoring weights for goal tokens by where they match.
const (
	scoreTitle   = 3
	scoreSummary = 2
	scoreTag     = 1
)

// Query runs the digest-first pipeline: parse the digest, filter by scope
// and status, score against the goal, and return the top candidates. The
// full records file is never read; the digest is the scan surface.
func (s *Store) Query(req *models.QueryRequest) (*models.QueryResponse, error) {
	data, err := os.ReadFile(s.indexPath(FileDigest))
	if err != nil {
		return nil, errors.IOFault("failed to load digest", err)
	}
	lines, err := ParseDigest(string(data))
	if err != nil {
		return nil, errors.IOFault("digest malformed", err)
	}

	var scopeNeedle, idNeedle string
	if req.ScopeType != "" {
		if !req.ScopeType.Valid() {
			return nil, errors.IntentInvalid("scopeType: must be one of project, agent, user, topic")
		}
		scopeNeedle = "_" + req.ScopeType.Abbrev() + "_"
	}
	if req.ScopeID != "" {
		idNeedle = "_" + req.ScopeID + "_"
	}

	tokens := goalTokens(req.Goal)

	var candidates []models.QueryCandidate
	for _, line := range lines {
		if scopeNeedle != "" && !strings.Contains(line.RecordID, scopeNeedle) {
			continue
		}
		if idNeedle != "" && !strings.Contains(line.RecordID, idNeedle) {
			continue
		}
		if line.Status != models.StatusActive {
			continue
		}
		candidates = append(candidates, models.QueryCandidate{
			RecordID: line.RecordID,
			Title:    line.Title,
			Summary:  line.Summary,
			Tags:     line.Tags,
			Status:   line.Status,
			Score:    scoreLine(line, tokens),
		})
	}
	total := len(candidates)

	// Stable keeps the digest's insertion order for equal scores.
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})

	topK := req.TopK
	if topK <= 0 {
		topK = DefaultTopK
	}
	if len(candidates) > topK {
		candidates = candidates[:topK]
	}
	return &models.QueryResponse{Candidates: candidates, Total: total}, nil
}

// Get returns the full record by ID, with a short preview of its document
// when one is on disk, or nil when the ID is unknown.
func (s *Store) Get(recordID string) (*models.RecordDetail, error) {
	records, err := jsonldb.ReadFile[models.Record](s.indexPath(FileRecords))
	if err != nil {
		return nil, errors.IOFault("failed to load records", err)
	}
	for i := range records {
		if records[i].RecordID != recordID {
			continue
		}
		detail := &models.RecordDetail{Record: &records[i]}
		if records[i].SourceRef != "" {
			if data, err := os.ReadFile(s.docPath(records[i].SourceRef)); err == nil {
				detail.Preview = PreviewFromMarkdown(string(data))
			}
		}
		return detail, nil
	}
	return nil, nil
}

// goalTokens lowercases and splits the goal on whitespace, dropping tokens of
// one character or less.
func goalTokens(goal string) []string {
	var tokens []string
	for _, tok := range strings.Fields(strings.ToLower(goal)) {
		if len([]rune(tok)) > 1 {
			tokens = append(tokens, tok)
		}
	}
	return tokens
}

// scoreLine weighs goal tokens by where they appear: title 3, summary 2,
// tags 1. With no goal every line scores zero and insertion order wins.
func scoreLine(line DigestLine, tokens []string) int {
	if len(tokens) == 0 {
		return 0
	}
	title := strings.ToLower(line.Title)
	summary := strings.ToLower(line.Summary)
	tags := strings.ToLower(strings.Join(line.Tags, ","))
	score := 0
	for _, tok := range tokens {
		if strings.Contains(title, tok) {
			score += scoreTitle
		}
		if strings.Contains(summary, tok) {
			score += scoreSummary
		}
		if strings.Contains(tags, tok) {
			score += scoreTag
		}
	}
	return score
}
