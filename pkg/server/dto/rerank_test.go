package dto

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateMissingCandidates(t *testing.T) {
	var req RerankRequest
	require.NoError(t, json.Unmarshal([]byte(`{"query":"cats"}`), &req))

	err := req.Validate(RerankLimits{})
	assert.ErrorIs(t, err, ErrCandidatesRequired)
}

func TestValidateEmptyCandidatesIsValid(t *testing.T) {
	var req RerankRequest
	require.NoError(t, json.Unmarshal([]byte(`{"query":"cats","candidates":[]}`), &req))

	assert.NoError(t, req.Validate(RerankLimits{}))
	assert.NotNil(t, req.Candidates)
	assert.Empty(t, req.Candidates)
}

func TestValidateTooManyCandidates(t *testing.T) {
	req := RerankRequest{Query: "q", Candidates: []string{"a", "b", "c"}}

	err := req.Validate(RerankLimits{MaxCandidates: 2})
	assert.ErrorContains(t, err, "too many candidates")
}

func TestValidateCandidateTooLong(t *testing.T) {
	req := RerankRequest{Query: "q", Candidates: []string{"ok", strings.Repeat("x", 100)}}

	err := req.Validate(RerankLimits{MaxCandidateLen: 50})
	assert.ErrorContains(t, err, "candidate 1 exceeds 50 bytes")
}

func TestValidateQueryTooLong(t *testing.T) {
	req := RerankRequest{Query: strings.Repeat("q", 20), Candidates: []string{}}

	err := req.Validate(RerankLimits{MaxQueryLen: 10})
	assert.ErrorContains(t, err, "query exceeds 10 bytes")
}

func TestValidateZeroLimitsDisableChecks(t *testing.T) {
	req := RerankRequest{
		Query:      strings.Repeat("q", 10000),
		Candidates: []string{strings.Repeat("c", 100000)},
	}

	assert.NoError(t, req.Validate(RerankLimits{}))
}

func TestRerankResponseMarshalsEmptyScores(t *testing.T) {
	out, err := json.Marshal(RerankResponse{Scores: []float64{}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"scores":[]}`, string(out))
}
