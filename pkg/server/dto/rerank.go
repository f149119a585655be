package dto

import (
	"errors"
	"fmt"
)

// RerankRequest is the body of POST /rerank. Candidate order is significant:
// response scores correspond positionally.
type RerankRequest struct {
	Query      string   `json:"query"`
	Candidates []string `json:"candidates"`
}

// RerankResponse is the body of a successful POST /rerank: one score per
// candidate, same order.
type RerankResponse struct {
	Scores []float64 `json:"scores"`
}

// RerankLimits bounds per-request cost. Zero disables a check.
type RerankLimits struct {
	MaxCandidates   int
	MaxCandidateLen int
	MaxQueryLen     int
}

// ErrCandidatesRequired is returned when the candidates field is absent.
// An explicit empty array is valid and yields an empty score list.
var ErrCandidatesRequired = errors.New("candidates field is required")

// Validate checks the request shape against the configured limits.
func (r *RerankRequest) Validate(limits RerankLimits) error {
	if r.Candidates == nil {
		return ErrCandidatesRequired
	}
	if limits.MaxQueryLen > 0 && len(r.Query) > limits.MaxQueryLen {
		return fmt.Errorf("query exceeds %d bytes", limits.MaxQueryLen)
	}
	if limits.MaxCandidates > 0 && len(r.Candidates) > limits.MaxCandidates {
		return fmt.Errorf("too many candidates: %d exceeds limit of %d", len(r.Candidates), limits.MaxCandidates)
	}
	if limits.MaxCandidateLen > 0 {
		for i, c := range r.Candidates {
			if len(c) > limits.MaxCandidateLen {
				return fmt.Errorf("candidate %d exceeds %d bytes", i, limits.MaxCandidateLen)
			}
		}
	}
	return nil
}
