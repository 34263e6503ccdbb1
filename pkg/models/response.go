package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// AnalysisResponse is the server's answer to an analysis request.
// Exactly one of Error or Comparisons is meaningful: a non-empty Error wins.
type AnalysisResponse struct {
	Error       string             `json:"error,omitempty"`
	Comparisons []ComparisonResult `json:"comparisons,omitempty"`
}

// ComparisonResult is one pairwise similarity outcome
type ComparisonResult struct {
	// Files holds the two compared filenames, in server order
	Files [2]string `json:"files"`

	Metrics Metrics `json:"metrics"`
}

// Metrics holds the server-computed figures for one comparison
type Metrics struct {
	// Overall is the similarity percentage, 0-100
	Overall float64 `json:"Overall"`

	// Verdict is the server's label, empty when absent
	Verdict string `json:"Verdict"`
}

// IsError reports whether the server reported a failure
func (r *AnalysisResponse) IsError() bool {
	return r != nil && r.Error != ""
}

// OverallText formats Overall the way the report displays it: 92 stays "92",
// 87.5 stays "87.5".
func (m Metrics) OverallText() string {
	return strconv.FormatFloat(m.Overall, 'f', -1, 64)
}

// Color returns the classification color of the verdict
func (m Metrics) Color() Color {
	return ClassifyVerdict(m.Verdict)
}

type wireResponse struct {
	Error       json.RawMessage   `json:"error"`
	Comparisons *[]wireComparison `json:"comparisons"`
}

type wireComparison struct {
	Files   []string    `json:"files"`
	Metrics wireMetrics `json:"metrics"`
}

type wireMetrics struct {
	Overall *float64 `json:"Overall"`
	Verdict *string  `json:"Verdict"`
}

// DecodeResponse parses a server response body.
// The error field is honoured when it is truthy (non-empty string, non-zero
// number, true, object or array); any comparisons next to it are dropped.
func DecodeResponse(data []byte) (*AnalysisResponse, error) {
	var wire wireResponse
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	if msg, ok := truthyMessage(wire.Error); ok {
		return &AnalysisResponse{Error: msg}, nil
	}

	if wire.Comparisons == nil {
		return nil, fmt.Errorf("%w: neither error nor comparisons present", ErrMalformedResponse)
	}

	resp := &AnalysisResponse{
		Comparisons: make([]ComparisonResult, 0, len(*wire.Comparisons)),
	}
	for i, wc := range *wire.Comparisons {
		if len(wc.Files) != 2 {
			return nil, fmt.Errorf("%w: comparison %d has %d files, want 2", ErrMalformedResponse, i, len(wc.Files))
		}
		if wc.Metrics.Overall == nil {
			return nil, fmt.Errorf("%w: comparison %d has no Overall score", ErrMalformedResponse, i)
		}

		cmp := ComparisonResult{
			Files:   [2]string{wc.Files[0], wc.Files[1]},
			Metrics: Metrics{Overall: *wc.Metrics.Overall},
		}
		if wc.Metrics.Verdict != nil {
			cmp.Metrics.Verdict = *wc.Metrics.Verdict
		}
		resp.Comparisons = append(resp.Comparisons, cmp)
	}

	return resp, nil
}

// truthyMessage extracts a displayable message from a raw error value
func truthyMessage(raw json.RawMessage) (string, bool) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return "", false
	}

	switch string(trimmed) {
	case "null", "false", `""`:
		return "", false
	}

	var s string
	if err := json.Unmarshal(trimmed, &s); err == nil {
		return s, s != ""
	}

	var n float64
	if err := json.Unmarshal(trimmed, &n); err == nil {
		return string(trimmed), n != 0
	}

	return string(trimmed), true
}
