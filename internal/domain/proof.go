package domain

import (
	"encoding/json"
	"strings"
)

// EncodeProofPaths encodes an ordered list of proof references for the
// transfer's proof_path column. An empty list encodes to nil (column cleared).
func EncodeProofPaths(paths []string) *string {
	if len(paths) == 0 {
		return nil
	}
	b, err := json.Marshal(paths)
	if err != nil {
		return nil
	}
	s := string(b)
	return &s
}

// DecodeProofPaths accepts both persisted encodings: a bare path is one
// reference, a JSON array is an ordered list. Malformed arrays decode to nil.
func DecodeProofPaths(raw *string) []string {
	if raw == nil {
		return nil
	}
	s := strings.TrimSpace(*raw)
	if s == "" {
		return nil
	}
	if !strings.HasPrefix(s, "[") {
		return []string{s}
	}
	var paths []string
	if err := json.Unmarshal([]byte(s), &paths); err != nil {
		return nil
	}
	if len(paths) == 0 {
		return nil
	}
	return paths
}
