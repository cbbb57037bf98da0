package ai

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"regexp"
	"strings"
)

var fencedBlock = regexp.MustCompile("(?i)```(?:json)?\\s*([\\s\\S]*?)```")

// ExtractJSON pulls the first parseable JSON value out of free-form model text.
// Candidates are tried in order: the whole text, the first fenced block, the
// outermost object span and the outermost array span.
func ExtractJSON(raw string) (any, bool) {
	for _, candidate := range jsonCandidates(raw) {
		if value, err := decodeStrict(candidate); err == nil {
			return value, true
		}
	}
	return nil, false
}

func jsonCandidates(raw string) []string {
	candidates := []string{strings.TrimSpace(raw)}

	if m := fencedBlock.FindStringSubmatch(raw); m != nil {
		candidates = append(candidates, strings.TrimSpace(m[1]))
	}

	if span, ok := between(raw, "{", "}"); ok {
		candidates = append(candidates, span)
	}
	if span, ok := between(raw, "[", "]"); ok {
		candidates = append(candidates, span)
	}

	return candidates
}

func between(raw, open, closing string) (string, bool) {
	start := strings.Index(raw, open)
	end := strings.LastIndex(raw, closing)
	if start < 0 || end <= start {
		return "", false
	}
	return raw[start : end+1], true
}

func decodeStrict(candidate string) (any, error) {
	if candidate == "" {
		return nil, errors.New("empty candidate")
	}

	dec := json.NewDecoder(bytes.NewReader([]byte(candidate)))
	var value any
	if err := dec.Decode(&value); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("trailing data after json value")
	}
	return value, nil
}
