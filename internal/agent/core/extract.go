package core

import (
	"encoding/json"
	"strings"
)

// ExtractJSON locates the most plausible JSON value inside raw LLM text
// and parses it. The candidate span runs greedily from the first '{' or
// '[' to the last matching closer. A strict parse is tried first, then
// one repair pass that swaps single quotes for double quotes. When both
// fail, or no candidate exists, the original text comes back unchanged;
// callers must check the returned value's shape before trusting it.
// ExtractJSON never fails.
func ExtractJSON(text string) any {
	candidate, found := jsonSpan(text)
	if !found {
		candidate = text
	}

	var v any
	if err := json.Unmarshal([]byte(candidate), &v); err == nil {
		return v
	}

	repaired := strings.ReplaceAll(candidate, "'", `"`)
	if err := json.Unmarshal([]byte(repaired), &v); err == nil {
		return v
	}

	return text
}

// jsonSpan returns the earliest greedy object or array span in text.
func jsonSpan(text string) (string, bool) {
	delims := []struct {
		open  byte
		close byte
	}{
		{'{', '}'},
		{'[', ']'},
	}

	best := -1
	var span string
	for _, d := range delims {
		start := strings.IndexByte(text, d.open)
		if start == -1 {
			continue
		}
		end := strings.LastIndexByte(text, d.close)
		if end <= start {
			continue
		}
		if best == -1 || start < best {
			best = start
			span = text[start : end+1]
		}
	}
	return span, best != -1
}
