package core

import (
	"reflect"
	"testing"
)

func TestExtractJSONObjectWithNoise(t *testing.T) {
	got := ExtractJSON(`prefix {"a": 1} suffix`)
	want := map[string]any{"a": float64(1)}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestExtractJSONArray(t *testing.T) {
	got := ExtractJSON("here you go:\n[1, 2, 3]\nenjoy")
	want := []any{float64(1), float64(2), float64(3)}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestExtractJSONMultiline(t *testing.T) {
	text := "The plan is:\n{\n  \"searches\": [\n    {\"query\": \"go testing\"}\n  ]\n}\nDone."
	got, ok := ExtractJSON(text).(map[string]any)
	if !ok {
		t.Fatalf("expected a mapping, got %T", ExtractJSON(text))
	}
	if _, ok := got["searches"]; !ok {
		t.Fatalf("expected searches key, got %v", got)
	}
}

func TestExtractJSONPassthroughOnNonJSON(t *testing.T) {
	in := "not json at all"
	got := ExtractJSON(in)
	if got != in {
		t.Fatalf("expected original text back, got %v", got)
	}
}

func TestExtractJSONSingleQuoteRepair(t *testing.T) {
	got := ExtractJSON(`{'a': 1}`)
	want := map[string]any{"a": float64(1)}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v via repair pass, got %v", want, got)
	}
}

func TestExtractJSONUnrepairableReturnsText(t *testing.T) {
	in := `{this is {not} json`
	got := ExtractJSON(in)
	if got != in {
		t.Fatalf("expected original text back, got %v", got)
	}
}
