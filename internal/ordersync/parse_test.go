package ordersync

import (
	"encoding/json"
	"testing"
)

func TestFirstNonBlank(t *testing.T) {
	obj := map[string]interface{}{
		"empty":  "  ",
		"second": "value",
		"number": json.Number("123"),
	}
	if got := FirstNonBlank(obj, "missing", "empty", "second"); got != "value" {
		t.Fatalf("want value got %q", got)
	}
	if got := FirstNonBlank(obj, "number"); got != "123" {
		t.Fatalf("json number want 123 got %q", got)
	}
	if got := FirstNonBlank(nil, "any"); got != "" {
		t.Fatalf("nil obj want empty got %q", got)
	}
}

func TestFirstPositiveFloat(t *testing.T) {
	obj := map[string]interface{}{
		"zero":   json.Number("0"),
		"text":   "12.34",
		"number": json.Number("56.78"),
	}
	if v, ok := FirstPositiveFloat(obj, "zero", "text"); !ok || v != 12.34 {
		t.Fatalf("want 12.34 got %v ok=%v", v, ok)
	}
	if v, ok := FirstNonNegativeFloat(obj, "zero", "number"); !ok || v != 0 {
		t.Fatalf("non-negative should accept 0, got %v ok=%v", v, ok)
	}
	if _, ok := FirstPositiveFloat(obj, "missing"); ok {
		t.Fatal("missing key should not match")
	}
}

func TestFirstInt(t *testing.T) {
	obj := map[string]interface{}{
		"str":    "42",
		"number": json.Number("7"),
		"bad":    "abc",
	}
	if v, ok := FirstInt(obj, "bad", "str"); !ok || v != 42 {
		t.Fatalf("want 42 got %v ok=%v", v, ok)
	}
	if v, ok := FirstInt(obj, "number"); !ok || v != 7 {
		t.Fatalf("want 7 got %v ok=%v", v, ok)
	}
}

func TestParseTime(t *testing.T) {
	if got := ParseTime("2025-08-01 12:30:45"); got == nil {
		t.Fatal("standard layout should parse")
	} else if got.Hour() != 12 || got.Minute() != 30 {
		t.Fatalf("unexpected time %v", got)
	}
	if got := ParseTime("2025-08-01T12:30:45Z"); got == nil {
		t.Fatal("rfc3339 should parse")
	}
	if got := ParseTime(""); got != nil {
		t.Fatal("blank should return nil")
	}
	if got := ParseTime("not-a-date"); got != nil {
		t.Fatal("garbage should return nil")
	}
}
