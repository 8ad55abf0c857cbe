package prompt

import "testing"

func TestStripFence(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"json tagged fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"untagged fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"uppercase tag", "```JSON\n{\"a\":1}\n```", `{"a":1}`},
		{"plain text untouched", "hello world", "hello world"},
		{"surrounding whitespace trimmed", "  \n```json\n[1,2]\n```\n  ", "[1,2]"},
		{"fence not spanning whole text left alone", "prefix ```json\n{}\n```", "prefix ```json\n{}\n```"},
		{"empty input", "   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripFence(tt.raw); got != tt.want {
				t.Errorf("StripFence() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseJSON(t *testing.T) {
	t.Run("fenced json yields structured value", func(t *testing.T) {
		value, ok := ParseJSON("```json\n{\"a\":1}\n```")
		if !ok {
			t.Fatal("expected structured parse to succeed")
		}
		if string(value) != `{"a":1}` {
			t.Errorf("value = %s, want {\"a\":1}", value)
		}
	})

	t.Run("bare json object", func(t *testing.T) {
		value, ok := ParseJSON(`{"title":"New hero","cta":"Buy now"}`)
		if !ok {
			t.Fatal("expected structured parse to succeed")
		}
		if string(value) != `{"title":"New hero","cta":"Buy now"}` {
			t.Errorf("unexpected value: %s", value)
		}
	})

	t.Run("prose falls back", func(t *testing.T) {
		if _, ok := ParseJSON("hello world"); ok {
			t.Error("prose should not parse as JSON")
		}
	})

	t.Run("truncated json falls back", func(t *testing.T) {
		if _, ok := ParseJSON("```json\n{\"a\":\n```"); ok {
			t.Error("truncated JSON should not parse")
		}
	})
}
