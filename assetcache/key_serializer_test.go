package assetcache

import (
	"strings"
	"testing"
)

func TestSerializeKey(t *testing.T) {
	s := NewDefaultKeySerializer()

	tests := []struct {
		name     string
		method   string
		args     []any
		expected string
	}{
		{
			name:     "method only",
			method:   "FetchMetadata",
			args:     nil,
			expected: "fetch_metadata",
		},
		{
			name:     "string args",
			method:   "FetchMetadata",
			args:     []any{"col-1", "asset-9"},
			expected: "fetch_metadata::col-1::asset-9",
		},
		{
			name:     "asset ref",
			method:   "FetchImage",
			args:     []any{AssetRef{ID: "a1", Index: 4}},
			expected: "fetch_image::asset:a1:4",
		},
		{
			name:     "quality tier",
			method:   "FetchImage",
			args:     []any{TierHighQuality},
			expected: "fetch_image::high_quality",
		},
		{
			name:     "size",
			method:   "FetchImage",
			args:     []any{Size{Width: 320, Height: 240}},
			expected: "fetch_image::320x240",
		},
		{
			name:     "numbers and bools",
			method:   "Query",
			args:     []any{42, true, 1.5},
			expected: "query::42::true::1.5",
		},
		{
			name:     "nil arg",
			method:   "Query",
			args:     []any{nil},
			expected: "query::nil",
		},
		{
			name:     "string slice",
			method:   "List",
			args:     []any{[]string{"a", "b"}},
			expected: "list::slice:{a,b}",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.SerializeKey(tt.method, tt.args...)
			if got != tt.expected {
				t.Errorf("SerializeKey() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestSerializeKeyJSONFallback(t *testing.T) {
	s := NewDefaultKeySerializer()

	type filter struct {
		Status string `json:"status"`
	}
	got := s.SerializeKey("List", filter{Status: "active"})
	if !strings.HasPrefix(got, "list"+KeySeparator+"json:") {
		t.Errorf("expected json fallback, got %q", got)
	}
	if !strings.Contains(got, `"status":"active"`) {
		t.Errorf("expected marshaled struct in key, got %q", got)
	}
}

func TestSerializeKeyStability(t *testing.T) {
	s := NewDefaultKeySerializer()

	first := s.SerializeKey("FetchMetadata", AssetRef{ID: "x", Index: 2}, TierThumbnail)
	for i := 0; i < 10; i++ {
		if got := s.SerializeKey("FetchMetadata", AssetRef{ID: "x", Index: 2}, TierThumbnail); got != first {
			t.Fatalf("key not stable: %q vs %q", got, first)
		}
	}
}

func TestToSnake(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"", ""},
		{"Fetch", "fetch"},
		{"FetchMetadata", "fetch_metadata"},
		{"fetchMetadata", "fetch_metadata"},
		{"HTTPServer", "http_server"},
		{"ParseURL", "parse_url"},
		{"already_snake", "already_snake"},
		{"With Spaces", "with_spaces"},
		{"dash-case", "dash_case"},
		{"Weird!!Chars", "weird_chars"},
		{"Asset2Image", "asset2_image"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := toSnake(tt.input); got != tt.expected {
				t.Errorf("toSnake(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}
