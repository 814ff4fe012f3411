package sanitize

import (
	"testing"
)

func TestText_RemovesAllHTML(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "script tag",
			input:    `Hello <script>alert('xss')</script> World`,
			expected: `Hello  World`,
		},
		{
			name:     "inline event handler",
			input:    `<div onclick="alert('xss')">Click me</div>`,
			expected: `Click me`,
		},
		{
			name:     "iframe injection",
			input:    `Safe text <iframe src="evil.com"></iframe> more text`,
			expected: `Safe text  more text`,
		},
		{
			name:     "mixed HTML tags",
			input:    `<b>Bold</b> <i>Italic</i> <a href="http://example.com">Link</a>`,
			expected: `Bold Italic Link`,
		},
		{
			name:     "ampersand survives",
			input:    `Arts & Culture`,
			expected: `Arts & Culture`,
		},
		{
			name:     "apostrophe survives",
			input:    `Director's Cut`,
			expected: `Director's Cut`,
		},
		{
			name:     "accents unchanged",
			input:    `Agence Digitale · Lagos`,
			expected: `Agence Digitale · Lagos`,
		},
		{
			name:     "surrounding whitespace trimmed",
			input:    "  Design Graphique \n",
			expected: `Design Graphique`,
		},
		{
			name:     "empty string",
			input:    ``,
			expected: ``,
		},
		{
			name:     "image tag with onerror",
			input:    `<img src=x onerror="alert('xss')">`,
			expected: ``,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Text(tt.input)
			if result != tt.expected {
				t.Errorf("Text(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestOptional(t *testing.T) {
	if got := Optional(nil); got != nil {
		t.Errorf("Optional(nil) = %q, want nil", *got)
	}

	blank := "  <br> "
	if got := Optional(&blank); got != nil {
		t.Errorf("Optional(%q) = %q, want nil", blank, *got)
	}

	value := "<b>Lagos</b>"
	got := Optional(&value)
	if got == nil || *got != "Lagos" {
		t.Errorf("Optional(%q) = %v, want Lagos", value, got)
	}
}
