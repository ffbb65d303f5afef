package conv

import (
	"strings"
	"testing"
)

func TestMarkdownToTelegramHTML(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "plain text",
			input:    "Hello world",
			expected: "Hello world\n",
		},
		{
			name:     "bold text",
			input:    "**bold**",
			expected: "<strong>bold</strong>\n",
		},
		{
			name:     "inline code",
			input:    "`code`",
			expected: "<code>code</code>\n",
		},
		{
			name:     "header tags stripped",
			input:    "# Info",
			expected: "Info\n",
		},
		{
			name:     "script tags sanitized",
			input:    "<script>alert('xss')</script>",
			expected: "\n",
		},
		{
			name:     "link",
			input:    "[link](https://example.com)",
			expected: "<a href=\"https://example.com\">link</a>\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MarkdownToTelegramHTML([]byte(tt.input))
			if got != tt.expected {
				t.Errorf("MarkdownToTelegramHTML(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestMarkdownToPlainText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "plain text unchanged",
			input: "您好，歡迎詢問",
			want:  "您好，歡迎詢問",
		},
		{
			name:  "bold flattened",
			input: "**2020年 Lexus NX200**",
			want:  "2020年 Lexus NX200",
		},
		{
			name:  "list flattened",
			input: "- 白色\n- 黑色",
			want:  "白色",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MarkdownToPlainText([]byte(tt.input))
			if !strings.Contains(got, tt.want) {
				t.Errorf("MarkdownToPlainText(%q) = %q, want it to contain %q", tt.input, got, tt.want)
			}
		})
	}
}
