package markdown

import (
	"strings"
	"testing"
)

func TestToHTML(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		contains []string
	}{
		{"heading", "# Terms of Service", []string{"<h1", "Terms of Service</h1>"}},
		{"emphasis", "You **must** agree.", []string{"<strong>must</strong>"}},
		{"list", "- one\n- two", []string{"<ul>", "<li>one</li>"}},
		{"table", "| a | b |\n|---|---|\n| 1 | 2 |", []string{"<table>", "<td>1</td>"}},
		{"autolink", "See https://example.com", []string{`href="https://example.com"`}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToHTML(tt.input)
			if err != nil {
				t.Fatalf("ToHTML: %v", err)
			}
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("output %q missing %q", got, want)
				}
			}
		})
	}
}

func TestToHTML_RawHTMLOmitted(t *testing.T) {
	got, err := ToHTML("<script>alert(1)</script>\n\nHello")
	if err != nil {
		t.Fatalf("ToHTML: %v", err)
	}
	if strings.Contains(got, "<script>") {
		t.Errorf("raw script passed through: %q", got)
	}
	if !strings.Contains(got, "Hello") {
		t.Errorf("text lost: %q", got)
	}
}

func TestRender_Outline(t *testing.T) {
	src := "# Privacy Policy\n\nIntro text.\n\n## Data We Collect\n\nSome *details* here.\n\n### Cookies\n\nMore."

	p, err := Render(src)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	want := []Heading{
		{Level: 1, Text: "Privacy Policy", ID: "privacy-policy"},
		{Level: 2, Text: "Data We Collect", ID: "data-we-collect"},
		{Level: 3, Text: "Cookies", ID: "cookies"},
	}
	if len(p.Outline) != len(want) {
		t.Fatalf("outline = %+v, want %d headings", p.Outline, len(want))
	}
	for i, h := range want {
		if p.Outline[i] != h {
			t.Errorf("outline[%d] = %+v, want %+v", i, p.Outline[i], h)
		}
	}
	if !strings.Contains(p.HTML, `id="data-we-collect"`) {
		t.Errorf("HTML missing heading anchor: %q", p.HTML)
	}
}

func TestRender_ReadingStats(t *testing.T) {
	p, err := Render(strings.Repeat("word ", 450))
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if p.WordCount != 450 {
		t.Errorf("WordCount = %d, want 450", p.WordCount)
	}
	if p.ReadingMinutes != 3 {
		t.Errorf("ReadingMinutes = %d, want 3", p.ReadingMinutes)
	}

	empty, err := Render("")
	if err != nil {
		t.Fatalf("Render empty: %v", err)
	}
	if empty.WordCount != 0 || empty.ReadingMinutes != 0 || len(empty.Outline) != 0 {
		t.Errorf("empty preview = %+v", empty)
	}
	if empty.Outline == nil {
		t.Error("outline should be an empty list, not nil")
	}
}
