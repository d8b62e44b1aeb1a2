package textnorm

import (
	"strings"
	"testing"
)

func TestClean_Idempotent(t *testing.T) {
	inputs := []string{
		"",
		"plain text",
		"  padded\n\ntext\t\t ",
		"Pakis­tan and café — “nice”",
		"a​b‌c‍d",
		"PakisSHYtan travelled to Isla‐mabad",
		"&shy;broken&#173;entity",
	}
	for _, in := range inputs {
		once := Clean(in)
		twice := Clean(once)
		if once != twice {
			t.Errorf("Clean not idempotent for %q: first %q, second %q", in, once, twice)
		}
	}
}

func TestClean_InvisibleDeletion(t *testing.T) {
	for _, r := range invisibleRunes {
		in := "a" + string(r) + "b"
		if got := Clean(in); got != "ab" {
			t.Errorf("Clean(a+U+%04X+b) = %q, want %q", r, got, "ab")
		}
	}
}

func TestClean_OnlyInvisibles(t *testing.T) {
	in := "\u200B\u00AD\uFEFF\u2060"
	if got := Clean(in); got != "" {
		t.Errorf("Clean(invisibles only) = %q, want empty", got)
	}
}

func TestClean_SoftHyphenRepair(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"literal shy inside word", "PakisSHYtan", "Pakistan"},
		{"lowercase shy inside word", "Pakisshytan", "Pakistan"},
		{"shy at token start untouched", "SHY start", "SHY start"},
		{"shy at token end untouched", "feeling shy", "feeling shy"},
		{"adjacent leaks repaired", "AshyBshyC", "ABC"},
		{"html entity", "Pakis&shy;tan", "Pakistan"},
		{"numeric entity", "Pakis&#173;tan", "Pakistan"},
		{"embedded soft hyphen", "Pakis­tan", "Pakistan"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Clean(tt.in); got != tt.want {
				t.Errorf("Clean(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestClean_IntraWordHyphens(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"unicode hyphen between letters", "hyphen‐ated", "hyphenated"},
		{"non-breaking hyphen between letters", "non‑breaking", "nonbreaking"},
		{"ascii hyphen kept", "well-known", "well-known"},
		{"hyphen at token boundary kept", "odd‐ break", "odd‐ break"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Clean(tt.in); got != tt.want {
				t.Errorf("Clean(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestClean_Unescape(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"escaped quotes", `he said \"stop\"`, `he said "stop"`},
		{"escaped newline becomes space", `line one\nline two`, "line one line two"},
		{"unicode escape", `rupee \u00e9`, "rupee é"},
		{"invalid escape kept", `path \q end`, `path \q end`},
		{"trailing backslash kept", `dangling \`, `dangling \`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Clean(tt.in); got != tt.want {
				t.Errorf("Clean(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestClean_AdsSnippet(t *testing.T) {
	in := "Before. (adsbygoogle=window.adsbygoogle||[]).push({}); After."
	want := "Before. After."
	if got := Clean(in); got != want {
		t.Errorf("Clean(ads) = %q, want %q", got, want)
	}
}

func TestClean_WhitespaceCollapse(t *testing.T) {
	in := "  first\n\n\tsecond   third fourth  "
	want := "first second third fourth"
	if got := Clean(in); got != want {
		t.Errorf("Clean(%q) = %q, want %q", in, got, want)
	}
}

func TestToASCII(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"smart punctuation and accents", "café — it's “nice”", `cafe - it's "nice"`},
		{"curly apostrophe", "Pakistan’s economy", "Pakistan's economy"},
		{"ellipsis and bullet", "wait… • done", "wait... - done"},
		{"guillemets", "«quote»", `"quote"`},
		{"drops unmappable symbols", "price ₹50", "price 50"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ToASCII(tt.in)
			if got != tt.want {
				t.Errorf("ToASCII(%q) = %q, want %q", tt.in, got, tt.want)
			}
			for _, r := range got {
				if r > 127 {
					t.Errorf("ToASCII(%q) left non-ASCII rune %q", tt.in, r)
				}
			}
		})
	}
}

func TestStripMarkup(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain text untouched", "no markup here, 2 < 3", "no markup here, 2 < 3"},
		{"tags stripped", "<p>Hello <b>world</b></p>", "Hello world"},
		{"script dropped", "<p>text</p><script>var x=1;</script>", "text"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripMarkup(tt.in); got != tt.want {
				t.Errorf("StripMarkup(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestCleanAny(t *testing.T) {
	in := map[string]any{
		"title": "  spaced­title ",
		"nested": map[string]any{
			"items": []any{"a​b", 42, true},
		},
	}
	out, ok := CleanAny(in).(map[string]any)
	if !ok {
		t.Fatalf("CleanAny returned %T, want map", CleanAny(in))
	}
	if got := out["title"]; got != "spacedtitle" {
		t.Errorf("title = %q, want %q", got, "spacedtitle")
	}
	items := out["nested"].(map[string]any)["items"].([]any)
	if items[0] != "ab" {
		t.Errorf("items[0] = %q, want %q", items[0], "ab")
	}
	if items[1] != 42 || items[2] != true {
		t.Errorf("non-string values changed: %v", items[1:])
	}
	if !strings.Contains(in["title"].(string), "spaced") {
		t.Error("input mutated")
	}
}
