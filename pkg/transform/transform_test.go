package transform

import (
	"errors"
	"strings"
	"testing"
)

const englishBody = "The government announced a new economic package on Monday, promising relief " +
	"for households struggling with rising food prices. Officials said the measures would take " +
	"effect before the end of the month and would be reviewed quarterly."

func newTestTransformer(t *testing.T) *Transformer {
	t.Helper()
	return New()
}

func TestTransform_FlatSchema(t *testing.T) {
	tr := newTestTransformer(t)

	raw := map[string]any{
		"title":       "Economy  update",
		"author":      "A. Reporter",
		"source":      "dawn",
		"link":        "https://example.com/a",
		"retrievedAt": "2024-03-01T10:00:00Z",
		"image":       "https://example.com/a.jpg",
		"categories":  []any{"business", "economy"},
		"content":     englishBody,
	}

	rec, err := tr.Transform(raw, "article-001")
	if err != nil {
		t.Fatalf("Transform() error = %v", err)
	}

	if rec.ArticleID != "article-001" {
		t.Errorf("ArticleID = %q, want article-001", rec.ArticleID)
	}
	if rec.Metadata.Title != "Economy update" {
		t.Errorf("Title = %q, want collapsed whitespace", rec.Metadata.Title)
	}
	if rec.SourceInfo.SourceName == nil || *rec.SourceInfo.SourceName != "dawn" {
		t.Errorf("SourceName = %v, want dawn", rec.SourceInfo.SourceName)
	}
	if len(rec.Metadata.Categories) != 2 || rec.Metadata.Categories[0] != "business" {
		t.Errorf("Categories = %v", rec.Metadata.Categories)
	}
	if rec.Content.ArticleBody == "" {
		t.Fatal("ArticleBody is empty")
	}
	if rec.Content.Summary != "" || len(rec.Content.Keywords) != 0 {
		t.Error("enrichment placeholders must start empty")
	}
	if len(rec.Entities.People) != 0 || len(rec.Entities.Organizations) != 0 || len(rec.Entities.Locations) != 0 {
		t.Error("entities must start empty")
	}
	if rec.Metadata.Language != "en" {
		t.Errorf("Language = %q, want en", rec.Metadata.Language)
	}
}

func TestTransform_NestedSchemaFallback(t *testing.T) {
	tr := newTestTransformer(t)

	raw := map[string]any{
		"metadata": map[string]any{
			"title":     "Nested title",
			"author":    "N. Author",
			"image_url": "https://example.com/n.jpg",
		},
		"source_info": map[string]any{
			"source_name":  "app",
			"source_link":  "https://example.com/n",
			"retrieved_at": "2024-03-02T08:00:00Z",
		},
		"content": map[string]any{
			"article_body": englishBody,
		},
	}

	rec, err := tr.Transform(raw, "nested-001")
	if err != nil {
		t.Fatalf("Transform() error = %v", err)
	}
	if rec.Metadata.Title != "Nested title" {
		t.Errorf("Title = %q", rec.Metadata.Title)
	}
	if rec.SourceInfo.SourceName == nil || *rec.SourceInfo.SourceName != "app" {
		t.Errorf("SourceName = %v, want app", rec.SourceInfo.SourceName)
	}
	if rec.Metadata.Author == nil || *rec.Metadata.Author != "N. Author" {
		t.Errorf("Author = %v", rec.Metadata.Author)
	}
}

func TestTransform_FlatWinsOverNested(t *testing.T) {
	tr := newTestTransformer(t)

	raw := map[string]any{
		"title": "Flat title",
		"metadata": map[string]any{
			"title": "Nested title",
		},
		"content": englishBody,
	}
	rec, err := tr.Transform(raw, "conflict-001")
	if err != nil {
		t.Fatalf("Transform() error = %v", err)
	}
	if rec.Metadata.Title != "Flat title" {
		t.Errorf("Title = %q, want flat key to win", rec.Metadata.Title)
	}
}

func TestTransform_EmptyFlatCategoriesFallThrough(t *testing.T) {
	tr := newTestTransformer(t)

	raw := map[string]any{
		"categories": []any{},
		"metadata": map[string]any{
			"categories": []any{"politics"},
		},
		"content": englishBody,
	}
	rec, err := tr.Transform(raw, "cat-001")
	if err != nil {
		t.Fatalf("Transform() error = %v", err)
	}
	if len(rec.Metadata.Categories) != 1 || rec.Metadata.Categories[0] != "politics" {
		t.Errorf("Categories = %v, want nested fallback [politics]", rec.Metadata.Categories)
	}
}

func TestTransform_MissingFieldsAreNull(t *testing.T) {
	tr := newTestTransformer(t)

	rec, err := tr.Transform(map[string]any{"content": englishBody}, "sparse-001")
	if err != nil {
		t.Fatalf("Transform() error = %v", err)
	}
	if rec.SourceInfo.SourceName != nil || rec.SourceInfo.SourceLink != nil || rec.SourceInfo.RetrievedAt != nil {
		t.Error("missing source fields must stay nil")
	}
	if rec.Metadata.Author != nil || rec.Metadata.ImageURL != nil || rec.Metadata.DatePublished != nil {
		t.Error("missing metadata fields must stay nil")
	}
	if rec.Metadata.Categories == nil || len(rec.Metadata.Categories) != 0 {
		t.Errorf("Categories = %v, want empty slice", rec.Metadata.Categories)
	}
}

func TestTransform_WordCountAndReadingTime(t *testing.T) {
	tr := newTestTransformer(t)

	tests := []struct {
		name        string
		body        string
		wantWords   int
		wantMinutes int
	}{
		{"400 tokens", strings.TrimSpace(strings.Repeat("token ", 400)), 400, 2},
		{"201 tokens", strings.TrimSpace(strings.Repeat("token ", 201)), 201, 2},
		{"one token", "token", 1, 1},
		{"empty body", "", 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := tr.Transform(map[string]any{"title": "x", "content": tt.body}, "wc")
			if err != nil {
				t.Fatalf("Transform() error = %v", err)
			}
			if rec.Metadata.WordCount != tt.wantWords {
				t.Errorf("WordCount = %d, want %d", rec.Metadata.WordCount, tt.wantWords)
			}
			if rec.Metadata.ReadingTimeMinutes != tt.wantMinutes {
				t.Errorf("ReadingTimeMinutes = %d, want %d", rec.Metadata.ReadingTimeMinutes, tt.wantMinutes)
			}
		})
	}
}

func TestTransform_BodyIsASCIIFolded(t *testing.T) {
	tr := newTestTransformer(t)

	raw := map[string]any{
		"title":   "Café “report” — überblick",
		"content": "The café’s décor — “stunning” according to visitors — reopened for the summer season today.",
	}
	rec, err := tr.Transform(raw, "ascii-001")
	if err != nil {
		t.Fatalf("Transform() error = %v", err)
	}
	for _, r := range rec.Content.ArticleBody {
		if r > 127 {
			t.Fatalf("ArticleBody contains non-ASCII rune %q", r)
		}
	}
	// Non-body fields keep their Unicode.
	if !strings.Contains(rec.Metadata.Title, "Café") {
		t.Errorf("Title lost Unicode: %q", rec.Metadata.Title)
	}
}

func TestTransform_StripsResidualMarkup(t *testing.T) {
	tr := newTestTransformer(t)

	raw := map[string]any{
		"content": "<p>City officials confirmed the new water project would begin next month, " +
			"with <b>construction</b> expected to last two years.</p>",
	}
	rec, err := tr.Transform(raw, "markup-001")
	if err != nil {
		t.Fatalf("Transform() error = %v", err)
	}
	if strings.ContainsAny(rec.Content.ArticleBody, "<>") {
		t.Errorf("ArticleBody still has markup: %q", rec.Content.ArticleBody)
	}
	if !strings.Contains(rec.Content.ArticleBody, "construction") {
		t.Errorf("ArticleBody lost text: %q", rec.Content.ArticleBody)
	}
}

func TestTransform_DateNormalized(t *testing.T) {
	tr := newTestTransformer(t)

	raw := map[string]any{
		"date_published": "March 5, 2024",
		"content":        englishBody,
	}
	rec, err := tr.Transform(raw, "date-001")
	if err != nil {
		t.Fatalf("Transform() error = %v", err)
	}
	if rec.Metadata.DatePublished == nil {
		t.Fatal("DatePublished is nil")
	}
	if !strings.HasPrefix(*rec.Metadata.DatePublished, "2024-03-05T") {
		t.Errorf("DatePublished = %q, want RFC 3339 for 2024-03-05", *rec.Metadata.DatePublished)
	}
}

func TestTransform_EmptyPayload(t *testing.T) {
	tr := newTestTransformer(t)

	if _, err := tr.Transform(map[string]any{}, "empty"); !errors.Is(err, ErrEmptyPayload) {
		t.Errorf("Transform(empty) error = %v, want ErrEmptyPayload", err)
	}
	if _, err := tr.Transform(nil, "nil"); !errors.Is(err, ErrEmptyPayload) {
		t.Errorf("Transform(nil) error = %v, want ErrEmptyPayload", err)
	}
}
