// Package transform maps heterogeneous scraped article records onto the
// canonical record shape, invoking the text normalizer on every string field
// and computing the derived reading statistics.
package transform

import (
	"errors"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/pemistahl/lingua-go"

	"github.com/hashimsd/articleforge/models"
	"github.com/hashimsd/articleforge/pkg/textnorm"
)

// ErrEmptyPayload is returned when the decoded record has no content at all.
var ErrEmptyPayload = errors.New("transform: empty article payload")

const wordsPerMinute = 200

// Body text shorter than this is not worth running language detection on.
const minDetectableChars = 20

// Transformer converts one raw article record into a CanonicalRecord. Safe
// for concurrent use; the language detector is shared and read-only.
type Transformer struct {
	detector lingua.LanguageDetector
}

// Languages the corpus realistically contains. Restricting the set keeps the
// lingua models small and detection fast.
var corpusLanguages = []lingua.Language{
	lingua.English,
	lingua.Urdu,
	lingua.Arabic,
	lingua.Hindi,
	lingua.French,
	lingua.German,
	lingua.Spanish,
}

// New creates a Transformer with its language detector built once.
func New() *Transformer {
	detector := lingua.NewLanguageDetectorBuilder().
		FromLanguages(corpusLanguages...).
		Build()
	return &Transformer{detector: detector}
}

// Transform builds the canonical record for one article. The id comes from
// the source filename and is immutable once assigned. Two input shapes are
// tolerated: the flat legacy schema (top-level title/author/source/link/...)
// and the pre-normalized nested schema (metadata.*, source_info.*); flat keys
// win, nested keys are the fallback, and absent fields become null or empty.
func (t *Transformer) Transform(raw map[string]any, id string) (*models.CanonicalRecord, error) {
	if len(raw) == 0 {
		return nil, ErrEmptyPayload
	}

	meta := nestedMap(raw, "metadata")
	srcInfo := nestedMap(raw, "source_info")

	// Body: content is either the body string itself or an object carrying
	// article_body. Residual markup is stripped before cleaning, and only the
	// body is ASCII-folded.
	rawBody := resolveBody(raw)
	cleanedBody := textnorm.Clean(textnorm.StripMarkup(rawBody))
	asciiBody := textnorm.ToASCII(cleanedBody)

	wordCount := len(strings.Fields(asciiBody))

	rec := &models.CanonicalRecord{
		ArticleID: id,
		SourceInfo: models.SourceInfo{
			SourceName:  resolveString(raw, "source", srcInfo, "source_name"),
			SourceLink:  resolveString(raw, "link", srcInfo, "source_link"),
			RetrievedAt: resolveString(raw, "retrievedAt", srcInfo, "retrieved_at"),
		},
		Metadata: models.Metadata{
			Title:              textnorm.Clean(stringValue(raw, "title", meta, "title")),
			Author:             resolveString(raw, "author", meta, "author"),
			DatePublished:      normalizeDate(resolveString(raw, "date_published", meta, "date_published")),
			ImageURL:           resolveString(raw, "image", meta, "image_url"),
			Categories:         resolveCategories(raw, meta),
			WordCount:          wordCount,
			ReadingTimeMinutes: readingTimeMinutes(wordCount),
			Language:           t.detectLanguage(cleanedBody),
		},
		Content: models.Content{
			ArticleBody: asciiBody,
			Summary:     "",
			Keywords:    []string{},
		},
		Entities: models.EmptyEntities(),
	}

	sanitize(rec)
	return rec, nil
}

// detectLanguage returns the lowercase ISO 639-1 code of the body language,
// or "" when the body is too short or detection is not confident.
func (t *Transformer) detectLanguage(body string) string {
	if len(body) < minDetectableChars {
		return ""
	}
	language, ok := t.detector.DetectLanguageOf(body)
	if !ok {
		return ""
	}
	return strings.ToLower(language.IsoCode639_1().String())
}

// readingTimeMinutes is ceil(wordCount/200), zero for an empty body.
func readingTimeMinutes(wordCount int) int {
	if wordCount == 0 {
		return 0
	}
	return (wordCount + wordsPerMinute - 1) / wordsPerMinute
}

// normalizeDate re-emits a parseable publication date as RFC 3339; anything
// dateparse cannot handle is kept as scraped.
func normalizeDate(s *string) *string {
	if s == nil {
		return nil
	}
	parsed, err := dateparse.ParseAny(*s)
	if err != nil {
		return s
	}
	formatted := parsed.Format(time.RFC3339)
	return &formatted
}

// sanitize is the final defensive pass: every string field runs through Clean
// once more so values that skipped a resolution path are still normalized.
// Clean is idempotent, so already-clean fields are unaffected.
func sanitize(rec *models.CanonicalRecord) {
	cleanPtr(rec.SourceInfo.SourceName)
	cleanPtr(rec.SourceInfo.SourceLink)
	cleanPtr(rec.SourceInfo.RetrievedAt)
	rec.Metadata.Title = textnorm.Clean(rec.Metadata.Title)
	cleanPtr(rec.Metadata.Author)
	cleanPtr(rec.Metadata.DatePublished)
	cleanPtr(rec.Metadata.ImageURL)
	for i, c := range rec.Metadata.Categories {
		rec.Metadata.Categories[i] = textnorm.Clean(c)
	}
	rec.Content.ArticleBody = textnorm.Clean(rec.Content.ArticleBody)
}

func cleanPtr(s *string) {
	if s != nil {
		*s = textnorm.Clean(*s)
	}
}

// resolveBody handles both content shapes.
func resolveBody(raw map[string]any) string {
	switch content := raw["content"].(type) {
	case string:
		return content
	case map[string]any:
		if body, ok := content["article_body"].(string); ok {
			return body
		}
	}
	return ""
}

// resolveString prefers the flat top-level key and falls back to the nested
// object; empty strings count as missing, matching the legacy behavior.
func resolveString(raw map[string]any, flatKey string, nested map[string]any, nestedKey string) *string {
	if s, ok := raw[flatKey].(string); ok && s != "" {
		v := textnorm.Clean(s)
		return &v
	}
	if nested != nil {
		if s, ok := nested[nestedKey].(string); ok && s != "" {
			v := textnorm.Clean(s)
			return &v
		}
	}
	return nil
}

// stringValue is resolveString for required fields, defaulting to "".
func stringValue(raw map[string]any, flatKey string, nested map[string]any, nestedKey string) string {
	if p := resolveString(raw, flatKey, nested, nestedKey); p != nil {
		return *p
	}
	return ""
}

// resolveCategories prefers the flat list, with an empty list counting as
// missing just like an empty string does for the scalar fields.
func resolveCategories(raw, meta map[string]any) []string {
	list, ok := raw["categories"].([]any)
	if (!ok || len(list) == 0) && meta != nil {
		if nested, ok := meta["categories"].([]any); ok {
			list = nested
		}
	}
	out := []string{}
	for _, item := range list {
		if s, ok := item.(string); ok {
			out = append(out, textnorm.Clean(s))
		}
	}
	return out
}

func nestedMap(raw map[string]any, key string) map[string]any {
	m, _ := raw[key].(map[string]any)
	return m
}
