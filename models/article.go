// Package models defines the canonical article structures shared by the
// cleaning and enrichment pipelines.
package models

import (
	"encoding/json"
	"strings"
)

// Entity labels emitted by enrichment providers.
const (
	LabelPerson       = "PERSON"
	LabelOrganization = "ORGANIZATION"
	LabelLocation     = "LOCATION"
)

// CanonicalRecord is the normalized article representation. It is created once
// by the transformer and later enriched in place (summary, keywords, entities)
// before being written to a second location; the canonical file itself is
// never mutated.
type CanonicalRecord struct {
	ArticleID  string     `json:"article_id"`
	SourceInfo SourceInfo `json:"source_info"`
	Metadata   Metadata   `json:"metadata"`
	Content    Content    `json:"content"`
	Entities   Entities   `json:"entities"`
}

// SourceInfo describes where an article was scraped from. Fields are pointers
// so that absent values serialize as JSON null, matching the legacy corpus.
type SourceInfo struct {
	SourceName  *string `json:"source_name"`
	SourceLink  *string `json:"source_link"`
	RetrievedAt *string `json:"retrieved_at"`
}

// Metadata holds per-article descriptive fields and derived statistics.
type Metadata struct {
	Title              string   `json:"title"`
	Author             *string  `json:"author"`
	DatePublished      *string  `json:"date_published"`
	ImageURL           *string  `json:"image_url"`
	Categories         []string `json:"categories"`
	WordCount          int      `json:"word_count"`
	ReadingTimeMinutes int      `json:"reading_time_minutes"`
	Language           string   `json:"language,omitempty"`
}

// Content carries the cleaned body plus the enrichment placeholders.
type Content struct {
	ArticleBody string   `json:"article_body"`
	Summary     string   `json:"summary"`
	Keywords    []string `json:"keywords"`
}

// EntityMention is one named entity occurrence. Providers sometimes return
// bare strings instead of tagged objects; UnmarshalJSON accepts both.
type EntityMention struct {
	Text       string  `json:"text"`
	Label      string  `json:"label,omitempty"`
	WikidataID *string `json:"wikidata_id,omitempty"`
	Sentiment  string  `json:"sentiment,omitempty"`
}

func (m *EntityMention) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		m.Text = s
		return nil
	}
	type mention EntityMention
	var full mention
	if err := json.Unmarshal(data, &full); err != nil {
		return err
	}
	*m = EntityMention(full)
	return nil
}

// Entities groups mentions by class. Slices are kept non-nil so empty groups
// serialize as [] rather than null.
type Entities struct {
	People        []EntityMention `json:"people"`
	Organizations []EntityMention `json:"organizations"`
	Locations     []EntityMention `json:"locations"`
}

// EmptyEntities returns the placeholder entity structure written by the
// transformer before enrichment.
func EmptyEntities() Entities {
	return Entities{
		People:        []EntityMention{},
		Organizations: []EntityMention{},
		Locations:     []EntityMention{},
	}
}

// EnrichmentResult is the payload produced by the enrichment oracle. Entities
// are kept raw because providers disagree on the shape; NormalizeEntities
// folds the variants into the grouped form.
type EnrichmentResult struct {
	Summary  string          `json:"summary"`
	Keywords []string        `json:"keywords"`
	Entities json.RawMessage `json:"entities"`
}

// NormalizeEntities tolerates the two entity shapes seen across providers:
// a grouped object {people, organizations, locations} whose members are
// strings or tagged mentions, and a flat array of tagged mentions which is
// grouped here by label. Anything unrecognized yields the empty structure.
func NormalizeEntities(raw json.RawMessage) Entities {
	out := EmptyEntities()
	if len(raw) == 0 {
		return out
	}

	var grouped struct {
		People        []EntityMention `json:"people"`
		Organizations []EntityMention `json:"organizations"`
		Locations     []EntityMention `json:"locations"`
	}
	if err := json.Unmarshal(raw, &grouped); err == nil {
		if grouped.People != nil {
			out.People = grouped.People
		}
		if grouped.Organizations != nil {
			out.Organizations = grouped.Organizations
		}
		if grouped.Locations != nil {
			out.Locations = grouped.Locations
		}
		return out
	}

	var flat []EntityMention
	if err := json.Unmarshal(raw, &flat); err != nil {
		return out
	}
	for _, m := range flat {
		switch strings.ToUpper(m.Label) {
		case LabelPerson:
			out.People = append(out.People, m)
		case LabelOrganization:
			out.Organizations = append(out.Organizations, m)
		case LabelLocation:
			out.Locations = append(out.Locations, m)
		}
	}
	return out
}
