package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/ladle-labs/ladle-engine/pkg/jsonutil"
)

// ParsedIngredient is the structured decomposition of one raw ingredient
// line. Values are never mutated after creation; re-parsing produces a new
// value. Nil pointers mean "absent", never empty string.
type ParsedIngredient struct {
	// Quantity preserves the original textual form for fractions ("1/2")
	// and ranges ("2-3"). Nil for "to taste" or unspecified amounts.
	Quantity *string `json:"quantity"`
	// Unit is the singular canonical form ("cup", not "cups" or "T").
	// Nil for count-based items ("3 oranges").
	Unit *string `json:"unit"`
	// Name is singular and keeps identity-defining modifiers
	// ("green bell pepper"); preparation detail is stripped out.
	Name string `json:"name"`
	// Note carries preparation method, state descriptor, or optionality
	// marker. Nil if none.
	Note *string `json:"note"`
}

// UnmarshalJSON tolerates models returning quantity as a bare number
// ("quantity": 2) instead of a string. Null and empty become nil.
func (p *ParsedIngredient) UnmarshalJSON(data []byte) error {
	var raw struct {
		Quantity json.RawMessage `json:"quantity"`
		Unit     *string         `json:"unit"`
		Name     string          `json:"name"`
		Note     *string         `json:"note"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	p.Unit = raw.Unit
	p.Name = raw.Name
	p.Note = raw.Note
	p.Quantity = nil
	if q := jsonutil.FlexibleStringValue(raw.Quantity); q != "" {
		p.Quantity = &q
	}
	return nil
}

// Validate checks the parser's structured output against the schema.
func (p *ParsedIngredient) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("missing required field \"name\"")
	}
	if p.Quantity != nil && strings.TrimSpace(*p.Quantity) == "" {
		return fmt.Errorf("quantity must be null when absent, not empty")
	}
	if p.Unit != nil && strings.TrimSpace(*p.Unit) == "" {
		return fmt.Errorf("unit must be null when absent, not empty")
	}
	return nil
}

// StandardizedIngredient is one catalog entry: the canonical, de-duplicated
// ingredient name used as the join key across recipes.
type StandardizedIngredient struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// IngredientRef is a lightweight {id, name} pair used for fuzzy-match
// candidate lists.
type IngredientRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// MatchConfidence grades an LLM disambiguation decision.
type MatchConfidence string

const (
	MatchConfidenceHigh   MatchConfidence = "high"
	MatchConfidenceMedium MatchConfidence = "medium"
	MatchConfidenceLow    MatchConfidence = "low"
)

// IngredientMatch is the disambiguation step's output. Ephemeral: only its
// effects (a new catalog row, or an id reference) are persisted.
type IngredientMatch struct {
	// MatchedID is the id of an existing catalog entry judged equivalent,
	// or nil if a new entry should be created.
	MatchedID *int64 `json:"matchedId"`
	// StandardizedName echoes the matched entry's name, or is the
	// suggested new canonical name when MatchedID is nil.
	StandardizedName string `json:"standardizedName"`
	Confidence       MatchConfidence `json:"confidence"`
}

// Validate checks the disambiguation output against the schema.
func (m *IngredientMatch) Validate() error {
	if strings.TrimSpace(m.StandardizedName) == "" {
		return fmt.Errorf("missing required field \"standardizedName\"")
	}
	switch m.Confidence {
	case MatchConfidenceHigh, MatchConfidenceMedium, MatchConfidenceLow:
		return nil
	default:
		return fmt.Errorf("invalid confidence %q", m.Confidence)
	}
}

// MappedIngredient is a fully resolved line item: the raw text, the parsed
// fields, and the resolved catalog entry. Raw text is retained for audit
// even after normalization.
type MappedIngredient struct {
	Raw          string  `json:"ingredient"`
	IngredientID int64   `json:"ingredientId"`
	Name         string  `json:"name"`
	Quantity     *string `json:"quantity"`
	Unit         *string `json:"unit"`
	Note         *string `json:"note"`
}

// MappedIngredientGroup is one ingredient group after normalization,
// preserving the recipe's original group name and item order.
type MappedIngredientGroup struct {
	Name  *string            `json:"name,omitempty"`
	Items []MappedIngredient `json:"mappedItems"`
}
