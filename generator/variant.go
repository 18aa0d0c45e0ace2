package generator

import "fmt"

// VariantID names one reply style.
type VariantID string

const (
	VariantShort  VariantID = "short"
	VariantMedium VariantID = "medium"
	VariantLong   VariantID = "long"
)

// Variant is an immutable reply style definition.
type Variant struct {
	ID          VariantID
	Title       string
	Description string
	Length      string
	// Modifier is appended to the base prompt to shape this variant.
	Modifier string
}

// DefaultVariants returns the three built-in reply styles in display order.
func DefaultVariants() []Variant {
	return []Variant{
		{
			ID:          VariantShort,
			Title:       "Short",
			Description: "Concise and focused reply",
			Length:      "~1 lines",
			Modifier: "- Concise and focused reply (keep to about 1 line)\n" +
				"- Express core response concisely",
		},
		{
			ID:          VariantMedium,
			Title:       "Medium",
			Description: "Reply with moderate detail",
			Length:      "~2-3 lines",
			Modifier: "- Reply with moderate detail (keep to about 2-3 lines)\n" +
				"- Address key points from the original text\n" +
				"- Include reasons or additional explanations as needed",
		},
		{
			ID:          VariantLong,
			Title:       "Long",
			Description: "Detailed and polite reply",
			Length:      "~5-7 lines",
			Modifier: "- Detailed and polite reply (keep to about 5-7 lines)\n" +
				"- Express detailed views or opinions on the original text\n" +
				"- Include specific examples and detailed explanations for comprehensive content\n" +
				"- Use more polite and considerate expressions",
		},
	}
}

// VariantOverride replaces the non-empty fields of the variant with ID.
type VariantOverride struct {
	ID          VariantID
	Title       string
	Description string
	Length      string
	Modifier    string
}

// ApplyOverrides returns a copy of variants with overrides merged in.
func ApplyOverrides(variants []Variant, overrides []VariantOverride) ([]Variant, error) {
	out := make([]Variant, len(variants))
	copy(out, variants)
	for _, o := range overrides {
		i := indexOf(out, o.ID)
		if i < 0 {
			return nil, fmt.Errorf("%w: %q", ErrUnknownVariant, o.ID)
		}
		if o.Title != "" {
			out[i].Title = o.Title
		}
		if o.Description != "" {
			out[i].Description = o.Description
		}
		if o.Length != "" {
			out[i].Length = o.Length
		}
		if o.Modifier != "" {
			out[i].Modifier = o.Modifier
		}
	}
	return out, nil
}

// ParseVariantID validates s against the known variants.
func ParseVariantID(variants []Variant, s string) (VariantID, error) {
	id := VariantID(s)
	if indexOf(variants, id) < 0 {
		return "", fmt.Errorf("%w: %q", ErrUnknownVariant, s)
	}
	return id, nil
}

func indexOf(variants []Variant, id VariantID) int {
	for i, v := range variants {
		if v.ID == id {
			return i
		}
	}
	return -1
}
