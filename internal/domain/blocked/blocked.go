// Package blocked provides the entities for control-plane objects that
// are excluded from normal handling by policy.
package blocked

import "strings"

// Item represents a single blocked catalog object (track, album, artist).
type Item struct {
	Type  string `json:"type" yaml:"type" mapstructure:"type"`
	ID    string `json:"id" yaml:"id" mapstructure:"id"`
	Label string `json:"label,omitempty" yaml:"label" mapstructure:"label"`
}

// Normalize lowercases the object type and trims surrounding whitespace.
// Downstream consumers key on (type, id), so the type must be canonical.
func (i Item) Normalize() Item {
	return Item{
		Type:  strings.ToLower(strings.TrimSpace(i.Type)),
		ID:    strings.TrimSpace(i.ID),
		Label: strings.TrimSpace(i.Label),
	}
}

// Valid reports whether the item carries both required keys.
func (i Item) Valid() bool {
	return i.Type != "" && i.ID != ""
}

// NormalizeList normalizes all items and drops those missing type or id.
func NormalizeList(items []Item) []Item {
	out := make([]Item, 0, len(items))
	for _, item := range items {
		n := item.Normalize()
		if !n.Valid() {
			continue
		}
		out = append(out, n)
	}
	return out
}
