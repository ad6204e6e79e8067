// Package funds holds the policy fund catalogue and the evaluator that checks
// every fund's conditions against an applicant profile.
package funds

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidCatalogue wraps every catalogue validation failure.
var ErrInvalidCatalogue = errors.New("CATALOGUE_INVALID")

// Category groups funds for display and reporting.
type Category string

const (
	CategoryOperating  Category = "operating"
	CategoryFacility   Category = "facility"
	CategoryStartup    Category = "startup"
	CategoryGuarantee  Category = "guarantee"
	CategoryTechnology Category = "technology"
	CategorySpecial    Category = "special"
)

var knownCategories = map[Category]bool{
	CategoryOperating:  true,
	CategoryFacility:   true,
	CategoryStartup:    true,
	CategoryGuarantee:  true,
	CategoryTechnology: true,
	CategorySpecial:    true,
}

func (c Category) Valid() bool {
	return knownCategories[c]
}

// Definition is one fund with its display terms and ordered conditions.
type Definition struct {
	Name         string
	Category     Category
	MaxAmount    int64
	InterestRate string
	Requirements string
	Conditions   []Condition
}

// Catalogue is a validated, versioned fund list. It is never mutated after
// NewCatalogue returns; replace it whole through a Store.
type Catalogue struct {
	version string
	funds   []Definition
}

// NewCatalogue validates defs and returns a catalogue that preserves their order.
// Any invalid definition rejects the whole catalogue.
func NewCatalogue(version string, defs []Definition) (*Catalogue, error) {
	var problems []string
	if strings.TrimSpace(version) == "" {
		problems = append(problems, "version is empty")
	}
	if len(defs) == 0 {
		problems = append(problems, "no funds defined")
	}

	seen := make(map[string]bool, len(defs))
	for i, d := range defs {
		where := fmt.Sprintf("funds[%d]", i)
		if d.Name != "" {
			where = fmt.Sprintf("funds[%d] %q", i, d.Name)
		}

		switch {
		case strings.TrimSpace(d.Name) == "":
			problems = append(problems, where+": name is empty")
		case seen[d.Name]:
			problems = append(problems, where+": duplicate name")
		}
		seen[d.Name] = true

		if !d.Category.Valid() {
			problems = append(problems, fmt.Sprintf("%s: unknown category %q", where, d.Category))
		}
		if d.MaxAmount <= 0 {
			problems = append(problems, where+": max amount must be positive")
		}
		if len(d.Conditions) == 0 {
			problems = append(problems, where+": no conditions")
		}
		for j, c := range d.Conditions {
			if c.Evaluate == nil {
				problems = append(problems, fmt.Sprintf("%s: condition %d (%s) has no evaluator", where, j, c.Label))
			}
			if _, ok := conditionBuilders[c.Type]; !ok {
				problems = append(problems, fmt.Sprintf("%s: condition %d has unknown type %q", where, j, c.Type))
			}
		}
	}

	if len(problems) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrInvalidCatalogue, strings.Join(problems, "; "))
	}

	funds := make([]Definition, len(defs))
	for i, d := range defs {
		d.Conditions = append([]Condition(nil), d.Conditions...)
		funds[i] = d
	}
	return &Catalogue{version: version, funds: funds}, nil
}

func (c *Catalogue) Version() string { return c.version }

func (c *Catalogue) Len() int { return len(c.funds) }

// Funds returns the definitions in declaration order. The slice is a copy.
func (c *Catalogue) Funds() []Definition {
	return append([]Definition(nil), c.funds...)
}

// Lookup finds a definition by name.
func (c *Catalogue) Lookup(name string) (Definition, bool) {
	for _, d := range c.funds {
		if d.Name == name {
			return d, true
		}
	}
	return Definition{}, false
}
