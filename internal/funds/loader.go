package funds

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"policyfund-workers/internal/common/validation"
)

var catalogueSchema = validation.MustCompile("fund catalogue", `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["version", "funds"],
  "properties": {
    "version": {"type": "string", "minLength": 1},
    "funds": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["name", "category", "max_amount", "conditions"],
        "additionalProperties": false,
        "properties": {
          "name":          {"type": "string", "minLength": 1},
          "category":      {"type": "string"},
          "max_amount":    {"type": "integer", "minimum": 1},
          "interest_rate": {"type": "string"},
          "requirements":  {"type": "string"},
          "conditions": {
            "type": "array",
            "minItems": 1,
            "items": {
              "type": "object",
              "required": ["type"],
              "additionalProperties": false,
              "properties": {
                "type":  {"type": "string"},
                "value": {"type": "number", "minimum": 0}
              }
            }
          }
        }
      }
    }
  }
}`)

type fileCatalogue struct {
	Version string     `yaml:"version"`
	Funds   []fileFund `yaml:"funds"`
}

type fileFund struct {
	Name         string          `yaml:"name"`
	Category     string          `yaml:"category"`
	MaxAmount    int64           `yaml:"max_amount"`
	InterestRate string          `yaml:"interest_rate"`
	Requirements string          `yaml:"requirements"`
	Conditions   []fileCondition `yaml:"conditions"`
}

type fileCondition struct {
	Type  string   `yaml:"type"`
	Value *float64 `yaml:"value,omitempty"`
}

// LoadFile reads and validates a YAML catalogue.
func LoadFile(path string) (*Catalogue, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalogue %s: %w", path, err)
	}
	return Parse(data)
}

// Parse validates a YAML catalogue document against the file schema, builds
// each condition through its registered constructor and returns the
// catalogue. Unknown condition types or categories reject the whole document.
func Parse(data []byte) (*Catalogue, error) {
	var raw interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCatalogue, err)
	}
	if err := catalogueSchema.Validate(raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCatalogue, err)
	}

	var file fileCatalogue
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCatalogue, err)
	}

	defs := make([]Definition, 0, len(file.Funds))
	for i, f := range file.Funds {
		def := Definition{
			Name:         f.Name,
			Category:     Category(f.Category),
			MaxAmount:    f.MaxAmount,
			InterestRate: f.InterestRate,
			Requirements: f.Requirements,
		}
		for j, fc := range f.Conditions {
			cond, err := BuildCondition(ConditionType(fc.Type), fc.Value)
			if err != nil {
				return nil, fmt.Errorf("%w: funds[%d] %q condition %d: %v", ErrInvalidCatalogue, i, f.Name, j, err)
			}
			def.Conditions = append(def.Conditions, cond)
		}
		defs = append(defs, def)
	}
	return NewCatalogue(file.Version, defs)
}

// Marshal renders c in the file format Parse reads.
func Marshal(c *Catalogue) ([]byte, error) {
	file := fileCatalogue{Version: c.version}
	for _, d := range c.funds {
		f := fileFund{
			Name:         d.Name,
			Category:     string(d.Category),
			MaxAmount:    d.MaxAmount,
			InterestRate: d.InterestRate,
			Requirements: d.Requirements,
		}
		for _, cond := range d.Conditions {
			fc := fileCondition{Type: string(cond.Type)}
			if conditionBuilders[cond.Type].needsValue {
				v := cond.Threshold
				fc.Value = &v
			}
			f.Conditions = append(f.Conditions, fc)
		}
		file.Funds = append(file.Funds, f)
	}
	return yaml.Marshal(file)
}
