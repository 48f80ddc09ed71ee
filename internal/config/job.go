package config

import (
	"fmt"
	"os"

	"github.com/piwi3910/sheetnest/internal/model"
	"gopkg.in/yaml.v3"
)

// JobFile is the on-disk YAML description of a nesting job. Settings fields
// are pointers so an absent key inherits the application default rather than
// the zero value.
type JobFile struct {
	Name     string      `yaml:"name,omitempty"`
	Parts    []JobPart   `yaml:"parts"`
	Sheets   []JobSheet  `yaml:"sheets"`
	Settings JobSettings `yaml:"settings,omitempty"`
}

// JobPart is one part entry. Rotation defaults to allowed when omitted.
type JobPart struct {
	Label    string  `yaml:"label"`
	Width    float64 `yaml:"width"`
	Height   float64 `yaml:"height"`
	Quantity int     `yaml:"quantity,omitempty"`
	Rotation *bool   `yaml:"rotation,omitempty"`
}

// JobSheet is one stock sheet entry.
type JobSheet struct {
	Name     string  `yaml:"name,omitempty"`
	Width    float64 `yaml:"width"`
	Height   float64 `yaml:"height"`
	Quantity int     `yaml:"quantity,omitempty"`
}

// JobSettings overrides the default nesting settings field by field.
type JobSettings struct {
	Strategy         *string  `yaml:"strategy,omitempty"`
	Kerf             *float64 `yaml:"kerf,omitempty"`
	Margin           *float64 `yaml:"margin,omitempty"`
	PartOrder        *string  `yaml:"part_order,omitempty"`
	CutLineTolerance *float64 `yaml:"cut_line_tolerance,omitempty"`
	MinSpacing       *float64 `yaml:"min_spacing,omitempty"`
}

// LoadJob reads and resolves a YAML job file against the given defaults.
func LoadJob(path string, defaults model.Settings) ([]model.Part, []model.SheetDefinition, model.Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, model.Settings{}, fmt.Errorf("cannot read job file: %w", err)
	}

	var jf JobFile
	if err := yaml.Unmarshal(data, &jf); err != nil {
		return nil, nil, model.Settings{}, fmt.Errorf("cannot parse job file: %w", err)
	}
	return jf.Resolve(defaults)
}

// Resolve converts the file representation into model values, applying
// defaults for omitted fields.
func (jf JobFile) Resolve(defaults model.Settings) ([]model.Part, []model.SheetDefinition, model.Settings, error) {
	if len(jf.Parts) == 0 {
		return nil, nil, model.Settings{}, fmt.Errorf("job file defines no parts")
	}
	if len(jf.Sheets) == 0 {
		return nil, nil, model.Settings{}, fmt.Errorf("job file defines no sheets")
	}

	parts := make([]model.Part, 0, len(jf.Parts))
	for i, jp := range jf.Parts {
		qty := jp.Quantity
		if qty == 0 {
			qty = 1
		}
		label := jp.Label
		if label == "" {
			label = fmt.Sprintf("Part %d", i+1)
		}
		p := model.NewPart(label, jp.Width, jp.Height, qty)
		if jp.Rotation != nil {
			p.RotationAllowed = *jp.Rotation
		}
		parts = append(parts, p)
	}

	sheets := make([]model.SheetDefinition, 0, len(jf.Sheets))
	for i, js := range jf.Sheets {
		qty := js.Quantity
		if qty == 0 {
			qty = 1
		}
		name := js.Name
		if name == "" {
			name = fmt.Sprintf("Sheet %d", i+1)
		}
		sheets = append(sheets, model.NewSheetDefinition(name, js.Width, js.Height, qty))
	}

	settings := defaults
	if jf.Settings.Strategy != nil {
		settings.Strategy = model.Strategy(*jf.Settings.Strategy)
	}
	if jf.Settings.Kerf != nil {
		settings.Kerf = *jf.Settings.Kerf
	}
	if jf.Settings.Margin != nil {
		settings.Margin = *jf.Settings.Margin
	}
	if jf.Settings.PartOrder != nil {
		settings.PartOrder = model.PartOrder(*jf.Settings.PartOrder)
	}
	if jf.Settings.CutLineTolerance != nil {
		settings.CutLineTolerance = *jf.Settings.CutLineTolerance
	}
	if jf.Settings.MinSpacing != nil {
		settings.MinSpacing = *jf.Settings.MinSpacing
	}

	return parts, sheets, settings, nil
}

// SaveJob writes a job back to disk as YAML.
func SaveJob(path string, jf JobFile) error {
	data, err := yaml.Marshal(jf)
	if err != nil {
		return fmt.Errorf("cannot marshal job: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}
