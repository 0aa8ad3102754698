// Package policy holds the per-category agreement policies the verdict
// engine scores against. Policies are static configuration: an embedded YAML
// table ships sensible defaults, and deployments can override it with a file.
package policy

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/dmorandell/innkeeper/internal/innkeeper/domain"
)

//go:embed policies.yaml
var defaultPoliciesYAML []byte

// SlotPolicy configures the weighted slot-agreement check of one category.
type SlotPolicy struct {
	// Weights assigns each slot field its share in the agreement ratio.
	// Fields absent from the map do not participate.
	Weights map[domain.SlotField]float64 `yaml:"weights"`
	// MinSlotConfidence is the confidence the model side must assign a field
	// for it to count as agreed.
	MinSlotConfidence float64 `yaml:"minSlotConfidence"`
	// MinWeightedAgreement is the ratio threshold for overall agreement.
	MinWeightedAgreement float64 `yaml:"minWeightedAgreement"`
}

// CategoryPolicy is the full agreement policy for one intent category.
type CategoryPolicy struct {
	// IntentMinAgree is the minimum intent confidence both sides must reach.
	IntentMinAgree float64 `yaml:"intentMinAgree"`
	// ActionMustMatch forces desired-action equality for this category.
	// Cancellation actions must match regardless of this flag.
	ActionMustMatch bool       `yaml:"actionMustMatch"`
	Slots           SlotPolicy `yaml:"slots"`
}

// Table maps categories to their policies, with a generic fallback for
// categories the table does not name.
type Table struct {
	Default    CategoryPolicy                     `yaml:"default"`
	Categories map[domain.Category]CategoryPolicy `yaml:"categories"`
}

// For returns the policy for cat, falling back to the generic default.
func (t *Table) For(cat domain.Category) CategoryPolicy {
	if p, ok := t.Categories[cat]; ok {
		return p
	}
	return t.Default
}

// Parse decodes and validates a policy table from YAML.
func Parse(data []byte) (*Table, error) {
	var t Table
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("policy parse: %w", err)
	}
	if err := validate(&t); err != nil {
		return nil, err
	}
	return &t, nil
}

// LoadFile reads a policy table from disk.
func LoadFile(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("policy load: %w", err)
	}
	return Parse(data)
}

// Default returns the embedded policy table. Panics only when the embedded
// YAML is broken, which is a build defect, not a runtime condition.
func Default() *Table {
	t, err := Parse(defaultPoliciesYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded policy table invalid: %v", err))
	}
	return t
}

func validate(t *Table) error {
	if err := validatePolicy("default", t.Default); err != nil {
		return err
	}
	for cat, p := range t.Categories {
		if err := validatePolicy(string(cat), p); err != nil {
			return err
		}
	}
	return nil
}

func validatePolicy(name string, p CategoryPolicy) error {
	if p.IntentMinAgree < 0 || p.IntentMinAgree > 1 {
		return fmt.Errorf("policy %s: intentMinAgree %v out of [0,1]", name, p.IntentMinAgree)
	}
	if p.Slots.MinSlotConfidence < 0 || p.Slots.MinSlotConfidence > 1 {
		return fmt.Errorf("policy %s: minSlotConfidence %v out of [0,1]", name, p.Slots.MinSlotConfidence)
	}
	if p.Slots.MinWeightedAgreement < 0 || p.Slots.MinWeightedAgreement > 1 {
		return fmt.Errorf("policy %s: minWeightedAgreement %v out of [0,1]", name, p.Slots.MinWeightedAgreement)
	}
	for field, w := range p.Slots.Weights {
		if w < 0 || w > 1 {
			return fmt.Errorf("policy %s: weight for %s is %v, out of [0,1]", name, field, w)
		}
	}
	return nil
}
