// Package speccheck implements the Spec Checker & Dead-Code Eliminator
// (§4.7) and duplicate-declaration resolution (§4.8).
package speccheck

// Spec is the recognized shape of the spec document (§6): an
// analysis-time, language-agnostic description of what a model is
// expected to expose. Name fields ending in "Names" are source-level and
// must be canonicalized before use; the non-"Names" variants are already
// canonical.
type Spec struct {
	InputVars     []string `yaml:"inputVars,omitempty" json:"inputVars,omitempty"`
	InputVarNames []string `yaml:"inputVarNames,omitempty" json:"inputVarNames,omitempty"`

	OutputVars     []string `yaml:"outputVars,omitempty" json:"outputVars,omitempty"`
	OutputVarNames []string `yaml:"outputVarNames,omitempty" json:"outputVarNames,omitempty"`

	SpecialSeparationDims map[string]string `yaml:"specialSeparationDims,omitempty" json:"specialSeparationDims,omitempty"` // source varName -> source dimension name
	DimensionFamilies     map[string]string `yaml:"dimensionFamilies,omitempty" json:"dimensionFamilies,omitempty"`         // canonical dimension name -> canonical family name

	Bindings map[string]any `yaml:"bindings,omitempty" json:"bindings,omitempty"`
}
