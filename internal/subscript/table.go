package subscript

import "sort"

// Table is the subscript/dimension table: the registry of dimensions,
// aliases and indices for one compilation, plus the resolution algorithm
// that turns raw declarations into a fully expanded, family-assigned form.
//
// A Table is built up with AddDimension/AddAlias calls, then Resolve is
// invoked once to expand values, assign families, register indices and
// invert mappings. Per the corpus's types.DimensionSet, lookups are
// by-name with insertion order preserved for deterministic iteration.
type Table struct {
	dims  map[string]*Dimension
	order []string

	indices     map[string]*Index
	indexOrder  []string
	dimFamilies map[string]string // external override: dimension name -> family name
	modelDir    string

	diagnostics []error // non-fatal errors collected during Resolve
}

// NewTable creates an empty subscript table.
func NewTable() *Table {
	return &Table{
		dims:    make(map[string]*Dimension),
		indices: make(map[string]*Index),
	}
}

// SetDimensionFamilies installs the spec's external dimensionFamilies
// override (canonical dimension name -> canonical family name).
func (t *Table) SetDimensionFamilies(families map[string]string) {
	t.dimFamilies = families
}

// SetModelDir records the model directory, used by collaborators resolving
// GET DIRECT SUBSCRIPT against sibling files. The table itself does not
// read the filesystem; it only carries the path through for callers.
func (t *Table) SetModelDir(dir string) {
	t.modelDir = dir
}

// ModelDir returns the model directory set via SetModelDir.
func (t *Table) ModelDir() string { return t.modelDir }

// AddDimension registers a non-alias dimension with its raw, unexpanded
// model-level subscript tokens and optional target-dimension mappings.
func (t *Table) AddDimension(name string, modelValue []string, mappings map[string][]string) error {
	if _, exists := t.dims[name]; exists {
		return &StructuralError{Name: name, Reason: "duplicate dimension declaration"}
	}
	t.dims[name] = &Dimension{
		Name:       name,
		Family:     name,
		ModelValue: append([]string(nil), modelValue...),
		Mappings:   mappings,
	}
	t.order = append(t.order, name)
	return nil
}

// AddAlias registers an alias dimension: one whose ModelValue is empty and
// whose Value/Size/ModelValue are inherited from familyName during Resolve.
func (t *Table) AddAlias(name string, familyName string) error {
	if _, exists := t.dims[name]; exists {
		return &StructuralError{Name: name, Reason: "duplicate dimension declaration"}
	}
	t.dims[name] = &Dimension{
		Name:    name,
		Family:  familyName,
		isAlias: true,
		aliasOf: familyName,
	}
	t.order = append(t.order, name)
	return nil
}

// AddIndex registers a single index directly at a fixed position within a
// family dimension. Resolve calls this internally for every index of every
// dimension equal to its own family; external callers rarely need it, but
// it is exposed for collaborators that pre-register indices (e.g. GET
// DIRECT SUBSCRIPT) ahead of full resolution.
func (t *Table) AddIndex(name string, position int, family string) {
	if _, exists := t.indices[name]; exists {
		return
	}
	t.indices[name] = &Index{Name: name, Value: position, Family: family}
	t.indexOrder = append(t.indexOrder, name)
}

// Sub looks up a dimension or index by canonical name.
func (t *Table) Sub(name string) (SubscriptLike, bool) {
	if d, ok := t.dims[name]; ok {
		return d, true
	}
	if i, ok := t.indices[name]; ok {
		return i, true
	}
	return nil, false
}

// IsDimension reports whether name was registered via AddDimension or AddAlias.
func (t *Table) IsDimension(name string) bool {
	_, ok := t.dims[name]
	return ok
}

// IsIndex reports whether name was registered as an index (directly, or by Resolve).
func (t *Table) IsIndex(name string) bool {
	_, ok := t.indices[name]
	return ok
}

// AllDimensions returns all dimensions (aliases included) in declaration order.
func (t *Table) AllDimensions() []*Dimension {
	out := make([]*Dimension, 0, len(t.order))
	for _, name := range t.order {
		out = append(out, t.dims[name])
	}
	return out
}

// AllAliases returns only alias dimensions, in declaration order.
func (t *Table) AllAliases() []*Dimension {
	var out []*Dimension
	for _, name := range t.order {
		if d := t.dims[name]; d.isAlias {
			out = append(out, d)
		}
	}
	return out
}

// Index looks up a registered index by name.
func (t *Table) Index(name string) (*Index, bool) {
	i, ok := t.indices[name]
	return i, ok
}

// FamilyOf returns the family name of a dimension or index, used by
// subscript-list normalization (normal order sorts by family name).
func (t *Table) FamilyOf(name string) (string, bool) {
	if d, ok := t.dims[name]; ok {
		return d.Family, true
	}
	if i, ok := t.indices[name]; ok {
		return i.Family, true
	}
	return "", false
}

// Diagnostics returns the non-fatal errors collected during the most
// recent Resolve call: out-of-range mapping-inversion positions and
// unknown mapping target dimensions.
func (t *Table) Diagnostics() []error {
	return t.diagnostics
}

// NormalOrder sorts a copy of tokens into normal order: ascending by each
// token's family name. Every position corresponds to exactly one family in
// a well-formed model, so no tie-break beyond family name is needed.
func (t *Table) NormalOrder(tokens []string) []string {
	sorted := append([]string(nil), tokens...)
	sort.SliceStable(sorted, func(i, j int) bool {
		fi, _ := t.FamilyOf(sorted[i])
		fj, _ := t.FamilyOf(sorted[j])
		return fi < fj
	})
	return sorted
}

// Resolve runs the five-step resolution algorithm (§4.2): expand dimension
// values, fill aliases, assign families, register indices, invert
// mappings. It is idempotent and may be called again after adding more
// dimensions; all derived state (Value, Family for non-overridden
// dimensions, registered indices, inverted mappings) is recomputed from
// scratch each call.
func (t *Table) Resolve() error {
	t.diagnostics = nil
	t.indices = make(map[string]*Index)
	t.indexOrder = nil

	// Steps 1+2: expand dimension values and fill aliases, via a single
	// memoized recursive resolver so a non-alias dimension may reference
	// an alias (and vice versa) in any declaration order.
	resolved := make(map[string][]string)
	visiting := make(map[string]bool)
	var resolveValue func(name string) ([]string, error)
	resolveValue = func(name string) ([]string, error) {
		if v, done := resolved[name]; done {
			return v, nil
		}
		if visiting[name] {
			return nil, &StructuralError{Name: name, Reason: "cycle in dimension expansion"}
		}
		dim, ok := t.dims[name]
		if !ok {
			return nil, &StructuralError{Name: name, Reason: "unknown dimension"}
		}
		visiting[name] = true
		defer delete(visiting, name)

		if dim.isAlias {
			famValue, err := resolveValue(dim.aliasOf)
			if err != nil {
				return nil, err
			}
			famDim := t.dims[dim.aliasOf]
			dim.ModelValue = append([]string(nil), famDim.ModelValue...)
			resolved[name] = famValue
			return famValue, nil
		}

		var out []string
		for _, tok := range dim.ModelValue {
			if t.IsDimension(tok) {
				sub, err := resolveValue(tok)
				if err != nil {
					return nil, err
				}
				out = append(out, sub...)
			} else {
				out = append(out, tok)
			}
		}
		resolved[name] = out
		return out, nil
	}

	for _, name := range t.order {
		v, err := resolveValue(name)
		if err != nil {
			return err
		}
		t.dims[name].Value = v
	}

	// Step 3: assign families.
	containing := make(map[string][]string) // index name -> dimension names containing it
	for _, name := range t.order {
		dim := t.dims[name]
		for _, idx := range dim.Value {
			containing[idx] = append(containing[idx], name)
		}
	}
	for _, name := range t.order {
		dim := t.dims[name]
		if fam, ok := t.dimFamilies[name]; ok {
			dim.Family = fam
			continue
		}
		if dim.isAlias {
			dim.Family = dim.aliasOf
			continue
		}
		if len(dim.Value) == 0 {
			dim.Family = name
			continue
		}
		first := dim.Value[0]
		candidates := append([]string(nil), containing[first]...)
		sort.Slice(candidates, func(i, j int) bool {
			si, sj := len(t.dims[candidates[i]].Value), len(t.dims[candidates[j]].Value)
			if si != sj {
				return si < sj
			}
			return candidates[i] > candidates[j]
		})
		dim.Family = candidates[len(candidates)-1]
	}

	// Step 4: register indices for dimensions equal to their own family.
	for _, name := range t.order {
		dim := t.dims[name]
		if dim.Family != name {
			continue
		}
		for pos, idxName := range dim.Value {
			t.AddIndex(idxName, pos, name)
		}
	}

	// Step 5: invert mappings.
	for _, name := range t.order {
		dim := t.dims[name]
		if len(dim.Mappings) == 0 {
			continue
		}
		dim.inverted = make(map[string][]string)
		for toDimName, mappingValue := range dim.Mappings {
			toDim, ok := t.dims[toDimName]
			if !ok {
				t.diagnostics = append(t.diagnostics, &StructuralError{Name: toDimName, Reason: "unknown mapping target dimension"})
				continue
			}
			if len(mappingValue) == 0 {
				dim.inverted[toDimName] = append([]string(nil), dim.Value...)
				continue
			}
			inv := make([]string, len(toDim.Value))
			for i, fromIndName := range dim.Value {
				if i >= len(mappingValue) {
					break
				}
				toToken := mappingValue[i]
				if t.IsDimension(toToken) {
					toTokenDim := t.dims[toToken]
					for _, toIndName := range toTokenDim.Value {
						pos := indexOf(toDim.Value, toIndName)
						if pos < 0 {
							t.diagnostics = append(t.diagnostics, &MappingError{FromDim: name, ToDim: toDimName, Token: toIndName})
							continue
						}
						inv[pos] = fromIndName
					}
				} else {
					pos := indexOf(toDim.Value, toToken)
					if pos < 0 {
						t.diagnostics = append(t.diagnostics, &MappingError{FromDim: name, ToDim: toDimName, Token: toToken})
						continue
					}
					inv[pos] = fromIndName
				}
			}
			dim.inverted[toDimName] = inv
		}
	}

	return nil
}

func indexOf(list []string, s string) int {
	for i, v := range list {
		if v == s {
			return i
		}
	}
	return -1
}
