// Package subscript implements the subscript/dimension table: registration
// of dimensions, aliases and indices, family resolution, and subscript-list
// normalization (normal order).
package subscript

// SubscriptLike is the shared trait of the two kinds of entry the table can
// hold. Dimension and Index both satisfy it; callers that only need a name
// and a family (e.g. normal-order sorting) can work against the interface
// without caring which concrete kind they were handed.
type SubscriptLike interface {
	SubName() string
	SubFamily() string
}

// Dimension is a named, ordered collection of indices, or (if ModelValue is
// empty) an alias that shares another dimension's indices.
type Dimension struct {
	Name       string
	Family     string // provisionally itself until family assignment runs
	ModelValue []string
	Value      []string
	Mappings   map[string][]string // target dimension name -> raw mapping tokens, as declared

	inverted map[string][]string // target dimension name -> inverted mapping, filled by Resolve
	isAlias  bool
	aliasOf  string // family name the alias was declared against, if any
}

// SubName implements SubscriptLike.
func (d *Dimension) SubName() string { return d.Name }

// SubFamily implements SubscriptLike.
func (d *Dimension) SubFamily() string { return d.Family }

// Size returns the number of indices in this dimension's resolved value.
func (d *Dimension) Size() int { return len(d.Value) }

// IsAlias reports whether this dimension was declared as an alias (its
// ModelValue was empty at declaration time).
func (d *Dimension) IsAlias() bool { return d.isAlias }

// InvertedMapping returns the inverted mapping computed for target
// dimension toDim during resolution, or nil if none was declared.
func (d *Dimension) InvertedMapping(toDim string) []string {
	return d.inverted[toDim]
}

// Index is a single named position within a family dimension.
type Index struct {
	Name   string
	Value  int // 0-based position within Family's Value list
	Family string
}

// SubName implements SubscriptLike.
func (i *Index) SubName() string { return i.Name }

// SubFamily implements SubscriptLike.
func (i *Index) SubFamily() string { return i.Family }
