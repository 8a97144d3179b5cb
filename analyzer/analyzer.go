// Package analyzer is the top-level context for one model compilation
// (§6): it owns the subscript table, variable table and name registry,
// wires the pipeline stages together in the order §2 describes, and
// exposes the query operations code generators and the CLI need.
package analyzer

import (
	"encoding/json"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/sdflow/modelanalyzer/internal/canon"
	"github.com/sdflow/modelanalyzer/internal/equation"
	"github.com/sdflow/modelanalyzer/internal/listing"
	"github.com/sdflow/modelanalyzer/internal/parsetree"
	"github.com/sdflow/modelanalyzer/internal/reader"
	"github.com/sdflow/modelanalyzer/internal/reference"
	"github.com/sdflow/modelanalyzer/internal/speccheck"
	"github.com/sdflow/modelanalyzer/internal/subscript"
	"github.com/sdflow/modelanalyzer/internal/topo"
	"github.com/sdflow/modelanalyzer/internal/vartable"
)

// Session identifies one Analyzer instance's lifetime. A fresh session id
// is minted whenever a new Analyzer is created or reset, so callers can
// tell two compilations in the same process apart.
type Session struct {
	ID uuid.UUID
}

// Options configure one Analyze call.
type Options struct {
	Spec          speccheck.Spec
	ExtData       map[string][]speccheck.Point
	ModelDir      string
	ReductionMode string // equation.ModeOff/ModeDefault/ModeAggressive; "" behaves like ModeDefault
}

// Analyzer is the context owning all tables for one compilation. It must
// be constructed with New and is not safe for concurrent use (§5: the
// core is single-threaded and synchronous).
type Analyzer struct {
	Names *canon.Registry
	Dims  *subscript.Table
	Vars  *vartable.Table

	Session Session

	evalOrder []string
}

// New creates a fresh Analyzer with empty tables and a new session id.
func New() *Analyzer {
	a := &Analyzer{
		Names: canon.NewRegistry(),
		Dims:  subscript.NewTable(),
		Vars:  vartable.New(),
	}
	a.Session = Session{ID: uuid.New()}
	return a
}

// Reset clears the variable table, the name registry and the evaluation
// order, minting a new session id, but leaves the dimension table alone
// (§5: the dimension table is reset by re-running resolution, not by
// reset()). This lets one process run multiple independent compilations.
func (a *Analyzer) Reset() {
	a.Vars.Reset()
	a.Names.Reset()
	a.evalOrder = nil
	a.Session = Session{ID: uuid.New()}
}

// Analyze runs the full pipeline (§2's data flow) against tree and opts,
// leaving the Analyzer populated with fully analyzed variables and ready
// for the query/listing operations below.
func (a *Analyzer) Analyze(tree *parsetree.Tree, opts Options) error {
	a.Dims.SetDimensionFamilies(opts.Spec.DimensionFamilies)
	a.Dims.SetModelDir(opts.ModelDir)

	rdr := reader.New(a.Names, a.Dims, a.Vars)
	for sourceVar, sourceDim := range opts.Spec.SpecialSeparationDims {
		rdr.SpecialSeparation[a.Names.Record(sourceVar)] = a.Names.Record(sourceDim)
	}

	if err := rdr.Read(tree); err != nil {
		return err
	}

	refs := reference.New(a.Dims, a.Vars)
	refs.DetectNonApplyToAll()
	refs.AssignRefIDs()

	eqReader := equation.New(a.Names, a.Dims, a.Vars, refs)
	eqReader.ReadAll()

	mode := opts.ReductionMode
	if mode == "" {
		mode = equation.ModeDefault
	}
	equation.NewReducer(a.Vars, mode).ReduceAll()

	checker := speccheck.New(a.Names, a.Vars, rdr, opts.ExtData)
	if err := checker.Check(opts.Spec); err != nil {
		return err
	}
	// Check may have added synthesized lookup equations through the
	// Variable Reader; assign their refIds and classify them the same way
	// as every other variable.
	refs.DetectNonApplyToAll()
	refs.AssignRefIDs()
	eqReader.ReadAll()
	if problems := checker.ResolveDuplicates(); len(problems) > 0 {
		return problems[0]
	}
	checker.EliminateDeadCode(opts.Spec)

	order, err := listing.EvaluationOrder(a.Vars, topo.New(a.Vars, a.Names))
	if err != nil {
		return err
	}
	a.evalOrder = order
	return nil
}

// VarNames returns every distinct canonical varName, sorted.
func (a *Analyzer) VarNames() []string { return a.Vars.AllVarNames() }

// VarsWithName returns every variant declared under name.
func (a *Analyzer) VarsWithName(name string) []*vartable.Variable { return a.Vars.VarsWithName(name) }

// VarWithRefID returns the variable whose refId exactly matches refID.
func (a *Analyzer) VarWithRefID(refID string) (*vartable.Variable, bool) {
	return a.Vars.VarWithRefID(refID)
}

// VensimName returns the recorded source spelling for a canonical name.
func (a *Analyzer) VensimName(cName string) string { return a.Names.VensimName(cName) }

// CName canonicalizes a source-level name, recording its spelling if this
// is the first time it has been seen.
func (a *Analyzer) CName(sourceName string) string { return a.Names.Record(sourceName) }

// VarIndexInfo returns the variable index map: 1-based indices assigned in
// listing order, with the entries sorted by varName.
func (a *Analyzer) VarIndexInfo() []listing.VarIndexEntry {
	return listing.VarIndexInfo(a.Vars, a.evalOrder)
}

// listingValue builds the full Listing value from the current evaluation
// order; it is the shared basis for both JSON and YAML serialization.
func (a *Analyzer) listingValue() listing.Listing {
	return listing.Build(a.Dims, a.Vars, a.evalOrder)
}

// JSONList returns the canonical, byte-stable JSON listing (§4.10).
func (a *Analyzer) JSONList() ([]byte, error) {
	return json.Marshal(a.listingValue())
}

// YAMLList returns the alternate YAML encoding of the same listing value.
func (a *Analyzer) YAMLList() ([]byte, error) {
	return yaml.Marshal(a.listingValue())
}
