package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sdflow/modelanalyzer/internal/errs"
)

// CLIError is a user-friendly CLI error with context and suggestions,
// wrapping whichever of the six analyzer error kinds triggered it.
type CLIError struct {
	Operation   string
	Cause       string
	Details     string
	Suggestions []string
	Underlying  error
}

func (e *CLIError) Error() string {
	var msg strings.Builder

	if e.Operation != "" {
		msg.WriteString(fmt.Sprintf("Failed to %s", e.Operation))
	} else {
		msg.WriteString("Operation failed")
	}

	if e.Cause != "" {
		msg.WriteString(fmt.Sprintf(": %s", e.Cause))
	}
	if e.Details != "" {
		msg.WriteString(fmt.Sprintf(" (%s)", e.Details))
	}

	if len(e.Suggestions) > 0 {
		msg.WriteString("\n\nSuggestions:")
		for i, suggestion := range e.Suggestions {
			msg.WriteString(fmt.Sprintf("\n  %d. %s", i+1, suggestion))
		}
	}

	return msg.String()
}

func (e *CLIError) Unwrap() error { return e.Underlying }

// WrapError classifies err against the six analyzer error kinds and
// attaches operation-appropriate suggestions. Unrecognized errors fall
// back to a generic wrap so every failure path still prints the same way.
func WrapError(operation string, err error) error {
	if err == nil {
		return nil
	}

	var structuralErr *errs.StructuralError
	var unknownRefErr *errs.UnknownReference
	var specMismatchErr *errs.SpecMismatch
	var typeConflictErr *errs.TypeConflict
	var parseErr *errs.ParseError
	var cycleErr *errs.Cycle

	switch {
	case errors.As(err, &structuralErr):
		return &CLIError{
			Operation: operation,
			Cause:     fmt.Sprintf("structural error in %q at stage %q: %s", structuralErr.Source, structuralErr.Stage, structuralErr.Reason),
			Suggestions: []string{
				"Check the model's dimension and equation declarations for the named variable",
			},
			Underlying: err,
		}
	case errors.As(err, &unknownRefErr):
		return &CLIError{
			Operation: operation,
			Cause:     fmt.Sprintf("%q references unknown name %q at stage %q", unknownRefErr.Source, unknownRefErr.RefID, unknownRefErr.Stage),
			Suggestions: []string{
				"Verify every referenced variable or dimension is declared in the model",
			},
			Underlying: err,
		}
	case errors.As(err, &specMismatchErr):
		return &CLIError{
			Operation: operation,
			Cause:     fmt.Sprintf("spec field %q names %q, which the model does not declare and no external data supplies", specMismatchErr.Field, specMismatchErr.Source),
			Suggestions: []string{
				"Add the variable to the model, or supply external data for it",
				"Check the spec file for typos in variable names",
			},
			Underlying: err,
		}
	case errors.As(err, &typeConflictErr):
		return &CLIError{
			Operation: operation,
			Cause:     fmt.Sprintf("%q has conflicting declarations at stage %q: %s", typeConflictErr.Source, typeConflictErr.Stage, typeConflictErr.Reason),
			Suggestions: []string{
				"Give the conflicting declarations distinct names, or remove the duplicate",
			},
			Underlying: err,
		}
	case errors.As(err, &parseErr):
		details := ""
		if cause := errors.Unwrap(parseErr); cause != nil {
			details = cause.Error()
		}
		return &CLIError{
			Operation:  operation,
			Cause:      fmt.Sprintf("%q could not be parsed at stage %q", parseErr.Source, parseErr.Stage),
			Details:    details,
			Underlying: err,
		}
	case errors.As(err, &cycleErr):
		return &CLIError{
			Operation: operation,
			Cause:     fmt.Sprintf("cyclic dependency detected at %q involving %q (phase %q)", cycleErr.Stage, cycleErr.Source, cycleErr.Phase),
			Suggestions: []string{
				"Break the cycle by introducing a delay (e.g. wrap one reference in INTEG or a SMOOTH function)",
			},
			Underlying: err,
		}
	default:
		return &CLIError{
			Operation:  operation,
			Cause:      "analysis failed",
			Details:    err.Error(),
			Underlying: err,
		}
	}
}

var CommonSuggestions = struct {
	CheckSpec  string
	CheckModel string
	RunHelp    string
}{
	CheckSpec:  "Verify --spec points to a valid spec file",
	CheckModel: "Verify --model points to a valid parsed model file",
	RunHelp:    "Run the command with --help for usage information",
}
