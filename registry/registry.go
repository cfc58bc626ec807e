package registry

import (
	"regexp"

	"github.com/patchbay/enginecore/diag"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var kebabRe = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

var titleCaser = cases.Title(language.English)

// archetypesAllowingControl lists archetypes whose layout makes room for
// control input ports. Any archetype outside this set with ControlPorts > 0
// is a REG_CONTROL_ON_DISALLOWED_LAYOUT error.
var archetypesAllowingControl = map[Archetype]bool{
	SingleIOControl: true,
	MultiOut6Ctrl:   true,
	Custom:          true,
}

// Registry is the static, validated node-type catalog. It is immutable
// after New returns a valid one; there is no ambient global instance — every
// layer that needs it receives a *Registry explicitly.
type Registry struct {
	byType map[string]NodeTypeDef
	order  []string // insertion order, for deterministic iteration/printing
}

// New validates defs and builds a Registry, or returns the accumulated
// REG_* issues and no registry. Validation never stops at the first error —
// every definition is checked so a caller sees the whole picture at once.
func New(defs []NodeTypeDef) diag.Result[*Registry] {
	var errs []diag.Issue
	seen := make(map[string]bool, len(defs))
	reg := &Registry{byType: make(map[string]NodeTypeDef, len(defs))}

	for _, def := range defs {
		entityErrs := validateDef(def, seen)
		if len(entityErrs) > 0 {
			errs = append(errs, entityErrs...)
			continue
		}
		seen[def.Type] = true
		reg.byType[def.Type] = def
		reg.order = append(reg.order, def.Type)
	}

	if len(errs) > 0 {
		return diag.Failed[*Registry](errs...)
	}
	return diag.Ok(reg)
}

func validateDef(def NodeTypeDef, seen map[string]bool) []diag.Issue {
	var errs []diag.Issue
	add := func(code diag.Code, msg string) {
		errs = append(errs, diag.Issue{Code: code, Message: msg, EntityID: def.Type, OpIndex: -1})
	}

	if def.Type == "" {
		add(CodeMissingField, "node type is missing a type key")
		return errs
	}
	if seen[def.Type] {
		add(CodeDuplicateType, "duplicate node type "+def.Type)
	}
	if !kebabRe.MatchString(def.Type) {
		add(CodeNotKebabCase, "node type must be kebab-case: "+def.Type)
	}

	switch def.Archetype {
	case SingleIO, SingleIOControl, SingleIn, MultiOut6, MultiOut6Ctrl, MultiIn6, Custom:
	default:
		add(CodeInvalidArchetype, "unknown archetype "+string(def.Archetype))
	}

	if def.ControlPorts > 0 && !archetypesAllowingControl[def.Archetype] {
		add(CodeControlDisallowed, "control ports not allowed on archetype "+string(def.Archetype))
	}

	if def.ControlOutput && def.Outputs == 0 {
		add(CodePortCountMismatch, "controlOutput requires at least one output")
	}

	switch def.Archetype {
	case MultiOut6, MultiOut6Ctrl:
		if def.Outputs != 6 {
			add(CodePortCountMismatch, "multi-out-6 archetypes must declare 6 outputs")
		}
	case MultiIn6:
		if def.Inputs != 6 {
			add(CodePortCountMismatch, "multi-in-6 archetype must declare 6 inputs")
		}
	case SingleIO, SingleIOControl:
		if def.Inputs != 1 || def.Outputs != 1 {
			add(CodePortCountMismatch, "single-io archetypes must declare 1 input and 1 output")
		}
	case SingleIn:
		if def.Inputs != 1 || def.Outputs != 0 {
			add(CodePortCountMismatch, "single-in archetype must declare 1 input and 0 outputs")
		}
	}

	if def.OnSignal == nil {
		add(CodeMissingOnSignal, "node type is missing onSignal")
	}

	if def.DefaultParam < 1 || def.DefaultParam > 8 {
		add(CodeDefaultParamInvalid, "defaultParam must be in 1..=8")
	}

	return errs
}

// Lookup returns the definition for a type key, or false if it is unknown.
func (r *Registry) Lookup(typeKey string) (NodeTypeDef, bool) {
	def, ok := r.byType[typeKey]
	return def, ok
}

// Types returns all registered type keys in registration order.
func (r *Registry) Types() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// DisplayLabel normalizes a free-form category/archetype name to title case
// for diagnostics and UI surfaces, e.g. "pulse generators" -> "Pulse Generators".
func DisplayLabel(s string) string {
	return titleCaser.String(s)
}
