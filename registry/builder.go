package registry

// Builder assembles a Registry programmatically with a fluent With* chain:
// each With* returns a modified copy, and Build performs validation exactly
// once at the end.
type Builder struct {
	defs []NodeTypeDef
}

// NewBuilder returns an empty Builder.
func NewBuilder() Builder {
	return Builder{}
}

// WithType appends one node type definition.
func (b Builder) WithType(def NodeTypeDef) Builder {
	b.defs = append(b.defs, def)
	return b
}

// WithTypes appends several node type definitions at once, e.g. the ones
// decoded from a YAML catalog by LoadCatalogYAML.
func (b Builder) WithTypes(defs []NodeTypeDef) Builder {
	b.defs = append(b.defs, defs...)
	return b
}

// Build validates the accumulated definitions and returns the Registry, or
// the accumulated REG_* issues.
func (b Builder) Build() (*Registry, []error) {
	result := New(b.defs)
	if result.OK {
		return result.Value, nil
	}
	errs := make([]error, len(result.Errors))
	for i, issue := range result.Errors {
		errs[i] = &regError{issue}
	}
	return nil, errs
}

type regError struct{ issue interface{ String() string } }

func (e *regError) Error() string { return e.issue.String() }
