package model

// Rule represents a single governance check
type Rule interface {
	// ID returns the unique identifier of the rule, e.g. "OBJECT_PREFIX"
	ID() string
	// Check examines one schema object and returns any findings.
	// It must be pure: no mutation of the object, no shared state.
	Check(obj *SchemaObject) []Finding
}

// Reporter defines how to output results
type Reporter interface {
	Report(r *Report) error
}
