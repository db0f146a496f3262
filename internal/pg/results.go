package pg

// StatementResult is one top-level statement re-serialized as SQL text.
type StatementResult struct {
	Statement string `yaml:"statement"`
}

// TableReferenceResult is one table reference and the clause context it
// appears in.
type TableReferenceResult struct {
	Table   string `yaml:"table"`
	Schema  string `yaml:"schema,omitempty"`
	Alias   string `yaml:"alias,omitempty"`
	Context string `yaml:"context"`
}

// WhereConditionResult is one WHERE or HAVING condition as raw SQL text.
// The table is a best-effort attribution and may be empty.
type WhereConditionResult struct {
	Condition string `yaml:"condition"`
	Table     string `yaml:"table,omitempty"`
	Context   string `yaml:"context"`
}

// DetailedWhereConditionResult is one WHERE or HAVING comparison decomposed
// into its parts.
type DetailedWhereConditionResult struct {
	Column   string `yaml:"column"`
	Operator string `yaml:"operator"`
	Value    string `yaml:"value"`
	Table    string `yaml:"table,omitempty"`
	Context  string `yaml:"context"`
}

// FunctionResult is one function invocation.
type FunctionResult struct {
	Function string `yaml:"function"`
	Schema   string `yaml:"schema,omitempty"`
	Context  string `yaml:"context"`
}
