package pg

// Statements parses sql and returns each top-level statement re-serialized
// as SQL text, in source order. Malformed input yields an empty result.
func Statements(sql string) []StatementResult {
	results := make([]StatementResult, 0)

	ast, err := parseSql(sql)
	if err != nil {
		return results
	}

	for _, stmt := range ast.GetStmts() {
		text, err := deparseStmt(ast.GetVersion(), stmt.GetStmt())
		if err != nil {
			continue
		}

		results = append(results, StatementResult{Statement: text})
	}

	return results
}

// CountStatements returns the number of records Statements returns for the
// same input.
func CountStatements(sql string) int {
	return len(Statements(sql))
}
