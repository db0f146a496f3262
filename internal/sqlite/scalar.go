package sqlite

import (
	"encoding/json"
	"fmt"

	sqlite3 "github.com/mattn/go-sqlite3"

	"github.com/koskimas/norppa/internal/pg"
)

// registerScalarFunctions installs the scalar counterparts of the table
// functions. List results are returned as JSON array text, SQLite's list
// idiom. None of these ever raise an error: malformed SQL yields an empty
// list or a zero count.
func registerScalarFunctions(conn *sqlite3.SQLiteConn) error {
	scalars := []struct {
		name string
		impl any
	}{
		{"parse_statements", func(input string) string {
			return jsonList(statementTexts(input))
		}},
		{"parse_tables", func(input string) string {
			return jsonList(tableNames(input))
		}},
		{"parse_where", func(input string) string {
			return jsonList(conditionTexts(input))
		}},
		{"parse_functions", func(input string) string {
			return jsonList(functionNames(input))
		}},
		{"num_statements", func(input string) int64 {
			return int64(pg.CountStatements(input))
		}},
	}

	for _, s := range scalars {
		if err := conn.RegisterFunc(s.name, s.impl, true); err != nil {
			return fmt.Errorf(`failed to register scalar function "%s": %w`, s.name, err)
		}
	}

	return nil
}

func jsonList(items []string) string {
	data, err := json.Marshal(items)
	if err != nil {
		return "[]"
	}

	return string(data)
}

func statementTexts(input string) []string {
	stmts := pg.Statements(input)

	texts := make([]string, 0, len(stmts))
	for _, s := range stmts {
		texts = append(texts, s.Statement)
	}

	return texts
}

func tableNames(input string) []string {
	tables := pg.Tables(input)

	names := make([]string, 0, len(tables))
	for _, t := range tables {
		name := t.Table
		if t.Schema != "" {
			name = t.Schema + "." + name
		}

		names = append(names, name)
	}

	return names
}

func conditionTexts(input string) []string {
	conds := pg.WhereConditions(input)

	texts := make([]string, 0, len(conds))
	for _, c := range conds {
		texts = append(texts, c.Condition)
	}

	return texts
}

func functionNames(input string) []string {
	calls := pg.FunctionCalls(input)

	names := make([]string, 0, len(calls))
	for _, c := range calls {
		name := c.Function
		if c.Schema != "" {
			name = c.Schema + "." + name
		}

		names = append(names, name)
	}

	return names
}
