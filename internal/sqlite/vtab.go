//go:build sqlite_vtable || vtable

package sqlite

import (
	"fmt"
	"strings"

	sqlite3 "github.com/mattn/go-sqlite3"

	"github.com/koskimas/norppa/internal/pg"
)

// tableFunc describes one table-valued function: its declared output
// columns and a function producing all rows for a given SQL input.
type tableFunc struct {
	name    string
	columns []string
	rows    func(input string) [][]string
}

func tableFuncs() []tableFunc {
	return []tableFunc{
		{
			name:    "parse_statements",
			columns: []string{"statement"},
			rows: func(input string) [][]string {
				stmts := pg.Statements(input)

				rows := make([][]string, 0, len(stmts))
				for _, s := range stmts {
					rows = append(rows, []string{s.Statement})
				}

				return rows
			},
		},
		{
			name:    "parse_tables",
			columns: []string{"table_name", "schema_name", "alias", "context"},
			rows: func(input string) [][]string {
				tables := pg.Tables(input)

				rows := make([][]string, 0, len(tables))
				for _, t := range tables {
					rows = append(rows, []string{t.Table, t.Schema, t.Alias, t.Context})
				}

				return rows
			},
		},
		{
			name:    "parse_where",
			columns: []string{"condition", "table_name", "context"},
			rows: func(input string) [][]string {
				conds := pg.WhereConditions(input)

				rows := make([][]string, 0, len(conds))
				for _, c := range conds {
					rows = append(rows, []string{c.Condition, c.Table, c.Context})
				}

				return rows
			},
		},
		{
			name:    "parse_where_detailed",
			columns: []string{"column_name", "operator", "value", "table_name", "context"},
			rows: func(input string) [][]string {
				conds := pg.WhereConditionsDetailed(input)

				rows := make([][]string, 0, len(conds))
				for _, c := range conds {
					rows = append(rows, []string{c.Column, c.Operator, c.Value, c.Table, c.Context})
				}

				return rows
			},
		},
		{
			name:    "parse_functions",
			columns: []string{"function_name", "schema_name", "context"},
			rows: func(input string) [][]string {
				calls := pg.FunctionCalls(input)

				rows := make([][]string, 0, len(calls))
				for _, c := range calls {
					rows = append(rows, []string{c.Function, c.Schema, c.Context})
				}

				return rows
			},
		},
	}
}

func registerTableFunctions(conn *sqlite3.SQLiteConn) error {
	for _, fn := range tableFuncs() {
		if err := conn.CreateModule(fn.name, &tableFuncModule{fn: fn}); err != nil {
			return fmt.Errorf(`failed to register table function "%s": %w`, fn.name, err)
		}
	}

	return nil
}

// tableFuncModule is an eponymous-only virtual table module wrapping one
// tableFunc. The declaration (bind), cursor allocation (init) and row
// materialization (execute) callbacks all dispatch to the wrapped function.
type tableFuncModule struct {
	fn tableFunc
}

func (m *tableFuncModule) Create(c *sqlite3.SQLiteConn, args []string) (sqlite3.VTab, error) {
	return m.Connect(c, args)
}

func (m *tableFuncModule) Connect(c *sqlite3.SQLiteConn, args []string) (sqlite3.VTab, error) {
	cols := make([]string, 0, len(m.fn.columns)+1)
	for _, col := range m.fn.columns {
		cols = append(cols, col+" TEXT")
	}

	// The hidden column carries the function argument.
	cols = append(cols, "sql TEXT HIDDEN")

	decl := fmt.Sprintf("CREATE TABLE %s (%s)", m.fn.name, strings.Join(cols, ", "))
	if err := c.DeclareVTab(decl); err != nil {
		return nil, fmt.Errorf(`failed to declare virtual table "%s": %w`, m.fn.name, err)
	}

	return &tableFuncTable{fn: m.fn}, nil
}

func (m *tableFuncModule) DestroyModule() {}

func (m *tableFuncModule) EponymousOnlyModule() {}

type tableFuncTable struct {
	fn tableFunc
}

func (t *tableFuncTable) BestIndex(csts []sqlite3.InfoConstraint, ob []sqlite3.InfoOrderBy) (*sqlite3.IndexResult, error) {
	used := make([]bool, len(csts))
	idxNum := 0

	for i, cst := range csts {
		if cst.Usable && cst.Op == sqlite3.OpEQ && cst.Column == len(t.fn.columns) {
			used[i] = true
			idxNum = 1
		}
	}

	return &sqlite3.IndexResult{
		IdxNum:        idxNum,
		IdxStr:        "sql",
		Used:          used,
		EstimatedCost: 1,
	}, nil
}

func (t *tableFuncTable) Open() (sqlite3.VTabCursor, error) {
	return &tableFuncCursor{fn: t.fn}, nil
}

func (t *tableFuncTable) Disconnect() error { return nil }
func (t *tableFuncTable) Destroy() error    { return nil }

type tableFuncCursor struct {
	fn   tableFunc
	rows [][]string
	row  int
}

func (c *tableFuncCursor) Filter(idxNum int, idxStr string, vals []any) error {
	c.row = 0
	c.rows = nil

	// Without the sql argument there is nothing to parse.
	if idxNum == 0 || len(vals) == 0 {
		return nil
	}

	input, ok := vals[0].(string)
	if !ok {
		return nil
	}

	c.rows = c.fn.rows(input)
	return nil
}

func (c *tableFuncCursor) Next() error {
	c.row++
	return nil
}

func (c *tableFuncCursor) EOF() bool {
	return c.row >= len(c.rows)
}

func (c *tableFuncCursor) Column(ctx *sqlite3.SQLiteContext, col int) error {
	row := c.rows[c.row]

	// The hidden argument column reads as null.
	if col < 0 || col >= len(row) {
		ctx.ResultNull()
		return nil
	}

	ctx.ResultText(row[col])
	return nil
}

func (c *tableFuncCursor) Rowid() (int64, error) {
	return int64(c.row), nil
}

func (c *tableFuncCursor) Close() error { return nil }
