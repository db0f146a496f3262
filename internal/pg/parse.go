package pg

import (
	"fmt"
	"strings"

	pg_query "github.com/pganalyze/pg_query_go/v5"
)

func parseSql(sql string) (*pg_query.ParseResult, error) {
	ast, err := pg_query.Parse(sql)
	if err != nil {
		return nil, fmt.Errorf(`failed to parse AST: %w`, err)
	}

	return ast, nil
}

// deparseStmt converts a single parsed statement back to SQL text.
func deparseStmt(version int32, stmt *pg_query.Node) (string, error) {
	sql, err := pg_query.Deparse(&pg_query.ParseResult{
		Version: version,
		Stmts:   []*pg_query.RawStmt{{Stmt: stmt}},
	})

	if err != nil {
		return "", fmt.Errorf(`failed to deparse statement: %w`, err)
	}

	return sql, nil
}

const exprSelectPrefix = "SELECT "

// deparseExpr converts an expression node back to SQL text. The deparser
// only accepts whole statements, so the expression is wrapped in a
// single-target SELECT whose prefix is stripped from the output.
func deparseExpr(version int32, expr *pg_query.Node) (string, error) {
	sql, err := pg_query.Deparse(&pg_query.ParseResult{
		Version: version,
		Stmts: []*pg_query.RawStmt{{
			Stmt: &pg_query.Node{Node: &pg_query.Node_SelectStmt{
				SelectStmt: &pg_query.SelectStmt{
					TargetList: []*pg_query.Node{{Node: &pg_query.Node_ResTarget{
						ResTarget: &pg_query.ResTarget{Val: expr},
					}}},
					Op:          pg_query.SetOperation_SETOP_NONE,
					LimitOption: pg_query.LimitOption_LIMIT_OPTION_DEFAULT,
				},
			}},
		}},
	})

	if err != nil {
		return "", fmt.Errorf(`failed to deparse expression: %w`, err)
	}

	return strings.TrimPrefix(sql, exprSelectPrefix), nil
}

func getString(node *pg_query.Node) string {
	return node.GetString_().GetSval()
}
