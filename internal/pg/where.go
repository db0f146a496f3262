package pg

import (
	pg_query "github.com/pganalyze/pg_query_go/v5"
)

// filterClause is one WHERE or HAVING expression together with the tables
// that were in scope for it.
type filterClause struct {
	expr    *pg_query.Node
	context string
	scope   []TableReferenceResult
}

// WhereConditions parses sql and returns one record per WHERE/HAVING
// condition as raw SQL text. Top-level AND chains are split into individual
// conditions; other boolean shapes are reported whole. Malformed input
// yields an empty result.
func WhereConditions(sql string) []WhereConditionResult {
	results := make([]WhereConditionResult, 0)

	ast, err := parseSql(sql)
	if err != nil {
		return results
	}

	for _, stmt := range ast.GetStmts() {
		for _, fc := range filterClauses(stmt.GetStmt()) {
			for _, cond := range splitConditions(fc.expr) {
				text, err := deparseExpr(ast.GetVersion(), cond)
				if err != nil {
					continue
				}

				results = append(results, WhereConditionResult{
					Condition: text,
					Table:     attributeTable(cond, fc.scope),
					Context:   fc.context,
				})
			}
		}
	}

	return results
}

// WhereConditionsDetailed parses sql and decomposes each WHERE/HAVING
// comparison into (column, operator, value). Conditions that aren't simple
// binary comparisons are skipped. Malformed input yields an empty result.
func WhereConditionsDetailed(sql string) []DetailedWhereConditionResult {
	results := make([]DetailedWhereConditionResult, 0)

	ast, err := parseSql(sql)
	if err != nil {
		return results
	}

	for _, stmt := range ast.GetStmts() {
		for _, fc := range filterClauses(stmt.GetStmt()) {
			for _, cond := range splitConditions(fc.expr) {
				detail, ok := decomposeCondition(ast.GetVersion(), cond)
				if !ok {
					continue
				}

				detail.Table = attributeTable(cond, fc.scope)
				detail.Context = fc.context
				results = append(results, detail)
			}
		}
	}

	return results
}

func filterClauses(stmt *pg_query.Node) []filterClause {
	clauses := make([]filterClause, 0)

	switch n := stmt.GetNode().(type) {
	case *pg_query.Node_SelectStmt:
		collectSelectFilters(n.SelectStmt, &clauses)
	case *pg_query.Node_UpdateStmt:
		collectCTEFilters(n.UpdateStmt.GetWithClause(), &clauses)
		addFilter(&clauses, n.UpdateStmt.GetWhereClause(), ContextWhere,
			tableScope(n.UpdateStmt.GetRelation(), n.UpdateStmt.GetFromClause()))
	case *pg_query.Node_DeleteStmt:
		collectCTEFilters(n.DeleteStmt.GetWithClause(), &clauses)
		addFilter(&clauses, n.DeleteStmt.GetWhereClause(), ContextWhere,
			tableScope(n.DeleteStmt.GetRelation(), n.DeleteStmt.GetUsingClause()))
	}

	return clauses
}

func collectSelectFilters(stmt *pg_query.SelectStmt, out *[]filterClause) {
	if stmt == nil {
		return
	}

	collectCTEFilters(stmt.GetWithClause(), out)

	scope := tableScope(nil, stmt.GetFromClause())
	addFilter(out, stmt.GetWhereClause(), ContextWhere, scope)
	addFilter(out, stmt.GetHavingClause(), ContextHaving, scope)

	collectSelectFilters(stmt.GetLarg(), out)
	collectSelectFilters(stmt.GetRarg(), out)
}

func collectCTEFilters(with *pg_query.WithClause, out *[]filterClause) {
	for _, cte := range with.GetCtes() {
		collectSelectFilters(cte.GetCommonTableExpr().GetCtequery().GetSelectStmt(), out)
	}
}

func addFilter(out *[]filterClause, expr *pg_query.Node, context string, scope []TableReferenceResult) {
	if expr == nil {
		return
	}

	*out = append(*out, filterClause{expr: expr, context: context, scope: scope})
}

// tableScope collects the base tables visible to a filter expression: the
// optional DML target relation plus all tables in the FROM/USING join trees.
// Derived tables are skipped since conditions can't be attributed to them
// by name.
func tableScope(relation *pg_query.RangeVar, from []*pg_query.Node) []TableReferenceResult {
	scope := make([]TableReferenceResult, 0)

	if relation != nil {
		addTableFromRangeVar(relation, ContextFrom, &scope)
	}

	for _, f := range from {
		addScopeTables(f, &scope)
	}

	return scope
}

func addScopeTables(node *pg_query.Node, out *[]TableReferenceResult) {
	switch n := node.GetNode().(type) {
	case *pg_query.Node_RangeVar:
		addTableFromRangeVar(n.RangeVar, ContextFrom, out)
	case *pg_query.Node_JoinExpr:
		addScopeTables(n.JoinExpr.GetLarg(), out)
		addScopeTables(n.JoinExpr.GetRarg(), out)
	}
}

// splitConditions breaks a top-level AND chain into its individual
// conditions. Anything else (OR trees, NOT, single comparisons) is returned
// as one condition.
func splitConditions(expr *pg_query.Node) []*pg_query.Node {
	if b := expr.GetBoolExpr(); b != nil && b.GetBoolop() == pg_query.BoolExprType_AND_EXPR {
		conds := make([]*pg_query.Node, 0, len(b.GetArgs()))
		for _, arg := range b.GetArgs() {
			conds = append(conds, splitConditions(arg)...)
		}

		return conds
	}

	return []*pg_query.Node{expr}
}

// The parser surfaces some operators in their internal Postgres spelling.
var operatorNames = map[string]string{
	"~~":   "LIKE",
	"!~~":  "NOT LIKE",
	"~~*":  "ILIKE",
	"!~~*": "NOT ILIKE",
}

// decomposeCondition breaks a simple <column> <op> <value> comparison into
// its parts.
func decomposeCondition(version int32, cond *pg_query.Node) (DetailedWhereConditionResult, bool) {
	var detail DetailedWhereConditionResult

	expr := cond.GetAExpr()
	if expr == nil || len(expr.GetName()) == 0 || expr.GetRexpr() == nil {
		return detail, false
	}

	ref := expr.GetLexpr().GetColumnRef()
	if ref == nil || len(ref.GetFields()) == 0 {
		return detail, false
	}

	value, err := deparseExpr(version, expr.GetRexpr())
	if err != nil {
		return detail, false
	}

	operator := getString(expr.GetName()[len(expr.GetName())-1])
	if name, ok := operatorNames[operator]; ok {
		operator = name
	}

	fields := ref.GetFields()
	detail.Column = getString(fields[len(fields)-1])
	detail.Operator = operator
	detail.Value = value

	return detail, true
}

// attributeTable resolves the table a condition applies to. An explicit
// column qualifier wins; otherwise the only table in scope, if any.
func attributeTable(cond *pg_query.Node, scope []TableReferenceResult) string {
	if q := firstColumnQualifier(cond); q != "" {
		for _, t := range scope {
			if t.Alias == q || (t.Alias == "" && t.Table == q) {
				return t.Table
			}
		}

		return q
	}

	if len(scope) == 1 {
		return scope[0].Table
	}

	return ""
}

func firstColumnQualifier(node *pg_query.Node) string {
	switch n := node.GetNode().(type) {
	case *pg_query.Node_ColumnRef:
		f := n.ColumnRef.GetFields()
		if len(f) >= 2 {
			return getString(f[len(f)-2])
		}
	case *pg_query.Node_AExpr:
		if q := firstColumnQualifier(n.AExpr.GetLexpr()); q != "" {
			return q
		}

		return firstColumnQualifier(n.AExpr.GetRexpr())
	case *pg_query.Node_BoolExpr:
		for _, arg := range n.BoolExpr.GetArgs() {
			if q := firstColumnQualifier(arg); q != "" {
				return q
			}
		}
	case *pg_query.Node_FuncCall:
		for _, arg := range n.FuncCall.GetArgs() {
			if q := firstColumnQualifier(arg); q != "" {
				return q
			}
		}
	case *pg_query.Node_NullTest:
		return firstColumnQualifier(n.NullTest.GetArg())
	case *pg_query.Node_TypeCast:
		return firstColumnQualifier(n.TypeCast.GetArg())
	}

	return ""
}
