package pg

import (
	pg_query "github.com/pganalyze/pg_query_go/v5"
)

// Clause context labels used in extracted records.
const (
	ContextFrom     = "FROM"
	ContextJoin     = "JOIN"
	ContextSubquery = "SUBQUERY"
	ContextCTE      = "CTE"
	ContextInsert   = "INSERT"
	ContextUpdate   = "UPDATE"
	ContextDelete   = "DELETE"
	ContextSelect   = "SELECT"
	ContextValues   = "VALUES"
	ContextWhere    = "WHERE"
	ContextHaving   = "HAVING"
	ContextGroupBy  = "GROUP BY"
	ContextOrderBy  = "ORDER BY"
)

// Tables parses sql and returns one record per referenced table with the
// clause context the reference appears in. Base tables, both sides of join
// trees, derived tables, CTE bodies and DML target relations are all
// covered. Malformed input yields an empty result.
func Tables(sql string) []TableReferenceResult {
	results := make([]TableReferenceResult, 0)

	ast, err := parseSql(sql)
	if err != nil {
		return results
	}

	for _, stmt := range ast.GetStmts() {
		addTablesFromStmt(stmt.GetStmt(), &results)
	}

	return results
}

func addTablesFromStmt(stmt *pg_query.Node, out *[]TableReferenceResult) {
	switch n := stmt.GetNode().(type) {
	case *pg_query.Node_SelectStmt:
		addTablesFromSelect(n.SelectStmt, ContextFrom, out)
	case *pg_query.Node_InsertStmt:
		addTablesFromInsert(n.InsertStmt, out)
	case *pg_query.Node_UpdateStmt:
		addTablesFromUpdate(n.UpdateStmt, out)
	case *pg_query.Node_DeleteStmt:
		addTablesFromDelete(n.DeleteStmt, out)
	}
}

func addTablesFromSelect(stmt *pg_query.SelectStmt, context string, out *[]TableReferenceResult) {
	if stmt == nil {
		return
	}

	for _, cte := range stmt.GetWithClause().GetCtes() {
		addTablesFromCTE(cte.GetCommonTableExpr(), out)
	}

	for _, f := range stmt.GetFromClause() {
		addTablesFromNode(f, context, out)
	}

	addTablesFromExpr(stmt.GetWhereClause(), out)
	addTablesFromExpr(stmt.GetHavingClause(), out)

	// UNION/INTERSECT/EXCEPT branches.
	addTablesFromSelect(stmt.GetLarg(), context, out)
	addTablesFromSelect(stmt.GetRarg(), context, out)
}

func addTablesFromCTE(cte *pg_query.CommonTableExpr, out *[]TableReferenceResult) {
	switch n := cte.GetCtequery().GetNode().(type) {
	case *pg_query.Node_SelectStmt:
		addTablesFromSelect(n.SelectStmt, ContextCTE, out)
	default:
		addTablesFromStmt(cte.GetCtequery(), out)
	}
}

func addTablesFromNode(node *pg_query.Node, context string, out *[]TableReferenceResult) {
	switch n := node.GetNode().(type) {
	case *pg_query.Node_RangeVar:
		addTableFromRangeVar(n.RangeVar, context, out)
	case *pg_query.Node_JoinExpr:
		addTablesFromJoinExpr(n.JoinExpr, context, out)
	case *pg_query.Node_RangeSubselect:
		addTablesFromSelect(n.RangeSubselect.GetSubquery().GetSelectStmt(), ContextSubquery, out)
	}
}

func addTablesFromJoinExpr(j *pg_query.JoinExpr, context string, out *[]TableReferenceResult) {
	addTablesFromNode(j.GetLarg(), context, out)

	// Only the left-most table of a top-level join tree keeps the FROM
	// label; everything joined onto it is labeled JOIN. Inside subqueries
	// and CTEs the surrounding context wins.
	rargContext := context
	if context == ContextFrom {
		rargContext = ContextJoin
	}

	addTablesFromNode(j.GetRarg(), rargContext, out)
	addTablesFromExpr(j.GetQuals(), out)
}

// addTablesFromExpr finds tables referenced by subqueries inside filter and
// join expressions.
func addTablesFromExpr(expr *pg_query.Node, out *[]TableReferenceResult) {
	if expr == nil {
		return
	}

	switch n := expr.GetNode().(type) {
	case *pg_query.Node_SubLink:
		addTablesFromStmtAsSubquery(n.SubLink.GetSubselect(), out)
	case *pg_query.Node_BoolExpr:
		for _, arg := range n.BoolExpr.GetArgs() {
			addTablesFromExpr(arg, out)
		}
	case *pg_query.Node_AExpr:
		addTablesFromExpr(n.AExpr.GetLexpr(), out)
		addTablesFromExpr(n.AExpr.GetRexpr(), out)
	case *pg_query.Node_FuncCall:
		for _, arg := range n.FuncCall.GetArgs() {
			addTablesFromExpr(arg, out)
		}
	}
}

func addTablesFromStmtAsSubquery(stmt *pg_query.Node, out *[]TableReferenceResult) {
	if sel := stmt.GetSelectStmt(); sel != nil {
		addTablesFromSelect(sel, ContextSubquery, out)
	}
}

func addTableFromRangeVar(r *pg_query.RangeVar, context string, out *[]TableReferenceResult) {
	if r == nil {
		return
	}

	*out = append(*out, TableReferenceResult{
		Table:   r.GetRelname(),
		Schema:  r.GetSchemaname(),
		Alias:   r.GetAlias().GetAliasname(),
		Context: context,
	})
}

func addTablesFromInsert(stmt *pg_query.InsertStmt, out *[]TableReferenceResult) {
	for _, cte := range stmt.GetWithClause().GetCtes() {
		addTablesFromCTE(cte.GetCommonTableExpr(), out)
	}

	addTableFromRangeVar(stmt.GetRelation(), ContextInsert, out)

	// INSERT ... SELECT source tables. For INSERT ... VALUES the statement
	// is there too but has no FROM clause.
	if sel := stmt.GetSelectStmt().GetSelectStmt(); sel != nil {
		addTablesFromSelect(sel, ContextFrom, out)
	}
}

func addTablesFromUpdate(stmt *pg_query.UpdateStmt, out *[]TableReferenceResult) {
	for _, cte := range stmt.GetWithClause().GetCtes() {
		addTablesFromCTE(cte.GetCommonTableExpr(), out)
	}

	addTableFromRangeVar(stmt.GetRelation(), ContextUpdate, out)

	for _, f := range stmt.GetFromClause() {
		addTablesFromNode(f, ContextFrom, out)
	}

	addTablesFromExpr(stmt.GetWhereClause(), out)
}

func addTablesFromDelete(stmt *pg_query.DeleteStmt, out *[]TableReferenceResult) {
	for _, cte := range stmt.GetWithClause().GetCtes() {
		addTablesFromCTE(cte.GetCommonTableExpr(), out)
	}

	addTableFromRangeVar(stmt.GetRelation(), ContextDelete, out)

	for _, u := range stmt.GetUsingClause() {
		addTablesFromNode(u, ContextFrom, out)
	}

	addTablesFromExpr(stmt.GetWhereClause(), out)
}
