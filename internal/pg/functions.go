package pg

import (
	pg_query "github.com/pganalyze/pg_query_go/v5"
)

// FunctionCalls parses sql and returns one record per function invocation
// with its schema qualifier and the clause context it appears in. Nested
// calls are all reported, outermost first. Malformed input yields an empty
// result.
func FunctionCalls(sql string) []FunctionResult {
	results := make([]FunctionResult, 0)

	ast, err := parseSql(sql)
	if err != nil {
		return results
	}

	for _, stmt := range ast.GetStmts() {
		addFunctionsFromStmt(stmt.GetStmt(), &results)
	}

	return results
}

func addFunctionsFromStmt(stmt *pg_query.Node, out *[]FunctionResult) {
	switch n := stmt.GetNode().(type) {
	case *pg_query.Node_SelectStmt:
		addFunctionsFromSelect(n.SelectStmt, out)
	case *pg_query.Node_InsertStmt:
		if sel := n.InsertStmt.GetSelectStmt().GetSelectStmt(); sel != nil {
			addFunctionsFromSelect(sel, out)
		}

		addFunctionsFromExprs(n.InsertStmt.GetReturningList(), ContextSelect, out)
	case *pg_query.Node_UpdateStmt:
		addFunctionsFromExprs(n.UpdateStmt.GetTargetList(), ContextUpdate, out)
		addFunctionsFromExpr(n.UpdateStmt.GetWhereClause(), ContextWhere, out)
		addFunctionsFromExprs(n.UpdateStmt.GetReturningList(), ContextSelect, out)
	case *pg_query.Node_DeleteStmt:
		addFunctionsFromExpr(n.DeleteStmt.GetWhereClause(), ContextWhere, out)
		addFunctionsFromExprs(n.DeleteStmt.GetReturningList(), ContextSelect, out)
	}
}

func addFunctionsFromSelect(stmt *pg_query.SelectStmt, out *[]FunctionResult) {
	if stmt == nil {
		return
	}

	for _, cte := range stmt.GetWithClause().GetCtes() {
		addFunctionsFromStmt(cte.GetCommonTableExpr().GetCtequery(), out)
	}

	addFunctionsFromExprs(stmt.GetTargetList(), ContextSelect, out)

	// INSERT ... VALUES carries its expressions here instead of a target
	// list. Each entry is a row list.
	addFunctionsFromExprs(stmt.GetValuesLists(), ContextValues, out)

	for _, f := range stmt.GetFromClause() {
		addFunctionsFromFromNode(f, out)
	}

	addFunctionsFromExpr(stmt.GetWhereClause(), ContextWhere, out)
	addFunctionsFromExprs(stmt.GetGroupClause(), ContextGroupBy, out)
	addFunctionsFromExpr(stmt.GetHavingClause(), ContextHaving, out)
	addFunctionsFromExprs(stmt.GetSortClause(), ContextOrderBy, out)

	addFunctionsFromSelect(stmt.GetLarg(), out)
	addFunctionsFromSelect(stmt.GetRarg(), out)
}

func addFunctionsFromFromNode(node *pg_query.Node, out *[]FunctionResult) {
	switch n := node.GetNode().(type) {
	case *pg_query.Node_JoinExpr:
		addFunctionsFromFromNode(n.JoinExpr.GetLarg(), out)
		addFunctionsFromFromNode(n.JoinExpr.GetRarg(), out)
		addFunctionsFromExpr(n.JoinExpr.GetQuals(), ContextJoin, out)
	case *pg_query.Node_RangeSubselect:
		addFunctionsFromSelect(n.RangeSubselect.GetSubquery().GetSelectStmt(), out)
	case *pg_query.Node_RangeFunction:
		addFunctionsFromExprs(n.RangeFunction.GetFunctions(), ContextFrom, out)
	}
}

func addFunctionsFromExprs(exprs []*pg_query.Node, context string, out *[]FunctionResult) {
	for _, e := range exprs {
		addFunctionsFromExpr(e, context, out)
	}
}

func addFunctionsFromExpr(node *pg_query.Node, context string, out *[]FunctionResult) {
	if node == nil {
		return
	}

	switch n := node.GetNode().(type) {
	case *pg_query.Node_FuncCall:
		addFunctionCall(n.FuncCall, context, out)
	case *pg_query.Node_ResTarget:
		addFunctionsFromExpr(n.ResTarget.GetVal(), context, out)
	case *pg_query.Node_SortBy:
		addFunctionsFromExpr(n.SortBy.GetNode(), context, out)
	case *pg_query.Node_AExpr:
		addFunctionsFromExpr(n.AExpr.GetLexpr(), context, out)
		addFunctionsFromExpr(n.AExpr.GetRexpr(), context, out)
	case *pg_query.Node_BoolExpr:
		addFunctionsFromExprs(n.BoolExpr.GetArgs(), context, out)
	case *pg_query.Node_TypeCast:
		addFunctionsFromExpr(n.TypeCast.GetArg(), context, out)
	case *pg_query.Node_NullTest:
		addFunctionsFromExpr(n.NullTest.GetArg(), context, out)
	case *pg_query.Node_CoalesceExpr:
		addFunctionsFromExprs(n.CoalesceExpr.GetArgs(), context, out)
	case *pg_query.Node_MinMaxExpr:
		addFunctionsFromExprs(n.MinMaxExpr.GetArgs(), context, out)
	case *pg_query.Node_CaseExpr:
		addFunctionsFromExpr(n.CaseExpr.GetArg(), context, out)
		addFunctionsFromExprs(n.CaseExpr.GetArgs(), context, out)
		addFunctionsFromExpr(n.CaseExpr.GetDefresult(), context, out)
	case *pg_query.Node_CaseWhen:
		addFunctionsFromExpr(n.CaseWhen.GetExpr(), context, out)
		addFunctionsFromExpr(n.CaseWhen.GetResult(), context, out)
	case *pg_query.Node_RowExpr:
		addFunctionsFromExprs(n.RowExpr.GetArgs(), context, out)
	case *pg_query.Node_List:
		addFunctionsFromExprs(n.List.GetItems(), context, out)
	case *pg_query.Node_SubLink:
		addFunctionsFromStmt(n.SubLink.GetSubselect(), out)
	}
}

func addFunctionCall(call *pg_query.FuncCall, context string, out *[]FunctionResult) {
	name := call.GetFuncname()
	if len(name) == 0 {
		return
	}

	result := FunctionResult{
		Function: getString(name[len(name)-1]),
		Context:  context,
	}

	if len(name) > 1 {
		result.Schema = getString(name[len(name)-2])
	}

	*out = append(*out, result)

	addFunctionsFromExprs(call.GetArgs(), context, out)
	addFunctionsFromExpr(call.GetAggFilter(), context, out)
}
