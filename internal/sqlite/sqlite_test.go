package sqlite

import (
	"database/sql"
	"encoding/json"
	"testing"

	assert "github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *sql.DB {
	db, err := Open(":memory:")
	assert.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return db
}

func TestScalarParseStatements(t *testing.T) {
	db := openTestDB(t)

	var result string
	err := db.QueryRow("SELECT parse_statements('select 1; select 2')").Scan(&result)
	assert.NoError(t, err)

	var statements []string
	assert.NoError(t, json.Unmarshal([]byte(result), &statements))
	assert.Equal(t, []string{"SELECT 1", "SELECT 2"}, statements)
}

func TestScalarParseTables(t *testing.T) {
	db := openTestDB(t)

	var result string
	err := db.QueryRow("SELECT parse_tables('select * from app.person join pet on true')").Scan(&result)
	assert.NoError(t, err)

	var tables []string
	assert.NoError(t, json.Unmarshal([]byte(result), &tables))
	assert.Equal(t, []string{"app.person", "pet"}, tables)
}

func TestScalarParseWhere(t *testing.T) {
	db := openTestDB(t)

	var result string
	err := db.QueryRow("SELECT parse_where('select * from t where a > 1 and b = 2')").Scan(&result)
	assert.NoError(t, err)

	var conditions []string
	assert.NoError(t, json.Unmarshal([]byte(result), &conditions))
	assert.Equal(t, []string{"a > 1", "b = 2"}, conditions)
}

func TestScalarParseFunctions(t *testing.T) {
	db := openTestDB(t)

	var result string
	err := db.QueryRow("SELECT parse_functions('select app.scramble(name), count(*) from person')").Scan(&result)
	assert.NoError(t, err)

	var functions []string
	assert.NoError(t, json.Unmarshal([]byte(result), &functions))
	assert.Equal(t, []string{"app.scramble", "count"}, functions)
}

func TestScalarFunctionsMalformedInput(t *testing.T) {
	db := openTestDB(t)

	for _, fn := range []string{"parse_statements", "parse_tables", "parse_where", "parse_functions"} {
		var result string
		err := db.QueryRow("SELECT " + fn + "('select from from')").Scan(&result)
		assert.NoError(t, err)
		assert.Equal(t, "[]", result)
	}
}

func TestNumStatements(t *testing.T) {
	db := openTestDB(t)

	for input, expected := range map[string]int64{
		"select 1":                     1,
		"select 1; select 2; select 3": 3,
		"select from from":             0,
		"":                             0,
	} {
		var count int64
		err := db.QueryRow("SELECT num_statements(?)", input).Scan(&count)
		assert.NoError(t, err)
		assert.Equal(t, expected, count, input)
	}
}
