package pg

import (
	"testing"

	assert "github.com/stretchr/testify/require"
)

func TestWhereConditionsSplitsAndChains(t *testing.T) {
	results := WhereConditions("select * from person where age > 21 and name = 'Sophia'")

	assert.Equal(t, []WhereConditionResult{
		{Condition: "age > 21", Table: "person", Context: ContextWhere},
		{Condition: "name = 'Sophia'", Table: "person", Context: ContextWhere},
	}, results)
}

func TestWhereConditionsKeepsOrChainsWhole(t *testing.T) {
	results := WhereConditions("select * from person where age > 21 or age < 3")

	assert.Len(t, results, 1)
	assert.Equal(t, ContextWhere, results[0].Context)
	assert.Contains(t, results[0].Condition, "OR")
}

func TestWhereConditionsHaving(t *testing.T) {
	results := WhereConditions(`
		select owner_id, count(*)
		from pet
		group by owner_id
		having count(*) > 2
	`)

	assert.Equal(t, []WhereConditionResult{
		{Condition: "count(*) > 2", Table: "pet", Context: ContextHaving},
	}, results)
}

func TestWhereConditionsQualifiedAttribution(t *testing.T) {
	results := WhereConditions(`
		select *
		from person p
		join pet on pet.owner_id = p.id
		where p.age > 21 and pet.name = 'Doggo'
	`)

	assert.Len(t, results, 2)
	assert.Equal(t, "person", results[0].Table)
	assert.Equal(t, "pet", results[1].Table)
}

func TestWhereConditionsAmbiguousAttribution(t *testing.T) {
	// Two tables in scope and no qualifier: attribution stays empty.
	results := WhereConditions("select * from a, b where x = 1")

	assert.Len(t, results, 1)
	assert.Equal(t, "", results[0].Table)
}

func TestWhereConditionsDML(t *testing.T) {
	results := WhereConditions("update person set name = 'x' where id = 1")
	assert.Equal(t, []WhereConditionResult{
		{Condition: "id = 1", Table: "person", Context: ContextWhere},
	}, results)

	results = WhereConditions("delete from pet where name = 'Doggo'")
	assert.Equal(t, []WhereConditionResult{
		{Condition: "name = 'Doggo'", Table: "pet", Context: ContextWhere},
	}, results)
}

func TestWhereConditionsDMLWithCTE(t *testing.T) {
	results := WhereConditions(`
		with adults as (select * from person where age > 21)
		update account set status = 'active' where owner_id = 1
	`)

	assert.Equal(t, []WhereConditionResult{
		{Condition: "age > 21", Table: "person", Context: ContextWhere},
		{Condition: "owner_id = 1", Table: "account", Context: ContextWhere},
	}, results)

	results = WhereConditions(`
		with stale as (select id from pet where updated_at < '2020-01-01')
		delete from pet where name = 'Doggo'
	`)

	assert.Equal(t, []WhereConditionResult{
		{Condition: "updated_at < '2020-01-01'", Table: "pet", Context: ContextWhere},
		{Condition: "name = 'Doggo'", Table: "pet", Context: ContextWhere},
	}, results)
}

func TestWhereConditionsMalformedInput(t *testing.T) {
	assert.Empty(t, WhereConditions("select from from"))
	assert.Empty(t, WhereConditions(""))
	assert.Empty(t, WhereConditions("select * from person"))
}

func TestWhereConditionsDetailed(t *testing.T) {
	results := WhereConditionsDetailed("select * from person where age >= 21 and name = 'Sophia'")

	assert.Equal(t, []DetailedWhereConditionResult{
		{Column: "age", Operator: ">=", Value: "21", Table: "person", Context: ContextWhere},
		{Column: "name", Operator: "=", Value: "'Sophia'", Table: "person", Context: ContextWhere},
	}, results)
}

func TestWhereConditionsDetailedQualifiedColumn(t *testing.T) {
	results := WhereConditionsDetailed(`
		select *
		from person p
		join pet on pet.owner_id = p.id
		where p.age < 100
	`)

	assert.Equal(t, []DetailedWhereConditionResult{
		{Column: "age", Operator: "<", Value: "100", Table: "person", Context: ContextWhere},
	}, results)
}

func TestWhereConditionsDetailedLikeOperators(t *testing.T) {
	results := WhereConditionsDetailed("select * from person where name like 'So%' and name not like '%x' and name ilike 'so%'")

	assert.Equal(t, []DetailedWhereConditionResult{
		{Column: "name", Operator: "LIKE", Value: "'So%'", Table: "person", Context: ContextWhere},
		{Column: "name", Operator: "NOT LIKE", Value: "'%x'", Table: "person", Context: ContextWhere},
		{Column: "name", Operator: "ILIKE", Value: "'so%'", Table: "person", Context: ContextWhere},
	}, results)
}

func TestWhereConditionsDetailedSkipsComplexConditions(t *testing.T) {
	// A bare boolean column and a NOT expression don't decompose.
	results := WhereConditionsDetailed("select * from person where is_active and not is_banned")

	assert.Empty(t, results)
}

func TestWhereConditionsDetailedMalformedInput(t *testing.T) {
	assert.Empty(t, WhereConditionsDetailed("select from from"))
	assert.Empty(t, WhereConditionsDetailed(""))
}
