package projection_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leengari/tableconv/internal/domain/errors"
	"github.com/leengari/tableconv/internal/domain/schema"
	"github.com/leengari/tableconv/internal/query/operations/projection"
	"github.com/leengari/tableconv/internal/query/operations/testutil"
)

func TestProjectColumns_KeepsMatchingFieldsInOrder(t *testing.T) {
	table := testutil.CreatePricesTable()

	result, err := projection.ProjectColumns(table, projection.NewCriterion(100, "ltp"))
	require.NoError(t, err)

	assert.Equal(t, []schema.Key{{"ltp", "AAPL"}, {"ltp", "MSFT"}}, result.Keys())
	testutil.AssertShape(t, result, 3, 2, "ltp projection")
	assert.Equal(t, table.Columns[2].Values, result.Columns[1].Values)
}

func TestProjectColumns_CapTakesFirstMatches(t *testing.T) {
	table := testutil.CreateTestTable("wide", 2, testutil.WideKeys(250, "ltp", "vol")...)

	result, err := projection.ProjectColumns(table, projection.NewCriterion(100, "ltp"))
	require.NoError(t, err)

	require.Equal(t, 100, result.NumColumns())
	assert.Equal(t, schema.Key{"ltp", "T0000"}, result.Columns[0].Key)
	assert.Equal(t, schema.Key{"ltp", "T0099"}, result.Columns[99].Key)
	for _, k := range result.Keys() {
		assert.Equal(t, "ltp", k.Field())
	}
}

func TestProjectColumns_NoMatchIsEmptyNotError(t *testing.T) {
	table := testutil.CreatePricesTable()

	result, err := projection.ProjectColumns(table, projection.NewCriterion(100, "bid"))
	require.NoError(t, err)

	testutil.AssertShape(t, result, 3, 0, "no match")
	assert.Equal(t, table.IndexNames(), result.IndexNames())
}

func TestProjectColumns_ZeroCap(t *testing.T) {
	result, err := projection.ProjectColumns(testutil.CreatePricesTable(), projection.NewCriterion(0, "ltp"))
	require.NoError(t, err)
	assert.Equal(t, 0, result.NumColumns())
}

func TestProjectColumns_DoesNotAliasInput(t *testing.T) {
	table := testutil.CreatePricesTable()

	result, err := projection.ProjectColumns(table, projection.NewCriterion(100, "ltp"))
	require.NoError(t, err)

	result.Columns[0].Values[0] = -1.0
	assert.Equal(t, 185.5, table.Columns[0].Values[0])
}

func TestProjectColumns_NilTable(t *testing.T) {
	_, err := projection.ProjectColumns(nil, projection.NewCriterion(100, "ltp"))
	assert.ErrorIs(t, err, errors.ErrStructure)
}

func TestValidateCriterion(t *testing.T) {
	assert.NoError(t, projection.ValidateCriterion(projection.NewCriterion(1, "ltp")))
	assert.ErrorIs(t, projection.ValidateCriterion(projection.NewCriterion(-1, "ltp")), errors.ErrConfig)
	assert.ErrorIs(t, projection.ValidateCriterion(projection.NewCriterion(10)), errors.ErrConfig)
	assert.ErrorIs(t, projection.ValidateCriterion(projection.NewCriterion(10, " ")), errors.ErrConfig)
}
