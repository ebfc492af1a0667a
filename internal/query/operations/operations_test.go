package operations_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leengari/tableconv/internal/domain/errors"
	"github.com/leengari/tableconv/internal/domain/schema"
	"github.com/leengari/tableconv/internal/query/operations"
	"github.com/leengari/tableconv/internal/query/operations/testutil"
)

func TestFlattenColumns(t *testing.T) {
	table := testutil.CreatePricesTable()

	flat, err := operations.FlattenColumns(table)
	require.NoError(t, err)

	assert.Equal(t, []string{"ltp_AAPL", "vol_AAPL", "ltp_MSFT"}, testutil.ColumnNames(flat))
	assert.True(t, flat.IsFlat())
	testutil.AssertShape(t, flat, 3, 3, "flattened prices")
	assert.Equal(t, table.Index[0].Values, flat.Index[0].Values)
	assert.Equal(t, table.Columns[1].Values, flat.Columns[1].Values)

	// input untouched
	assert.Equal(t, schema.Key{"ltp", "AAPL"}, table.Columns[0].Key)
}

func TestFlattenColumns_TrimsWhitespace(t *testing.T) {
	table := testutil.CreateTestTable("t", 1, schema.Key{"ltp", ""}, schema.Key{" ltp", "AAPL "})

	flat, err := operations.FlattenColumns(table)
	require.NoError(t, err)
	assert.Equal(t, []string{"ltp_", "ltp_AAPL"}, testutil.ColumnNames(flat))
}

func TestFlattenColumns_UnderscoreAmbiguity(t *testing.T) {
	table := testutil.CreateTestTable("t", 1, schema.Key{"a_b", "c"}, schema.Key{"a", "b_c"})

	flat, err := operations.FlattenColumns(table)
	require.NoError(t, err)

	assert.Equal(t, []string{"a_b_c", "a_b_c"}, testutil.ColumnNames(flat))
	assert.Equal(t, []string{"a_b_c"}, flat.DuplicateColumnNames())
}

func TestFlattenColumns_RejectsWrongLevels(t *testing.T) {
	table := testutil.CreateTestTable("t", 1, schema.Key{"ltp", "AAPL"}, schema.Key{"ltp_MSFT"})

	_, err := operations.FlattenColumns(table)
	assert.ErrorIs(t, err, errors.ErrStructure)

	_, err = operations.FlattenColumns(nil)
	assert.ErrorIs(t, err, errors.ErrStructure)
}

func TestSelectSubset_Scenario(t *testing.T) {
	table := testutil.CreatePricesTable()

	subset, err := operations.SelectSubset(table, 100, "ltp")
	require.NoError(t, err)

	assert.Equal(t, []string{"ltp_AAPL", "ltp_MSFT"}, testutil.ColumnNames(subset))
	assert.Equal(t, []string{"timestamp"}, subset.IndexNames())
	testutil.AssertShape(t, subset, 3, 2, "ltp subset")
	assert.Equal(t, []interface{}{185.5, 185.75, nil}, subset.Columns[0].Values)
	assert.Equal(t, []interface{}{370.0, 371.25, 372.5}, subset.Columns[1].Values)
}

func TestSelectSubset_CapsAtMaxColumns(t *testing.T) {
	table := testutil.CreateTestTable("wide", 4, testutil.WideKeys(300, "ltp", "vol")...)

	subset, err := operations.SelectSubset(table, 100, "ltp")
	require.NoError(t, err)

	names := testutil.ColumnNames(subset)
	require.Len(t, names, 100)
	assert.Equal(t, "ltp_T0000", names[0])
	assert.Equal(t, "ltp_T0099", names[99])
	assert.Equal(t, 4, subset.NumRows())
}

func TestSelectSubset_FewerMatchesThanCap(t *testing.T) {
	table := testutil.CreateTestTable("wide", 2, testutil.WideKeys(10, "ltp", "vol")...)

	subset, err := operations.SelectSubset(table, 100, "ltp")
	require.NoError(t, err)
	assert.Equal(t, 5, subset.NumColumns())
}

func TestSelectSubset_NoMatch(t *testing.T) {
	subset, err := operations.SelectSubset(testutil.CreatePricesTable(), 100, "bid")
	require.NoError(t, err)

	testutil.AssertShape(t, subset, 3, 0, "no match")
	assert.Equal(t, []string{"timestamp"}, subset.IndexNames())
}

func TestSelectSubset_MultipleFields(t *testing.T) {
	subset, err := operations.SelectSubset(testutil.CreatePricesTable(), 100, "vol", "ltp")
	require.NoError(t, err)

	assert.Equal(t, []string{"ltp_AAPL", "vol_AAPL", "ltp_MSFT"}, testutil.ColumnNames(subset))
}

func TestSelectSubset_NilTable(t *testing.T) {
	_, err := operations.SelectSubset(nil, 100, "ltp")
	assert.ErrorIs(t, err, errors.ErrStructure)
}

func TestSelectSubset_InvalidCriterion(t *testing.T) {
	_, err := operations.SelectSubset(testutil.CreatePricesTable(), -1, "ltp")
	assert.ErrorIs(t, err, errors.ErrConfig)
}
