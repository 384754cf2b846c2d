package table_test

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/calvinalkan/progress-table/internal/dataset"
	"github.com/calvinalkan/progress-table/internal/table"
)

// Random column/row operation sequences must keep every row's value keys equal
// to the header set, and rows strictly ordered by date.
func Test_Random_Operations_Preserve_Invariants_When_Applied(t *testing.T) {
	t.Parallel()

	for seed := range uint64(50) {
		t.Run(fmt.Sprintf("seed=%d", seed), func(t *testing.T) {
			t.Parallel()

			rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
			eng := table.New(dataset.Default(), nil)

			for step := range 200 {
				op := applyRandomOp(t, rng, eng)

				require.Empty(t, dataset.Inconsistencies(eng.Dataset()), "step %d after %s", step, op)
			}
		})
	}
}

func applyRandomOp(t *testing.T, rng *rand.Rand, eng *table.Engine) string {
	t.Helper()

	ds := eng.Dataset()

	pickHeader := func() string {
		if len(ds.Headers) == 0 || rng.IntN(5) == 0 {
			return fmt.Sprintf("Lab %d", rng.IntN(8)+1)
		}

		return ds.Headers[rng.IntN(len(ds.Headers))]
	}

	pickRow := func() int {
		return rng.IntN(len(ds.Rows)+2) - 1
	}

	switch rng.IntN(8) {
	case 0:
		_, err := eng.AddColumn()
		if err != nil {
			require.ErrorIs(t, err, dataset.ErrDuplicateColumnName)
		}

		return "AddColumn"
	case 1:
		name := pickHeader()
		require.NoError(t, eng.RemoveColumn(name))
		require.False(t, slices.Contains(eng.Dataset().Headers, name))

		return "RemoveColumn " + name
	case 2:
		oldName, newName := pickHeader(), pickHeader()

		err := eng.RenameColumn(oldName, newName)
		if err != nil {
			require.Condition(t, func() bool {
				return !ds.HasHeader(oldName) || ds.HasHeader(newName)
			}, "unexpected rename error: %v", err)

			require.Equal(t, ds, eng.Dataset())
		}

		return "RenameColumn " + oldName + " -> " + newName
	case 3:
		require.NoError(t, eng.AddRow())

		return "AddRow"
	case 4:
		row := pickRow()

		err := eng.RemoveRow(row)
		if row < 0 || row >= len(ds.Rows) {
			require.ErrorIs(t, err, dataset.ErrRowIndexOutOfRange)
		} else {
			require.NoError(t, err)
		}

		return fmt.Sprintf("RemoveRow %d", row)
	case 5:
		row, dir := pickRow(), []int{-1, 1}[rng.IntN(2)]
		can := eng.CanShiftRowDate(row, dir)

		err := eng.ShiftRowDate(row, dir)
		require.Equal(t, can, err == nil, "CanShiftRowDate disagrees: %v", err)

		return fmt.Sprintf("ShiftRowDate %d %+d", row, dir)
	case 6:
		_ = eng.ToggleRowHidden(pickRow())

		return "ToggleRowHidden"
	default:
		if len(ds.Headers) > 0 {
			_ = eng.SetCellValue(pickRow(), pickHeader(), fmt.Sprintf("%.2f", rng.Float64()*4))
		}

		return "SetCellValue"
	}
}
