package service

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpendingAggregatesRenderFixedDecimals(t *testing.T) {
	programs := toProgramSpending([]programSpendingRow{
		{
			ProgramID:   "p-1",
			ProgramName: "Gender and Development",
			Completed:   3,
			TotalSpent:  decimal.RequireFromString("1250.5"),
		},
		{
			ProgramID:   "p-2",
			ProgramName: "Disaster Risk Reduction",
			Completed:   1,
			TotalSpent:  decimal.RequireFromString("300"),
		},
	})

	require.Len(t, programs, 2)
	assert.Equal(t, "1250.5000", programs[0].TotalSpent)
	assert.Equal(t, "300.0000", programs[1].TotalSpent)
	assert.Equal(t, int64(3), programs[0].Completed)

	monthly := toMonthlySpending([]monthlySpendingRow{
		{Month: "2026-07", TotalSpent: decimal.RequireFromString("99.99995"), Requests: 2},
	})

	require.Len(t, monthly, 1)
	assert.Equal(t, "2026-07", monthly[0].Month)
	// StringFixed rounds half away from zero at the fourth place
	assert.Equal(t, "100.0000", monthly[0].TotalSpent)
}

func TestSpendingAggregatesEmptyRowsStayEmpty(t *testing.T) {
	assert.Empty(t, toProgramSpending(nil))
	assert.Empty(t, toMonthlySpending(nil))
}
