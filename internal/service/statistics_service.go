package service

import (
	"context"
	"time"

	"procurement-portal/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Utilization above this ratio gets flagged on the transparency dashboard
var utilizationWarnThreshold = decimal.NewFromFloat(0.9)

type StatusCount struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}

type ProgramSpending struct {
	ProgramID   string `json:"program_id"`
	ProgramName string `json:"program_name"`
	Completed   int64  `json:"completed_requests"`
	TotalSpent  string `json:"total_spent"`
}

type AllocationUtilization struct {
	AllocationID    string `json:"allocation_id"`
	ProgramName     string `json:"program_name"`
	ObjectName      string `json:"object_name"`
	AllocatedAmount string `json:"allocated_amount"`
	UsedAmount      string `json:"used_amount"`
	Utilization     string `json:"utilization"` // used / allocated, 4 decimal places
	Flagged         bool   `json:"flagged"`     // true when utilization crosses the warn threshold
}

type MonthlySpending struct {
	Month      string `json:"month"` // YYYY-MM
	TotalSpent string `json:"total_spent"`
	Requests   int64  `json:"requests"`
}

type DashboardResponse struct {
	TimeRangeStartDate time.Time               `json:"time_range_start_date"`
	TimeRangeEndDate   time.Time               `json:"time_range_end_date"`
	StatusCounts       []StatusCount           `json:"status_counts"`
	SpendingByProgram  []ProgramSpending       `json:"spending_by_program"`
	Utilization        []AllocationUtilization `json:"allocation_utilization"`
	MonthlySpending    []MonthlySpending       `json:"monthly_spending"`
}

type StatisticsService interface {
	GetDashboard(ctx context.Context, startDate, endDate time.Time) (DashboardResponse, error)
	GetPublicSummary(ctx context.Context) ([]StatusCount, error)
}

type statisticsService struct {
	db *gorm.DB
}

func NewStatisticsService(db *gorm.DB) StatisticsService {
	return &statisticsService{db: db}
}

// GetDashboard aggregates the transparency dashboard read models over the
// requested time range. All spending figures count COMPLETED requests only.
func (s *statisticsService) GetDashboard(ctx context.Context, startDate, endDate time.Time) (DashboardResponse, error) {
	var response DashboardResponse
	response.TimeRangeStartDate = startDate
	response.TimeRangeEndDate = endDate

	// Requests per status
	var statusCounts []StatusCount
	if err := s.db.WithContext(ctx).Model(&model.ProcurementRequest{}).
		Select("status, COUNT(*) as count").
		Where("created_at >= ? AND created_at <= ?", startDate, endDate).
		Group("status").
		Order("status ASC").
		Scan(&statusCounts).Error; err != nil {
		return response, err
	}
	response.StatusCounts = statusCounts

	// Completed spending per program
	var programRows []programSpendingRow
	if err := s.db.WithContext(ctx).Table("procurement_requests").
		Select("programs.id as program_id, programs.name as program_name, COUNT(procurement_requests.id) as completed, SUM(procurement_requests.amount) as total_spent").
		Joins("JOIN budget_allocations ON budget_allocations.id = procurement_requests.allocation_id").
		Joins("JOIN programs ON programs.id = budget_allocations.program_id").
		Where("procurement_requests.status = ? AND procurement_requests.completed_at >= ? AND procurement_requests.completed_at <= ? AND procurement_requests.deleted_at IS NULL",
			model.StatusCompleted, startDate, endDate).
		Group("programs.id, programs.name").
		Order("total_spent DESC").
		Scan(&programRows).Error; err != nil {
		return response, err
	}
	response.SpendingByProgram = toProgramSpending(programRows)

	// Allocation utilization with risk flags
	var allocations []model.BudgetAllocation
	if err := s.db.WithContext(ctx).
		Preload("Program").
		Preload("Object").
		Find(&allocations).Error; err != nil {
		return response, err
	}

	utilization := make([]AllocationUtilization, 0, len(allocations))
	for _, alloc := range allocations {
		ratio := decimal.Zero
		if alloc.AllocatedAmount.IsPositive() {
			ratio = alloc.UsedAmount.Div(alloc.AllocatedAmount)
		}

		entry := AllocationUtilization{
			AllocationID:    alloc.ID.String(),
			AllocatedAmount: alloc.AllocatedAmount.StringFixed(4),
			UsedAmount:      alloc.UsedAmount.StringFixed(4),
			Utilization:     ratio.StringFixed(4),
			Flagged:         ratio.GreaterThanOrEqual(utilizationWarnThreshold),
		}
		if alloc.Program != nil {
			entry.ProgramName = alloc.Program.Name
		}
		if alloc.Object != nil {
			entry.ObjectName = alloc.Object.Name
		}
		utilization = append(utilization, entry)
	}
	response.Utilization = utilization

	// Monthly completed spending series
	var monthlyRows []monthlySpendingRow
	if err := s.db.WithContext(ctx).Table("procurement_requests").
		Select("to_char(completed_at, 'YYYY-MM') as month, SUM(amount) as total_spent, COUNT(id) as requests").
		Where("status = ? AND completed_at >= ? AND completed_at <= ? AND deleted_at IS NULL",
			model.StatusCompleted, startDate, endDate).
		Group("to_char(completed_at, 'YYYY-MM')").
		Order("month ASC").
		Scan(&monthlyRows).Error; err != nil {
		return response, err
	}
	response.MonthlySpending = toMonthlySpending(monthlyRows)

	return response, nil
}

// Aggregate rows scan SUM(amount) into decimal so money never passes
// through float64 on its way to the response.

type programSpendingRow struct {
	ProgramID   string
	ProgramName string
	Completed   int64
	TotalSpent  decimal.Decimal
}

type monthlySpendingRow struct {
	Month      string
	TotalSpent decimal.Decimal
	Requests   int64
}

func toProgramSpending(rows []programSpendingRow) []ProgramSpending {
	out := make([]ProgramSpending, 0, len(rows))
	for _, row := range rows {
		out = append(out, ProgramSpending{
			ProgramID:   row.ProgramID,
			ProgramName: row.ProgramName,
			Completed:   row.Completed,
			TotalSpent:  row.TotalSpent.StringFixed(4),
		})
	}
	return out
}

func toMonthlySpending(rows []monthlySpendingRow) []MonthlySpending {
	out := make([]MonthlySpending, 0, len(rows))
	for _, row := range rows {
		out = append(out, MonthlySpending{
			Month:      row.Month,
			TotalSpent: row.TotalSpent.StringFixed(4),
			Requests:   row.Requests,
		})
	}
	return out
}

// GetPublicSummary returns the unauthenticated status breakdown shown on the
// public transparency page
func (s *statisticsService) GetPublicSummary(ctx context.Context) ([]StatusCount, error) {
	var statusCounts []StatusCount
	if err := s.db.WithContext(ctx).Model(&model.ProcurementRequest{}).
		Select("status, COUNT(*) as count").
		Group("status").
		Order("status ASC").
		Scan(&statusCounts).Error; err != nil {
		return nil, err
	}
	return statusCounts, nil
}
