package services

import (
	"fmt"
	"math/big"

	"github.com/yukikurage/taskdesk/internal/models"
	"github.com/yukikurage/taskdesk/internal/repository"
)

// DashboardMetrics counts tasks per status bucket.
type DashboardMetrics struct {
	Completed  int `json:"completed"`
	Overdue    int `json:"overdue"`
	InProgress int `json:"inProgress"`
	Scheduled  int `json:"scheduled"`
	Total      int `json:"total"`
}

// Dashboard is the point-in-time summary shown on the dashboard.
type Dashboard struct {
	Metrics            DashboardMetrics `json:"metrics"`
	ProgressPercentage string           `json:"progressPercentage"`
}

// PerformanceEntry is one status row of the performance report.
type PerformanceEntry struct {
	Status     string `json:"status"`
	Count      int    `json:"count"`
	Percentage string `json:"percentage"`
}

// PerformanceReport breaks the task collection down by status.
type PerformanceReport struct {
	Entries []PerformanceEntry `json:"entries"`
	Total   int                `json:"total"`
}

// AnalyticsService derives summary statistics from the task store. Results
// are recomputed on every call.
type AnalyticsService struct {
	taskRepo repository.TaskRepository
}

// NewAnalyticsService creates a new AnalyticsService
func NewAnalyticsService(taskRepo repository.TaskRepository) *AnalyticsService {
	return &AnalyticsService{taskRepo: taskRepo}
}

// Dashboard computes the dashboard metrics and completion percentage.
func (s *AnalyticsService) Dashboard() (*Dashboard, error) {
	tasks, err := s.taskRepo.List()
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	metrics := CountByStatus(tasks)
	return &Dashboard{
		Metrics:            metrics,
		ProgressPercentage: FormatPercentage(metrics.Completed, metrics.Total),
	}, nil
}

// Performance computes the per-status breakdown used by the reports page.
func (s *AnalyticsService) Performance() (*PerformanceReport, error) {
	tasks, err := s.taskRepo.List()
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	m := CountByStatus(tasks)
	rows := []struct {
		status string
		count  int
	}{
		{"completed", m.Completed},
		{"inProgress", m.InProgress},
		{"overdue", m.Overdue},
		{"scheduled", m.Scheduled},
	}

	report := &PerformanceReport{
		Entries: make([]PerformanceEntry, 0, len(rows)),
		Total:   m.Total,
	}
	for _, r := range rows {
		report.Entries = append(report.Entries, PerformanceEntry{
			Status:     r.status,
			Count:      r.count,
			Percentage: FormatPercentage(r.count, m.Total),
		})
	}
	return report, nil
}

// CountByStatus partitions tasks into the dashboard buckets. Pending tasks
// are reported as scheduled.
func CountByStatus(tasks []models.Task) DashboardMetrics {
	m := DashboardMetrics{Total: len(tasks)}
	for _, t := range tasks {
		switch t.Status {
		case models.TaskStatusCompleted:
			m.Completed++
		case models.TaskStatusOverdue:
			m.Overdue++
		case models.TaskStatusInProgress:
			m.InProgress++
		case models.TaskStatusPending:
			m.Scheduled++
		}
	}
	return m
}

// FormatPercentage renders part/total*100 with one decimal. The ratio is a
// float64 and its exact binary value is rounded half up at the tenths digit,
// so inexact halves such as 3/2000 round down. A zero total yields "0".
func FormatPercentage(part, total int) string {
	if total <= 0 {
		return "0"
	}
	pct := float64(part) / float64(total) * 100

	// exact for any float64 in [0, 100]
	scaled := new(big.Float).SetPrec(128).SetFloat64(pct)
	scaled.Mul(scaled, big.NewFloat(100))
	hundredths, _ := scaled.Int64()

	tenths := hundredths / 10
	if hundredths%10 >= 5 {
		tenths++
	}
	return fmt.Sprintf("%d.%d", tenths/10, tenths%10)
}
