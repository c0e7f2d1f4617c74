package dashboard

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/nippoworks/api-nippo/internal/models"
)

const dateLayout = "2006-01-02"

type gormStore struct {
	db *gorm.DB
}

// NewStore returns the gorm-backed read side of the aggregator.
func NewStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) CountMonthlyVisits(ctx context.Context, salesPersonID uint, from, to time.Time) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).
		Model(&models.VisitRecord{}).
		Joins("JOIN daily_reports ON daily_reports.id = visit_records.report_id").
		Where("daily_reports.sales_person_id = ?", salesPersonID).
		Where("daily_reports.report_date BETWEEN ? AND ?", from, to).
		Count(&n).Error
	return n, err
}

func (s *gormStore) CountPendingReports(ctx context.Context, managerID uint) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).
		Model(&models.DailyReport{}).
		Joins("JOIN sales_persons ON sales_persons.id = daily_reports.sales_person_id").
		Where("daily_reports.status = ?", models.StatusSubmitted).
		Where("sales_persons.manager_id = ?", managerID).
		Count(&n).Error
	return n, err
}

type reportRow struct {
	ID         uint
	ReportDate time.Time
	Status     models.ReportStatus
	VisitCount int64
}

func (s *gormStore) RecentReports(ctx context.Context, salesPersonID uint, limit int) ([]ReportSummary, error) {
	var rows []reportRow
	err := s.db.WithContext(ctx).
		Model(&models.DailyReport{}).
		Select("daily_reports.id, daily_reports.report_date, daily_reports.status, "+
			"(SELECT COUNT(*) FROM visit_records WHERE visit_records.report_id = daily_reports.id) AS visit_count").
		Where("daily_reports.sales_person_id = ?", salesPersonID).
		Order("daily_reports.report_date DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make([]ReportSummary, 0, len(rows))
	for _, row := range rows {
		out = append(out, ReportSummary{
			ID:          row.ID,
			ReportDate:  row.ReportDate.Format(dateLayout),
			Status:      string(row.Status),
			StatusLabel: row.Status.Label(),
			VisitCount:  row.VisitCount,
		})
	}
	return out, nil
}

type commentRow struct {
	ID            uint
	ReportID      uint
	ReportDate    time.Time
	CommenterName string
	CommentText   string
	CreatedAt     time.Time
}

func (s *gormStore) RecentComments(ctx context.Context, salesPersonID uint, limit int) ([]CommentSummary, error) {
	var rows []commentRow
	err := s.db.WithContext(ctx).
		Model(&models.Comment{}).
		Select("comments.id, comments.report_id, comments.comment_text, comments.created_at, "+
			"daily_reports.report_date, sales_persons.name AS commenter_name").
		Joins("JOIN daily_reports ON daily_reports.id = comments.report_id").
		Joins("JOIN sales_persons ON sales_persons.id = comments.sales_person_id").
		Where("daily_reports.sales_person_id = ?", salesPersonID).
		Where("comments.sales_person_id <> ?", salesPersonID).
		Order("comments.created_at DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make([]CommentSummary, 0, len(rows))
	for _, row := range rows {
		out = append(out, CommentSummary{
			ID:            row.ID,
			ReportID:      row.ReportID,
			ReportDate:    row.ReportDate.Format(dateLayout),
			CommenterName: row.CommenterName,
			CommentText:   row.CommentText,
			CreatedAt:     row.CreatedAt,
		})
	}
	return out, nil
}
