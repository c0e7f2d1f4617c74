// Package dashboard assembles the per-principal snapshot shown on the top
// page: this month's visit count, reports waiting for the principal's
// confirmation, and the latest reports and comments.
package dashboard

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nippoworks/api-nippo/internal/authz"
)

// ReportSummary is one row of the recent-reports panel.
type ReportSummary struct {
	ID          uint   `json:"id"`
	ReportDate  string `json:"report_date"`
	Status      string `json:"status"`
	StatusLabel string `json:"status_label"`
	VisitCount  int64  `json:"visit_count"`
}

// CommentSummary is one row of the recent-comments panel.
type CommentSummary struct {
	ID            uint      `json:"id"`
	ReportID      uint      `json:"report_id"`
	ReportDate    string    `json:"report_date"`
	CommenterName string    `json:"commenter_name"`
	CommentText   string    `json:"comment_text"`
	CreatedAt     time.Time `json:"created_at"`
}

// Data is the assembled snapshot. PendingReportCount is nil for a
// non-manager: absent, not zero.
type Data struct {
	MonthlyVisitCount  int64            `json:"monthly_visit_count"`
	PendingReportCount *int64           `json:"pending_report_count"`
	RecentReports      []ReportSummary  `json:"recent_reports"`
	RecentComments     []CommentSummary `json:"recent_comments"`
}

// Store is the read side the aggregator composes. The four reads are
// independent; no transaction spans them.
type Store interface {
	CountMonthlyVisits(ctx context.Context, salesPersonID uint, from, to time.Time) (int64, error)
	CountPendingReports(ctx context.Context, managerID uint) (int64, error)
	RecentReports(ctx context.Context, salesPersonID uint, limit int) ([]ReportSummary, error)
	RecentComments(ctx context.Context, salesPersonID uint, limit int) ([]CommentSummary, error)
}

const recentLimit = 5

// Aggregator computes the snapshot at request time. The clock is injected so
// the month window is deterministic under test.
type Aggregator struct {
	Store Store
	Now   func() time.Time
}

func NewAggregator(store Store) *Aggregator {
	return &Aggregator{Store: store, Now: time.Now}
}

// monthBounds pins the current calendar month: the first instant through
// 23:59:59.999 of the last day, in the server's local calendar.
func monthBounds(now time.Time) (time.Time, time.Time) {
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	end := start.AddDate(0, 1, 0).Add(-time.Millisecond)
	return start, end
}

// Snapshot issues the four reads concurrently and joins them. Any failed
// read fails the whole snapshot; a partial dashboard is never returned.
func (a *Aggregator) Snapshot(ctx context.Context, p authz.Principal) (*Data, error) {
	from, to := monthBounds(a.Now())

	var data Data
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		n, err := a.Store.CountMonthlyVisits(ctx, p.ID, from, to)
		if err != nil {
			return err
		}
		data.MonthlyVisitCount = n
		return nil
	})

	if p.IsManager {
		g.Go(func() error {
			n, err := a.Store.CountPendingReports(ctx, p.ID)
			if err != nil {
				return err
			}
			data.PendingReportCount = &n
			return nil
		})
	}

	g.Go(func() error {
		reports, err := a.Store.RecentReports(ctx, p.ID, recentLimit)
		if err != nil {
			return err
		}
		data.RecentReports = reports
		return nil
	})

	g.Go(func() error {
		comments, err := a.Store.RecentComments(ctx, p.ID, recentLimit)
		if err != nil {
			return err
		}
		data.RecentComments = comments
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if data.RecentReports == nil {
		data.RecentReports = []ReportSummary{}
	}
	if data.RecentComments == nil {
		data.RecentComments = []CommentSummary{}
	}
	return &data, nil
}
