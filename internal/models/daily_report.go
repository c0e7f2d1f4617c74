package models

import "time"

// ReportStatus is the daily-report lifecycle state.
type ReportStatus string

const (
	StatusDraft     ReportStatus = "draft"
	StatusSubmitted ReportStatus = "submitted"
	StatusConfirmed ReportStatus = "confirmed"
)

// Valid reports whether s is one of the three known states.
func (s ReportStatus) Valid() bool {
	switch s {
	case StatusDraft, StatusSubmitted, StatusConfirmed:
		return true
	}
	return false
}

// Label returns the display label shown on report lists and the dashboard.
func (s ReportStatus) Label() string {
	switch s {
	case StatusDraft:
		return "下書き"
	case StatusSubmitted:
		return "提出済み"
	case StatusConfirmed:
		return "承認済み"
	}
	return string(s)
}

// DailyReport is one sales person's report for one calendar date. The composite
// unique index keeps a single report per (owner, date).
type DailyReport struct {
	ID            uint         `gorm:"primaryKey" json:"id"`
	SalesPersonID uint         `gorm:"not null;uniqueIndex:idx_reports_owner_date" json:"sales_person_id"`
	ReportDate    time.Time    `gorm:"type:date;not null;uniqueIndex:idx_reports_owner_date" json:"report_date"`
	Problem       *string      `json:"problem"`
	Plan          *string      `json:"plan"`
	Status        ReportStatus `gorm:"type:varchar(20);not null;default:'draft'" json:"status"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`

	Visits   []VisitRecord `gorm:"foreignKey:ReportID;constraint:OnDelete:CASCADE" json:"visits,omitempty"`
	Comments []Comment     `gorm:"foreignKey:ReportID;constraint:OnDelete:CASCADE" json:"comments,omitempty"`
}

func (DailyReport) TableName() string { return "daily_reports" }
