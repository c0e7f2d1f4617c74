package models

import "time"

// Comment is a remark on a daily report, usually a supervisor's. Rows go away
// with the report and with the author.
type Comment struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	ReportID      uint      `gorm:"not null;index" json:"report_id"`
	SalesPersonID uint      `gorm:"not null;index" json:"sales_person_id"`
	CommentText   string    `gorm:"not null" json:"comment_text"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (Comment) TableName() string { return "comments" }
