package models

import "time"

// VisitRecord is one customer visit inside a daily report. Deleting the report
// cascades here; deleting a customer is blocked while any visit references it.
type VisitRecord struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	ReportID     uint      `gorm:"not null;index" json:"report_id"`
	CustomerID   uint      `gorm:"not null;index" json:"customer_id"`
	Customer     *Customer `gorm:"foreignKey:CustomerID;constraint:OnDelete:RESTRICT" json:"customer,omitempty"`
	VisitTime    *string   `gorm:"type:varchar(5)" json:"visit_time"`
	VisitPurpose *string   `json:"visit_purpose"`
	VisitContent string    `gorm:"not null" json:"visit_content"`
	VisitResult  *string   `json:"visit_result"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (VisitRecord) TableName() string { return "visit_records" }
