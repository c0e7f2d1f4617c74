package models

import "time"

// SalesPerson is a sales staff member. ManagerID, when set, points at the
// person's direct manager.
type SalesPerson struct {
	ID         uint         `gorm:"primaryKey" json:"id"`
	Name       string       `gorm:"not null" json:"name"`
	Email      string       `gorm:"unique;not null" json:"email"`
	Password   string       `gorm:"not null" json:"-"`
	Department string       `json:"department"`
	IsManager  bool         `gorm:"not null;default:false" json:"is_manager"`
	ManagerID  *uint        `json:"manager_id"`
	Manager    *SalesPerson `gorm:"foreignKey:ManagerID" json:"-"`
	CreatedAt  time.Time    `json:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at"`

	Reports  []DailyReport `gorm:"foreignKey:SalesPersonID;constraint:OnDelete:CASCADE" json:"-"`
	Comments []Comment     `gorm:"foreignKey:SalesPersonID;constraint:OnDelete:CASCADE" json:"-"`
}

func (SalesPerson) TableName() string { return "sales_persons" }
