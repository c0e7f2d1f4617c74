package models

import "time"

// Customer is visited-customer master data. CustomerName is logically unique;
// the creation path checks it, the DB does not enforce it.
type Customer struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	CustomerName  string    `gorm:"not null" json:"customer_name"`
	Address       *string   `json:"address"`
	Phone         *string   `json:"phone"`
	ContactPerson *string   `json:"contact_person"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (Customer) TableName() string { return "customers" }
