package models

import "time"

// PayrollEntry is a manual payroll adjustment such as a bonus or a
// reimbursement. It adds pay without adding hours.
type PayrollEntry struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	Username    string    `gorm:"size:64;index;not null" json:"username"`
	Date        Date      `gorm:"index;not null" json:"date"`
	Amount      float64   `gorm:"not null" json:"amount"`
	Description string    `gorm:"size:255" json:"description"`
	CreatedBy   string    `gorm:"size:64" json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
}
