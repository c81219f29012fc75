package models

import (
	"slices"
	"time"
)

type ShiftType string

const (
	ShiftMorning        ShiftType = "morning"
	ShiftLate           ShiftType = "late"
	ShiftNight          ShiftType = "night"
	ShiftWeekendMorning ShiftType = "weekend_morning"
	ShiftWeekendNight   ShiftType = "weekend_night"
)

type ShiftStatus string

const (
	ShiftPending  ShiftStatus = "pending"
	ShiftAccepted ShiftStatus = "accepted"
	ShiftDeclined ShiftStatus = "declined"
	ShiftApproved ShiftStatus = "approved"
)

func (s ShiftStatus) Valid() bool {
	switch s {
	case ShiftPending, ShiftAccepted, ShiftDeclined, ShiftApproved:
		return true
	}
	return false
}

type Shift struct {
	ID                string      `gorm:"primaryKey;size:36" json:"id"`
	Date              Date        `gorm:"index;not null" json:"date"`
	Type              ShiftType   `gorm:"size:30;not null" json:"shift_type"`
	PlannedStart      string      `gorm:"size:5;not null" json:"planned_start"`
	PlannedEnd        string      `gorm:"size:5;not null" json:"planned_end"`
	ActualStart       *string     `gorm:"size:5" json:"actual_start"`
	ActualEnd         *string     `gorm:"size:5" json:"actual_end"`
	AssignedEmployees []string    `gorm:"serializer:json;type:text" json:"assigned_employees"`
	AssignedAdmin     *string     `gorm:"size:64" json:"assigned_admin"`
	Status            ShiftStatus `gorm:"size:20;index;not null" json:"status"`
	CreatedBy         string      `gorm:"size:64" json:"created_by,omitempty"`
	CreatedAt         time.Time   `json:"created_at"`
	UpdatedAt         time.Time   `json:"updated_at"`
}

func (s *Shift) Approved() bool {
	return s.Status == ShiftApproved
}

func (s *Shift) HasEmployee(username string) bool {
	return slices.Contains(s.AssignedEmployees, username)
}

// WorkedTimes returns the actual clock times when recorded, falling back to
// the planned ones.
func (s *Shift) WorkedTimes() (start, end string) {
	start, end = s.PlannedStart, s.PlannedEnd
	if s.ActualStart != nil && *s.ActualStart != "" {
		start = *s.ActualStart
	}
	if s.ActualEnd != nil && *s.ActualEnd != "" {
		end = *s.ActualEnd
	}
	return start, end
}
