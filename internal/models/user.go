package models

import "time"

type Role string

const (
	RoleHeadAdmin Role = "head_admin"
	RoleAdmin     Role = "admin"
	RoleEmployee  Role = "employee"
)

func (r Role) Valid() bool {
	switch r {
	case RoleHeadAdmin, RoleAdmin, RoleEmployee:
		return true
	}
	return false
}

// User is keyed by username. PasswordHash keeps the "password" JSON key so
// existing users.json files load unchanged.
type User struct {
	Username       string     `gorm:"primaryKey;size:64" json:"username"`
	PasswordHash   string     `gorm:"size:255;not null" json:"password"`
	Role           Role       `gorm:"size:20;index;not null" json:"role"`
	Name           string     `gorm:"size:100;not null" json:"name"`
	Email          string     `gorm:"size:100" json:"email"`
	PrimaryShift   ShiftType  `gorm:"size:30" json:"primary_shift,omitempty"`
	SecondaryShift *ShiftType `gorm:"size:30" json:"secondary_shift"`
	HourlyRate     float64    `gorm:"not null;default:0" json:"hourly_rate"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// ShiftTypes returns the primary and, when set, the secondary shift type.
func (u *User) ShiftTypes() []ShiftType {
	var types []ShiftType
	if u.PrimaryShift != "" {
		types = append(types, u.PrimaryShift)
	}
	if u.SecondaryShift != nil && *u.SecondaryShift != "" {
		types = append(types, *u.SecondaryShift)
	}
	return types
}

// Payable reports whether the user takes part in payroll runs.
func (u *User) Payable() bool {
	return u.Role == RoleEmployee || u.Role == RoleAdmin
}

// UserProfile is the public view of a user; it never carries the hash.
type UserProfile struct {
	Username       string     `json:"username"`
	Name           string     `json:"name"`
	Email          string     `json:"email"`
	Role           Role       `json:"role"`
	PrimaryShift   ShiftType  `json:"primary_shift,omitempty"`
	SecondaryShift *ShiftType `json:"secondary_shift"`
	HourlyRate     float64    `json:"hourly_rate"`
}

func (u *User) Profile() UserProfile {
	return UserProfile{
		Username:       u.Username,
		Name:           u.Name,
		Email:          u.Email,
		Role:           u.Role,
		PrimaryShift:   u.PrimaryShift,
		SecondaryShift: u.SecondaryShift,
		HourlyRate:     u.HourlyRate,
	}
}
