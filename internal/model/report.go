package model

import "time"

// UserStatus is one row of the board-wide "who is clocked in" view.
type UserStatus struct {
	UserID        string    `json:"userId"`
	UserName      string    `json:"userName"`
	UserEmail     string    `json:"userEmail"`
	IsClockedIn   bool      `json:"isClockedIn"`
	LastPunchTime time.Time `json:"lastPunchTime"`
}

// UserMonthlyStats summarises one user's month on a board.
type UserMonthlyStats struct {
	UserID         string  `json:"userId"`
	UserName       string  `json:"userName"`
	UserEmail      string  `json:"userEmail"`
	TotalHours     float64 `json:"totalHours"`
	DaysWorked     int     `json:"daysWorked"`
	PunchCount     int     `json:"punchCount"`
	AvgHoursPerDay float64 `json:"avgHoursPerDay"`
}

// DailyHours is one day of a weekly summary. Date is YYYY-MM-DD.
type DailyHours struct {
	Date  string  `json:"date"`
	Hours float64 `json:"hours"`
}

// WeeklyBucket is one week of a monthly breakdown. WeekEnd is the last
// calendar day of the week (WeekStart + 6 days).
type WeeklyBucket struct {
	WeekStart string  `json:"weekStart"`
	WeekEnd   string  `json:"weekEnd"`
	Hours     float64 `json:"hours"`
	Days      int     `json:"days"`
}
