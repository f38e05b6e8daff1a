package db

import "time"

// isoLayout renders timestamps in the same shape as JavaScript's toISOString.
const isoLayout = "2006-01-02T15:04:05.000Z07:00"

const day = 24 * time.Hour

// FormatDate renders t as a UTC ISO-8601 timestamp with millisecond precision.
func FormatDate(t time.Time) string {
	return t.UTC().Format(isoLayout)
}

// Seed returns the demo dataset used when nothing has been stored yet.
// Activity dates are relative to now.
func Seed(now time.Time) Snapshot {
	return Snapshot{
		Version: CurrentVersion,
		Users: []User{
			{ID: 1, Username: "admin", Password: "admin123", Name: "Admin Alice", Role: RoleAdmin},
			{ID: 2, Username: "bob", Password: "bob123", Name: "Student Bob", Role: RoleStudent},
			{ID: 3, Username: "charlie", Password: "charlie123", Name: "Student Charlie", Role: RoleStudent},
		},
		Activities: []Activity{
			{
				ID:          1,
				Name:        "Varsity Soccer Tryouts",
				Description: "Open tryouts for the varsity soccer team. Bring cleats and water.",
				Date:        FormatDate(now.Add(2 * day)),
				Category:    CategorySport,
			},
			{
				ID:          2,
				Name:        "Debate Club Meeting",
				Description: "Weekly meeting. Topic: The impact of AI on education.",
				Date:        FormatDate(now.Add(5 * day)),
				Category:    CategoryClub,
			},
			{
				ID:          3,
				Name:        "Spring Hackathon",
				Description: "Annual 24-hour coding competition. Food provided!",
				Date:        FormatDate(now.Add(14 * day)),
				Category:    CategoryEvent,
			},
		},
		Registrations: []Registration{
			{ID: 1, UserID: 2, ActivityID: 2, Status: StatusRegistered},
			{ID: 2, UserID: 3, ActivityID: 3, Status: StatusRegistered},
		},
		SessionUserID: nil,
	}
}
