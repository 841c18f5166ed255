package models

// DashboardStats aggregates the admin landing-page counters.
type DashboardStats struct {
	TotalStudents        int            `json:"total_students"`
	TotalTeachers        int            `json:"total_teachers"`
	PendingRegistrations int            `json:"pending_registrations"`
	TotalMaterials       int            `json:"total_materials"`
	TotalSchedules       int            `json:"total_schedules"`
	RecentRegistrations  []Registration `json:"recent_registrations"`
}
