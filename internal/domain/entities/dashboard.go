package entities

import "github.com/shopspring/decimal"

// CustomerDashboardStats summarizes a customer's applications
type CustomerDashboardStats struct {
	TotalApplications int64 `json:"totalApplications"`
	Pending           int64 `json:"pending"`
	Processing        int64 `json:"processing"`
	Completed         int64 `json:"completed"`
}

// AdminDashboardStats summarizes platform activity
type AdminDashboardStats struct {
	TotalUsers          int64           `json:"totalUsers"`
	TotalApplications   int64           `json:"totalApplications"`
	PendingApplications int64           `json:"pendingApplications"`
	TotalRevenue        decimal.Decimal `json:"totalRevenue"`
}

// ApplicationStatusCounts is a per-status tally
type ApplicationStatusCounts map[ApplicationStatus]int64
