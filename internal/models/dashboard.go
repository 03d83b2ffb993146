package models

// AccountUserCount is one row of the dashboard breakdown: how many user
// records point at a given account.
type AccountUserCount struct {
	AccountID   string `json:"accountId"`
	CompanyName string `json:"companyName"`
	UserCount   int    `json:"userCount"`
}

// DashboardStats aggregates the collection totals shown on the
// dashboard page.
type DashboardStats struct {
	TotalAccounts        int                `json:"totalAccounts"`
	TotalUsers           int                `json:"totalUsers"`
	PerAccountUserCounts []AccountUserCount `json:"perAccountUserCounts"`
}
