package models

// Activity is an entry in the admin dashboard feed.
type Activity struct {
	Type      string `json:"type"` // e.g. "column", "user", "publish", "delete"
	Message   string `json:"message"`
	Timestamp int64  `json:"timestamp"` // unix milliseconds
}

// Comment is a reader comment on a published column.
type Comment struct {
	ID        string `json:"id"`
	ColumnID  string `json:"columnId"`
	Name      string `json:"name"`
	Body      string `json:"body"`
	CreatedAt string `json:"createdAt"`
}

// DashboardStats backs the admin dashboard counters.
type DashboardStats struct {
	TotalViews         int `json:"totalViews"`
	TotalColumns       int `json:"totalColumns"`
	PublishedColumns   int `json:"publishedColumns"`
	DraftColumns       int `json:"draftColumns"`
	TotalUsers         int `json:"totalUsers"`
	TotalComments      int `json:"totalComments"`
	PendingSubmissions int `json:"pendingSubmissions"`
}
