package domain

import "time"

// ReportStatus is a workflow state of a citizen report
type ReportStatus struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// ReportLocation is where a report was filed
type ReportLocation struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lon"`
	Address   string  `json:"address,omitempty"`
}

// StatusChange is one entry in a report's history
type StatusChange struct {
	StatusID  string    `json:"status_id"`
	Comment   string    `json:"comment"`
	Timestamp time.Time `json:"timestamp"`
}

// Comment is a citizen remark on a report
type Comment struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// Report is a citizen-submitted issue
type Report struct {
	ID            string         `json:"id"`
	Title         string         `json:"title"`
	Description   string         `json:"description"`
	CategoryID    string         `json:"category_id"`
	StatusID      string         `json:"status_id"`
	Priority      int            `json:"priority"`
	Location      ReportLocation `json:"location"`
	UserID        string         `json:"user_id"`
	CreatedAt     time.Time      `json:"created_at"`
	StatusHistory []StatusChange `json:"status_history"`
	Upvotes       int            `json:"upvotes"`
	Photos        []string       `json:"photos"`
	Comments      []Comment      `json:"comments"`
}

// ReportCreate is the body of a new report
type ReportCreate struct {
	Title       string         `json:"title"`
	Description string         `json:"description"`
	CategoryID  string         `json:"category_id"`
	Location    ReportLocation `json:"location"`
	UserID      string         `json:"user_id,omitempty"`
	Priority    int            `json:"priority,omitempty"`
	Photos      []string       `json:"photos,omitempty"`
}

// ReportStatusUpdate moves a report to a new status
type ReportStatusUpdate struct {
	StatusID string `json:"status_id"`
	Comment  string `json:"comment,omitempty"`
}

// CommentCreate is the body of a new comment
type CommentCreate struct {
	UserID string `json:"user_id,omitempty"`
	Text   string `json:"text"`
}

// ReportFilter narrows a report listing
type ReportFilter struct {
	CategoryID string
	StatusID   string
	Limit      int
}
