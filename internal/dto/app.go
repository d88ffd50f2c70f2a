package dto

import "time"

// AppHit is one row of a search response. ID is the 1-based position of the
// hit in the overall result set (offset + position in page), assigned at
// response-assembly time.
type AppHit struct {
	ID          int    `json:"id"`
	AppID       int64  `json:"app_id"`
	Name        string `json:"name"`
	PackageName string `json:"package_name"`
}

// SearchPage is the cached unit for one (filters, offset, limit) request:
// the capped total plus exactly the hits of that page.
type SearchPage struct {
	TotalCount int64    `json:"total_count"`
	Hits       []AppHit `json:"hits"`
}

// AppDetails is the detail projection for a single app.
type AppDetails struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	Text        string     `json:"text"`
	CreatedOn   *time.Time `json:"created_on"`
	AppID       int64      `json:"app_id"`
	DeveloperID string     `json:"developer_id"`
	PackageName string     `json:"package_name"`
	Categories  []string   `json:"categories"`
	Maturity    []string   `json:"maturity"`
}

// VersionDetails describes one downloadable build of an app.
type VersionDetails struct {
	Hash         string     `json:"hash"`
	Size         int64      `json:"size"`
	Version      string     `json:"version"`
	CreatedOn    *time.Time `json:"created_on"`
	Permissions  []string   `json:"permissions"`
	TotalRatings int64      `json:"total_ratings"`
	Rating       float64    `json:"rating"`
	MinSDK       *int       `json:"min_sdk"`
	TargetSDK    *int       `json:"target_sdk"`
}
