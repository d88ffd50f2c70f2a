package domain

import "time"

// Maturity is the fixed content-rating vocabulary. These four values live in
// the same category set as free-form categories and are filtered out of
// category listings.
var Maturity = []string{"Everyone", "Low Maturity", "Medium Maturity", "High Maturity"}

// IsMaturity reports whether name is one of the reserved maturity ratings.
func IsMaturity(name string) bool {
	for _, m := range Maturity {
		if m == name {
			return true
		}
	}
	return false
}

// SplitMaturity partitions category names into free-form categories and
// maturity ratings, preserving order.
func SplitMaturity(names []string) (categories, maturity []string) {
	for _, n := range names {
		if IsMaturity(n) {
			maturity = append(maturity, n)
		} else {
			categories = append(categories, n)
		}
	}
	return categories, maturity
}

// AppDocument is the denormalized app record stored in the search index.
type AppDocument struct {
	AppID         int64            `json:"app_id"`
	PackageName   string           `json:"package_name"`
	DeveloperName string           `json:"developer_name"`
	Categories    []string         `json:"categories"`
	Names         []AppName        `json:"names"`
	Descriptions  []AppDescription `json:"descriptions"`
	Versions      []AppVersion     `json:"versions"`
}

// AppName is one historical name of an app.
type AppName struct {
	Name      string     `json:"name"`
	CreatedOn *time.Time `json:"created_on"`
}

// AppDescription is one historical store description of an app.
type AppDescription struct {
	Description string     `json:"description"`
	CreatedOn   *time.Time `json:"created_on"`
}

// AppVersion is one released version with its declared permissions.
type AppVersion struct {
	ID          int64    `json:"id"`
	Permissions []string `json:"permissions"`
}

// LatestName picks the most recently created name variant. Entries without a
// timestamp lose to any dated entry; ties break arbitrarily.
func (d *AppDocument) LatestName() string {
	var latest string
	var latestAt *time.Time
	for _, n := range d.Names {
		switch {
		case latest == "":
			latest, latestAt = n.Name, n.CreatedOn
		case n.CreatedOn != nil && (latestAt == nil || n.CreatedOn.After(*latestAt)):
			latest, latestAt = n.Name, n.CreatedOn
		}
	}
	return latest
}
