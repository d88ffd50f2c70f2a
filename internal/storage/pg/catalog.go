package pg

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/apptrove/apptrove/internal/domain"
	"github.com/apptrove/apptrove/internal/dto"
	"github.com/jackc/pgx/v5"
)

// CatalogStore serves the relational catalog reads: category listing, app
// details and per-version details.
type CatalogStore struct {
	pool *ConnectionPool
}

func NewCatalogStore(pool *ConnectionPool) *CatalogStore {
	return &CatalogStore{pool: pool}
}

// ListCategories returns the distinct free-form category names, with the
// reserved maturity ratings filtered out.
func (s *CatalogStore) ListCategories(ctx context.Context) ([]string, error) {
	rows, err := s.pool.GetConn().Query(ctx, `SELECT DISTINCT name FROM model_category ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	names := make([]string, 0, 64)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read categories: %w", err)
	}

	categories, _ := domain.SplitMaturity(names)
	if categories == nil {
		categories = []string{}
	}
	return categories, nil
}

const appDetailsQuery = `
SELECT md.id,
       md.text,
       md.created_on,
       md.app_id,
       mdev.developer_id,
       ma.app_id AS package_name,
       (SELECT mn.name
          FROM model_name mn
         WHERE mn.app_id = ma.id
         ORDER BY mn.created_on DESC NULLS LAST
         LIMIT 1) AS name,
       COALESCE(array_agg(DISTINCT mc.name) FILTER (WHERE mc.name IS NOT NULL), '{}') AS categories
  FROM model_description md
  JOIN model_app ma ON md.app_id = ma.id
  JOIN model_developer mdev ON ma.developer_id = mdev.id
  LEFT JOIN model_category_apps__model_app_categories mca ON ma.id = mca.model_app_id
  LEFT JOIN model_category mc ON mca.model_category_id = mc.id
 WHERE md.app_id = $1
 GROUP BY md.id, md.text, md.created_on, md.app_id, mdev.developer_id, ma.app_id
 ORDER BY md.created_on DESC NULLS LAST
 LIMIT 1`

// AppDetails returns the latest description of an app joined with its latest
// name, developer and category tags (maturity split out).
func (s *CatalogStore) AppDetails(ctx context.Context, appID int64) (*dto.AppDetails, error) {
	var (
		d     dto.AppDetails
		name  *string
		names []string
	)
	err := s.pool.GetConn().QueryRow(ctx, appDetailsQuery, appID).Scan(
		&d.ID, &d.Text, &d.CreatedOn, &d.AppID, &d.DeveloperID, &d.PackageName, &name, &names,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to query app details: %w", err)
	}

	if name != nil {
		d.Name = *name
	}
	d.Categories, d.Maturity = domain.SplitMaturity(names)
	if d.Categories == nil {
		d.Categories = []string{}
	}
	if d.Maturity == nil {
		d.Maturity = []string{}
	}
	return &d, nil
}

const versionDetailsQuery = `
SELECT md.id,
       md.hash,
       md.size,
       md.created_on,
       mv.version,
       p1.name  AS permission_1,
       p2.name  AS permission_2,
       mr.number_of_ratings,
       mr.one_star_ratings,
       mr.two_star_ratings,
       mr.three_star_ratings,
       mr.four_star_ratings,
       mr.five_star_ratings,
       sdk.min_sdk_number,
       sdk.target_sdk_number
  FROM model_download md
  JOIN model_version mv ON md.version_id = mv.id
  LEFT JOIN model_app_permissions p1 ON md.id = p1.download_id
  LEFT JOIN model_androidmanifest am ON md.id = am.download_id
  LEFT JOIN model_permissionrequested p2 ON am.id = p2.manifest_id
  LEFT JOIN model_sdkversion sdk ON am.id = sdk.manifest_id
  LEFT JOIN model_rating mr ON md.app_id = mr.app_id
       AND EXTRACT(YEAR FROM md.created_on) = EXTRACT(YEAR FROM mr.created_on)
 WHERE md.app_id = $1
 ORDER BY md.created_on DESC`

// maxSDKLevel bounds plausible SDK levels; manifests carry garbage beyond it.
const maxSDKLevel = 35

// VersionDetails returns one record per download of an app, newest first,
// with permissions unioned from both permission sources and the rating
// aggregate collapsed to a star average.
func (s *CatalogStore) VersionDetails(ctx context.Context, appID int64) ([]dto.VersionDetails, error) {
	rows, err := s.pool.GetConn().Query(ctx, versionDetailsQuery, appID)
	if err != nil {
		return nil, fmt.Errorf("failed to query version details: %w", err)
	}
	defer rows.Close()

	type aggregate struct {
		details dto.VersionDetails
		perms   map[string]struct{}
	}
	var order []int64
	byDownload := make(map[int64]*aggregate)

	for rows.Next() {
		var (
			downloadID  int64
			hash        string
			size        *int64
			createdOn   *time.Time
			version     string
			perm1       *string
			perm2       *string
			totalRating *int64
			stars       [5]*int64
			minSDK      *int
			targetSDK   *int
		)
		if err := rows.Scan(
			&downloadID, &hash, &size, &createdOn, &version,
			&perm1, &perm2,
			&totalRating, &stars[0], &stars[1], &stars[2], &stars[3], &stars[4],
			&minSDK, &targetSDK,
		); err != nil {
			return nil, fmt.Errorf("failed to scan version details: %w", err)
		}

		agg, ok := byDownload[downloadID]
		if !ok {
			d := dto.VersionDetails{
				Hash:        hash,
				Version:     version,
				CreatedOn:   createdOn,
				Permissions: []string{},
			}
			if size != nil {
				d.Size = *size
			}
			if totalRating != nil {
				d.TotalRatings = *totalRating
				d.Rating = starAverage(*totalRating, stars)
			}
			if minSDK != nil && *minSDK >= 1 && *minSDK <= maxSDKLevel {
				d.MinSDK = minSDK
				if targetSDK != nil && *targetSDK >= 1 && *targetSDK <= maxSDKLevel && *targetSDK >= *minSDK {
					d.TargetSDK = targetSDK
				}
			}
			agg = &aggregate{details: d, perms: make(map[string]struct{})}
			byDownload[downloadID] = agg
			order = append(order, downloadID)
		}
		if perm1 != nil {
			agg.perms[*perm1] = struct{}{}
		}
		if perm2 != nil {
			agg.perms[*perm2] = struct{}{}
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read version details: %w", err)
	}

	if len(order) == 0 {
		return nil, ErrNotFound
	}

	out := make([]dto.VersionDetails, 0, len(order))
	for _, id := range order {
		agg := byDownload[id]
		for p := range agg.perms {
			agg.details.Permissions = append(agg.details.Permissions, p)
		}
		sort.Strings(agg.details.Permissions)
		out = append(out, agg.details)
	}
	return out, nil
}

func starAverage(total int64, stars [5]*int64) float64 {
	if total == 0 {
		return 0
	}
	var weighted int64
	for i, s := range stars {
		if s != nil {
			weighted += int64(i+1) * *s
		}
	}
	avg := float64(weighted) / float64(total)
	return math.Round(avg*100) / 100
}
