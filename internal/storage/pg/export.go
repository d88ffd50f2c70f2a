package pg

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/apptrove/apptrove/internal/domain"
)

// Exporter streams denormalized app documents out of the relational store
// for index loading. Apps are read in id-ordered batches; each batch is
// hydrated with names, descriptions, categories and version permissions.
type Exporter struct {
	pool      *ConnectionPool
	batchSize int
}

func NewExporter(pool *ConnectionPool, batchSize int) *Exporter {
	if batchSize <= 0 {
		batchSize = 1000
	}
	return &Exporter{pool: pool, batchSize: batchSize}
}

// Stream writes every app document to out, closing it when done.
func (e *Exporter) Stream(ctx context.Context, out chan<- domain.AppDocument) error {
	defer close(out)

	var lastID int64
	for {
		docs, err := e.nextBatch(ctx, lastID)
		if err != nil {
			return err
		}
		if len(docs) == 0 {
			return nil
		}

		for _, doc := range docs {
			select {
			case out <- doc:
			case <-ctx.Done():
				return ctx.Err()
			}
			if doc.AppID > lastID {
				lastID = doc.AppID
			}
		}
		slog.Debug("Exported app batch", "count", len(docs), "last_id", lastID)
	}
}

func (e *Exporter) nextBatch(ctx context.Context, afterID int64) ([]domain.AppDocument, error) {
	conn := e.pool.GetConn()

	rows, err := conn.Query(ctx, `
		SELECT ma.id, ma.app_id, mdev.developer_id
		  FROM model_app ma
		  JOIN model_developer mdev ON ma.developer_id = mdev.id
		 WHERE ma.id > $1
		 ORDER BY ma.id
		 LIMIT $2`, afterID, e.batchSize)
	if err != nil {
		return nil, fmt.Errorf("failed to query apps: %w", err)
	}

	byID := make(map[int64]*domain.AppDocument, e.batchSize)
	ids := make([]int64, 0, e.batchSize)
	for rows.Next() {
		var doc domain.AppDocument
		if err := rows.Scan(&doc.AppID, &doc.PackageName, &doc.DeveloperName); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan app: %w", err)
		}
		ids = append(ids, doc.AppID)
		byID[doc.AppID] = &doc
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read apps: %w", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	if err := e.hydrateNames(ctx, ids, byID); err != nil {
		return nil, err
	}
	if err := e.hydrateDescriptions(ctx, ids, byID); err != nil {
		return nil, err
	}
	if err := e.hydrateCategories(ctx, ids, byID); err != nil {
		return nil, err
	}
	if err := e.hydrateVersions(ctx, ids, byID); err != nil {
		return nil, err
	}

	docs := make([]domain.AppDocument, 0, len(ids))
	for _, id := range ids {
		docs = append(docs, *byID[id])
	}
	return docs, nil
}

func (e *Exporter) hydrateNames(ctx context.Context, ids []int64, byID map[int64]*domain.AppDocument) error {
	rows, err := e.pool.GetConn().Query(ctx, `
		SELECT app_id, name, created_on
		  FROM model_name
		 WHERE app_id = ANY($1)`, ids)
	if err != nil {
		return fmt.Errorf("failed to query names: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			appID     int64
			name      string
			createdOn *time.Time
		)
		if err := rows.Scan(&appID, &name, &createdOn); err != nil {
			return fmt.Errorf("failed to scan name: %w", err)
		}
		if doc := byID[appID]; doc != nil {
			doc.Names = append(doc.Names, domain.AppName{Name: name, CreatedOn: createdOn})
		}
	}
	return rows.Err()
}

func (e *Exporter) hydrateDescriptions(ctx context.Context, ids []int64, byID map[int64]*domain.AppDocument) error {
	rows, err := e.pool.GetConn().Query(ctx, `
		SELECT app_id, text, created_on
		  FROM model_description
		 WHERE app_id = ANY($1)`, ids)
	if err != nil {
		return fmt.Errorf("failed to query descriptions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			appID     int64
			text      string
			createdOn *time.Time
		)
		if err := rows.Scan(&appID, &text, &createdOn); err != nil {
			return fmt.Errorf("failed to scan description: %w", err)
		}
		if doc := byID[appID]; doc != nil {
			doc.Descriptions = append(doc.Descriptions, domain.AppDescription{Description: text, CreatedOn: createdOn})
		}
	}
	return rows.Err()
}

func (e *Exporter) hydrateCategories(ctx context.Context, ids []int64, byID map[int64]*domain.AppDocument) error {
	rows, err := e.pool.GetConn().Query(ctx, `
		SELECT mca.model_app_id, mc.name
		  FROM model_category_apps__model_app_categories mca
		  JOIN model_category mc ON mca.model_category_id = mc.id
		 WHERE mca.model_app_id = ANY($1)`, ids)
	if err != nil {
		return fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			appID int64
			name  string
		)
		if err := rows.Scan(&appID, &name); err != nil {
			return fmt.Errorf("failed to scan category: %w", err)
		}
		if doc := byID[appID]; doc != nil {
			doc.Categories = append(doc.Categories, name)
		}
	}
	return rows.Err()
}

// hydrateVersions attaches one version entry per download, with permissions
// unioned from the manifest-requested and app-declared sources.
func (e *Exporter) hydrateVersions(ctx context.Context, ids []int64, byID map[int64]*domain.AppDocument) error {
	rows, err := e.pool.GetConn().Query(ctx, `
		SELECT md.app_id, md.version_id, p1.name, p2.name
		  FROM model_download md
		  LEFT JOIN model_app_permissions p1 ON md.id = p1.download_id
		  LEFT JOIN model_androidmanifest am ON md.id = am.download_id
		  LEFT JOIN model_permissionrequested p2 ON am.id = p2.manifest_id
		 WHERE md.app_id = ANY($1)`, ids)
	if err != nil {
		return fmt.Errorf("failed to query versions: %w", err)
	}
	defer rows.Close()

	type versionKey struct {
		appID     int64
		versionID int64
	}
	perms := make(map[versionKey]map[string]struct{})
	var order []versionKey

	for rows.Next() {
		var (
			appID     int64
			versionID int64
			p1, p2    *string
		)
		if err := rows.Scan(&appID, &versionID, &p1, &p2); err != nil {
			return fmt.Errorf("failed to scan version: %w", err)
		}
		key := versionKey{appID: appID, versionID: versionID}
		set, ok := perms[key]
		if !ok {
			set = make(map[string]struct{})
			perms[key] = set
			order = append(order, key)
		}
		if p1 != nil {
			set[*p1] = struct{}{}
		}
		if p2 != nil {
			set[*p2] = struct{}{}
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for _, key := range order {
		doc := byID[key.appID]
		if doc == nil {
			continue
		}
		version := domain.AppVersion{ID: key.versionID, Permissions: []string{}}
		for p := range perms[key] {
			version.Permissions = append(version.Permissions, p)
		}
		sort.Strings(version.Permissions)
		doc.Versions = append(doc.Versions, version)
	}
	return nil
}
