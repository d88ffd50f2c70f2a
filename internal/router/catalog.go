package router

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/apptrove/apptrove/internal/apperr"
	"github.com/apptrove/apptrove/internal/cache"
	"github.com/apptrove/apptrove/internal/domain"
	"github.com/apptrove/apptrove/internal/storage/pg"
	"github.com/labstack/echo/v4"
)

// CatalogRouter serves category listings and per-app detail reads, all
// cached with the same sliding TTL as search pages.
type CatalogRouter struct {
	e       *echo.Echo
	catalog *pg.CatalogStore
	store   cache.Cache
	ttl     time.Duration
}

func NewCatalogRouter(e *echo.Echo, catalog *pg.CatalogStore, store cache.Cache, ttl time.Duration) *CatalogRouter {
	return &CatalogRouter{
		e:       e,
		catalog: catalog,
		store:   store,
		ttl:     ttl,
	}
}

func (r *CatalogRouter) Bind() {
	r.e.GET("/api/categories", r.categoriesHandler)
	r.e.GET("/api/maturity", r.maturityHandler)
	r.e.GET("/api/details/:app_id", r.detailsHandler)
	r.e.GET("/api/version-details/:app_id", r.versionDetailsHandler)
}

func (r *CatalogRouter) categoriesHandler(c echo.Context) error {
	return r.cached(c, "categories", func(ctx context.Context) (any, error) {
		return r.catalog.ListCategories(ctx)
	})
}

// maturityHandler serves the fixed rating vocabulary. No storage involved.
func (r *CatalogRouter) maturityHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, domain.Maturity)
}

func (r *CatalogRouter) detailsHandler(c echo.Context) error {
	appID, err := parseAppID(c)
	if err != nil {
		return err
	}
	key := fmt.Sprintf("details:%d", appID)
	return r.cached(c, key, func(ctx context.Context) (any, error) {
		details, err := r.catalog.AppDetails(ctx, appID)
		if err != nil {
			if errors.Is(err, pg.ErrNotFound) {
				return nil, apperr.NewNotFound("details not found")
			}
			return nil, apperr.NewUnavailable("database", err)
		}
		return details, nil
	})
}

func (r *CatalogRouter) versionDetailsHandler(c echo.Context) error {
	appID, err := parseAppID(c)
	if err != nil {
		return err
	}
	key := fmt.Sprintf("version-details:%d", appID)
	return r.cached(c, key, func(ctx context.Context) (any, error) {
		details, err := r.catalog.VersionDetails(ctx, appID)
		if err != nil {
			if errors.Is(err, pg.ErrNotFound) {
				return nil, apperr.NewNotFound("no version records found")
			}
			return nil, apperr.NewUnavailable("database", err)
		}
		return details, nil
	})
}

// cached serves the payload at key from the cache, refreshing its TTL on a
// hit; on a miss it runs fetch and stores the marshaled result.
func (r *CatalogRouter) cached(c echo.Context, key string, fetch func(ctx context.Context) (any, error)) error {
	ctx := c.Request().Context()

	raw, err := r.store.Get(ctx, key)
	switch {
	case err == nil:
		if err := r.store.Refresh(ctx, key, r.ttl); err != nil {
			return apperr.NewUnavailable("cache", err)
		}
		return c.JSONBlob(http.StatusOK, raw)
	case !errors.Is(err, cache.ErrMiss):
		return apperr.NewUnavailable("cache", err)
	}

	payload, err := fetch(ctx)
	if err != nil {
		return err
	}

	raw, err = json.Marshal(payload)
	if err != nil {
		return err
	}
	if err := r.store.Put(ctx, key, raw, r.ttl); err != nil {
		return apperr.NewUnavailable("cache", err)
	}
	return c.JSONBlob(http.StatusOK, raw)
}

func parseAppID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("app_id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.NewValidation("invalid app_id")
	}
	return id, nil
}
