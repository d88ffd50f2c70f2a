package router

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/apptrove/apptrove/internal/apperr"
	"github.com/apptrove/apptrove/internal/auth"
	"github.com/apptrove/apptrove/internal/cache"
	"github.com/apptrove/apptrove/internal/files"
	"github.com/apptrove/apptrove/internal/storage/pg"
	"github.com/labstack/echo/v4"
)

const (
	// downloadHourlyLimit caps granted download URLs per account per hour.
	downloadHourlyLimit = 10
	rateWindow          = time.Hour
)

// DownloadRouter grants time-limited signed download URLs and streams the
// files they point at. URL grants are rate limited and audit logged.
type DownloadRouter struct {
	e         *echo.Echo
	users     *UserRouter
	downloads *pg.DownloadStore
	store     *files.Store
	counter   cache.Counter
	issuer    *auth.TokenIssuer
}

func NewDownloadRouter(
	e *echo.Echo,
	users *UserRouter,
	downloads *pg.DownloadStore,
	store *files.Store,
	counter cache.Counter,
	issuer *auth.TokenIssuer,
) *DownloadRouter {
	return &DownloadRouter{
		e:         e,
		users:     users,
		downloads: downloads,
		store:     store,
		counter:   counter,
		issuer:    issuer,
	}
}

func (r *DownloadRouter) Bind() {
	r.e.GET("/api/generate-download-url/:hash", r.generateHandler, r.users.RequireDownloader)
	r.e.GET("/api/download/:hash", r.downloadHandler)
}

func (r *DownloadRouter) generateHandler(c echo.Context) error {
	user, ok := currentUser(c)
	if !ok {
		return echo.NewHTTPError(http.StatusForbidden, "not authenticated")
	}

	ctx := c.Request().Context()
	limited, err := r.rateLimited(c, user.Email)
	if err != nil {
		return err
	}
	if limited {
		return echo.NewHTTPError(http.StatusTooManyRequests, "rate limit exceeded, try again after an hour")
	}

	hash := c.Param("hash")
	if _, err := r.store.Resolve(hash); err != nil {
		if errors.Is(err, files.ErrNotFound) {
			return apperr.NewNotFound("file not found")
		}
		return err
	}

	pkg, err := r.downloads.PackageNameByHash(ctx, hash)
	if err != nil {
		if errors.Is(err, pg.ErrNotFound) {
			return apperr.NewNotFound("package name not found for the provided hash")
		}
		return apperr.NewUnavailable("database", err)
	}

	token, err := r.issuer.IssueDownload(hash, pkg, auth.DownloadTTL)
	if err != nil {
		return err
	}

	log := &pg.DownloadLog{
		Email:     user.Email,
		Hash:      hash,
		UserAgent: c.Request().UserAgent(),
		IPAddress: c.RealIP(),
	}
	if err := r.downloads.LogDownload(ctx, log); err != nil {
		return apperr.NewUnavailable("database", err)
	}

	slog.Info("Download URL granted", "email", user.Email, "hash", hash)
	return c.JSON(http.StatusOK, map[string]string{
		"url": fmt.Sprintf("/api/download/%s?token=%s", hash, token),
	})
}

// rateLimited counts this grant attempt against the account's hourly
// window. The window starts with the first attempt and expires as a whole.
func (r *DownloadRouter) rateLimited(c echo.Context, email string) (bool, error) {
	ctx := c.Request().Context()
	key := "download_rate:" + email

	n, err := r.counter.IncrBy(ctx, key, 1)
	if err != nil {
		return false, apperr.NewUnavailable("cache", err)
	}
	if n == 1 {
		if err := r.counter.Expire(ctx, key, rateWindow); err != nil {
			return false, apperr.NewUnavailable("cache", err)
		}
	}
	return n > downloadHourlyLimit, nil
}

func (r *DownloadRouter) downloadHandler(c echo.Context) error {
	hash := c.Param("hash")
	token := c.QueryParam("token")
	if token == "" {
		return echo.NewHTTPError(http.StatusForbidden, "missing token")
	}

	pkg, err := r.issuer.VerifyDownload(token, hash)
	if err != nil {
		if errors.Is(err, auth.ErrTokenExpired) {
			return echo.NewHTTPError(http.StatusForbidden, "token expired")
		}
		return echo.NewHTTPError(http.StatusForbidden, "invalid token")
	}

	path, err := r.store.Resolve(hash)
	if err != nil {
		if errors.Is(err, files.ErrNotFound) {
			return apperr.NewNotFound("file not found")
		}
		return err
	}

	filename := fmt.Sprintf("%s-%s.apk", pkg, hash)
	return c.Attachment(path, filename)
}
