package router

import (
	"net/http"
	"strconv"

	"github.com/apptrove/apptrove/internal/search"
	"github.com/labstack/echo/v4"
)

// HeaderTotalCount carries the capped result total of a search response.
const HeaderTotalCount = "x-total-count"

// SearchRouter wires the search endpoint: validate, consult the result
// cache, fall through to the executor on a miss.
type SearchRouter struct {
	e        *echo.Echo
	executor *search.Executor
	cache    *search.ResultCache
}

func NewSearchRouter(e *echo.Echo, executor *search.Executor, cache *search.ResultCache) *SearchRouter {
	return &SearchRouter{
		e:        e,
		executor: executor,
		cache:    cache,
	}
}

func (r *SearchRouter) Bind() {
	r.e.GET("/api/search", r.searchHandler)
}

func (r *SearchRouter) searchHandler(c echo.Context) error {
	filters, err := search.ParseFilters(search.RawParams{
		Keyword:       c.QueryParam("keyword"),
		Query:         c.QueryParam("query"),
		PackageName:   c.QueryParam("package_name"),
		DeveloperName: c.QueryParam("developer_name"),
		Categories:    c.QueryParam("categories"),
		Maturity:      c.QueryParam("maturity"),
		Permissions:   c.QueryParam("permissions"),
		Downloadable:  c.QueryParam("downloadable"),
		Page:          c.QueryParam("page"),
		Limit:         c.QueryParam("limit"),
	})
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	key := search.CacheKey(filters)

	page, err := r.cache.Get(ctx, key)
	if err != nil {
		return err
	}
	if page == nil {
		page, err = r.executor.Search(ctx, filters)
		if err != nil {
			return err
		}
	}

	// An empty page is a valid outcome, served as 200 with an empty array.
	c.Response().Header().Set(HeaderTotalCount, strconv.FormatInt(page.TotalCount, 10))
	return c.JSON(http.StatusOK, page.Hits)
}
