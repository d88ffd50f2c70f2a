package router

import (
	"errors"
	"net/http"
	"strings"

	"github.com/apptrove/apptrove/internal/apperr"
	"github.com/apptrove/apptrove/internal/auth"
	"github.com/apptrove/apptrove/internal/dto"
	"github.com/apptrove/apptrove/internal/storage/pg"
	"github.com/labstack/echo/v4"
)

// userContextKey is where the authenticated account lands in the request
// context.
const userContextKey = "authenticated-user"

// UserRouter handles registration, login and the download-permission
// middleware.
type UserRouter struct {
	e      *echo.Echo
	users  *pg.UserStore
	issuer *auth.TokenIssuer
}

func NewUserRouter(e *echo.Echo, users *pg.UserStore, issuer *auth.TokenIssuer) *UserRouter {
	return &UserRouter{
		e:      e,
		users:  users,
		issuer: issuer,
	}
}

func (r *UserRouter) Bind() {
	r.e.POST("/api/register", r.registerHandler)
	r.e.POST("/api/login", r.loginHandler)
}

func (r *UserRouter) registerHandler(c echo.Context) error {
	var req dto.UserCreate
	if err := c.Bind(&req); err != nil {
		return apperr.NewValidation("malformed request body")
	}

	var fields []apperr.FieldError
	if !strings.Contains(req.Email, "@") {
		fields = append(fields, apperr.FieldError{Field: "email", Reason: "must be a valid address"})
	}
	if len(req.Password) < 8 {
		fields = append(fields, apperr.FieldError{Field: "password", Reason: "must be at least 8 characters"})
	}
	if len(fields) > 0 {
		return apperr.NewValidationFields("invalid registration", fields)
	}

	ctx := c.Request().Context()
	if _, err := r.users.GetByEmail(ctx, req.Email); err == nil {
		return apperr.NewValidation("email already registered")
	} else if !errors.Is(err, pg.ErrNotFound) {
		return apperr.NewUnavailable("database", err)
	}

	hashed, err := auth.HashPassword(req.Password)
	if err != nil {
		return err
	}

	err = r.users.Create(ctx, &pg.User{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Password:  hashed,
	})
	if err != nil {
		return apperr.NewUnavailable("database", err)
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "user registered successfully"})
}

func (r *UserRouter) loginHandler(c echo.Context) error {
	var req dto.UserLogin
	if err := c.Bind(&req); err != nil {
		return apperr.NewValidation("malformed request body")
	}

	user, err := r.users.GetByEmail(c.Request().Context(), req.Email)
	if err != nil {
		if errors.Is(err, pg.ErrNotFound) {
			return apperr.NewValidation("incorrect email or password")
		}
		return apperr.NewUnavailable("database", err)
	}
	if !auth.VerifyPassword(req.Password, user.Password) {
		return apperr.NewValidation("incorrect email or password")
	}

	token, err := r.issuer.IssueSession(user.Email, auth.SessionTTL)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, dto.TokenResponse{AccessToken: token, TokenType: "bearer"})
}

// RequireDownloader authenticates the bearer token and rejects accounts
// without the download grant.
func (r *UserRouter) RequireDownloader(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		header := c.Request().Header.Get(echo.HeaderAuthorization)
		if header == "" {
			return echo.NewHTTPError(http.StatusForbidden, "not authenticated")
		}

		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok {
			return echo.NewHTTPError(http.StatusForbidden, "malformed authorization header")
		}

		email, err := r.issuer.VerifySession(token)
		if err != nil {
			if errors.Is(err, auth.ErrTokenExpired) {
				return echo.NewHTTPError(http.StatusUnauthorized, "token expired")
			}
			return echo.NewHTTPError(http.StatusForbidden, "invalid token")
		}

		user, err := r.users.GetByEmail(c.Request().Context(), email)
		if err != nil {
			if errors.Is(err, pg.ErrNotFound) {
				return echo.NewHTTPError(http.StatusForbidden, "invalid token")
			}
			return apperr.NewUnavailable("database", err)
		}
		if !user.AllowDownloads {
			return echo.NewHTTPError(http.StatusForbidden, "downloads are not enabled for this account")
		}

		c.Set(userContextKey, user)
		return next(c)
	}
}

// currentUser returns the account stored by RequireDownloader.
func currentUser(c echo.Context) (*pg.User, bool) {
	user, ok := c.Get(userContextKey).(*pg.User)
	return user, ok
}
