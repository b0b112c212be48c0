package echoapi

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/schooldash/core"
	"github.com/trezcool/schooldash/core/school"
	"github.com/trezcool/schooldash/core/user"
)

type authApi struct {
	svc    *user.Service
	tokens core.TokenStore
	conf   *core.Config
}

type (
	LoginRequest struct {
		Username string `json:"username" form:"username"`
		Password string `json:"password" form:"password"`
	}

	LoginResponse struct {
		Token string `json:"token"`
	}
)

// pageData is what the layout template renders around a page.
type pageData struct {
	AppName  string
	Identity user.Identity
	Entities []*school.Entity
	Page     school.ListPage
	Schedule school.Schedule
	Error    string
}

func (api *authApi) loginPage(ctx echo.Context) error {
	return ctx.Render(http.StatusOK, "login", pageData{AppName: api.conf.AppName})
}

func (api *authApi) login(ctx echo.Context) error {
	var data LoginRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LoginRequest")
	}
	if data.Username == "" || data.Password == "" {
		return api.loginFailed(ctx, errAuthenticationFailed)
	}

	usr, err := api.svc.Authenticate(ctx.Request().Context(), data.Username, data.Password)
	switch errors.Cause(err) {
	case nil:
	case user.ErrAuthenticationFailed:
		return api.loginFailed(ctx, errAuthenticationFailed)
	case user.ErrAccountDeactivated:
		return api.loginFailed(ctx, errAccountDeactivated)
	default:
		return errors.Wrap(err, "authenticating")
	}

	claims := GetUserClaims(usr, api.conf)
	token, err := GenerateToken(claims, api.conf.SecretKey)
	if err != nil {
		return errors.Wrap(err, "generating token")
	}
	ctx.SetCookie(&http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		Expires:  time.Unix(claims.ExpiresAt, 0),
		HttpOnly: true,
		Secure:   !api.conf.Debug,
		SameSite: http.SameSiteLaxMode,
	})

	if wantsHTML(ctx) {
		return ctx.Redirect(http.StatusSeeOther, "/")
	}
	return ctx.JSON(http.StatusOK, LoginResponse{Token: token})
}

func (api *authApi) loginFailed(ctx echo.Context, herr *echo.HTTPError) error {
	if wantsHTML(ctx) {
		msg, _ := herr.Message.(string)
		return ctx.Render(herr.Code, "login", pageData{AppName: api.conf.AppName, Error: msg})
	}
	return herr
}

// logout revokes the session token until it expires.
func (api *authApi) logout(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}
	if api.tokens != nil {
		if err = api.tokens.Revoke(ctx.Request().Context(), claims.Id, time.Unix(claims.ExpiresAt, 0)); err != nil {
			return errors.Wrap(err, "revoking session")
		}
	}
	ctx.SetCookie(&http.Cookie{Name: sessionCookie, Value: "", Path: "/", MaxAge: -1, HttpOnly: true})

	if wantsHTML(ctx) {
		return ctx.Redirect(http.StatusSeeOther, "/login")
	}
	return ctx.NoContent(http.StatusNoContent)
}
