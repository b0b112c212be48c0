package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/trezcool/schooldash/core"
	"github.com/trezcool/schooldash/core/school"
)

type scheduleApi struct {
	svc  *school.Service
	conf *core.Config
}

// schedule shows a teacher's week of lessons, grouped by day.
func (api *scheduleApi) schedule(ctx echo.Context) error {
	sch, err := api.svc.Schedule(ctx.Request().Context(), ctx.QueryParams())
	if err != nil {
		return err
	}
	if wantsJSON(ctx) {
		return ctx.JSON(http.StatusOK, sch)
	}
	return ctx.Render(http.StatusOK, "schedule", pageData{
		AppName:  api.conf.AppName,
		Identity: getContextIdentity(ctx),
		Entities: school.Entities(),
		Schedule: sch,
	})
}
