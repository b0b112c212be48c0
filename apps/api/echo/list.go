package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/schooldash/core"
	"github.com/trezcool/schooldash/core/school"
)

type listApi struct {
	svc  *school.Service
	conf *core.Config
}

func registerListAPI(g *echo.Group, svc *school.Service, conf *core.Config) {
	api := listApi{svc: svc, conf: conf}

	g.GET("", api.list)
	g.GET("/export", api.export, adminMiddleware)
	g.GET("/modal", api.modal, adminMiddleware)
	g.POST("", api.create, adminMiddleware)
	g.PUT("/:id", api.update, adminMiddleware)
	g.DELETE("/:id", api.destroy, adminMiddleware)
}

type (
	listResponse struct {
		Count int          `json:"count"`
		Page  int          `json:"page"`
		Pages int          `json:"pages"`
		Rows  []school.Row `json:"rows"`
	}

	keyResponse struct {
		ID string `json:"id"`
	}

	formSection struct {
		Name   string
		Fields []school.FormField
	}

	modalData struct {
		Mode     school.Mode
		Entity   *school.Entity
		Key      string
		Action   string
		Title    string
		Sections []formSection
		Values   map[string]string
	}
)

// Handlers

func (api *listApi) list(ctx echo.Context) error {
	ent, err := getContextEntity(ctx)
	if err != nil {
		return err
	}
	page, err := api.svc.List(ctx.Request().Context(), ent, ctx.QueryParams())
	if err != nil {
		return errors.Wrapf(err, "listing %s", ent.Kind)
	}

	if wantsJSON(ctx) {
		rows := page.Rows
		if rows == nil {
			rows = []school.Row{}
		}
		return ctx.JSON(http.StatusOK, listResponse{
			Count: page.Count,
			Page:  page.Page().Number,
			Pages: len(page.Pages()),
			Rows:  rows,
		})
	}
	return ctx.Render(http.StatusOK, "list", pageData{
		AppName:  api.conf.AppName,
		Identity: getContextIdentity(ctx),
		Entities: school.Entities(),
		Page:     page,
	})
}

// modal renders the create, update or delete Form Modal of an entity.
func (api *listApi) modal(ctx echo.Context) error {
	ent, err := getContextEntity(ctx)
	if err != nil {
		return err
	}
	mode, ok := school.ParseMode(ctx.QueryParam("type"))
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "type must be one of create, update, delete")
	}

	data := modalData{
		Mode:   mode,
		Entity: ent,
		Action: "/list/" + string(ent.Kind),
		Values: map[string]string{},
	}
	if mode == school.ModeCreate {
		data.Title = "Create new " + ent.Name
	} else {
		row, err := api.svc.Get(ctx.Request().Context(), ent, ctx.QueryParam("id"))
		if err != nil {
			return errors.Wrapf(err, "getting %s", ent.Name)
		}
		data.Key = row.Key()
		data.Action += "/" + row.Key()
		data.Title = "Update the " + ent.Name
		data.Values = row.FormData()
	}
	data.Sections = sections(ent.Fields)
	return ctx.Render(http.StatusOK, "modal", data)
}

// sections groups form fields by section, in declaration order.
func sections(fields []school.FormField) []formSection {
	var secs []formSection
	for _, fld := range fields {
		if n := len(secs); n > 0 && secs[n-1].Name == fld.Section {
			secs[n-1].Fields = append(secs[n-1].Fields, fld)
			continue
		}
		secs = append(secs, formSection{Name: fld.Section, Fields: []school.FormField{fld}})
	}
	return secs
}

func (api *listApi) create(ctx echo.Context) error {
	ent, err := getContextEntity(ctx)
	if err != nil {
		return err
	}
	form, err := bindForm(ctx, ent)
	if err != nil {
		return err
	}
	key, err := api.svc.Create(ctx.Request().Context(), ent, form)
	if err != nil {
		return errors.Wrapf(err, "creating %s", ent.Name)
	}
	return ctx.JSON(http.StatusCreated, keyResponse{ID: key})
}

func (api *listApi) update(ctx echo.Context) error {
	ent, err := getContextEntity(ctx)
	if err != nil {
		return err
	}
	form, err := bindForm(ctx, ent)
	if err != nil {
		return err
	}
	if err = api.svc.Update(ctx.Request().Context(), ent, ctx.Param("id"), form); err != nil {
		return errors.Wrapf(err, "updating %s", ent.Name)
	}
	return ctx.JSON(http.StatusOK, keyResponse{ID: ctx.Param("id")})
}

func (api *listApi) destroy(ctx echo.Context) error {
	ent, err := getContextEntity(ctx)
	if err != nil {
		return err
	}
	if err = api.svc.Delete(ctx.Request().Context(), ent, ctx.Param("id")); err != nil {
		return errors.Wrapf(err, "deleting %s", ent.Name)
	}
	return ctx.NoContent(http.StatusNoContent)
}
