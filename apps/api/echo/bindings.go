package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/schooldash/core/school"
)

const imageField = "img"

// bindForm binds a Form Modal submission (form, multipart or JSON), with its image upload.
func bindForm(ctx echo.Context, ent *school.Entity) (school.Form, error) {
	form := ent.NewForm()
	if err := ctx.Bind(form); err != nil {
		return nil, errors.Wrapf(err, "binding %s form", ent.Name)
	}
	if !ent.HasImage() {
		return form, nil
	}

	fh, err := ctx.FormFile(imageField)
	switch err {
	case nil:
		form.SetImage(fh)
	case http.ErrMissingFile, http.ErrNotMultipart:
	default:
		return nil, errors.Wrap(err, "reading image upload")
	}
	return form, nil
}
