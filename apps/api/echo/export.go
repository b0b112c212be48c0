package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"
)

const mimeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// export writes every row of the filtered list to a spreadsheet.
func (api *listApi) export(ctx echo.Context) error {
	ent, err := getContextEntity(ctx)
	if err != nil {
		return err
	}
	rows, err := api.svc.Export(ctx.Request().Context(), ent, ctx.QueryParams())
	if err != nil {
		return errors.Wrapf(err, "exporting %s", ent.Kind)
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := ent.Title
	if err = f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return errors.Wrap(err, "naming sheet")
	}
	header := make([]interface{}, 0, len(ent.Columns))
	for _, col := range ent.Columns {
		header = append(header, col)
	}
	if err = f.SetSheetRow(sheet, "A1", &header); err != nil {
		return errors.Wrap(err, "writing header")
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return errors.Wrap(err, "locating row")
		}
		cells := row.Cells()
		if err = f.SetSheetRow(sheet, cell, &cells); err != nil {
			return errors.Wrapf(err, "writing row %s", row.Key())
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return errors.Wrap(err, "writing spreadsheet")
	}
	ctx.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+string(ent.Kind)+`.xlsx"`)
	return ctx.Blob(http.StatusOK, mimeXLSX, buf.Bytes())
}
