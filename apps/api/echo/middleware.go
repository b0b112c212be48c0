package echoapi

import (
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/schooldash/core/school"
)

const contextEntity = "entity"

// adminMiddleware is the server side of the role gate: only identities allowed to mutate pass.
func adminMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		if getContextIdentity(ctx).CanMutate() {
			return next(ctx)
		}
		return errHttpForbidden
	}
}

// entityMiddleware resolves the :entity path param.
func entityMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		ent, ok := school.Lookup(ctx.Param("entity"))
		if !ok {
			return errHttpNotFound
		}
		ctx.Set(contextEntity, ent)
		return next(ctx)
	}
}

func getContextEntity(ctx echo.Context) (*school.Entity, error) {
	if ent, ok := ctx.Get(contextEntity).(*school.Entity); ok {
		return ent, nil
	}
	return nil, errors.Wrap(errHttpNotFound, "retrieving entity from context")
}
