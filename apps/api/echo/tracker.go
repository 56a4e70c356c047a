package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/Abraham77967/Taskmate-Web/core/class"
)

type trackerApi struct {
	trk Tracker
}

func registerTrackerAPI(g *echo.Group, trk Tracker) {
	api := trackerApi{trk: trk}

	g.GET("/dashboard", api.dashboard)

	cg := g.Group("/classes")
	cg.GET("", api.listClasses)
	cg.POST("", api.createClass)
	cg.GET("/options", api.classOptions)
	cg.PUT("/:id", api.replaceClass)
	cg.DELETE("/:id", api.deleteClass)

	hg := g.Group("/homework")
	hg.GET("", api.listHomework)
	hg.POST("", api.createHomework)
	hg.GET("/:id/form", api.homeworkForm)
	hg.PUT("/:id", api.updateHomework)
	hg.POST("/:id/toggle", api.toggleHomework)
	hg.DELETE("/:id", api.deleteHomework)
}

// Handlers

func (api *trackerApi) dashboard(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, api.trk.Dashboard(api.trk.Now()))
}

func (api *trackerApi) listClasses(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, api.trk.Classes())
}

func (api *trackerApi) classOptions(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, api.trk.ClassOptions())
}

func (api *trackerApi) createClass(ctx echo.Context) error {
	var data class.NewClass
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewClass")
	}
	id, err := api.trk.AddClass(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating class")
	}
	return ctx.JSON(http.StatusCreated, CreatedResponse{ID: id})
}

func (api *trackerApi) replaceClass(ctx echo.Context) error {
	var data class.NewClass
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewClass")
	}
	if err := api.trk.ReplaceClass(ctx.Request().Context(), ctx.Param("id"), data); err != nil {
		return errors.Wrap(err, "replacing class")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *trackerApi) deleteClass(ctx echo.Context) error {
	if err := api.trk.DeleteClass(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting class")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *trackerApi) listHomework(ctx echo.Context) error {
	f, err := bindFilter(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, api.trk.Homework(f, api.trk.Now()))
}

func (api *trackerApi) homeworkForm(ctx echo.Context) error {
	form, err := api.trk.EditForm(ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, form)
}

func (api *trackerApi) createHomework(ctx echo.Context) error {
	var data HomeworkRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to HomeworkRequest")
	}
	nh, err := data.NewHomework(api.trk.Now().Location())
	if err != nil {
		return err
	}
	id, err := api.trk.AddHomework(ctx.Request().Context(), nh)
	if err != nil {
		return errors.Wrap(err, "creating homework")
	}
	return ctx.JSON(http.StatusCreated, CreatedResponse{ID: id})
}

func (api *trackerApi) updateHomework(ctx echo.Context) error {
	var data HomeworkRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to HomeworkRequest")
	}
	uh, err := data.UpdateHomework(api.trk.Now().Location())
	if err != nil {
		return err
	}
	if err := api.trk.EditHomework(ctx.Request().Context(), ctx.Param("id"), uh); err != nil {
		return errors.Wrap(err, "updating homework")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *trackerApi) toggleHomework(ctx echo.Context) error {
	if err := api.trk.ToggleHomework(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "toggling homework")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *trackerApi) deleteHomework(ctx echo.Context) error {
	if err := api.trk.DeleteHomework(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting homework")
	}
	return ctx.NoContent(http.StatusNoContent)
}
