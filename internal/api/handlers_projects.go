package api

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/shuttle-hq/shuttle-sub002/internal/auth"
	"github.com/shuttle-hq/shuttle-sub002/internal/gateway"
	"github.com/shuttle-hq/shuttle-sub002/models"
)

// listProjects handles GET /api/v1/projects
func (s *Server) listProjects(c echo.Context) error {
	return c.JSON(http.StatusOK, s.projects.List())
}

// getProject handles GET /api/v1/projects/:name
func (s *Server) getProject(c echo.Context) error {
	name := c.Param("name")

	status, err := s.projects.Get(name)
	if err != nil {
		return NotFoundError("project", name)
	}

	return c.JSON(http.StatusOK, status)
}

// createProject handles POST /api/v1/projects
func (s *Server) createProject(c echo.Context) error {
	var req models.CreateProjectRequest
	if err := c.Bind(&req); err != nil {
		return BadRequestError("invalid request body", err.Error())
	}

	if err := s.validate.Struct(&req); err != nil {
		return ValidationError("invalid project request", fieldErrors(err))
	}

	accountID, ok := auth.GetAccountID(c)
	if !ok {
		accountID = "anonymous"
	}

	status, err := s.projects.CreateProject(req.Name, accountID, req.IdleMinutes)
	if err != nil {
		if errors.Is(err, gateway.ErrProjectExists) {
			return ConflictError("project already exists", req.Name)
		}
		return InternalError("failed to create project", err.Error())
	}

	s.debugLog("project %s created for account %s", req.Name, accountID)

	return c.JSON(http.StatusCreated, status)
}

// deleteProject handles DELETE /api/v1/projects/:name
func (s *Server) deleteProject(c echo.Context) error {
	name := c.Param("name")

	if err := s.projects.Delete(c.Request().Context(), name); err != nil {
		if errors.Is(err, gateway.ErrProjectNotFound) {
			return NotFoundError("project", name)
		}
		return InternalError("failed to delete project", err.Error())
	}

	return c.NoContent(http.StatusNoContent)
}

// wakeProject handles POST /api/v1/projects/:name/wake
func (s *Server) wakeProject(c echo.Context) error {
	name := c.Param("name")

	status, err := s.projects.Wake(name)
	if err != nil {
		switch {
		case errors.Is(err, gateway.ErrProjectNotFound):
			return NotFoundError("project", name)
		case errors.Is(err, gateway.ErrProjectNotAsleep):
			return ConflictError("project is not asleep", name)
		default:
			return InternalError("failed to wake project", err.Error())
		}
	}

	return c.JSON(http.StatusOK, status)
}

// projectStatus handles GET /api/v1/projects/:name/status
func (s *Server) projectStatus(c echo.Context) error {
	name := c.Param("name")

	status, err := s.projects.Get(name)
	if err != nil {
		return NotFoundError("project", name)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"name":  status.Name,
		"state": status.State,
		"error": status.Error,
	})
}

// fieldErrors flattens validator errors into a field -> message map.
func fieldErrors(err error) map[string]string {
	fields := make(map[string]string)

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			fields[fe.Field()] = "failed on " + fe.Tag()
		}
		return fields
	}

	fields["request"] = err.Error()
	return fields
}
