package relationship

import (
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectoinject"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	ctxmiddleware "github.com/mylesweissleder/newday-graph/pkg/context"
	"github.com/mylesweissleder/newday-graph/pkg/models"
	"github.com/mylesweissleder/newday-graph/pkg/relationships"
)

var validate = validator.New()

// Register registers relationship routes
func Register(g *echo.Group) {
	g.POST("", Create)
	g.GET("/:id", Get)
	g.PUT("/:id", Update)
	g.DELETE("/:id", Delete)
}

// Create creates a relationship between two contacts
func Create(c echo.Context) error {
	ctx := c.Request().Context()

	scope := models.Scope{TenantID: ctxmiddleware.GetTenantID(ctx), ActorID: ctxmiddleware.GetActorID(ctx)}
	if scope.TenantID == "" {
		return httperror.NewHTTPError(http.StatusUnauthorized, "tenant_id is required")
	}

	var req models.CreateRelationshipRequest
	if err := c.Bind(&req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx, svc, err := ectoinject.GetContext[*relationships.Service](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "service unavailable")
	}

	created, err := svc.Create(ctx, scope, &req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, created)
}

// Get returns a single relationship by ID
func Get(c echo.Context) error {
	ctx := c.Request().Context()

	scope := models.Scope{TenantID: ctxmiddleware.GetTenantID(ctx), ActorID: ctxmiddleware.GetActorID(ctx)}
	if scope.TenantID == "" {
		return httperror.NewHTTPError(http.StatusUnauthorized, "tenant_id is required")
	}

	ctx, svc, err := ectoinject.GetContext[*relationships.Service](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "service unavailable")
	}

	rel, err := svc.Get(ctx, scope, c.Param("id"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, rel)
}

// Update patches a relationship's type, strength, confidence or notes
func Update(c echo.Context) error {
	ctx := c.Request().Context()

	scope := models.Scope{TenantID: ctxmiddleware.GetTenantID(ctx), ActorID: ctxmiddleware.GetActorID(ctx)}
	if scope.TenantID == "" {
		return httperror.NewHTTPError(http.StatusUnauthorized, "tenant_id is required")
	}

	var req models.UpdateRelationshipRequest
	if err := c.Bind(&req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx, svc, err := ectoinject.GetContext[*relationships.Service](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "service unavailable")
	}

	updated, err := svc.Update(ctx, scope, c.Param("id"), &req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, updated)
}

// Delete removes a relationship
func Delete(c echo.Context) error {
	ctx := c.Request().Context()

	scope := models.Scope{TenantID: ctxmiddleware.GetTenantID(ctx), ActorID: ctxmiddleware.GetActorID(ctx)}
	if scope.TenantID == "" {
		return httperror.NewHTTPError(http.StatusUnauthorized, "tenant_id is required")
	}

	ctx, svc, err := ectoinject.GetContext[*relationships.Service](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "service unavailable")
	}

	if err := svc.Delete(ctx, scope, c.Param("id")); err != nil {
		return err
	}

	return c.NoContent(http.StatusNoContent)
}
