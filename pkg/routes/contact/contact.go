package contact

import (
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectoinject"
	"github.com/labstack/echo/v4"

	"github.com/mylesweissleder/newday-graph/pkg/analytics"
	ctxmiddleware "github.com/mylesweissleder/newday-graph/pkg/context"
	"github.com/mylesweissleder/newday-graph/pkg/discovery"
	"github.com/mylesweissleder/newday-graph/pkg/models"
	"github.com/mylesweissleder/newday-graph/pkg/relationships"
)

// Register registers contact-scoped routes
func Register(g *echo.Group) {
	g.GET("/:id/relationships", GetRelationships)
	g.GET("/:id/analytics", GetAnalytics)
	g.POST("/:id/analytics/refresh", RefreshAnalytics)
	g.POST("/:id/discover", Discover)
}

// GetRelationships lists a contact's relationships with the other endpoint's
// summary, optionally embedding the contact's network analytics
func GetRelationships(c echo.Context) error {
	ctx := c.Request().Context()

	scope := models.Scope{TenantID: ctxmiddleware.GetTenantID(ctx), ActorID: ctxmiddleware.GetActorID(ctx)}
	if scope.TenantID == "" {
		return httperror.NewHTTPError(http.StatusUnauthorized, "tenant_id is required")
	}

	includeAnalytics := c.QueryParam("include_analytics") == "true"

	ctx, svc, err := ectoinject.GetContext[*relationships.Service](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "service unavailable")
	}

	result, err := svc.GetRelationships(ctx, scope, c.Param("id"), includeAnalytics)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, result)
}

// GetAnalytics returns the contact's network analytics, recomputing when the
// cached record is stale
func GetAnalytics(c echo.Context) error {
	ctx := c.Request().Context()

	scope := models.Scope{TenantID: ctxmiddleware.GetTenantID(ctx), ActorID: ctxmiddleware.GetActorID(ctx)}
	if scope.TenantID == "" {
		return httperror.NewHTTPError(http.StatusUnauthorized, "tenant_id is required")
	}

	ctx, svc, err := ectoinject.GetContext[*analytics.Service](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "service unavailable")
	}

	record, err := svc.Get(ctx, scope, c.Param("id"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, record)
}

// RefreshAnalytics recomputes the contact's network analytics regardless of
// cache freshness
func RefreshAnalytics(c echo.Context) error {
	ctx := c.Request().Context()

	scope := models.Scope{TenantID: ctxmiddleware.GetTenantID(ctx), ActorID: ctxmiddleware.GetActorID(ctx)}
	if scope.TenantID == "" {
		return httperror.NewHTTPError(http.StatusUnauthorized, "tenant_id is required")
	}

	ctx, svc, err := ectoinject.GetContext[*analytics.Service](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "service unavailable")
	}

	record, err := svc.Compute(ctx, scope, c.Param("id"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, record)
}

// Discover runs relationship discovery for a single contact
func Discover(c echo.Context) error {
	ctx := c.Request().Context()

	scope := models.Scope{TenantID: ctxmiddleware.GetTenantID(ctx), ActorID: ctxmiddleware.GetActorID(ctx)}
	if scope.TenantID == "" {
		return httperror.NewHTTPError(http.StatusUnauthorized, "tenant_id is required")
	}

	ctx, svc, err := ectoinject.GetContext[*discovery.Service](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "service unavailable")
	}

	result, err := svc.DiscoverForContact(ctx, scope, c.Param("id"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, result)
}
