package path

import (
	"net/http"
	"strconv"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectoinject"
	"github.com/labstack/echo/v4"

	ctxmiddleware "github.com/mylesweissleder/newday-graph/pkg/context"
	"github.com/mylesweissleder/newday-graph/pkg/models"
	"github.com/mylesweissleder/newday-graph/pkg/paths"
)

// Register registers path and reachability routes
func Register(g *echo.Group) {
	g.GET("/shortest", ShortestPath)
	g.GET("/all", FindPaths)
	g.GET("/mutual", MutualConnections)
}

// ShortestPath returns the shortest path between two contacts within the
// degree bound
func ShortestPath(c echo.Context) error {
	ctx := c.Request().Context()

	scope := models.Scope{TenantID: ctxmiddleware.GetTenantID(ctx), ActorID: ctxmiddleware.GetActorID(ctx)}
	if scope.TenantID == "" {
		return httperror.NewHTTPError(http.StatusUnauthorized, "tenant_id is required")
	}

	from := c.QueryParam("from")
	to := c.QueryParam("to")
	if from == "" || to == "" {
		return httperror.NewHTTPError(http.StatusBadRequest, "from and to query parameters are required")
	}
	maxDegrees, _ := strconv.Atoi(c.QueryParam("max_degrees"))

	ctx, svc, err := ectoinject.GetContext[*paths.Service](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "service unavailable")
	}

	result, err := svc.ShortestPath(ctx, scope, from, to, maxDegrees)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, result)
}

// FindPaths enumerates paths between two contacts, optionally filtered by a
// minimum edge strength
func FindPaths(c echo.Context) error {
	ctx := c.Request().Context()

	scope := models.Scope{TenantID: ctxmiddleware.GetTenantID(ctx), ActorID: ctxmiddleware.GetActorID(ctx)}
	if scope.TenantID == "" {
		return httperror.NewHTTPError(http.StatusUnauthorized, "tenant_id is required")
	}

	from := c.QueryParam("from")
	to := c.QueryParam("to")
	if from == "" || to == "" {
		return httperror.NewHTTPError(http.StatusBadRequest, "from and to query parameters are required")
	}
	maxDegrees, _ := strconv.Atoi(c.QueryParam("max_degrees"))
	minStrength, err := strconv.ParseFloat(c.QueryParam("min_strength"), 64)
	if err != nil {
		minStrength = 0
	}

	ctx, svc, err := ectoinject.GetContext[*paths.Service](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "service unavailable")
	}

	result, err := svc.FindPaths(ctx, scope, from, to, maxDegrees, minStrength)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, result)
}

// MutualConnections returns the contacts directly connected to both inputs
func MutualConnections(c echo.Context) error {
	ctx := c.Request().Context()

	scope := models.Scope{TenantID: ctxmiddleware.GetTenantID(ctx), ActorID: ctxmiddleware.GetActorID(ctx)}
	if scope.TenantID == "" {
		return httperror.NewHTTPError(http.StatusUnauthorized, "tenant_id is required")
	}

	contactA := c.QueryParam("contact_a")
	contactB := c.QueryParam("contact_b")
	if contactA == "" || contactB == "" {
		return httperror.NewHTTPError(http.StatusBadRequest, "contact_a and contact_b query parameters are required")
	}

	ctx, svc, err := ectoinject.GetContext[*paths.Service](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "service unavailable")
	}

	result, err := svc.MutualConnections(ctx, scope, contactA, contactB)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, result)
}
