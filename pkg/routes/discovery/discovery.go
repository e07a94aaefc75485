package discovery

import (
	"net/http"
	"strconv"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectoinject"
	"github.com/labstack/echo/v4"

	ctxmiddleware "github.com/mylesweissleder/newday-graph/pkg/context"
	"github.com/mylesweissleder/newday-graph/pkg/discovery"
	"github.com/mylesweissleder/newday-graph/pkg/models"
)

// Register registers discovery review and batch routes
func Register(g *echo.Group) {
	g.GET("/candidates", ListCandidates)
	g.POST("/candidates/:id/approve", ApproveCandidate)
	g.POST("/candidates/:id/reject", RejectCandidate)
	g.POST("/batch", BatchDiscover)
	g.GET("/jobs/:id", GetJob)
}

// ListCandidates lists potential relationships with optional filters
func ListCandidates(c echo.Context) error {
	ctx := c.Request().Context()

	scope := models.Scope{TenantID: ctxmiddleware.GetTenantID(ctx), ActorID: ctxmiddleware.GetActorID(ctx)}
	if scope.TenantID == "" {
		return httperror.NewHTTPError(http.StatusUnauthorized, "tenant_id is required")
	}

	status := models.CandidateStatus(c.QueryParam("status"))
	minConfidence, err := strconv.ParseFloat(c.QueryParam("min_confidence"), 64)
	if err != nil {
		minConfidence = 0
	}
	page, _ := strconv.Atoi(c.QueryParam("page"))
	pageSize, _ := strconv.Atoi(c.QueryParam("page_size"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}

	ctx, svc, err := ectoinject.GetContext[*discovery.Service](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "service unavailable")
	}

	result, err := svc.ListCandidates(ctx, scope, status, minConfidence, page, pageSize)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, result)
}

// ApproveCandidate approves a pending candidate and creates the relationship
func ApproveCandidate(c echo.Context) error {
	ctx := c.Request().Context()

	scope := models.Scope{TenantID: ctxmiddleware.GetTenantID(ctx), ActorID: ctxmiddleware.GetActorID(ctx)}
	if scope.TenantID == "" {
		return httperror.NewHTTPError(http.StatusUnauthorized, "tenant_id is required")
	}

	ctx, svc, err := ectoinject.GetContext[*discovery.Service](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "service unavailable")
	}

	created, err := svc.Approve(ctx, scope, c.Param("id"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, created)
}

// RejectCandidate rejects a pending candidate
func RejectCandidate(c echo.Context) error {
	ctx := c.Request().Context()

	scope := models.Scope{TenantID: ctxmiddleware.GetTenantID(ctx), ActorID: ctxmiddleware.GetActorID(ctx)}
	if scope.TenantID == "" {
		return httperror.NewHTTPError(http.StatusUnauthorized, "tenant_id is required")
	}

	ctx, svc, err := ectoinject.GetContext[*discovery.Service](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "service unavailable")
	}

	rejected, err := svc.Reject(ctx, scope, c.Param("id"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, rejected)
}

// BatchDiscover starts a tenant-wide discovery run and returns the job id
func BatchDiscover(c echo.Context) error {
	ctx := c.Request().Context()

	scope := models.Scope{TenantID: ctxmiddleware.GetTenantID(ctx), ActorID: ctxmiddleware.GetActorID(ctx)}
	if scope.TenantID == "" {
		return httperror.NewHTTPError(http.StatusUnauthorized, "tenant_id is required")
	}

	ctx, svc, err := ectoinject.GetContext[*discovery.Service](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "service unavailable")
	}

	ack, err := svc.BatchDiscover(ctx, scope)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusAccepted, ack)
}

// GetJob returns the status and progress of a batch discovery job
func GetJob(c echo.Context) error {
	ctx := c.Request().Context()

	scope := models.Scope{TenantID: ctxmiddleware.GetTenantID(ctx), ActorID: ctxmiddleware.GetActorID(ctx)}
	if scope.TenantID == "" {
		return httperror.NewHTTPError(http.StatusUnauthorized, "tenant_id is required")
	}

	ctx, svc, err := ectoinject.GetContext[*discovery.Service](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "service unavailable")
	}

	job, err := svc.GetJob(ctx, scope, c.Param("id"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, job)
}
