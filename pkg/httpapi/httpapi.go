// SPDX-License-Identifier: Apache-2.0

// Package httpapi is the peripheral read-only HTTP surface over the
// migration audit store: a liveness probe and two ways to fetch a
// MigrationOut rendering, grounded on bitswalk-ldf's gin handler/
// middleware shape. It carries no pipeline business logic.
package httpapi

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/co-codin/dwh-graph-db-migrater/pkg/apperrors"
	"github.com/co-codin/dwh-graph-db-migrater/pkg/migration"
)

// Store is the subset of *migration.Store the HTTP surface reads from.
type Store interface {
	Get(ctx context.Context, guid string) (*migration.Migration, error)
	GetLastByDBSource(ctx context.Context, dbSource string) (*migration.Migration, error)
}

// API holds the dependencies shared by every handler.
type API struct {
	store Store
	auth  gin.HandlerFunc
}

// New returns an API with its routes ready to register. auth is applied
// to every route except /ping; pass a no-op middleware to disable auth.
func New(store Store, auth gin.HandlerFunc) *API {
	return &API{store: store, auth: auth}
}

// errorResponse is the uniform JSON error body for every non-2xx
// response.
type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// Register wires every route onto engine.
func (a *API) Register(engine *gin.Engine) {
	engine.GET("/ping", a.handlePing)

	migrations := engine.Group("/migrations")
	if a.auth != nil {
		migrations.Use(a.auth)
	}
	migrations.GET("", a.handleGetLatest)
	migrations.GET("/:guid", a.handleGetByGuid)
}

func (a *API) handlePing(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (a *API) handleGetByGuid(c *gin.Context) {
	guid := c.Param("guid")

	m, err := a.store.Get(c.Request.Context(), guid)
	if err != nil {
		a.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, m.Out())
}

func (a *API) handleGetLatest(c *gin.Context) {
	dbSource := c.Query("db_source")
	if dbSource == "" {
		c.JSON(http.StatusBadRequest, errorResponse{
			Error:   "invalid_request",
			Message: "db_source query parameter is required",
		})
		return
	}

	m, err := a.store.GetLastByDBSource(c.Request.Context(), dbSource)
	if err != nil {
		a.writeError(c, err)
		return
	}
	if m == nil {
		c.JSON(http.StatusNotFound, errorResponse{
			Error:   "not_found",
			Message: "no migration recorded for that db_source",
		})
		return
	}
	c.JSON(http.StatusOK, m.Out())
}

func (a *API) writeError(c *gin.Context, err error) {
	var clientErr apperrors.ClientError
	if errors.As(err, &clientErr) {
		c.JSON(http.StatusNotFound, errorResponse{Error: "client_error", Message: clientErr.Error()})
		return
	}

	var backendErr apperrors.BackendError
	if errors.As(err, &backendErr) {
		c.JSON(http.StatusServiceUnavailable, errorResponse{Error: "backend_unavailable", Message: backendErr.Error()})
		return
	}

	c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal_error"})
}
