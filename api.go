package main

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/parishdesk/parish_backend/config"
	"github.com/parishdesk/parish_backend/middlewares"
	"github.com/parishdesk/parish_backend/models"
	"github.com/parishdesk/parish_backend/utils"
	"gorm.io/gorm"
)

// api holds what the handlers need. db is resolved per request.
type api struct {
	db func() *gorm.DB
}

func newAPI(getDB func() *gorm.DB) *api {
	return &api{db: getDB}
}

func (a *api) assignments() *models.SacramentAssignmentManager {
	return models.NewSacramentAssignmentManager(a.db())
}

func (a *api) ledger() *models.CashLedger {
	return models.NewCashLedger(a.db())
}

func registerRoutes(r *gin.Engine, a *api, requireSession bool) {
	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	r.POST("/login", a.login)
	r.GET("/sacraments/rules", a.sacramentRules)

	authed := r.Group("/", middlewares.RequireSession(requireSession))
	authed.POST("/logout", a.logout)
	authed.POST("/users", middlewares.RequireAdmin(), a.createUser)

	authed.POST("/people", a.createPerson)
	authed.GET("/people/:id", a.getPerson)

	authed.POST("/assignments", a.createAssignment)
	authed.GET("/assignments", a.listAssignments)
	authed.GET("/assignments/:id", a.getAssignment)
	authed.PUT("/assignments/:id", a.updateAssignment)
	authed.DELETE("/assignments/:id", a.deleteAssignment)

	authed.POST("/cash-movements", a.recordMovement)
	authed.GET("/cash-movements", a.listMovements)
	authed.GET("/cash-movements/:id", a.getMovement)
	authed.PATCH("/cash-movements/:id", a.updateMovement)
	authed.DELETE("/cash-movements/:id", a.deleteMovement)

	authed.GET("/reports/balance", a.globalBalance)
	authed.GET("/reports/balance/accounts", a.accountBalances)
	authed.GET("/reports/kardex", a.kardex)
	authed.GET("/reports/kardex/export", a.exportKardex)

	r.NoRoute(customNotFoundHandler)
}

func customNotFoundHandler(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{"error": "route not found"})
}

func statusForKind(kind utils.ErrorKind) int {
	switch kind {
	case utils.KindValidationFailed:
		return http.StatusUnprocessableEntity
	case utils.KindConstraintViolation:
		return http.StatusConflict
	case utils.KindNotFound:
		return http.StatusNotFound
	case utils.KindTransactionAborted:
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// writeError renders err. Domain errors keep their kind; anything else is logged.
func writeError(c *gin.Context, err error) {
	var de *utils.DomainError
	if errors.As(err, &de) {
		body := gin.H{"error": string(de.Kind), "message": de.Message}
		if de.Field != "" {
			body["field"] = de.Field
		}
		if de.Relation != "" {
			body["relation"] = de.Relation
		}
		c.JSON(statusForKind(de.Kind), body)
		return
	}
	switch {
	case errors.Is(err, models.ErrInvalidCredentials),
		errors.Is(err, models.ErrUserDisabled),
		errors.Is(err, models.ErrSessionRequired):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized", "message": err.Error()})
		return
	}
	cid, _ := utils.GetCorrelationIdFromContext(c.Request.Context())
	config.LogError(config.GetLogger(), "main", c.FullPath(), "request", gin.H{"correlation_id": cid}, err)
	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}

func bindJSON(c *gin.Context, dest interface{}) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		writeError(c, utils.ValidationFailed("body", err.Error()))
		return false
	}
	return true
}

func pathId(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		writeError(c, utils.ValidationFailed("id", "id must be a positive integer"))
		return 0, false
	}
	return id, true
}

func queryLimit(c *gin.Context) (*int, bool) {
	raw := strings.TrimSpace(c.Query("limit"))
	if raw == "" {
		return nil, true
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		writeError(c, utils.ValidationFailed("limit", "limit must be a positive integer"))
		return nil, false
	}
	return &limit, true
}

func queryAfter(c *gin.Context) *string {
	return utils.NilIfEmpty(strings.TrimSpace(c.Query("after")))
}

// queryDateRange reads date_from and date_to. A bare date in date_to covers
// the whole day.
func queryDateRange(c *gin.Context) (from *time.Time, to *time.Time, ok bool) {
	from, err := utils.ParseDateParam(c.Query("date_from"))
	if err != nil {
		writeError(c, utils.ValidationFailed("date_from", "expected YYYY-MM-DD or RFC3339"))
		return nil, nil, false
	}
	rawTo := strings.TrimSpace(c.Query("date_to"))
	to, err = utils.ParseDateParam(rawTo)
	if err != nil {
		writeError(c, utils.ValidationFailed("date_to", "expected YYYY-MM-DD or RFC3339"))
		return nil, nil, false
	}
	if to != nil && len(rawTo) == len("2006-01-02") {
		endOfDay := to.Add(24*time.Hour - time.Nanosecond)
		to = &endOfDay
	}
	return from, to, true
}
