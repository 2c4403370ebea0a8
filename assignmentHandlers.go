package main

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/parishdesk/parish_backend/models"
	"github.com/parishdesk/parish_backend/utils"
)

func (a *api) createAssignment(c *gin.Context) {
	var input models.NewSacramentAssignment
	if !bindJSON(c, &input) {
		return
	}
	id, err := a.assignments().Create(c.Request.Context(), &input)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

func (a *api) updateAssignment(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	var input models.NewSacramentAssignment
	if !bindJSON(c, &input) {
		return
	}
	updated, err := a.assignments().Update(c.Request.Context(), id, &input)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": updated})
}

func (a *api) deleteAssignment(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	deleted, err := a.assignments().Delete(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": deleted})
}

func (a *api) getAssignment(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	assignment, err := a.assignments().Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, assignment)
}

func (a *api) listAssignments(c *gin.Context) {
	var filter models.SacramentAssignmentFilter
	if raw := strings.TrimSpace(c.Query("sacrament_type")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeError(c, utils.ValidationFailed("sacrament_type", "sacrament_type must be an integer"))
			return
		}
		t := models.SacramentType(n)
		filter.SacramentType = &t
	}
	from, to, ok := queryDateRange(c)
	if !ok {
		return
	}
	filter.DateFrom, filter.DateTo = from, to
	limit, ok := queryLimit(c)
	if !ok {
		return
	}

	conn, err := a.assignments().List(c.Request.Context(), filter, limit, queryAfter(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, conn)
}
