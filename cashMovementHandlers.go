package main

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/parishdesk/parish_backend/models"
	"github.com/parishdesk/parish_backend/utils"
)

func (a *api) recordMovement(c *gin.Context) {
	creatorId, ok := utils.GetUserIdFromContext(c.Request.Context())
	if !ok || creatorId == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized", "message": "a session is required to record movements"})
		return
	}
	var input models.NewCashMovement
	if !bindJSON(c, &input) {
		return
	}
	movement, err := a.ledger().Record(c.Request.Context(), &input, creatorId)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, movement)
}

func (a *api) updateMovement(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	var patch models.CashMovementPatch
	if !bindJSON(c, &patch) {
		return
	}
	movement, err := a.ledger().Update(c.Request.Context(), id, &patch)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, movement)
}

func (a *api) deleteMovement(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	deleted, err := a.ledger().Delete(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": deleted})
}

func (a *api) getMovement(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	movement, err := a.ledger().Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, movement)
}

func (a *api) listMovements(c *gin.Context) {
	var filter models.CashMovementFilter
	filter.AccountName = utils.NilIfEmpty(strings.TrimSpace(c.Query("account")))
	if raw := strings.TrimSpace(c.Query("nature")); raw != "" {
		var nature models.CashNature
		quoted, _ := json.Marshal(raw)
		if err := nature.UnmarshalJSON(quoted); err != nil {
			writeError(c, utils.ValidationFailed("nature", err.Error()))
			return
		}
		filter.Nature = &nature
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

	conn, err := a.ledger().List(c.Request.Context(), filter, limit, queryAfter(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, conn)
}
