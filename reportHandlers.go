package main

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/parishdesk/parish_backend/models/reports"
	"github.com/parishdesk/parish_backend/utils"
)

func (a *api) globalBalance(c *gin.Context) {
	balance, err := reports.GetGlobalBalance(c.Request.Context(), a.db())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, balance)
}

func (a *api) accountBalances(c *gin.Context) {
	balances, err := reports.GetAccountBalances(c.Request.Context(), a.db())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, balances)
}

func (a *api) kardexEntries(c *gin.Context) ([]*reports.KardexEntry, bool) {
	from, to, ok := queryDateRange(c)
	if !ok {
		return nil, false
	}
	filter := reports.KardexFilter{
		AccountName: utils.NilIfEmpty(strings.TrimSpace(c.Query("account"))),
		DateFrom:    from,
		DateTo:      to,
	}
	entries, err := reports.GetKardex(c.Request.Context(), a.db(), filter)
	if err != nil {
		writeError(c, err)
		return nil, false
	}
	return entries, true
}

func (a *api) kardex(c *gin.Context) {
	entries, ok := a.kardexEntries(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, entries)
}

func (a *api) exportKardex(c *gin.Context) {
	entries, ok := a.kardexEntries(c)
	if !ok {
		return
	}
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", "attachment; filename=kardex.xlsx")
	c.Status(http.StatusOK)
	if err := reports.WriteKardexExcel(c.Writer, entries); err != nil {
		_ = c.Error(err)
	}
}
