package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/parishdesk/parish_backend/models"
)

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (a *api) login(c *gin.Context) {
	var req loginRequest
	if !bindJSON(c, &req) {
		return
	}
	info, err := models.Login(c.Request.Context(), a.db(), req.Username, req.Password)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, info)
}

func (a *api) logout(c *gin.Context) {
	ok, err := models.Logout(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"logged_out": ok})
}

func (a *api) createUser(c *gin.Context) {
	var input models.NewUser
	if !bindJSON(c, &input) {
		return
	}
	user, err := models.CreateUser(c.Request.Context(), a.db(), &input)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

func (a *api) sacramentRules(c *gin.Context) {
	c.JSON(http.StatusOK, models.SacramentRules())
}

func (a *api) createPerson(c *gin.Context) {
	var input models.NewPerson
	if !bindJSON(c, &input) {
		return
	}
	person, err := models.CreatePerson(c.Request.Context(), a.db(), &input)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, person)
}

func (a *api) getPerson(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	person, err := models.GetPerson(c.Request.Context(), a.db(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, person)
}
