package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yuqie6/SkillSynth/internal/dto"
	"github.com/yuqie6/SkillSynth/internal/schema"
	"github.com/yuqie6/SkillSynth/internal/service"
)

func (a *apiServer) listUsers(c *gin.Context) {
	users, err := a.core.Services.Users.GetAllUsers(c.Request.Context())
	respondList(c, users, err)
}

func (a *apiServer) getUser(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	user, err := a.core.Services.Users.GetUser(c.Request.Context(), id)
	respond(c, user, err)
}

func (a *apiServer) getUserByName(c *gin.Context) {
	user, err := a.core.Services.Users.GetUserByName(c.Request.Context(), c.Param("username"))
	respond(c, user, err)
}

func (a *apiServer) listUsersByLevel(c *gin.Context) {
	level, ok := parseIntParam(c, "level")
	if !ok {
		return
	}
	svc := a.core.Services.Users
	ctx := c.Request.Context()

	var (
		users []schema.User
		err   error
	)
	switch c.Param("op") {
	case "greater-than":
		users, err = svc.UsersLevelGreaterThan(ctx, level)
	case "less-than":
		users, err = svc.UsersLevelLessThan(ctx, level)
	case "equal-to":
		users, err = svc.UsersLevelEqualTo(ctx, level)
	default:
		badRequest(c, "op 必须是 greater-than/less-than/equal-to")
		return
	}
	respondList(c, users, err)
}

func (a *apiServer) createUser(c *gin.Context) {
	var req dto.UserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	user, err := a.core.Services.Users.CreateUser(c.Request.Context(), service.UserInput{
		Username: req.Username,
		Level:    req.Level,
		Skills:   toSkillRefs(req.Skills),
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

func (a *apiServer) updateUser(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.UserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	user, err := a.core.Services.Users.UpdateUser(c.Request.Context(), id, service.UserInput{
		Username: req.Username,
		Level:    req.Level,
		Skills:   toSkillRefs(req.Skills),
	})
	respond(c, user, err)
}

func (a *apiServer) updateUserLevel(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateLevelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	user, err := a.core.Services.Users.UpdateLevel(c.Request.Context(), id, req.Level)
	respond(c, user, err)
}

func (a *apiServer) deleteUser(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	deleted, err := a.core.Services.Users.DeleteUser(c.Request.Context(), id)
	respondDeleted(c, deleted, err)
}

func (a *apiServer) addUserSkill(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.SkillRefDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	user, err := a.core.Services.Users.AddSkill(c.Request.Context(), id, service.SkillRef{
		Name:     req.SkillName,
		Category: req.Category,
		Level:    req.Level,
	})
	respond(c, user, err)
}

func (a *apiServer) removeUserSkill(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	user, err := a.core.Services.Users.RemoveSkill(c.Request.Context(), id, c.Param("name"))
	respond(c, user, err)
}

func (a *apiServer) addUserXP(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.AddXPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	user, err := a.core.Services.Users.AddSkillXP(c.Request.Context(), id, req.SkillName, req.Amount)
	respond(c, user, err)
}

func (a *apiServer) matchProject(c *gin.Context) {
	userID, ok := parseID(c, "id")
	if !ok {
		return
	}
	projectID, ok := parseID(c, "projectId")
	if !ok {
		return
	}
	score, err := a.core.Services.Users.MatchProject(c.Request.Context(), userID, projectID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MatchResponse{UserID: userID, ProjectID: projectID, Score: score})
}

func (a *apiServer) findTeammates(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	topK := queryInt(c, "top_k", 15)
	teammates, err := a.core.Services.Users.FindTeammates(c.Request.Context(), id, topK)
	if err != nil {
		if service.IsLocalError(err) {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, dto.TeammatesResponse{UserID: id, Teammates: teammates})
}
