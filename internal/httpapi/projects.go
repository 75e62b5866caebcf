package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yuqie6/SkillSynth/internal/dto"
	"github.com/yuqie6/SkillSynth/internal/recommender"
	"github.com/yuqie6/SkillSynth/internal/schema"
	"github.com/yuqie6/SkillSynth/internal/service"
)

func (a *apiServer) listProjects(c *gin.Context) {
	projects, err := a.core.Services.Projects.GetAllProjects(c.Request.Context())
	respondList(c, projects, err)
}

func (a *apiServer) getProject(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	project, err := a.core.Services.Projects.GetProject(c.Request.Context(), id)
	respond(c, project, err)
}

func (a *apiServer) getProjectByName(c *gin.Context) {
	project, err := a.core.Services.Projects.GetProjectByName(c.Request.Context(), c.Param("name"))
	respond(c, project, err)
}

func (a *apiServer) listProjectsByLevel(c *gin.Context) {
	level, ok := parseIntParam(c, "level")
	if !ok {
		return
	}
	svc := a.core.Services.Projects
	ctx := c.Request.Context()

	var (
		projects []schema.Project
		err      error
	)
	switch c.Param("op") {
	case "greater-than":
		projects, err = svc.ProjectsExperienceGreaterThan(ctx, level)
	case "less-than":
		projects, err = svc.ProjectsExperienceLessThan(ctx, level)
	case "equal-to":
		projects, err = svc.ProjectsExperienceEqualTo(ctx, level)
	default:
		badRequest(c, "op 必须是 greater-than/less-than/equal-to")
		return
	}
	respondList(c, projects, err)
}

func toProjectInput(req dto.ProjectRequest) service.ProjectInput {
	return service.ProjectInput{
		Name:            req.Name,
		Description:     req.ProjectDescription,
		DateRange:       req.DateRange,
		ExperienceLevel: req.ExperienceLevel,
		Skills:          toSkillRefs(req.RecommendedSkills),
	}
}

func (a *apiServer) createProject(c *gin.Context) {
	var req dto.ProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	project, err := a.core.Services.Projects.CreateProject(c.Request.Context(), toProjectInput(req))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, project)
}

func (a *apiServer) updateProject(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.ProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	project, err := a.core.Services.Projects.UpdateProject(c.Request.Context(), id, toProjectInput(req))
	respond(c, project, err)
}

func (a *apiServer) deleteProject(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	deleted, err := a.core.Services.Projects.DeleteProject(c.Request.Context(), id)
	respondDeleted(c, deleted, err)
}

func (a *apiServer) topSkills(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	skills, err := a.core.Services.Projects.TopSkills(c.Request.Context(), id, queryInt(c, "n", 3))
	respondList(c, skills, err)
}

// createAIProject 远程失败时也返回 200 与兜底项目
func (a *apiServer) createAIProject(c *gin.Context) {
	var req dto.AIProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	project, fallback, err := a.core.Services.Projects.CreateAIProject(c.Request.Context(), service.AIProjectInput{
		Name:             req.Name,
		Skills:           toSkillRefs(req.Skills),
		TimeAvailability: req.TimeAvailability,
		ExperienceLevel:  req.ExperienceLevel,
		DateRange:        req.DateRange,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.AIProjectResponse{Project: project, Fallback: fallback})
}

func (a *apiServer) generateProject(c *gin.Context) {
	var req dto.GenerateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	suggestion, fallback := a.core.Services.Projects.GenerateProjectIdea(c.Request.Context(), &recommender.ProjectRequest{
		MainSkills:       req.MainSkills,
		TimeAvailability: req.TimeAvailability,
		ExperienceLevel:  req.ExperienceLevel,
	})
	c.JSON(http.StatusOK, dto.GenerateProjectResponse{Project: suggestion, Fallback: fallback})
}
