package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yuqie6/SkillSynth/internal/dto"
	"github.com/yuqie6/SkillSynth/internal/schema"
	"github.com/yuqie6/SkillSynth/internal/service"
)

func toSkillViews(skills []schema.Skill) []service.SkillView {
	out := make([]service.SkillView, 0, len(skills))
	for _, s := range skills {
		out = append(out, service.ViewOf(s))
	}
	return out
}

func respondSkill(c *gin.Context, skill *schema.Skill, err error) {
	if err != nil {
		writeError(c, err)
		return
	}
	if skill == nil {
		notFound(c)
		return
	}
	c.JSON(http.StatusOK, service.ViewOf(*skill))
}

func (a *apiServer) listSkills(c *gin.Context) {
	skills, err := a.core.Services.Skills.GetAllSkills(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toSkillViews(skills))
}

func (a *apiServer) getSkill(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	skill, err := a.core.Services.Skills.GetSkill(c.Request.Context(), id)
	respondSkill(c, skill, err)
}

func (a *apiServer) getSkillByName(c *gin.Context) {
	skill, err := a.core.Services.Skills.GetSkillByName(c.Request.Context(), c.Param("name"))
	respondSkill(c, skill, err)
}

func (a *apiServer) getSkillByCategory(c *gin.Context) {
	category := c.Query("category")
	if category == "" {
		badRequest(c, "category 不能为空")
		return
	}
	skill, err := a.core.Services.Skills.GetSkillByCategory(c.Request.Context(), category)
	respondSkill(c, skill, err)
}

func (a *apiServer) searchSkills(c *gin.Context) {
	skills, err := a.core.Services.Skills.SearchSkills(c.Request.Context(), c.Query("keyword"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toSkillViews(skills))
}

func (a *apiServer) createSkill(c *gin.Context) {
	var req dto.CreateSkillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	skill, err := a.core.Services.Skills.CreateSkill(c.Request.Context(), req.Name, req.Category)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, service.ViewOf(*skill))
}

func (a *apiServer) updateSkill(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateSkillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	skill, err := a.core.Services.Skills.UpdateSkill(c.Request.Context(), service.SkillUpdate{
		ID:       id,
		Name:     req.Name,
		Category: req.Category,
	})
	respondSkill(c, skill, err)
}

func (a *apiServer) deleteSkill(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	deleted, err := a.core.Services.Skills.DeleteSkill(c.Request.Context(), id)
	respondDeleted(c, deleted, err)
}

func (a *apiServer) relevantSkills(c *gin.Context) {
	mainSkill := c.Query("mainSkill")
	if mainSkill == "" {
		badRequest(c, "mainSkill 不能为空")
		return
	}
	topK := queryInt(c, "topK", a.core.Cfg.Recommender.RelevantTopK)
	c.JSON(http.StatusOK, a.core.Services.Skills.RelevantSkills(c.Request.Context(), mainSkill, topK))
}
