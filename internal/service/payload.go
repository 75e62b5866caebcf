package service

import (
	"strconv"
	"strings"

	"github.com/yuqie6/SkillSynth/internal/recommender"
	"github.com/yuqie6/SkillSynth/internal/schema"
)

// ProjectSyncTimeAvailability 项目同步时固定的时间投入
const ProjectSyncTimeAvailability = 10

// TimeAvailability 由用户等级推导时间投入：clamp(level*2, 1, 20)
func TimeAvailability(level int) int {
	return clampInt(level*2, 1, 20)
}

// UserProfilePayload 用户摘要 {id, skills: {name: level}, time_availability}
func UserProfilePayload(user *schema.User) recommender.UserProfile {
	skills := make(map[string]int, len(user.Skills))
	for _, s := range user.Skills {
		skills[s.Name] = s.Level
	}
	return recommender.UserProfile{
		ID:               strconv.FormatUint(uint64(user.ID), 10),
		Skills:           skills,
		TimeAvailability: TimeAvailability(user.Level),
	}
}

// SkillPayload 技能摘要 {category: [name]}
func SkillPayload(skill *schema.Skill) map[string][]string {
	category := skill.Category
	if strings.TrimSpace(category) == "" {
		category = DefaultSkillCategory
	}
	return map[string][]string{category: {skill.Name}}
}

// ProjectPayload 项目摘要 {main_skills, time_availability: 10, experience_level}
func ProjectPayload(project *schema.Project) *recommender.ProjectRequest {
	return &recommender.ProjectRequest{
		MainSkills:       project.SkillNames(),
		TimeAvailability: ProjectSyncTimeAvailability,
		ExperienceLevel:  project.ExperienceLevel,
	}
}

// clampInt 将数值限制在指定范围内
func clampInt(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
