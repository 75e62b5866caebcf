package dto

// 注意：本包承载 HTTP 对外契约的 DTO，字段名与前端保持稳定。
// 不要在这里放 GORM/持久化细节；内部持久化 schema 请见 internal/schema；业务逻辑收敛在 internal/service。

// SkillRefDTO 请求中按名称引用技能
type SkillRefDTO struct {
	SkillName string `json:"skillName"`
	Category  string `json:"category,omitempty"`
	Level     int    `json:"level,omitempty"`
}

type CreateSkillRequest struct {
	Name     string `json:"name" binding:"required"`
	Category string `json:"category"`
}

type UpdateSkillRequest struct {
	Name     string `json:"name"`
	Category string `json:"category"`
}

type UserRequest struct {
	Username string        `json:"username"`
	Level    int           `json:"level"`
	Skills   []SkillRefDTO `json:"skills"`
}

type UpdateLevelRequest struct {
	Level int `json:"level"`
}

type AddXPRequest struct {
	SkillName string `json:"skillName" binding:"required"`
	Amount    int    `json:"amount"`
}

type ProjectRequest struct {
	Name               string        `json:"name"`
	ProjectDescription string        `json:"project_description"`
	DateRange          string        `json:"date_range"`
	ExperienceLevel    int           `json:"experience_level"`
	RecommendedSkills  []SkillRefDTO `json:"recommended_skills"`
}

type AIProjectRequest struct {
	Name             string        `json:"name"`
	Skills           []SkillRefDTO `json:"skills"`
	TimeAvailability int           `json:"time_availability"`
	ExperienceLevel  int           `json:"experience_level"`
	DateRange        string        `json:"date_range"`
}

// GenerateProjectRequest 只请求建议，不落库
type GenerateProjectRequest struct {
	MainSkills       []string `json:"main_skills"`
	TimeAvailability int      `json:"time_availability"`
	ExperienceLevel  int      `json:"experience_level"`
}

type GenerateProjectResponse struct {
	Project  any  `json:"project"`
	Fallback bool `json:"fallback"`
}

type AIProjectResponse struct {
	Project  any  `json:"project"`
	Fallback bool `json:"fallback"`
}

type MatchResponse struct {
	UserID    uint    `json:"user_id"`
	ProjectID uint    `json:"project_id"`
	Score     float64 `json:"score"`
}

type TeammatesResponse struct {
	UserID    uint `json:"user_id"`
	Teammates any  `json:"teammates"`
}
