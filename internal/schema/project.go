package schema

import "time"

// Project 项目
// Skills 为共享引用，删除项目只清理关联表
type Project struct {
	ID              uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name            string    `gorm:"size:200;not null;index" json:"name"`
	Skills          []Skill   `gorm:"many2many:project_skills;constraint:OnDelete:CASCADE" json:"recommended_skills"`
	DateRange       string    `gorm:"size:100" json:"date_range"`
	Description     string    `gorm:"type:text" json:"project_description"`
	ExperienceLevel int       `gorm:"not null;default:0;index" json:"experience_level"`
	CreatedAt       time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName 指定表名
func (Project) TableName() string {
	return "projects"
}

// HasSkillID 判断项目是否引用了指定技能
func (p *Project) HasSkillID(id uint) bool {
	for _, s := range p.Skills {
		if s.ID == id {
			return true
		}
	}
	return false
}

// TopSkills 返回前 n 个推荐技能
func (p *Project) TopSkills(n int) []Skill {
	if n <= 0 {
		return nil
	}
	if len(p.Skills) <= n {
		return p.Skills
	}
	return p.Skills[:n]
}

// SkillNames 按顺序返回技能名
func (p *Project) SkillNames() []string {
	names := make([]string, 0, len(p.Skills))
	for _, s := range p.Skills {
		names = append(names, s.Name)
	}
	return names
}
