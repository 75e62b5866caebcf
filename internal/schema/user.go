package schema

import "time"

// User 用户
// Level 由调用方直接设置，与技能等级无关；TotalXP 等于所持技能经验之和
type User struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Username  string    `gorm:"size:100;index" json:"username"`
	Level     int       `gorm:"not null;default:0" json:"level"`
	TotalXP   int       `gorm:"column:total_xp;not null;default:0" json:"total_xp"`
	Skills    []Skill   `gorm:"many2many:user_skills;constraint:OnDelete:CASCADE" json:"skills"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName 指定表名
func (User) TableName() string {
	return "users"
}

// HasSkill 按自然键（大小写敏感）判断是否已拥有技能
func (u *User) HasSkill(name string) bool {
	return u.SkillIndex(name) >= 0
}

// SkillIndex 返回技能在 Skills 中的下标，不存在返回 -1
func (u *User) SkillIndex(name string) int {
	for i := range u.Skills {
		if u.Skills[i].Name == name {
			return i
		}
	}
	return -1
}
