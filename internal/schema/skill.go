package schema

import (
	"time"
)

// Skill 技能目录条目（Users/Projects 共享引用，不独占）
// Name 是自然键，跨系统同步时按 Name 识别
type Skill struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string    `gorm:"size:100;not null;uniqueIndex" json:"name"` // 唯一约束：并发 lookup-then-create 的兜底
	Category  string    `gorm:"size:100;not null;index" json:"category"`   // 默认 General
	Level     int       `gorm:"not null;default:1" json:"level"`           // 1-5
	XP        int       `gorm:"column:xp;not null;default:0" json:"xp"`    // 只增不减
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName 指定表名
func (Skill) TableName() string {
	return "skills"
}
