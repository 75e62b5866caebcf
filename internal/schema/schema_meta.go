package schema

import "time"

// SchemaMeta 单行（ID=1）版本记录，门控 skills/users/projects 及
// user_skills、project_skills 关联表的迁移。
// 版本低于当前值时才执行 AutoMigrate；版本更高（新程序写过的库）进入 SafeMode 拒绝启动。
// Driver 记录最近一次迁移时使用的驱动。
type SchemaMeta struct {
	ID            int       `gorm:"primaryKey"`
	SchemaVersion int       `gorm:"not null"`
	Driver        string    `gorm:"size:20"`
	CreatedAt     time.Time `gorm:"autoCreateTime"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime"`
}

func (SchemaMeta) TableName() string {
	return "schema_meta"
}
