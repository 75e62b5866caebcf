package service

import (
	"strings"

	"github.com/yuqie6/SkillSynth/internal/schema"
)

const (
	// DefaultSkillCategory 未指定分类时使用
	DefaultSkillCategory = "General"
	// MaxSkillLevel 技能等级上限
	MaxSkillLevel = 5

	skillLevelUpCost = 100
)

// NewSkill 创建等级 1、经验 0 的技能
func NewSkill(name, category string) *schema.Skill {
	if strings.TrimSpace(category) == "" {
		category = DefaultSkillCategory
	}
	return &schema.Skill{
		Name:     name,
		Category: category,
		Level:    1,
		XP:       0,
	}
}

// NewSkillWithLevel 以指定初始等级创建技能（经验仍为 0）
func NewSkillWithLevel(name string, level int) *schema.Skill {
	s := NewSkill(name, DefaultSkillCategory)
	s.Level = clampInt(level, 1, MaxSkillLevel)
	return s
}

// AddSkillXP 为技能增加经验并重新计算等级
// 每次调用最多升一级：只检查紧邻的下一个阈值，大额经验不会连跳
func AddSkillXP(skill *schema.Skill, amount int) error {
	if amount < 0 {
		return ErrInvalidXP
	}
	if skill == nil {
		return nil
	}
	skill.XP += amount
	recomputeLevel(skill)
	return nil
}

func recomputeLevel(skill *schema.Skill) {
	if skill.Level < MaxSkillLevel && skill.XP >= XPToNextLevel(skill.Level) {
		skill.Level++
	}
}

// XPToNextLevel 从 level 升到下一级需要的累计经验
func XPToNextLevel(level int) int {
	return skillLevelUpCost * level
}

// ProgressPercentage 展示用进度，只看等级不看级内经验
func ProgressPercentage(skill *schema.Skill) float64 {
	if skill == nil {
		return 0
	}
	return float64(skill.Level) / MaxSkillLevel * 100
}
