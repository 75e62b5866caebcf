package service

import "github.com/yuqie6/SkillSynth/internal/schema"

// MatchNotApplicable 无需求技能时的哨兵值，调用方需单独处理，不要并入 0-100 区间
const MatchNotApplicable = -1.0

// MatchSkills 计算拥有技能对需求技能的匹配度（百分比，可超过 100）
// 未拥有的需求技能贡献 0，但仍计入平均需求等级
func MatchSkills(owned, required []schema.Skill) float64 {
	if len(required) == 0 {
		return MatchNotApplicable
	}

	ownedLevels := make(map[string]int, len(owned))
	for _, s := range owned {
		ownedLevels[s.Name] = s.Level
	}

	var matchLevels, averageWantedLevel float64
	for _, r := range required {
		if lvl, ok := ownedLevels[r.Name]; ok {
			matchLevels += float64(lvl)
		}
		averageWantedLevel += float64(r.Level)
	}
	averageWantedLevel /= float64(len(required))

	return matchLevels / averageWantedLevel * 100
}
