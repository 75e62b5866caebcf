package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yuqie6/SkillSynth/internal/bootstrap"
	"github.com/yuqie6/SkillSynth/internal/pkg/buildinfo"
	"github.com/yuqie6/SkillSynth/internal/pkg/config"
	"github.com/yuqie6/SkillSynth/internal/schema"
	"github.com/yuqie6/SkillSynth/internal/service"
)

var (
	cfgFile string
	core    *bootstrap.Core
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "skillsynth",
		Short:   "SkillSynth - 技能成长与项目匹配",
		Long:    `SkillSynth 记录技能经验与等级，计算用户与项目的匹配度，并借助推荐服务生成练手项目。`,
		Version: buildinfo.String(),
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			var err error
			core, err = bootstrap.NewCore(bootstrap.Options{ConfigPath: cfgFile})
			if err != nil {
				slog.Error("初始化失败", "error", err)
				os.Exit(1)
			}
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if core != nil {
				_ = core.Close()
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "配置文件路径")

	rootCmd.AddCommand(skillsCmd())
	rootCmd.AddCommand(seedCmd())
	rootCmd.AddCommand(xpCmd())
	rootCmd.AddCommand(matchCmd())
	rootCmd.AddCommand(generateCmd())
	rootCmd.AddCommand(teammatesCmd())
	rootCmd.AddCommand(initConfigCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// skillsCmd 查看技能目录
func skillsCmd() *cobra.Command {
	var keyword string

	cmd := &cobra.Command{
		Use:   "skills",
		Short: "查看技能目录",
		Run: func(cmd *cobra.Command, args []string) {
			ctx := context.Background()
			svc := core.Services.Skills

			var (
				skills []schema.Skill
				err    error
			)
			if keyword != "" {
				skills, err = svc.SearchSkills(ctx, keyword)
			} else {
				skills, err = svc.GetAllSkills(ctx)
			}
			if err != nil {
				fmt.Printf("❌ 获取技能失败: %v\n", err)
				os.Exit(1)
			}
			if len(skills) == 0 {
				fmt.Println("📚 还没有技能记录")
				fmt.Println("   使用 'skillsynth seed' 写入默认技能目录")
				return
			}

			byCategory := make(map[string][]schema.Skill)
			for _, s := range skills {
				byCategory[s.Category] = append(byCategory[s.Category], s)
			}
			categories := make([]string, 0, len(byCategory))
			for c := range byCategory {
				categories = append(categories, c)
			}
			sort.Strings(categories)

			fmt.Printf("🌳 技能目录 (共 %d 个技能)\n", len(skills))
			fmt.Println("═══════════════════════════════════════")
			for _, c := range categories {
				fmt.Printf("\n%s\n", c)
				for _, s := range byCategory[c] {
					fmt.Printf("  %-20s Lv%d %s %d XP (下一级需 %d)\n",
						s.Name, s.Level, levelBar(&s), s.XP, service.XPToNextLevel(s.Level))
				}
			}
		},
	}

	cmd.Flags().StringVarP(&keyword, "search", "s", "", "按名称搜索")
	return cmd
}

func levelBar(s *schema.Skill) string {
	filled := int(service.ProgressPercentage(s) / 20)
	return "[" + strings.Repeat("█", filled) + strings.Repeat("░", service.MaxSkillLevel-filled) + "]"
}

// seedCmd 写入默认技能目录
func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "写入默认技能目录（可重复执行）",
		Run: func(cmd *cobra.Command, args []string) {
			n, err := core.Services.Skills.SeedCatalog(context.Background(), service.DefaultCatalog)
			if err != nil {
				fmt.Printf("❌ 写入失败: %v\n", err)
				os.Exit(1)
			}
			fmt.Printf("✅ 已确认 %d 个技能\n", n)
		},
	}
}

// xpCmd 为用户的技能累积经验
func xpCmd() *cobra.Command {
	var userID uint
	var skill string
	var amount int

	cmd := &cobra.Command{
		Use:   "xp",
		Short: "为用户技能增加经验",
		Run: func(cmd *cobra.Command, args []string) {
			user, err := core.Services.Users.AddSkillXP(context.Background(), userID, skill, amount)
			if err != nil {
				fmt.Printf("❌ 增加经验失败: %v\n", err)
				os.Exit(1)
			}
			idx := user.SkillIndex(skill)
			s := user.Skills[idx]
			fmt.Printf("✅ %s: Lv%d %s %d XP，用户总经验 %d\n", s.Name, s.Level, levelBar(&s), s.XP, user.TotalXP)
		},
	}

	cmd.Flags().UintVar(&userID, "user", 0, "用户 ID")
	cmd.Flags().StringVar(&skill, "skill", "", "技能名")
	cmd.Flags().IntVar(&amount, "amount", 0, "经验值")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("skill")
	return cmd
}

// matchCmd 计算用户与项目的匹配分
func matchCmd() *cobra.Command {
	var userID, projectID uint

	cmd := &cobra.Command{
		Use:   "match",
		Short: "计算用户与项目的匹配分",
		Run: func(cmd *cobra.Command, args []string) {
			score, err := core.Services.Users.MatchProject(context.Background(), userID, projectID)
			if err != nil {
				if errors.Is(err, service.ErrNotFound) {
					fmt.Println("❌ 用户或项目不存在")
				} else {
					fmt.Printf("❌ 计算失败: %v\n", err)
				}
				os.Exit(1)
			}
			if score == service.MatchNotApplicable {
				fmt.Println("ℹ️  项目没有技能要求")
				return
			}
			fmt.Printf("🎯 匹配分: %.2f\n", score)
		},
	}

	cmd.Flags().UintVar(&userID, "user", 0, "用户 ID")
	cmd.Flags().UintVar(&projectID, "project", 0, "项目 ID")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("project")
	return cmd
}

// generateCmd 请求推荐服务生成项目
func generateCmd() *cobra.Command {
	var skills []string
	var timeAvail, level int
	var save bool

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "生成练手项目（推荐服务不可用时给出兜底项目）",
		Run: func(cmd *cobra.Command, args []string) {
			ctx := context.Background()
			refs := make([]service.SkillRef, 0, len(skills))
			for _, s := range skills {
				refs = append(refs, service.SkillRef{Name: strings.TrimSpace(s)})
			}

			if save {
				project, fallback, err := core.Services.Projects.CreateAIProject(ctx, service.AIProjectInput{
					Skills:           refs,
					TimeAvailability: timeAvail,
					ExperienceLevel:  level,
				})
				if err != nil {
					fmt.Printf("❌ 生成失败: %v\n", err)
					os.Exit(1)
				}
				printProject(project.Name, project.Description, project.SkillNames(), fallback)
				fmt.Printf("💾 已保存，项目 ID %d\n", project.ID)
				return
			}

			generated, err := core.Services.Sync.GenerateProject(ctx, "", refs, timeAvail, level)
			if err != nil {
				fmt.Printf("❌ 生成失败: %v\n", err)
				os.Exit(1)
			}
			names := make([]string, 0, len(generated.Skills))
			for _, s := range generated.Skills {
				names = append(names, s.Name)
			}
			printProject(generated.Name, generated.Description, names, generated.Fallback)
		},
	}

	cmd.Flags().StringSliceVar(&skills, "skill", nil, "主技能，可重复")
	cmd.Flags().IntVar(&timeAvail, "time", 10, "每周可投入时间")
	cmd.Flags().IntVar(&level, "level", 1, "经验等级")
	cmd.Flags().BoolVar(&save, "save", false, "保存生成的项目")
	return cmd
}

func printProject(name, desc string, skills []string, fallback bool) {
	if fallback {
		fmt.Println("⚠️  推荐服务不可用，以下为兜底项目")
	}
	fmt.Printf("🚀 %s\n", name)
	fmt.Printf("   %s\n", desc)
	fmt.Printf("   技能: %s\n", strings.Join(skills, ", "))
}

// teammatesCmd 查找队友
func teammatesCmd() *cobra.Command {
	var userID uint
	var top int

	cmd := &cobra.Command{
		Use:   "teammates",
		Short: "通过推荐服务查找队友",
		Run: func(cmd *cobra.Command, args []string) {
			mates, err := core.Services.Users.FindTeammates(context.Background(), userID, top)
			if err != nil {
				fmt.Printf("❌ 查找失败: %v\n", err)
				os.Exit(1)
			}
			if len(mates) == 0 {
				fmt.Println("暂无匹配的队友")
				return
			}
			for i, m := range mates {
				fmt.Printf("%2d. 用户 %s  匹配度 %.2f\n", i+1, m.UserID, m.MatchScore)
			}
		},
	}

	cmd.Flags().UintVar(&userID, "user", 0, "用户 ID")
	cmd.Flags().IntVar(&top, "top", 15, "返回数量")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

// initConfigCmd 生成默认配置文件，不需要数据库
func initConfigCmd() *cobra.Command {
	var path string
	var force bool

	cmd := &cobra.Command{
		Use:   "init-config",
		Short: "写入默认配置文件",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			config.SetupLogger("info")
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {},
		Run: func(cmd *cobra.Command, args []string) {
			if path == "" {
				p, err := config.DefaultConfigPath()
				if err != nil {
					fmt.Printf("❌ %v\n", err)
					os.Exit(1)
				}
				path = p
			}
			if _, err := os.Stat(path); err == nil && !force {
				fmt.Printf("ℹ️  配置文件已存在: %s（使用 --force 覆盖）\n", path)
				return
			}
			if err := config.WriteFile(path, config.Default()); err != nil {
				fmt.Printf("❌ 写入失败: %v\n", err)
				os.Exit(1)
			}
			fmt.Printf("✅ 已写入 %s\n", path)
		},
	}

	cmd.Flags().StringVar(&path, "path", "", "输出路径（默认为可执行文件旁的 config/config.yaml）")
	cmd.Flags().BoolVar(&force, "force", false, "覆盖已有文件")
	return cmd
}
