package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yuqie6/SkillSynth/internal/recommender"
)

func newProjectService(env *testEnv) *ProjectService {
	return NewProjectService(env.projects, env.resolver, env.sync)
}

func TestCreateProject_ValidatesBeforeWrite(t *testing.T) {
	env := newTestEnv()
	_, err := newProjectService(env).CreateProject(context.Background(), ProjectInput{Name: "", Skills: []SkillRef{{Name: "Go"}}})
	require.True(t, errors.Is(err, ErrValidation))
	assert.Zero(t, env.projects.saves)
	assert.Zero(t, env.skills.creates)
}

func TestCreateAndUpdateProject(t *testing.T) {
	env := newTestEnv()
	svc := newProjectService(env)
	ctx := context.Background()

	p, err := svc.CreateProject(ctx, ProjectInput{
		Name:            "Portfolio",
		Description:     "personal site",
		DateRange:       "2 weeks",
		ExperienceLevel: 2,
		Skills:          []SkillRef{{Name: "React"}, {Name: "CSS"}},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"React", "CSS"}, p.SkillNames())
	require.Len(t, env.remote.projectReqs, 1)
	assert.Equal(t, ProjectSyncTimeAvailability, env.remote.projectReqs[0].TimeAvailability)

	p, err = svc.UpdateProject(ctx, p.ID, ProjectInput{
		Name:            "Portfolio v2",
		ExperienceLevel: 3,
		Skills:          []SkillRef{{Name: "React"}, {Name: "Svelte"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "Portfolio v2", p.Name)
	assert.Equal(t, []string{"React", "Svelte"}, p.SkillNames())
	assert.Equal(t, []string{"React", "Svelte"}, env.remote.projectReqs[1].MainSkills)

	all, _ := env.skills.GetAll(ctx)
	assert.Len(t, all, 3, "CSS 仍在目录中")

	_, err = svc.UpdateProject(ctx, 404, ProjectInput{Name: "x"})
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestDeleteProject_KeepsSkills(t *testing.T) {
	env := newTestEnv()
	svc := newProjectService(env)
	ctx := context.Background()

	p, err := svc.CreateProject(ctx, ProjectInput{Name: "CLI", Skills: []SkillRef{{Name: "Go"}}})
	require.NoError(t, err)

	ok, err := svc.DeleteProject(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, _ = svc.DeleteProject(ctx, p.ID)
	assert.False(t, ok)

	skill, _ := env.skills.GetByName(ctx, "Go")
	assert.NotNil(t, skill)
}

func TestCreateAIProject_SavesFallback(t *testing.T) {
	env := newTestEnv()
	env.remote.err = errors.New("dial tcp: connection refused")

	p, fallback, err := newProjectService(env).CreateAIProject(context.Background(), AIProjectInput{
		Skills:           []SkillRef{{Name: "Python"}},
		TimeAvailability: 5,
		ExperienceLevel:  1,
	})
	require.NoError(t, err)
	assert.True(t, fallback)
	assert.Equal(t, FallbackProjectName, p.Name)
	assert.Equal(t, []string{"React", "Node.js", "Python"}, p.SkillNames())

	stored, _ := env.projects.GetByName(context.Background(), FallbackProjectName)
	assert.NotNil(t, stored)
}

func TestCreateAIProject_UsesSuggestion(t *testing.T) {
	env := newTestEnv()
	env.remote.project = &recommender.ProjectSuggestion{
		ProjectName:    "Weather Dashboard",
		Description:    "fetch and chart forecasts",
		RelevantSkills: []string{"Vue", "Chart.js"},
	}

	p, fallback, err := newProjectService(env).CreateAIProject(context.Background(), AIProjectInput{
		Skills:          []SkillRef{{Name: "Vue"}},
		ExperienceLevel: 2,
	})
	require.NoError(t, err)
	assert.False(t, fallback)
	assert.Equal(t, "Weather Dashboard", p.Name)
	assert.Equal(t, 2, p.ExperienceLevel)
	assert.Equal(t, []string{"Vue", "Chart.js"}, p.SkillNames())
}

func TestExperienceQueriesAndTopSkills(t *testing.T) {
	env := newTestEnv()
	svc := newProjectService(env)
	ctx := context.Background()
	for i, lvl := range []int{0, 1, 2, 4} {
		_, err := svc.CreateProject(ctx, ProjectInput{
			Name:            string(rune('A' + i)),
			ExperienceLevel: lvl,
			Skills:          []SkillRef{{Name: "Go"}, {Name: "SQL"}, {Name: "Docker"}, {Name: "Redis"}},
		})
		require.NoError(t, err)
	}

	lt, _ := svc.ProjectsExperienceLessThan(ctx, 3)
	assert.Len(t, lt, 2, "经验为 0 的项目不计入")
	gt, _ := svc.ProjectsExperienceGreaterThan(ctx, 1)
	assert.Len(t, gt, 2)

	top, err := svc.TopSkills(ctx, 1, 3)
	require.NoError(t, err)
	assert.Len(t, top, 3)
	assert.Equal(t, "Go", top[0].Name)
}
