package repository

import (
	"context"
	"testing"

	"github.com/yuqie6/SkillSynth/internal/schema"
	"github.com/yuqie6/SkillSynth/internal/service"
	"github.com/yuqie6/SkillSynth/internal/testutil"
)

func TestProjectRepositoryExperienceQueries(t *testing.T) {
	db := testutil.OpenTestDB(t)
	repo := NewProjectRepository(db)
	ctx := context.Background()

	for i, lvl := range []int{0, 1, 3, 5} {
		p := &schema.Project{Name: string(rune('A' + i)), ExperienceLevel: lvl}
		if err := repo.Save(ctx, p); err != nil {
			t.Fatalf("Save error: %v", err)
		}
	}

	lt, _ := repo.ListExperienceLessThan(ctx, 4)
	if len(lt) != 2 {
		t.Fatalf("less than 4: got %d, want 2 (0 excluded)", len(lt))
	}
	gt, _ := repo.ListExperienceGreaterThan(ctx, 1)
	if len(gt) != 2 {
		t.Fatalf("greater than 1: got %d, want 2", len(gt))
	}
	eq, _ := repo.ListExperienceEqualTo(ctx, 0)
	if len(eq) != 1 {
		t.Fatalf("equal 0: got %d, want 1", len(eq))
	}

	byName, _ := repo.GetByName(ctx, "C")
	if byName == nil || byName.ExperienceLevel != 3 {
		t.Fatalf("GetByName=%+v", byName)
	}
}

func TestResolverAgainstDatabase(t *testing.T) {
	db := testutil.OpenTestDB(t)
	skills := NewSkillRepository(db)
	projects := NewProjectRepository(db)
	resolver := service.NewSkillResolver(skills, projects)
	ctx := context.Background()

	first, err := resolver.ResolveOrCreate(ctx, "Kubernetes", "DevOps")
	if err != nil {
		t.Fatalf("ResolveOrCreate error: %v", err)
	}
	second, err := resolver.ResolveOrCreate(ctx, "Kubernetes", "")
	if err != nil {
		t.Fatalf("ResolveOrCreate error: %v", err)
	}
	if first.ID != second.ID {
		t.Fatalf("ids differ: %d vs %d", first.ID, second.ID)
	}

	other, _ := resolver.ResolveOrCreate(ctx, "Helm", "")
	p1 := &schema.Project{Name: "Cluster", Description: "k8s lab", Skills: []schema.Skill{*first, *other}}
	p2 := &schema.Project{Name: "Operator", ExperienceLevel: 4, Skills: []schema.Skill{*first}}
	for _, p := range []*schema.Project{p1, p2} {
		if err := projects.Save(ctx, p); err != nil {
			t.Fatalf("Save error: %v", err)
		}
	}

	ok, err := resolver.DeleteSkill(ctx, first.ID)
	if err != nil || !ok {
		t.Fatalf("DeleteSkill ok=%v err=%v", ok, err)
	}

	got1, _ := projects.GetByID(ctx, p1.ID)
	got2, _ := projects.GetByID(ctx, p2.ID)
	if len(got1.Skills) != 1 || got1.Skills[0].Name != "Helm" || got1.Description != "k8s lab" {
		t.Fatalf("p1=%+v", got1)
	}
	if len(got2.Skills) != 0 || got2.ExperienceLevel != 4 {
		t.Fatalf("p2=%+v", got2)
	}

	ok, err = resolver.DeleteSkill(ctx, first.ID)
	if err != nil || ok {
		t.Fatalf("second delete ok=%v err=%v, want false,nil", ok, err)
	}
}

func TestNewDatabaseSQLiteMigrates(t *testing.T) {
	path := t.TempDir() + "/data/skillsynth.db"
	d, err := NewDatabase(Config{Path: path})
	if err != nil {
		t.Fatalf("NewDatabase error: %v", err)
	}
	defer d.Close()

	if d.SafeMode || d.SchemaVersion != latestSchemaVersion || d.Driver != DriverSQLite {
		t.Fatalf("db=%+v", d)
	}
	if !d.DB.Migrator().HasTable("project_skills") {
		t.Fatalf("join table missing")
	}
}

func TestSchemaMetaGatesMigration(t *testing.T) {
	path := t.TempDir() + "/skillsynth.db"
	d, err := NewDatabase(Config{Path: path})
	if err != nil {
		t.Fatalf("NewDatabase error: %v", err)
	}
	// 模拟旧版本建的库
	if err := d.DB.Model(&schema.SchemaMeta{}).Where("id = 1").Update("schema_version", 1).Error; err != nil {
		t.Fatalf("downgrade meta error: %v", err)
	}
	_ = d.Close()

	d, err = NewDatabase(Config{Path: path})
	if err != nil {
		t.Fatalf("reopen error: %v", err)
	}
	if d.SafeMode || d.SchemaVersion != latestSchemaVersion {
		t.Fatalf("upgrade db=%+v", d)
	}
	// 更新的程序写过的库
	if err := d.DB.Model(&schema.SchemaMeta{}).Where("id = 1").Update("schema_version", latestSchemaVersion+1).Error; err != nil {
		t.Fatalf("bump meta error: %v", err)
	}
	_ = d.Close()

	d, err = NewDatabase(Config{Path: path})
	if err != nil {
		t.Fatalf("reopen error: %v", err)
	}
	defer d.Close()
	if !d.SafeMode || d.MigrationError == "" {
		t.Fatalf("want safe mode for newer schema, db=%+v", d)
	}
}

func TestNewDatabaseRejectsUnknownDriver(t *testing.T) {
	if _, err := NewDatabase(Config{Driver: "oracle", DSN: "x"}); err == nil {
		t.Fatalf("want error for unknown driver")
	}
	if _, err := NewDatabase(Config{Driver: "postgres"}); err == nil {
		t.Fatalf("want error for missing dsn")
	}
}
