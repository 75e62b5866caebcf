package repository

import (
	"context"
	"sync"
	"testing"

	"github.com/yuqie6/SkillSynth/internal/recommender"
	"github.com/yuqie6/SkillSynth/internal/schema"
	"github.com/yuqie6/SkillSynth/internal/service"
	"github.com/yuqie6/SkillSynth/internal/testutil"
)

// recordingRemote 只记录上传的用户画像
type recordingRemote struct {
	mu    sync.Mutex
	users []recommender.UserProfile
}

func (r *recordingRemote) GrabRelevantSkills(ctx context.Context, mainSkill string, topK int) (*recommender.RelevantSkillsResult, error) {
	return &recommender.RelevantSkillsResult{MainSkill: mainSkill}, nil
}

func (r *recordingRemote) GetProject(ctx context.Context, req *recommender.ProjectRequest) (*recommender.ProjectSuggestion, error) {
	return service.FallbackProject(), nil
}

func (r *recordingRemote) ProcessAndUploadSkills(ctx context.Context, skills map[string][]string) error {
	return nil
}

func (r *recordingRemote) UploadUsers(ctx context.Context, users []recommender.UserProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users = append(r.users, users...)
	return nil
}

func (r *recordingRemote) FindTeammates(ctx context.Context, user recommender.UserProfile, topK int) ([]recommender.Teammate, error) {
	return nil, nil
}

type syncDispatcher struct{}

func (syncDispatcher) Submit(kind string, job func(ctx context.Context) error) {
	_ = job(context.Background())
}

type dbServices struct {
	users  *UserRepository
	skills *SkillRepository
	remote *recordingRemote
	svc    *service.UserService
}

func newDBServices(t *testing.T) *dbServices {
	t.Helper()
	db := testutil.OpenTestDB(t)
	skills := NewSkillRepository(db)
	users := NewUserRepository(db)
	projects := NewProjectRepository(db)
	remote := &recordingRemote{}
	resolver := service.NewSkillResolver(skills, projects)
	syncer := service.NewSyncService(remote, syncDispatcher{}, resolver, &service.SyncConfig{})
	return &dbServices{
		users:  users,
		skills: skills,
		remote: remote,
		svc:    service.NewUserService(users, skills, projects, resolver, syncer),
	}
}

func TestUserRepositoryKeepsLevelZero(t *testing.T) {
	db := testutil.OpenTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	u := &schema.User{Username: "newbie", Level: 0}
	if err := repo.Save(ctx, u); err != nil {
		t.Fatalf("Save error: %v", err)
	}
	if u.Level != 0 {
		t.Fatalf("in-memory level=%d, want 0", u.Level)
	}
	got, err := repo.GetByID(ctx, u.ID)
	if err != nil || got == nil {
		t.Fatalf("GetByID got=%v err=%v", got, err)
	}
	if got.Level != 0 {
		t.Fatalf("stored level=%d, want 0", got.Level)
	}
}

func TestCreateUserLevelZeroUploadsMinimumAvailability(t *testing.T) {
	env := newDBServices(t)
	ctx := context.Background()

	user, err := env.svc.CreateUser(ctx, service.UserInput{Username: "newbie", Level: 0})
	if err != nil {
		t.Fatalf("CreateUser error: %v", err)
	}
	if user.Level != 0 {
		t.Fatalf("returned level=%d, want 0", user.Level)
	}
	stored, _ := env.users.GetByID(ctx, user.ID)
	if stored == nil || stored.Level != 0 {
		t.Fatalf("stored=%+v, want level 0", stored)
	}
	if len(env.remote.users) != 1 {
		t.Fatalf("uploads=%d, want 1", len(env.remote.users))
	}
	if got := env.remote.users[0].TimeAvailability; got != 1 {
		t.Fatalf("time_availability=%d, want 1", got)
	}
}

func TestSharedSkillXPKeepsEveryOwnerTotal(t *testing.T) {
	env := newDBServices(t)
	ctx := context.Background()

	a, err := env.svc.CreateUser(ctx, service.UserInput{Username: "a", Skills: []service.SkillRef{{Name: "Go"}, {Name: "SQL"}}})
	if err != nil {
		t.Fatalf("CreateUser a error: %v", err)
	}
	b, err := env.svc.CreateUser(ctx, service.UserInput{Username: "b", Skills: []service.SkillRef{{Name: "Go"}}})
	if err != nil {
		t.Fatalf("CreateUser b error: %v", err)
	}

	if _, err := env.svc.AddSkillXP(ctx, a.ID, "Go", 150); err != nil {
		t.Fatalf("AddSkillXP error: %v", err)
	}
	if _, err := env.svc.AddSkillXP(ctx, a.ID, "SQL", 30); err != nil {
		t.Fatalf("AddSkillXP error: %v", err)
	}

	gotA, _ := env.users.GetByID(ctx, a.ID)
	gotB, _ := env.users.GetByID(ctx, b.ID)
	if gotA.TotalXP != 180 {
		t.Fatalf("a TotalXP=%d, want 180", gotA.TotalXP)
	}
	if gotB.TotalXP != 150 || gotB.Skills[0].XP != 150 {
		t.Fatalf("b TotalXP=%d skills=%+v, want 150", gotB.TotalXP, gotB.Skills)
	}

	gotB, err = env.svc.RemoveSkill(ctx, b.ID, "Go")
	if err != nil {
		t.Fatalf("RemoveSkill error: %v", err)
	}
	if gotB.TotalXP != 0 {
		t.Fatalf("b TotalXP after remove=%d, want 0", gotB.TotalXP)
	}
	stored, _ := env.users.GetByID(ctx, b.ID)
	if stored.TotalXP != 0 {
		t.Fatalf("stored b TotalXP=%d, want 0", stored.TotalXP)
	}
}

func TestDeleteSkillRefreshesOwnerTotal(t *testing.T) {
	env := newDBServices(t)
	ctx := context.Background()

	a, err := env.svc.CreateUser(ctx, service.UserInput{Username: "a", Skills: []service.SkillRef{{Name: "Go"}, {Name: "SQL"}}})
	if err != nil {
		t.Fatalf("CreateUser error: %v", err)
	}
	if _, err := env.svc.AddSkillXP(ctx, a.ID, "Go", 120); err != nil {
		t.Fatalf("AddSkillXP error: %v", err)
	}
	if _, err := env.svc.AddSkillXP(ctx, a.ID, "SQL", 20); err != nil {
		t.Fatalf("AddSkillXP error: %v", err)
	}

	goSkill, _ := env.skills.GetByName(ctx, "Go")
	if err := env.skills.Delete(ctx, goSkill.ID); err != nil {
		t.Fatalf("Delete error: %v", err)
	}

	got, _ := env.users.GetByID(ctx, a.ID)
	if len(got.Skills) != 1 || got.TotalXP != 20 {
		t.Fatalf("after delete skills=%+v TotalXP=%d, want SQL only and 20", got.Skills, got.TotalXP)
	}
}
