package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/yuqie6/SkillSynth/internal/recommender"
	"github.com/yuqie6/SkillSynth/internal/schema"
)

var errUniqueName = errors.New("UNIQUE constraint failed: skills.name")

type fakeSkillRepo struct {
	mu       sync.Mutex
	items    map[uint]*schema.Skill
	nextID   uint
	creates  int
	onCreate func(r *fakeSkillRepo)
}

func newFakeSkillRepo(skills ...*schema.Skill) *fakeSkillRepo {
	r := &fakeSkillRepo{items: make(map[uint]*schema.Skill)}
	for _, s := range skills {
		r.insert(s)
	}
	return r
}

func (r *fakeSkillRepo) insert(s *schema.Skill) {
	r.nextID++
	s.ID = r.nextID
	cp := *s
	r.items[s.ID] = &cp
}

func (r *fakeSkillRepo) findName(name string) *schema.Skill {
	for _, s := range r.items {
		if s.Name == name {
			cp := *s
			return &cp
		}
	}
	return nil
}

func (r *fakeSkillRepo) GetByID(ctx context.Context, id uint) (*schema.Skill, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.items[id]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, nil
}
func (r *fakeSkillRepo) GetByName(ctx context.Context, name string) (*schema.Skill, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.findName(name), nil
}
func (r *fakeSkillRepo) GetByCategory(ctx context.Context, category string) (*schema.Skill, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id := uint(1); id <= r.nextID; id++ {
		if s, ok := r.items[id]; ok && s.Category == category {
			cp := *s
			return &cp, nil
		}
	}
	return nil, nil
}
func (r *fakeSkillRepo) Search(ctx context.Context, keyword string) ([]schema.Skill, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []schema.Skill
	for id := uint(1); id <= r.nextID; id++ {
		if s, ok := r.items[id]; ok && strings.Contains(strings.ToLower(s.Name), strings.ToLower(keyword)) {
			out = append(out, *s)
		}
	}
	return out, nil
}
func (r *fakeSkillRepo) GetAll(ctx context.Context) ([]schema.Skill, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]schema.Skill, 0, len(r.items))
	for id := uint(1); id <= r.nextID; id++ {
		if s, ok := r.items[id]; ok {
			out = append(out, *s)
		}
	}
	return out, nil
}
func (r *fakeSkillRepo) Create(ctx context.Context, skill *schema.Skill) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if hook := r.onCreate; hook != nil {
		r.onCreate = nil
		hook(r)
	}
	if r.findName(skill.Name) != nil {
		return errUniqueName
	}
	r.creates++
	r.insert(skill)
	return nil
}
func (r *fakeSkillRepo) Save(ctx context.Context, skill *schema.Skill) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if skill.ID == 0 {
		r.insert(skill)
		return nil
	}
	cp := *skill
	r.items[skill.ID] = &cp
	return nil
}
func (r *fakeSkillRepo) Delete(ctx context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.items, id)
	return nil
}
func (r *fakeSkillRepo) Exists(ctx context.Context, id uint) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.items[id]
	return ok, nil
}

type fakeUserRepo struct {
	mu     sync.Mutex
	items  map[uint]*schema.User
	nextID uint
	saves  int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{items: make(map[uint]*schema.User)}
}

func copyUser(u *schema.User) *schema.User {
	cp := *u
	cp.Skills = append([]schema.Skill(nil), u.Skills...)
	return &cp
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id uint) (*schema.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.items[id]; ok {
		return copyUser(u), nil
	}
	return nil, nil
}
func (r *fakeUserRepo) GetByUsername(ctx context.Context, username string) (*schema.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.items {
		if u.Username == username {
			return copyUser(u), nil
		}
	}
	return nil, nil
}
func (r *fakeUserRepo) list(keep func(u *schema.User) bool) []schema.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []schema.User
	for id := uint(1); id <= r.nextID; id++ {
		if u, ok := r.items[id]; ok && keep(u) {
			out = append(out, *copyUser(u))
		}
	}
	return out
}
func (r *fakeUserRepo) GetAll(ctx context.Context) ([]schema.User, error) {
	return r.list(func(*schema.User) bool { return true }), nil
}
func (r *fakeUserRepo) ListLevelGreaterThan(ctx context.Context, level int) ([]schema.User, error) {
	return r.list(func(u *schema.User) bool { return u.Level > level }), nil
}
func (r *fakeUserRepo) ListLevelLessThan(ctx context.Context, level int) ([]schema.User, error) {
	return r.list(func(u *schema.User) bool { return u.Level < level }), nil
}
func (r *fakeUserRepo) ListLevelEqualTo(ctx context.Context, level int) ([]schema.User, error) {
	return r.list(func(u *schema.User) bool { return u.Level == level }), nil
}
func (r *fakeUserRepo) Save(ctx context.Context, user *schema.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user.ID == 0 {
		r.nextID++
		user.ID = r.nextID
	}
	r.items[user.ID] = copyUser(user)
	r.saves++
	return nil
}
func (r *fakeUserRepo) Delete(ctx context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.items, id)
	return nil
}
func (r *fakeUserRepo) Exists(ctx context.Context, id uint) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.items[id]
	return ok, nil
}

type fakeProjectRepo struct {
	mu     sync.Mutex
	items  map[uint]*schema.Project
	nextID uint
	saves  int
}

func newFakeProjectRepo() *fakeProjectRepo {
	return &fakeProjectRepo{items: make(map[uint]*schema.Project)}
}

func copyProject(p *schema.Project) *schema.Project {
	cp := *p
	cp.Skills = append([]schema.Skill(nil), p.Skills...)
	return &cp
}

func (r *fakeProjectRepo) GetByID(ctx context.Context, id uint) (*schema.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.items[id]; ok {
		return copyProject(p), nil
	}
	return nil, nil
}
func (r *fakeProjectRepo) GetByName(ctx context.Context, name string) (*schema.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.items {
		if p.Name == name {
			return copyProject(p), nil
		}
	}
	return nil, nil
}
func (r *fakeProjectRepo) list(keep func(p *schema.Project) bool) []schema.Project {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []schema.Project
	for id := uint(1); id <= r.nextID; id++ {
		if p, ok := r.items[id]; ok && keep(p) {
			out = append(out, *copyProject(p))
		}
	}
	return out
}
func (r *fakeProjectRepo) GetAll(ctx context.Context) ([]schema.Project, error) {
	return r.list(func(*schema.Project) bool { return true }), nil
}
func (r *fakeProjectRepo) ListExperienceGreaterThan(ctx context.Context, level int) ([]schema.Project, error) {
	return r.list(func(p *schema.Project) bool { return p.ExperienceLevel > level }), nil
}
func (r *fakeProjectRepo) ListExperienceLessThan(ctx context.Context, level int) ([]schema.Project, error) {
	return r.list(func(p *schema.Project) bool { return p.ExperienceLevel > 0 && p.ExperienceLevel < level }), nil
}
func (r *fakeProjectRepo) ListExperienceEqualTo(ctx context.Context, level int) ([]schema.Project, error) {
	return r.list(func(p *schema.Project) bool { return p.ExperienceLevel == level }), nil
}
func (r *fakeProjectRepo) Save(ctx context.Context, project *schema.Project) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if project.ID == 0 {
		r.nextID++
		project.ID = r.nextID
	}
	r.items[project.ID] = copyProject(project)
	r.saves++
	return nil
}
func (r *fakeProjectRepo) Delete(ctx context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.items, id)
	return nil
}
func (r *fakeProjectRepo) Exists(ctx context.Context, id uint) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.items[id]
	return ok, nil
}

type fakeRecommender struct {
	mu sync.Mutex

	project   *recommender.ProjectSuggestion
	relevant  *recommender.RelevantSkillsResult
	teammates []recommender.Teammate
	err       error
	delay     time.Duration

	projectReqs  []*recommender.ProjectRequest
	skillUploads []map[string][]string
	userUploads  []recommender.UserProfile
}

func (f *fakeRecommender) wait(ctx context.Context) error {
	if f.delay <= 0 {
		return nil
	}
	select {
	case <-time.After(f.delay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (f *fakeRecommender) GrabRelevantSkills(ctx context.Context, mainSkill string, topK int) (*recommender.RelevantSkillsResult, error) {
	if err := f.wait(ctx); err != nil {
		return nil, err
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.relevant, nil
}
func (f *fakeRecommender) GetProject(ctx context.Context, req *recommender.ProjectRequest) (*recommender.ProjectSuggestion, error) {
	f.mu.Lock()
	f.projectReqs = append(f.projectReqs, req)
	f.mu.Unlock()
	if err := f.wait(ctx); err != nil {
		return nil, err
	}
	if f.err != nil {
		return nil, f.err
	}
	if f.project == nil {
		return nil, recommender.ErrMalformedResponse
	}
	return f.project, nil
}
func (f *fakeRecommender) ProcessAndUploadSkills(ctx context.Context, skills map[string][]string) error {
	f.mu.Lock()
	f.skillUploads = append(f.skillUploads, skills)
	f.mu.Unlock()
	return f.err
}
func (f *fakeRecommender) UploadUsers(ctx context.Context, users []recommender.UserProfile) error {
	f.mu.Lock()
	f.userUploads = append(f.userUploads, users...)
	f.mu.Unlock()
	return f.err
}
func (f *fakeRecommender) FindTeammates(ctx context.Context, user recommender.UserProfile, topK int) ([]recommender.Teammate, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.teammates, nil
}

// inlineDispatcher 同步执行任务，并吞掉错误（与后台池的语义一致）
type inlineDispatcher struct {
	mu    sync.Mutex
	kinds []string
	errs  []error
}

func (d *inlineDispatcher) Submit(kind string, job func(ctx context.Context) error) {
	err := job(context.Background())
	d.mu.Lock()
	defer d.mu.Unlock()
	d.kinds = append(d.kinds, kind)
	d.errs = append(d.errs, err)
}

type testEnv struct {
	skills     *fakeSkillRepo
	users      *fakeUserRepo
	projects   *fakeProjectRepo
	remote     *fakeRecommender
	dispatcher *inlineDispatcher
	resolver   *SkillResolver
	sync       *SyncService
}

func newTestEnv(skills ...*schema.Skill) *testEnv {
	env := &testEnv{
		skills:     newFakeSkillRepo(skills...),
		users:      newFakeUserRepo(),
		projects:   newFakeProjectRepo(),
		remote:     &fakeRecommender{},
		dispatcher: &inlineDispatcher{},
	}
	env.resolver = NewSkillResolver(env.skills, env.projects)
	env.sync = NewSyncService(env.remote, env.dispatcher, env.resolver, &SyncConfig{GenerateTimeout: 200 * time.Millisecond})
	return env
}
