package recommender

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// ErrMalformedResponse 响应缺少约定字段
var ErrMalformedResponse = errors.New("推荐服务响应格式不合法")

// Client 远程推荐服务客户端
type Client struct {
	baseURL string
	client  *http.Client
}

// Config 配置
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// NewClient 创建客户端
func NewClient(cfg *Config) *Client {
	if cfg == nil {
		cfg = &Config{}
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:8000"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// RelevantSkill 相关技能条目
type RelevantSkill struct {
	Skill       string  `json:"skill"`
	Score       float64 `json:"score"`
	Category    string  `json:"category"`
	Description string  `json:"description"`
}

// RelevantSkillsResult 相关技能查询结果
type RelevantSkillsResult struct {
	MainSkill      string          `json:"main_skill"`
	RelevantSkills []RelevantSkill `json:"relevant_skills"`
}

// ProjectRequest 项目生成请求
type ProjectRequest struct {
	MainSkills       []string `json:"main_skills"`
	TimeAvailability int      `json:"time_availability"`
	ExperienceLevel  int      `json:"experience_level"`
}

// ProjectSuggestion 推荐服务生成的项目
type ProjectSuggestion struct {
	ProjectName       string   `json:"project_name"`
	Description       string   `json:"description"`
	ExperienceLevel   int      `json:"experience_level,omitempty"`
	TimeAvailability  int      `json:"time_availability,omitempty"`
	LearningResources []string `json:"learning_resources,omitempty"`
	RelevantSkills    []string `json:"relevant_skills"`
}

// UserProfile 上传给推荐服务的用户画像
type UserProfile struct {
	ID               string         `json:"id"`
	Skills           map[string]int `json:"skills"`
	TimeAvailability int            `json:"time_availability"`
}

// Teammate 队友匹配结果
type Teammate struct {
	UserID     string  `json:"user_id"`
	MatchScore float64 `json:"match_score"`
}

// GrabRelevantSkills 查询与主技能相关的技能
func (c *Client) GrabRelevantSkills(ctx context.Context, mainSkill string, topK int) (*RelevantSkillsResult, error) {
	req := map[string]any{"main_skill": mainSkill, "top_k": topK}
	var resp struct {
		MainSkill      string           `json:"main_skill"`
		RelevantSkills *[]RelevantSkill `json:"relevant_skills"`
	}
	if err := c.post(ctx, "/grab_relevant_skills", req, &resp); err != nil {
		return nil, err
	}
	if resp.RelevantSkills == nil {
		return nil, fmt.Errorf("%w: 缺少 relevant_skills", ErrMalformedResponse)
	}
	return &RelevantSkillsResult{MainSkill: resp.MainSkill, RelevantSkills: *resp.RelevantSkills}, nil
}

// GetProject 请求生成项目；响应缺少 project 视为失败
func (c *Client) GetProject(ctx context.Context, req *ProjectRequest) (*ProjectSuggestion, error) {
	if req == nil {
		return nil, fmt.Errorf("req 不能为空")
	}
	if req.MainSkills == nil {
		req.MainSkills = []string{}
	}
	var resp struct {
		Project *ProjectSuggestion `json:"project"`
	}
	if err := c.post(ctx, "/get_project", req, &resp); err != nil {
		return nil, err
	}
	if resp.Project == nil {
		return nil, fmt.Errorf("%w: 缺少 project", ErrMalformedResponse)
	}
	return resp.Project, nil
}

// ProcessAndUploadSkills 上传技能目录 {category: [skillName]}
func (c *Client) ProcessAndUploadSkills(ctx context.Context, skills map[string][]string) error {
	return c.post(ctx, "/process_and_upload_skills", skills, nil)
}

// UploadUsers 上传用户画像
func (c *Client) UploadUsers(ctx context.Context, users []UserProfile) error {
	return c.post(ctx, "/upload_users", map[string]any{"users": users}, nil)
}

// FindTeammates 查找匹配的队友
func (c *Client) FindTeammates(ctx context.Context, user UserProfile, topK int) ([]Teammate, error) {
	req := map[string]any{"user": user, "top_k": topK}
	var resp struct {
		UserID    string      `json:"user_id"`
		Teammates *[]Teammate `json:"teammates"`
	}
	if err := c.post(ctx, "/find_teammates", req, &resp); err != nil {
		return nil, err
	}
	if resp.Teammates == nil {
		return nil, fmt.Errorf("%w: 缺少 teammates", ErrMalformedResponse)
	}
	return *resp.Teammates, nil
}

// BaseURL 返回服务地址
func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) post(ctx context.Context, path string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("序列化请求失败: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("创建请求失败: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("发送请求失败: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("读取响应失败: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		slog.Debug("推荐服务返回错误", "path", path, "status", resp.StatusCode, "body", string(respBody))
		return fmt.Errorf("API 错误: %s", resp.Status)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return nil
}
