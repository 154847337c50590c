package actionplan

import (
	_ "embed"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"rosterlens/internal/model"
)

//go:embed templates.yaml
var embeddedTemplates []byte

// maxActions 计划中的动作数；maxAffected 每个动作展示的受影响班次数
const (
	maxActions  = 3
	maxAffected = 3
)

// CheckTemplate 单个检查类型的整改文案
type CheckTemplate struct {
	Title           string `yaml:"title"`
	WhatToChange    string `yaml:"whatToChange"`
	Why             string `yaml:"why"`
	ExpectedOutcome string `yaml:"expectedOutcome"`
	RiskIfIgnored   string `yaml:"riskIfIgnored"`
}

// FollowUpTemplate 追问模板，prompt 中的 {title} 替换为动作标题
type FollowUpTemplate struct {
	LabelSuffix string `yaml:"labelSuffix"`
	Prompt      string `yaml:"prompt"`
}

// FallbackAction 无问题明细时的固定动作
type FallbackAction struct {
	CheckTemplate `yaml:",inline"`
	IssueCount    string `yaml:"issueCount"`
	FocusExamples string `yaml:"focusExamples"`
}

// Templates 计划模板全集
type Templates struct {
	Title             string                   `yaml:"title"`
	Owner             string                   `yaml:"owner"`
	FallbackCheckType string                   `yaml:"fallbackCheckType"`
	Checks            map[string]CheckTemplate `yaml:"checks"`
	FollowUps         []FollowUpTemplate       `yaml:"followUps"`
	Fallback          []FallbackAction         `yaml:"fallback"`
}

// ParseTemplates 解析 YAML 模板并检查必需项
func ParseTemplates(data []byte) (*Templates, error) {
	var t Templates
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("解析计划模板失败: %w", err)
	}
	if _, ok := t.Checks[defaultKey]; !ok {
		return nil, fmt.Errorf("计划模板缺少 %s 检查模板", defaultKey)
	}
	if len(t.FollowUps) == 0 {
		return nil, fmt.Errorf("计划模板缺少追问模板")
	}
	if len(t.Fallback) == 0 {
		return nil, fmt.Errorf("计划模板缺少兜底动作")
	}
	return &t, nil
}

var (
	defaultOnce      sync.Once
	defaultTemplates *Templates
)

// DefaultTemplates 内置模板，只解析一次
func DefaultTemplates() *Templates {
	defaultOnce.Do(func() {
		t, err := ParseTemplates(embeddedTemplates)
		if err != nil {
			panic(err)
		}
		defaultTemplates = t
	})
	return defaultTemplates
}

// AttachPolicy 决定是否在回答中附带整改计划
type AttachPolicy func(question string, followUp bool) bool

// AlwaysAttach 默认策略：总是附带
func AlwaysAttach(string, bool) bool { return true }

// FirstTurnOnly 追问时不再重复附带
func FirstTurnOnly(_ string, followUp bool) bool { return !followUp }

// 附带策略名称（config.toml [actionplan] attach、rosterctl --attach）
const (
	AttachAlways    = "always"
	AttachFirstTurn = "first_turn"
)

// PolicyByName 按名称选择附带策略；空串视为 always
func PolicyByName(name string) (AttachPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", AttachAlways:
		return AlwaysAttach, nil
	case AttachFirstTurn:
		return FirstTurnOnly, nil
	}
	return nil, fmt.Errorf("未知的附带策略: %q", name)
}

// Generator 整改计划生成器；无可变状态，可并发使用
type Generator struct {
	templates *Templates
	attach    AttachPolicy
}

// Option 生成器选项
type Option func(*Generator)

// WithTemplates 替换模板
func WithTemplates(t *Templates) Option {
	return func(g *Generator) {
		if t != nil {
			g.templates = t
		}
	}
}

// WithAttachPolicy 替换附带策略
func WithAttachPolicy(p AttachPolicy) Option {
	return func(g *Generator) {
		if p != nil {
			g.attach = p
		}
	}
}

// New 创建生成器
func New(opts ...Option) *Generator {
	g := &Generator{attach: AlwaysAttach}
	for _, opt := range opts {
		opt(g)
	}
	if g.templates == nil {
		g.templates = DefaultTemplates()
	}
	return g
}

// BuildFor 按附带策略生成计划；不附带时返回 nil
func (g *Generator) BuildFor(v *model.ValidationResult, question string, followUp bool) *model.ActionPlan {
	if !g.attach(question, followUp) {
		return nil
	}
	return g.Build(v)
}

// Build 由校验结果生成前三项整改动作；输入为 nil 时返回 nil
func (g *Generator) Build(v *model.ValidationResult) *model.ActionPlan {
	if v == nil {
		return nil
	}
	var actions []model.Action
	if len(v.Issues) == 0 {
		actions = g.fallbackActions(v)
	} else {
		actions = g.itemizedActions(v.Issues)
	}
	return &model.ActionPlan{
		Title:          g.templates.Title,
		ValidationID:   v.ValidationID,
		Actions:        actions,
		QuickFollowUps: g.followUps(actions),
	}
}

func (g *Generator) fallbackActions(v *model.ValidationResult) []model.Action {
	actions := make([]model.Action, 0, len(g.templates.Fallback))
	for i, fb := range g.templates.Fallback {
		count := v.TotalIssues
		if fb.IssueCount == "critical" && v.CriticalIssues > 0 {
			count = v.CriticalIssues
		}
		actions = append(actions, model.Action{
			ID:              actionID(i),
			Priority:        priority(i),
			Title:           fb.Title,
			Owner:           g.templates.Owner,
			CheckType:       g.templates.FallbackCheckType,
			IssueCount:      count,
			CriticalCount:   v.CriticalIssues,
			AffectedShifts:  []model.AffectedShift{},
			WhatToChange:    fb.WhatToChange,
			Why:             fb.Why,
			ExpectedOutcome: fb.ExpectedOutcome,
			RiskIfIgnored:   fb.RiskIfIgnored,
			FocusExamples:   fb.FocusExamples,
		})
	}
	return actions
}

// group 同一检查类型的问题聚合
type group struct {
	key       string
	checkType string
	count     int
	critical  int
	score     int
	affected  []model.AffectedShift
}

func (g *Generator) itemizedActions(list []model.ValidationIssue) []model.Action {
	var groups []*group
	index := make(map[string]*group)
	for _, issue := range list {
		key := CheckKey(issue.CheckType)
		grp, ok := index[key]
		if !ok {
			checkType := strings.TrimSpace(issue.CheckType)
			if checkType == "" {
				checkType = g.templates.FallbackCheckType
			}
			grp = &group{key: key, checkType: checkType}
			index[key] = grp
			groups = append(groups, grp)
		}
		weight := severityWeight(issue.Severity)
		grp.count++
		grp.score += weight*2 + 1
		if weight >= 3 {
			grp.critical++
		}
		grp.affected = append(grp.affected, affectedShift(issue))
	}

	sort.SliceStable(groups, func(i, j int) bool {
		a, b := groups[i], groups[j]
		if a.score != b.score {
			return a.score > b.score
		}
		if a.critical != b.critical {
			return a.critical > b.critical
		}
		return a.count > b.count
	})
	if len(groups) > maxActions {
		groups = groups[:maxActions]
	}

	actions := make([]model.Action, 0, len(groups))
	for i, grp := range groups {
		tpl, ok := g.templates.Checks[grp.key]
		if !ok {
			tpl = g.templates.Checks[defaultKey]
		}
		affected := grp.affected
		if len(affected) > maxAffected {
			affected = affected[:maxAffected]
		}
		actions = append(actions, model.Action{
			ID:              actionID(i),
			Priority:        priority(i),
			Title:           tpl.Title,
			Owner:           g.templates.Owner,
			CheckType:       grp.checkType,
			IssueCount:      grp.count,
			CriticalCount:   grp.critical,
			AffectedShifts:  affected,
			WhatToChange:    tpl.WhatToChange,
			Why:             tpl.Why,
			ExpectedOutcome: tpl.ExpectedOutcome,
			RiskIfIgnored:   tpl.RiskIfIgnored,
			FocusExamples:   focusExamples(affected),
		})
	}
	return actions
}

func (g *Generator) followUps(actions []model.Action) []model.QuickFollowUp {
	out := make([]model.QuickFollowUp, 0, len(actions))
	for i, a := range actions {
		tpl := g.templates.FollowUps[i%len(g.templates.FollowUps)]
		out = append(out, model.QuickFollowUp{
			ID:       "follow_up_" + a.ID,
			Label:    a.Priority + " " + tpl.LabelSuffix,
			Prompt:   strings.ReplaceAll(tpl.Prompt, "{title}", a.Title),
			ActionID: a.ID,
		})
	}
	return out
}

const defaultKey = "default"

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// CheckKey 检查类型归一化为模板键："Meal Break" -> "mealbreak"
func CheckKey(checkType string) string {
	key := nonAlnum.ReplaceAllString(strings.ToLower(checkType), "")
	if key == "" {
		return defaultKey
	}
	return key
}

func severityWeight(severity string) int {
	switch strings.ToLower(strings.TrimSpace(severity)) {
	case "error":
		return 3
	case "warning":
		return 2
	default:
		return 1
	}
}

func affectedShift(issue model.ValidationIssue) model.AffectedShift {
	employee := firstNonBlank(issue.EmployeeName, issue.EmployeeID, "Unknown employee")
	dates := firstNonBlank(issue.AffectedDates, "affected dates")
	return model.AffectedShift{
		Employee:    employee,
		Dates:       dates,
		Description: strings.TrimSpace(issue.Description),
	}
}

func focusExamples(affected []model.AffectedShift) string {
	if len(affected) == 0 {
		return "Review the flagged shifts in this category."
	}
	parts := make([]string, 0, len(affected))
	for _, a := range affected {
		parts = append(parts, fmt.Sprintf("%s (%s)", a.Employee, a.Dates))
	}
	return strings.Join(parts, "; ")
}

func firstNonBlank(values ...string) string {
	for _, v := range values {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}

func actionID(i int) string { return fmt.Sprintf("action_%d", i+1) }

func priority(i int) string { return fmt.Sprintf("P%d", i+1) }
