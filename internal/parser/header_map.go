package parser

import (
	_ "embed"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/pelletier/go-toml/v2"

	"rosterlens/internal/model"
)

//go:embed aliases.toml
var defaultAliasesTOML []byte

var whitespaceRun = regexp.MustCompile(`\s+`)

// NormalizeHeader 规范化表头：小写、压缩连续空白、去除首尾空白
// 不做全角/半角或区域相关的折叠
func NormalizeHeader(header string) string {
	if header == "" {
		return ""
	}
	header = strings.ToLower(header)
	header = whitespaceRun.ReplaceAllString(header, " ")
	return strings.TrimSpace(header)
}

// aliasFile 别名文件结构
type aliasFile struct {
	Aliases map[string][]string `toml:"aliases"`
}

// ParseAliases 解析 TOML 别名表
func ParseAliases(data []byte) (map[Field][]string, error) {
	var f aliasFile
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("解析别名表失败: %w", err)
	}
	if len(f.Aliases) == 0 {
		return nil, fmt.Errorf("别名表为空")
	}
	out := make(map[Field][]string, len(f.Aliases))
	for k, v := range f.Aliases {
		out[Field(k)] = v
	}
	return out, nil
}

// LoadAliasFile 从磁盘加载别名表
func LoadAliasFile(path string) (map[Field][]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取别名表失败: %w", err)
	}
	return ParseAliases(data)
}

// LoadResolver 按路径加载别名表并创建解析器；路径为空时使用内置别名表
func LoadResolver(path string) (*Resolver, error) {
	if path == "" {
		return DefaultResolver(), nil
	}
	aliases, err := LoadAliasFile(path)
	if err != nil {
		return nil, err
	}
	return NewResolver(aliases)
}

// Resolver 表头别名解析器，构造后只读，可并发使用
type Resolver struct {
	aliasToField map[string]Field
}

// NewResolver 根据别名表创建解析器；同一别名指向不同字段时报错
func NewResolver(aliases map[Field][]string) (*Resolver, error) {
	fields := make([]string, 0, len(aliases))
	for f := range aliases {
		fields = append(fields, string(f))
	}
	sort.Strings(fields)

	r := &Resolver{aliasToField: make(map[string]Field)}
	for _, name := range fields {
		field := Field(name)
		for _, alias := range aliases[field] {
			key := NormalizeHeader(alias)
			if key == "" {
				continue
			}
			if prev, ok := r.aliasToField[key]; ok && prev != field {
				return nil, fmt.Errorf("别名 %q 同时映射到 %s 和 %s", alias, prev, field)
			}
			r.aliasToField[key] = field
		}
	}
	return r, nil
}

var (
	defaultResolverOnce sync.Once
	defaultResolver     *Resolver
)

// DefaultResolver 内置别名表的解析器（只初始化一次）
func DefaultResolver() *Resolver {
	defaultResolverOnce.Do(func() {
		aliases, err := ParseAliases(defaultAliasesTOML)
		if err != nil {
			panic(fmt.Sprintf("内置别名表无效: %v", err))
		}
		r, err := NewResolver(aliases)
		if err != nil {
			panic(fmt.Sprintf("内置别名表无效: %v", err))
		}
		defaultResolver = r
	})
	return defaultResolver
}

// Lookup 查找表头对应的规范字段
func (r *Resolver) Lookup(header string) (Field, bool) {
	f, ok := r.aliasToField[NormalizeHeader(header)]
	return f, ok
}

// Fields 表头集合中可识别的规范字段
func (r *Resolver) Fields(headers []string) map[Field]bool {
	out := make(map[Field]bool, len(headers))
	for _, h := range headers {
		if f, ok := r.Lookup(h); ok {
			out[f] = true
		}
	}
	return out
}

// MissingFields 返回 required 中未被表头覆盖的字段（保持 required 顺序）
func (r *Resolver) MissingFields(headers []string, required []Field) []Field {
	present := r.Fields(headers)
	var missing []Field
	for _, f := range required {
		if !present[f] {
			missing = append(missing, f)
		}
	}
	return missing
}

// Normalize 单次遍历完成规范化与重复检测
// 多列映射到同一字段时取最后一列的值；未识别列按原名保留在 Extras
func (r *Resolver) Normalize(row model.SheetRow) (CanonicalRow, []Duplicate) {
	out := CanonicalRow{
		Row:    row.Row,
		Values: make(map[Field]any, len(row.Cells)),
	}
	seen := make(map[Field]string)
	dupIndex := make(map[Field]int)
	var duplicates []Duplicate

	for _, cell := range row.Cells {
		field, ok := r.Lookup(cell.Header)
		if !ok {
			out.Extras = append(out.Extras, cell)
			continue
		}
		if first, exists := seen[field]; exists {
			idx, tracked := dupIndex[field]
			if !tracked {
				idx = len(duplicates)
				dupIndex[field] = idx
				duplicates = append(duplicates, Duplicate{Field: field, Headers: []string{first}})
			}
			duplicates[idx].Headers = append(duplicates[idx].Headers, cell.Header)
		} else {
			seen[field] = cell.Header
		}
		out.Values[field] = cell.Value
	}
	return out, duplicates
}
