// Package validate 声明式字段校验：每个字段一组有序规则，所有字段都检查，错误累加不短路。
package validate

import (
	"strconv"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"user-api/internal/domain"
)

var (
	vOnce sync.Once
	v     *validator.Validate
)

func engine() *validator.Validate {
	vOnce.Do(func() { v = validator.New(validator.WithRequiredStructEnabled()) })
	return v
}

// tag 复用 validator 的格式判断（email/url/min=8 ...）
func tag(val any, t string) bool {
	s, ok := val.(string)
	if !ok {
		return false
	}
	return engine().Var(s, t) == nil
}

type Rule struct {
	Check   func(val any) bool
	Message string
}

func Required(msg string) Rule {
	return Rule{Message: msg, Check: func(val any) bool {
		if val == nil {
			return false
		}
		if s, ok := val.(string); ok {
			return s != ""
		}
		return true
	}}
}

func String(msg string) Rule {
	return Rule{Message: msg, Check: func(val any) bool {
		_, ok := val.(string)
		return ok
	}}
}

func Email(msg string) Rule {
	return Rule{Message: msg, Check: func(val any) bool { return tag(val, "email") }}
}

func URL(msg string) Rule {
	return Rule{Message: msg, Check: func(val any) bool { return tag(val, "url") }}
}

// MinLen 按字符（rune）计数
func MinLen(n int, msg string) Rule {
	return Rule{Message: msg, Check: func(val any) bool { return tag(val, "min="+strconv.Itoa(n)) }}
}

func OneOf(msg string, allowed ...string) Rule {
	return Rule{Message: msg, Check: func(val any) bool {
		s, ok := val.(string)
		if !ok {
			return false
		}
		for _, a := range allowed {
			if s == a {
				return true
			}
		}
		return false
	}}
}

type Field struct {
	Name     string
	Optional bool // 缺失或 null 时跳过全部规则
	Rules    []Rule
}

type Shape struct {
	Name   string
	Fields []Field
}

// Partial 更新用：所有字段都变成条件校验
func (s Shape) Partial(name string) Shape {
	out := Shape{Name: name, Fields: make([]Field, len(s.Fields))}
	for i, f := range s.Fields {
		f.Optional = true
		out.Fields[i] = f
	}
	return out
}

// Apply 先把字符串 trim（原地写回 raw），再按字段声明顺序校验
func (s Shape) Apply(raw map[string]any) []domain.Violation {
	var out []domain.Violation
	for _, f := range s.Fields {
		val, present := raw[f.Name]
		if str, ok := val.(string); ok {
			val = strings.TrimSpace(str)
			raw[f.Name] = val
		}
		if f.Optional && (!present || val == nil) {
			continue
		}
		for _, r := range f.Rules {
			if !r.Check(val) {
				out = append(out, domain.Violation{Field: f.Name, Message: r.Message})
			}
		}
	}
	return out
}
