package security

import "strings"

type Claims map[string]any

func (c Claims) String(name string) (string, bool) {
	v, ok := c[name].(string)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

func (c Claims) StringPtr(name string) *string {
	v, ok := c.String(name)
	if !ok {
		return nil
	}
	return &v
}

// StringList принимает массив строк или одну строку через запятую
func (c Claims) StringList(name string) ([]string, bool) {
	switch v := c[name].(type) {
	case []string:
		return v, len(v) > 0
	case []any:
		res := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok && s != "" {
				res = append(res, s)
			}
		}
		return res, len(res) > 0
	case string:
		if v == "" {
			return nil, false
		}
		parts := strings.Split(v, ",")
		res := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				res = append(res, p)
			}
		}
		return res, len(res) > 0
	default:
		return nil, false
	}
}
