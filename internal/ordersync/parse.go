package ordersync

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// 订单同步数据解析工具：JSON 报文安全提取、类型转换与日期解析，
// 避免业务代码里充斥判空与类型断言。

const timeLayout = "2006-01-02 15:04:05"

// FirstNonBlank 按顺序返回第一个非空字符串字段
func FirstNonBlank(obj map[string]interface{}, keys ...string) string {
	if obj == nil {
		return ""
	}
	for _, k := range keys {
		if k == "" {
			continue
		}
		if s := asString(obj[k]); strings.TrimSpace(s) != "" {
			return s
		}
	}
	return ""
}

// FirstPositiveFloat 按顺序返回第一个大于 0 的数值字段
func FirstPositiveFloat(obj map[string]interface{}, keys ...string) (float64, bool) {
	return firstFloat(obj, func(v float64) bool { return v > 0 }, keys...)
}

// FirstNonNegativeFloat 按顺序返回第一个 >=0 的数值字段
//
// 适用于"回退佣金/退款金额"这类字段：0 也是有意义的合法值。
func FirstNonNegativeFloat(obj map[string]interface{}, keys ...string) (float64, bool) {
	return firstFloat(obj, func(v float64) bool { return v >= 0 }, keys...)
}

// FirstInt 按顺序返回第一个可解析为整数的字段
func FirstInt(obj map[string]interface{}, keys ...string) (int64, bool) {
	if obj == nil {
		return 0, false
	}
	for _, k := range keys {
		raw, ok := obj[k]
		if !ok || raw == nil {
			continue
		}
		switch v := raw.(type) {
		case json.Number:
			if n, err := v.Int64(); err == nil {
				return n, true
			}
			if f, err := v.Float64(); err == nil {
				return int64(f), true
			}
		case float64:
			return int64(v), true
		case int64:
			return v, true
		case int:
			return int64(v), true
		case string:
			if n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64); err == nil {
				return n, true
			}
		}
	}
	return 0, false
}

// ParseTime 安全解析日期时间字符串
//
// 优先 yyyy-MM-dd HH:mm:ss，失败回退 RFC3339。
func ParseTime(raw string) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	if t, err := time.ParseInLocation(timeLayout, raw, time.Local); err == nil {
		return &t
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t
	}
	return nil
}

func firstFloat(obj map[string]interface{}, accept func(float64) bool, keys ...string) (float64, bool) {
	if obj == nil {
		return 0, false
	}
	for _, k := range keys {
		raw, ok := obj[k]
		if !ok || raw == nil {
			continue
		}
		v, ok := asFloat(raw)
		if ok && accept(v) {
			return v, true
		}
	}
	return 0, false
}

func asFloat(raw interface{}) (float64, bool) {
	switch v := raw.(type) {
	case json.Number:
		if f, err := v.Float64(); err == nil {
			return f, true
		}
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int64:
		return float64(v), true
	case int:
		return float64(v), true
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			return f, true
		}
	}
	return 0, false
}

func asString(raw interface{}) string {
	switch v := raw.(type) {
	case nil:
		return ""
	case string:
		return v
	case json.Number:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(v, 10)
	case int:
		return strconv.Itoa(v)
	case bool:
		return strconv.FormatBool(v)
	default:
		return ""
	}
}
