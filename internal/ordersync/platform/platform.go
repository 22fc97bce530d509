// Package platform 联盟平台与电商平台标识。
//
// 两个维度不同：联盟平台是"你调用谁的 API"（DTK/ZTK/...），
// 电商平台是"订单真实发生在哪里"（淘宝/京东/拼多多/...），
// 一个联盟平台可能混合返回多个电商平台的订单。
package platform

import "strings"

// UnionPlatform 联盟平台（聚合平台）标识
type UnionPlatform string

const (
	// UnionDTK 大淘客
	UnionDTK UnionPlatform = "DTK"
	// UnionZTK 折淘客
	UnionZTK UnionPlatform = "ZTK"
	// UnionTbOpen 淘宝开放平台直连（非联盟，仅表示同步来源）
	UnionTbOpen UnionPlatform = "TB_OPEN"
)

// EcommercePlatform 具体电商平台（订单真实发生的平台）
type EcommercePlatform struct {
	No   int
	Name string
}

var (
	Unknown = EcommercePlatform{No: -1, Name: "未知"}
	Taobao  = EcommercePlatform{No: 1, Name: "淘宝"}
	JD      = EcommercePlatform{No: 2, Name: "京东"}
	PDD     = EcommercePlatform{No: 3, Name: "拼多多"}
	Vip     = EcommercePlatform{No: 4, Name: "唯品会"}
	Douyin  = EcommercePlatform{No: 5, Name: "抖音"}
	Meituan = EcommercePlatform{No: 6, Name: "美团"}
)

// ParseEcommerce 按配置字符串解析电商平台（用于盈利规则作用域）
func ParseEcommerce(s string) EcommercePlatform {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "TB", "TAOBAO":
		return Taobao
	case "JD":
		return JD
	case "PDD":
		return PDD
	case "VIP":
		return Vip
	case "DY", "DOUYIN":
		return Douyin
	case "MT", "MEITUAN":
		return Meituan
	default:
		return Unknown
	}
}

// ParseUnion 按配置字符串解析联盟平台
func ParseUnion(s string) UnionPlatform {
	return UnionPlatform(strings.ToUpper(strings.TrimSpace(s)))
}
