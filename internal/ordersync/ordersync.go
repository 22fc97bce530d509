// Package ordersync 联盟订单同步核心（两层适配器）。
//
// 第一层（联盟平台维度）：Fetcher 负责从联盟平台 API 分页拉取原始订单，
// 屏蔽各平台的签名/分页差异，统一产出 RawOrder。
// 第二层（电商平台维度）：Mapper 按订单真实发生的电商平台把 RawOrder
// 映射为本站 models.Order，映射过程中调用盈利计算器。
// Coordinator 编排两层并负责分批落库。
package ordersync

import (
	"context"
	"time"

	"github.com/tip-next/internal/models"
	"github.com/tip-next/internal/ordersync/platform"
	"github.com/tip-next/internal/profit"
)

// RawOrder 联盟平台返回的"原始订单"抽象
//
// Raw 保留解码后的原始报文，用于字段兜底与审计；
// 只在单次拉取周期内存活，不落库。
type RawOrder struct {
	Union     platform.UnionPlatform
	Ecommerce platform.EcommercePlatform
	Raw       map[string]interface{}
}

// BatchFunc 逐批消费原始订单的回调
type BatchFunc func(batch []RawOrder)

// Fetcher 联盟平台订单同步器（第一层多态）
//
// 实现约定：
//   - 分页流式回调，每拿到一页立即交给 onBatch，不整窗缓冲
//   - 单页解析失败/接口报错中止本联盟本轮拉取（记日志，不重试）
//   - 页内单条报文损坏跳过该条，不中止整页
//   - 不负责映射为 Order，也不负责落库
type Fetcher interface {
	UnionPlatform() platform.UnionPlatform
	FetchBatches(ctx context.Context, startTime, endTime time.Time, onBatch BatchFunc) error
}

// Mapper 电商平台订单映射器（第二层多态）
//
// 缺少可用的三方订单号时返回 nil（无幂等身份的记录不允许落库）。
// 除构造 Order 外不产生副作用，持久化是 Coordinator 的职责。
type Mapper interface {
	EcommercePlatform() platform.EcommercePlatform
	MapToOrder(raw RawOrder, calc *profit.Calculator) *models.Order
}
