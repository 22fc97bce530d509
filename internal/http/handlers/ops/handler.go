package ops

import "github.com/tip-next/internal/provider"

// Handler 运维接口处理器入口
// 说明：仅供内网运维调用，无业务端路由。
type Handler struct {
	*provider.Container
}

// New 创建运维处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
