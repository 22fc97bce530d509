package ops

import (
	"encoding/json"
	"strconv"

	"github.com/tip-next/internal/http/response"
	"github.com/tip-next/internal/repository"

	"github.com/gin-gonic/gin"
)

// ListOrders 查询订单列表
func (h *Handler) ListOrders(c *gin.Context) {
	filter := repository.OrderListFilter{
		Page:          queryInt(c, "page", 1),
		PageSize:      queryInt(c, "page_size", 20),
		UnionPlatform: c.Query("union_platform"),
		PayMonth:      c.Query("pay_month"),
	}
	if uid := queryInt(c, "user_id", 0); uid > 0 {
		filter.UserID = uint(uid)
	}
	if raw := c.Query("status"); raw != "" {
		if v, err := strconv.ParseInt(raw, 10, 8); err == nil {
			status := int8(v)
			filter.Status = &status
		}
	}

	orders, total, err := h.OrderService.List(filter)
	if err != nil {
		response.Error(c, response.CodeInternal, "查询失败")
		return
	}
	response.SuccessWithPage(c, orders, buildPagination(filter.Page, filter.PageSize, total))
}

// GetAccount 查询用户资金账户
func (h *Handler) GetAccount(c *gin.Context) {
	userID := queryInt(c, "user_id", 0)
	if userID <= 0 {
		response.BadRequest(c, "user_id 参数错误")
		return
	}
	account, err := h.AccountService.GetAccount(uint(userID))
	if err != nil {
		response.Error(c, response.CodeInternal, "查询失败")
		return
	}
	response.Success(c, account)
}

// ListLedgers 查询资金流水
func (h *Handler) ListLedgers(c *gin.Context) {
	filter := repository.LedgerListFilter{
		Page:     queryInt(c, "page", 1),
		PageSize: queryInt(c, "page_size", 20),
		OrderKey: c.Query("order_key"),
	}
	if uid := queryInt(c, "user_id", 0); uid > 0 {
		filter.UserID = uint(uid)
	}

	entries, total, err := h.AccountService.ListLedgers(filter)
	if err != nil {
		response.Error(c, response.CodeInternal, "查询失败")
		return
	}
	response.SuccessWithPage(c, entries, buildPagination(filter.Page, filter.PageSize, total))
}

// ListGoods 查询本地商品库
func (h *Handler) ListGoods(c *gin.Context) {
	filter := repository.GoodsListFilter{
		Page:      queryInt(c, "page", 1),
		PageSize:  queryInt(c, "page_size", 20),
		Keyword:   c.Query("keyword"),
		OnlyAlive: c.Query("only_alive") == "1",
	}
	goods, total, err := h.GoodsRepo.List(filter)
	if err != nil {
		response.Error(c, response.CodeInternal, "查询失败")
		return
	}
	response.SuccessWithPage(c, goods, buildPagination(filter.Page, filter.PageSize, total))
}

// GoodsFirstPage 商品首屏列表，带缓存
func (h *Handler) GoodsFirstPage(c *gin.Context) {
	if h.Container.GoodsFirstPage == nil {
		response.Error(c, response.CodeBadRequest, "商品同步未启用")
		return
	}
	payload, err := h.Container.GoodsFirstPage.GetOrRefresh(c.Request.Context())
	if err != nil {
		response.Error(c, response.CodeInternal, "商品首屏获取失败")
		return
	}
	response.Success(c, json.RawMessage(payload))
}

func queryInt(c *gin.Context, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}

func buildPagination(page, pageSize int, total int64) response.Pagination {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	totalPage := total / int64(pageSize)
	if total%int64(pageSize) != 0 {
		totalPage++
	}
	return response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: totalPage,
	}
}
