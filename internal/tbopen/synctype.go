package tbopen

// SyncType 淘宝订单同步口径
//
// queryType 口径：1 按淘客创建时间，2 按淘客付款时间，
// 3 按淘客结算时间，4 按订单更新时间。
type SyncType string

const (
	SyncTypeMinute        SyncType = "MINUTE"
	SyncTypeDay           SyncType = "DAY"
	SyncTypeMonthUpdate   SyncType = "MONTH_UPDATE"
	SyncTypeMonthCreate   SyncType = "MONTH_CREATE"
	SyncTypeMonthComplete SyncType = "MONTH_COMPLETE"
	SyncTypePay           SyncType = "PAY"
)

// QueryType 同步口径对应的接口 query_type
func (t SyncType) QueryType() int {
	switch t {
	case SyncTypeMonthCreate:
		return 1
	case SyncTypePay:
		return 2
	case SyncTypeMonthComplete:
		return 3
	default:
		// MINUTE / DAY / MONTH_UPDATE 都按更新时间查
		return 4
	}
}

// ParseSyncType 解析同步口径，未知值回退 DAY
func ParseSyncType(raw string) SyncType {
	switch SyncType(raw) {
	case SyncTypeMinute, SyncTypeDay, SyncTypeMonthUpdate,
		SyncTypeMonthCreate, SyncTypeMonthComplete, SyncTypePay:
		return SyncType(raw)
	default:
		return SyncTypeDay
	}
}
