package tbopen

import (
	"context"
	"net/http"
	"testing"

	"github.com/tip-next/internal/models"
)

func TestPunishSyncLocksOrder(t *testing.T) {
	_, orders, _ := setupTbRepoTest(t)
	if _, err := orders.UpsertBatch([]models.Order{
		{OrderKey: "TB_OPEN_800", ExternalTradeID: "800"},
	}); err != nil {
		t.Fatalf("预置订单失败: %v", err)
	}

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"tbk_sc_punish_order_get_response":{"data":{"results":[
			{"tb_trade_id":"800","violation_type":"虚假交易","punish_status":"2"}
		]}}}`))
	})
	service := NewPunishSyncService(client, orders)

	total := service.SyncByStartTime(context.Background(), "2026-08-01 00:00:00", 50)
	if total != 1 {
		t.Fatalf("total = %d, want 1", total)
	}

	order, err := orders.GetByOrderKey("TB_OPEN_800")
	if err != nil {
		t.Fatalf("查询失败: %v", err)
	}
	if !order.Locked {
		t.Error("处罚订单应锁单")
	}
	if order.PunishReason != "虚假交易:2" {
		t.Errorf("punish reason = %s, want 虚假交易:2", order.PunishReason)
	}
}

func TestPunishSyncMissingTradeIDSkipped(t *testing.T) {
	_, orders, _ := setupTbRepoTest(t)

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"tbk_sc_punish_order_get_response":{"data":{"results":[
			{"violation_type":"无订单号"}
		]}}}`))
	})
	service := NewPunishSyncService(client, orders)

	if total := service.SyncByStartTime(context.Background(), "2026-08-01 00:00:00", 50); total != 0 {
		t.Fatalf("total = %d, want 0", total)
	}
}

func TestExtractPunishResultsWrappings(t *testing.T) {
	nested := map[string]interface{}{
		"tbk_sc_punish_order_get_response": map[string]interface{}{
			"result": map[string]interface{}{
				"data": []interface{}{map[string]interface{}{"tb_trade_id": "1"}},
			},
		},
	}
	if got := extractPunishResults(nested); len(got) != 1 {
		t.Errorf("nested results = %d, want 1", len(got))
	}

	flat := map[string]interface{}{
		"results": []interface{}{map[string]interface{}{"tb_trade_id": "2"}},
	}
	if got := extractPunishResults(flat); len(got) != 1 {
		t.Errorf("flat results = %d, want 1", len(got))
	}
}
