package dtk

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/tip-next/internal/config"
	"github.com/tip-next/internal/dtkapi"
	"github.com/tip-next/internal/ordersync"
	"github.com/tip-next/internal/ordersync/platform"
)

func newTestSyncer(t *testing.T, handler http.HandlerFunc) (*Syncer, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := config.DtkConfig{
		BaseURL:   server.URL,
		AppKey:    "test-key",
		AppSecret: "test-secret",
	}
	client, err := dtkapi.NewClient(cfg)
	if err != nil {
		t.Fatalf("new client failed: %v", err)
	}
	return NewSyncer(client, cfg), server
}

func TestFetchBatchesPagination(t *testing.T) {
	pages := []string{
		`{"code":0,"msg":"ok","data":{
			"has_next":true,"position_index":"cursor-2",
			"results":{"publisher_order_dto":[
				{"trade_id":"1001","order_type":"天猫"},
				{"trade_id":"1002","order_type":"淘宝"}
			]}}}`,
		`{"code":0,"msg":"ok","data":{
			"has_next":false,
			"results":{"publisher_order_dto":[
				{"trade_id":"1003","order_type":"聚划算"}
			]}}}`,
	}
	var call int
	syncer, _ := newTestSyncer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != dtkapi.PathOrderDetails {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if call == 1 {
			if got := r.URL.Query().Get("positionIndex"); got != "cursor-2" {
				t.Errorf("page 2 position index want cursor-2 got %q", got)
			}
		}
		page := pages[call]
		call++
		fmt.Fprint(w, page)
	})

	var collected []ordersync.RawOrder
	err := syncer.FetchBatches(context.Background(),
		time.Now().Add(-time.Hour), time.Now(),
		func(batch []ordersync.RawOrder) {
			collected = append(collected, batch...)
		})
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if call != 2 {
		t.Fatalf("api calls want 2 got %d", call)
	}
	if len(collected) != 3 {
		t.Fatalf("orders want 3 got %d", len(collected))
	}
	for _, raw := range collected {
		if raw.Union != platform.UnionDTK {
			t.Fatalf("union want DTK got %s", raw.Union)
		}
		if raw.Ecommerce != platform.Taobao {
			t.Fatalf("ecommerce want taobao got %+v", raw.Ecommerce)
		}
	}
}

func TestFetchBatchesStopsOnStuckCursor(t *testing.T) {
	var call int
	syncer, _ := newTestSyncer(t, func(w http.ResponseWriter, r *http.Request) {
		call++
		fmt.Fprint(w, `{"code":0,"msg":"ok","data":{
			"has_next":true,"position_index":"same-cursor",
			"results":{"publisher_order_dto":[{"trade_id":"1","order_type":"淘宝"}]}}}`)
	})

	err := syncer.FetchBatches(context.Background(),
		time.Now().Add(-time.Hour), time.Now(),
		func([]ordersync.RawOrder) {})
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	// 第一页游标空->same-cursor 前进，第二页游标不再前进即停
	if call != 2 {
		t.Fatalf("api calls want 2 got %d", call)
	}
}

func TestFetchBatchesAPIError(t *testing.T) {
	syncer, _ := newTestSyncer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"code":10001,"msg":"sign invalid"}`)
	})

	err := syncer.FetchBatches(context.Background(),
		time.Now().Add(-time.Hour), time.Now(),
		func([]ordersync.RawOrder) {
			t.Fatal("batch callback should not fire")
		})
	if err == nil {
		t.Fatal("api error should propagate")
	}
}

func TestDetectPlatform(t *testing.T) {
	if got := detectPlatform(map[string]interface{}{"order_type": "天猫订单"}); got != platform.Taobao {
		t.Fatalf("tmall want taobao got %+v", got)
	}
	if got := detectPlatform(map[string]interface{}{"subsidy_type": "如意淘补贴"}); got != platform.Taobao {
		t.Fatalf("ruyitao want taobao got %+v", got)
	}
	if got := detectPlatform(map[string]interface{}{"order_type": "京东"}); got != platform.Unknown {
		t.Fatalf("jd text want unknown got %+v", got)
	}
	if got := detectPlatform(map[string]interface{}{}); got != platform.Unknown {
		t.Fatalf("empty want unknown got %+v", got)
	}
}
