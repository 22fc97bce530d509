package cache

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestFirstPageCachesWithinTTL(t *testing.T) {
	calls := 0
	cache := NewFirstPage("test:first_page", time.Minute, func(ctx context.Context) (json.RawMessage, error) {
		calls++
		return json.RawMessage(`{"list":[{"goods_id":"1"}]}`), nil
	})

	first, err := cache.GetOrRefresh(context.Background())
	if err != nil {
		t.Fatalf("首次取值失败: %v", err)
	}
	second, err := cache.GetOrRefresh(context.Background())
	if err != nil {
		t.Fatalf("二次取值失败: %v", err)
	}
	if calls != 1 {
		t.Fatalf("loader calls = %d, want 1", calls)
	}
	if string(first) != string(second) {
		t.Errorf("TTL 内应返回相同缓存值")
	}
}

func TestFirstPageEmptyPayloadNotCached(t *testing.T) {
	calls := 0
	cache := NewFirstPage("test:first_page_empty", time.Minute, func(ctx context.Context) (json.RawMessage, error) {
		calls++
		return json.RawMessage(`{"list":[]}`), nil
	})

	if _, err := cache.GetOrRefresh(context.Background()); err != nil {
		t.Fatalf("取值失败: %v", err)
	}
	if _, err := cache.GetOrRefresh(context.Background()); err != nil {
		t.Fatalf("取值失败: %v", err)
	}
	// 空列表不写缓存，每次都回源
	if calls != 2 {
		t.Fatalf("loader calls = %d, want 2", calls)
	}
}

func TestFirstPageStaleFallbackOnError(t *testing.T) {
	calls := 0
	cache := NewFirstPage("test:first_page_stale", time.Minute, func(ctx context.Context) (json.RawMessage, error) {
		calls++
		if calls == 1 {
			return json.RawMessage(`{"list":[{"goods_id":"1"}]}`), nil
		}
		return nil, errors.New("upstream down")
	})

	good, err := cache.GetOrRefresh(context.Background())
	if err != nil {
		t.Fatalf("首次取值失败: %v", err)
	}

	// 回源失败时返回旧值兜底
	if err := cache.Refresh(context.Background()); err != nil {
		t.Fatalf("刷新失败应兜底旧值: %v", err)
	}
	stale, err := cache.GetOrRefresh(context.Background())
	if err != nil {
		t.Fatalf("兜底取值失败: %v", err)
	}
	if string(stale) != string(good) {
		t.Errorf("stale = %s, want %s", stale, good)
	}
}

func TestFirstPageFirstLoadErrorPropagates(t *testing.T) {
	wantErr := errors.New("upstream down")
	cache := NewFirstPage("test:first_page_err", time.Minute, func(ctx context.Context) (json.RawMessage, error) {
		return nil, wantErr
	})

	if _, err := cache.GetOrRefresh(context.Background()); !errors.Is(err, wantErr) {
		t.Fatalf("err = %v, want %v", err, wantErr)
	}
}

func TestIsEmptyPayload(t *testing.T) {
	cases := []struct {
		payload string
		want    bool
	}{
		{"", true},
		{"not-json", true},
		{`{"list":[]}`, true},
		{`{"data":{"list":[]}}`, true},
		{`{"list":[{"goods_id":"1"}]}`, false},
		{`{"data":{"list":[{"goods_id":"1"}]}}`, false},
	}
	for _, tc := range cases {
		if got := isEmptyPayload(json.RawMessage(tc.payload)); got != tc.want {
			t.Errorf("isEmptyPayload(%q) = %v, want %v", tc.payload, got, tc.want)
		}
	}
}
