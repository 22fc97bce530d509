package worker

import (
	"context"
	"errors"
	"time"

	"github.com/tip-next/internal/config"
	"github.com/tip-next/internal/logger"
	"github.com/tip-next/internal/queue"

	"github.com/hibiken/asynq"
)

// Scheduler 定时任务服务，负责按 cron 表达式投递同步与结算任务
type Scheduler struct {
	name      string
	scheduler *asynq.Scheduler
}

// NewScheduler 创建定时任务服务
func NewScheduler(cfg *config.Config) (*Scheduler, error) {
	if cfg == nil || !cfg.Queue.Enabled {
		return nil, errors.New("queue disabled")
	}
	opt := queue.BuildRedisOpt(&cfg.Queue)
	scheduler := asynq.NewScheduler(opt, &asynq.SchedulerOpts{
		Location: time.Local,
	})

	s := &Scheduler{
		name:      "scheduler",
		scheduler: scheduler,
	}
	if err := s.registerEntries(cfg); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Scheduler) registerEntries(cfg *config.Config) error {
	type entry struct {
		spec  string
		build func() (*asynq.Task, error)
		opts  []asynq.Option
	}

	entries := []entry{
		{cfg.Sync.OrderCron, func() (*asynq.Task, error) {
			return queue.NewOrderSyncRangeTask(queue.OrderSyncRangePayload{LookbackMinutes: cfg.Sync.LookbackMinutes})
		}, nil},
		{cfg.Sync.TbCron, func() (*asynq.Task, error) {
			return queue.NewTbOrderSyncTask(queue.TbOrderSyncPayload{LookbackMinutes: cfg.Sync.LookbackMinutes})
		}, nil},
		{cfg.Sync.TbRefundCron, func() (*asynq.Task, error) {
			return queue.NewTbRefundSyncTask(queue.TbRefundSyncPayload{})
		}, nil},
		{cfg.Sync.TbPunishCron, func() (*asynq.Task, error) {
			return queue.NewTbPunishSyncTask(queue.TbPunishSyncPayload{})
		}, nil},
		{cfg.Settlement.Cron, func() (*asynq.Task, error) {
			return queue.NewSettlementReconcileTask()
		}, []asynq.Option{asynq.Queue(queue.CriticalQueue)}},
	}
	if cfg.Goods.Enabled {
		entries = append(entries,
			entry{cfg.Sync.GoodsCron, func() (*asynq.Task, error) {
				return queue.NewGoodsSyncTask()
			}, nil},
			entry{cfg.Sync.GoodsStaleCron, func() (*asynq.Task, error) {
				return queue.NewGoodsStaleSyncTask()
			}, nil},
		)
	}

	for _, e := range entries {
		if e.spec == "" {
			continue
		}
		task, err := e.build()
		if err != nil {
			return err
		}
		entryID, err := s.scheduler.Register(e.spec, task, e.opts...)
		if err != nil {
			return err
		}
		logger.Infow("scheduler_entry_registered", "entry_id", entryID, "spec", e.spec, "task", task.Type())
	}
	return nil
}

// Name 服务名称
func (s *Scheduler) Name() string {
	if s == nil || s.name == "" {
		return "scheduler"
	}
	return s.name
}

// Start 启动定时任务
func (s *Scheduler) Start(ctx context.Context) error {
	if s == nil || s.scheduler == nil {
		return errors.New("scheduler not initialized")
	}
	_ = ctx
	return s.scheduler.Run()
}

// Stop 停止定时任务
func (s *Scheduler) Stop(ctx context.Context) error {
	if s == nil || s.scheduler == nil {
		return nil
	}
	_ = ctx
	s.scheduler.Shutdown()
	return nil
}
