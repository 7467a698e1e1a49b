package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Scheduler 定时任务调度器
type Scheduler struct {
	cron     *cron.Cron
	registry *Registry
	logger   *zap.SugaredLogger
	now      func() time.Time

	mu        sync.Mutex
	tasks     map[string]Task
	schedules map[string]cron.Schedule

	catchUp sync.WaitGroup // 启动时补跑的任务，不受 cron 跟踪
}

// NewScheduler 创建调度器，任务状态保存在 runDir/tasks.json
func NewScheduler(runDir string, logger *zap.SugaredLogger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Scheduler{
		cron:      cron.New(),
		registry:  NewRegistry(runDir),
		logger:    logger,
		now:       time.Now,
		tasks:     make(map[string]Task),
		schedules: make(map[string]cron.Schedule),
	}
}

// Registry 返回任务注册表
func (s *Scheduler) Registry() *Registry {
	return s.registry
}

// Load 加载上次保存的任务状态
func (s *Scheduler) Load() error {
	return s.registry.Load()
}

// RegisterTask 按 cron 表达式注册任务
func (s *Scheduler) RegisterTask(spec string, task Task) error {
	schedule, err := cron.ParseStandard(spec)
	if err != nil {
		return fmt.Errorf("parse schedule %q for %s: %w", spec, task.ID(), err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.tasks[task.ID()]; exists {
		return fmt.Errorf("task already exists: %s", task.ID())
	}

	s.cron.Schedule(schedule, cron.FuncJob(func() {
		s.RunTask(context.Background(), task)
	}))
	s.tasks[task.ID()] = task
	s.schedules[task.ID()] = schedule

	config := s.registry.GetTask(task.ID())
	if config == nil {
		config = &TaskConfig{ID: task.ID()}
	}
	config.Name = task.Name()
	config.Spec = spec
	config.Enabled = true
	config.NextRun = schedule.Next(s.now())
	s.registry.PutTask(*config)

	s.logger.Infow("task registered", "task", task.ID(), "spec", spec, "next_run", config.NextRun)
	return s.registry.Save()
}

// Start 启动调度器，错过上次计划时间的任务立即补跑一次
func (s *Scheduler) Start() {
	s.mu.Lock()
	var missed []Task
	now := s.now()
	for id, task := range s.tasks {
		config := s.registry.GetTask(id)
		if config != nil && missedRun(config, s.schedules[id], now) {
			missed = append(missed, task)
		}
	}
	s.mu.Unlock()

	for _, task := range missed {
		s.logger.Infow("missed scheduled run, running now", "task", task.ID())
		s.catchUp.Add(1)
		go func(task Task) {
			defer s.catchUp.Done()
			s.RunTask(context.Background(), task)
		}(task)
	}

	s.cron.Start()
	s.logger.Info("Scheduler started")
}

// Stop 停止调度器，返回的 context 在运行中的定时任务和补跑任务都结束后关闭
func (s *Scheduler) Stop() context.Context {
	s.logger.Info("Scheduler stopping")
	cronDone := s.cron.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-cronDone.Done()
		s.catchUp.Wait()
		cancel()
	}()
	return ctx
}

// RunTask 执行任务并记录运行状态
func (s *Scheduler) RunTask(ctx context.Context, task Task) error {
	s.logger.Infow("running task", "task", task.ID(), "name", task.Name())

	err := task.Execute(ctx)
	now := s.now()

	config := s.registry.GetTask(task.ID())
	if config == nil {
		config = &TaskConfig{ID: task.ID(), Name: task.Name(), Enabled: true}
	}
	config.LastRun = now
	if err != nil {
		config.LastError = err.Error()
		s.logger.Errorw("task failed", "task", task.ID(), "error", err)
	} else {
		config.LastSuccess = now
		config.LastError = ""
		s.logger.Infow("task succeeded", "task", task.ID())
	}

	s.mu.Lock()
	if schedule, ok := s.schedules[task.ID()]; ok {
		config.NextRun = schedule.Next(now)
	}
	s.mu.Unlock()

	s.registry.PutTask(*config)
	if saveErr := s.registry.Save(); saveErr != nil {
		s.logger.Errorw("failed to save task registry", "error", saveErr)
	}
	return err
}

// missedRun 上次运行之后本应至少再触发一次
func missedRun(config *TaskConfig, schedule cron.Schedule, now time.Time) bool {
	if config.LastRun.IsZero() || schedule == nil {
		return false
	}
	return !schedule.Next(config.LastRun).After(now)
}
