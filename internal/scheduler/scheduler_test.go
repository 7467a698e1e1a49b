package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTask struct {
	id    string
	err   error
	calls int
	delay time.Duration
}

func (f *fakeTask) ID() string   { return f.id }
func (f *fakeTask) Name() string { return "fake " + f.id }
func (f *fakeTask) Execute(ctx context.Context) error {
	time.Sleep(f.delay)
	f.calls++
	return f.err
}

func fixedNow(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestRegisterTaskPersistsConfig(t *testing.T) {
	runDir := t.TempDir()
	s := NewScheduler(runDir, nil)
	s.now = fixedNow(time.Date(2024, 5, 20, 12, 0, 0, 0, time.Local))

	require.NoError(t, s.RegisterTask("5 0 * * *", &fakeTask{id: "daily"}))

	reg := NewRegistry(runDir)
	require.NoError(t, reg.Load())
	config := reg.GetTask("daily")
	require.NotNil(t, config)
	assert.Equal(t, "fake daily", config.Name)
	assert.Equal(t, "5 0 * * *", config.Spec)
	assert.True(t, config.Enabled)
	assert.True(t, time.Date(2024, 5, 21, 0, 5, 0, 0, time.Local).Equal(config.NextRun), "next run: %s", config.NextRun)
}

func TestRegisterTaskRejectsInvalidSpec(t *testing.T) {
	s := NewScheduler(t.TempDir(), nil)
	err := s.RegisterTask("not a cron", &fakeTask{id: "bad"})
	require.Error(t, err)
	assert.Empty(t, s.Registry().GetAllTasks())
}

func TestRegisterTaskRejectsDuplicate(t *testing.T) {
	s := NewScheduler(t.TempDir(), nil)
	require.NoError(t, s.RegisterTask("@daily", &fakeTask{id: "dup"}))
	assert.Error(t, s.RegisterTask("@daily", &fakeTask{id: "dup"}))
}

func TestRunTaskRecordsSuccessAndFailure(t *testing.T) {
	runDir := t.TempDir()
	s := NewScheduler(runDir, nil)
	first := time.Date(2024, 5, 20, 0, 5, 0, 0, time.Local)
	s.now = fixedNow(first)

	task := &fakeTask{id: "job"}
	require.NoError(t, s.RegisterTask("5 0 * * *", task))
	require.NoError(t, s.RunTask(context.Background(), task))

	config := s.Registry().GetTask("job")
	require.NotNil(t, config)
	assert.Equal(t, first, config.LastRun)
	assert.Equal(t, first, config.LastSuccess)
	assert.Empty(t, config.LastError)

	second := first.Add(24 * time.Hour)
	s.now = fixedNow(second)
	task.err = errors.New("backend down")
	err := s.RunTask(context.Background(), task)
	require.Error(t, err)

	config = s.Registry().GetTask("job")
	assert.Equal(t, second, config.LastRun)
	assert.Equal(t, first, config.LastSuccess)
	assert.Equal(t, "backend down", config.LastError)
	assert.Equal(t, 2, task.calls)

	reloaded := NewRegistry(runDir)
	require.NoError(t, reloaded.Load())
	assert.Equal(t, "backend down", reloaded.GetTask("job").LastError)
}

func TestRegisterTaskKeepsPreviousRunState(t *testing.T) {
	runDir := t.TempDir()
	last := time.Date(2024, 5, 19, 0, 5, 0, 0, time.UTC)

	reg := NewRegistry(runDir)
	reg.PutTask(TaskConfig{ID: "job", LastRun: last, LastSuccess: last})
	require.NoError(t, reg.Save())

	s := NewScheduler(runDir, nil)
	require.NoError(t, s.Load())
	require.NoError(t, s.RegisterTask("5 0 * * *", &fakeTask{id: "job"}))

	config := s.Registry().GetTask("job")
	require.NotNil(t, config)
	assert.True(t, last.Equal(config.LastRun))
	assert.True(t, last.Equal(config.LastSuccess))
}

func TestMissedRun(t *testing.T) {
	schedule, err := cron.ParseStandard("5 0 * * *")
	require.NoError(t, err)

	lastRun := time.Date(2024, 5, 20, 0, 5, 0, 0, time.Local)

	tests := []struct {
		name   string
		config TaskConfig
		now    time.Time
		want   bool
	}{
		{"never ran", TaskConfig{}, lastRun.Add(72 * time.Hour), false},
		{"same day", TaskConfig{LastRun: lastRun}, lastRun.Add(12 * time.Hour), false},
		{"next run due", TaskConfig{LastRun: lastRun}, lastRun.Add(24 * time.Hour), true},
		{"several days late", TaskConfig{LastRun: lastRun}, lastRun.Add(72 * time.Hour), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := tt.config
			assert.Equal(t, tt.want, missedRun(&config, schedule, tt.now))
		})
	}
}

func TestRegistryLoadMissingFile(t *testing.T) {
	reg := NewRegistry(t.TempDir())
	require.NoError(t, reg.Load())
	assert.Empty(t, reg.GetAllTasks())
	assert.Nil(t, reg.GetTask("missing"))
}

func TestRegistryGetTaskReturnsCopy(t *testing.T) {
	reg := NewRegistry(t.TempDir())
	reg.PutTask(TaskConfig{ID: "a", Name: "A"})

	config := reg.GetTask("a")
	config.Name = "changed"
	assert.Equal(t, "A", reg.GetTask("a").Name)
}

func TestStartStop(t *testing.T) {
	s := NewScheduler(t.TempDir(), nil)
	require.NoError(t, s.RegisterTask("@hourly", &fakeTask{id: "idle"}))
	s.Start()

	select {
	case <-s.Stop().Done():
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop")
	}
}

// TestStopWaitsForCatchUpRun 停止时等待启动补跑的任务完成并记录状态
func TestStopWaitsForCatchUpRun(t *testing.T) {
	runDir := t.TempDir()
	now := time.Now()

	reg := NewRegistry(runDir)
	reg.PutTask(TaskConfig{ID: "slow", LastRun: now.Add(-48 * time.Hour)})
	require.NoError(t, reg.Save())

	s := NewScheduler(runDir, nil)
	require.NoError(t, s.Load())

	task := &fakeTask{id: "slow", delay: 300 * time.Millisecond}
	require.NoError(t, s.RegisterTask("5 0 * * *", task))

	s.Start()
	time.Sleep(20 * time.Millisecond)

	select {
	case <-s.Stop().Done():
	case <-time.After(5 * time.Second):
		t.Fatal("scheduler did not stop")
	}

	assert.Equal(t, 1, task.calls)
	config := s.Registry().GetTask("slow")
	require.NotNil(t, config)
	assert.True(t, config.LastRun.After(now.Add(-time.Hour)))
	assert.False(t, config.LastSuccess.IsZero())
}
