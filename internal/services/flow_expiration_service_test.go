package services

import (
	"context"
	"errors"
	"io"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
)

type fakeReaper struct {
	calls   atomic.Int32
	maxIdle atomic.Int64
}

func (f *fakeReaper) CloseIdle(maxIdle time.Duration) int {
	f.calls.Add(1)
	f.maxIdle.Store(int64(maxIdle))
	return 2
}

type fakePurger struct {
	n   int64
	err error
}

func (f fakePurger) DeleteExpired(context.Context, time.Time) (int64, error) { return f.n, f.err }

type fakeCleaner struct{ calls atomic.Int32 }

func (f *fakeCleaner) CleanupExpired(context.Context) (int64, error) {
	f.calls.Add(1)
	return 0, nil
}

func quietLogger() (*logrus.Logger, *test.Hook) {
	logger, hook := test.NewNullLogger()
	logger.SetOutput(io.Discard)
	return logger, hook
}

func TestFlowExpirationService_RunOnce(t *testing.T) {
	reaper, cleaner := &fakeReaper{}, &fakeCleaner{}
	logger, hook := quietLogger()

	svc := NewFlowExpirationService(reaper, fakePurger{n: 4}, cleaner, logger, 15*time.Minute, time.Minute)
	svc.RunOnce()

	assert.Equal(t, int32(1), reaper.calls.Load())
	assert.Equal(t, int64(15*time.Minute), reaper.maxIdle.Load())
	assert.Equal(t, int32(1), cleaner.calls.Load())

	var messages []string
	for _, e := range hook.AllEntries() {
		messages = append(messages, e.Message)
	}
	assert.Contains(t, messages, "Closed idle flows and sessions")
	assert.Contains(t, messages, "Purged expired web sessions")
}

func TestFlowExpirationService_PurgeErrorIsLogged(t *testing.T) {
	logger, hook := quietLogger()

	svc := NewFlowExpirationService(&fakeReaper{}, fakePurger{err: errors.New("db down")}, nil, logger, time.Minute, time.Minute)
	svc.RunOnce()

	last := hook.LastEntry()
	if assert.NotNil(t, last) {
		assert.Equal(t, logrus.ErrorLevel, last.Level)
		assert.Equal(t, "Failed to purge expired web sessions", last.Message)
	}
}

func TestFlowExpirationService_StartStop(t *testing.T) {
	reaper := &fakeReaper{}
	logger, _ := quietLogger()

	svc := NewFlowExpirationService(reaper, nil, nil, logger, time.Minute, 5*time.Millisecond)
	svc.Start()

	assert.Eventually(t, func() bool { return reaper.calls.Load() >= 2 }, time.Second, 5*time.Millisecond)

	svc.Stop()
	svc.Stop()
	after := reaper.calls.Load()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, after, reaper.calls.Load(), "no cycles after stop")
}

func TestIdleClosers_Sum(t *testing.T) {
	a, b := &fakeReaper{}, &fakeReaper{}

	n := IdleClosers{a, b}.CloseIdle(time.Minute)

	assert.Equal(t, 4, n)
	assert.Equal(t, int32(1), a.calls.Load())
	assert.Equal(t, int64(time.Minute), b.maxIdle.Load())
}
