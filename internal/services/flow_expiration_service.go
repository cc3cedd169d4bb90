package services

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// IdleCloser releases in-memory state nobody has used for maxIdle
type IdleCloser interface {
	CloseIdle(maxIdle time.Duration) int
}

// IdleClosers closes idle state in several owners at once
type IdleClosers []IdleCloser

// CloseIdle implements IdleCloser
func (cs IdleClosers) CloseIdle(maxIdle time.Duration) int {
	n := 0
	for _, c := range cs {
		n += c.CloseIdle(maxIdle)
	}
	return n
}

type sessionPurger interface {
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type rateLimitCleaner interface {
	CleanupExpired(ctx context.Context) (int64, error)
}

// FlowExpirationService closes payment flows nobody is watching and purges
// expired web sessions and rate limit records.
type FlowExpirationService struct {
	flows     IdleCloser
	sessions  sessionPurger
	rateLimit rateLimitCleaner
	logger    *logrus.Logger
	maxIdle   time.Duration
	interval  time.Duration
	stopCh    chan struct{}
	stopOnce  sync.Once
	done      chan struct{}
}

// NewFlowExpirationService creates the reaper. sessions and rateLimit may be
// nil when the server runs without a database.
func NewFlowExpirationService(
	flows IdleCloser,
	sessions sessionPurger,
	rateLimit rateLimitCleaner,
	logger *logrus.Logger,
	maxIdle, interval time.Duration,
) *FlowExpirationService {
	return &FlowExpirationService{
		flows:     flows,
		sessions:  sessions,
		rateLimit: rateLimit,
		logger:    logger,
		maxIdle:   maxIdle,
		interval:  interval,
		stopCh:    make(chan struct{}),
		done:      make(chan struct{}),
	}
}

// Start begins the background job
func (s *FlowExpirationService) Start() {
	s.logger.WithFields(logrus.Fields{
		"max_idle": s.maxIdle.String(),
		"interval": s.interval.String(),
	}).Info("Starting flow expiration service")
	go s.run()
}

// Stop stops the background job and waits for the current cycle to finish
func (s *FlowExpirationService) Stop() {
	s.stopOnce.Do(func() {
		s.logger.Info("Stopping flow expiration service")
		close(s.stopCh)
	})
	<-s.done
}

func (s *FlowExpirationService) run() {
	defer close(s.done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.RunOnce()
		case <-s.stopCh:
			return
		}
	}
}

// RunOnce runs a single cleanup cycle
func (s *FlowExpirationService) RunOnce() {
	if closed := s.flows.CloseIdle(s.maxIdle); closed > 0 {
		s.logger.WithField("count", closed).Info("Closed idle flows and sessions")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if s.sessions != nil {
		n, err := s.sessions.DeleteExpired(ctx, time.Now())
		if err != nil {
			s.logger.WithError(err).Error("Failed to purge expired web sessions")
		} else if n > 0 {
			s.logger.WithField("count", n).Info("Purged expired web sessions")
		}
	}

	if s.rateLimit != nil {
		n, err := s.rateLimit.CleanupExpired(ctx)
		if err != nil {
			s.logger.WithError(err).Error("Failed to cleanup rate limits")
		} else if n > 0 {
			s.logger.WithField("count", n).Debug("Cleaned up rate limit records")
		}
	}
}
