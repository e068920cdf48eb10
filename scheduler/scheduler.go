// Package scheduler keeps one in-memory daily job per subscribed chat.
package scheduler

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Job is run for a chat each time its daily schedule fires
type Job func(ctx context.Context, chatID int64)

// Scheduler registers daily jobs per chat on top of a cron runner
type Scheduler struct {
	cron    *cron.Cron
	spec    string
	job     Job
	logger  *zap.SugaredLogger
	ctx     context.Context
	cancel  context.CancelFunc
	mutex   sync.Mutex
	entries map[int64]cron.EntryID
}

// New creates a scheduler firing job every day at hour:minute in loc
func New(hour, minute int, loc *time.Location, job Job, logger *zap.SugaredLogger) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron:    cron.New(cron.WithLocation(loc)),
		spec:    fmt.Sprintf("%d %d * * *", minute, hour),
		job:     job,
		logger:  logger,
		ctx:     ctx,
		cancel:  cancel,
		entries: make(map[int64]cron.EntryID),
	}
}

// Start runs the cron loop in its own goroutine
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts the cron loop, cancels running jobs and waits for them to return
func (s *Scheduler) Stop() {
	s.cancel()
	<-s.cron.Stop().Done()
}

// Subscribe registers the daily job for a chat. Subscribing again replaces
// the existing job so a chat never receives duplicate pushes.
func (s *Scheduler) Subscribe(chatID int64) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if id, ok := s.entries[chatID]; ok {
		s.cron.Remove(id)
	}

	id, err := s.cron.AddFunc(s.spec, func() {
		s.logger.Infow("running daily forecast job", "chat_id", chatID)
		s.job(s.ctx, chatID)
	})
	if err != nil {
		delete(s.entries, chatID)
		return fmt.Errorf("failed to schedule daily job: %w", err)
	}
	s.entries[chatID] = id

	s.logger.Infow("scheduled daily forecast", "chat_id", chatID, "spec", s.spec)
	return nil
}

// Unsubscribe removes the chat's daily job and reports whether one existed
func (s *Scheduler) Unsubscribe(chatID int64) bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	id, ok := s.entries[chatID]
	if !ok {
		return false
	}
	s.cron.Remove(id)
	delete(s.entries, chatID)

	s.logger.Infow("removed daily forecast", "chat_id", chatID)
	return true
}

// Subscriptions returns the subscribed chat ids in ascending order
func (s *Scheduler) Subscriptions() []int64 {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	ids := make([]int64, 0, len(s.entries))
	for id := range s.entries {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// NextRun returns when the chat's job fires next, if it is subscribed and the
// scheduler is running.
func (s *Scheduler) NextRun(chatID int64) (time.Time, bool) {
	s.mutex.Lock()
	id, ok := s.entries[chatID]
	s.mutex.Unlock()
	if !ok {
		return time.Time{}, false
	}

	next := s.cron.Entry(id).Next
	return next, !next.IsZero()
}
