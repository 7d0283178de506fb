// Package scheduler runs the periodic autosave job. Every mutation
// already persists the snapshot; the autosave writes an additional
// timestamped backup copy so a corrupted data file never costs more
// than one interval of history.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/openshelf/openshelf/internal/audit"
	"github.com/openshelf/openshelf/internal/library"
	"github.com/openshelf/openshelf/internal/settingsstore"
)

// AutosaveScheduler manages periodic backup dumps of the aggregate.
type AutosaveScheduler struct {
	service       *library.Service
	settingsStore *settingsstore.SettingsStore
	auditor       *audit.Auditor

	cron       *cron.Cron
	entryID    cron.EntryID
	mu         sync.RWMutex
	isRunning  bool
	isSaving   bool
	cancelFunc context.CancelFunc
}

// NewAutosaveScheduler creates a new scheduler instance
func NewAutosaveScheduler(service *library.Service, settingsStore *settingsstore.SettingsStore, auditor *audit.Auditor) *AutosaveScheduler {
	return &AutosaveScheduler{
		service:       service,
		settingsStore: settingsStore,
		auditor:       auditor,
		cron: cron.New(cron.WithParser(cron.NewParser(
			cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor))),
	}
}

// Start begins the scheduler if autosave is enabled
func (s *AutosaveScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	if !s.settingsStore.GetAutosaveEnabled() {
		log.Printf("Autosave scheduler: disabled")
		return nil
	}

	schedule := s.settingsStore.GetAutosaveSchedule()

	// Drop the previous entry so a restart after Reschedule does not
	// leave two jobs firing.
	if s.entryID != 0 {
		s.cron.Remove(s.entryID)
	}

	entryID, err := s.cron.AddFunc(schedule, func() {
		s.runSave()
	})
	if err != nil {
		return fmt.Errorf("invalid autosave schedule %q: %w", schedule, err)
	}
	s.entryID = entryID

	var cancelCtx context.Context
	cancelCtx, s.cancelFunc = context.WithCancel(ctx)

	s.cron.Start()
	s.isRunning = true

	log.Printf("Autosave scheduler: started with schedule %q", schedule)

	go func() {
		<-cancelCtx.Done()
		s.Stop()
	}()

	return nil
}

// Stop gracefully stops the scheduler
func (s *AutosaveScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	// Stop accepting new jobs and wait for running jobs to complete
	ctx := s.cron.Stop()
	<-ctx.Done()

	s.isRunning = false
	s.cancelFunc = nil

	log.Printf("Autosave scheduler: stopped")
}

// Reschedule updates the schedule (call after settings change)
func (s *AutosaveScheduler) Reschedule() error {
	s.mu.Lock()
	wasRunning := s.isRunning
	s.mu.Unlock()

	if wasRunning {
		s.Stop()
	}

	return s.Start(context.Background())
}

// RunNow triggers an immediate backup dump
func (s *AutosaveScheduler) RunNow() error {
	go s.runSave()
	return nil
}

// IsRunning returns whether the scheduler is active
func (s *AutosaveScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// GetNextRunTime returns when the next autosave will occur
func (s *AutosaveScheduler) GetNextRunTime() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return nil
	}

	for _, entry := range s.cron.Entries() {
		if entry.ID == s.entryID {
			t := entry.Next
			return &t
		}
	}
	return nil
}

// runSave performs the actual backup dump
func (s *AutosaveScheduler) runSave() {
	s.mu.Lock()
	if s.isSaving {
		s.mu.Unlock()
		log.Printf("Autosave: skipped (already saving)")
		return
	}
	s.isSaving = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.isSaving = false
		s.mu.Unlock()
	}()

	if !s.settingsStore.GetAutosaveEnabled() {
		log.Printf("Autosave: skipped (disabled)")
		return
	}

	startTime := time.Now()
	filename, err := s.auditor.SaveSnapshot(s.service.Snapshot())
	if err != nil {
		log.Printf("Autosave: failed to write backup: %v", err)
		return
	}

	if err := s.settingsStore.SetAutosaveLastAt(startTime); err != nil {
		log.Printf("Autosave: failed to record last-run time: %v", err)
	}

	log.Printf("Autosave: wrote backup %s in %v", filename, time.Since(startTime).Round(time.Millisecond))
}
