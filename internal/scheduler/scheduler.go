// Package scheduler runs the year-end dividend calculation on a cron
// schedule so organizations do not need to trigger it by hand.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/rentpool/Deposit-Pool-Backend/internal/repository"
	"github.com/rentpool/Deposit-Pool-Backend/internal/service"
)

// Scheduler manages the year-end calculation cron task.
type Scheduler struct {
	cron            *cron.Cron
	orgRepo         *repository.OrganizationRepository
	dividendService *service.DividendService
	ctx             context.Context
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, orgRepo *repository.OrganizationRepository, dividendService *service.DividendService) *Scheduler {
	return &Scheduler{
		cron:            cron.New(),
		orgRepo:         orgRepo,
		dividendService: dividendService,
		ctx:             ctx,
	}
}

// Register registers the year-end task on the given cron expression. The
// schedule is expected to fire early in the new year so the task calculates
// dividends for the year that just closed.
func (s *Scheduler) Register(spec string) error {
	if _, err := s.cron.AddFunc(spec, s.yearEndTask); err != nil {
		return fmt.Errorf("register year-end task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler gracefully.
func (s *Scheduler) Stop() {
	s.cron.Stop()
	log.Println("[INFO] scheduler stopped")
}

// RunYearEndNow executes the year-end task immediately (for manual trigger).
func (s *Scheduler) RunYearEndNow() {
	s.yearEndTask()
}

func (s *Scheduler) yearEndTask() {
	year := time.Now().UTC().Year() - 1
	log.Printf("[INFO] running year-end dividend calculation for %d", year)

	orgIDs, err := s.orgRepo.ListIDs()
	if err != nil {
		log.Printf("[ERROR] list organizations: %v", err)
		return
	}

	for _, orgID := range orgIDs {
		dividends, err := s.dividendService.CalculateDividends(s.ctx, orgID, year, "scheduler")
		if err != nil {
			// A closed pool or transient failure for one organization
			// must not stop the rest of the batch.
			log.Printf("[ERROR] calculate dividends for organization %s year %d: %v", orgID, year, err)
			continue
		}
		log.Printf("[INFO] calculated %d dividends for organization %s year %d", len(dividends), orgID, year)
	}
}
