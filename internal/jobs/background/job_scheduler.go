package background

import (
	"context"
	"log"
	"time"

	"stockyard/internal/repositories"

	"github.com/go-co-op/gocron/v2"
)

// JobScheduler runs the engine's periodic maintenance jobs.
type JobScheduler struct {
	scheduler gocron.Scheduler
	stockRepo repositories.StockUnitRepository
}

func NewJobScheduler(stockRepo repositories.StockUnitRepository) *JobScheduler {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		log.Fatalf("Failed to create scheduler: %v", err)
	}

	js := &JobScheduler{
		scheduler: scheduler,
		stockRepo: stockRepo,
	}
	js.registerJobs()
	return js
}

// Start starts the job scheduler.
func (js *JobScheduler) Start() error {
	log.Printf("Starting background job scheduler")
	js.scheduler.Start()
	return nil
}

// Stop stops the job scheduler.
func (js *JobScheduler) Stop() error {
	log.Printf("Stopping background job scheduler")
	return js.scheduler.Shutdown()
}

func (js *JobScheduler) registerJobs() {
	// Expiry sweep - hourly. Units past their expiry date flip to the expired
	// condition and drop out of allocation.
	_, err := js.scheduler.NewJob(
		gocron.DurationJob(1*time.Hour),
		gocron.NewTask(js.sweepExpiredUnits, context.Background()),
		gocron.WithName("expiry-sweep"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		log.Printf("Failed to create expiry sweep job: %v", err)
	}
}

func (js *JobScheduler) sweepExpiredUnits(ctx context.Context) {
	count, err := js.stockRepo.MarkExpired(ctx, time.Now())
	if err != nil {
		log.Printf("Expiry sweep failed: %v", err)
		return
	}
	if count > 0 {
		log.Printf("Expiry sweep marked %d stock units expired", count)
	}
}
