package cron

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"fleetbid/config"
	bookingRepo "fleetbid/database/repository/booking"
	"fleetbid/models"
	"fleetbid/services/auction"
	"fleetbid/services/escrow"
	"fleetbid/services/tasks"

	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
)

// InitDispatchWorker runs the async worker in background: the periodic
// sweep that expires overdue sessions and the job-completion intake that
// opens escrow holds once a job finishes.
func InitDispatchWorker(auctionSvc auction.AuctionService, escrowSvc escrow.EscrowService, bookings bookingRepo.BookingRequestRepository) {
	redisOpts := asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	}

	srv := asynq.NewServer(
		redisOpts,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeAuctionSweep, handleSweepTask(auctionSvc))
	mux.HandleFunc(tasks.TypeJobCompleted, handleJobCompletedTask(escrowSvc, bookings))

	// Start Redis health monitor
	go monitorRedisConnection()

	// Start async worker with retry logic
	go func() {
		log.Println("[DispatchWorker] 🚀 Starting async worker...")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			if err := srv.Run(mux); err != nil {
				log.Printf("[DispatchWorker] ❌ Attempt %d/%d failed to start worker: %v", attempts, maxAttempts, err)

				if attempts == maxAttempts {
					log.Fatal("[DispatchWorker] ❗ Max retry attempts reached. Exiting.")
				}
				time.Sleep(time.Duration(attempts*2) * time.Second) // Exponential backoff
			} else {
				break
			}
		}
	}()
}

// InitSweepScheduler enqueues the sweep task on a fixed interval so stale
// sessions expire even when nobody reads them.
func InitSweepScheduler() {
	redisOpts := asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	}

	scheduler := asynq.NewScheduler(redisOpts, &asynq.SchedulerOpts{})
	spec := fmt.Sprintf("@every %ds", config.AppConfig.SweepIntervalSeconds)
	if _, err := scheduler.Register(spec, tasks.NewSweepTask()); err != nil {
		log.Fatalf("[DispatchWorker] ❗ Failed to register sweep schedule: %v", err)
	}

	go func() {
		log.Printf("[DispatchWorker] ⏰ Sweep scheduled %s", spec)
		if err := scheduler.Run(); err != nil {
			log.Fatalf("[DispatchWorker] ❗ Sweep scheduler stopped: %v", err)
		}
	}()
}

func handleSweepTask(auctionSvc auction.AuctionService) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		expired, err := auctionSvc.ExpireDue(ctx, time.Now().UTC())
		if err != nil {
			log.Printf("[SweepHandler] ❌ Sweep failed: %v", err)
			return err
		}
		if expired > 0 {
			log.Printf("[SweepHandler] ⏰ Expired %d overdue sessions", expired)
		}
		return nil
	}
}

func handleJobCompletedTask(escrowSvc escrow.EscrowService, bookings bookingRepo.BookingRequestRepository) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p models.JobCompletedPayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			log.Printf("[JobCompletedHandler] 🔴 Invalid payload: %v", err)
			return err
		}

		booking, err := bookings.GetByID(ctx, p.BookingID)
		if err != nil {
			log.Printf("[JobCompletedHandler] ❌ Booking %s lookup failed: %v", p.BookingID, err)
			return err
		}
		if booking.AssignedProviderID == "" || booking.FinalPrice <= 0 {
			// Nothing to settle; drop the task rather than retry forever.
			log.Printf("[JobCompletedHandler] ⚠️ Booking %s has no assignment, skipping hold", p.BookingID)
			return nil
		}

		// Stamp the booking completed; a miss means another delivery of this
		// task already did, which is fine since CreateHold is idempotent.
		if _, err := bookings.Transition(ctx, booking.ID,
			[]string{models.BookingStatusAssigned, models.BookingStatusInProgress}, models.BookingStatusCompleted); err != nil {
			return err
		}

		_, err = escrowSvc.CreateHold(ctx, escrow.CreateHoldInput{
			BookingID: booking.ID,
			BuyerID:   booking.RequesterID,
			SellerID:  booking.AssignedProviderID,
			Amount:    booking.FinalPrice,
			FeeRate:   config.AppConfig.PlatformFeeRate,
			Currency:  booking.Currency,
		})
		if err != nil {
			log.Printf("[JobCompletedHandler] ❌ Failed to open hold for booking %s: %v", booking.ID, err)
		}
		return err
	}
}

// monitorRedisConnection pings Redis periodically to detect failures at runtime.
func monitorRedisConnection() {
	client := redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	})

	ctx := context.Background()

	for {
		if err := client.Ping(ctx).Err(); err != nil {
			log.Printf("[DispatchWorker] ⚠️ Redis connection lost: %v", err)
		}
		time.Sleep(10 * time.Second)
	}
}
