package boot

import (
	"log"
	"time"

	"rbs/src/common"
	"rbs/src/db"
	"rbs/src/lib"
	"rbs/src/models"

	"github.com/go-co-op/gocron/v2"
	"gorm.io/gorm"
)

func InitDb() *gorm.DB {
	db := db.GetDb()

	err := db.AutoMigrate(
		&models.User{},
		&models.Restaurant{},
		&models.MenuItem{},
		&models.Slot{},
		&models.Booking{},
		&models.Review{},
	)
	if err != nil {
		log.Fatalf("error migration: %s", err.Error())
	}

	return db
}

// InitScheduler starts the nightly sweep that drops unbooked slots for
// dates already in the past. Booked slots are kept for booking history.
func InitScheduler() {
	sched, err := lib.GetScheduler()
	if err != nil {
		log.Println("An error has occurred. Check logs for info")
		return
	}
	j, err := sched.NewJob(
		gocron.DailyJob(1, gocron.NewAtTimes(gocron.NewAtTime(3, 0, 0))),
		gocron.NewTask(func() {
			gdb := db.GetDb()
			cutoff := time.Now().Truncate(24 * time.Hour)
			err := gdb.Transaction(func(tx *gorm.DB) error {
				purged, err := common.PurgeStaleSlots(tx, cutoff)
				if err != nil {
					return err
				}
				log.Printf("Purged %d stale slots\n", purged)
				return nil
			})
			if err != nil {
				log.Printf("Error purging stale slots: %s\n", err.Error())
			}
		}),
	)
	if err != nil {
		log.Printf("Error running job: %s\n", err.Error())
		return
	}
	log.Printf("Job ID: %s %s\n", j.Name(), j.ID().String())
	sched.Start()
}

func StopScheduler() {
	sched, err := lib.GetScheduler()
	if err != nil {
		log.Println("Error retrieving Scheduler. Check logs for info")
		return
	}
	err = sched.Shutdown()
	if err != nil {
		log.Println("An error has occurred while shutting stopping Scheduler. Check logs for info")
		return
	}
}
