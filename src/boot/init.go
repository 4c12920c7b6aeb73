package boot

import (
	"log"
	"time"

	"github.com/AfricaChange/AfricaChange/src/db"
	"github.com/AfricaChange/AfricaChange/src/lib"
	"github.com/AfricaChange/AfricaChange/src/models"
	"github.com/AfricaChange/AfricaChange/src/services"
	"gorm.io/gorm"
)

func InitDb() *gorm.DB {
	db := db.GetDb()

	err := db.AutoMigrate(
		&models.User{},
		&models.Rate{},
		&models.SystemAccount{},
		&models.Conversion{},
		&models.Transaction{},
		&models.Payment{},
		&models.PaymentEvent{},
		&models.LedgerEntry{},
		&models.RiskEvent{},
		&models.AdminAction{},
		&models.AuditLog{},
		&models.Refund{},
	)
	if err != nil {
		log.Fatalf("error migration: %s", err.Error())
	}

	return db
}

func InitScheduler() {
	sched, err := lib.GetScheduler()
	if err != nil {
		log.Fatalf("error initializing scheduler: %s", err.Error())
	}
	jid, err := lib.CreateCronJob(func() {
		services.ExpireStalePayments(db.GetDb())
	}, time.Minute)
	if err != nil {
		log.Printf("Error scheduling reaper job: %s\n", err.Error())
	} else {
		log.Printf("Scheduled reaper job: %s\n", *jid)
	}
	sched.Start()
}
