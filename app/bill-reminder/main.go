package main

import (
	"fmt"
	logger "log"
	"os"
	"os/signal"
	"syscall"

	"github.com/ardanlabs/conf"
	"github.com/fincast/fincast/app/bill-reminder/reminder"
	"github.com/fincast/fincast/foundation/database"
	"github.com/joho/godotenv"
	"github.com/nats-io/nats.go"
)

var build = "develop"

func main() {
	log := logger.New(os.Stdout, "BILL_REMINDER : ", logger.LstdFlags|logger.Lmicroseconds|logger.Lshortfile)
	if err := run(log); err != nil {
		log.Printf("main: error: %v", err)
		os.Exit(1)
	}
}

func run(log *logger.Logger) error {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}
	var cfg struct {
		conf.Version
		Args conf.Args
		DB   struct {
			User       string `conf:"default:postgres"`
			Password   string `conf:"default:postgres,noprint"`
			Host       string `conf:"default:0.0.0.0"`
			Port       int    `conf:"default:5432"`
			Name       string `conf:"default:postgres"`
			DisableTLS bool   `conf:"default:true"`
		}
		NATS struct {
			Url string `conf:"default:nats://localhost:4222"`
		}
		Reminder struct {
			ScanEverySeconds           int      `conf:"default:3600"`
			ReminderHorizonDays        int      `conf:"default:30"`
			WarnUtilizationPercent     float64  `conf:"default:30"`
			CriticalUtilizationPercent float64  `conf:"default:80"`
			PaymentTolerancePercent    float64  `conf:"default:10"`
			PaymentWindowDays          int      `conf:"default:5"`
			TransactionSubject         string   `conf:"default:ledger-transactions"`
			ReminderSubject            string   `conf:"default:bill-reminders"`
			AlertSubject               string   `conf:"default:credit-alerts"`
			ExtraHolidays              []string
		}
	}
	cfg.Version.SVN = build
	cfg.Version.Desc = "Open alerts and publish notices for upcoming bills and credit utilization"
	const prefix = "BILL_REMINDER"
	if err := conf.Parse(os.Args[1:], prefix, &cfg); err != nil {
		switch err {
		case conf.ErrHelpWanted:
			usage, err := conf.Usage(prefix, &cfg)
			if err != nil {
				return fmt.Errorf("generating config usage: %w", err)
			}
			fmt.Println(usage)
			return nil
		case conf.ErrVersionWanted:
			version, err := conf.VersionString(prefix, &cfg)
			if err != nil {
				return fmt.Errorf("generating config version: %w", err)
			}
			fmt.Println(version)
			return nil
		}
		return fmt.Errorf("parsing config: %w", err)
	}

	// =========================================================================
	// App Starting

	// Print the build version for our logs.
	log.Printf("main : Started : Application initializing : version %s", build)
	defer log.Println("main: Completed")

	out, err := conf.String(&cfg)
	if err != nil {
		return fmt.Errorf("generating config for output: %w", err)
	}
	log.Printf("main: Config :\n%v\n", out)

	// =========================================================================
	// Start Database

	log.Println("main: Initializing database support")

	db, err := database.Open(database.Config{
		User:       cfg.DB.User,
		Password:   cfg.DB.Password,
		Host:       cfg.DB.Host,
		Port:       cfg.DB.Port,
		Name:       cfg.DB.Name,
		DisableTLS: cfg.DB.DisableTLS,
	})
	if err != nil {
		return fmt.Errorf("connecting to db: %w", err)
	}
	defer func() {
		log.Printf("main: Database Stopping : %s", cfg.DB.Host)
		err = db.Close()
		if err != nil {
			log.Printf("main: error closing database: %v", err)
		}
	}()

	// =========================================================================
	// Start NATS

	log.Println("main: Initializing NATS support")

	natsConn, err := nats.Connect(cfg.NATS.Url)
	if err != nil {
		return fmt.Errorf("connecting to nats: %w", err)
	}
	defer func() {
		log.Printf("main: NATS Stopping : %s", cfg.NATS.Url)
		natsConn.Close()
	}()

	// Make a channel to listen for an interrupt or terminate signal from the OS.
	// Use a buffered channel because the signal package requires it.
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	return reminder.StartReminderService(log, db, shutdown, natsConn, reminder.Conf{
		ScanEverySeconds:           cfg.Reminder.ScanEverySeconds,
		ReminderHorizonDays:        cfg.Reminder.ReminderHorizonDays,
		WarnUtilizationPercent:     cfg.Reminder.WarnUtilizationPercent,
		CriticalUtilizationPercent: cfg.Reminder.CriticalUtilizationPercent,
		PaymentTolerancePercent:    cfg.Reminder.PaymentTolerancePercent,
		PaymentWindowDays:          cfg.Reminder.PaymentWindowDays,
		TransactionSubject:         cfg.Reminder.TransactionSubject,
		ReminderSubject:            cfg.Reminder.ReminderSubject,
		AlertSubject:               cfg.Reminder.AlertSubject,
		ExtraHolidays:              cfg.Reminder.ExtraHolidays,
	})

}
