package main

import (
	"fmt"
	logger "log"
	"os"
	"strconv"

	"github.com/ardanlabs/conf"
	"github.com/fincast/fincast/app/ledger-loader/ledgermanager"
	"github.com/fincast/fincast/foundation/database"
	"github.com/joho/godotenv"
)

var build = "develop"

func main() {
	log := logger.New(os.Stdout, "LEDGER_LOADER : ", logger.LstdFlags|logger.Lmicroseconds|logger.Lshortfile)
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
		Feed struct {
			Url           string `conf:"default:http://localhost:4000/exports/statements.zip"`
			AuthToken     string `conf:"noprint"`
			TempDir       string `conf:"default:statement_tmp"`
			ForceDownload bool   `conf:"default:false"`
		}
	}
	cfg.Version.SVN = build
	cfg.Version.Desc = "Maintain statement imports in the finance database"
	if err := conf.Parse(os.Args[1:], "LEDGER_LOADER", &cfg); err != nil {
		switch err {
		case conf.ErrHelpWanted:
			usage, err := conf.Usage("LEDGER_LOADER", &cfg)
			if err != nil {
				return fmt.Errorf("generating config usage: %w", err)
			}
			fmt.Println(usage)
			return nil
		case conf.ErrVersionWanted:
			version, err := conf.VersionString("LEDGER_LOADER", &cfg)
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

	switch cfg.Args.Num(0) {
	case "load":
		err = ledgermanager.UpdateLedgerFromFeed(log, db, cfg.Feed.TempDir, cfg.Feed.Url,
			cfg.Feed.AuthToken, cfg.Feed.ForceDownload)
		if err != nil {
			return err
		}
		return ledgermanager.ListImportBatches(db)
	case "loadfile":
		bundlePath := cfg.Args.Num(1)
		if len(bundlePath) < 1 {
			return fmt.Errorf("expected path to statement bundle with command loadfile")
		}
		err = ledgermanager.ImportStatementBundle(log, db, bundlePath)
		if err != nil {
			return err
		}
		return ledgermanager.ListImportBatches(db)
	case "delete":
		batchIdString := cfg.Args.Num(1)
		if len(batchIdString) < 1 {
			return fmt.Errorf("expected import batch id with command delete")
		}
		batchId, err := strconv.ParseInt(batchIdString, 10, 64)
		if err != nil {
			return fmt.Errorf("unable to parse import batch Id %s, error: %w", batchIdString, err)
		}
		return ledgermanager.DeleteImportBatchById(log, db, batchId)

	case "list":
		return ledgermanager.ListImportBatches(db)

	default:
		fmt.Println("load: download and import (if needed) the latest statement export bundle")
		fmt.Println("loadfile: import a statement export bundle from a local file")
		fmt.Println("delete: remove an import batch and its transactions from the database")
		fmt.Println("list: list all import batches in the database")
		usage, err := conf.Usage("LEDGER_LOADER", &cfg)
		if err != nil {
			return fmt.Errorf("generating config usage: %w", err)
		}
		fmt.Println(usage)

	}
	return nil
}
