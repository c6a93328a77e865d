// Package ledgermanager provides support for retrieving, reading, parsing, deleting and saving
// statement exports to a finance database
package ledgermanager

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/fincast/fincast/business/data/ledger"
	"github.com/fincast/fincast/foundation/httpclient"
	"github.com/jmoiron/sqlx"
)

// DeleteImportBatchById deletes the ledger.ImportBatch with batchId and all transaction records
// loaded under it
func DeleteImportBatchById(log *log.Logger,
	db *sqlx.DB,
	batchId int64) error {

	batch, err := ledger.GetImportBatch(db, batchId)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("no ImportBatch found with id %d", batchId)
		}
		return err
	}
	err = transact(log, db, func(tx *sqlx.Tx) error {
		log.Printf("Removing batch %v", batch)
		deleteStatements := []struct {
			query string
			name  string
		}{
			{
				name:  "transaction",
				query: "delete from transaction where import_batch_id = ?",
			},
			{
				name:  "import_batch",
				query: "delete from import_batch where id = ?",
			},
		}
		for _, deleteStatement := range deleteStatements {
			stmt, innerErr := tx.Prepare(tx.Rebind(deleteStatement.query))
			if innerErr != nil {
				return fmt.Errorf("error running '%s' error:%w", deleteStatement.query, innerErr)
			}
			result, innerErr := stmt.Exec(batch.Id)
			if innerErr != nil {
				return fmt.Errorf("error running '%s' error:%w", deleteStatement.query, innerErr)
			}
			rows, innerErr := result.RowsAffected()
			if innerErr != nil {
				return fmt.Errorf("error retrieving rows affected after '%s' error:%w", deleteStatement.query, innerErr)
			}
			log.Printf("Deleted %d lines from %s\n", rows, deleteStatement.name)
		}
		return nil
	})
	if err != nil {
		return err
	}
	log.Printf("Deleted ImportBatch %v", batch)
	return nil
}

// UpdateLedgerFromFeed checks for an updated statement export on the remote feed
// if a new version is detected attempts to load the export bundle in zip format to
// localDownloadDirectory from url to database
// forceDownload flag will bypass remote check
func UpdateLedgerFromFeed(log *log.Logger,
	db *sqlx.DB,
	localDownloadDirectory string,
	url string,
	authToken string,
	forceDownload bool) error {
	if forceDownload {
		log.Printf("Not checking remote statement feed for new information, forcing load of export bundle")
	} else if !shouldUpdateLedger(log, db, url, authToken) {
		return nil
	}

	err := makeDirectoryIfNotPresent(localDownloadDirectory)
	if err != nil {
		return err
	}
	start := time.Now()
	localBundleFile := filepath.Join(localDownloadDirectory, "statements.zip")
	log.Printf("Downloading file from %s to %s\n", url, localBundleFile)
	downloadedFile, err := httpclient.DownloadRemoteFile(localBundleFile, url, authToken)

	//remove downloaded file after we are done
	defer func() {
		if _, err := os.Stat(localBundleFile); err == nil {
			err = os.Remove(localBundleFile)
			if err != nil {
				log.Printf("Unable to remove downloaded file. error:%v", err)
			}
		}
	}()
	if err != nil {
		return err
	}

	log.Printf("Downloaded %v bytes in %v seconds\n",
		downloadedFile.Size, downloadedFile.DownloadedAt.Unix()-start.Unix())

	batch, err := loadLedgerFromFile(log, db, *downloadedFile)
	if err != nil {
		return err
	}
	log.Printf("Loaded %v", batch)
	return nil
}

// shouldUpdateLedger checks the most recently saved ledger.ImportBatch for the feed and compares
// it to what's available on the remote server. If it sees a difference returns true.
// On error logs and returns false.
// if the ImportBatch.ETag or ImportBatch.LastModifiedTimestamp match the remote file information
// returns false.
func shouldUpdateLedger(log *log.Logger, db *sqlx.DB, url string, authToken string) bool {
	remoteFileInfo, err := httpclient.GetRemoteFileInfo(url, authToken)
	if err != nil {
		log.Printf("Unable to retrieve remote file information from '%s' error: %v", url, err)
		return false
	}

	existingBatch, err := ledger.GetLatestSavedImportBatch(db, url)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Printf("No ImportBatch loaded from this feed, should perform initial load")
			return true
		}
		log.Printf("Received error checking ImportBatch from database. error: %v", err)
		return false
	}
	// use eTag if not empty
	if len(remoteFileInfo.ETag) > 0 {
		if remoteFileInfo.ETag != existingBatch.ETag {
			log.Printf("Remote file ETag indicates new export available")
			return true
		}
		log.Printf("Remote file ETag indicates the loaded ImportBatch is current: %v", *existingBatch)
		return false

	}
	//if last modified timestamp is zero, do load
	if remoteFileInfo.LastModifiedTimestamp == 0 {
		log.Printf("Unable to determine remote file timestamp or eTag, can not determine if ledger should be reloaded")
		return false
	}
	if remoteFileInfo.LastModifiedTimestamp != existingBatch.LastModifiedTimestamp {
		log.Printf("Remote file last timestamp indicates new export available")
		return true
	}
	log.Printf("Remote file last timestamp indicates the loaded ImportBatch is current: %v", *existingBatch)
	return false
}

// ImportStatementBundle loads a statement export bundle from a local file, for institutions
// that only offer manual downloads
func ImportStatementBundle(log *log.Logger, db *sqlx.DB, bundlePath string) error {
	fileInfo, err := os.Stat(bundlePath)
	if err != nil {
		return fmt.Errorf("unable to read statement bundle at %s, error: %w", bundlePath, err)
	}
	downloadedFile := httpclient.DownloadedFile{
		RemoteFileInfo: httpclient.RemoteFileInfo{
			Path:                  bundlePath,
			LastModifiedTimestamp: fileInfo.ModTime().Unix(),
		},
		LocalFilePath: bundlePath,
		Size:          fileInfo.Size(),
		DownloadedAt:  time.Now(),
	}
	batch, err := loadLedgerFromFile(log, db, downloadedFile)
	if err != nil {
		return err
	}
	log.Printf("Loaded %v", batch)
	return nil
}

// ListImportBatches displays a list of all ImportBatches
func ListImportBatches(db *sqlx.DB) error {
	fmt.Println("Loaded ImportBatches:")
	batches, err := ledger.GetAllImportBatches(db)
	if err != nil {
		return err
	}
	for _, b := range batches {
		fmt.Println(b)
	}
	return nil
}

// loadLedgerFromFile loads the statement bundle described in httpclient.DownloadedFile and saves
// it to a new ImportBatch wrapped inside single transaction
func loadLedgerFromFile(log *log.Logger,
	db *sqlx.DB,
	downloadedFile httpclient.DownloadedFile) (*ledger.ImportBatch, error) {
	// Create the import batch to save the loaded rows under
	batch := ledger.ImportBatch{
		Source:                downloadedFile.RemoteFileInfo.Path,
		ETag:                  downloadedFile.RemoteFileInfo.ETag,
		LastModifiedTimestamp: downloadedFile.RemoteFileInfo.LastModifiedTimestamp,
		DownloadedAt:          downloadedFile.DownloadedAt,
	}
	err := transact(log, db, func(tx *sqlx.Tx) error {
		err := ledger.SaveImportBatch(tx, &batch)
		if err != nil {
			return err
		}

		// create BatchTransaction for recording ledger records
		bTx := ledger.BatchTransaction{
			Batch: batch,
			Tx:    tx,
		}

		recorded, err := loadStatementBundle(log, &bTx, downloadedFile.LocalFilePath)
		if err != nil {
			return err
		}
		now := time.Now()
		batch.TransactionCount = recorded
		batch.SavedAt = &now
		return ledger.SaveImportBatch(tx, &batch)
	})

	return &batch, err
}

func makeDirectoryIfNotPresent(directory string) error {
	if _, err := os.Stat(directory); os.IsNotExist(err) {
		err = os.Mkdir(directory, os.ModePerm)
		if err != nil {
			return err
		}
	}
	return nil
}

/*
transact starts a Transaction on sqlx.DB, calls txFunc and commits or rolls back the transaction depending on the
return code of the txFunc result
*/
func transact(log *log.Logger, db *sqlx.DB, txFunc func(*sqlx.Tx) error) (err error) {
	tx, err := db.Beginx()
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			rollbackErr := tx.Rollback() // err is non-nil; don't change it
			if rollbackErr != nil {
				log.Printf("Received error while attempting to rollback transaction. error:%v", rollbackErr)
			}
			return
		}
		err = tx.Commit() // err is nil; if Commit returns error update err
	}()
	err = txFunc(tx)
	return err
}
