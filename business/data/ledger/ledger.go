// Package ledger provides account, transaction, bill, alert and savings goal CRUD
// functionality for the finance database
package ledger

import (
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// BatchTransaction contains required data for recording new ledger records owned by an ImportBatch
type BatchTransaction struct {
	Batch ImportBatch
	Tx    *sqlx.Tx
}

// ImportBatch encompasses one ingestion of transactions from a source at a point in time.
// The same source will be loaded over time.
// Each transaction row carries the ImportBatch.Id value of the batch that brought it in.
type ImportBatch struct {
	Id     int64
	Source string
	// ETag is the ETag header if available from the statement feed for the export file. Is empty if not available
	ETag string `db:"e_tag"`
	// LastModifiedTimestamp is the unix epoch seconds the statement feed provided for the last time the export
	// file was modified, is 0 if not available
	LastModifiedTimestamp int64      `db:"last_modified_timestamp"`
	DownloadedAt          time.Time  `db:"downloaded_at"`
	SavedAt               *time.Time `db:"saved_at"`
	TransactionCount      int        `db:"transaction_count"`
}

func (b ImportBatch) String() string {
	lastModified := ""
	if b.LastModifiedTimestamp != 0 {
		lastModTime := time.Unix(b.LastModifiedTimestamp, 0)
		lastModified = formatTime(&lastModTime)
	}
	return fmt.Sprintf("ImportBatch Id:%d, source:%s, ETag:%s, lastModified:%s downloaded:%s savedAt:%s transactions:%d",
		b.Id, b.Source, b.ETag, lastModified, formatTime(&b.DownloadedAt), formatTime(b.SavedAt), b.TransactionCount)
}

func formatTime(time *time.Time) string {
	if time == nil {
		return ""
	}
	return time.Format("2006-01-02T15:04:05")
}

// SaveImportBatch saves new or updates existing ImportBatches. Existing records are determined
// by a non-zero ImportBatch.Id
func SaveImportBatch(tx *sqlx.Tx, batch *ImportBatch) error {
	statementString := "insert into import_batch ( " +
		"source, " +
		"e_tag, " +
		"last_modified_timestamp, " +
		"downloaded_at, " +
		"saved_at, " +
		"transaction_count) " +
		"values (" +
		":source, " +
		":e_tag, " +
		":last_modified_timestamp, " +
		":downloaded_at, " +
		":saved_at, " +
		":transaction_count)"
	if batch.Id != 0 {
		statementString = "update import_batch set " +
			"source = :source, " +
			"e_tag = :e_tag, " +
			"last_modified_timestamp = :last_modified_timestamp, " +
			"downloaded_at = :downloaded_at, " +
			"saved_at = :saved_at, " +
			"transaction_count = :transaction_count " +
			" where id = :id"
	}

	statementString = tx.Rebind(statementString)
	_, err := tx.NamedExec(statementString, batch)
	if err != nil {
		return err
	}
	// retrieve new id if zero
	if batch.Id == 0 {
		statementString = tx.Rebind("SELECT id FROM import_batch " +
			"where source = ? " +
			"and downloaded_at = ? limit 1")
		err = tx.Get(&batch.Id, statementString, batch.Source, batch.DownloadedAt)
		if err != nil {
			return err
		}
	}

	return err
}

// GetImportBatch retrieves ImportBatch with batchId
func GetImportBatch(db *sqlx.DB, batchId int64) (*ImportBatch, error) {
	query := "select * from import_batch where id = $1"
	batch := ImportBatch{}
	err := db.Get(&batch, db.Rebind(query), batchId)
	return &batch, err
}

// GetLatestSavedImportBatch retrieves the latest ImportBatch for source with a saved_at date
func GetLatestSavedImportBatch(db *sqlx.DB, source string) (*ImportBatch, error) {
	query := "select * from import_batch where source = $1 and saved_at is not null " +
		"order by saved_at desc, downloaded_at desc limit 1"
	batch := ImportBatch{}
	err := db.Get(&batch, db.Rebind(query), source)
	return &batch, err
}

// GetAllImportBatches retrieves all ImportBatches currently loaded
func GetAllImportBatches(db *sqlx.DB) ([]ImportBatch, error) {
	query := "select * from import_batch order by downloaded_at"
	var results []ImportBatch
	err := db.Select(&results, query)
	return results, err
}

