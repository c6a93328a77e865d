package ledgermanager

import (
	"archive/zip"
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/fincast/fincast/business/data/ledger"
	"github.com/shopspring/decimal"
)

// statementRowReader interface defines methods used to read rows from a statement export
// csv file and record them to a database
type statementRowReader interface {

	// addRow should read the current line from statementFileParser and record the resulting
	// record with the BatchTransaction, or store the record to be recorded in a batch later via flush
	addRow(parser *statementFileParser, bTx *ledger.BatchTransaction) error

	// flush should record any pending records with the BatchTransaction, if any
	flush(bTx *ledger.BatchTransaction) error
}

// statementFileParser holds information about a csv file. Methods to read columns for records.
// Errors while extracting data types are stored in errors array which record the line number
// the error happened.
type statementFileParser struct {
	Filename       string
	line           int
	csvReader      *csv.Reader
	headers        []string
	currentRecords []string
	errors         []error
}

// makeStatementFileParser creates new statementFileParser from io.Reader
func makeStatementFileParser(r io.Reader, filename string) (*statementFileParser, error) {
	csvReader := csv.NewReader(r)

	headers, err := csvReader.Read()
	removeBOMIfPresent(headers)

	if err != nil {
		return nil, fmt.Errorf("unable to load header in %s file: %v", filename, err)
	}
	return &statementFileParser{
		Filename:       filename,
		line:           1,
		csvReader:      csvReader,
		headers:        headers,
		currentRecords: headers,
	}, nil
}

func removeBOMIfPresent(headers []string) {
	if len(headers) < 1 {
		return
	}
	firstHeader := headers[0]
	if len(firstHeader) < 1 {
		return
	}
	runes := []rune(firstHeader) // convert string to runes
	if runes[0] == '\uFEFF' {    //check for BOM
		headers[0] = string(runes[1:])
	}
}

// getString retrieves string
// returns empty string if missing
func (p *statementFileParser) getString(name string, optional bool) string {
	result := p.getStringPointer(name, optional)
	if result == nil {
		return ""
	}
	return *result
}

// getStringPointer retrieves string pointer
// returns nil if missing
func (p *statementFileParser) getStringPointer(name string, optional bool) *string {
	result, err := findValue(name, p.currentRecords, p.headers, optional)
	if err != nil {
		p.errors = append(p.errors, err)
	}
	return result
}

// getDecimal retrieves a money amount
// returns decimal zero if missing
func (p *statementFileParser) getDecimal(name string, optional bool) decimal.Decimal {
	result := p.getDecimalPointer(name, optional)
	if result == nil {
		return decimal.Zero
	}
	return *result
}

// getDecimalPointer retrieves a money amount pointer
// returns nil if missing
func (p *statementFileParser) getDecimalPointer(name string, optional bool) *decimal.Decimal {
	value, err := findValue(name, p.currentRecords, p.headers, optional)
	if err != nil {
		p.errors = append(p.errors, err)
		return nil
	}
	if value == nil || len(strings.TrimSpace(*value)) == 0 {
		if optional {
			return nil
		}
		p.errors = append(p.errors, fmt.Errorf("missing required value in column %v", name))
		return nil
	}
	result, err := decimal.NewFromString(strings.TrimSpace(*value))
	if err != nil {
		p.errors = append(p.errors, csvError(name, err))
		return nil
	}
	return &result
}

// getDate retrieves a date in statement export format
// returns default time.Time if missing
func (p *statementFileParser) getDate(name string, optional bool) time.Time {
	result := p.getDatePointer(name, optional)
	if result != nil {
		return *result
	}
	return time.Time{}
}

// getDatePointer retrieves a date in statement export format as time.Time pointer
// returns nil if missing
func (p *statementFileParser) getDatePointer(name string, optional bool) *time.Time {
	stringValue, err := findValue(name, p.currentRecords, p.headers, optional)
	if err != nil {
		p.errors = append(p.errors, err)
		return nil
	}
	if stringValue == nil || len(*stringValue) == 0 && optional {
		return nil
	}
	result, err := timeFromExportDate(*stringValue)
	if err != nil {
		p.errors = append(p.errors, err)
		return nil
	}
	return &result
}

// getBool retrieves a boolean column
// returns false if missing
func (p *statementFileParser) getBool(name string, optional bool) bool {
	value, err := findValue(name, p.currentRecords, p.headers, optional)
	if err != nil {
		p.errors = append(p.errors, err)
		return false
	}
	if value == nil || len(strings.TrimSpace(*value)) == 0 {
		return false
	}
	result, err := strconv.ParseBool(strings.TrimSpace(*value))
	if err != nil {
		p.errors = append(p.errors, csvError(name, err))
		return false
	}
	return result
}

// getError retrieve last error encountered while parsing csv file
func (p *statementFileParser) getError() error {
	if len(p.errors) > 0 {
		return fmt.Errorf("in file %v, line %v: %v", p.Filename, p.line, p.errors)
	}
	return nil
}

// addParseError appends error to list of parsing errors encountered in csv file
func (p *statementFileParser) addParseError(err error) {
	p.errors = append(p.errors, err)
}

// nextLine moves csvReader one line forward
func (p *statementFileParser) nextLine() error {
	var err error
	p.currentRecords, err = p.csvReader.Read()
	p.line += 1
	return err
}

// find index of elements that matches name string. returns -1 if not found
func indexOf(name string, elements []string) int {
	for i, value := range elements {
		if name == value {
			return i
		}
	}
	return -1
}

// findValue retrieves string value from csv records
// returns nil if record isn't present and optional is true
func findValue(name string, records []string, headers []string, optional bool) (*string, error) {
	index := indexOf(name, headers)
	if index < 0 {
		if optional {
			return nil, nil
		}
		return nil, fmt.Errorf("unable to find header: %s", name)
	}
	if len(records) <= index {
		return nil, fmt.Errorf("records are too short to find header at %v named %s", index, name)
	}
	value := records[index]
	if len(value) == 0 && !optional {
		return nil, fmt.Errorf("missing required value in column %v", name)
	}
	return &value, nil
}

// csvError convenience method for formatting an error and line number in csv file.
func csvError(name string, err error) error {
	return fmt.Errorf("unable to parse column %s, error: %v ", name, err)
}

// timeFromExportDate retrieves date from a statement export date string, for example
// 2024-01-05 for January 5th, 2024
func timeFromExportDate(dateString string) (time.Time, error) {
	const layout = "2006-01-02"
	result, err := time.Parse(layout, dateString)
	return result, err
}

// loadStatementRows iterates over all rows in statementFileParser and feeds them into rowReader.
// reading halts if an error occurs and the error is returned
func loadStatementRows(bTx *ledger.BatchTransaction, parser *statementFileParser, rowReader statementRowReader) error {

	for {
		err := parser.nextLine()

		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}

		err = rowReader.addRow(parser, bTx)

		if err != nil {
			parser.addParseError(err)
			return parser.getError()
		}
	}
	//flush the remaining items out of the row reader into the database
	return rowReader.flush(bTx)
}

// loadStatementBundle reads local zip file at localBundlePath, uncompresses the files inside,
// if a statementRowReader is available for the file its used to read and record the file.
// reading halts if an error occurs and the error is returned.
// returns the number of transactions recorded
func loadStatementBundle(log *log.Logger, bTx *ledger.BatchTransaction, localBundlePath string) (int, error) {

	r, err := zip.OpenReader(localBundlePath)
	if err != nil {
		return 0, err
	}
	//close the file after we are done
	defer func() {
		err := r.Close()
		if err != nil {
			log.Printf("unable to close zip file %s, error: %v", localBundlePath, err)
		}
	}()

	files, err := newStatementFiles(r)

	if err != nil {
		return 0, err
	}

	return loadStatementFiles(log, files, bTx)
}

// statementFiles holds all statement export files that we know how to load
type statementFiles struct {
	accountFile     *zip.File
	transactionFile *zip.File
}

// newStatementFiles collects the export files in zipReader
// returns error if the transactions file is missing
func newStatementFiles(zipReader *zip.ReadCloser) (*statementFiles, error) {
	files := statementFiles{}
	//iterate over each file
	for _, f := range zipReader.File {
		if f.FileInfo().IsDir() {
			//ignore folders
			continue
		}
		switch f.Name {
		case "accounts.csv":
			files.accountFile = f
		case "transactions.csv":
			files.transactionFile = f
		}
	}
	//ok to be missing accounts.csv, institutions appear as bare external ids until renamed
	if files.transactionFile == nil {
		return nil, fmt.Errorf("statement bundle is missing transactions.csv")
	}
	return &files, nil
}

//loadStatementFiles loads statementFiles in the order required by the readers, accounts
//ahead of the transactions that reference them
func loadStatementFiles(log *log.Logger, files *statementFiles, bTx *ledger.BatchTransaction) (int, error) {
	accountRR := newAccountRowReader()
	if files.accountFile != nil {
		err := loadStatementFile(log, bTx, accountRR, files.accountFile)
		if err != nil {
			return 0, err
		}
	}
	transactionRR := newTransactionRowReader(accountRR)
	err := loadStatementFile(log, bTx, transactionRR, files.transactionFile)
	if err != nil {
		return 0, err
	}
	return transactionRR.recorded, nil
}

// loadStatementFile loads one zipped export file and reads with statementRowReader
func loadStatementFile(log *log.Logger, bTx *ledger.BatchTransaction, rowReader statementRowReader, f *zip.File) error {
	start := time.Now()
	rc, err := f.Open()
	if err != nil {
		return err
	}
	parser, err := makeStatementFileParser(rc, f.Name)
	if err != nil {
		return err
	}
	log.Printf("Loading %s\n", parser.Filename)
	err = loadStatementRows(bTx, parser, rowReader)
	if err != nil {
		return err
	}
	err = rc.Close()
	if err != nil {
		return err
	}
	log.Printf("Loaded %d rows in file %s in %d seconds\n", parser.line, parser.Filename,
		time.Now().Unix()-start.Unix())
	return nil
}
