package finapi

import (
	"encoding/json"
	"fmt"

	"github.com/fincast/fincast/business/data/ledger"
	"github.com/nats-io/nats.go"
)

// transactionDestination is where webhook transaction batches should be announced after saving.
type transactionDestination interface {
	PublishTransactions(event *ledger.TransactionEvent) error
}

//natsTransactionDestination implements transactionDestination over nats connection
type natsTransactionDestination struct {
	natsConn *nats.Conn
	subject  string
}

func (n *natsTransactionDestination) PublishTransactions(event *ledger.TransactionEvent) error {
	jsonData, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("error marshaling TransactionEvent to json: error:%v", err)
	}
	return n.natsConn.Publish(n.subject, jsonData)
}
