package reminder

import (
	"encoding/json"
	"fmt"

	"github.com/fincast/fincast/business/data/ledger"
	"github.com/nats-io/nats.go"
)

// noticeDestination is where reminder notices and alert events should be sent after evaluation.
type noticeDestination interface {
	PublishReminder(notice *ledger.ReminderNotice) error
	PublishAlert(event *ledger.AlertEvent) error
}

// natsNoticeDestination sends notices and alert events over nats
type natsNoticeDestination struct {
	natsConn        *nats.Conn
	reminderSubject string
	alertSubject    string
}

func (n *natsNoticeDestination) PublishReminder(notice *ledger.ReminderNotice) error {
	jsonData, err := json.Marshal(notice)
	if err != nil {
		return fmt.Errorf("error marshaling ReminderNotice to json: error:%v", err)
	}
	return n.natsConn.Publish(n.reminderSubject, jsonData)
}

func (n *natsNoticeDestination) PublishAlert(event *ledger.AlertEvent) error {
	jsonData, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("error marshaling AlertEvent to json: error:%v", err)
	}
	return n.natsConn.Publish(n.alertSubject, jsonData)
}
