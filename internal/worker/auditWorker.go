package worker

import (
	"encoding/json"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"github.com/xsoluti-sigelo/sigelo/internal/audit"
	"github.com/xsoluti-sigelo/sigelo/internal/stream"
)

// AuditWorker drains the audit topic and persists each event as an
// activity_logs row. Handlers never write the table directly; keeping
// the write path here means a slow insert can't hold up a request.
func (wk *Worker) AuditWorker() {
	consumer, err := wk.kafkaStream.CreateConsumer(&stream.StreamConsumer{
		GroupId: stream.AuditLogGroupID,
		Topic:   stream.AuditLogTopic,
	})

	if err != nil {
		wk.logger.Error("creating audit consumer", "error", err)
		return
	}

	for {
		event := consumer.Poll(100)
		switch e := event.(type) {
		case *kafka.Message:
			var entry audit.ActivityLog
			if err := json.Unmarshal(e.Value, &entry); err != nil {
				wk.logger.Error("malformed audit event", "error", err)
				continue
			}

			wk.persistEntry(&entry)
		case kafka.Error:
			wk.logger.Error("audit consumer", "error", e)
		default:
		}
	}
}

func (wk *Worker) persistEntry(entry *audit.ActivityLog) {
	if entry.TenantID == "" || entry.UserID == "" || entry.ActionType == "" {
		wk.logger.Error("dropping incomplete audit event",
			"tenant_id", entry.TenantID, "action_type", entry.ActionType)
		return
	}

	_, err := wk.db.InsertActivityLog(entry)
	if err != nil {
		wk.logger.Error("persisting audit event", "error", err, "action_type", entry.ActionType)
	}
}
