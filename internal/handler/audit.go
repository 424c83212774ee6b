package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/xsoluti-sigelo/sigelo/internal/audit"
	"github.com/xsoluti-sigelo/sigelo/internal/database"
	"github.com/xsoluti-sigelo/sigelo/internal/helper"
	"github.com/xsoluti-sigelo/sigelo/internal/stream"
)

// AuditProducer is the slice of the kafka stream the recorder needs.
type AuditProducer interface {
	ProduceMessage(topic, message string) error
}

// AuditRecorder ships audit events to the stream from request
// handlers. Publishing happens off the request goroutine so an
// unavailable broker can't slow a response down.
type AuditRecorder struct {
	producer AuditProducer
	helper   *helper.HelperRepository
}

func NewAuditRecorder(producer AuditProducer, helper *helper.HelperRepository) *AuditRecorder {
	return &AuditRecorder{
		producer: producer,
		helper:   helper,
	}
}

func (a *AuditRecorder) Record(r *http.Request, user *database.User, entry *audit.ActivityLog) {
	entry.TenantID = user.TenantID
	entry.UserID = user.ID
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}

	a.helper.BackgroundTask(r, func() error {
		payload, err := json.Marshal(entry)
		if err != nil {
			return err
		}

		return a.producer.ProduceMessage(stream.AuditLogTopic, string(payload))
	})
}

// RecordFailure is Record with the outcome fields pre-filled; failed
// actions are just as auditable as successful ones.
func (a *AuditRecorder) RecordFailure(r *http.Request, user *database.User, entry *audit.ActivityLog, reason string) {
	entry.Success = false
	entry.ErrorMessage = reason
	a.Record(r, user, entry)
}
