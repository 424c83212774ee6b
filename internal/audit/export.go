package audit

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"time"
)

const (
	ExportFormatCSV  = "csv"
	ExportFormatJSON = "json"
)

var ErrUnknownExportFormat = errors.New("unknown export format")

type ExportOptions struct {
	Format          string
	IncludeUserInfo bool
}

// Export serializes the collection in the requested format. The caller
// is responsible for delivering the payload (HTTP download, file write);
// nothing partial is produced on error.
func Export(logs []ActivityLog, opts *ExportOptions) ([]byte, error) {
	switch opts.Format {
	case ExportFormatCSV:
		return ExportCSV(logs, opts)
	case ExportFormatJSON:
		return ExportJSON(logs, opts)
	default:
		return nil, ErrUnknownExportFormat
	}
}

// exportRecord mirrors ActivityLog without the actor fields, for
// exports that must not disclose user info.
type exportRecord struct {
	ID           string    `json:"id"`
	TenantID     string    `json:"tenant_id"`
	UserID       string    `json:"user_id"`
	Timestamp    time.Time `json:"timestamp"`
	ActionType   string    `json:"action_type"`
	EntityType   string    `json:"entity_type,omitempty"`
	EntityID     string    `json:"entity_id,omitempty"`
	OldValue     JSONMap   `json:"old_value,omitempty"`
	NewValue     JSONMap   `json:"new_value,omitempty"`
	Success      bool      `json:"success"`
	ErrorMessage string    `json:"error_message,omitempty"`
	Metadata     JSONMap   `json:"metadata,omitempty"`
}

func ExportJSON(logs []ActivityLog, opts *ExportOptions) ([]byte, error) {
	if opts.IncludeUserInfo {
		return json.MarshalIndent(logs, "", "  ")
	}

	records := make([]exportRecord, len(logs))
	for i := range logs {
		records[i] = exportRecord{
			ID:           logs[i].ID,
			TenantID:     logs[i].TenantID,
			UserID:       logs[i].UserID,
			Timestamp:    logs[i].Timestamp,
			ActionType:   logs[i].ActionType,
			EntityType:   logs[i].EntityType,
			EntityID:     logs[i].EntityID,
			OldValue:     logs[i].OldValue,
			NewValue:     logs[i].NewValue,
			Success:      logs[i].Success,
			ErrorMessage: logs[i].ErrorMessage,
			Metadata:     logs[i].Metadata,
		}
	}

	return json.MarshalIndent(records, "", "  ")
}

func ExportCSV(logs []ActivityLog, opts *ExportOptions) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	header := []string{"id", "timestamp", "action", "entity", "success", "error"}
	if opts.IncludeUserInfo {
		header = append(header, "user_name", "user_email")
	}

	if err := writer.Write(header); err != nil {
		return nil, err
	}

	for i := range logs {
		log := &logs[i]

		success := "false"
		if log.Success {
			success = "true"
		}

		row := []string{
			log.ID,
			log.Timestamp.Format(time.RFC3339),
			log.ActionType,
			log.EntityType,
			success,
			log.ErrorMessage,
		}
		if opts.IncludeUserInfo {
			row = append(row, log.UserName, log.UserEmail)
		}

		if err := writer.Write(row); err != nil {
			return nil, err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}
