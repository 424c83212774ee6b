// Every auditable action in the system produces exactly one ActivityLog
// record. Records are immutable once written; everything in this package
// is a read-only consumer working over an already-fetched slice.
package audit

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

type ActivityLog struct {
	ID           string    `db:"id" json:"id"`
	TenantID     string    `db:"tenant_id" json:"tenant_id"`
	UserID       string    `db:"user_id" json:"user_id"`
	Timestamp    time.Time `db:"created_at" json:"timestamp"`
	ActionType   string    `db:"action_type" json:"action_type"`
	EntityType   string    `db:"entity_type" json:"entity_type,omitempty"`
	EntityID     string    `db:"entity_id" json:"entity_id,omitempty"`
	OldValue     JSONMap   `db:"old_value" json:"old_value,omitempty"`
	NewValue     JSONMap   `db:"new_value" json:"new_value,omitempty"`
	Success      bool      `db:"success" json:"success"`
	ErrorMessage string    `db:"error_message" json:"error_message,omitempty"`
	Metadata     JSONMap   `db:"metadata" json:"metadata,omitempty"`

	// Actor display info, joined from the users table at query time.
	UserName  string `db:"user_name" json:"user_name,omitempty"`
	UserEmail string `db:"user_email" json:"user_email,omitempty"`
}

// action types
const (
	ActionLogin  = "login"
	ActionLogout = "logout"

	ActionCreateEvent = "create_event"
	ActionUpdateEvent = "update_event"
	ActionDeleteEvent = "delete_event"

	ActionCreateClient = "create_client"
	ActionUpdateClient = "update_client"
	ActionDeleteClient = "delete_client"

	ActionCreateEmployee = "create_employee"
	ActionUpdateEmployee = "update_employee"
	ActionDeleteEmployee = "delete_employee"

	ActionCreateUser = "create_user"
	ActionUpdateUser = "update_user"
	ActionDeleteUser = "delete_user"

	ActionCreateOperation = "create_operation"
	ActionUpdateOperation = "update_operation"
	ActionDeleteOperation = "delete_operation"

	ActionCreateVehicle = "create_vehicle"
	ActionUpdateVehicle = "update_vehicle"
	ActionDeleteVehicle = "delete_vehicle"

	ActionAssignDriver  = "assign_driver"
	ActionAssignVehicle = "assign_vehicle"

	ActionExportData      = "export_data"
	ActionImportData      = "import_data"
	ActionSyncIntegration = "sync_integration"
)

// entity types
const (
	EntityEvent       = "event"
	EntityClient      = "client"
	EntityEmployee    = "employee"
	EntityUser        = "user"
	EntityOperation   = "operation"
	EntityVehicle     = "vehicle"
	EntityIntegration = "integration"
)

// JSONMap is an arbitrary key-value snapshot stored as JSONB.
type JSONMap map[string]any

func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	return json.Marshal(m)
}

func (m *JSONMap) Scan(src any) error {
	if src == nil {
		*m = nil
		return nil
	}

	var data []byte
	switch v := src.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into JSONMap", src)
	}

	return json.Unmarshal(data, m)
}
