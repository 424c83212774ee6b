package audit

import (
	"encoding/json"
	"fmt"
	"time"
)

// Display metadata per action type. Unknown actions fall back to the
// raw action string with neutral styling so a new action type never
// breaks rendering.
var actionDisplay = map[string]struct {
	label string
	color string
	icon  string
}{
	ActionLogin:  {"Login", "green", "log-in"},
	ActionLogout: {"Logout", "gray", "log-out"},

	ActionCreateEvent: {"Evento criado", "green", "calendar-plus"},
	ActionUpdateEvent: {"Evento atualizado", "blue", "calendar"},
	ActionDeleteEvent: {"Evento removido", "red", "calendar-x"},

	ActionCreateClient: {"Cliente criado", "green", "user-plus"},
	ActionUpdateClient: {"Cliente atualizado", "blue", "user"},
	ActionDeleteClient: {"Cliente removido", "red", "user-x"},

	ActionCreateEmployee: {"Funcionário criado", "green", "user-plus"},
	ActionUpdateEmployee: {"Funcionário atualizado", "blue", "user"},
	ActionDeleteEmployee: {"Funcionário removido", "red", "user-x"},

	ActionCreateUser: {"Usuário criado", "green", "user-plus"},
	ActionUpdateUser: {"Usuário atualizado", "blue", "user"},
	ActionDeleteUser: {"Usuário removido", "red", "user-x"},

	ActionCreateOperation: {"Operação criada", "green", "truck"},
	ActionUpdateOperation: {"Operação atualizada", "blue", "truck"},
	ActionDeleteOperation: {"Operação removida", "red", "truck"},

	ActionCreateVehicle: {"Veículo criado", "green", "truck"},
	ActionUpdateVehicle: {"Veículo atualizado", "blue", "truck"},
	ActionDeleteVehicle: {"Veículo removido", "red", "truck"},

	ActionAssignDriver:  {"Motorista atribuído", "purple", "steering-wheel"},
	ActionAssignVehicle: {"Veículo atribuído", "purple", "truck"},

	ActionExportData:      {"Dados exportados", "gray", "download"},
	ActionImportData:      {"Dados importados", "gray", "upload"},
	ActionSyncIntegration: {"Integração sincronizada", "blue", "refresh-cw"},
}

func ActionLabel(actionType string) string {
	if d, ok := actionDisplay[actionType]; ok {
		return d.label
	}
	return actionType
}

func ActionColor(actionType string) string {
	if d, ok := actionDisplay[actionType]; ok {
		return d.color
	}
	return "gray"
}

func ActionIcon(actionType string) string {
	if d, ok := actionDisplay[actionType]; ok {
		return d.icon
	}
	return "activity"
}

// FormatTimestamp renders a log timestamp relative to now when recent,
// falling back to an absolute date for anything older than a week.
func FormatTimestamp(ts, now time.Time) string {
	diff := now.Sub(ts)

	switch {
	case diff < time.Minute:
		return "agora"
	case diff < time.Hour:
		return fmt.Sprintf("há %d min", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("há %d h", int(diff.Hours()))
	case diff < 7*24*time.Hour:
		return fmt.Sprintf("há %d dias", int(diff.Hours()/24))
	default:
		return ts.Format("02/01/2006 15:04")
	}
}

// FormatValue renders a snapshot value for diff display.
func FormatValue(v any) string {
	if v == nil {
		return "—"
	}

	switch val := v.(type) {
	case string:
		return val
	case bool:
		if val {
			return "sim"
		}
		return "não"
	case float64:
		if val == float64(int64(val)) {
			return fmt.Sprintf("%d", int64(val))
		}
		return fmt.Sprintf("%g", val)
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(data)
	}
}
