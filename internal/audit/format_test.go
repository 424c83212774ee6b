package audit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestActionDisplayFallbacks(t *testing.T) {
	require.Equal(t, "Evento criado", ActionLabel(ActionCreateEvent))
	require.Equal(t, "green", ActionColor(ActionCreateEvent))
	require.Equal(t, "calendar-plus", ActionIcon(ActionCreateEvent))

	// unknown actions keep rendering
	require.Equal(t, "custom_action", ActionLabel("custom_action"))
	require.Equal(t, "gray", ActionColor("custom_action"))
	require.Equal(t, "activity", ActionIcon("custom_action"))
}

func TestFormatTimestamp(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		ts   time.Time
		want string
	}{
		{"just now", now.Add(-30 * time.Second), "agora"},
		{"minutes", now.Add(-5 * time.Minute), "há 5 min"},
		{"hours", now.Add(-3 * time.Hour), "há 3 h"},
		{"days", now.Add(-48 * time.Hour), "há 2 dias"},
		{"absolute", now.Add(-10 * 24 * time.Hour), "31/05/2025 12:00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, FormatTimestamp(tt.ts, now))
		})
	}
}

func TestFormatValue(t *testing.T) {
	require.Equal(t, "—", FormatValue(nil))
	require.Equal(t, "Galpão 3", FormatValue("Galpão 3"))
	require.Equal(t, "sim", FormatValue(true))
	require.Equal(t, "não", FormatValue(false))
	require.Equal(t, "42", FormatValue(42.0))
	require.Equal(t, "2.5", FormatValue(2.5))
	require.Equal(t, `{"uf":"PR"}`, FormatValue(map[string]any{"uf": "PR"}))
}
