package audit

import (
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExportJSONRoundTrip(t *testing.T) {
	logs := makeLogs(12, nil)

	data, err := ExportJSON(logs, &ExportOptions{Format: ExportFormatJSON, IncludeUserInfo: true})
	require.NoError(t, err)

	var decoded []ActivityLog
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Len(t, decoded, len(logs))

	for i := range logs {
		require.Equal(t, logs[i].ID, decoded[i].ID)
		require.Equal(t, logs[i].UserEmail, decoded[i].UserEmail)
	}
}

func TestExportJSONOmitsUserInfo(t *testing.T) {
	logs := makeLogs(3, nil)

	data, err := ExportJSON(logs, &ExportOptions{Format: ExportFormatJSON})
	require.NoError(t, err)

	require.NotContains(t, string(data), "maria@sigelo.com.br")
	require.NotContains(t, string(data), "user_name")

	var decoded []ActivityLog
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Len(t, decoded, 3)
	require.Equal(t, "log-000", decoded[0].ID)
}

func TestExportCSVColumnsAndQuoting(t *testing.T) {
	logs := makeLogs(2, func(i int, log *ActivityLog) {
		if i == 1 {
			log.Success = false
			log.ErrorMessage = `quota "exceeded", retry later`
		}
	})

	data, err := ExportCSV(logs, &ExportOptions{Format: ExportFormatCSV, IncludeUserInfo: true})
	require.NoError(t, err)

	rows, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)

	require.Equal(t,
		[]string{"id", "timestamp", "action", "entity", "success", "error", "user_name", "user_email"},
		rows[0])

	require.Equal(t, "log-001", rows[2][0])
	require.Equal(t, "false", rows[2][4])
	require.Equal(t, `quota "exceeded", retry later`, rows[2][5])
}

func TestExportCSVWithoutUserInfo(t *testing.T) {
	logs := makeLogs(1, nil)

	data, err := ExportCSV(logs, &ExportOptions{Format: ExportFormatCSV})
	require.NoError(t, err)

	rows, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows[0], 6)
	require.NotContains(t, string(data), "Maria Silva")
}

func TestExportCSVHeaderOnEmptyCollection(t *testing.T) {
	data, err := ExportCSV(nil, &ExportOptions{Format: ExportFormatCSV})
	require.NoError(t, err)

	rows, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 1)
}

func TestExportUnknownFormat(t *testing.T) {
	_, err := Export(nil, &ExportOptions{Format: "xml"})
	require.ErrorIs(t, err, ErrUnknownExportFormat)
}
