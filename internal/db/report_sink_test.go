package db

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tOgg1/threadreport/internal/models"
	"github.com/tOgg1/threadreport/internal/report"
)

func sampleRows() []report.Row {
	attrs := models.AttributeRecord{{Name: "PID", Value: "u1"}, {Name: "gender", Value: "f"}}
	return []report.Row{
		{UserID: "u1", Head: true, Type: "question", Date: "Jan 1, 1970", Subject: "Hi", Content: `say "x"`, MessageID: "m1", ParentID: " ", Attributes: attrs},
		{UserID: "u1", Type: "mail", Date: "Jan 1, 1970", Subject: " ", Content: "ok", MessageID: "m2", ParentID: "m1", Attributes: attrs},
	}
}

func TestReportSinkCommitsRun(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "report.db")

	sink, err := CreateReportSink(ctx, path, 0, RunInfo{UsersPath: "users.csv", MessagesPath: "messages.jsonl"})
	require.NoError(t, err)
	require.NotEmpty(t, sink.RunID())

	require.NoError(t, sink.WriteHeader(ctx, report.Header([]string{"PID", "gender"})))
	for _, row := range sampleRows() {
		require.NoError(t, sink.WriteRow(ctx, row))
	}
	require.Equal(t, 2, sink.Rows())
	require.NoError(t, sink.Close())

	database, err := Open(ctx, path, 0)
	require.NoError(t, err)
	defer database.Close()

	var rowCount int
	var columnsJSON string
	require.NoError(t, database.QueryRowContext(ctx,
		`SELECT row_count, columns_json FROM report_runs WHERE run_id = ?`, sink.RunID()).Scan(&rowCount, &columnsJSON))
	require.Equal(t, 2, rowCount)

	var columns []string
	require.NoError(t, json.Unmarshal([]byte(columnsJSON), &columns))
	require.Equal(t, "User ID", columns[0])
	require.Equal(t, "gender", columns[len(columns)-1])

	rows, err := database.QueryContext(ctx,
		`SELECT seq, thread_head, message_id, content, attributes_json FROM report_rows WHERE run_id = ? ORDER BY seq`, sink.RunID())
	require.NoError(t, err)
	defer rows.Close()

	var got []string
	for rows.Next() {
		var seq, head int
		var id, content, attrsJSON string
		require.NoError(t, rows.Scan(&seq, &head, &id, &content, &attrsJSON))
		got = append(got, id)
		if seq == 0 {
			require.Equal(t, 1, head)
			require.Equal(t, `say "x"`, content)
			var attrs models.AttributeRecord
			require.NoError(t, json.Unmarshal([]byte(attrsJSON), &attrs))
			require.Equal(t, "gender", attrs[1].Name)
		}
	}
	require.NoError(t, rows.Err())
	require.Equal(t, []string{"m1", "m2"}, got)
}

func TestReportSinkSeparateRuns(t *testing.T) {
	ctx := context.Background()
	database := setupTestDB(t)
	defer database.Close()

	first, err := NewReportSink(ctx, database, RunInfo{UsersPath: "u", MessagesPath: "m"})
	require.NoError(t, err)
	require.NoError(t, first.WriteHeader(ctx, report.Header(nil)))
	require.NoError(t, first.WriteRow(ctx, sampleRows()[0]))
	require.NoError(t, first.Close())

	second, err := NewReportSink(ctx, database, RunInfo{UsersPath: "u", MessagesPath: "m"})
	require.NoError(t, err)
	require.NotEqual(t, first.RunID(), second.RunID())
	require.NoError(t, second.WriteHeader(ctx, report.Header(nil)))
	require.NoError(t, second.Close())

	var runs int
	require.NoError(t, database.QueryRowContext(ctx, `SELECT COUNT(*) FROM report_runs`).Scan(&runs))
	require.Equal(t, 2, runs)
}

func TestReportSinkRequiresHeader(t *testing.T) {
	ctx := context.Background()
	database := setupTestDB(t)
	defer database.Close()

	sink, err := NewReportSink(ctx, database, RunInfo{})
	require.NoError(t, err)
	require.Error(t, sink.WriteRow(ctx, sampleRows()[0]))
	require.NoError(t, sink.Close())
}

func TestReportSinkAbortRemovesRun(t *testing.T) {
	ctx := context.Background()
	database := setupTestDB(t)
	defer database.Close()

	sink, err := NewReportSink(ctx, database, RunInfo{UsersPath: "u", MessagesPath: "m"})
	require.NoError(t, err)
	require.NoError(t, sink.WriteHeader(ctx, report.Header(nil)))
	require.NoError(t, sink.WriteRow(ctx, sampleRows()[0]))
	require.NoError(t, sink.Abort())

	var runs, rows int
	require.NoError(t, database.QueryRowContext(ctx, `SELECT COUNT(*) FROM report_runs`).Scan(&runs))
	require.NoError(t, database.QueryRowContext(ctx, `SELECT COUNT(*) FROM report_rows`).Scan(&rows))
	require.Zero(t, runs)
	require.Zero(t, rows)
}
