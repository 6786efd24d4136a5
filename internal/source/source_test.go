package source

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tOgg1/threadreport/internal/models"
)

const sampleLog = `{"_id":"m1","parent":null,"user":"u1","subject":"Hello","content":"<p>hi</p>","type":"question","noted":100}
{"_id":"m2","parent":"m1","user":"cc","content":"reply","type":"mail","noted":200}

{"_id":"m3","parent":"","user":"u2","subject":"","content":"note","type":"note","noted":50}
`

func TestReadMessages(t *testing.T) {
	store, stats, err := ReadMessages(strings.NewReader(sampleLog), MalformedSkip)
	require.NoError(t, err)
	require.Equal(t, 3, store.Len())
	require.Equal(t, LoadStats{Lines: 4, Loaded: 3, Skipped: 0}, stats)

	m1 := store.At(0)
	require.Equal(t, "m1", m1.ID)
	require.True(t, m1.IsRoot())
	require.NotNil(t, m1.Subject)
	require.Equal(t, "Hello", *m1.Subject)
	require.Equal(t, models.MessageTypeQuestion, m1.Type)
	require.EqualValues(t, 100, m1.Timestamp)

	m2 := store.At(1)
	require.Equal(t, "m1", m2.ParentID)
	require.Nil(t, m2.Subject)

	m3 := store.At(2)
	require.True(t, m3.IsRoot())
	require.NotNil(t, m3.Subject)
	require.Equal(t, "", *m3.Subject)
}

const brokenLog = `{"_id":"m1","user":"u1","type":"question","noted":1}
{"_id":"m2","user":
{"_id":"m1","user":"u9","type":"note","noted":2}
{"_id":"m4","parent":"m4","user":"u1","noted":3}
{"user":"u1","noted":4}
{"_id":"m6","parent":"m1","user":"cc","type":"mail","noted":5}
`

func TestReadMessages_SkipPolicy(t *testing.T) {
	store, stats, err := ReadMessages(strings.NewReader(brokenLog), MalformedSkip)
	require.NoError(t, err)
	require.Equal(t, 2, store.Len())
	require.Equal(t, 4, stats.Skipped)
	require.Equal(t, 2, stats.Loaded)

	_, ok := store.Lookup("m6")
	require.True(t, ok)
	first, _ := store.Lookup("m1")
	require.Equal(t, "u1", store.At(first).UserID, "first occurrence of a duplicate id is kept")
}

func TestReadMessages_AbortPolicy(t *testing.T) {
	_, _, err := ReadMessages(strings.NewReader(brokenLog), MalformedAbort)
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrMalformedRecord))

	var recErr *RecordError
	require.True(t, errors.As(err, &recErr))
	require.Equal(t, 2, recErr.Line)
}

func TestParsePolicy(t *testing.T) {
	p, err := ParsePolicy(" Abort ")
	require.NoError(t, err)
	require.Equal(t, MalformedAbort, p)

	_, err = ParsePolicy("ignore")
	require.Error(t, err)
}

func TestReadAttributes(t *testing.T) {
	input := "\ufeffPID,gender,story\nu1,f,\"said \"\"hi\"\"\"\nu2,m\nu3,x,y,z\n"
	table, err := ReadAttributes(strings.NewReader(input))
	require.NoError(t, err)
	require.Equal(t, []string{"PID", "gender", "story"}, table.Header())
	require.Equal(t, 3, table.Len())

	rec, ok := table.Lookup("u1")
	require.True(t, ok)
	require.Equal(t, []string{"u1", "f", `said "hi"`}, rec.Values())

	rec, ok = table.Lookup("u2")
	require.True(t, ok)
	require.Equal(t, []string{"u2", "m", models.BlankValue}, rec.Values())

	rec, ok = table.Lookup("u3")
	require.True(t, ok)
	require.Equal(t, []string{"u3", "x", "y"}, rec.Values())
}

func TestReadAttributes_Empty(t *testing.T) {
	_, err := ReadAttributes(strings.NewReader(""))
	require.ErrorIs(t, err, ErrMissingHeader)
}

func TestLoadFiles(t *testing.T) {
	dir := t.TempDir()
	usersPath := filepath.Join(dir, "users.csv")
	msgsPath := filepath.Join(dir, "messages.jsonl")
	require.NoError(t, os.WriteFile(usersPath, []byte("PID,gender\nu1,f\n"), 0o644))
	require.NoError(t, os.WriteFile(msgsPath, []byte(sampleLog), 0o644))

	table, err := LoadAttributes(usersPath)
	require.NoError(t, err)
	require.Equal(t, 1, table.Len())

	store, _, err := LoadMessages(msgsPath, MalformedSkip)
	require.NoError(t, err)
	require.Equal(t, 3, store.Len())

	_, err = LoadAttributes(filepath.Join(dir, "missing.csv"))
	require.Error(t, err)
	require.True(t, errors.Is(err, os.ErrNotExist))

	_, _, err = LoadMessages(filepath.Join(dir, "missing.jsonl"), MalformedSkip)
	require.True(t, errors.Is(err, os.ErrNotExist))
}
