// Package source reads the message log and the user attribute table.
package source

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/tOgg1/threadreport/internal/logging"
	"github.com/tOgg1/threadreport/internal/models"
	"github.com/tOgg1/threadreport/internal/threading"
)

// maxLineSize bounds a single message record.
const maxLineSize = 16 << 20

// ErrMalformedRecord marks a message line that could not be used.
var ErrMalformedRecord = errors.New("malformed record")

// MalformedPolicy decides what happens to a record that fails to parse.
type MalformedPolicy string

const (
	// MalformedSkip logs the record and keeps reading.
	MalformedSkip MalformedPolicy = "skip"
	// MalformedAbort fails the whole load.
	MalformedAbort MalformedPolicy = "abort"
)

// ParsePolicy validates a policy name.
func ParsePolicy(value string) (MalformedPolicy, error) {
	switch p := MalformedPolicy(strings.ToLower(strings.TrimSpace(value))); p {
	case MalformedSkip, MalformedAbort:
		return p, nil
	default:
		return "", fmt.Errorf("unknown malformed-record policy %q (want skip or abort)", value)
	}
}

// RecordError reports a bad line of the message log.
type RecordError struct {
	Line int
	Err  error
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *RecordError) Unwrap() error { return e.Err }

// Is makes every RecordError match ErrMalformedRecord.
func (e *RecordError) Is(target error) bool { return target == ErrMalformedRecord }

// record is the on-disk shape of a message line.
type record struct {
	ID      string  `json:"_id"`
	Parent  *string `json:"parent"`
	User    string  `json:"user"`
	Subject *string `json:"subject"`
	Content *string `json:"content"`
	Type    string  `json:"type"`
	Noted   int64   `json:"noted"`
}

func (r record) message() models.Message {
	msg := models.Message{
		ID:        r.ID,
		UserID:    r.User,
		Subject:   r.Subject,
		Type:      models.MessageType(r.Type),
		Timestamp: r.Noted,
	}
	if r.Parent != nil {
		msg.ParentID = *r.Parent
	}
	if r.Content != nil {
		msg.Body = *r.Content
	}
	return msg
}

// LoadStats summarizes a message load.
type LoadStats struct {
	Lines   int
	Loaded  int
	Skipped int
}

// ReadMessages parses one JSON record per line into a Store. Blank lines
// are ignored. Malformed lines, invalid messages and duplicate ids are
// handled according to policy.
func ReadMessages(r io.Reader, policy MalformedPolicy) (*threading.Store, LoadStats, error) {
	log := logging.Component("ingest")
	store := threading.NewStore(1024)
	var stats LoadStats

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for scanner.Scan() {
		stats.Lines++
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}

		err := addLine(store, line)
		if err == nil {
			stats.Loaded++
			continue
		}
		recErr := &RecordError{Line: stats.Lines, Err: err}
		if policy == MalformedAbort {
			return nil, stats, recErr
		}
		stats.Skipped++
		log.Warn().
			Int("line", stats.Lines).
			Str("preview", logging.Preview(line)).
			Err(err).
			Msg("skipping malformed message record")
	}
	if err := scanner.Err(); err != nil {
		return nil, stats, fmt.Errorf("read messages: %w", err)
	}
	return store, stats, nil
}

func addLine(store *threading.Store, line string) error {
	var rec record
	if err := json.Unmarshal([]byte(line), &rec); err != nil {
		return err
	}
	return store.Add(rec.message())
}

// LoadMessages opens path and reads it with ReadMessages.
func LoadMessages(path string, policy MalformedPolicy) (*threading.Store, LoadStats, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, LoadStats{}, fmt.Errorf("open messages %s: %w", path, err)
	}
	defer file.Close()

	store, stats, err := ReadMessages(file, policy)
	if err != nil {
		return nil, stats, fmt.Errorf("load messages %s: %w", path, err)
	}
	return store, stats, nil
}
