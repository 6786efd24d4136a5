package report

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/tOgg1/threadreport/internal/models"
)

// StatsFormat selects how Stats.Write renders the summaries.
type StatsFormat string

const (
	// StatsCSV prints comma-joined lines, one per record.
	StatsCSV StatsFormat = "csv"
	// StatsTable prints aligned columns for reading in a terminal.
	StatsTable StatsFormat = "table"
)

// ParseStatsFormat validates a stats format name.
func ParseStatsFormat(value string) (StatsFormat, error) {
	switch f := StatsFormat(strings.ToLower(strings.TrimSpace(value))); f {
	case StatsCSV, StatsTable:
		return f, nil
	default:
		return "", fmt.Errorf("unknown stats format %q (want csv or table)", value)
	}
}

// UserStats counts one user's threads and messages.
type UserStats struct {
	Threads  int
	Messages int
}

// Stats aggregates counts over one assembly pass.
type Stats struct {
	Threads       int
	Messages      int
	UserStarted   int
	SystemStarted int
	Notes         int

	// Users is keyed by the thread owner's id.
	Users map[string]*UserStats

	// ThreadSizes maps a thread size (root included) to the number of
	// threads of that size.
	ThreadSizes map[int]int
}

func newStats() *Stats {
	return &Stats{
		Users:       make(map[string]*UserStats),
		ThreadSizes: make(map[int]int),
	}
}

// addThread records a finished thread owned by userID.
func (s *Stats) addThread(userID string, origin models.Origin, size int) {
	s.Threads++
	s.Messages += size
	switch origin {
	case models.OriginUser:
		s.UserStarted++
	case models.OriginSystem:
		s.SystemStarted++
	default:
		s.Notes++
	}

	user := s.Users[userID]
	if user == nil {
		user = &UserStats{}
		s.Users[userID] = user
	}
	user.Threads++
	user.Messages += size

	s.ThreadSizes[size]++
}

// UniqueUsers returns the number of users owning at least one thread.
func (s *Stats) UniqueUsers() int {
	return len(s.Users)
}

// UserIDs returns the user ids in ascending order.
func (s *Stats) UserIDs() []string {
	ids := make([]string, 0, len(s.Users))
	for id := range s.Users {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Sizes returns the distinct thread sizes in ascending order.
func (s *Stats) Sizes() []int {
	sizes := make([]int, 0, len(s.ThreadSizes))
	for size := range s.ThreadSizes {
		sizes = append(sizes, size)
	}
	sort.Ints(sizes)
	return sizes
}

// globalLines holds the six global counters with their labels.
func (s *Stats) globalLines() [][]string {
	return [][]string{
		{"Number of unique users", strconv.Itoa(s.UniqueUsers())},
		{"Number of messages", strconv.Itoa(s.Messages)},
		{"Number of threads", strconv.Itoa(s.Threads)},
		{"Number of threads started by user", strconv.Itoa(s.UserStarted)},
		{"Number of threads started by CC", strconv.Itoa(s.SystemStarted)},
		{"Number of notes", strconv.Itoa(s.Notes)},
	}
}

func (s *Stats) userLines() [][]string {
	ids := s.UserIDs()
	lines := make([][]string, 0, len(ids))
	for _, id := range ids {
		user := s.Users[id]
		lines = append(lines, []string{id, strconv.Itoa(user.Threads), strconv.Itoa(user.Messages)})
	}
	return lines
}

func (s *Stats) sizeLines() [][]string {
	sizes := s.Sizes()
	lines := make([][]string, 0, len(sizes))
	for _, size := range sizes {
		lines = append(lines, []string{strconv.Itoa(size), strconv.Itoa(s.ThreadSizes[size])})
	}
	return lines
}

var (
	userHeader = []string{"UserId", "Number of threads", "Number of messages"}
	sizeHeader = []string{"Thread size", "Number of threads"}
)

// Write prints the global, per-user and thread-size summaries.
func (s *Stats) Write(w io.Writer, format StatsFormat) error {
	if format == StatsTable {
		return s.writeTables(w)
	}

	out := bufio.NewWriter(w)
	var writeErr error
	writeLine := func(fields []string) {
		if writeErr != nil {
			return
		}
		_, writeErr = out.WriteString(strings.Join(fields, ",") + "\n")
	}

	for _, line := range s.globalLines() {
		writeLine(line)
	}
	writeLine(userHeader)
	for _, line := range s.userLines() {
		writeLine(line)
	}
	writeLine(sizeHeader)
	for _, line := range s.sizeLines() {
		writeLine(line)
	}
	if writeErr != nil {
		return writeErr
	}
	return out.Flush()
}

func (s *Stats) writeTables(w io.Writer) error {
	if err := writeTable(w, nil, s.globalLines()); err != nil {
		return err
	}
	if _, err := io.WriteString(w, "\n"); err != nil {
		return err
	}
	if err := writeTable(w, userHeader, s.userLines()); err != nil {
		return err
	}
	if _, err := io.WriteString(w, "\n"); err != nil {
		return err
	}
	return writeTable(w, sizeHeader, s.sizeLines())
}
