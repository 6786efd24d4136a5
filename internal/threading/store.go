// Package threading rebuilds conversation threads from parent-linked messages.
package threading

import (
	"errors"
	"fmt"

	"github.com/tOgg1/threadreport/internal/models"
)

// ErrDuplicateID is returned when a message id is already stored.
var ErrDuplicateID = errors.New("duplicate message id")

// Store is an arena of messages indexed by id. Messages keep their
// insertion order, which is the order they were read from the log.
type Store struct {
	messages []models.Message
	index    map[string]int
}

// NewStore returns an empty store sized for n messages.
func NewStore(n int) *Store {
	return &Store{
		messages: make([]models.Message, 0, n),
		index:    make(map[string]int, n),
	}
}

// Add validates and appends a message.
func (s *Store) Add(msg models.Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}
	if _, ok := s.index[msg.ID]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateID, msg.ID)
	}
	s.index[msg.ID] = len(s.messages)
	s.messages = append(s.messages, msg)
	return nil
}

// Lookup returns the arena index of id.
func (s *Store) Lookup(id string) (int, bool) {
	idx, ok := s.index[id]
	return idx, ok
}

// At returns the message stored at idx.
func (s *Store) At(idx int) *models.Message {
	return &s.messages[idx]
}

// Len returns the number of stored messages.
func (s *Store) Len() int {
	return len(s.messages)
}
