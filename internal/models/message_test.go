package models

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMessageOrigin(t *testing.T) {
	cases := []struct {
		typ  MessageType
		want Origin
	}{
		{MessageTypeQuestion, OriginUser},
		{"Question", OriginUser},
		{MessageTypeMail, OriginSystem},
		{"MAIL", OriginSystem},
		{MessageTypeNote, OriginNote},
		{"", OriginNote},
		{"survey", OriginNote},
	}
	for _, tc := range cases {
		msg := Message{ID: "m1", UserID: "u1", Type: tc.typ}
		require.Equal(t, tc.want, msg.Origin(), "type %q", tc.typ)
	}
}

func TestMessageIsRoot(t *testing.T) {
	require.True(t, (&Message{ID: "m1"}).IsRoot())
	require.True(t, (&Message{ID: "m1", ParentID: "  "}).IsRoot())
	require.False(t, (&Message{ID: "m2", ParentID: "m1"}).IsRoot())
}

func TestMessageValidate(t *testing.T) {
	require.NoError(t, (&Message{ID: "m1", UserID: "u1"}).Validate())

	err := (&Message{UserID: "u1"}).Validate()
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrInvalidMessage))

	err = (&Message{ID: "m1", UserID: "u1", ParentID: "m1"}).Validate()
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrSelfParent))
}

func TestAttributeTablePadsAndTrims(t *testing.T) {
	table := NewAttributeTable([]string{"PID", "gender", "stage"})

	require.Equal(t, 0, table.Put([]string{"u1", "f"}))
	require.Equal(t, 1, table.Put([]string{"u2", "m", "II", "extra"}))

	rec, ok := table.Lookup("u1")
	require.True(t, ok)
	require.Equal(t, []string{"u1", "f", BlankValue}, rec.Values())
	require.Equal(t, "stage", rec[2].Name)

	rec, ok = table.Lookup("u2")
	require.True(t, ok)
	require.Equal(t, []string{"u2", "m", "II"}, rec.Values())

	_, ok = table.Lookup("missing")
	require.False(t, ok)
	require.Equal(t, []string{BlankValue, BlankValue, BlankValue}, table.Blank().Values())
	require.Equal(t, 2, table.Len())
}

func TestAttributeTableLastRowWins(t *testing.T) {
	table := NewAttributeTable([]string{"PID", "gender"})
	table.Put([]string{"u1", "f"})
	table.Put([]string{"u1", "m"})

	rec, ok := table.Lookup("u1")
	require.True(t, ok)
	require.Equal(t, "m", rec[1].Value)
	require.Equal(t, 1, table.Len())
}
