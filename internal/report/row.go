// Package report assembles the per-message report and its usage statistics.
package report

import (
	"time"

	"github.com/tOgg1/threadreport/internal/models"
)

// MessageColumns names the message-level columns that precede the user
// attribute columns.
var MessageColumns = []string{
	"User ID",
	"New Thread",
	"Type",
	"Date",
	"Subject",
	"Content",
	"Message ID",
	"Parent message ID",
}

// DefaultDateLayout renders dates as US medium dates, e.g. "Mar 4, 2014".
const DefaultDateLayout = "Jan 2, 2006"

const headFlag = "Y"

// Row is one report line: a message joined with its thread owner's attributes.
type Row struct {
	UserID     string
	Head       bool
	Type       string
	Date       string
	Subject    string
	Content    string
	MessageID  string
	ParentID   string
	Attributes models.AttributeRecord
}

// Fields returns the row's values in header order.
func (r Row) Fields() []string {
	head := models.BlankValue
	if r.Head {
		head = headFlag
	}
	fields := make([]string, 0, len(MessageColumns)+len(r.Attributes))
	fields = append(fields,
		r.UserID,
		head,
		r.Type,
		r.Date,
		r.Subject,
		r.Content,
		r.MessageID,
		r.ParentID,
	)
	return append(fields, r.Attributes.Values()...)
}

// Header returns the full report header for the given attribute columns.
func Header(attributeColumns []string) []string {
	header := make([]string, 0, len(MessageColumns)+len(attributeColumns))
	header = append(header, MessageColumns...)
	return append(header, attributeColumns...)
}

// FormatDate renders a Unix timestamp in loc using layout.
func FormatDate(ts int64, layout string, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	if layout == "" {
		layout = DefaultDateLayout
	}
	return time.Unix(ts, 0).In(loc).Format(layout)
}

func orBlank(value string) string {
	if value == "" {
		return models.BlankValue
	}
	return value
}
