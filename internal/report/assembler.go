package report

import (
	"context"
	"fmt"
	"time"

	"github.com/tOgg1/threadreport/internal/logging"
	"github.com/tOgg1/threadreport/internal/markup"
	"github.com/tOgg1/threadreport/internal/models"
	"github.com/tOgg1/threadreport/internal/threading"
)

// Options tunes how rows are rendered.
type Options struct {
	// Converter reduces message bodies to plain text. Defaults to a
	// strict markup stripper.
	Converter markup.Converter

	// DateLayout is the Go layout of the Date column.
	DateLayout string

	// Location is the zone the Date column is rendered in. Defaults to UTC.
	Location *time.Location
}

// Assembler walks a forest user by user and streams the report into a sink.
type Assembler struct {
	forest *threading.Forest
	attrs  *models.AttributeTable
	sink   Sink
	opts   Options
}

// NewAssembler wires an assembler. The sink is not closed by Run.
func NewAssembler(forest *threading.Forest, attrs *models.AttributeTable, sink Sink, opts Options) *Assembler {
	if opts.Converter == nil {
		opts.Converter = markup.NewStripper()
	}
	if opts.DateLayout == "" {
		opts.DateLayout = DefaultDateLayout
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	return &Assembler{forest: forest, attrs: attrs, sink: sink, opts: opts}
}

// Run writes the header and every thread of every user, users ascending,
// threads in the order their roots were read. It returns the statistics
// gathered along the way.
func (a *Assembler) Run(ctx context.Context) (*Stats, error) {
	log := logging.Component("assemble")
	stats := newStats()

	if err := a.sink.WriteHeader(ctx, Header(a.attrs.Header())); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}

	missing := 0
	for _, userID := range a.forest.Users() {
		attrs, ok := a.attrs.Lookup(userID)
		if !ok {
			missing++
			log.Debug().Str("user", userID).Msg("no attribute row, using blank attributes")
			attrs = a.attrs.Blank()
		}

		for _, rootIdx := range a.forest.Roots(userID) {
			thread, err := a.forest.Thread(rootIdx)
			if err != nil {
				return nil, err
			}
			if err := a.writeThread(ctx, userID, thread, attrs); err != nil {
				return nil, err
			}
			stats.addThread(userID, thread.Root.Origin(), thread.Size())
		}
	}

	if missing > 0 {
		log.Warn().Int("users", missing).Msg("users without attribute rows")
	}
	if orphans := len(a.forest.Orphans()); orphans > 0 {
		log.Warn().Int("messages", orphans).Msg("messages with unknown parent left out of the report")
	}
	return stats, nil
}

func (a *Assembler) writeThread(ctx context.Context, owner string, thread *threading.Thread, attrs models.AttributeRecord) error {
	if err := a.sink.WriteRow(ctx, a.row(owner, thread.Root, true, attrs)); err != nil {
		return fmt.Errorf("write message %s: %w", thread.Root.ID, err)
	}
	for _, msg := range thread.Descendants {
		if err := a.sink.WriteRow(ctx, a.row(owner, msg, false, attrs)); err != nil {
			return fmt.Errorf("write message %s: %w", msg.ID, err)
		}
	}
	return nil
}

func (a *Assembler) row(owner string, msg *models.Message, head bool, attrs models.AttributeRecord) Row {
	subject := models.BlankValue
	if msg.Subject != nil {
		subject = *msg.Subject
	}
	return Row{
		UserID:     owner,
		Head:       head,
		Type:       string(msg.Type),
		Date:       FormatDate(msg.Timestamp, a.opts.DateLayout, a.opts.Location),
		Subject:    subject,
		Content:    a.opts.Converter.PlainText(msg.Body),
		MessageID:  msg.ID,
		ParentID:   orBlank(msg.ParentID),
		Attributes: attrs,
	}
}
