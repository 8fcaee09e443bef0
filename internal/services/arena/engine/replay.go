package engine

import (
	"context"
	"strconv"

	apperrors "github.com/louisbranch/stakepot/internal/platform/errors"
	"github.com/louisbranch/stakepot/internal/services/arena/domain/event"
)

const replayPageSize = 500

// Replay loads the journal into memory, in order, from the position
// after the last applied event. It runs the same apply functions as
// live commits and never touches the token gateway: transfers already
// happened when the events were first written. Call it once after New,
// before serving traffic.
func (e *Engine) Replay(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	for {
		records, err := e.journal.ListEventsPage(ctx, e.lastSeq, replayPageSize)
		if err != nil {
			return apperrors.Wrap(apperrors.CodeStorageFailure, "list journal events", err)
		}
		if len(records) == 0 {
			return nil
		}
		for _, record := range records {
			evt := event.Event{
				Seq:         record.Seq,
				MatchID:     record.MatchID,
				Type:        event.Type(record.Type),
				Actor:       record.Actor,
				Timestamp:   record.CreatedAt,
				PayloadJSON: record.PayloadJSON,
			}
			if err := e.apply(evt); err != nil {
				return apperrors.WrapWithMetadata(apperrors.CodeStorageFailure, "replay journal event", map[string]string{
					"Seq": strconv.FormatInt(record.Seq, 10),
				}, err)
			}
		}
	}
}
