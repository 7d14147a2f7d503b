package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/aura-hris/timesheet-backend-go/internal/domain/timesheet"
	kafkago "github.com/segmentio/kafka-go"
)

// PunchEvent is the wire shape of one clock event from the terminal
// ingestion pipeline.
type PunchEvent struct {
	EmployeeCode string    `json:"employee_code"`
	Timestamp    time.Time `json:"timestamp"`
	Device       string    `json:"device"`
}

// ConsumePunchEvents folds punch events into daily entries. Duplicates are
// committed and skipped; transient failures leave the message uncommitted
// for redelivery.
func ConsumePunchEvents(
	ctx context.Context,
	reader *kafkago.Reader,
	entryService timesheet.EntryService,
) {
	slog.Info("punch consumer started", "topic", reader.Config().Topic)

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				slog.Info("punch consumer stopped")
				return
			}
			slog.Error("failed to fetch punch message", "error", err)
			continue
		}

		var event PunchEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			slog.Error("failed to decode punch event", "error", err)
			_ = reader.CommitMessages(ctx, msg)
			continue
		}

		_, err = entryService.RecordPunch(ctx, timesheet.RecordPunchRequest{
			EmployeeCode: event.EmployeeCode,
			Timestamp:    event.Timestamp,
			Device:       event.Device,
			Kind:         timesheet.PunchKindDevice,
		})
		if err != nil {
			if errors.Is(err, timesheet.ErrDuplicatePunch) {
				slog.Warn("duplicate punch event, skipping",
					"employee_code", event.EmployeeCode, "timestamp", event.Timestamp)
				_ = reader.CommitMessages(ctx, msg)
				continue
			}
			if errors.Is(err, timesheet.ErrEmployeeCodeRequired) || errors.Is(err, timesheet.ErrTimestampRequired) {
				slog.Error("malformed punch event, skipping",
					"employee_code", event.EmployeeCode, "error", err)
				_ = reader.CommitMessages(ctx, msg)
				continue
			}

			slog.Error("failed to record punch",
				"employee_code", event.EmployeeCode, "timestamp", event.Timestamp, "error", err)
			continue
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			slog.Error("failed to commit punch message", "error", err)
			continue
		}
	}
}
