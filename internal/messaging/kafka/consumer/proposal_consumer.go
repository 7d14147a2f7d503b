package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/aura-hris/timesheet-backend-go/internal/domain/proposal"
	kafkago "github.com/segmentio/kafka-go"
)

// ProposalApprovedEvent is published by the approval service once a
// proposal reaches approved state.
type ProposalApprovedEvent struct {
	ProposalID string `json:"proposal_id"`
}

// ConsumeProposalApprovals executes approved proposals. Execution is
// idempotent, so at-least-once delivery is safe.
func ConsumeProposalApprovals(
	ctx context.Context,
	reader *kafkago.Reader,
	proposalService proposal.Service,
) {
	slog.Info("proposal approval consumer started", "topic", reader.Config().Topic)

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				slog.Info("proposal approval consumer stopped")
				return
			}
			slog.Error("failed to fetch proposal message", "error", err)
			continue
		}

		var event ProposalApprovedEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			slog.Error("failed to decode proposal event", "error", err)
			_ = reader.CommitMessages(ctx, msg)
			continue
		}

		if err := proposalService.Execute(ctx, event.ProposalID); err != nil {
			if errors.Is(err, proposal.ErrProposalNotFound) || errors.Is(err, proposal.ErrProposalNotApproved) {
				slog.Error("unexecutable proposal event, skipping",
					"proposal_id", event.ProposalID, "error", err)
				_ = reader.CommitMessages(ctx, msg)
				continue
			}

			slog.Error("failed to execute proposal", "proposal_id", event.ProposalID, "error", err)
			continue
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			slog.Error("failed to commit proposal message", "error", err)
			continue
		}
	}
}
