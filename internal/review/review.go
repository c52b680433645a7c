// Package review handles the speaker confirmation workflow that runs
// after ingestion: issuing confirmation ids and applying speaker
// responses to their records.
package review

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"greenroom/internal/content"
	"greenroom/internal/logging"
	"greenroom/internal/notifications"
)

var (
	// ErrUnknownConfirmation signals a confirmation id with no
	// matching speaker record.
	ErrUnknownConfirmation = errors.New("unknown confirmation id")
	// ErrInvalidDecision signals a response that is neither a
	// confirmation nor a decline.
	ErrInvalidDecision = errors.New("invalid confirmation decision")
)

// Decision is a speaker's response to their acceptance notice.
type Decision string

const (
	DecisionConfirm Decision = "confirm"
	DecisionDecline Decision = "decline"
)

// ParseDecision converts a string into a known Decision.
func ParseDecision(value string) (Decision, bool) {
	switch Decision(strings.ToLower(strings.TrimSpace(value))) {
	case DecisionConfirm:
		return DecisionConfirm, true
	case DecisionDecline:
		return DecisionDecline, true
	}
	return "", false
}

// Response carries everything a speaker submits with their decision.
// Empty fields are not written to the record.
type Response struct {
	Decision        Decision
	Technology      string
	VideoRelease    string
	SpecialRequests string
	Arrival         string
	Unavailability  string
}

// Reviewer applies confirmation responses to speaker records.
type Reviewer struct {
	store    *content.Store
	notifier notifications.Service
	logger   *slog.Logger
}

// New builds a Reviewer. A nil notifier suppresses notifications.
func New(store *content.Store, notifier notifications.Service, logger *slog.Logger) *Reviewer {
	return &Reviewer{
		store:    store,
		notifier: notifier,
		logger:   logging.NewComponentLogger(logger, "review"),
	}
}

// ConfirmationID returns the speaker's confirmation id, minting one on
// first use. The id is stable across calls.
func (r *Reviewer) ConfirmationID(ctx context.Context, speakerID int64) (string, error) {
	record, err := r.store.GetRecord(ctx, speakerID)
	if err != nil {
		return "", err
	}
	if record == nil || record.Type != content.TypeSpeaker {
		return "", fmt.Errorf("speaker record %d not found", speakerID)
	}

	existing, err := r.store.MetadataValue(ctx, speakerID, content.MetaConfirmationID)
	if err != nil {
		return "", err
	}
	if existing != "" {
		return existing, nil
	}

	id := uuid.NewString()
	if err := r.store.SetMetadata(ctx, speakerID, content.MetaConfirmationID, id, true); err != nil {
		return "", fmt.Errorf("store confirmation id: %w", err)
	}
	// A concurrent mint may have won the unique write; read back the
	// stored value so both callers return the same id.
	stored, err := r.store.MetadataValue(ctx, speakerID, content.MetaConfirmationID)
	if err != nil {
		return "", err
	}
	return stored, nil
}

// ProcessConfirmation resolves a confirmation id to its speaker and
// applies the response: status moves to confirmed or declined and any
// provided logistics fields are stored as metadata.
func (r *Reviewer) ProcessConfirmation(ctx context.Context, confirmationID string, response Response) (*content.Record, error) {
	confirmationID = strings.TrimSpace(confirmationID)
	if confirmationID == "" {
		return nil, ErrUnknownConfirmation
	}
	if response.Decision != DecisionConfirm && response.Decision != DecisionDecline {
		return nil, ErrInvalidDecision
	}

	speaker, err := r.store.FindByMetadata(ctx, content.MetaConfirmationID, confirmationID)
	if err != nil {
		return nil, fmt.Errorf("resolve confirmation: %w", err)
	}
	if speaker == nil || speaker.Type != content.TypeSpeaker {
		return nil, ErrUnknownConfirmation
	}

	status := content.StatusConfirmed
	if response.Decision == DecisionDecline {
		status = content.StatusDeclined
	}
	if err := r.store.SetStatus(ctx, speaker.ID, status); err != nil {
		return nil, err
	}
	speaker.Status = status

	meta := []struct {
		key   string
		value string
	}{
		{content.MetaTechnology, response.Technology},
		{content.MetaVideoRelease, response.VideoRelease},
		{content.MetaSpecialRequests, response.SpecialRequests},
		{content.MetaArrival, response.Arrival},
		{content.MetaUnavailability, response.Unavailability},
	}
	for _, kv := range meta {
		if strings.TrimSpace(kv.value) == "" {
			continue
		}
		if err := r.store.ReplaceMetadata(ctx, speaker.ID, kv.key, kv.value); err != nil {
			return nil, fmt.Errorf("store response %s: %w", kv.key, err)
		}
	}

	sessionTitle, err := r.sessionTitleFor(ctx, speaker.ID)
	if err != nil {
		r.logger.Warn("session lookup for notification failed", logging.Error(err))
	}

	r.logger.Info("confirmation processed",
		logging.Int64("speaker_id", speaker.ID),
		logging.String("status", string(status)),
	)
	r.notify(ctx, status, speaker.Title, sessionTitle)
	return speaker, nil
}

func (r *Reviewer) sessionTitleFor(ctx context.Context, speakerID int64) (string, error) {
	sessions, err := r.store.Sessions(ctx, speakerID)
	if err != nil || len(sessions) == 0 {
		return "", err
	}
	record, err := r.store.GetRecord(ctx, sessions[0])
	if err != nil || record == nil {
		return "", err
	}
	return record.Title, nil
}

func (r *Reviewer) notify(ctx context.Context, status content.Status, speakerName, sessionTitle string) {
	if r.notifier == nil {
		return
	}
	var err error
	switch status {
	case content.StatusConfirmed:
		err = r.notifier.NotifySpeakerConfirmed(ctx, speakerName, sessionTitle)
	case content.StatusDeclined:
		err = r.notifier.NotifySpeakerDeclined(ctx, speakerName, sessionTitle)
	}
	if err != nil {
		r.logger.Warn("confirmation notification failed", logging.Error(err))
	}
}
