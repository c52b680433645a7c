// Package ingest turns form submissions into linked session and
// speaker records. Processing is at-most-once per submission id.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"greenroom/internal/content"
	"greenroom/internal/extract"
	"greenroom/internal/forms"
	"greenroom/internal/logging"
	"greenroom/internal/media"
	"greenroom/internal/notifications"
)

var (
	// ErrAlreadyProcessed signals that the submission produced records
	// on an earlier run. It is a no-op outcome, not a failure.
	ErrAlreadyProcessed = errors.New("submission already processed")
	// ErrMissingSubmissionID signals a submission without an id.
	ErrMissingSubmissionID = errors.New("submission id missing")
)

// ImageFetcher downloads speaker photos. Fetch failures are non-fatal
// during ingest.
type ImageFetcher interface {
	Fetch(ctx context.Context, url string) (*media.Image, error)
}

// Result reports what one submission materialized.
type Result struct {
	SessionID  int64
	SpeakerIDs []int64
}

// Ingestor processes submissions against the content store.
type Ingestor struct {
	store       *content.Store
	fetcher     ImageFetcher
	notifier    notifications.Service
	logger      *slog.Logger
	maxSpeakers int
}

// New builds an Ingestor. A nil fetcher disables photo attachment and
// a nil notifier suppresses notifications.
func New(store *content.Store, fetcher ImageFetcher, notifier notifications.Service, logger *slog.Logger, maxSpeakers int) *Ingestor {
	if logger == nil {
		logger = logging.NewNop()
	}
	if maxSpeakers <= 0 || maxSpeakers > 2 {
		maxSpeakers = 2
	}
	return &Ingestor{
		store:       store,
		fetcher:     fetcher,
		notifier:    notifier,
		logger:      logger.With(logging.String("component", "ingest")),
		maxSpeakers: maxSpeakers,
	}
}

// Process runs the full pipeline for one submission: dedup guard,
// field extraction, then materialization. Writes are not transactional
// across records; the journal records which steps committed so partial
// ingests can be inspected and repaired.
func (in *Ingestor) Process(ctx context.Context, sub *forms.Submission) (*Result, error) {
	if sub == nil || strings.TrimSpace(sub.ID) == "" {
		return nil, ErrMissingSubmissionID
	}
	submissionID := strings.TrimSpace(sub.ID)
	log := in.logger.With(logging.String("submission_id", submissionID))

	existing, err := in.store.FindBySubmission(ctx, content.TypeSession, submissionID)
	if err != nil {
		return nil, fmt.Errorf("dedup lookup: %w", err)
	}
	if existing != nil {
		log.Info("submission already processed", logging.Int64("session_id", existing.ID))
		return &Result{SessionID: existing.ID}, ErrAlreadyProcessed
	}
	speaker, err := in.store.FindBySubmission(ctx, content.TypeSpeaker, submissionID)
	if err != nil {
		return nil, fmt.Errorf("dedup lookup: %w", err)
	}
	if speaker != nil {
		log.Info("submission already produced speaker records", logging.Int64("speaker_id", speaker.ID))
		result := &Result{}
		if sessions, err := in.store.Sessions(ctx, speaker.ID); err == nil && len(sessions) > 0 {
			result.SessionID = sessions[0]
		}
		return result, ErrAlreadyProcessed
	}

	session, speakers := extract.Extract(sub)

	sessionID, err := in.materializeSession(ctx, sub, session, submissionID)
	if err != nil {
		in.notifyError(ctx, err, "ingest")
		return nil, err
	}
	log = log.With(logging.Int64("session_id", sessionID))

	result := &Result{SessionID: sessionID}
	if len(speakers) > in.maxSpeakers {
		speakers = speakers[:in.maxSpeakers]
	}
	for i, draft := range speakers {
		speakerID, err := in.materializeSpeaker(ctx, log, sessionID, submissionID, i+1, draft)
		if err != nil {
			in.notifyError(ctx, err, "ingest")
			return result, err
		}
		if speakerID != 0 {
			result.SpeakerIDs = append(result.SpeakerIDs, speakerID)
		}
	}

	if err := in.store.Journal(ctx, submissionID, content.StepIngestCompleted, sessionID, ""); err != nil {
		return result, fmt.Errorf("journal completion: %w", err)
	}
	log.Info("submission ingested", logging.Int("speakers", len(result.SpeakerIDs)))
	if in.notifier != nil {
		if err := in.notifier.NotifySubmissionIngested(ctx, session.Title, len(result.SpeakerIDs)); err != nil {
			log.Warn("ingest notification failed", logging.Error(err))
		}
	}
	return result, nil
}

func (in *Ingestor) materializeSession(ctx context.Context, sub *forms.Submission, draft extract.SessionDraft, submissionID string) (int64, error) {
	title := draft.Title
	if title == "" {
		title = fmt.Sprintf("Untitled submission %s", submissionID)
	}

	var sessionID int64
	if sub.SessionRecordID != 0 {
		sessionID = sub.SessionRecordID
		// Stamp the submission id so the dedup guard matches this
		// record on later runs.
		update := content.RecordUpdate{Title: &title, SubmissionID: &submissionID}
		if draft.Description != "" {
			update.Body = &draft.Description
		}
		if err := in.store.UpdateRecord(ctx, sessionID, update); err != nil {
			return 0, fmt.Errorf("update session record: %w", err)
		}
		if err := in.store.Journal(ctx, submissionID, content.StepSessionUpdated, sessionID, ""); err != nil {
			return 0, fmt.Errorf("journal session update: %w", err)
		}
	} else {
		id, err := in.store.InsertRecord(ctx, content.TypeSession, title, draft.Description, content.StatusPending, submissionID)
		if err != nil {
			return 0, fmt.Errorf("insert session record: %w", err)
		}
		sessionID = id
		if err := in.store.Journal(ctx, submissionID, content.StepSessionCreated, sessionID, ""); err != nil {
			return 0, fmt.Errorf("journal session create: %w", err)
		}
	}

	categoryIDs, err := in.resolveTerms(ctx, content.TaxonomyCategories, draft.Categories)
	if err != nil {
		return 0, err
	}
	otherIDs, err := in.resolveTerms(ctx, content.TaxonomyCategories, draft.OtherCategories)
	if err != nil {
		return 0, err
	}
	if err := in.store.SetClassification(ctx, sessionID, content.TaxonomyCategories, append(categoryIDs, otherIDs...), true); err != nil {
		return 0, fmt.Errorf("assign categories: %w", err)
	}

	levelIDs, err := in.resolveTerms(ctx, content.TaxonomyLevels, draft.Levels)
	if err != nil {
		return 0, err
	}
	if err := in.store.SetClassification(ctx, sessionID, content.TaxonomyLevels, levelIDs, true); err != nil {
		return 0, fmt.Errorf("assign technical levels: %w", err)
	}

	eventType, err := in.store.FindOrCreateTerm(ctx, content.TaxonomyEventTypes, content.EventTypeSession)
	if err != nil {
		return 0, fmt.Errorf("resolve event type term: %w", err)
	}
	if err := in.store.SetClassification(ctx, sessionID, content.TaxonomyEventTypes, []int64{eventType}, true); err != nil {
		return 0, fmt.Errorf("assign event type: %w", err)
	}

	if err := in.store.Journal(ctx, submissionID, content.StepTermsAssigned, sessionID, ""); err != nil {
		return 0, fmt.Errorf("journal term assignment: %w", err)
	}
	return sessionID, nil
}

func (in *Ingestor) materializeSpeaker(ctx context.Context, log *slog.Logger, sessionID int64, submissionID string, position int, draft extract.SpeakerDraft) (int64, error) {
	if !draft.HasEmail() {
		return 0, nil
	}

	account, err := in.store.FindAccountByEmail(ctx, draft.Email)
	if err != nil {
		return 0, fmt.Errorf("account lookup: %w", err)
	}

	name := draft.DisplayName()
	if name == "" && account != nil {
		name = strings.TrimSpace(account.DisplayName)
	}
	if name == "" {
		log.Warn("skipping speaker without a derivable name", logging.Int("position", position))
		return 0, nil
	}

	speakerID, err := in.store.InsertRecord(ctx, content.TypeSpeaker, name, draft.Bio, content.StatusPending, submissionID)
	if err != nil {
		return 0, fmt.Errorf("insert speaker record: %w", err)
	}
	if err := in.store.Journal(ctx, submissionID, content.StepSpeakerCreated, speakerID, name); err != nil {
		return 0, fmt.Errorf("journal speaker create: %w", err)
	}

	meta := []struct {
		key   string
		value string
	}{
		{content.MetaEmail, draft.Email},
		{content.MetaWebsite, draft.Website},
		{content.MetaTwitter, draft.Twitter},
		{content.MetaLinkedIn, draft.LinkedIn},
		{content.MetaCompany, draft.Company},
		{content.MetaCompanyWebsite, draft.CompanyWebsite},
		{content.MetaPosition, draft.Position},
	}
	for _, kv := range meta {
		if kv.value == "" {
			continue
		}
		if err := in.store.SetMetadata(ctx, speakerID, kv.key, kv.value, true); err != nil {
			return 0, fmt.Errorf("write speaker metadata %s: %w", kv.key, err)
		}
	}
	if account != nil {
		if err := in.store.SetMetadata(ctx, speakerID, content.MetaAccountID, strconv.FormatInt(account.ID, 10), true); err != nil {
			return 0, fmt.Errorf("write speaker account link: %w", err)
		}
	}

	if draft.PhotoURL != "" {
		in.attachPhoto(ctx, log, speakerID, submissionID, draft.PhotoURL)
	}

	if err := in.store.LinkSpeaker(ctx, sessionID, speakerID); err != nil {
		return 0, fmt.Errorf("link speaker: %w", err)
	}
	if err := in.store.Journal(ctx, submissionID, content.StepSpeakerLinked, speakerID, ""); err != nil {
		return 0, fmt.Errorf("journal speaker link: %w", err)
	}
	return speakerID, nil
}

// attachPhoto downloads and attaches a speaker photo. Failures leave
// the speaker record intact.
func (in *Ingestor) attachPhoto(ctx context.Context, log *slog.Logger, speakerID int64, submissionID, url string) {
	if _, ok := media.ImageFileName(url); !ok {
		log.Warn("skipping photo with unsupported url", logging.String("url", url))
		return
	}
	if in.fetcher == nil {
		return
	}
	img, err := in.fetcher.Fetch(ctx, url)
	if err != nil {
		log.Warn("photo fetch failed", logging.String("url", url), logging.Error(err))
		return
	}
	if _, err := in.store.AttachImage(ctx, speakerID, img.FileName, img.ContentType, img.Data); err != nil {
		log.Warn("photo attach failed", logging.Error(err))
		return
	}
	if err := in.store.Journal(ctx, submissionID, content.StepImageAttached, speakerID, img.FileName); err != nil {
		log.Warn("journal photo attach failed", logging.Error(err))
	}
}

// resolveTerms maps multiselect values to term ids. Numeric values
// reference existing terms directly; anything else is looked up or
// created by name.
func (in *Ingestor) resolveTerms(ctx context.Context, taxonomy string, values []string) ([]int64, error) {
	var ids []int64
	for _, value := range values {
		if id, err := strconv.ParseInt(value, 10, 64); err == nil {
			ids = append(ids, id)
			continue
		}
		id, err := in.store.FindOrCreateTerm(ctx, taxonomy, value)
		if err != nil {
			return nil, fmt.Errorf("resolve %s term %q: %w", taxonomy, value, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (in *Ingestor) notifyError(ctx context.Context, err error, label string) {
	if in.notifier == nil {
		return
	}
	if nerr := in.notifier.NotifyError(ctx, err, label); nerr != nil {
		in.logger.Warn("error notification failed", logging.Error(nerr))
	}
}
