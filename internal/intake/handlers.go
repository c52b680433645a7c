package intake

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"greenroom/internal/content"
	"greenroom/internal/forms"
	"greenroom/internal/ingest"
	"greenroom/internal/logging"
	"greenroom/internal/review"
)

func decodeBody(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("decode request body: %w", err)
	}
	return nil
}

func (s *Server) handleSubmissions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	sub, err := forms.DecodeSubmission(r.Body)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := s.ingestor.Process(r.Context(), sub)
	switch {
	case errors.Is(err, ingest.ErrAlreadyProcessed):
		s.writeJSON(w, http.StatusOK, SubmissionResponse{
			Status:    "already_processed",
			SessionID: result.SessionID,
		})
	case errors.Is(err, ingest.ErrMissingSubmissionID):
		s.writeError(w, http.StatusBadRequest, err.Error())
	case err != nil:
		s.logger.Error("submission ingest failed", logging.Error(err))
		s.writeError(w, http.StatusInternalServerError, err.Error())
	default:
		s.writeJSON(w, http.StatusCreated, SubmissionResponse{
			Status:     "ingested",
			SessionID:  result.SessionID,
			SpeakerIDs: result.SpeakerIDs,
		})
	}
}

func (s *Server) handleRecords(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	recordType := content.TypeSession
	if value := strings.TrimSpace(r.URL.Query().Get("type")); value != "" {
		switch content.RecordType(value) {
		case content.TypeSession, content.TypeSpeaker:
			recordType = content.RecordType(value)
		default:
			s.writeError(w, http.StatusBadRequest, "invalid record type")
			return
		}
	}

	var statuses []content.Status
	for _, value := range r.URL.Query()["status"] {
		status, ok := content.ParseStatus(value)
		if !ok {
			s.writeError(w, http.StatusBadRequest, "invalid status filter")
			return
		}
		statuses = append(statuses, status)
	}

	records, err := s.store.ListRecords(r.Context(), recordType, statuses...)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	summaries := make([]RecordSummary, 0, len(records))
	for _, record := range records {
		summaries = append(summaries, summarize(record))
	}
	s.writeJSON(w, http.StatusOK, map[string][]RecordSummary{"records": summaries})
}

func (s *Server) handleRecord(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	idStr := strings.TrimPrefix(r.URL.Path, "/api/records/")
	if idStr == "" || strings.Contains(idStr, "/") {
		s.writeError(w, http.StatusNotFound, "record not found")
		return
	}
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid record id")
		return
	}

	record, err := s.store.GetRecord(r.Context(), id)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if record == nil {
		s.writeError(w, http.StatusNotFound, "record not found")
		return
	}

	detail := RecordDetail{
		RecordSummary: summarize(record),
		Body:          record.Body,
	}

	meta, err := s.store.Metadata(r.Context(), id)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if len(meta) > 0 {
		detail.Metadata = meta
	}

	if record.Type == content.TypeSession {
		terms := make(map[string][]string)
		for _, taxonomy := range []string{content.TaxonomyCategories, content.TaxonomyLevels, content.TaxonomyEventTypes} {
			assigned, err := s.store.Classification(r.Context(), id, taxonomy)
			if err != nil {
				s.writeError(w, http.StatusInternalServerError, err.Error())
				return
			}
			for _, term := range assigned {
				terms[taxonomy] = append(terms[taxonomy], term.Name)
			}
		}
		if len(terms) > 0 {
			detail.Terms = terms
		}

		speakers, err := s.store.Speakers(r.Context(), id)
		if err != nil {
			s.writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		detail.SpeakerIDs = speakers
	}

	s.writeJSON(w, http.StatusOK, detail)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	stats, err := s.store.Stats(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	records := make(map[string]map[string]int, len(stats))
	for recordType, byStatus := range stats {
		converted := make(map[string]int, len(byStatus))
		for status, count := range byStatus {
			converted[string(status)] = count
		}
		records[string(recordType)] = converted
	}

	s.writeJSON(w, http.StatusOK, StatusResponse{
		Running:   s.running.Load(),
		StorePath: s.store.Path(),
		LockPath:  s.lockPath,
		Records:   records,
	})
}

func (s *Server) handleConfirmation(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	confirmationID := strings.TrimPrefix(r.URL.Path, "/api/confirmations/")
	if confirmationID == "" || strings.Contains(confirmationID, "/") {
		s.writeError(w, http.StatusNotFound, "confirmation not found")
		return
	}

	var req ConfirmationRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	decision, ok := review.ParseDecision(req.Decision)
	if !ok {
		s.writeError(w, http.StatusBadRequest, "decision must be confirm or decline")
		return
	}

	speaker, err := s.reviewer.ProcessConfirmation(r.Context(), confirmationID, review.Response{
		Decision:        decision,
		Technology:      req.Technology,
		VideoRelease:    req.VideoRelease,
		SpecialRequests: req.SpecialRequests,
		Arrival:         req.Arrival,
		Unavailability:  req.Unavailability,
	})
	switch {
	case errors.Is(err, review.ErrUnknownConfirmation):
		s.writeError(w, http.StatusNotFound, "confirmation not found")
	case err != nil:
		s.logger.Error("confirmation failed", logging.Error(err))
		s.writeError(w, http.StatusInternalServerError, err.Error())
	default:
		s.writeJSON(w, http.StatusOK, ConfirmationResponse{
			SpeakerID: speaker.ID,
			Status:    string(speaker.Status),
		})
	}
}
