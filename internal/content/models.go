package content

import (
	"strings"
	"time"
)

// RecordType identifies the kind of content record.
type RecordType string

const (
	TypeSession RecordType = "session"
	TypeSpeaker RecordType = "speaker"
)

// Status represents the review lifecycle of a content record.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusDeclined  Status = "declined"
	StatusPublished Status = "published"
)

var allStatuses = []Status{
	StatusPending,
	StatusConfirmed,
	StatusDeclined,
	StatusPublished,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

// AllStatuses returns the ordered list of known statuses.
func AllStatuses() []Status {
	cp := make([]Status, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	if _, ok := statusSet[normalized]; !ok {
		return "", false
	}
	return normalized, true
}

// Taxonomies used to classify session records.
const (
	TaxonomyCategories = "session_categories"
	TaxonomyLevels     = "session_technical"
	TaxonomyEventTypes = "event_types"
)

// EventTypeSession is the fixed event-type term assigned to every ingested session.
const EventTypeSession = "session"

// Metadata keys written on speaker records.
const (
	MetaEmail           = "email"
	MetaWebsite         = "website"
	MetaCompany         = "company"
	MetaCompanyWebsite  = "company_website"
	MetaPosition        = "position"
	MetaTwitter         = "twitter"
	MetaLinkedIn        = "linkedin"
	MetaAccountID       = "account_id"
	MetaConfirmationID  = "confirmation_id"
	MetaTechnology      = "technology"
	MetaVideoRelease    = "video_release"
	MetaSpecialRequests = "special_requests"
	MetaArrival         = "arrival"
	MetaUnavailability  = "unavailability"
)

// Record is a persisted session or speaker content record.
type Record struct {
	ID           int64
	Type         RecordType
	Title        string
	Body         string
	Status       Status
	SubmissionID string
	ImageID      int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// RecordUpdate describes an update to an existing record. Nil fields are left
// unchanged.
type RecordUpdate struct {
	Title        *string
	Body         *string
	Status       *Status
	SubmissionID *string
}

// Term is a classification value within a taxonomy.
type Term struct {
	ID       int64
	Taxonomy string
	Name     string
}

// Account is a registered site account, matched to speakers by email.
type Account struct {
	ID          int64
	Email       string
	DisplayName string
}

// Attachment is binary media stored against a record.
type Attachment struct {
	ID          int64
	RecordID    int64
	FileName    string
	ContentType string
	Data        []byte
	CreatedAt   time.Time
}

// JournalEntry records one committed sub-write of an ingestion run so that
// partial materialization can be detected and cleaned up.
type JournalEntry struct {
	ID           int64
	SubmissionID string
	Step         string
	RecordID     int64
	Detail       string
	CreatedAt    time.Time
}
