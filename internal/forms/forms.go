// Package forms models inbound submission payloads and the field
// vocabulary used to route their values during extraction.
package forms

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// FieldKind describes how a field's value is shaped on the wire.
type FieldKind string

const (
	// KindText carries a single string value.
	KindText FieldKind = "text"
	// KindName carries a composite value with first and last parts.
	KindName FieldKind = "name"
	// KindMultiSelect carries zero or more selected choices.
	KindMultiSelect FieldKind = "multiselect"
	// KindFile carries a URL pointing at an uploaded file.
	KindFile FieldKind = "file"
	// KindSection is a visual divider and never carries a value.
	KindSection FieldKind = "section"
)

// FieldRole identifies what a field's value means to the ingest
// pipeline. Unrecognized labels map to RoleUnknown and are ignored.
type FieldRole string

const (
	RoleUnknown FieldRole = ""

	RoleSessionTitle           FieldRole = "session_title"
	RoleSessionDescription     FieldRole = "session_desc"
	RoleSessionCategories      FieldRole = "session_categories"
	RoleSessionLevel           FieldRole = "session_technical"
	RoleOtherSessionCategories FieldRole = "other_session_categories"

	RoleSpeakerFirstName      FieldRole = "speaker_first_name"
	RoleSpeakerLastName       FieldRole = "speaker_last_name"
	RoleSpeakerEmail          FieldRole = "speaker_email"
	RoleSpeakerBio            FieldRole = "speaker_bio"
	RoleSpeakerWebsite        FieldRole = "speaker_website"
	RoleSpeakerTwitter        FieldRole = "speaker_twitter"
	RoleSpeakerLinkedIn       FieldRole = "speaker_linkedin"
	RoleSpeakerCompany        FieldRole = "speaker_company"
	RoleSpeakerCompanyWebsite FieldRole = "speaker_company_website"
	RoleSpeakerPosition       FieldRole = "speaker_position"
	RoleSpeakerPhoto          FieldRole = "speaker_photo"

	RoleSpeaker2FirstName      FieldRole = "speaker2_first_name"
	RoleSpeaker2LastName       FieldRole = "speaker2_last_name"
	RoleSpeaker2Email          FieldRole = "speaker2_email"
	RoleSpeaker2Bio            FieldRole = "speaker2_bio"
	RoleSpeaker2Website        FieldRole = "speaker2_website"
	RoleSpeaker2Twitter        FieldRole = "speaker2_twitter"
	RoleSpeaker2LinkedIn       FieldRole = "speaker2_linkedin"
	RoleSpeaker2Company        FieldRole = "speaker2_company"
	RoleSpeaker2CompanyWebsite FieldRole = "speaker2_company_website"
	RoleSpeaker2Position       FieldRole = "speaker2_position"
	RoleSpeaker2Photo          FieldRole = "speaker2_photo"
)

// adminLabelRoles maps file-field admin labels to photo roles. Photo
// fields are labeled for reviewers rather than tagged like the rest.
var adminLabelRoles = map[string]FieldRole{
	"speaker photo":     RoleSpeakerPhoto,
	"speaker two photo": RoleSpeaker2Photo,
}

// ParseRole resolves a field's role from its tag, falling back to the
// admin label for file fields. Matching is case-insensitive.
func ParseRole(tag, adminLabel string) FieldRole {
	tag = strings.ToLower(strings.TrimSpace(tag))
	if tag != "" {
		role := FieldRole(tag)
		if _, ok := knownRoles[role]; ok {
			return role
		}
	}
	if role, ok := adminLabelRoles[strings.ToLower(strings.TrimSpace(adminLabel))]; ok {
		return role
	}
	return RoleUnknown
}

var knownRoles = func() map[FieldRole]struct{} {
	roles := []FieldRole{
		RoleSessionTitle, RoleSessionDescription, RoleSessionCategories,
		RoleSessionLevel, RoleOtherSessionCategories,
		RoleSpeakerFirstName, RoleSpeakerLastName, RoleSpeakerEmail,
		RoleSpeakerBio, RoleSpeakerWebsite, RoleSpeakerTwitter,
		RoleSpeakerLinkedIn, RoleSpeakerCompany, RoleSpeakerCompanyWebsite,
		RoleSpeakerPosition, RoleSpeakerPhoto,
		RoleSpeaker2FirstName, RoleSpeaker2LastName, RoleSpeaker2Email,
		RoleSpeaker2Bio, RoleSpeaker2Website, RoleSpeaker2Twitter,
		RoleSpeaker2LinkedIn, RoleSpeaker2Company, RoleSpeaker2CompanyWebsite,
		RoleSpeaker2Position, RoleSpeaker2Photo,
	}
	m := make(map[FieldRole]struct{}, len(roles))
	for _, r := range roles {
		m[r] = struct{}{}
	}
	return m
}()

// Field is a single answered field from a form submission.
type Field struct {
	Kind       FieldKind `json:"kind"`
	Tag        string    `json:"tag,omitempty"`
	AdminLabel string    `json:"admin_label,omitempty"`

	// Value holds the answer for text and file fields.
	Value string `json:"value,omitempty"`
	// First and Last hold the parts of a name field.
	First string `json:"first,omitempty"`
	Last  string `json:"last,omitempty"`
	// Choices holds the selections of a multiselect field.
	Choices []string `json:"choices,omitempty"`
}

// Role resolves the field's role from its tag and admin label.
func (f Field) Role() FieldRole {
	return ParseRole(f.Tag, f.AdminLabel)
}

// Text returns the field's value as a single string. Name fields join
// their parts with a space, multiselects join choices with commas.
func (f Field) Text() string {
	switch f.Kind {
	case KindName:
		return strings.TrimSpace(strings.TrimSpace(f.First) + " " + strings.TrimSpace(f.Last))
	case KindMultiSelect:
		return strings.Join(f.Choices, ", ")
	case KindSection:
		return ""
	default:
		return f.Value
	}
}

// Submission is one form entry as delivered by the form provider.
type Submission struct {
	// ID is the provider's entry identifier, used for deduplication.
	ID string `json:"id"`
	// AccountID identifies the submitting account when known.
	AccountID string `json:"account_id,omitempty"`
	// SubmittedAt is the provider's submission timestamp, verbatim.
	SubmittedAt string `json:"submitted_at,omitempty"`
	// SessionRecordID points at a previously created session record
	// when reprocessing a partially ingested submission.
	SessionRecordID int64   `json:"session_record_id,omitempty"`
	Fields          []Field `json:"fields"`
}

// FieldByRole returns the first field matching role, or nil.
func (s *Submission) FieldByRole(role FieldRole) *Field {
	for i := range s.Fields {
		if s.Fields[i].Role() == role {
			return &s.Fields[i]
		}
	}
	return nil
}

// ValueByRole returns the text value of the first field matching role,
// or the empty string when no such field was answered.
func (s *Submission) ValueByRole(role FieldRole) string {
	if f := s.FieldByRole(role); f != nil {
		return f.Text()
	}
	return ""
}

// ChoicesByRole returns the selections of the first multiselect field
// matching role.
func (s *Submission) ChoicesByRole(role FieldRole) []string {
	if f := s.FieldByRole(role); f != nil {
		return f.Choices
	}
	return nil
}

// DecodeSubmission parses a submission payload from r.
func DecodeSubmission(r io.Reader) (*Submission, error) {
	dec := json.NewDecoder(r)
	var sub Submission
	if err := dec.Decode(&sub); err != nil {
		return nil, fmt.Errorf("decode submission: %w", err)
	}
	return &sub, nil
}
