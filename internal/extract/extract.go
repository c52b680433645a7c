// Package extract turns a decoded form submission into typed drafts
// ready for materialization. It performs no I/O.
package extract

import (
	"strings"

	"greenroom/internal/forms"
)

// SessionDraft holds everything extracted for the session record.
type SessionDraft struct {
	Title           string
	Description     string
	Categories      []string
	OtherCategories []string
	Levels          []string
}

// SpeakerDraft holds everything extracted for one speaker.
type SpeakerDraft struct {
	FirstName      string
	LastName       string
	Email          string
	Bio            string
	Website        string
	Twitter        string
	LinkedIn       string
	Company        string
	CompanyWebsite string
	Position       string
	PhotoURL       string
}

// DisplayName joins the draft's name parts. It is empty when neither
// part was provided.
func (d SpeakerDraft) DisplayName() string {
	return strings.TrimSpace(strings.TrimSpace(d.FirstName) + " " + strings.TrimSpace(d.LastName))
}

// HasEmail reports whether the draft carries a usable email address.
func (d SpeakerDraft) HasEmail() bool {
	return strings.TrimSpace(d.Email) != ""
}

// roleSet names the submission fields feeding one speaker draft.
type roleSet struct {
	first, last, email, bio    forms.FieldRole
	website, twitter, linkedin forms.FieldRole
	company, companyWebsite    forms.FieldRole
	position, photo            forms.FieldRole
}

var speakerRoles = []roleSet{
	{
		first: forms.RoleSpeakerFirstName, last: forms.RoleSpeakerLastName,
		email: forms.RoleSpeakerEmail, bio: forms.RoleSpeakerBio,
		website: forms.RoleSpeakerWebsite, twitter: forms.RoleSpeakerTwitter,
		linkedin: forms.RoleSpeakerLinkedIn,
		company:  forms.RoleSpeakerCompany, companyWebsite: forms.RoleSpeakerCompanyWebsite,
		position: forms.RoleSpeakerPosition, photo: forms.RoleSpeakerPhoto,
	},
	{
		first: forms.RoleSpeaker2FirstName, last: forms.RoleSpeaker2LastName,
		email: forms.RoleSpeaker2Email, bio: forms.RoleSpeaker2Bio,
		website: forms.RoleSpeaker2Website, twitter: forms.RoleSpeaker2Twitter,
		linkedin: forms.RoleSpeaker2LinkedIn,
		company:  forms.RoleSpeaker2Company, companyWebsite: forms.RoleSpeaker2CompanyWebsite,
		position: forms.RoleSpeaker2Position, photo: forms.RoleSpeaker2Photo,
	},
}

// Extract maps the submission's fields into a session draft and up to
// two speaker drafts. Drafts for speakers with no answered fields are
// still returned; callers decide which ones to materialize.
func Extract(sub *forms.Submission) (SessionDraft, []SpeakerDraft) {
	session := SessionDraft{
		Title:           strings.TrimSpace(sub.ValueByRole(forms.RoleSessionTitle)),
		Description:     sub.ValueByRole(forms.RoleSessionDescription),
		Categories:      trimAll(sub.ChoicesByRole(forms.RoleSessionCategories)),
		OtherCategories: SplitList(sub.ValueByRole(forms.RoleOtherSessionCategories)),
		Levels:          trimAll(sub.ChoicesByRole(forms.RoleSessionLevel)),
	}

	speakers := make([]SpeakerDraft, 0, len(speakerRoles))
	for _, roles := range speakerRoles {
		first, last := nameParts(sub, roles)
		speakers = append(speakers, SpeakerDraft{
			FirstName:      first,
			LastName:       last,
			Email:          strings.TrimSpace(sub.ValueByRole(roles.email)),
			Bio:            sub.ValueByRole(roles.bio),
			Website:        strings.TrimSpace(sub.ValueByRole(roles.website)),
			Twitter:        SanitizeTwitter(sub.ValueByRole(roles.twitter)),
			LinkedIn:       strings.TrimSpace(sub.ValueByRole(roles.linkedin)),
			Company:        strings.TrimSpace(sub.ValueByRole(roles.company)),
			CompanyWebsite: strings.TrimSpace(sub.ValueByRole(roles.companyWebsite)),
			Position:       strings.TrimSpace(sub.ValueByRole(roles.position)),
			PhotoURL:       strings.TrimSpace(sub.ValueByRole(roles.photo)),
		})
	}
	return session, speakers
}

// nameParts reads a speaker's name from either a composite name field
// or separate first and last text fields.
func nameParts(sub *forms.Submission, roles roleSet) (string, string) {
	if f := sub.FieldByRole(roles.first); f != nil && f.Kind == forms.KindName {
		return strings.TrimSpace(f.First), strings.TrimSpace(f.Last)
	}
	return strings.TrimSpace(sub.ValueByRole(roles.first)),
		strings.TrimSpace(sub.ValueByRole(roles.last))
}

// SplitList splits a free-text, comma-separated list into trimmed
// entries, dropping empties.
func SplitList(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// SanitizeTwitter reduces a handle to its alphanumeric characters,
// stripping @ signs, URLs, and stray punctuation.
func SanitizeTwitter(value string) string {
	var b strings.Builder
	for _, r := range value {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		}
	}
	return b.String()
}

func trimAll(values []string) []string {
	var out []string
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
