// internal/models/submission.go
package models

// Submission is a finalized draft as read back from the store,
// paired with its document id.
type Submission struct {
	ID    string
	Draft FormDraft
}

// IsSubmitted reports whether the stored draft carries a submission
// timestamp. Dashboard consumers still list unsubmitted drafts; the
// timestamp drives ordering only.
func (s Submission) IsSubmitted() bool {
	return s.Draft.SubmittedAt != ""
}
