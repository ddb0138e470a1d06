package queue

const (
	TypeClassifySubmission = "submission:classify"
)

// ClassifySubmissionPayload asks the worker to run hosted classification
// (and embedding) for a stored submission.
type ClassifySubmissionPayload struct {
	SubmissionID string `json:"submission_id"`
}
