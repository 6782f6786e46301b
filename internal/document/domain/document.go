package domain

import (
	"errors"
	"fmt"
)

// Document is a user-submitted file record tracked by verification status.
// The file bytes are never held; only display metadata.
type Document struct {
	ID              string `json:"id" yaml:"id"`
	Name            string `json:"name" yaml:"name"`
	Type            string `json:"type" yaml:"type"`
	Status          Status `json:"status" yaml:"status"`
	UploadDate      string `json:"uploadDate" yaml:"uploadDate"`
	RejectionReason string `json:"rejectionReason,omitempty" yaml:"rejectionReason,omitempty"`
	// ResubmissionOf is the id of the rejected document this record replaces; empty otherwise.
	ResubmissionOf string `json:"resubmissionOf,omitempty" yaml:"resubmissionOf,omitempty"`
}

// UploadDateLayout is the date format used for UploadDate.
const UploadDateLayout = "2006-01-02"

type Status string

const (
	StatusVerified    Status = "verified"
	StatusUnderReview Status = "under-review"
	StatusRejected    Status = "rejected"
)

// Statuses lists every status in display order.
var Statuses = []Status{StatusVerified, StatusUnderReview, StatusRejected}

var (
	ErrUnknownStatus     = errors.New("unknown document status")
	ErrInvalidTransition = errors.New("invalid document status transition")
	ErrReasonRequired    = errors.New("rejection reason is required")
)

// ParseStatus returns the Status named by s.
func ParseStatus(s string) (Status, error) {
	switch st := Status(s); st {
	case StatusVerified, StatusUnderReview, StatusRejected:
		return st, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStatus, s)
}

// Validate validates the document before it enters a session. Returns an error describing the first validation failure.
func (d *Document) Validate() error {
	if d.ID == "" {
		return errors.New("document id is required")
	}
	if d.Name == "" {
		return errors.New("document name is required")
	}
	if _, err := ParseStatus(string(d.Status)); err != nil {
		return err
	}
	if d.Status == StatusRejected && d.RejectionReason == "" {
		return ErrReasonRequired
	}
	if d.Status != StatusRejected && d.RejectionReason != "" {
		return errors.New("rejection reason is only allowed on rejected documents")
	}
	return nil
}

// Decision is a reviewer's verdict on an under-review document.
type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionReject  Decision = "reject"
)

// Transition returns the status reached by applying decision to a document in
// status from. Only under-review documents can be reviewed; a rejection needs a reason.
func Transition(from Status, decision Decision, reason string) (Status, error) {
	if from != StatusUnderReview {
		return from, fmt.Errorf("%w: %s is final", ErrInvalidTransition, from)
	}
	switch decision {
	case DecisionApprove:
		return StatusVerified, nil
	case DecisionReject:
		if reason == "" {
			return from, ErrReasonRequired
		}
		return StatusRejected, nil
	}
	return from, fmt.Errorf("%w: unknown decision %q", ErrInvalidTransition, decision)
}

// StatusCounts holds the number of documents in each status.
type StatusCounts struct {
	Verified    int `json:"verified"`
	UnderReview int `json:"underReview"`
	Rejected    int `json:"rejected"`
}

// Total returns the number of counted documents.
func (c StatusCounts) Total() int {
	return c.Verified + c.UnderReview + c.Rejected
}

// FilterByStatus returns the documents in status, preserving order.
func FilterByStatus(docs []Document, status Status) []Document {
	out := make([]Document, 0, len(docs))
	for _, d := range docs {
		if d.Status == status {
			out = append(out, d)
		}
	}
	return out
}

// CountByStatus tallies docs by status.
func CountByStatus(docs []Document) StatusCounts {
	var c StatusCounts
	for _, d := range docs {
		switch d.Status {
		case StatusVerified:
			c.Verified++
		case StatusUnderReview:
			c.UnderReview++
		case StatusRejected:
			c.Rejected++
		}
	}
	return c
}
