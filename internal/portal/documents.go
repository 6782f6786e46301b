package portal

import (
	"context"
	"fmt"
	"log"
	"strings"

	auditdomain "docverify-portal/internal/audit/domain"
	docdomain "docverify-portal/internal/document/domain"
	"docverify-portal/internal/policy/engine"
	"docverify-portal/internal/session"
	"docverify-portal/internal/telemetry"
	"docverify-portal/internal/validation"
)

// Certificate is one entry of the upload page's certificate list.
type Certificate struct {
	File   validation.FileInfo `json:"file"`
	Type   string              `json:"type"`
	Number string              `json:"number,omitempty"`
}

// Submission is the upload page form.
type Submission struct {
	AadhaarNumber string              `json:"aadhaarNumber"`
	AadhaarFile   validation.FileInfo `json:"aadhaarFile"`
	Certificates  []Certificate       `json:"certificates"`
}

// DocumentsResult is returned by flows that add documents. Files lists the
// uploaded files with their display size, in the order of Documents.
type DocumentsResult struct {
	Outcome
	Documents []docdomain.Document `json:"documents"`
	Files     []UploadedFile       `json:"files"`
}

// UploadedFile is a file as the upload pages list it, e.g. "aadhaar.pdf (1.25 MB)".
type UploadedFile struct {
	Name string `json:"name"`
	Size string `json:"size"`
}

func uploadedFiles(files ...validation.FileInfo) []UploadedFile {
	out := make([]UploadedFile, len(files))
	for i, f := range files {
		out[i] = UploadedFile{Name: f.Name, Size: f.SizeLabel()}
	}
	return out
}

// Onboard records the Aadhaar card chosen on the onboarding page and moves on
// to contact verification once the simulated upload completes.
func (s *Service) Onboard(ctx context.Context, aadhaarNumber string, file validation.FileInfo) (*DocumentsResult, error) {
	if !s.store.IsAuthenticated() {
		return nil, ErrNotAuthenticated
	}
	if err := validation.ValidateAadhaar(aadhaarNumber); err != nil {
		return nil, err
	}
	if file.Name == "" {
		return nil, validation.New(validation.CategoryMissingField, "Please upload your Aadhaar card")
	}
	if err := s.files.Check(file); err != nil {
		return nil, err
	}
	if err := s.simulateUpload(ctx); err != nil {
		return nil, err
	}
	doc := s.newDocument(file.Name, docdomain.CertificateAadhaar.Label())
	if err := s.addDocuments(ctx, doc); err != nil {
		return nil, err
	}
	return &DocumentsResult{
		Outcome:   Outcome{Message: "Aadhaar uploaded successfully!", Next: engine.RouteVerify},
		Documents: []docdomain.Document{doc},
		Files:     uploadedFiles(file),
	}, nil
}

// SubmitDocuments records the upload page: the Aadhaar card plus any
// certificates. Every file becomes an under-review document.
func (s *Service) SubmitDocuments(ctx context.Context, sub Submission) (*DocumentsResult, error) {
	if !s.store.IsAuthenticated() {
		return nil, ErrNotAuthenticated
	}
	if sub.AadhaarFile.Name == "" || sub.AadhaarNumber == "" {
		return nil, validation.New(validation.CategoryMissingField, "Please upload Aadhaar card and enter Aadhaar number")
	}
	if err := validation.ValidateAadhaar(sub.AadhaarNumber); err != nil {
		return nil, err
	}
	if err := s.files.Check(sub.AadhaarFile); err != nil {
		return nil, err
	}
	types := make([]docdomain.CertificateType, len(sub.Certificates))
	files := []validation.FileInfo{sub.AadhaarFile}
	for i, c := range sub.Certificates {
		if c.File.Name == "" || strings.TrimSpace(c.Type) == "" {
			return nil, validation.New(validation.CategoryMissingField, "Please select a file and certificate type")
		}
		ct, err := docdomain.ParseCertificateType(strings.TrimSpace(c.Type))
		if err != nil {
			return nil, validation.New(validation.CategoryMalformedInput, "Please select a valid certificate type")
		}
		if err := s.files.Check(c.File); err != nil {
			return nil, err
		}
		types[i] = ct
		files = append(files, c.File)
	}
	if err := s.simulateUpload(ctx); err != nil {
		return nil, err
	}

	docs := make([]docdomain.Document, 0, 1+len(sub.Certificates))
	docs = append(docs, s.newDocument(sub.AadhaarFile.Name, docdomain.CertificateAadhaar.Label()))
	for i, c := range sub.Certificates {
		docs = append(docs, s.newDocument(c.File.Name, types[i].Label()))
	}
	if err := s.addDocuments(ctx, docs...); err != nil {
		return nil, err
	}
	return &DocumentsResult{
		Outcome:   Outcome{Message: "Documents submitted for verification!"},
		Documents: docs,
		Files:     uploadedFiles(files...),
	}, nil
}

// Resubmit replaces a rejected document with a new under-review record that
// points back at it. The rejected record itself is left as it was.
func (s *Service) Resubmit(ctx context.Context, rejectedID string, file validation.FileInfo) (*DocumentsResult, error) {
	if !s.store.IsAuthenticated() {
		return nil, ErrNotAuthenticated
	}
	if err := s.files.Check(file); err != nil {
		return nil, err
	}
	target, ok := s.store.Document(rejectedID)
	if !ok {
		return nil, fmt.Errorf("%w: %q", session.ErrDocumentNotFound, rejectedID)
	}
	if target.Status != docdomain.StatusRejected {
		return nil, fmt.Errorf("%w: %q is %s", ErrNotRejected, rejectedID, target.Status)
	}
	doc := s.newDocument(file.Name, target.Type)
	doc.ResubmissionOf = rejectedID
	if r := s.store.AddDocument(doc); r != session.Applied {
		return nil, notAuthenticated(r)
	}
	s.emitForUser(ctx, telemetry.EventDocumentResubmit, map[string]string{
		"document_id":     doc.ID,
		"resubmission_of": rejectedID,
	})
	return &DocumentsResult{
		Outcome:   Outcome{Message: "Document resubmitted for verification!"},
		Documents: []docdomain.Document{doc},
		Files:     uploadedFiles(file),
	}, nil
}

// Review applies an external reviewer's decision to an under-review document.
func (s *Service) Review(ctx context.Context, id string, decision docdomain.Decision, reason string) (docdomain.Document, error) {
	doc, err := s.store.ApplyReview(id, decision, strings.TrimSpace(reason))
	if err != nil {
		return doc, err
	}
	if s.audit != nil {
		s.audit.LogEvent(ctx, "", auditdomain.ActionReview, "document", fmt.Sprintf(`{"id":%q,"status":%q}`, doc.ID, doc.Status))
	}
	s.emit(ctx, telemetry.EventReviewApplied, s.store.SessionID(), "", map[string]string{
		"document_id": doc.ID,
		"status":      string(doc.Status),
	})
	log.Printf("portal: document %s reviewed: %s", doc.ID, doc.Status)
	return doc, nil
}

// Documents lists documents in insertion order, filtered by status unless status is empty.
func (s *Service) Documents(status string) ([]docdomain.Document, error) {
	if status == "" {
		return s.store.Documents(), nil
	}
	st, err := docdomain.ParseStatus(status)
	if err != nil {
		return nil, err
	}
	return s.store.DocumentsByStatus(st), nil
}

// Summary is the verified-documents page's summary cards.
type Summary struct {
	docdomain.StatusCounts
	Total int `json:"total"`
}

// Summary counts documents by status.
func (s *Service) Summary() Summary {
	c := s.store.StatusCounts()
	return Summary{StatusCounts: c, Total: c.Total()}
}

func (s *Service) newDocument(name, docType string) docdomain.Document {
	return docdomain.Document{
		ID:         s.newID(),
		Name:       name,
		Type:       docType,
		Status:     docdomain.StatusUnderReview,
		UploadDate: s.nowF().Format(docdomain.UploadDateLayout),
	}
}

func (s *Service) addDocuments(ctx context.Context, docs ...docdomain.Document) error {
	for _, d := range docs {
		if r := s.store.AddDocument(d); r != session.Applied {
			return notAuthenticated(r)
		}
		s.emitForUser(ctx, telemetry.EventDocumentAdded, map[string]string{
			"document_id": d.ID,
			"type":        d.Type,
		})
	}
	return nil
}
