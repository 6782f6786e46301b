package domain

import "fmt"

// CertificateType is one of the fixed categories offered by the upload form.
type CertificateType string

const (
	CertificateTenth          CertificateType = "10th"
	CertificateTwelfth        CertificateType = "12th"
	CertificateGraduation     CertificateType = "graduation"
	CertificatePostGraduation CertificateType = "post-graduation"
	CertificateProfessional   CertificateType = "professional"
	CertificateAadhaar        CertificateType = "Aadhaar"
)

var certificateLabels = map[CertificateType]string{
	CertificateTenth:          "10th Certificate",
	CertificateTwelfth:        "12th Certificate",
	CertificateGraduation:     "Graduation Certificate",
	CertificatePostGraduation: "Post Graduation Certificate",
	CertificateProfessional:   "Professional Certificate",
	CertificateAadhaar:        "Aadhaar",
}

// Label returns the display label, or the raw value for a free-form type.
func (c CertificateType) Label() string {
	if l, ok := certificateLabels[c]; ok {
		return l
	}
	return string(c)
}

// Known reports whether c is one of the fixed certificate types.
func (c CertificateType) Known() bool {
	_, ok := certificateLabels[c]
	return ok
}

// ParseCertificateType returns the fixed certificate type named by s.
func ParseCertificateType(s string) (CertificateType, error) {
	c := CertificateType(s)
	if !c.Known() {
		return "", fmt.Errorf("unknown certificate type %q", s)
	}
	return c, nil
}
