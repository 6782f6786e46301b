package validation

import (
	"fmt"
	"path/filepath"
	"strings"
)

const (
	aadhaarDigits    = 12
	aadhaarGroupSize = 4
	aadhaarSeparator = "-"

	// CodeLength is the length of an email or phone verification code.
	CodeLength = 6

	// DefaultMaxUploadBytes is the inclusive upload cap (5 MB).
	DefaultMaxUploadBytes int64 = 5 * 1024 * 1024
)

func digitsOnly(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if c := s[i]; c >= '0' && c <= '9' {
			b.WriteByte(c)
		}
	}
	return b.String()
}

// FormatAadhaar strips non-digits from input and groups the digits in blocks
// of four joined by "-". It does not truncate; see AcceptAadhaarInput.
func FormatAadhaar(input string) string {
	d := digitsOnly(input)
	if d == "" {
		return ""
	}
	groups := make([]string, 0, (len(d)+aadhaarGroupSize-1)/aadhaarGroupSize)
	for len(d) > aadhaarGroupSize {
		groups = append(groups, d[:aadhaarGroupSize])
		d = d[aadhaarGroupSize:]
	}
	groups = append(groups, d)
	return strings.Join(groups, aadhaarSeparator)
}

// AcceptAadhaarInput applies an edit to the Aadhaar field: the formatted input
// replaces current only while it holds at most 12 digits.
func AcceptAadhaarInput(current, input string) string {
	formatted := FormatAadhaar(input)
	if len(digitsOnly(formatted)) > aadhaarDigits {
		return current
	}
	return formatted
}

// ValidateAadhaar accepts value only when, with separators removed, it is exactly 12 digits.
func ValidateAadhaar(value string) error {
	raw := strings.NewReplacer(aadhaarSeparator, "", " ", "").Replace(value)
	if len(raw) != aadhaarDigits || digitsOnly(raw) != raw {
		return fail(CategoryMalformedInput, "Please enter a valid 12-digit Aadhaar number")
	}
	return nil
}

// SanitizeCode strips every non-digit character, as the code inputs do on each keystroke.
func SanitizeCode(input string) string {
	return digitsOnly(input)
}

// ValidateCode requires exactly six digits. Whether the code was actually
// issued is decided by the verification checker, not here.
func ValidateCode(code string) error {
	return validateDigits(code, "Please enter a 6-digit code")
}

// ValidateOTP is ValidateCode with the wording used for the phone channel.
func ValidateOTP(code string) error {
	return validateDigits(code, "Please enter a 6-digit OTP")
}

func validateDigits(code, msg string) error {
	if len(code) != CodeLength || digitsOnly(code) != code {
		return fail(CategoryMalformedInput, msg)
	}
	return nil
}

// FileInfo describes a file chosen in a picker. Content is never read.
type FileInfo struct {
	Name string `json:"name"`
	Size int64  `json:"size"`
}

// SizeLabel renders the size in megabytes with two decimals, e.g. "1.25 MB".
func (f FileInfo) SizeLabel() string {
	return fmt.Sprintf("%.2f MB", float64(f.Size)/1024/1024)
}

// AcceptedExtensions is the picker filter for every upload input.
var AcceptedExtensions = []string{".pdf", ".jpg", ".jpeg", ".png"}

// FilePolicy is the client-side upload gate.
type FilePolicy struct {
	MaxBytes int64
}

// DefaultFilePolicy caps uploads at 5 MB.
func DefaultFilePolicy() FilePolicy {
	return FilePolicy{MaxBytes: DefaultMaxUploadBytes}
}

// Check rejects files over MaxBytes (a file of exactly MaxBytes passes) and
// files outside AcceptedExtensions.
func (p FilePolicy) Check(f FileInfo) error {
	if f.Name == "" {
		return fail(CategoryMissingField, "Please select a file to upload")
	}
	if f.Size < 0 {
		return fail(CategoryMalformedInput, "Invalid file size")
	}
	if f.Size > p.MaxBytes {
		return fail(CategoryFilePolicy, fmt.Sprintf("File size should not exceed %dMB", p.MaxBytes/(1024*1024)))
	}
	ext := strings.ToLower(filepath.Ext(f.Name))
	for _, a := range AcceptedExtensions {
		if ext == a {
			return nil
		}
	}
	return fail(CategoryFilePolicy, "Only PDF, JPG and PNG files are accepted")
}
