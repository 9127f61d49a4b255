package storage

import (
	"fmt"
	"path"
	"strings"

	"github.com/google/uuid"
)

// ContentTypePDF is the only content type the archive accepts.
const ContentTypePDF = "application/pdf"

// MaxPDFSize caps archived documents at 10 MB.
const MaxPDFSize int64 = 10 << 20

// ValidateContentType checks that contentType is a PDF.
func ValidateContentType(contentType string) error {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	if ct != ContentTypePDF {
		return fmt.Errorf("content type %q is not allowed", contentType)
	}
	return nil
}

// ValidateFileSize checks that size is positive and within MaxPDFSize.
func ValidateFileSize(size int64) error {
	if size <= 0 {
		return fmt.Errorf("file is empty")
	}
	if size > MaxPDFSize {
		return fmt.Errorf("file size %d exceeds maximum of %d bytes", size, MaxPDFSize)
	}
	return nil
}

// QuotePDFKey is the archive key of a run's quote PDF.
func QuotePDFKey(runID uuid.UUID) string {
	return path.Join("runs", runID.String()+".pdf")
}
