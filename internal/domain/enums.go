package domain

import "strings"

// DateLayout is the calendar date format used for issue and due dates.
const DateLayout = "2006-01-02"

// FileType represents the allowed file types for upload.
type FileType string

const (
	FileTypePDF FileType = "pdf"
	FileTypeJPG FileType = "jpg"
	FileTypePNG FileType = "png"
)

// AllowedFileTypes maps FileType to its MIME content type.
var AllowedFileTypes = map[FileType]string{
	FileTypePDF: "application/pdf",
	FileTypeJPG: "image/jpeg",
	FileTypePNG: "image/png",
}

// AllowedContentTypes maps MIME content types back to FileType.
var AllowedContentTypes = map[string]FileType{
	"application/pdf": FileTypePDF,
	"image/jpeg":      FileTypeJPG,
	"image/png":       FileTypePNG,
}

// AllowedExtensions maps file extensions (without dot) to FileType.
var AllowedExtensions = map[string]FileType{
	"pdf":  FileTypePDF,
	"jpg":  FileTypeJPG,
	"jpeg": FileTypeJPG,
	"png":  FileTypePNG,
}

// FileKind is the coarse document class reported with a draft.
type FileKind string

const (
	FileKindPDF   FileKind = "pdf"
	FileKindImage FileKind = "image"
)

// Kind returns the document class of a file type.
func (f FileType) Kind() FileKind {
	if f == FileTypePDF {
		return FileKindPDF
	}
	return FileKindImage
}

// InvoiceStatus represents the payment state of an invoice.
type InvoiceStatus string

const (
	InvoiceStatusPaid    InvoiceStatus = "paid"
	InvoiceStatusPending InvoiceStatus = "pending"
	InvoiceStatusOverdue InvoiceStatus = "overdue"
)

// Valid reports whether s is one of the known statuses.
func (s InvoiceStatus) Valid() bool {
	switch s {
	case InvoiceStatusPaid, InvoiceStatusPending, InvoiceStatusOverdue:
		return true
	}
	return false
}

// ParseInvoiceStatus normalizes case and whitespace and reports whether the result is known.
func ParseInvoiceStatus(s string) (InvoiceStatus, bool) {
	st := InvoiceStatus(strings.ToLower(strings.TrimSpace(s)))
	return st, st.Valid()
}
