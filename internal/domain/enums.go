package domain

// DocumentType distinguishes the two incompatible tax schemas a fiscal
// document can belong to. It is always derived from the extracted tax fields,
// never taken verbatim from the source text.
type DocumentType string

const (
	// DocumentTypeGoods marks a merchandise sale document (ICMS/IPI schema).
	DocumentTypeGoods DocumentType = "GOODS"
	// DocumentTypeService marks a service document (ISSQN schema).
	DocumentTypeService DocumentType = "SERVICE"
	// DocumentTypeUnknown marks a document with no recognizable tax fields,
	// including legitimately tax-exempt ones.
	DocumentTypeUnknown DocumentType = "UNKNOWN"
)

// FileType represents the allowed file types for upload.
type FileType string

const (
	FileTypePDF FileType = "pdf"
	FileTypeTXT FileType = "txt"
)

// AllowedContentTypes maps MIME content types back to FileType.
var AllowedContentTypes = map[string]FileType{
	"application/pdf": FileTypePDF,
	"text/plain":      FileTypeTXT,
}

// AllowedExtensions maps file extensions (without dot) to FileType.
var AllowedExtensions = map[string]FileType{
	"pdf": FileTypePDF,
	"txt": FileTypeTXT,
}
