package request

import (
	"path/filepath"

	"github.com/kbukum/synchttp/errors"
)

const defaultPartMimeType = "application/octet-stream"

// Part is one named part of a multipart upload. Exactly one payload source
// must be set: FilePath, or Data (with FileName and MimeType).
type Part struct {
	// FileKey is the form field name.
	FileKey string
	// FilePath is a file whose contents become the part. It is read by the
	// transport when the call runs, not when the request is built.
	FilePath string
	// Data is the inline payload.
	Data []byte
	// FileName is the file name sent for the part. Defaults to the base name
	// of FilePath, or to FileKey for inline parts.
	FileName string
	// MimeType is the part Content-Type. Inline parts default to
	// application/octet-stream; file parts are inferred from the extension
	// when sent.
	MimeType string
}

// FilePart creates a file-backed part.
func FilePart(key, path string) Part {
	return Part{FileKey: key, FilePath: path}
}

// DataPart creates an inline-bytes part.
func DataPart(key string, data []byte, fileName, mimeType string) Part {
	return Part{FileKey: key, Data: data, FileName: fileName, MimeType: mimeType}
}

// IsFile reports whether the part is file-backed.
func (p Part) IsFile() bool { return p.FilePath != "" }

func (p Part) validate(index int) error {
	if p.FileKey == "" {
		return errors.Newf(errors.KindValidation, "multipart item %d: file key is empty", index)
	}
	hasFile := p.FilePath != ""
	hasData := p.Data != nil
	switch {
	case hasFile && hasData:
		return errors.Newf(errors.KindValidation, "multipart item %q: has both a file source and inline bytes", p.FileKey)
	case !hasFile && !hasData:
		return errors.Newf(errors.KindValidation, "multipart item %q: has neither a file source nor inline bytes", p.FileKey)
	}
	return nil
}

// normalized fills in defaults and copies the inline payload.
func (p Part) normalized() Part {
	if p.FileName == "" {
		if p.IsFile() {
			p.FileName = filepath.Base(p.FilePath)
		} else {
			p.FileName = p.FileKey
		}
	}
	if p.MimeType == "" && !p.IsFile() {
		p.MimeType = defaultPartMimeType
	}
	if p.Data != nil {
		data := make([]byte, len(p.Data))
		copy(data, p.Data)
		p.Data = data
	}
	return p
}
