package transport

import (
	"bytes"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
)

const defaultMimeType = "application/octet-stream"

type formPart struct {
	name     string
	path     string
	data     []byte
	fileName string
	mimeType string
	text     bool
}

// Form collects the parts of a multipart upload in append order.
type Form struct {
	parts []formPart
}

// AppendFile appends a part holding the contents of the file at path. The
// file is read when the form is encoded, once per call, and the whole body
// is buffered so retries can resend it. An empty fileName uses the base
// name of path; an empty mimeType is inferred from the file extension.
func (f *Form) AppendFile(name, path, fileName, mimeType string) {
	if fileName == "" {
		fileName = filepath.Base(path)
	}
	f.parts = append(f.parts, formPart{name: name, path: path, fileName: fileName, mimeType: mimeType})
}

// AppendData appends a part carrying data as a file upload.
func (f *Form) AppendData(name string, data []byte, fileName, mimeType string) {
	f.parts = append(f.parts, formPart{name: name, data: data, fileName: fileName, mimeType: mimeType})
}

// AppendField appends a plain form field with value as its content.
func (f *Form) AppendField(name string, value []byte) {
	f.parts = append(f.parts, formPart{name: name, data: value, text: true})
}

// Len returns the number of parts.
func (f *Form) Len() int { return len(f.parts) }

// encode writes the form as multipart/form-data and returns the body and
// its Content-Type.
func (f *Form) encode() ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for _, p := range f.parts {
		if err := p.write(w); err != nil {
			return nil, "", fmt.Errorf("part %q: %w", p.name, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}

func (p formPart) write(w *multipart.Writer) error {
	if p.text {
		part, err := w.CreateFormField(p.name)
		if err != nil {
			return err
		}
		_, err = part.Write(p.data)
		return err
	}

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition",
		`form-data; name="`+escapeQuotes(p.name)+`"; filename="`+escapeQuotes(p.fileName)+`"`)
	header.Set("Content-Type", p.contentType())
	part, err := w.CreatePart(header)
	if err != nil {
		return err
	}

	if p.path == "" {
		_, err = part.Write(p.data)
		return err
	}
	file, err := os.Open(p.path)
	if err != nil {
		return err
	}
	defer func() { _ = file.Close() }()
	_, err = io.Copy(part, file)
	return err
}

func (p formPart) contentType() string {
	if p.mimeType != "" {
		return p.mimeType
	}
	if p.path != "" {
		if t := mime.TypeByExtension(filepath.Ext(p.path)); t != "" {
			return t
		}
	}
	return defaultMimeType
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}
