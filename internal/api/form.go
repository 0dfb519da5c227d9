package api

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
)

type formPart struct {
	field    string
	value    string
	filename string
	content  io.Reader
}

// Form is a multipart payload built up front and handed to Client.Upload.
type Form struct {
	parts []formPart
}

func NewForm() *Form {
	return &Form{}
}

// AddField appends a plain text field.
func (f *Form) AddField(name, value string) *Form {
	f.parts = append(f.parts, formPart{field: name, value: value})
	return f
}

// AddFile appends a file part read from r.
func (f *Form) AddFile(field, filename string, r io.Reader) *Form {
	f.parts = append(f.parts, formPart{field: field, filename: filename, content: r})
	return f
}

// AddFilePath reads the file at path and appends it as a file part.
func (f *Form) AddFilePath(field, path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	data, err := io.ReadAll(file)
	file.Close()
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	f.AddFile(field, filepath.Base(path), bytes.NewReader(data))
	return nil
}

// Encode writes every part and returns the body together with its
// multipart content type.
func (f *Form) Encode() (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for _, p := range f.parts {
		if p.content == nil {
			if err := w.WriteField(p.field, p.value); err != nil {
				return nil, "", fmt.Errorf("write field %s: %w", p.field, err)
			}
			continue
		}
		part, err := w.CreateFormFile(p.field, p.filename)
		if err != nil {
			return nil, "", fmt.Errorf("create file part %s: %w", p.field, err)
		}
		if _, err := io.Copy(part, p.content); err != nil {
			return nil, "", fmt.Errorf("write file part %s: %w", p.field, err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("close form: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}
