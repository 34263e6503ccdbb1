package upload

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"os"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/sdejongh/simnorris/pkg/models"
)

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// Body is an encoded multipart request body
type Body struct {
	Data        *bytes.Buffer
	ContentType string
	Parts       int
}

// BuildBody encodes every selected file, in selection order, as a form-file
// part named "file". No other fields are written.
func BuildBody(ctx context.Context, sel *models.FileSelection) (*Body, error) {
	buf := &bytes.Buffer{}
	buf.Grow(int(sel.TotalBytes()) + 512*sel.Count())
	mw := multipart.NewWriter(buf)

	for _, f := range sel.Files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := writePart(mw, f); err != nil {
			return nil, err
		}
	}

	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finish multipart body: %w", err)
	}

	return &Body{
		Data:        buf,
		ContentType: mw.FormDataContentType(),
		Parts:       sel.Count(),
	}, nil
}

func writePart(mw *multipart.Writer, f models.SelectedFile) error {
	file, err := os.Open(f.Path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", f.Path, err)
	}
	defer file.Close()

	ctype, err := contentType(file)
	if err != nil {
		return fmt.Errorf("failed to rewind %s: %w", f.Path, err)
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		quoteEscaper.Replace(models.FormField), quoteEscaper.Replace(f.Name)))
	h.Set("Content-Type", ctype)

	part, err := mw.CreatePart(h)
	if err != nil {
		return fmt.Errorf("failed to create part for %s: %w", f.Name, err)
	}

	if _, err := io.Copy(part, file); err != nil {
		return fmt.Errorf("failed to encode %s: %w", f.Name, err)
	}

	return nil
}

// contentType sniffs the file header and rewinds the file
func contentType(file *os.File) (string, error) {
	mtype, detectErr := mimetype.DetectReader(file)
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return "", err
	}
	if detectErr != nil {
		return "application/octet-stream", nil
	}
	return mtype.String(), nil
}
