package api

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/bnema/intelliscan-cli/internal/domain"
)

// PDFFile is one input document for a PDF operation.
type PDFFile struct {
	Name string
	Data []byte
}

// PDFParams carries the tool-specific knobs of the PDF endpoints. Zero
// values mean the field is omitted.
type PDFParams struct {
	// Password protects (protect) or opens (unlock) the document.
	Password string
	// Rotate is the clockwise angle for the rotate tool: 90, 180 or 270.
	Rotate int
	// ConvertTask names the conversion, e.g. "pdfword" or "jpgpdf".
	ConvertTask string
	// Redactions overrides the backend's automatic sensitive-data detection.
	Redactions []string
	// UseHostedService routes the operation through the backend's hosted
	// PDF provider instead of its offline tooling.
	UseHostedService bool
}

// RunPDF executes one PDF tool call and returns the resulting blob.
func (c *Client) RunPDF(ctx context.Context, op domain.PDFOp, files []PDFFile, params PDFParams) (domain.FilePayload, error) {
	if len(files) == 0 {
		return domain.FilePayload{}, fmt.Errorf("pdf %s: no input files", op)
	}

	multi := op == domain.PDFMerge || op == domain.PDFImageToPDF
	if !multi && len(files) > 1 {
		return domain.FilePayload{}, fmt.Errorf("pdf %s: expects a single input file", op)
	}

	parts := make([]filePart, 0, len(files))
	field := "file"
	if multi {
		field = "files"
	}
	for _, file := range files {
		parts = append(parts, filePart{Field: field, Name: file.Name, Data: file.Data})
	}

	fields, err := params.formFields(op)
	if err != nil {
		return domain.FilePayload{}, err
	}

	return c.postMultipartBlob(ctx, "/pdf/"+string(op), fields, parts)
}

func (p PDFParams) formFields(op domain.PDFOp) (map[string]string, error) {
	fields := map[string]string{}

	switch op {
	case domain.PDFProtect, domain.PDFUnlock:
		if p.Password == "" {
			return nil, fmt.Errorf("pdf %s: password is required", op)
		}
		fields["password"] = p.Password
	case domain.PDFRotate:
		rotate := p.Rotate
		if rotate == 0 {
			rotate = 90
		}
		if rotate != 90 && rotate != 180 && rotate != 270 {
			return nil, fmt.Errorf("pdf rotate: angle must be 90, 180 or 270")
		}
		fields["rotate"] = strconv.Itoa(rotate)
	case domain.PDFConvert:
		if p.ConvertTask == "" {
			return nil, fmt.Errorf("pdf convert: task is required")
		}
		fields["task"] = p.ConvertTask
	case domain.PDFRedact:
		if len(p.Redactions) > 0 {
			encoded, err := json.Marshal(p.Redactions)
			if err != nil {
				return nil, fmt.Errorf("encode redactions: %w", err)
			}
			fields["redactions"] = string(encoded)
		}
	}

	if p.UseHostedService {
		fields["use_api"] = "true"
	}

	return fields, nil
}
