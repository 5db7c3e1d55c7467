package api

import (
	"context"
	"strconv"

	"github.com/bnema/intelliscan-cli/internal/domain"
)

// ExtractText runs OCR over one uploaded image or document.
func (c *Client) ExtractText(ctx context.Context, filename string, data []byte, mode domain.OCRMode, aiCorrection bool) (domain.TextPayload, error) {
	var resp struct {
		Text string `json:"text"`
	}

	fields := map[string]string{
		"mode":              string(mode),
		"use_ai_correction": strconv.FormatBool(aiCorrection),
	}
	parts := []filePart{{Field: "file", Name: filename, Data: data}}

	if err := c.postMultipart(ctx, "/ocr/extract", fields, parts, &resp); err != nil {
		return domain.TextPayload{}, err
	}

	return domain.TextPayload{Text: resp.Text}, nil
}

// SolveMath recognizes an equation image and returns the LaTeX plus the
// worked solution.
func (c *Client) SolveMath(ctx context.Context, filename string, data []byte) (domain.MathPayload, error) {
	var resp struct {
		LaTeX    string `json:"latex"`
		Solution string `json:"solution"`
	}

	parts := []filePart{{Field: "file", Name: filename, Data: data}}
	if err := c.postMultipart(ctx, "/math/solve", nil, parts, &resp); err != nil {
		return domain.MathPayload{}, err
	}

	return domain.MathPayload{LaTeX: resp.LaTeX, Solution: resp.Solution}, nil
}

// VectorizeSketch converts a sketch image; the backend answers with raw SVG
// markup rather than JSON.
func (c *Client) VectorizeSketch(ctx context.Context, filename string, data []byte) (domain.SVGPayload, error) {
	markup, err := c.postMultipartText(ctx, "/sketch/vectorize", nil, []filePart{{Field: "file", Name: filename, Data: data}})
	if err != nil {
		return domain.SVGPayload{}, err
	}

	return domain.SVGPayload{Markup: markup}, nil
}

func (c *Client) Transcribe(ctx context.Context, filename string, data []byte) (domain.TextPayload, error) {
	var resp struct {
		Text string `json:"text"`
	}

	parts := []filePart{{Field: "file", Name: filename, Data: data}}
	if err := c.postMultipart(ctx, "/speech/transcribe", nil, parts, &resp); err != nil {
		return domain.TextPayload{}, err
	}

	return domain.TextPayload{Text: resp.Text}, nil
}

// Synthesize produces an audio blob for the given text. An empty voiceID
// leaves voice selection to the backend.
func (c *Client) Synthesize(ctx context.Context, text, voiceID string) (domain.FilePayload, error) {
	body := map[string]string{"text": text}
	if voiceID != "" {
		body["voice_id"] = voiceID
	}

	return c.postJSONBlob(ctx, "/speech/tts", body)
}

func (c *Client) Translate(ctx context.Context, text, targetLang string) (domain.TextPayload, error) {
	var resp struct {
		TranslatedText string `json:"translated_text"`
	}

	err := c.postJSON(ctx, "/speech/translate", map[string]string{
		"text":        text,
		"target_lang": targetLang,
	}, &resp)
	if err != nil {
		return domain.TextPayload{}, err
	}

	return domain.TextPayload{Text: resp.TranslatedText}, nil
}

// Voice is one synthesis voice advertised by the backend.
type Voice struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Lang string `json:"lang"`
}

func (c *Client) Voices(ctx context.Context) ([]Voice, error) {
	var resp struct {
		Voices []Voice `json:"voices"`
	}

	if err := c.getJSON(ctx, "/speech/voices", &resp); err != nil {
		return nil, err
	}

	return resp.Voices, nil
}
