package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/intelliscan-cli/internal/domain"
)

func newTestClient(handler http.Handler) (*Client, *httptest.Server) {
	server := httptest.NewServer(handler)
	return NewClient(server.URL, server.Client()), server
}

func TestLoginCapturesSessionCookie(t *testing.T) {
	t.Parallel()

	client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/auth/login", r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "a@b.c", body["email"])
		assert.Equal(t, "secret", body["password"])

		http.SetCookie(w, &http.Cookie{Name: "access_token", Value: "tok-123", HttpOnly: true})
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"user":{"userId":"u1","email":"a@b.c","fullName":"A B","avatar":""}}`)
	}))
	defer server.Close()

	user, err := client.Login(context.Background(), "a@b.c", "secret")
	require.NoError(t, err)
	assert.Equal(t, domain.User{UserID: "u1", Email: "a@b.c", FullName: "A B"}, user)
	assert.Equal(t, "tok-123", client.Credential())
}

func TestMeSendsSessionCookie(t *testing.T) {
	t.Parallel()

	client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie("access_token")
		require.NoError(t, err)
		assert.Equal(t, "tok-123", cookie.Value)

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"userId":"u1","email":"a@b.c","fullName":"A B","avatar":"pic"}`)
	}))
	defer server.Close()

	client.SetCredential("tok-123")

	user, err := client.Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "u1", user.UserID)
	assert.Equal(t, "pic", user.Avatar)
}

func TestErrorDetailDecoded(t *testing.T) {
	t.Parallel()

	client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"detail":"Invalid credentials"}`)
	}))
	defer server.Close()

	_, err := client.Login(context.Background(), "a@b.c", "wrong")
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, "Invalid credentials", apiErr.Detail)
	assert.Equal(t, "Invalid credentials", apiErr.Error())
}

func TestErrorWithStructuredDetailKeptVerbatim(t *testing.T) {
	t.Parallel()

	client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = io.WriteString(w, `{"detail":[{"loc":["body","email"],"msg":"field required"}]}`)
	}))
	defer server.Close()

	_, err := client.Me(context.Background())
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Contains(t, apiErr.Detail, "field required")
}

func TestErrorWithoutBodyFallsBackToStatus(t *testing.T) {
	t.Parallel()

	client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	_, err := client.Me(context.Background())
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "backend returned status 500", apiErr.Error())
}

func TestExtractTextSendsModeAndCorrectionFields(t *testing.T) {
	t.Parallel()

	client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/ocr/extract", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))

		assert.Equal(t, "high_accuracy", r.FormValue("mode"))
		assert.Equal(t, "false", r.FormValue("use_ai_correction"))

		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer func() { _ = file.Close() }()
		assert.Equal(t, "scan.png", header.Filename)

		content, err := io.ReadAll(file)
		require.NoError(t, err)
		assert.Equal(t, []byte("png-bytes"), content)

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"text":"Hello World"}`)
	}))
	defer server.Close()

	payload, err := client.ExtractText(context.Background(), "scan.png", []byte("png-bytes"), domain.OCRModeHighAccuracy, false)
	require.NoError(t, err)
	assert.Equal(t, "Hello World", payload.Text)
	assert.Equal(t, 2, payload.WordCount())
}

func TestSolveMathDecodesLatexAndSolution(t *testing.T) {
	t.Parallel()

	client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/math/solve", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"latex":"x^2 = 4","solution":"x = \\pm 2"}`)
	}))
	defer server.Close()

	payload, err := client.SolveMath(context.Background(), "eq.png", []byte("img"))
	require.NoError(t, err)
	assert.Equal(t, "x^2 = 4", payload.LaTeX)
	assert.Equal(t, `x = \pm 2`, payload.Solution)
}

func TestVectorizeSketchReturnsRawMarkup(t *testing.T) {
	t.Parallel()

	const svg = `<svg xmlns="http://www.w3.org/2000/svg"><path d="M0 0"/></svg>`

	client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/sketch/vectorize", r.URL.Path)
		w.Header().Set("Content-Type", "image/svg+xml")
		_, _ = io.WriteString(w, svg)
	}))
	defer server.Close()

	payload, err := client.VectorizeSketch(context.Background(), "sketch.png", []byte("img"))
	require.NoError(t, err)
	assert.Equal(t, svg, payload.Markup)
}

func TestSynthesizeDownloadsAudioBlob(t *testing.T) {
	t.Parallel()

	client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/speech/tts", r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "hello", body["text"])
		assert.Equal(t, "voice-1", body["voice_id"])

		w.Header().Set("Content-Type", "audio/mpeg")
		w.Header().Set("Content-Disposition", `attachment; filename="speech.mp3"`)
		_, _ = w.Write([]byte("mp3-bytes"))
	}))
	defer server.Close()

	payload, err := client.Synthesize(context.Background(), "hello", "voice-1")
	require.NoError(t, err)
	assert.Equal(t, "speech.mp3", payload.Filename)
	assert.Equal(t, "audio/mpeg", payload.ContentType)
	assert.Equal(t, []byte("mp3-bytes"), payload.Data)
}

func TestSynthesizeOmitsEmptyVoice(t *testing.T) {
	t.Parallel()

	client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		_, present := body["voice_id"]
		assert.False(t, present)
		_, _ = w.Write([]byte("audio"))
	}))
	defer server.Close()

	_, err := client.Synthesize(context.Background(), "hello", "")
	require.NoError(t, err)
}

func TestVoicesListsBackendVoices(t *testing.T) {
	t.Parallel()

	client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/speech/voices", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"voices":[{"id":"v1","name":"Aria","lang":"en"},{"id":"v2","name":"Kavya","lang":"hi"}]}`)
	}))
	defer server.Close()

	voices, err := client.Voices(context.Background())
	require.NoError(t, err)
	require.Len(t, voices, 2)
	assert.Equal(t, Voice{ID: "v2", Name: "Kavya", Lang: "hi"}, voices[1])
}

func TestRunPDFMergeUsesFilesFieldForEveryInput(t *testing.T) {
	t.Parallel()

	client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/pdf/merge", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))

		files := r.MultipartForm.File["files"]
		require.Len(t, files, 2)
		assert.Equal(t, "a.pdf", files[0].Filename)
		assert.Equal(t, "b.pdf", files[1].Filename)

		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", `attachment; filename="merged.pdf"`)
		_, _ = w.Write([]byte("%PDF-merged"))
	}))
	defer server.Close()

	payload, err := client.RunPDF(context.Background(), domain.PDFMerge, []PDFFile{
		{Name: "a.pdf", Data: []byte("%PDF-a")},
		{Name: "b.pdf", Data: []byte("%PDF-b")},
	}, PDFParams{})
	require.NoError(t, err)
	assert.Equal(t, "merged.pdf", payload.Filename)
	assert.Equal(t, []byte("%PDF-merged"), payload.Data)
}

func TestRunPDFSingleOpRejectsMultipleFiles(t *testing.T) {
	t.Parallel()

	client := NewClient("http://127.0.0.1:0", nil)

	_, err := client.RunPDF(context.Background(), domain.PDFCompress, []PDFFile{
		{Name: "a.pdf"}, {Name: "b.pdf"},
	}, PDFParams{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "single input file")
}

func TestRunPDFProtectRequiresPassword(t *testing.T) {
	t.Parallel()

	client := NewClient("http://127.0.0.1:0", nil)

	_, err := client.RunPDF(context.Background(), domain.PDFProtect, []PDFFile{{Name: "a.pdf"}}, PDFParams{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "password is required")
}

func TestRunPDFRotateValidatesAngle(t *testing.T) {
	t.Parallel()

	client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "90", r.FormValue("rotate"))
		_, _ = w.Write([]byte("%PDF-rotated"))
	}))
	defer server.Close()

	// Zero angle defaults to a quarter turn.
	_, err := client.RunPDF(context.Background(), domain.PDFRotate, []PDFFile{{Name: "a.pdf"}}, PDFParams{})
	require.NoError(t, err)

	_, err = client.RunPDF(context.Background(), domain.PDFRotate, []PDFFile{{Name: "a.pdf"}}, PDFParams{Rotate: 45})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "90, 180 or 270")
}

func TestRunPDFRedactSendsTermsAndHostedFlag(t *testing.T) {
	t.Parallel()

	client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.JSONEq(t, `["ssn","phone"]`, r.FormValue("redactions"))
		assert.Equal(t, "true", r.FormValue("use_api"))
		_, _ = w.Write([]byte("%PDF-redacted"))
	}))
	defer server.Close()

	_, err := client.RunPDF(context.Background(), domain.PDFRedact, []PDFFile{{Name: "a.pdf"}}, PDFParams{
		Redactions:       []string{"ssn", "phone"},
		UseHostedService: true,
	})
	require.NoError(t, err)
}

func TestHistoryFiltersByType(t *testing.T) {
	t.Parallel()

	client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/history/", r.URL.Path)
		assert.Equal(t, "ocr", r.URL.Query().Get("type"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `[{"id":"h1","taskType":"ocr","input":"scan.png","output":"Hello","timestamp":"2026-08-30T12:00:00Z"}]`)
	}))
	defer server.Close()

	records, err := client.History(context.Background(), domain.ToolOCR)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "h1", records[0].ID)
	assert.Equal(t, "scan.png", records[0].Input)
	assert.Equal(t, 2026, records[0].Timestamp.Year())
}

func TestDeleteHistoryEscapesID(t *testing.T) {
	t.Parallel()

	client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/history/h%201", r.URL.EscapedPath())
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	require.NoError(t, client.DeleteHistory(context.Background(), "h 1"))
}

func TestDispositionFilenameParsing(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "out.pdf", dispositionFilename(`attachment; filename="out.pdf"`))
	assert.Equal(t, "", dispositionFilename(""))
	assert.Equal(t, "", dispositionFilename("not a header;;;"))
}
