package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.uber.org/mock/gomock"

	"linguaflow/internal/chunker"
	"linguaflow/internal/service"
	"linguaflow/internal/service/mocks"
	"linguaflow/internal/storage"
	"linguaflow/internal/translator"
	vsmocks "linguaflow/internal/vectorstore/mocks"
)

func init() {
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func jsonBody(t *testing.T, v any) io.Reader {
	t.Helper()
	if s, ok := v.(string); ok {
		return strings.NewReader(s)
	}
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("failed to marshal body: %v", err)
	}
	return bytes.NewReader(b)
}

func TestTranslateHandler_ServeHTTP(t *testing.T) {
	tests := []struct {
		name          string
		method        string
		body          any
		mockSetup     func(*mocks.MockTranslationService)
		wantStatus    int
		checkResponse func(*testing.T, *httptest.ResponseRecorder)
	}{
		{
			name:   "successful translation",
			method: http.MethodPost,
			body:   TranslateRequest{Text: "Hello", Source: "en", Target: "es"},
			mockSetup: func(m *mocks.MockTranslationService) {
				m.EXPECT().
					Translate(gomock.Any(), service.TranslateRequest{Text: "Hello", Source: "en", Target: "es"}).
					Return(service.TranslateResponse{ID: "t1", TranslatedText: "Hola", Chunks: 1, Backend: "llm", DurationMS: 3}, nil)
			},
			wantStatus: http.StatusOK,
			checkResponse: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp TranslateResponse
				if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
					t.Fatalf("failed to decode response: %v", err)
				}
				if resp.ID != "t1" || resp.TranslatedText != "Hola" || resp.Backend != "llm" {
					t.Errorf("response = %+v", resp)
				}
			},
		},
		{
			name:       "method not allowed",
			method:     http.MethodGet,
			mockSetup:  func(m *mocks.MockTranslationService) {},
			wantStatus: http.StatusMethodNotAllowed,
		},
		{
			name:       "invalid JSON body",
			method:     http.MethodPost,
			body:       "invalid json",
			mockSetup:  func(m *mocks.MockTranslationService) {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:   "validation error",
			method: http.MethodPost,
			body:   TranslateRequest{Target: "es"},
			mockSetup: func(m *mocks.MockTranslationService) {
				m.EXPECT().Translate(gomock.Any(), gomock.Any()).
					Return(service.TranslateResponse{}, &service.ValidationError{Field: "text", Message: "cannot be empty"})
			},
			wantStatus: http.StatusBadRequest,
			checkResponse: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp ErrorResponse
				_ = json.NewDecoder(w.Body).Decode(&resp)
				if !strings.Contains(resp.Error, "text") {
					t.Errorf("error = %q, want field name", resp.Error)
				}
			},
		},
		{
			name:   "backend failure",
			method: http.MethodPost,
			body:   TranslateRequest{Text: "Hello", Target: "es"},
			mockSetup: func(m *mocks.MockTranslationService) {
				m.EXPECT().Translate(gomock.Any(), gomock.Any()).
					Return(service.TranslateResponse{}, service.WrapError(service.ErrExternalService, "chunk 1 of 1"))
			},
			wantStatus: http.StatusBadGateway,
		},
		{
			name:   "unexpected failure",
			method: http.MethodPost,
			body:   TranslateRequest{Text: "Hello", Target: "es"},
			mockSetup: func(m *mocks.MockTranslationService) {
				m.EXPECT().Translate(gomock.Any(), gomock.Any()).
					Return(service.TranslateResponse{}, errors.New("disk full"))
			},
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			svc := mocks.NewMockTranslationService(ctrl)
			tt.mockSetup(svc)

			var body io.Reader
			if tt.body != nil {
				body = jsonBody(t, tt.body)
			}
			req := httptest.NewRequest(tt.method, "/api/translate", body)
			w := httptest.NewRecorder()

			NewTranslateHandler(svc, 0).ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", w.Code, tt.wantStatus, w.Body.String())
			}
			if tt.checkResponse != nil {
				tt.checkResponse(t, w)
			}
		})
	}
}

func TestTranslateHandler_Streaming(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc := mocks.NewMockTranslationService(ctrl)

	svc.EXPECT().TranslateStream(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, _ service.TranslateRequest, cb func(service.ChunkResult) error) (service.TranslateResponse, error) {
			if err := cb(service.ChunkResult{Index: 0, Total: 2, Text: "Hola"}); err != nil {
				return service.TranslateResponse{}, err
			}
			if err := cb(service.ChunkResult{Index: 1, Total: 2, Text: "mundo", Separator: "\n\n"}); err != nil {
				return service.TranslateResponse{}, err
			}
			return service.TranslateResponse{ID: "t2", TranslatedText: "Hola\n\nmundo", Chunks: 2, Backend: "llm"}, nil
		})

	req := httptest.NewRequest(http.MethodPost, "/api/translate?stream=true",
		jsonBody(t, TranslateRequest{Text: "Hello\n\nworld", Target: "es"}))
	w := httptest.NewRecorder()
	NewTranslateHandler(svc, 0).ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("Content-Type = %q", ct)
	}

	body := w.Body.String()
	for _, want := range []string{
		"event: chunk\ndata: {\"index\":0,\"total\":2,\"text\":\"Hola\",\"separator\":\"\"}\n\n",
		"event: chunk\ndata: {\"index\":1,\"total\":2,\"text\":\"mundo\",\"separator\":\"\\n\\n\"}\n\n",
		"event: complete\ndata: {\"id\":\"t2\"",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("stream missing %q in:\n%s", want, body)
		}
	}
	if !strings.HasSuffix(body, "data: [DONE]\n\n") {
		t.Errorf("stream should end with [DONE], got:\n%s", body)
	}
}

func TestTranslateHandler_StreamingErrors(t *testing.T) {
	t.Run("error before first chunk is plain JSON", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		svc := mocks.NewMockTranslationService(ctrl)
		svc.EXPECT().TranslateStream(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(service.TranslateResponse{}, &service.ValidationError{Field: "target", Message: "is required"})

		req := httptest.NewRequest(http.MethodPost, "/api/translate?stream=true", jsonBody(t, TranslateRequest{Text: "x"}))
		w := httptest.NewRecorder()
		NewTranslateHandler(svc, 0).ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", w.Code)
		}
	})

	t.Run("error mid stream is an error event", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		svc := mocks.NewMockTranslationService(ctrl)
		svc.EXPECT().TranslateStream(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, _ service.TranslateRequest, cb func(service.ChunkResult) error) (service.TranslateResponse, error) {
				_ = cb(service.ChunkResult{Index: 0, Total: 2, Text: "Hola"})
				return service.TranslateResponse{}, service.ErrExternalService
			})

		req := httptest.NewRequest(http.MethodPost, "/api/translate?stream=true", jsonBody(t, TranslateRequest{Text: "x", Target: "es"}))
		w := httptest.NewRecorder()
		NewTranslateHandler(svc, 0).ServeHTTP(w, req)

		body := w.Body.String()
		if !strings.Contains(body, "event: error\n") {
			t.Errorf("expected error event, got:\n%s", body)
		}
		if strings.Contains(body, "[DONE]") {
			t.Error("failed stream should not end with [DONE]")
		}
	})
}

func multipartUpload(t *testing.T, fields map[string]string, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("WriteField() error = %v", err)
		}
	}
	if filename != "" {
		fw, err := mw.CreateFormFile("file", filename)
		if err != nil {
			t.Fatalf("CreateFormFile() error = %v", err)
		}
		_, _ = fw.Write(content)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	return &buf, mw.FormDataContentType()
}

func TestFileHandler_ServeHTTP(t *testing.T) {
	t.Run("successful upload", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		svc := mocks.NewMockTranslationService(ctrl)
		svc.EXPECT().TranslateFile(gomock.Any(), service.FileRequest{
			Filename: "doc.md",
			Content:  []byte("# Hi\n\nHello"),
			Source:   "en",
			Target:   "fr",
			Strategy: "words",
		}).Return(service.FileResponse{
			FileID:            "f1",
			Title:             "Hi",
			Format:            "markdown",
			TranslateResponse: service.TranslateResponse{ID: "t1", TranslatedText: "Salut\n\nBonjour", Chunks: 1},
		}, nil)

		body, ct := multipartUpload(t, map[string]string{"source": "en", "target": "fr", "strategy": "words"}, "doc.md", []byte("# Hi\n\nHello"))
		req := httptest.NewRequest(http.MethodPost, "/api/files", body)
		req.Header.Set("Content-Type", ct)
		w := httptest.NewRecorder()
		NewFileHandler(svc, 0).ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200 (body %s)", w.Code, w.Body.String())
		}
		var resp FileResponse
		if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if resp.FileID != "f1" || resp.ID != "t1" || resp.Title != "Hi" {
			t.Errorf("response = %+v", resp)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		svc := mocks.NewMockTranslationService(ctrl)

		body, ct := multipartUpload(t, map[string]string{"target": "fr"}, "", nil)
		req := httptest.NewRequest(http.MethodPost, "/api/files", body)
		req.Header.Set("Content-Type", ct)
		w := httptest.NewRecorder()
		NewFileHandler(svc, 0).ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", w.Code)
		}
	})

	t.Run("file too large", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		svc := mocks.NewMockTranslationService(ctrl)

		body, ct := multipartUpload(t, map[string]string{"target": "fr"}, "big.txt", bytes.Repeat([]byte("a"), 2048))
		req := httptest.NewRequest(http.MethodPost, "/api/files", body)
		req.Header.Set("Content-Type", ct)
		w := httptest.NewRecorder()
		NewFileHandler(svc, 1024).ServeHTTP(w, req)

		if w.Code != http.StatusRequestEntityTooLarge {
			t.Errorf("status = %d, want 413", w.Code)
		}
	})

	t.Run("not multipart", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		svc := mocks.NewMockTranslationService(ctrl)

		req := httptest.NewRequest(http.MethodPost, "/api/files", strings.NewReader("{}"))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		NewFileHandler(svc, 0).ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", w.Code)
		}
	})
}

func TestChunksHandler_ServeHTTP(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc := mocks.NewMockTranslationService(ctrl)
	svc.EXPECT().Preview("aaaa\n\nbbbb", "paragraph", 5).Return([]chunker.Chunk{
		{Index: 0, Text: "aaaa"},
		{Index: 1, Text: "bbbb", Separator: "\n\n"},
	}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/chunks",
		jsonBody(t, ChunksRequest{Text: "aaaa\n\nbbbb", Strategy: "paragraph", MaxChunkSize: 5}))
	w := httptest.NewRecorder()
	NewChunksHandler(svc, 0).ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var resp ChunksResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Count != 2 || resp.Chunks[1].Separator != "\n\n" || resp.Chunks[0].Length != 4 {
		t.Errorf("response = %+v", resp)
	}
}

func TestJSONHandlers_BodyTooLarge(t *testing.T) {
	body := `{"text":"` + strings.Repeat("a", 200) + `","target":"es"}`

	tests := []struct {
		name    string
		path    string
		handler func(svc service.TranslationService) http.Handler
	}{
		{
			name:    "translate",
			path:    "/api/translate",
			handler: func(svc service.TranslationService) http.Handler { return NewTranslateHandler(svc, 64) },
		},
		{
			name:    "chunks",
			path:    "/api/chunks",
			handler: func(svc service.TranslationService) http.Handler { return NewChunksHandler(svc, 64) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			svc := mocks.NewMockTranslationService(ctrl) // Must not be called

			req := httptest.NewRequest(http.MethodPost, tt.path, strings.NewReader(body))
			w := httptest.NewRecorder()
			tt.handler(svc).ServeHTTP(w, req)

			if w.Code != http.StatusRequestEntityTooLarge {
				t.Errorf("status = %d, want 413", w.Code)
			}
		})
	}
}

func newHistoryRouter(h *TranslationsHandler) http.Handler {
	r := chi.NewRouter()
	r.Get("/api/translations", h.List)
	r.Get("/api/translations/{id}", h.Get)
	r.Delete("/api/translations/{id}", h.Delete)
	return r
}

func TestTranslationsHandler(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		path       string
		mockSetup  func(*mocks.MockTranslationService)
		wantStatus int
		wantBody   string
	}{
		{
			name:   "list",
			method: http.MethodGet,
			path:   "/api/translations?limit=5&offset=10",
			mockSetup: func(m *mocks.MockTranslationService) {
				m.EXPECT().History(gomock.Any(), 5, 10).Return([]*storage.TranslationSummary{
					{ID: "t1", SourceLang: "en", TargetLang: "es", Preview: "Hello…", Status: storage.TranslationCompleted},
				}, nil)
			},
			wantStatus: http.StatusOK,
			wantBody:   `"preview":"Hello…"`,
		},
		{
			name:       "list with bad limit",
			method:     http.MethodGet,
			path:       "/api/translations?limit=abc",
			mockSetup:  func(m *mocks.MockTranslationService) {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:   "get",
			method: http.MethodGet,
			path:   "/api/translations/t1",
			mockSetup: func(m *mocks.MockTranslationService) {
				m.EXPECT().Get(gomock.Any(), "t1").Return(&storage.TranslationRecord{
					ID: "t1", SourceText: "Hello", TranslatedText: "Hola", Status: storage.TranslationCompleted,
				}, nil)
			},
			wantStatus: http.StatusOK,
			wantBody:   `"translated_text":"Hola"`,
		},
		{
			name:   "get missing",
			method: http.MethodGet,
			path:   "/api/translations/nope",
			mockSetup: func(m *mocks.MockTranslationService) {
				m.EXPECT().Get(gomock.Any(), "nope").Return(nil, service.ErrNotFound)
			},
			wantStatus: http.StatusNotFound,
		},
		{
			name:   "delete",
			method: http.MethodDelete,
			path:   "/api/translations/t1",
			mockSetup: func(m *mocks.MockTranslationService) {
				m.EXPECT().Delete(gomock.Any(), "t1").Return(nil)
			},
			wantStatus: http.StatusNoContent,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			svc := mocks.NewMockTranslationService(ctrl)
			tt.mockSetup(svc)

			w := httptest.NewRecorder()
			newHistoryRouter(NewTranslationsHandler(svc)).ServeHTTP(w, httptest.NewRequest(tt.method, tt.path, nil))

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", w.Code, tt.wantStatus, w.Body.String())
			}
			if tt.wantBody != "" && !strings.Contains(w.Body.String(), tt.wantBody) {
				t.Errorf("body %s does not contain %s", w.Body.String(), tt.wantBody)
			}
		})
	}
}

func TestAdminHandler(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc := mocks.NewMockTranslationService(ctrl)
	h := NewAdminHandler(svc)

	svc.EXPECT().Stats(gomock.Any()).Return(&storage.Stats{Translations: 3, ByBackend: map[string]int{"llm": 3}}, nil)
	w := httptest.NewRecorder()
	h.Stats(w, httptest.NewRequest(http.MethodGet, "/api/admin/stats", nil))
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"translations":3`) {
		t.Errorf("Stats() = %d %s", w.Code, w.Body.String())
	}

	svc.EXPECT().Languages().Return([]translator.Language{{Code: "en", Name: "English"}})
	w = httptest.NewRecorder()
	h.Languages(w, httptest.NewRequest(http.MethodGet, "/api/languages", nil))
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `{"code":"en","name":"English"}`) {
		t.Errorf("Languages() = %d %s", w.Code, w.Body.String())
	}
}

func TestHealthHandler_ServeHTTP(t *testing.T) {
	ok := func(context.Context) error { return nil }
	fail := func(context.Context) error { return errors.New("down") }

	tests := []struct {
		name       string
		required   map[string]HealthCheck
		optional   map[string]HealthCheck
		wantStatus int
		wantState  string
	}{
		{
			name:       "healthy",
			required:   map[string]HealthCheck{"database": ok},
			optional:   map[string]HealthCheck{"cache": ok},
			wantStatus: http.StatusOK,
			wantState:  "healthy",
		},
		{
			name:       "degraded",
			required:   map[string]HealthCheck{"database": ok},
			optional:   map[string]HealthCheck{"cache": fail},
			wantStatus: http.StatusServiceUnavailable,
			wantState:  "degraded",
		},
		{
			name:       "unhealthy",
			required:   map[string]HealthCheck{"database": fail},
			wantStatus: http.StatusServiceUnavailable,
			wantState:  "unhealthy",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			NewHealthHandler(tt.required, tt.optional).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/health", nil))

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			var resp HealthResponse
			if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if resp.Status != tt.wantState {
				t.Errorf("Status = %q, want %q", resp.Status, tt.wantState)
			}
		})
	}
}

func TestVectorStoreCheck(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := vsmocks.NewMockVectorStore(ctrl)

	gomock.InOrder(
		store.EXPECT().CollectionExists(gomock.Any(), "translations").Return(true, nil),
		store.EXPECT().CollectionExists(gomock.Any(), "translations").Return(false, nil),
		store.EXPECT().CollectionExists(gomock.Any(), "translations").Return(false, errors.New("unreachable")),
	)

	check := VectorStoreCheck(store, "translations")
	if err := check(context.Background()); err != nil {
		t.Errorf("existing collection: %v", err)
	}
	if err := check(context.Background()); err == nil {
		t.Error("missing collection should fail")
	}
	if err := check(context.Background()); err == nil {
		t.Error("unreachable store should fail")
	}
}
