package translator_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"golang.org/x/time/rate"

	"linguaflow/internal/cache"
	"linguaflow/internal/llm"
	"linguaflow/internal/translator"
	"linguaflow/internal/translator/mocks"
	"linguaflow/internal/vectorstore"
	vsmocks "linguaflow/internal/vectorstore/mocks"

	"go.uber.org/mock/gomock"
)

var helloReq = translator.Request{Text: "Hello world", Source: "en", Target: "es"}

func TestRetrying_Translate(t *testing.T) {
	unavailable := &llm.StatusError{StatusCode: 503, Body: "busy"}
	badRequest := &llm.StatusError{StatusCode: 400, Body: "bad"}

	tests := []struct {
		name      string
		retries   int
		mockSetup func(m *mocks.MockTranslator)
		want      string
		wantErr   error
		wantMsg   string
	}{
		{
			name:    "succeeds after transient failures",
			retries: 3,
			mockSetup: func(m *mocks.MockTranslator) {
				gomock.InOrder(
					m.EXPECT().Translate(gomock.Any(), helloReq).Return("", unavailable),
					m.EXPECT().Translate(gomock.Any(), helloReq).Return("", unavailable),
					m.EXPECT().Translate(gomock.Any(), helloReq).Return("Hola mundo", nil),
				)
			},
			want: "Hola mundo",
		},
		{
			name:    "does not retry client errors",
			retries: 3,
			mockSetup: func(m *mocks.MockTranslator) {
				m.EXPECT().Translate(gomock.Any(), helloReq).Return("", badRequest).Times(1)
			},
			wantErr: badRequest,
		},
		{
			name:    "gives up after max retries",
			retries: 2,
			mockSetup: func(m *mocks.MockTranslator) {
				m.EXPECT().Translate(gomock.Any(), helloReq).Return("", unavailable).Times(3)
			},
			wantErr: unavailable,
			wantMsg: "giving up after 3 attempts",
		},
		{
			name:    "zero retries",
			retries: 0,
			mockSetup: func(m *mocks.MockTranslator) {
				m.EXPECT().Translate(gomock.Any(), helloReq).Return("", unavailable).Times(1)
			},
			wantErr: unavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			next := mocks.NewMockTranslator(ctrl)
			next.EXPECT().Name().Return("llm").AnyTimes()
			tt.mockSetup(next)

			r := translator.NewRetrying(next, translator.RetryConfig{
				MaxRetries: tt.retries,
				BaseDelay:  time.Millisecond,
				Limiter:    rate.NewLimiter(rate.Inf, 1),
			})

			got, err := r.Translate(context.Background(), helloReq)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Translate() error = %v, want %v", err, tt.wantErr)
				}
				if tt.wantMsg != "" && !strings.Contains(err.Error(), tt.wantMsg) {
					t.Errorf("error %q does not mention %q", err, tt.wantMsg)
				}
				return
			}
			if err != nil {
				t.Fatalf("Translate() unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Translate() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRetrying_StopsOnCancel(t *testing.T) {
	ctrl := gomock.NewController(t)
	next := mocks.NewMockTranslator(ctrl)
	next.EXPECT().Name().Return("llm").AnyTimes()

	ctx, cancel := context.WithCancel(context.Background())
	next.EXPECT().Translate(gomock.Any(), helloReq).DoAndReturn(
		func(context.Context, translator.Request) (string, error) {
			cancel()
			return "", &llm.StatusError{StatusCode: 503}
		}).Times(1)

	r := translator.NewRetrying(next, translator.RetryConfig{MaxRetries: 5, BaseDelay: time.Hour})
	_, err := r.Translate(ctx, helloReq)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestFallback_Translate(t *testing.T) {
	t.Run("primary succeeds", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		primary := mocks.NewMockTranslator(ctrl)
		secondary := mocks.NewMockTranslator(ctrl)
		primary.EXPECT().Translate(gomock.Any(), helloReq).Return("Hola mundo", nil)

		got, err := translator.NewFallback(primary, secondary).Translate(context.Background(), helloReq)
		if err != nil || got != "Hola mundo" {
			t.Fatalf("Translate() = %q, %v", got, err)
		}
	})

	t.Run("secondary used on failure", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		primary := mocks.NewMockTranslator(ctrl)
		secondary := mocks.NewMockTranslator(ctrl)
		primary.EXPECT().Name().Return("llm").AnyTimes()
		secondary.EXPECT().Name().Return("dictionary").AnyTimes()
		primary.EXPECT().Translate(gomock.Any(), helloReq).Return("", errors.New("down"))
		secondary.EXPECT().Translate(gomock.Any(), helloReq).Return("hola mundo", nil)

		f := translator.NewFallback(primary, secondary)
		got, err := f.Translate(context.Background(), helloReq)
		if err != nil || got != "hola mundo" {
			t.Fatalf("Translate() = %q, %v", got, err)
		}
		if f.Name() != "llm" {
			t.Errorf("Name() = %q, want primary name", f.Name())
		}
	})

	t.Run("both fail", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		primary := mocks.NewMockTranslator(ctrl)
		secondary := mocks.NewMockTranslator(ctrl)
		primary.EXPECT().Name().Return("llm").AnyTimes()
		secondary.EXPECT().Name().Return("dictionary").AnyTimes()
		primaryErr := errors.New("down")
		primary.EXPECT().Translate(gomock.Any(), helloReq).Return("", primaryErr)
		secondary.EXPECT().Translate(gomock.Any(), helloReq).Return("", errors.New("unsupported pair"))

		_, err := translator.NewFallback(primary, secondary).Translate(context.Background(), helloReq)
		if !errors.Is(err, primaryErr) {
			t.Fatalf("expected primary error to be wrapped, got %v", err)
		}
		if !strings.Contains(err.Error(), "unsupported pair") {
			t.Errorf("error %q does not mention the fallback failure", err)
		}
	})

	t.Run("cancellation is not masked", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		primary := mocks.NewMockTranslator(ctrl)
		secondary := mocks.NewMockTranslator(ctrl)
		primary.EXPECT().Translate(gomock.Any(), helloReq).Return("", context.Canceled)

		_, err := translator.NewFallback(primary, secondary).Translate(context.Background(), helloReq)
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	})
}

func TestCacheKey(t *testing.T) {
	a := translator.CacheKey("llm", helloReq)
	b := translator.CacheKey("llm", translator.Request{Text: "Hello world", Source: "EN", Target: "ES"})
	if a != b {
		t.Errorf("language codes should be case-insensitive: %q vs %q", a, b)
	}
	if !strings.HasPrefix(a, "lf:tr:llm:en:es:") {
		t.Errorf("unexpected key layout: %q", a)
	}
	if a == translator.CacheKey("dictionary", helloReq) {
		t.Error("backends must not share cache keys")
	}
	if a == translator.CacheKey("llm", translator.Request{Text: "Hello world!", Source: "en", Target: "es"}) {
		t.Error("different texts must not share cache keys")
	}
}

func TestCached_Translate(t *testing.T) {
	key := translator.CacheKey("llm", helloReq)
	ttl := time.Hour

	tests := []struct {
		name      string
		mockSetup func(next *mocks.MockTranslator, c *mocks.MockCache)
		want      string
		wantErr   bool
	}{
		{
			name: "hit",
			mockSetup: func(next *mocks.MockTranslator, c *mocks.MockCache) {
				c.EXPECT().Get(gomock.Any(), key).Return("Hola mundo", nil)
			},
			want: "Hola mundo",
		},
		{
			name: "miss stores result",
			mockSetup: func(next *mocks.MockTranslator, c *mocks.MockCache) {
				c.EXPECT().Get(gomock.Any(), key).Return("", cache.ErrMiss)
				next.EXPECT().Translate(gomock.Any(), helloReq).Return("Hola mundo", nil)
				c.EXPECT().Set(gomock.Any(), key, "Hola mundo", ttl).Return(nil)
			},
			want: "Hola mundo",
		},
		{
			name: "cache down falls through",
			mockSetup: func(next *mocks.MockTranslator, c *mocks.MockCache) {
				c.EXPECT().Get(gomock.Any(), key).Return("", errors.New("connection refused"))
				next.EXPECT().Translate(gomock.Any(), helloReq).Return("Hola mundo", nil)
				c.EXPECT().Set(gomock.Any(), key, "Hola mundo", ttl).Return(errors.New("connection refused"))
			},
			want: "Hola mundo",
		},
		{
			name: "failed translations are not cached",
			mockSetup: func(next *mocks.MockTranslator, c *mocks.MockCache) {
				c.EXPECT().Get(gomock.Any(), key).Return("", cache.ErrMiss)
				next.EXPECT().Translate(gomock.Any(), helloReq).Return("", errors.New("down"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			next := mocks.NewMockTranslator(ctrl)
			c := mocks.NewMockCache(ctrl)
			next.EXPECT().Name().Return("llm").AnyTimes()
			tt.mockSetup(next, c)

			got, err := translator.NewCached(next, c, ttl).Translate(context.Background(), helloReq)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Translate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("Translate() = %q, want %q", got, tt.want)
			}
		})
	}
}

// mapCache is an in-memory Cache.
type mapCache map[string]string

func (c mapCache) Get(_ context.Context, key string) (string, error) {
	v, ok := c[key]
	if !ok {
		return "", cache.ErrMiss
	}
	return v, nil
}

func (c mapCache) Set(_ context.Context, key, value string, _ time.Duration) error {
	c[key] = value
	return nil
}

func TestCached_DoesNotStoreFallbackAnswers(t *testing.T) {
	ctrl := gomock.NewController(t)
	primary := mocks.NewMockTranslator(ctrl)
	secondary := mocks.NewMockTranslator(ctrl)
	primary.EXPECT().Name().Return("llm").AnyTimes()
	secondary.EXPECT().Name().Return("dictionary").AnyTimes()

	gomock.InOrder(
		primary.EXPECT().Translate(gomock.Any(), helloReq).Return("", &llm.StatusError{StatusCode: 503}),
		primary.EXPECT().Translate(gomock.Any(), helloReq).Return("Hola, mundo bonito.", nil),
	)
	secondary.EXPECT().Translate(gomock.Any(), helloReq).Return("hola world", nil)

	c := mapCache{}
	tr := translator.NewCached(translator.NewFallback(primary, secondary), c, time.Hour)

	want := []string{"hola world", "Hola, mundo bonito.", "Hola, mundo bonito."}
	for i, w := range want {
		got, err := tr.Translate(context.Background(), helloReq)
		if err != nil {
			t.Fatalf("call %d: Translate() unexpected error: %v", i+1, err)
		}
		if got != w {
			t.Errorf("call %d: Translate() = %q, want %q", i+1, got, w)
		}
	}
	if len(c) != 1 {
		t.Errorf("cache holds %d entries, want 1", len(c))
	}
}

func TestServed_NestedRecorders(t *testing.T) {
	ctrl := gomock.NewController(t)
	primary := mocks.NewMockTranslator(ctrl)
	secondary := mocks.NewMockTranslator(ctrl)
	emb := mocks.NewMockEmbedder(ctrl)
	store := vsmocks.NewMockVectorStore(ctrl)
	primary.EXPECT().Name().Return("llm").AnyTimes()
	secondary.EXPECT().Name().Return("dictionary").AnyTimes()

	primary.EXPECT().Translate(gomock.Any(), helloReq).Return("", errors.New("down"))
	secondary.EXPECT().Translate(gomock.Any(), helloReq).Return("hola mundo", nil)
	emb.EXPECT().EmbedTexts(gomock.Any(), gomock.Any()).Return([][]float32{{0.1}}, nil)
	store.EXPECT().Search(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, nil)
	// No Upsert: fallback answers are not remembered.

	tr := translator.NewMemory(
		translator.NewCached(translator.NewFallback(primary, secondary), mapCache{}, time.Hour),
		emb, store, "translations", 0.97)

	ctx, served := translator.WithServed(context.Background())
	if _, err := tr.Translate(ctx, helloReq); err != nil {
		t.Fatalf("Translate() unexpected error: %v", err)
	}
	backend, ok := served.Fallback()
	if !ok || backend != "dictionary" {
		t.Errorf("Fallback() = %q, %v, want dictionary, true", backend, ok)
	}
}

func TestSupports(t *testing.T) {
	ctrl := gomock.NewController(t)
	open := mocks.NewMockTranslator(ctrl)
	open.EXPECT().Name().Return("llm").AnyTimes()
	limited := pairOnly{pair: "en-es"}

	tests := []struct {
		name string
		tr   translator.Translator
		want bool
	}{
		{name: "backend without pair list", tr: open, want: true},
		{name: "unsupported pair", tr: limited, want: false},
		{name: "decorators forward", tr: translator.NewCached(translator.NewRetrying(limited, translator.RetryConfig{}), mapCache{}, time.Hour), want: false},
		{name: "fallback serves if either side does", tr: translator.NewFallback(limited, open), want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := translator.Supports(tt.tr, "en", "ja"); got != tt.want {
				t.Errorf("Supports(en, ja) = %v, want %v", got, tt.want)
			}
		})
	}
}

// pairOnly serves a single language pair.
type pairOnly struct{ pair string }

func (p pairOnly) Name() string { return "pair-only" }

func (p pairOnly) Translate(_ context.Context, req translator.Request) (string, error) {
	return req.Text, nil
}

func (p pairOnly) Supports(source, target string) bool {
	return source+"-"+target == p.pair
}

func TestMemory_Translate(t *testing.T) {
	vec := []float32{0.1, 0.2, 0.3}
	filters := map[string]any{"source_lang": "en", "target_lang": "es"}

	tests := []struct {
		name      string
		mockSetup func(next *mocks.MockTranslator, emb *mocks.MockEmbedder, store *vsmocks.MockVectorStore)
		want      string
		wantErr   bool
	}{
		{
			name: "hit reuses stored translation",
			mockSetup: func(next *mocks.MockTranslator, emb *mocks.MockEmbedder, store *vsmocks.MockVectorStore) {
				emb.EXPECT().EmbedTexts(gomock.Any(), []string{helloReq.Text}).Return([][]float32{vec}, nil)
				store.EXPECT().Search(gomock.Any(), "translations", vec, 3, filters).Return([]vectorstore.SearchResult{
					{PointID: "p1", Score: 0.99, Meta: map[string]any{"source_text": "Hello   world\n", "translated_text": "Hola mundo"}},
				}, nil)
			},
			want: "Hola mundo",
		},
		{
			name: "similar but different text is translated",
			mockSetup: func(next *mocks.MockTranslator, emb *mocks.MockEmbedder, store *vsmocks.MockVectorStore) {
				emb.EXPECT().EmbedTexts(gomock.Any(), gomock.Any()).Return([][]float32{vec}, nil)
				store.EXPECT().Search(gomock.Any(), "translations", vec, 3, filters).Return([]vectorstore.SearchResult{
					{PointID: "p1", Score: 0.99, Meta: map[string]any{"source_text": "Hello there world", "translated_text": "Hola"}},
				}, nil)
				next.EXPECT().Translate(gomock.Any(), helloReq).Return("Hola mundo", nil)
				store.EXPECT().Upsert(gomock.Any(), "translations", gomock.Any()).DoAndReturn(
					func(_ context.Context, _ string, points []vectorstore.Point) error {
						if len(points) != 1 {
							t.Fatalf("upserted %d points, want 1", len(points))
						}
						p := points[0]
						if p.ID != translator.MemoryID(helloReq) {
							t.Errorf("point id = %q, want %q", p.ID, translator.MemoryID(helloReq))
						}
						if p.Meta["translated_text"] != "Hola mundo" || p.Meta["backend"] != "llm" {
							t.Errorf("unexpected payload: %v", p.Meta)
						}
						return nil
					})
			},
			want: "Hola mundo",
		},
		{
			name: "low score is ignored",
			mockSetup: func(next *mocks.MockTranslator, emb *mocks.MockEmbedder, store *vsmocks.MockVectorStore) {
				emb.EXPECT().EmbedTexts(gomock.Any(), gomock.Any()).Return([][]float32{vec}, nil)
				store.EXPECT().Search(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return([]vectorstore.SearchResult{
					{PointID: "p1", Score: 0.5, Meta: map[string]any{"source_text": "Hello world", "translated_text": "stale"}},
				}, nil)
				next.EXPECT().Translate(gomock.Any(), helloReq).Return("Hola mundo", nil)
				store.EXPECT().Upsert(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
			},
			want: "Hola mundo",
		},
		{
			name: "embedding failure falls through",
			mockSetup: func(next *mocks.MockTranslator, emb *mocks.MockEmbedder, store *vsmocks.MockVectorStore) {
				emb.EXPECT().EmbedTexts(gomock.Any(), gomock.Any()).Return(nil, errors.New("no embedder"))
				next.EXPECT().Translate(gomock.Any(), helloReq).Return("Hola mundo", nil)
			},
			want: "Hola mundo",
		},
		{
			name: "store failures are not fatal",
			mockSetup: func(next *mocks.MockTranslator, emb *mocks.MockEmbedder, store *vsmocks.MockVectorStore) {
				emb.EXPECT().EmbedTexts(gomock.Any(), gomock.Any()).Return([][]float32{vec}, nil)
				store.EXPECT().Search(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, errors.New("unavailable"))
				next.EXPECT().Translate(gomock.Any(), helloReq).Return("Hola mundo", nil)
				store.EXPECT().Upsert(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("unavailable"))
			},
			want: "Hola mundo",
		},
		{
			name: "translation error is returned",
			mockSetup: func(next *mocks.MockTranslator, emb *mocks.MockEmbedder, store *vsmocks.MockVectorStore) {
				emb.EXPECT().EmbedTexts(gomock.Any(), gomock.Any()).Return([][]float32{vec}, nil)
				store.EXPECT().Search(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, nil)
				next.EXPECT().Translate(gomock.Any(), helloReq).Return("", errors.New("down"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			next := mocks.NewMockTranslator(ctrl)
			emb := mocks.NewMockEmbedder(ctrl)
			store := vsmocks.NewMockVectorStore(ctrl)
			next.EXPECT().Name().Return("llm").AnyTimes()
			tt.mockSetup(next, emb, store)

			m := translator.NewMemory(next, emb, store, "translations", 0.97)
			got, err := m.Translate(context.Background(), helloReq)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Translate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("Translate() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMemoryID(t *testing.T) {
	a := translator.MemoryID(helloReq)
	b := translator.MemoryID(translator.Request{Text: " Hello\n world ", Source: "EN", Target: "es"})
	if a != b {
		t.Errorf("ids should ignore whitespace and case of codes: %q vs %q", a, b)
	}
	if a == translator.MemoryID(translator.Request{Text: "Hello world", Source: "en", Target: "fr"}) {
		t.Error("different language pairs must not share ids")
	}
}
