package vectorstore

import (
	"context"
	"testing"

	"github.com/qdrant/go-client/qdrant"
)

func TestGRPCAddress(t *testing.T) {
	tests := []struct {
		name     string
		urlStr   string
		wantErr  bool
		wantHost string
		wantPort int
	}{
		{name: "default port", urlStr: "http://localhost:6333", wantHost: "localhost", wantPort: 6334},
		{name: "custom port", urlStr: "http://qdrant:9000", wantHost: "qdrant", wantPort: 9001},
		{name: "no port", urlStr: "http://localhost", wantHost: "localhost", wantPort: 6334},
		{name: "no hostname", urlStr: "http://:6333", wantHost: "localhost", wantPort: 6334},
		{name: "invalid URL", urlStr: "://invalid", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			host, port, err := grpcAddress(tt.urlStr)
			if tt.wantErr {
				if err == nil {
					t.Error("grpcAddress() expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("grpcAddress() unexpected error: %v", err)
			}
			if host != tt.wantHost || port != tt.wantPort {
				t.Errorf("grpcAddress() = %s:%d, want %s:%d", host, port, tt.wantHost, tt.wantPort)
			}
		})
	}
}

func TestNewQdrantStore_InvalidURL(t *testing.T) {
	if _, err := NewQdrantStore("://invalid"); err == nil {
		t.Error("NewQdrantStore() with invalid URL should return error")
	}
}

func TestQdrantStore_Upsert_EmptyPoints(t *testing.T) {
	store := &QdrantStore{}
	if err := store.Upsert(context.Background(), "translations", nil); err != nil {
		t.Errorf("Upsert() with empty points should return early without error, got: %v", err)
	}
}

func TestQdrantStore_Search_InvalidK(t *testing.T) {
	store := &QdrantStore{}
	for _, k := range []int{0, -1} {
		if _, err := store.Search(context.Background(), "translations", []float32{1, 2}, k, nil); err == nil {
			t.Errorf("Search() with k=%d should return error", k)
		}
	}
}

func TestBuildFilter(t *testing.T) {
	if f := buildFilter(nil); f != nil {
		t.Errorf("buildFilter(nil) = %v, want nil", f)
	}

	f := buildFilter(map[string]any{
		"target_lang": "es",
		"source_lang": "en",
		"version":     2,
	})
	if f == nil || len(f.Must) != 3 {
		t.Fatalf("buildFilter() = %v, want 3 conditions", f)
	}

	first := f.Must[0].GetField()
	if first == nil || first.Key != "source_lang" || first.Match.GetKeyword() != "en" {
		t.Errorf("first condition = %v, want source_lang == en", first)
	}
	last := f.Must[2].GetField()
	if last == nil || last.Key != "version" || last.Match.GetInteger() != 2 {
		t.Errorf("last condition = %v, want version == 2", last)
	}
}

func TestConvertPayloadToMap(t *testing.T) {
	result := convertPayloadToMap(nil)
	if result == nil || len(result) != 0 {
		t.Errorf("convertPayloadToMap(nil) = %v, want empty map", result)
	}

	payload := qdrant.NewValueMap(map[string]any{
		"source_text": "hello",
		"chunks":      int64(3),
		"cached":      true,
	})
	got := convertPayloadToMap(payload)
	if got["source_text"] != "hello" || got["chunks"] != int64(3) || got["cached"] != true {
		t.Errorf("convertPayloadToMap() = %v", got)
	}
}
