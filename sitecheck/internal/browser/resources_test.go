package browser

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-rod/rod/lib/proto"
)

func TestBlockList(t *testing.T) {
	b := newBlockList([]string{"Images", " fonts ", "xhr"})

	tests := []struct {
		typ  proto.NetworkResourceType
		want bool
	}{
		{proto.NetworkResourceTypeImage, true},
		{proto.NetworkResourceTypeFont, true},
		{proto.NetworkResourceTypeStylesheet, false},
		{proto.NetworkResourceTypeMedia, false},
		{proto.NetworkResourceTypeXHR, true},
		{proto.NetworkResourceTypeDocument, false},
	}
	for _, tt := range tests {
		if got := b.blocks(tt.typ); got != tt.want {
			t.Errorf("blocks(%q): got %v, want %v", tt.typ, got, tt.want)
		}
	}
}

func TestRod_ResourceBlockingKeepsImagesInDOM(t *testing.T) {
	bin := requireChrome(t)

	const imgCount = 3
	var imageHits atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/pic.gif", func(w http.ResponseWriter, r *http.Request) {
		imageHits.Add(1)
		w.Header().Set("Content-Type", "image/gif")
		w.Write([]byte("GIF89a"))
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		var body strings.Builder
		body.WriteString("<!DOCTYPE html><html><body>")
		for i := 0; i < imgCount; i++ {
			fmt.Fprintf(&body, `<img src="/pic.gif?n=%d" alt="">`, i)
		}
		body.WriteString("</body></html>")
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(body.String()))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	p, err := New("rod", Config{Headless: true, Bin: bin, ResourceBlocking: []string{"images"}})
	if err != nil {
		t.Fatal(err)
	}
	s, err := p.Open(ctx)
	if err != nil {
		t.Skipf("browser unavailable in this environment: %v", err)
	}
	defer s.Close()

	if err := s.Navigate(ctx, srv.URL+"/"); err != nil {
		t.Fatalf("Navigate: %v", err)
	}

	n, err := s.Count(ctx, "img")
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != imgCount {
		t.Errorf("img count: got %d, want %d", n, imgCount)
	}
	if hits := imageHits.Load(); hits != 0 {
		t.Errorf("image requests reached server: got %d, want 0", hits)
	}
}
