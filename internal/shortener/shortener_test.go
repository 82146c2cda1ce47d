package shortener

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

const longURL = "https://exam.example.com/exam.html?id=123"

func TestShortenSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, longURL, r.URL.Query().Get("url"))
		w.Write([]byte("https://tiny.example/abc"))
	}))
	defer srv.Close()

	c := New(srv.URL, zerolog.Nop())
	assert.Equal(t, "https://tiny.example/abc", c.Shorten(context.Background(), longURL))
}

func TestShortenFallsBackToLongURL(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		c := New("", zerolog.Nop())
		assert.Equal(t, longURL, c.Shorten(context.Background(), longURL))
	})

	t.Run("unreachable", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
		srv.Close() // refused connections from here on

		c := New(srv.URL, zerolog.Nop())
		assert.Equal(t, longURL, c.Shorten(context.Background(), longURL))
	})

	t.Run("error status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer srv.Close()

		c := New(srv.URL, zerolog.Nop())
		assert.Equal(t, longURL, c.Shorten(context.Background(), longURL))
	})

	t.Run("implausible body", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("Error: quota exceeded"))
		}))
		defer srv.Close()

		c := New(srv.URL, zerolog.Nop())
		assert.Equal(t, longURL, c.Shorten(context.Background(), longURL))
	})
}
