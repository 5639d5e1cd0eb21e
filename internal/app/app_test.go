package app

import (
	"bytes"
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperifyio/wordfreq/internal/render"
)

const page = `<html><head><title>Page</title></head>
<body><p>北京 北京 天安门</p><script>var x = "北京";</script></body></html>`

func newPageServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(page))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestApp(t *testing.T, mutate func(*Config)) *App {
	t.Helper()
	cfg := Defaults()
	if mutate != nil {
		mutate(&cfg)
	}
	a, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(a.Close)
	return a
}

func TestRun_TextBackendToStdout(t *testing.T) {
	srv := newPageServer(t)
	a := newTestApp(t, func(c *Config) {
		c.URL = srv.URL
		c.ChartType = "bar"
		c.Backend = "text"
	})

	var stdout, stderr bytes.Buffer
	require.NoError(t, a.Run(context.Background(), &stdout, &stderr))
	out := stdout.String()
	assert.Contains(t, out, "RANK")
	assert.Contains(t, out, "北京")
	assert.Contains(t, out, "天安门")
	assert.Contains(t, out, "█")
	assert.Less(t, strings.Index(out, "北京"), strings.Index(out, "天安门"), "more frequent word ranks first")
	assert.Empty(t, stderr.String())
}

func TestRun_PDFToFile(t *testing.T) {
	srv := newPageServer(t)
	out := filepath.Join(t.TempDir(), "chart.pdf")
	a := newTestApp(t, func(c *Config) {
		c.URL = srv.URL
		c.ChartType = "pie"
		c.Backend = "pdf"
		c.OutputPath = out
	})

	var stdout, stderr bytes.Buffer
	require.NoError(t, a.Run(context.Background(), &stdout, &stderr))
	b, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(b, []byte("%PDF-")))
}

func TestRun_PrintText(t *testing.T) {
	srv := newPageServer(t)
	a := newTestApp(t, func(c *Config) {
		c.URL = srv.URL
		c.Backend = "text"
		c.ChartType = "bar"
		c.PrintText = true
	})

	var stdout, stderr bytes.Buffer
	require.NoError(t, a.Run(context.Background(), &stdout, &stderr))
	assert.True(t, strings.HasPrefix(stdout.String(), "Page 北京 北京 天安门"), "got %q", stdout.String())
}

func TestRun_UnreachableIsNoData(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	a := newTestApp(t, func(c *Config) {
		c.URL = "http://" + addr + "/"
		c.Backend = "text"
		c.ChartType = "bar"
	})

	var stdout, stderr bytes.Buffer
	require.NoError(t, a.Run(context.Background(), &stdout, &stderr))
	assert.Contains(t, stderr.String(), "fetch failed")
	assert.Contains(t, stderr.String(), "no data")
	assert.Equal(t, "RANK  WORD  COUNT\n", stdout.String())
}

func TestRun_UnsupportedCombination(t *testing.T) {
	a := newTestApp(t, func(c *Config) {
		c.URL = "http://127.0.0.1:1/"
		c.Backend = "text"
		c.ChartType = "pie"
	})
	err := a.Run(context.Background(), &bytes.Buffer{}, &bytes.Buffer{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, render.ErrUnsupported))
}

func TestRun_MissingURL(t *testing.T) {
	a := newTestApp(t, nil)
	assert.Error(t, a.Run(context.Background(), &bytes.Buffer{}, &bytes.Buffer{}))
}

func TestNew_InvalidConfig(t *testing.T) {
	cfg := Defaults()
	cfg.MinCount = 42
	_, err := New(cfg)
	assert.Error(t, err)
}

func TestRenderConfig(t *testing.T) {
	a := newTestApp(t, func(c *Config) {
		c.ChartType = "柱状图"
		c.TopN = 3
		c.MinCount = 2
	})
	rc := a.RenderConfig()
	assert.Equal(t, render.Bar, rc.ChartType)
	assert.Equal(t, render.ECharts, rc.Backend)
	assert.Equal(t, 3, rc.TopN)
	assert.Equal(t, 2, rc.MinCount)
}

func TestRun_RespectRobots(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			_, _ = w.Write([]byte("User-agent: *\nDisallow: /\n"))
			return
		}
		_, _ = w.Write([]byte(page))
	}))
	defer srv.Close()

	a := newTestApp(t, func(c *Config) {
		c.URL = srv.URL + "/article"
		c.Backend = "text"
		c.ChartType = "bar"
		c.RespectRobots = true
	})
	var stdout, stderr bytes.Buffer
	require.NoError(t, a.Run(context.Background(), &stdout, &stderr))
	assert.Contains(t, stderr.String(), "disallowed")
	assert.Contains(t, stderr.String(), "no data")
}
