package pipeline

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperifyio/wordfreq/internal/extract"
	"github.com/hyperifyio/wordfreq/internal/fetch"
	"github.com/hyperifyio/wordfreq/internal/normalize"
	"github.com/hyperifyio/wordfreq/internal/rank"
	"github.com/hyperifyio/wordfreq/internal/render"
	"github.com/hyperifyio/wordfreq/internal/segment"
)

// fieldsTokenizer splits on whitespace so tests control the token sequence.
type fieldsTokenizer struct{}

func (fieldsTokenizer) Tokenize(text string) []string { return strings.Fields(text) }

func newAnalyzer() *Analyzer {
	return &Analyzer{
		Getter:    &fetch.Client{PerRequestTimeout: 2 * time.Second},
		Extractor: extract.TextExtractor{},
		Tokenizer: fieldsTokenizer{},
	}
}

func serve(t *testing.T, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func deadURL(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())
	return "http://" + addr + "/"
}

func TestAnalyze_KeepsUnicodePunctuation(t *testing.T) {
	srv := serve(t, `<html><body><p>测试测试 文本分析, 文本分析! 文本分析。</p></body></html>`)
	a := newAnalyzer()

	an := a.Analyze(context.Background(), srv.URL, RenderConfig{TopN: 20, MinCount: 1})
	require.True(t, an.Fetch.OK())
	assert.Equal(t, "测试测试 文本分析 文本分析 文本分析。", an.Fetch.Text)
	// "文本分析。" keeps its full-width stop, so it is a distinct token.
	assert.Equal(t, []rank.Entry{{Word: "文本分析", Count: 2}, {Word: "测试测试", Count: 1}, {Word: "文本分析。", Count: 1}}, an.Ranked)
}

func TestRank_SpecTokens(t *testing.T) {
	a := newAnalyzer()
	ranked := a.Rank("测试测试 文本分析 文本分析 文本分析", 20)
	assert.Equal(t, []rank.Entry{{Word: "文本分析", Count: 3}, {Word: "测试测试", Count: 1}}, ranked)
	assert.Equal(t, []rank.Entry{{Word: "文本分析", Count: 3}}, rank.FilterByMinCount(ranked, 2))
}

func TestFetchText_CleansText(t *testing.T) {
	srv := serve(t, "<html><head><title>T</title></head><body>\n<h1>Hello,   world!</h1>\n\t<p>a-b c</p><script>var x=1;</script></body></html>")
	res := newAnalyzer().FetchText(context.Background(), srv.URL)
	require.Nil(t, res.Err)
	assert.Equal(t, "T", res.Title)
	assert.Equal(t, "T Hello world ab c", res.Text)
	assert.False(t, strings.ContainsAny(res.Text, normalize.Punctuation))
	assert.NotContains(t, res.Text, "  ")
}

func TestFetchText_UnreachableHost(t *testing.T) {
	a := newAnalyzer()
	res := a.FetchText(context.Background(), deadURL(t))
	require.NotNil(t, res.Err)
	assert.Equal(t, fetch.KindNetwork, res.Err.Kind)
	assert.Equal(t, "", res.Text)

	an := a.Analyze(context.Background(), deadURL(t), RenderConfig{})
	assert.Equal(t, "", an.Fetch.Text)
	assert.Empty(t, an.Ranked)
	assert.Empty(t, an.Filtered)
}

func TestFetchText_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusGone)
	}))
	defer srv.Close()

	res := newAnalyzer().FetchText(context.Background(), srv.URL)
	require.NotNil(t, res.Err)
	assert.Equal(t, fetch.KindStatus, res.Err.Kind)
	assert.Equal(t, http.StatusGone, res.Err.StatusCode)
	assert.Empty(t, res.Text)
}

func TestFetchText_ObserveCalled(t *testing.T) {
	srv := serve(t, "<p>ok</p>")
	var seen []Result
	a := newAnalyzer()
	a.Observe = func(r Result, _ time.Duration) { seen = append(seen, r) }
	a.FetchText(context.Background(), srv.URL)
	a.FetchText(context.Background(), deadURL(t))
	require.Len(t, seen, 2)
	assert.True(t, seen[0].OK())
	assert.False(t, seen[1].OK())
}

func TestAnalyze_Idempotent(t *testing.T) {
	page := `<p>数据 代码 数据 测试 代码 数据 文本 文本 测试 分析</p>`
	srv := serve(t, page)
	a := newAnalyzer()
	first := a.Analyze(context.Background(), srv.URL, RenderConfig{TopN: 3})
	second := a.Analyze(context.Background(), srv.URL, RenderConfig{TopN: 3})
	assert.Equal(t, first.Ranked, second.Ranked)
	assert.Equal(t, []rank.Entry{{Word: "数据", Count: 3}, {Word: "代码", Count: 2}, {Word: "测试", Count: 2}}, first.Ranked)
}

func TestAnalyze_FilterAfterTruncation(t *testing.T) {
	// "cc" would pass min_count=2 but is ranked third and cut by TopN=2.
	srv := serve(t, `<p>aa aa aa bb bb bb cc cc</p>`)
	an := newAnalyzer().Analyze(context.Background(), srv.URL, RenderConfig{TopN: 2, MinCount: 2})
	assert.Equal(t, []rank.Entry{{Word: "aa", Count: 3}, {Word: "bb", Count: 3}}, an.Filtered)
}

func TestAnalyze_RenderEmptyIsNoData(t *testing.T) {
	srv := serve(t, `<p>aa bb cc</p>`)
	an := newAnalyzer().Analyze(context.Background(), srv.URL, RenderConfig{
		ChartType: render.Bar, Backend: render.Text, MinCount: 5,
	})
	require.Len(t, an.Ranked, 3)
	assert.Empty(t, an.Filtered)

	_, ok := an.ChartData()
	assert.False(t, ok)
	_, err := an.Render(render.DefaultRegistry(render.Options{}))
	assert.ErrorIs(t, err, render.ErrNoData)
}

func TestAnalyze_RenderText(t *testing.T) {
	srv := serve(t, `<html><head><title>Page</title></head><body> aa aa bb</body></html>`)
	an := newAnalyzer().Analyze(context.Background(), srv.URL, RenderConfig{ChartType: render.Bar, Backend: render.Text})
	art, err := an.Render(render.DefaultRegistry(render.Options{BarWidth: 4}))
	require.NoError(t, err)
	assert.Contains(t, string(art.Body), "aa")
	assert.Contains(t, string(art.Body), "████ 2")
}

func TestUnzip(t *testing.T) {
	words, counts, ok := Unzip(nil)
	assert.False(t, ok)
	assert.Empty(t, words)
	assert.Empty(t, counts)

	words, counts, ok = Unzip([]rank.Entry{{Word: "a", Count: 2}, {Word: "b", Count: 1}})
	assert.True(t, ok)
	assert.Equal(t, []string{"a", "b"}, words)
	assert.Equal(t, []int{2, 1}, counts)
}

func TestAnalyze_JiebaSegmentation(t *testing.T) {
	tok := segment.NewJiebaTokenizer("")
	a := newAnalyzer()
	a.Tokenizer = tok
	defer a.Close()

	srv := serve(t, `<p>我来到北京清华大学。我爱北京！</p>`)
	an := a.Analyze(context.Background(), srv.URL, RenderConfig{})
	require.NotEmpty(t, an.Ranked)
	assert.Equal(t, rank.Entry{Word: "北京", Count: 2}, an.Ranked[0])
	for _, e := range an.Ranked {
		assert.True(t, segment.Keep(e.Word), e.Word)
	}
}
