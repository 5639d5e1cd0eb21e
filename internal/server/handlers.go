package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"net/http"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/wordfreq/internal/pipeline"
	"github.com/hyperifyio/wordfreq/internal/rank"
	"github.com/hyperifyio/wordfreq/internal/render"
)

// Slider bounds for the minimum count.
const (
	minCountLow  = 1
	minCountHigh = 10
)

const noDataMessage = "No data to chart: no word reaches the minimum count."

func withDefaults(rc pipeline.RenderConfig) pipeline.RenderConfig {
	if rc.ChartType == "" {
		rc.ChartType = render.WordCloud
	}
	if rc.Backend == "" {
		rc.Backend = render.ECharts
	}
	if rc.TopN <= 0 {
		rc.TopN = rank.DefaultTopN
	}
	if rc.MinCount < minCountLow {
		rc.MinCount = minCountLow
	}
	return rc
}

// parseRequest reads url, chart, backend, min and top from the query,
// falling back to the server defaults.
func (s *Server) parseRequest(r *http.Request) (string, pipeline.RenderConfig, error) {
	q := r.URL.Query()
	rc := s.defaults
	if v := q.Get("chart"); v != "" {
		c, err := render.ParseChartType(v)
		if err != nil {
			return "", rc, err
		}
		rc.ChartType = c
	}
	if v := q.Get("backend"); v != "" {
		rr, err := s.renderers.Get(v)
		if err != nil {
			return "", rc, err
		}
		rc.Backend = rr.Backend()
	}
	if v := q.Get("min"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < minCountLow || n > minCountHigh {
			return "", rc, fmt.Errorf("min must be an integer between %d and %d", minCountLow, minCountHigh)
		}
		rc.MinCount = n
	}
	if v := q.Get("top"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return "", rc, errors.New("top must be a positive integer")
		}
		rc.TopN = n
	}
	return strings.TrimSpace(q.Get("url")), rc, nil
}

func (s *Server) checkSupport(rc pipeline.RenderConfig) error {
	rr, err := s.renderers.Get(string(rc.Backend))
	if err != nil {
		return err
	}
	if rr.Supports(rc.ChartType) == render.Unsupported {
		return &render.UnsupportedError{Backend: rc.Backend, Chart: rc.ChartType}
	}
	return nil
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	target, rc, err := s.parseRequest(r)
	data := s.newPageData(target, rc)
	if err != nil {
		data.Error = err.Error()
		s.renderPage(w, http.StatusBadRequest, data)
		return
	}
	if target != "" {
		data.Submitted = true
		an := s.analyzer.Analyze(r.Context(), target, rc)
		data.Title = an.Fetch.Title
		data.Text = an.Fetch.Text
		if an.Fetch.Err != nil {
			data.Error = an.Fetch.Err.Error()
		}
		data.Entries = an.Filtered
		if err := s.checkSupport(rc); err != nil {
			s.metrics.observeRender(string(rc.Backend), string(rc.ChartType), resultUnsupported)
			data.Message = err.Error()
		} else {
			art, msg, err := s.renderAnalysis(r, an)
			switch {
			case err != nil:
				data.Message = "Chart could not be rendered: " + err.Error()
			case msg != "":
				data.Message = msg
			default:
				data.Chart = embedChart(art)
			}
		}
	}
	s.renderPage(w, http.StatusOK, data)
}

// renderAnalysis draws an with its configured backend and records the
// outcome. No data and unsupported combinations come back as msg with a nil
// error.
func (s *Server) renderAnalysis(r *http.Request, an pipeline.Analysis) (art render.Artifact, msg string, err error) {
	backend, chart := string(an.Config.Backend), string(an.Config.ChartType)
	art, err = an.Render(s.renderers)
	switch {
	case errors.Is(err, render.ErrNoData):
		s.metrics.observeRender(backend, chart, resultNoData)
		return art, noDataMessage, nil
	case errors.Is(err, render.ErrUnsupported):
		s.metrics.observeRender(backend, chart, resultUnsupported)
		return art, err.Error(), nil
	case err != nil:
		s.metrics.observeRender(backend, chart, resultError)
		log.Error().Err(err).Str("request_id", RequestID(r.Context())).Str("backend", backend).Str("chart", chart).Msg("render failed")
		return art, "", err
	}
	s.metrics.observeRender(backend, chart, resultOK)
	return art, "", nil
}

func (s *Server) renderPage(w http.ResponseWriter, status int, data pageData) {
	var buf bytes.Buffer
	if err := s.page.Execute(&buf, data); err != nil {
		log.Error().Err(err).Msg("render page")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

// handleChart runs one analysis and returns the artifact itself, for direct
// links and downloads. No data and unsupported combinations are shown as a
// message with status 200.
func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	target, rc, err := s.parseRequest(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if target == "" {
		http.Error(w, "missing url", http.StatusBadRequest)
		return
	}
	if err := s.checkSupport(rc); err != nil {
		s.metrics.observeRender(string(rc.Backend), string(rc.ChartType), resultUnsupported)
		writeMessage(w, err.Error())
		return
	}

	an := s.analyzer.Analyze(r.Context(), target, rc)
	art, msg, err := s.renderAnalysis(r, an)
	switch {
	case err != nil:
		http.Error(w, "render failed", http.StatusInternalServerError)
	case msg != "":
		writeMessage(w, msg)
	default:
		w.Header().Set("Content-Type", art.ContentType)
		if art.Note != "" {
			w.Header().Set("X-Chart-Note", art.Note)
		}
		_, _ = w.Write(art.Body)
	}
}

func writeMessage(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "<!doctype html><meta charset=\"utf-8\"><p class=\"message\">%s</p>\n", html.EscapeString(msg))
}

type analyzeResponse struct {
	URL    string   `json:"url"`
	Title  string   `json:"title"`
	Text   string   `json:"text"`
	Words  []string `json:"words"`
	Counts []int    `json:"counts"`
	Error  string   `json:"error"`
}

func (s *Server) handleAPIAnalyze(w http.ResponseWriter, r *http.Request) {
	target, rc, err := s.parseRequest(r)
	if err != nil {
		errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	if target == "" {
		errorResponse(w, http.StatusBadRequest, "missing url")
		return
	}
	an := s.analyzer.Analyze(r.Context(), target, rc)
	words, counts, _ := pipeline.Unzip(an.Filtered)
	resp := analyzeResponse{
		URL:    target,
		Title:  an.Fetch.Title,
		Text:   an.Fetch.Text,
		Words:  words,
		Counts: counts,
	}
	if an.Fetch.Err != nil {
		resp.Error = an.Fetch.Err.Error()
	}
	jsonResponse(w, http.StatusOK, resp)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Warn().Err(err).Msg("encode json response")
	}
}

func errorResponse(w http.ResponseWriter, status int, message string) {
	jsonResponse(w, status, map[string]string{"error": message})
}
