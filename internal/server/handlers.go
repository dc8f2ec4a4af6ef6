package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/hyperjump/seshat/internal/config"
	"github.com/hyperjump/seshat/internal/fetch"
	"github.com/hyperjump/seshat/internal/models"
	"github.com/hyperjump/seshat/internal/oracle"
	"github.com/hyperjump/seshat/internal/similarity"
	"github.com/hyperjump/seshat/internal/storage"
)

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	var req models.SummaryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s.logger.Debug("summary request", zap.String("subject", req.Subject), zap.Int("lines", req.Lines))
	resp, err := s.oracle.Summary(r.Context(), &req)
	if err != nil {
		s.fail(w, "summary failed", err)
		return
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAnswer(w http.ResponseWriter, r *http.Request) {
	var req models.AnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s.logger.Debug("answer request",
		zap.String("subject", req.Subject),
		zap.String("question", req.Question),
		zap.Bool("deep", req.Deep))
	resp, err := s.oracle.Answer(r.Context(), &req)
	if err != nil {
		s.fail(w, "answer failed", err)
		return
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleArticle(w http.ResponseWriter, r *http.Request) {
	subject := r.URL.Query().Get("subject")
	s.logger.Debug("article request", zap.String("subject", subject))
	view, err := s.oracle.Article(r.Context(), subject)
	if err != nil {
		s.fail(w, "article failed", err)
		return
	}
	s.respondJSON(w, http.StatusOK, view)
}

func (s *Server) handleSummarize(w http.ResponseWriter, r *http.Request) {
	var req models.SummarizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	resp, err := s.oracle.Summarize(r.Context(), &req)
	if err != nil {
		s.fail(w, "summarize failed", err)
		return
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := models.SearchQuery{Query: q.Get("q")}
	if v := q.Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil {
			s.respondError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		query.Limit = limit
	}
	if v := q.Get("fuzzy"); v != "" {
		fuzzy, err := strconv.ParseBool(v)
		if err != nil {
			s.respondError(w, http.StatusBadRequest, "invalid fuzzy flag")
			return
		}
		query.Fuzzy = fuzzy
	}
	s.logger.Debug("search request", zap.String("query", query.Query), zap.Int("limit", query.Limit))
	resp, err := s.oracle.Search(r.Context(), &query)
	if err != nil {
		s.fail(w, "search failed", err)
		return
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetArticle(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	a, err := s.storage.GetArticle(r.Context(), id)
	if err != nil {
		s.fail(w, "get article failed", err)
		return
	}
	s.respondJSON(w, http.StatusOK, a)
}

func (s *Server) handleDeleteArticle(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.logger.Debug("delete article request", zap.String("id", id))
	ctx := r.Context()
	if _, err := s.storage.GetArticle(ctx, id); err != nil {
		s.fail(w, "delete article failed", err)
		return
	}
	if err := s.keywordIndex.Delete(ctx, id); err != nil {
		s.fail(w, "delete article failed", err)
		return
	}
	if err := s.storage.DeleteArticle(ctx, id); err != nil {
		s.fail(w, "delete article failed", err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	articles, err := s.storage.CountArticles(ctx)
	if err != nil {
		s.logger.Error("status: count articles failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	indexed, err := s.keywordIndex.DocCount()
	if err != nil {
		s.logger.Error("status: count indexed articles failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	defaults := s.oracle.Defaults()
	resp := map[string]interface{}{
		"articles":         articles,
		"indexed_articles": indexed,
	}
	configInfo := map[string]interface{}{
		"default_lines":     defaults.Lines,
		"default_threshold": defaults.Threshold,
		"default_deep":      defaults.Deep,
	}
	if s.config != nil {
		configInfo["database_path"] = s.config.Storage.DatabasePath
		configInfo["bleve_index_path"] = s.config.Storage.BleveIndexPath
		configInfo["fetch_base_url"] = s.config.Fetch.BaseURL

		diskBytes, err := storage.DiskUsageBytes(s.config.Storage.DatabasePath, s.config.Storage.BleveIndexPath)
		if err == nil {
			resp["disk_usage_bytes"] = diskBytes
		}
	}
	if s.watch != nil {
		configInfo["import_directories"] = s.watch.Directories()
	}
	resp["config"] = configInfo
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleImportDirectoriesList(w http.ResponseWriter, r *http.Request) {
	if s.watch == nil {
		s.respondError(w, http.StatusNotImplemented, "watch not enabled")
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"directories": s.watch.Directories()})
}

type directoryAddRequest struct {
	Path string `json:"path"`
	Sync *bool  `json:"sync,omitempty"`
}

func (s *Server) handleImportDirectoriesAdd(w http.ResponseWriter, r *http.Request) {
	if s.watch == nil {
		s.respondError(w, http.StatusNotImplemented, "watch not enabled")
		return
	}
	var req directoryAddRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Path == "" {
		s.respondError(w, http.StatusBadRequest, "path is required")
		return
	}
	abs, err := filepath.Abs(req.Path)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid path")
		return
	}
	info, err := os.Stat(abs)
	if err != nil {
		if os.IsNotExist(err) {
			s.respondError(w, http.StatusNotFound, "directory not found")
			return
		}
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !info.IsDir() {
		s.respondError(w, http.StatusBadRequest, "path is not a directory")
		return
	}
	syncExisting := true
	if req.Sync != nil {
		syncExisting = *req.Sync
	}
	s.logger.Debug("import add directory request", zap.String("path", abs), zap.Bool("sync_existing", syncExisting))
	if err := s.watch.AddDirectory(abs, syncExisting); err != nil {
		s.logger.Error("import add directory failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.persistDirectories()
	s.respondJSON(w, http.StatusCreated, map[string]string{"path": abs, "status": "added"})
}

func (s *Server) handleImportDirectoriesRemove(w http.ResponseWriter, r *http.Request) {
	if s.watch == nil {
		s.respondError(w, http.StatusNotImplemented, "watch not enabled")
		return
	}
	path := r.URL.Query().Get("path")
	if path == "" {
		var body struct {
			Path string `json:"path"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err == nil && body.Path != "" {
			path = body.Path
		}
	}
	if path == "" {
		s.respondError(w, http.StatusBadRequest, "path is required (query or body)")
		return
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid path")
		return
	}
	s.logger.Debug("import remove directory request", zap.String("path", abs))
	if err := s.watch.RemoveDirectory(abs); err != nil {
		s.logger.Error("import remove directory failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.persistDirectories()
	s.respondJSON(w, http.StatusOK, map[string]string{"path": abs, "status": "removed"})
}

func (s *Server) persistDirectories() {
	if s.configPath == "" || s.config == nil {
		return
	}
	s.configMu.Lock()
	defer s.configMu.Unlock()
	s.config.Import.Directories = s.watch.Directories()
	if err := config.Save(s.configPath, s.config); err != nil {
		s.logger.Warn("failed to persist import directories", zap.Error(err))
	}
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrInvalidRequest),
		errors.Is(err, similarity.ErrInvalidInput),
		errors.Is(err, oracle.ErrNoSubject):
		return http.StatusBadRequest
	case errors.Is(err, oracle.ErrNotFound),
		errors.Is(err, storage.ErrNotFound),
		errors.Is(err, fetch.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) fail(w http.ResponseWriter, msg string, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.logger.Error(msg, zap.Error(err))
	} else {
		s.logger.Debug(msg, zap.Error(err))
	}
	s.respondError(w, status, err.Error())
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
