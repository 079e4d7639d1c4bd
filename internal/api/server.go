package api

import (
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"coursetrack/internal/config"
	"coursetrack/internal/export"
	"coursetrack/internal/ics"
	"coursetrack/internal/models"
	"coursetrack/internal/session"
	"coursetrack/internal/util"
	"coursetrack/internal/workflows"

	"github.com/google/uuid"
	enumspb "go.temporal.io/api/enums/v1"
	tclient "go.temporal.io/sdk/client"
)

type Server struct {
	cfg      config.Config
	sessions *session.Manager
	temporal tclient.Client
}

func NewServer(cfg config.Config) *Server {
	tc, err := tclient.Dial(tclient.Options{HostPort: cfg.TemporalAddress})
	if err != nil {
		panic(err)
	}
	return &Server{
		cfg:      cfg,
		sessions: session.NewManager(),
		temporal: tc,
	}
}

func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealthz)
	mux.HandleFunc("/sessions", s.handleSessions)
	mux.HandleFunc("/sessions/", s.handleSessionScoped)
	return withCORS(mux)
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *Server) handleSessions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
		return
	}
	sess := s.sessions.Create(uuid.NewString())
	writeJSON(w, http.StatusCreated, map[string]any{"session_id": sess.ID})
}

func (s *Server) handleSessionScoped(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(strings.Trim(strings.TrimPrefix(r.URL.Path, "/sessions/"), "/"), "/")
	if len(parts) < 2 || parts[0] == "" {
		writeErr(w, http.StatusNotFound, fmt.Errorf("not found"))
		return
	}
	sess, ok := s.sessions.Get(parts[0])
	if !ok {
		writeErr(w, http.StatusNotFound, fmt.Errorf("unknown session"))
		return
	}

	switch {
	case len(parts) == 2 && parts[1] == "upload" && r.Method == http.MethodPost:
		s.handleUpload(w, r, sess)
	case len(parts) == 2 && parts[1] == "ingest" && r.Method == http.MethodPost:
		s.handleIngest(w, r, sess)
	case len(parts) == 2 && parts[1] == "progress" && r.Method == http.MethodGet:
		s.handleProgress(w, r, sess)
	case len(parts) == 2 && parts[1] == "records" && r.Method == http.MethodGet:
		s.handleRecords(w, sess)
	case len(parts) == 2 && parts[1] == "override" && r.Method == http.MethodPost:
		s.handleOverride(w, r, sess)
	case len(parts) == 2 && parts[1] == "plans" && r.Method == http.MethodPost:
		s.handleGeneratePlans(w, r, sess)
	case len(parts) == 2 && parts[1] == "plans" && r.Method == http.MethodGet:
		s.handlePlans(w, sess)
	case len(parts) == 3 && parts[1] == "plans" && parts[2] == "progress" && r.Method == http.MethodGet:
		s.handlePlanProgress(w, r, sess)
	case len(parts) == 2 && parts[1] == "matches" && r.Method == http.MethodPost:
		s.handleMatches(w, r, sess)
	case len(parts) == 2 && parts[1] == "export" && r.Method == http.MethodPost:
		s.handleExport(w, sess)
	case len(parts) == 2 && parts[1] == "reset" && r.Method == http.MethodPost:
		sess.Reset()
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	default:
		writeErr(w, http.StatusNotFound, fmt.Errorf("not found"))
	}
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	if err := r.ParseMultipartForm(s.cfg.MaxUploadBytes); err != nil {
		writeErr(w, http.StatusBadRequest, fmt.Errorf("parse multipart: %w", err))
		return
	}

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		if single, ok := firstSingleFile(r.MultipartForm.File); ok {
			files = append(files, single)
		}
	}
	if len(files) == 0 {
		writeErr(w, http.StatusBadRequest, fmt.Errorf("no files provided"))
		return
	}

	inDir := filepath.Join(s.cfg.DataInRoot, sess.ID)
	if err := util.EnsureDir(inDir); err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}

	type uploadResult struct {
		Filename    string `json:"filename"`
		Fingerprint string `json:"fingerprint"`
	}
	out := make([]uploadResult, 0, len(files))

	for _, fh := range files {
		if !strings.HasSuffix(strings.ToLower(fh.Filename), ".pdf") {
			continue
		}
		fingerprint, savedPath, err := saveUploadedFile(inDir, fh)
		if err != nil {
			writeErr(w, http.StatusInternalServerError, err)
			return
		}
		name := filepath.Base(savedPath)
		sess.AddDocument(session.Document{Name: name, Path: savedPath, Fingerprint: fingerprint})
		out = append(out, uploadResult{Filename: name, Fingerprint: fingerprint})
	}

	writeJSON(w, http.StatusOK, map[string]any{"uploaded": out})
}

// handleIngest extracts from every uploaded document that has not been
// ingested yet, in upload order, and folds the results into the session.
// A batch failure still folds the documents that completed; the failed
// document stays pending so a retry picks it up.
func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	docs := sess.Documents()
	if len(docs) == 0 {
		writeErr(w, http.StatusBadRequest, fmt.Errorf("no documents uploaded"))
		return
	}

	sess.Lock()
	seen := map[string]bool{}
	for _, rec := range sess.Aggregator().Records() {
		seen[rec.SourceDocument] = true
	}
	sess.Unlock()

	pending := make([]workflows.DocumentRef, 0, len(docs))
	for _, d := range docs {
		if seen[d.Name] {
			continue
		}
		pending = append(pending, workflows.DocumentRef{Name: d.Name, Path: d.Path, Fingerprint: d.Fingerprint})
	}
	if len(pending) == 0 {
		s.handleRecords(w, sess)
		return
	}

	we, err := s.temporal.ExecuteWorkflow(r.Context(), tclient.StartWorkflowOptions{
		ID:                    "ingest-" + sess.ID,
		TaskQueue:             s.cfg.TemporalTaskQueue,
		WorkflowIDReusePolicy: enumspb.WORKFLOW_ID_REUSE_POLICY_ALLOW_DUPLICATE,
	}, workflows.BatchExtractWorkflow, workflows.BatchExtractInput{
		SessionID: sess.ID,
		Documents: pending,
	})
	if err != nil {
		writeErr(w, http.StatusConflict, err)
		return
	}

	var out workflows.BatchExtractOutput
	if err := we.Get(r.Context(), &out); err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}

	sess.Lock()
	for _, res := range out.Results {
		sess.Aggregator().Ingest(res.DocumentName, res.Fingerprint, res.Items)
		if len(res.CachedPlans) > 0 {
			sess.Plans().MergePrecached(res.CachedPlans)
		}
	}
	records := sess.Aggregator().Records()
	sess.Unlock()

	resp := map[string]any{"records": records}
	if out.FailedDocument != "" {
		resp["failed_document"] = out.FailedDocument
		resp["failure_reason"] = out.FailureReason
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	var prog workflows.BatchExtractProgress
	resp, err := s.temporal.QueryWorkflow(r.Context(), "ingest-"+sess.ID, "", workflows.QueryGetBatchProgress)
	if err != nil {
		writeJSON(w, http.StatusOK, prog)
		return
	}
	if err := resp.Get(&prog); err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, prog)
}

func (s *Server) handleRecords(w http.ResponseWriter, sess *session.Session) {
	sess.Lock()
	records := sess.Aggregator().Records()
	sess.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"records": records})
}

func (s *Server) handleOverride(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	var req struct {
		StableID int `json:"stable_id"`
		models.RecordOverride
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, fmt.Errorf("invalid json: %w", err))
		return
	}

	sess.Lock()
	err := sess.Aggregator().ApplyOverride(req.StableID, req.RecordOverride)
	records := sess.Aggregator().Records()
	sess.Unlock()

	if err != nil {
		switch {
		case errors.Is(err, util.ErrUnknownRecord):
			writeErr(w, http.StatusNotFound, err)
		case errors.Is(err, util.ErrInvalidEventType), errors.Is(err, util.ErrInvalidDueDate):
			writeErr(w, http.StatusBadRequest, err)
		default:
			writeErr(w, http.StatusInternalServerError, err)
		}
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"records": records})
}

// handleGeneratePlans validates the committed set before any workflow
// starts: an empty selection is a client error, not a generation failure.
func (s *Server) handleGeneratePlans(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	var req struct {
		ForceRegenerate bool `json:"force_regenerate"`
	}
	if r.Body != nil {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			writeErr(w, http.StatusBadRequest, fmt.Errorf("invalid json: %w", err))
			return
		}
	}

	sess.Lock()
	committed := sess.Aggregator().Commit()
	cached := sess.Plans().CachedCourses()
	sess.Unlock()

	if len(committed) == 0 {
		writeErr(w, http.StatusBadRequest, util.ErrNoCommittedRecords)
		return
	}
	groups := session.GroupByCourse(committed)

	we, err := s.temporal.ExecuteWorkflow(r.Context(), tclient.StartWorkflowOptions{
		ID:                    "plans-" + sess.ID,
		TaskQueue:             s.cfg.TemporalTaskQueue,
		WorkflowIDReusePolicy: enumspb.WORKFLOW_ID_REUSE_POLICY_ALLOW_DUPLICATE,
	}, workflows.StudyPlanWorkflow, workflows.StudyPlanInput{
		SessionID:       sess.ID,
		Groups:          groups,
		CachedCourses:   cached,
		ForceRegenerate: req.ForceRegenerate,
	})
	if err != nil {
		writeErr(w, http.StatusConflict, err)
		return
	}

	var out workflows.StudyPlanOutput
	if err := we.Get(r.Context(), &out); err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}

	sess.Lock()
	for code, plan := range out.Plans {
		sess.Plans().Put(code, plan)
	}
	sess.Unlock()

	resp := map[string]any{"generated": out.Plans}
	if out.FailedCourse != "" {
		resp["failed_course"] = out.FailedCourse
		resp["failure_reason"] = out.FailureReason
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handlePlans(w http.ResponseWriter, sess *session.Session) {
	sess.Lock()
	committed := sess.Aggregator().Commit()
	views := sess.Plans().Views(committed)
	sess.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"views": views})
}

func (s *Server) handlePlanProgress(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	var prog workflows.StudyPlanProgress
	resp, err := s.temporal.QueryWorkflow(r.Context(), "plans-"+sess.ID, "", workflows.QueryGetPlanProgress)
	if err != nil {
		writeJSON(w, http.StatusOK, prog)
		return
	}
	if err := resp.Get(&prog); err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, prog)
}

func (s *Server) handleMatches(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	var req struct {
		Handle    string `json:"handle"`
		AvatarURL string `json:"avatar_url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, fmt.Errorf("invalid json: %w", err))
		return
	}
	handle := util.NormalizeHandle(req.Handle)
	if handle == "" {
		writeErr(w, http.StatusBadRequest, fmt.Errorf("handle is required"))
		return
	}

	docs := sess.Documents()
	if len(docs) == 0 {
		writeErr(w, http.StatusBadRequest, fmt.Errorf("no documents uploaded"))
		return
	}
	matchDocs := make([]workflows.MatchDocument, 0, len(docs))
	for _, d := range docs {
		matchDocs = append(matchDocs, workflows.MatchDocument{Name: d.Name, Fingerprint: d.Fingerprint})
	}

	we, err := s.temporal.ExecuteWorkflow(r.Context(), tclient.StartWorkflowOptions{
		ID:                    "matches-" + sess.ID,
		TaskQueue:             s.cfg.TemporalTaskQueue,
		WorkflowIDReusePolicy: enumspb.WORKFLOW_ID_REUSE_POLICY_ALLOW_DUPLICATE,
	}, workflows.SocialMatchWorkflow, workflows.SocialMatchInput{
		SessionID: sess.ID,
		Documents: matchDocs,
		Handle:    handle,
		AvatarURL: req.AvatarURL,
	})
	if err != nil {
		writeErr(w, http.StatusConflict, err)
		return
	}

	var out workflows.SocialMatchOutput
	if err := we.Get(r.Context(), &out); err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}

	sess.SetMatches(out.Matches)
	writeJSON(w, http.StatusOK, map[string]any{"matches": out.Matches})
}

func (s *Server) handleExport(w http.ResponseWriter, sess *session.Session) {
	sess.Lock()
	committed := sess.Aggregator().Commit()
	sess.Unlock()

	if len(committed) == 0 {
		writeErr(w, http.StatusBadRequest, util.ErrNoIncludedRecords)
		return
	}

	payload, err := ics.Serialize(export.Prepare(committed), "Course Assignments")
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="assignments.ics"`)
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, payload)
}

func saveUploadedFile(dstDir string, fh *multipart.FileHeader) (fingerprint, path string, err error) {
	src, err := fh.Open()
	if err != nil {
		return "", "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	tmp, err := os.CreateTemp(dstDir, "upload-*.pdf")
	if err != nil {
		return "", "", fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		_ = tmp.Close()
	}()

	h := sha256.New()
	if _, err := io.Copy(io.MultiWriter(tmp, h), src); err != nil {
		return "", "", fmt.Errorf("write upload: %w", err)
	}

	fingerprint = fmt.Sprintf("%x", h.Sum(nil))
	finalPath := util.SafeJoin(dstDir, fh.Filename)
	if err := tmp.Close(); err != nil {
		return "", "", err
	}
	if err := os.Rename(tmp.Name(), finalPath); err != nil {
		return "", "", fmt.Errorf("atomic move upload: %w", err)
	}

	return fingerprint, finalPath, nil
}

func firstSingleFile(m map[string][]*multipart.FileHeader) (*multipart.FileHeader, bool) {
	for _, v := range m {
		if len(v) > 0 {
			return v[0], true
		}
	}
	return nil, false
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, code int, err error) {
	apiErr := toAPIError(code, err)
	writeJSON(w, code, map[string]any{
		"error": map[string]any{
			"code":    apiErr.Code,
			"message": apiErr.Message,
		},
	})
}

type apiError struct {
	Code    string
	Message string
}

func toAPIError(status int, err error) apiError {
	msg := "Request failed."
	code := "CT-API-4000"
	raw := ""
	if err != nil {
		raw = strings.ToLower(err.Error())
	}

	switch {
	case status >= 500:
		switch {
		case strings.Contains(raw, "relation") && strings.Contains(raw, "does not exist"):
			return apiError{
				Code:    "CT-DB-5001",
				Message: "Database schema is not initialized. Run migrations and retry.",
			}
		case strings.Contains(raw, "connect"), strings.Contains(raw, "dial tcp"), strings.Contains(raw, "connection refused"):
			return apiError{
				Code:    "CT-DB-5002",
				Message: "Database connection is unavailable. Check local services and retry.",
			}
		default:
			return apiError{
				Code:    "CT-API-5000",
				Message: "Internal server error. Please retry or check service logs.",
			}
		}
	case status == http.StatusBadRequest:
		code = "CT-API-4001"
		msg = "Invalid request. Check inputs and retry."
	case status == http.StatusNotFound:
		code = "CT-API-4004"
		msg = "Requested resource was not found."
	case status == http.StatusConflict:
		code = "CT-API-4009"
		msg = "Operation conflicts with current state. Retry after checking status."
	case status == http.StatusMethodNotAllowed:
		code = "CT-API-4005"
		msg = "This endpoint does not support the requested method."
	}

	// For 4xx, keep user-safe validation context only.
	if status >= 400 && status < 500 && err != nil {
		switch {
		case strings.Contains(raw, "no files provided"):
			msg = "No PDF files were provided."
		case strings.Contains(raw, "no documents uploaded"):
			msg = "Upload at least one syllabus before this operation."
		case strings.Contains(raw, "invalid json"):
			msg = "Malformed JSON request body."
		case strings.Contains(raw, "handle is required"):
			msg = "A handle is required for matching."
		case strings.Contains(raw, "unknown session"):
			msg = "Session not found. Create a new session and retry."
		case errors.Is(err, util.ErrUnknownRecord):
			msg = "No record with that id exists."
		case errors.Is(err, util.ErrInvalidEventType):
			msg = "Event type must be one of the supported types."
		case errors.Is(err, util.ErrInvalidDueDate):
			msg = "Due date must be formatted as YYYY-MM-DD."
		case errors.Is(err, util.ErrNoCommittedRecords):
			msg = "Select at least one record before generating plans."
		case errors.Is(err, util.ErrNoIncludedRecords):
			msg = "Select at least one record before exporting."
		}
	}

	return apiError{Code: code, Message: msg}
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
