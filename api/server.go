package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"wk-scan/scanlog"
)

type handler struct {
	svc *scanlog.Service
	log *zap.SugaredLogger
}

// NewRouter exposes the command surface over HTTP. The response status
// mirrors the result code and the body is always the result envelope.
func NewRouter(svc *scanlog.Service, log *zap.SugaredLogger) http.Handler {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	h := &handler{svc: svc, log: log}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(observe(log))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeResult(w, scanlog.Result{Code: scanlog.CodeSuccess, Data: "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/objects", h.listObjects)
		r.Post("/objects", h.saveObject)
		r.Delete("/objects/{id}", h.deleteObject)
		r.Post("/objects/{id}/records", h.saveRecord)
		r.Get("/objects/{id}/records", h.queryPage)
		r.Get("/objects/{id}/snapshot", h.snapshot)
		r.Get("/objects/{id}/history", h.history)
		r.Post("/objects/{id}/export", h.exportRecords)
		r.Get("/objects/{id}/downloads", h.downloads)

		r.Get("/rules", h.listRules)
		r.Post("/rules", h.saveRule)
		r.Delete("/rules/{id}", h.deleteRule)

		r.Post("/workdir/export", h.exportWorkDir)
		r.Get("/settings", h.getSettings)
		r.Put("/settings", h.saveSettings)
		r.Get("/journal", h.journal)
	})
	return r
}

func writeResult(w http.ResponseWriter, res scanlog.Result) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(int(res.Code))
	_ = json.NewEncoder(w).Encode(res)
}

func badRequest(w http.ResponseWriter, msg string) {
	writeResult(w, scanlog.Result{Code: scanlog.CodeFail, Message: msg})
}

func decode(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

func pathID(r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	return id, err == nil && id > 0
}

func queryInt(r *http.Request, key string) int {
	n, _ := strconv.Atoi(r.URL.Query().Get(key))
	return n
}

func (h *handler) listObjects(w http.ResponseWriter, _ *http.Request) {
	writeResult(w, h.svc.ListObjects())
}

func (h *handler) saveObject(w http.ResponseWriter, r *http.Request) {
	var obj scanlog.ScanObject
	if err := decode(r, &obj); err != nil {
		badRequest(w, "invalid scan object: "+err.Error())
		return
	}
	writeResult(w, h.svc.SaveObject(obj))
}

func (h *handler) deleteObject(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		badRequest(w, "invalid id")
		return
	}
	writeResult(w, h.svc.DeleteObject(id))
}

func (h *handler) listRules(w http.ResponseWriter, _ *http.Request) {
	writeResult(w, h.svc.ListRules())
}

func (h *handler) saveRule(w http.ResponseWriter, r *http.Request) {
	var rule scanlog.ScanRule
	if err := decode(r, &rule); err != nil {
		badRequest(w, "invalid scan rule: "+err.Error())
		return
	}
	writeResult(w, h.svc.SaveRule(rule))
}

func (h *handler) deleteRule(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		badRequest(w, "invalid id")
		return
	}
	writeResult(w, h.svc.DeleteRule(id))
}

type recordRequest struct {
	QRCode string `json:"qrcode"`
	Date   string `json:"date,omitempty"`
	// At is the scan time in epoch milliseconds; zero means now.
	At int64 `json:"at,omitempty"`
}

func (h *handler) saveRecord(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		badRequest(w, "invalid id")
		return
	}
	var req recordRequest
	if err := decode(r, &req); err != nil {
		badRequest(w, "invalid record: "+err.Error())
		return
	}
	var at time.Time
	if req.At > 0 {
		at = time.UnixMilli(req.At)
	}
	writeResult(w, h.svc.SaveRecord(id, req.Date, req.QRCode, at))
}

func (h *handler) queryPage(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		badRequest(w, "invalid id")
		return
	}
	q := scanlog.PageQuery{
		QRCode:    r.URL.Query().Get("qrcode"),
		PageIndex: queryInt(r, "current"),
		PageSize:  queryInt(r, "size"),
	}
	writeResult(w, h.svc.QueryPage(id, r.URL.Query().Get("date"), q))
}

func (h *handler) snapshot(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		badRequest(w, "invalid id")
		return
	}
	writeResult(w, h.svc.Snapshot(id, r.URL.Query().Get("date")))
}

func (h *handler) history(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		badRequest(w, "invalid id")
		return
	}
	writeResult(w, h.svc.History(id, r.URL.Query().Get("year")))
}

type exportRequest struct {
	Dates []string `json:"dates"`
}

func (h *handler) exportRecords(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		badRequest(w, "invalid id")
		return
	}
	var req exportRequest
	if err := decode(r, &req); err != nil {
		badRequest(w, "invalid export request: "+err.Error())
		return
	}
	writeResult(w, h.svc.ExportRecords(id, req.Dates))
}

func (h *handler) downloads(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		badRequest(w, "invalid id")
		return
	}
	writeResult(w, h.svc.DownloadsDir(id))
}

type workDirExportRequest struct {
	Destination string `json:"destination"`
}

func (h *handler) exportWorkDir(w http.ResponseWriter, r *http.Request) {
	var req workDirExportRequest
	if err := decode(r, &req); err != nil {
		badRequest(w, "invalid export request: "+err.Error())
		return
	}
	writeResult(w, h.svc.ExportWorkingDirectory(req.Destination))
}

func (h *handler) getSettings(w http.ResponseWriter, _ *http.Request) {
	writeResult(w, h.svc.GetSettings())
}

func (h *handler) saveSettings(w http.ResponseWriter, r *http.Request) {
	var patch scanlog.SettingsPatch
	if err := decode(r, &patch); err != nil {
		badRequest(w, "invalid settings: "+err.Error())
		return
	}
	writeResult(w, h.svc.SaveSettings(patch))
}

func (h *handler) journal(w http.ResponseWriter, r *http.Request) {
	writeResult(w, h.svc.Journal(queryInt(r, "limit")))
}

// Serve runs the HTTP server until ctx is cancelled, then shuts down with a
// grace period.
func Serve(ctx context.Context, addr string, h http.Handler, log *zap.SugaredLogger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Infof("http server listening addr=%q", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Infof("http server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
