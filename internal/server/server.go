// Package server exposes a read-only HTTP API over an annotation dataset:
// the variant legend, the image listing, and per-image annotations. It never
// mutates label files, so it is safe to run against a dataset while someone
// is annotating it.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	kmerrors "github.com/mlenz/keymark/pkg/errors"
	"github.com/mlenz/keymark/pkg/imagefile"
	"github.com/mlenz/keymark/pkg/pose"
	"github.com/mlenz/keymark/pkg/skeleton"
)

// Options configures a Server.
type Options struct {
	// ImagesDir is the dataset image directory.
	ImagesDir string

	// LabelsDir is the label file directory.
	LabelsDir string

	// Prober supplies image dimensions, optionally cached.
	Prober *imagefile.Prober

	// Logger receives request-level events.
	Logger *log.Logger
}

// Server is the read-only dataset API.
type Server struct {
	imagesDir string
	labelsDir string
	prober    *imagefile.Prober
	logger    *log.Logger
	router    chi.Router
}

// New builds the server and its routes.
func New(opts Options) *Server {
	if opts.Prober == nil {
		opts.Prober = imagefile.NewProber(nil, nil)
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	s := &Server{
		imagesDir: opts.ImagesDir,
		labelsDir: opts.LabelsDir,
		prober:    opts.Prober,
		logger:    opts.Logger,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Get("/variants", s.handleVariants)
		r.Get("/images", s.handleImages)
		r.Get("/images/{name}/annotations", s.handleAnnotations)
	})
	s.router = r
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe runs the server until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 5 * time.Second,
	}
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	s.logger.Info("serving dataset API", "addr", addr,
		"images", s.imagesDir, "labels", s.labelsDir)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errc:
		return err
	}
}

type variantResponse struct {
	Name        string                `json:"name"`
	ClassIndex  int                   `json:"class_index"`
	Parts       []string              `json:"parts"`
	Connections []skeleton.Connection `json:"connections"`
}

func (s *Server) handleVariants(w http.ResponseWriter, r *http.Request) {
	var out []variantResponse
	for _, v := range skeleton.Variants() {
		out = append(out, variantResponse{
			Name:        v.String(),
			ClassIndex:  v.ClassIndex(),
			Parts:       v.Parts(),
			Connections: v.Connections(),
		})
	}
	s.writeJSON(w, http.StatusOK, out)
}

type imageResponse struct {
	Name   string `json:"name"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

func (s *Server) handleImages(w http.ResponseWriter, r *http.Request) {
	files, err := imagefile.List(s.imagesDir)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, kmerrors.ErrCodeIOFailure, err.Error())
		return
	}

	out := make([]imageResponse, 0, len(files))
	for _, f := range files {
		dims, err := s.prober.Probe(r.Context(), f)
		if err != nil {
			s.logger.Warn("probe failed", "path", f, "error", err)
			continue
		}
		out = append(out, imageResponse{
			Name:   filepath.Base(f),
			Width:  dims.Width,
			Height: dims.Height,
		})
	}
	s.writeJSON(w, http.StatusOK, out)
}

type keypointResponse struct {
	Part string   `json:"part"`
	X    *float64 `json:"x"`
	Y    *float64 `json:"y"`
}

type annotationResponse struct {
	ID        int                `json:"id"`
	Variant   string             `json:"variant"`
	Keypoints []keypointResponse `json:"keypoints"`
}

func (s *Server) handleAnnotations(w http.ResponseWriter, r *http.Request) {
	imgName := chi.URLParam(r, "name")
	if err := kmerrors.ValidateLabelFilename(labelName(imgName)); err != nil {
		s.writeError(w, http.StatusBadRequest, kmerrors.GetCode(err), kmerrors.UserMessage(err))
		return
	}

	imgPath := filepath.Join(s.imagesDir, imgName)
	dims, err := s.prober.Probe(r.Context(), imgPath)
	if err != nil {
		s.writeError(w, http.StatusNotFound, kmerrors.ErrCodeImageNotFound, "unknown image "+imgName)
		return
	}

	data, err := os.ReadFile(imagefile.LabelPath(imgPath, s.labelsDir))
	if os.IsNotExist(err) {
		s.writeJSON(w, http.StatusOK, []annotationResponse{})
		return
	}
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, kmerrors.ErrCodeIOFailure, err.Error())
		return
	}

	skels := pose.Decode(string(data), dims.Width, dims.Height)
	out := make([]annotationResponse, 0, len(skels))
	for _, sk := range skels {
		resp := annotationResponse{ID: sk.ID, Variant: sk.Variant.String()}
		for _, part := range sk.Variant.Parts() {
			kp := keypointResponse{Part: part}
			if p, ok := sk.Keypoint(part); ok {
				x, y := p.X, p.Y
				kp.X, kp.Y = &x, &y
			}
			resp.Keypoints = append(resp.Keypoints, kp)
		}
		out = append(out, resp)
	}
	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("encode response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, code kmerrors.Code, msg string) {
	s.writeJSON(w, status, errorResponse{Code: string(code), Message: msg})
}

// labelName maps an image filename to its label filename.
func labelName(imgName string) string {
	return strings.TrimSuffix(imgName, filepath.Ext(imgName)) + ".txt"
}
