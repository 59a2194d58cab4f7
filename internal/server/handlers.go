package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/language"

	"github.com/rasterloc/rasterloc/internal/eligibility"
	"github.com/rasterloc/rasterloc/internal/region"
	"github.com/rasterloc/rasterloc/internal/reinsert"
	"github.com/rasterloc/rasterloc/internal/textfit"
)

// contentTypes maps supported raster extensions to their media type.
var contentTypes = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".bmp":  "image/bmp",
	".tif":  "image/tiff",
	".tiff": "image/tiff",
}

// healthHandler returns server health status.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := HealthResponse{
		Status:  "healthy",
		Version: versionString(),
		Time:    time.Now().UTC().Format(time.RFC3339),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding health response: %v\n", err)
	}
}

// localizeHandler localizes one uploaded image. The request is multipart:
// an "image" file, a "regions" detector document (form field or file part),
// and optional "source"/"target" BCP-47 overrides. The default response is
// the localized image; format=json returns the translated region document.
func (s *Server) localizeHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)
	if err := r.ParseMultipartForm(s.maxUploadBytes); err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "too large") {
			s.writeErrorResponse(w, "File too large", http.StatusRequestEntityTooLarge)
		} else {
			s.writeErrorResponse(w, "Failed to parse form data", http.StatusBadRequest)
		}
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		s.writeErrorResponse(w, "No image file provided", http.StatusBadRequest)
		return
	}
	defer func() { _ = file.Close() }()
	uploadSizeBytes.Observe(float64(header.Size))

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if ext == "" {
		ext = ".png"
	}
	if !eligibility.IsRasterAsset(ext) {
		s.writeErrorResponse(w, fmt.Sprintf("unsupported file type: %s", ext), http.StatusBadRequest)
		return
	}

	regions, err := s.formRegions(r)
	if err != nil {
		s.writeErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	source, target, err := s.formLanguages(r)
	if err != nil {
		s.writeErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	dir, err := os.MkdirTemp("", "rasterloc-serve-")
	if err != nil {
		s.writeErrorResponse(w, "Failed to stage upload", http.StatusInternalServerError)
		return
	}
	defer func() { _ = os.RemoveAll(dir) }()

	inPath := filepath.Join(dir, "original"+ext)
	if err := copyUpload(file, inPath); err != nil {
		s.writeErrorResponse(w, "Failed to stage upload", http.StatusInternalServerError)
		return
	}

	start := time.Now()
	translated, err := s.translator.Translate(r.Context(), regions, source, target)
	if err != nil {
		localizeRequestsTotal.WithLabelValues("http", "error").Inc()
		s.writeErrorResponse(w, fmt.Sprintf("Translation failed: %v", err), http.StatusBadGateway)
		return
	}

	fonts, err := textfit.NewFontSet()
	if err != nil {
		s.writeErrorResponse(w, "Font initialization failed", http.StatusInternalServerError)
		return
	}
	defer func() { _ = fonts.Close() }()

	outPath := filepath.Join(dir, "localized"+ext)
	if _, err := reinsert.NewEngine(fonts).Reinsert(inPath, regions, translated, outPath); err != nil {
		localizeRequestsTotal.WithLabelValues("http", "error").Inc()
		var decodeErr *reinsert.DecodeError
		if errors.As(err, &decodeErr) {
			s.writeErrorResponse(w, "Invalid image format", http.StatusBadRequest)
			return
		}
		s.writeErrorResponse(w, fmt.Sprintf("Localization failed: %v", err), http.StatusInternalServerError)
		return
	}

	localizeRequestsTotal.WithLabelValues("http", "success").Inc()
	localizeDuration.WithLabelValues("http").Observe(time.Since(start).Seconds())
	regionsLocalized.WithLabelValues("http").Observe(float64(len(regions)))

	if format := formatOf(r); format == "json" {
		data, err := region.ToJSON(translated, 0, 0)
		if err != nil {
			s.writeErrorResponse(w, "Failed to encode regions", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(data)
		return
	}

	s.writeLocalizedImage(w, outPath, ext, len(regions))
}

// formRegions extracts the detector document from the regions form field or
// file part.
func (s *Server) formRegions(r *http.Request) ([]region.TextRegion, error) {
	if raw := r.FormValue("regions"); raw != "" {
		regions, err := region.FromJSON([]byte(raw))
		if err != nil {
			return nil, fmt.Errorf("invalid regions document: %w", err)
		}
		return regions, nil
	}

	file, _, err := r.FormFile("regions")
	if err != nil {
		return nil, errors.New("no regions document provided")
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, errors.New("failed to read regions document")
	}
	regions, err := region.FromJSON(data)
	if err != nil {
		return nil, fmt.Errorf("invalid regions document: %w", err)
	}
	return regions, nil
}

// formLanguages resolves the language pair, falling back to server defaults.
func (s *Server) formLanguages(r *http.Request) (language.Tag, language.Tag, error) {
	source := s.cfg.Source
	target := s.cfg.Target

	if v := r.FormValue("source"); v != "" {
		tag, err := language.Parse(v)
		if err != nil {
			return source, target, fmt.Errorf("invalid source language %q", v)
		}
		source = tag
	}
	if v := r.FormValue("target"); v != "" {
		tag, err := language.Parse(v)
		if err != nil {
			return source, target, fmt.Errorf("invalid target language %q", v)
		}
		target = tag
	}
	return source, target, nil
}

// writeLocalizedImage streams the result file with its media type.
func (s *Server) writeLocalizedImage(w http.ResponseWriter, path, ext string, count int) {
	f, err := os.Open(path) //nolint:gosec // G304: path is inside a server-owned temp dir
	if err != nil {
		s.writeErrorResponse(w, "Failed to read localized image", http.StatusInternalServerError)
		return
	}
	defer func() { _ = f.Close() }()

	ct := contentTypes[ext]
	if ct == "" {
		ct = "application/octet-stream"
	}
	w.Header().Set("Content-Type", ct)
	w.Header().Set("X-Rasterloc-Strings", strconv.Itoa(count))
	if _, err := io.Copy(w, f); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing localized image: %v\n", err)
	}
}

func formatOf(r *http.Request) string {
	if f := r.FormValue("format"); f != "" {
		return f
	}
	return r.URL.Query().Get("format")
}

func copyUpload(src io.Reader, dst string) error {
	out, err := os.Create(dst) //nolint:gosec // G304: destination is inside a server-owned temp dir
	if err != nil {
		return err
	}
	defer func() { _ = out.Close() }()
	_, err = io.Copy(out, src)
	return err
}

// writeErrorResponse writes a JSON error response.
func (s *Server) writeErrorResponse(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	response := LocalizeResponse{
		Success: false,
		Error:   message,
	}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing error response: %v\n", err)
	}
}
