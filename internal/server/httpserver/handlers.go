package httpserver

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"

	"github.com/dmitrijs2005/shareme/internal/common"
	"github.com/dmitrijs2005/shareme/internal/server/services"
	"github.com/go-chi/chi/v5"
)

// multipartMemory is the part of a multipart body kept in memory; the rest
// spills to temporary files.
const multipartMemory = 32 << 20

func (s *HTTPServer) upload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if s.opts.MaxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxUploadBytes)
	}

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "File too large")
			return
		}
		writeServiceError(ctx, w, s.logger, common.ErrorMissingFile)
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, hdr, err := r.FormFile(s.opts.UploadField)
	if err != nil {
		writeServiceError(ctx, w, s.logger, common.ErrorMissingFile)
		return
	}
	defer file.Close()

	res, err := s.files.Upload(ctx, &services.FilePayload{
		Filename: hdr.Filename,
		Size:     hdr.Size,
		Body:     file,
	})
	if err != nil {
		writeServiceError(ctx, w, s.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, res)
}

func (s *HTTPServer) metadata(w http.ResponseWriter, r *http.Request) {
	meta, err := s.files.GetMetadata(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(r.Context(), w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, meta)
}

func (s *HTTPServer) download(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	content, err := s.files.OpenContent(ctx, id)
	if err != nil {
		writeServiceError(ctx, w, s.logger, err)
		return
	}
	defer content.Close()

	contentType := content.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	if content.ContentLength >= 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(content.ContentLength, 10))
	}
	if content.Filename != "" {
		w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": content.Filename}))
	}
	w.WriteHeader(http.StatusOK)

	written, err := io.Copy(w, content.Body)
	downloadBytesTotal.Add(float64(written))
	if err != nil {
		// Headers are already sent. Abort the connection so a chunked body is
		// not terminated cleanly and the client sees the truncation.
		s.logger.Error(ctx, "download stream interrupted", "id", id, "bytes_written", written, "error", err)
		panic(http.ErrAbortHandler)
	}
}

func (s *HTTPServer) email(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req services.ShareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeServiceError(ctx, w, s.logger, common.ErrorInvalidRequest)
		return
	}

	res, err := s.shares.ShareByEmail(ctx, req)
	if err != nil {
		writeServiceError(ctx, w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
