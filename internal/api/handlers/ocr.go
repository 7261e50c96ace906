package handlers

import (
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/brainsait/docuscan/internal/apierror"
	"github.com/brainsait/docuscan/internal/auth"
	"github.com/brainsait/docuscan/internal/ocr"
)

// multipartMemory bounds the in-memory portion of multipart parsing;
// larger parts spill to temp files.
const multipartMemory = 16 << 20

type OCRHandler struct {
	svc *ocr.Service
}

func NewOCRHandler(svc *ocr.Service) *OCRHandler {
	return &OCRHandler{svc: svc}
}

func (h *OCRHandler) Process(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		WriteError(w, r, apierror.Validation("invalid multipart form"))
		return
	}
	defer r.MultipartForm.RemoveAll()

	upload, err := readUpload(r, "file")
	if err != nil {
		WriteError(w, r, err)
		return
	}
	upload.Options = parseOptions(r)

	result, procErr := h.svc.Process(r.Context(), user, *upload)
	if procErr != nil {
		WriteError(w, r, procErr)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *OCRHandler) Batch(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		WriteError(w, r, apierror.Validation("invalid multipart form"))
		return
	}
	defer r.MultipartForm.RemoveAll()

	opts := parseOptions(r)
	files := r.MultipartForm.File["files"]

	uploads := make([]ocr.Upload, 0, len(files))
	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			WriteError(w, r, apierror.Validation("could not read uploaded file"))
			return
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			WriteError(w, r, apierror.Validation("could not read uploaded file"))
			return
		}
		uploads = append(uploads, ocr.Upload{FileName: fh.Filename, Data: data, Options: opts})
	}

	results, failures, err := h.svc.ProcessBatch(r.Context(), user, uploads)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"results": results,
		"errors":  failures,
	})
}

func (h *OCRHandler) History(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	records, err := h.svc.History(r.Context(), user.ID, limit, offset)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"records": records, "count": len(records)})
}

func (h *OCRHandler) Result(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		WriteError(w, r, apierror.Validation("invalid result id"))
		return
	}

	rec, err := h.svc.GetResult(r.Context(), id, user.ID)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func readUpload(r *http.Request, field string) (*ocr.Upload, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		return nil, apierror.Validation("file is required")
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, apierror.Validation("could not read uploaded file")
	}
	return &ocr.Upload{FileName: header.Filename, Data: data}, nil
}

func parseOptions(r *http.Request) ocr.Options {
	return ocr.Options{
		ExtractImages:      formBool(r, "extract_images"),
		PreserveFormatting: formBool(r, "preserve_formatting"),
		ExtractTables:      formBool(r, "extract_tables"),
		AutoTranslate:      formBool(r, "auto_translate"),
	}
}

func formBool(r *http.Request, field string) bool {
	v, _ := strconv.ParseBool(r.FormValue(field))
	return v
}
