package api

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/irmock-api/internal/api/shared"
	"github.com/phrazzld/irmock-api/internal/domain"
)

// multipartMemory is the part of a multipart body kept in memory; the rest
// spills to temporary files.
const multipartMemory = 32 << 20

// callbackField names the optional form field holding the callback URL.
const callbackField = "callback"

// parsePagination reads offset and limit from the query string. Missing or
// malformed values come back as zero, which the task service replaces with
// its defaults.
func parsePagination(r *http.Request) (offset, limit int) {
	return shared.QueryInt(r, "offset", 0), shared.QueryInt(r, "limit", 0)
}

// pathParam returns a required chi URL parameter.
func pathParam(r *http.Request, name string) (string, error) {
	v := chi.URLParam(r, name)
	if v == "" {
		return "", domain.NewValidationError(name, "is required", domain.ErrValidation)
	}
	return v, nil
}

// parseBatchUpload parses a multipart upload and returns the number of file
// parts across all field names, together with the validated callback URL.
func parseBatchUpload(w http.ResponseWriter, r *http.Request, maxBytes int64) (int, string, error) {
	limitBody(w, r, maxBytes)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		if errors.Is(err, http.ErrNotMultipart) {
			return 0, "", ErrNoImages
		}
		return 0, "", classifyBodyError(err)
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	count := 0
	for _, files := range r.MultipartForm.File {
		count += len(files)
	}
	if count == 0 {
		return 0, "", ErrNoImages
	}

	callback, err := validateCallback(firstValue(r.MultipartForm.Value[callbackField]))
	if err != nil {
		return 0, "", err
	}
	return count, callback, nil
}

// parseCallback extracts the optional callback URL of a single-image
// submission. The body may be multipart, url-encoded or JSON, or absent.
// Other content types are ignored.
func parseCallback(w http.ResponseWriter, r *http.Request, maxBytes int64) (string, error) {
	if r.Body == nil || r.Body == http.NoBody {
		return "", nil
	}
	limitBody(w, r, maxBytes)

	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		return "", nil
	}

	var raw string
	switch mediaType {
	case "multipart/form-data":
		if err := r.ParseMultipartForm(multipartMemory); err != nil {
			return "", classifyBodyError(err)
		}
		defer func() { _ = r.MultipartForm.RemoveAll() }()
		raw = firstValue(r.MultipartForm.Value[callbackField])

	case "application/x-www-form-urlencoded":
		if err := r.ParseForm(); err != nil {
			return "", classifyBodyError(err)
		}
		raw = r.PostForm.Get(callbackField)

	case "application/json":
		var form CallbackForm
		if err := json.NewDecoder(r.Body).Decode(&form); err != nil && !errors.Is(err, io.EOF) {
			return "", classifyBodyError(err)
		}
		raw = form.Callback
	}

	return validateCallback(raw)
}

func validateCallback(raw string) (string, error) {
	form := CallbackForm{Callback: raw}
	if err := shared.ValidateRequest(&form); err != nil {
		return "", domain.NewValidationError(callbackField, SanitizeValidationError(err), domain.ErrValidation)
	}
	return form.Callback, nil
}

func limitBody(w http.ResponseWriter, r *http.Request, maxBytes int64) {
	if maxBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	}
}

func classifyBodyError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return ErrUploadTooLarge
	}
	return errors.Join(ErrMalformedBody, err)
}

func firstValue(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}
