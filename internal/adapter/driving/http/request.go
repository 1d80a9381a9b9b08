package httphandler

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"strings"

	"github.com/jakewray/portfolio/internal/auth"
)

// maxBodyBytes bounds every request body the API reads.
const maxBodyBytes = 64 << 10

type bodyKind int

const (
	bodyEmpty bodyKind = iota
	bodyJSON
	bodyForm
)

var (
	errUnsupportedMediaType = errors.New("unsupported media type")
	errMalformedBody        = errors.New("malformed request body")
	errBodyTooLarge         = errors.New("request body too large")
)

// credentialsRequest is the body of POST /admin/setup and POST /admin/login.
type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// classifyBody maps the Content-Type header to a body kind. A request with
// neither a Content-Type nor a body is bodyEmpty.
func classifyBody(r *http.Request) (bodyKind, error) {
	ct := r.Header.Get("Content-Type")
	if ct == "" {
		if r.ContentLength == 0 {
			return bodyEmpty, nil
		}
		return bodyEmpty, errUnsupportedMediaType
	}

	mediaType, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return bodyEmpty, errUnsupportedMediaType
	}

	switch mediaType {
	case "application/json":
		return bodyJSON, nil
	case "application/x-www-form-urlencoded", "multipart/form-data":
		return bodyForm, nil
	default:
		return bodyEmpty, errUnsupportedMediaType
	}
}

// parseForm parses a url-encoded or multipart body already capped by
// MaxBytesReader.
func parseForm(r *http.Request) error {
	var err error
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
		err = r.ParseMultipartForm(maxBodyBytes)
	} else {
		err = r.ParseForm()
	}
	if err != nil {
		return bodyError(err)
	}
	return nil
}

// readCredentials decodes a username/password body in JSON or form encoding.
// The returned kind tells the caller which response style the client expects.
func readCredentials(w http.ResponseWriter, r *http.Request) (credentialsRequest, bodyKind, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	kind, err := classifyBody(r)
	if err != nil {
		return credentialsRequest{}, kind, err
	}

	var req credentialsRequest
	switch kind {
	case bodyJSON:
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return credentialsRequest{}, kind, bodyError(err)
		}
	case bodyForm:
		if err := parseForm(r); err != nil {
			return credentialsRequest{}, kind, err
		}
		req.Username = r.PostFormValue("username")
		req.Password = r.PostFormValue("password")
	default:
		return credentialsRequest{}, kind, errUnsupportedMediaType
	}

	return req, kind, nil
}

func bodyError(err error) error {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return errBodyTooLarge
	}
	return errMalformedBody
}

// writeBodyError maps a readCredentials or classifyBody error to a status.
func writeBodyError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, errUnsupportedMediaType):
		writeError(w, http.StatusUnsupportedMediaType, "unsupported media type")
	case errors.Is(err, errBodyTooLarge):
		writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
	default:
		writeError(w, http.StatusBadRequest, "invalid request body")
	}
}

// wantsHTML reports whether the caller is a browser form post or explicitly
// accepts HTML.
func wantsHTML(r *http.Request, kind bodyKind) bool {
	return kind == bodyForm || strings.Contains(r.Header.Get("Accept"), "text/html")
}

// csrfOK enforces the double-submit token on form bodies. JSON and empty
// bodies are exempt.
func csrfOK(csrf auth.CSRF, r *http.Request, kind bodyKind) bool {
	return kind != bodyForm || csrf.Valid(r)
}
