package handler

import (
	"encoding/json"
	"net/http"
)

// JSONResponse is the envelope of every JSON body.
type JSONResponse struct {
	Data  any          `json:"data,omitempty"`
	Error *ErrorDetail `json:"error,omitempty"`
}

// ErrorDetail is the "error" member of a JSON error body.
type ErrorDetail struct {
	Code    string              `json:"code"`
	Message string              `json:"message"`
	Details map[string][]string `json:"details,omitempty"`
}

type jsonResponse struct {
	status int
	body   JSONResponse
}

func (j jsonResponse) Render(w http.ResponseWriter, _ *http.Request) error {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(j.status)
	return json.NewEncoder(w).Encode(j.body)
}

// JSON responds 200 with {"data": v}.
func JSON(v any) Response {
	return jsonResponse{status: http.StatusOK, body: JSONResponse{Data: v}}
}

// JSONWithStatus responds status with {"data": v}.
func JSONWithStatus(status int, v any) Response {
	return jsonResponse{status: status, body: JSONResponse{Data: v}}
}

// JSONError responds with the status of e and {"error": {...}}.
func JSONError(e HTTPError) Response {
	return jsonResponse{
		status: e.Status,
		body: JSONResponse{Error: &ErrorDetail{
			Code:    e.Code,
			Message: e.Message,
			Details: e.Details,
		}},
	}
}

// Error returns a Response that fails rendering with err, handing it to the
// configured ErrorHandler.
func Error(err error) Response {
	return errorResponse{err: err}
}

type errorResponse struct{ err error }

func (e errorResponse) Render(http.ResponseWriter, *http.Request) error { return e.err }

type emptyResponse struct{ status int }

func (e emptyResponse) Render(w http.ResponseWriter, _ *http.Request) error {
	w.WriteHeader(e.status)
	return nil
}

// Empty responds 204 No Content.
func Empty() Response { return emptyResponse{status: http.StatusNoContent} }

type redirectResponse struct {
	url    string
	status int
}

func (r redirectResponse) Render(w http.ResponseWriter, req *http.Request) error {
	http.Redirect(w, req, r.url, r.status)
	return nil
}

// Redirect responds 302 Found to url.
func Redirect(url string) Response {
	return redirectResponse{url: url, status: http.StatusFound}
}
