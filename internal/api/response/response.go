// Package response writes the JSON envelopes every API endpoint returns:
// {"data": ...} on success and {"error": ..., "message": ..., "code": ...}
// on failure.
package response

import (
	"encoding/json"
	"net/http"
)

// Envelope wraps a successful payload.
type Envelope struct {
	Data any `json:"data"`
}

// ErrorBody is the payload of a failed request. Field names the offending
// input on validation failures.
type ErrorBody struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Field   string `json:"field,omitempty"`
	Code    int    `json:"code"`
}

// Page wraps one page of a larger result.
type Page struct {
	Data       any  `json:"data"`
	Page       int  `json:"page"`
	PageSize   int  `json:"page_size"`
	TotalCount int  `json:"total_count"`
	TotalPages int  `json:"total_pages"`
	HasMore    bool `json:"has_more"`
}

// encodeFailure is written verbatim when a payload cannot be marshalled.
var encodeFailure = []byte(`{"error":"Internal Server Error","message":"failed to encode response","code":500}` + "\n")

// JSON writes v with the given status. The body is marshalled before the
// header goes out, so an unencodable payload becomes a clean 500.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")

	if v == nil {
		w.WriteHeader(status)
		return
	}

	body, err := json.Marshal(v)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write(encodeFailure)
		return
	}

	w.WriteHeader(status)
	_, _ = w.Write(append(body, '\n'))
}

// Success writes data with a 200.
func Success(w http.ResponseWriter, data any) {
	JSON(w, http.StatusOK, Envelope{Data: data})
}

// Created writes data with a 201.
func Created(w http.ResponseWriter, data any) {
	JSON(w, http.StatusCreated, Envelope{Data: data})
}

// NoContent writes an empty 204.
func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// Error writes an error envelope. A nil err leaves the message out.
func Error(w http.ResponseWriter, status int, err error) {
	body := ErrorBody{Error: http.StatusText(status), Code: status}
	if err != nil {
		body.Message = err.Error()
	}
	JSON(w, status, body)
}

// Invalid writes a 400 naming the input field that failed validation.
func Invalid(w http.ResponseWriter, field string, err error) {
	body := ErrorBody{Error: http.StatusText(http.StatusBadRequest), Field: field, Code: http.StatusBadRequest}
	if err != nil {
		body.Message = err.Error()
	}
	JSON(w, http.StatusBadRequest, body)
}

func BadRequest(w http.ResponseWriter, err error)   { Error(w, http.StatusBadRequest, err) }
func Unauthorized(w http.ResponseWriter, err error) { Error(w, http.StatusUnauthorized, err) }
func Forbidden(w http.ResponseWriter, err error)    { Error(w, http.StatusForbidden, err) }
func NotFound(w http.ResponseWriter, err error)     { Error(w, http.StatusNotFound, err) }
func Conflict(w http.ResponseWriter, err error)     { Error(w, http.StatusConflict, err) }
func InternalError(w http.ResponseWriter, err error) {
	Error(w, http.StatusInternalServerError, err)
}

// UnsupportedMediaType writes a 415, used when a body is not JSON.
func UnsupportedMediaType(w http.ResponseWriter, err error) {
	Error(w, http.StatusUnsupportedMediaType, err)
}

// BadGateway writes a 502 for failures of an upstream service.
func BadGateway(w http.ResponseWriter, err error) {
	Error(w, http.StatusBadGateway, err)
}

// ServiceUnavailable writes a 503.
func ServiceUnavailable(w http.ResponseWriter, err error) {
	Error(w, http.StatusServiceUnavailable, err)
}

// HTML writes a rendered document with a 200.
func HTML(w http.ResponseWriter, body []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

// Paginated writes one page of totalCount items. A result with no items
// still has one (empty) page.
func Paginated(w http.ResponseWriter, data any, page, pageSize, totalCount int) {
	totalPages := 1
	if pageSize > 0 && totalCount > 0 {
		totalPages = (totalCount + pageSize - 1) / pageSize
	}

	JSON(w, http.StatusOK, Page{
		Data:       data,
		Page:       page,
		PageSize:   pageSize,
		TotalCount: totalCount,
		TotalPages: totalPages,
		HasMore:    page < totalPages,
	})
}
