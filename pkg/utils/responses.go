package utils

import (
	"encoding/json"
	"net/http"
)

const (
	StatusSuccess = "success"
	StatusFail    = "fail"
	StatusError   = "error"
)

type Response struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Token   string `json:"token,omitempty"`
	Results *int   `json:"results,omitempty"`
	Data    any    `json:"data,omitempty"`
	Errors  any    `json:"errors,omitempty"`
	Error   string `json:"error,omitempty"`
}

// ResponseJSON writes a JSON envelope with a custom status code
func ResponseJSON(w http.ResponseWriter, code int, response Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(response)
}

// ------------- Success responses -------------

// returns 200 OK
func ResponseSuccess(w http.ResponseWriter, data any) {
	ResponseJSON(w, http.StatusOK, Response{Status: StatusSuccess, Data: data})
}

// ResponseList returns 200 OK with a results count
func ResponseList(w http.ResponseWriter, results int, data any) {
	ResponseJSON(w, http.StatusOK, Response{Status: StatusSuccess, Results: &results, Data: data})
}

// returns 201 Created
func ResponseCreated(w http.ResponseWriter, data any) {
	ResponseJSON(w, http.StatusCreated, Response{Status: StatusSuccess, Data: data})
}

// ResponseToken returns a signed token alongside the user payload
func ResponseToken(w http.ResponseWriter, code int, token string, data any) {
	ResponseJSON(w, code, Response{Status: StatusSuccess, Token: token, Data: data})
}

// ResponseMessage returns 200 OK with a message and no data
func ResponseMessage(w http.ResponseWriter, message string) {
	ResponseJSON(w, http.StatusOK, Response{Status: StatusSuccess, Message: message})
}

// returns 204 No Content
func ResponseNoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// ------------- Error responses -------------

// ResponseFail writes an operational (4xx) failure
func ResponseFail(w http.ResponseWriter, code int, message string, errors any) {
	ResponseJSON(w, code, Response{Status: StatusFail, Message: message, Errors: errors})
}

// ResponseError writes a non-operational (5xx) failure; detail is only set in development
func ResponseError(w http.ResponseWriter, message, detail string) {
	ResponseJSON(w, http.StatusInternalServerError, Response{Status: StatusError, Message: message, Error: detail})
}
