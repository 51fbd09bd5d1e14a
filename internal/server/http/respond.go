package http

import (
	"encoding/json"
	"net/http"
)

type errorBody struct {
	Error string `json:"error"`
}

type dataBody struct {
	Data    any    `json:"data"`
	Message string `json:"message,omitempty"`
}

type authBody struct {
	UserID  string `json:"userId"`
	Token   string `json:"token"`
	Message string `json:"message"`
}

type healthBody struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, errorBody{Error: msg})
}
