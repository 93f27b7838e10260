package respond

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
)

func JSON(w http.ResponseWriter, r *http.Request, code int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(data)
}

// Error пишет {"error": message}; если запрос прошёл через
// middleware.RequestID, добавляется request_id для поиска в логах.
func Error(w http.ResponseWriter, r *http.Request, code int, message string) {
	body := map[string]string{"error": message}
	if id := middleware.GetReqID(r.Context()); id != "" {
		body["request_id"] = id
	}
	JSON(w, r, code, body)
}

// Text отдаёт тело как есть, для выгрузки todo.txt.
func Text(w http.ResponseWriter, r *http.Request, code int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(code)
	io.WriteString(w, body)
}
