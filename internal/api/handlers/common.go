package handlers

import (
	"net/http"

	"github.com/go-chi/render"
)

// errorResponse формат ответа с ошибкой
type errorResponse struct {
	Error   bool   `json:"error"`
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// response формат успешного ответа
type response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
}

func renderError(w http.ResponseWriter, r *http.Request, code int, message string) {
	render.Status(r, code)
	render.JSON(w, r, errorResponse{
		Error:   true,
		Code:    code,
		Message: message,
	})
}

func renderData(w http.ResponseWriter, r *http.Request, code int, data interface{}) {
	render.Status(r, code)
	render.JSON(w, r, response{
		Success: true,
		Data:    data,
	})
}
