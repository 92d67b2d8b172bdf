package handler

import (
	"errors"
	"net/http"

	"youdl/internal/model"
	"youdl/internal/service"

	"github.com/gin-gonic/gin"
)

// respondError maps service errors to status codes and writes an ErrorResponse
func respondError(c *gin.Context, err error) {
	code, name := http.StatusInternalServerError, "internal_error"

	var e *model.Error
	switch {
	case errors.As(err, &e):
		name = string(e.Kind)
		switch e.Kind {
		case model.KindInvalidURL:
			code = http.StatusBadRequest
		case model.KindInvalidResponse:
			code = http.StatusBadGateway
		case model.KindUnsupported:
			code = http.StatusUnprocessableEntity
		}
	case errors.Is(err, service.ErrItagNotOffered):
		code, name = http.StatusNotFound, "itag_not_offered"
	case errors.Is(err, service.ErrFileTooLarge):
		code, name = http.StatusRequestEntityTooLarge, "file_too_large"
	case errors.Is(err, service.ErrFileNotFound):
		code, name = http.StatusNotFound, "not_found"
	}

	resp := model.ErrorResponse{Error: name, Message: err.Error(), Code: code}
	if e != nil {
		resp.Message = e.Detail
		resp.Hint = e.Hint
	}
	c.JSON(code, resp)
}

func respondBadRequest(c *gin.Context, name, message string) {
	c.JSON(http.StatusBadRequest, model.ErrorResponse{
		Error:   name,
		Message: message,
		Code:    http.StatusBadRequest,
	})
}
