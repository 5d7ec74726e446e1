package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Response is the envelope of every JSON reply.
type Response struct {
	Code int         `json:"code"`
	Data interface{} `json:"data"`
	Msg  string      `json:"message"`
}

// Business codes carried in Response.Code.
const (
	SUCCESS          = 0
	ERROR            = -1
	NOT_FOUND        = 40400
	VALIDATION_ERROR = 40001
)

var codeMessages = map[int]string{
	SUCCESS:          "ok",
	ERROR:            "simulation failed",
	NOT_FOUND:        "resource not found",
	VALIDATION_ERROR: "validation failed",
}

func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code: SUCCESS,
		Data: data,
		Msg:  codeMessages[SUCCESS],
	})
}

func Error(c *gin.Context, code int, msg string) {
	if msg == "" {
		msg = codeMessages[code]
	}
	c.JSON(getHttpStatus(code), Response{
		Code: code,
		Data: nil,
		Msg:  msg,
	})
}

// getHttpStatus maps a business code onto an HTTP status.
func getHttpStatus(code int) int {
	switch code {
	case NOT_FOUND:
		return http.StatusNotFound
	case VALIDATION_ERROR:
		return http.StatusBadRequest
	case ERROR:
		return http.StatusInternalServerError
	default:
		return http.StatusOK
	}
}
