package httperr

import (
	"log/slog"
	"net/http"

	"hotel-booking/internal/pkg/errs"

	"github.com/gin-gonic/gin"
)

const stackLinesOnServerError = 12

// Response is the error body of every endpoint: {"error": {"message": ...}}.
type Response struct {
	Status int `json:"-"`
	Error  struct {
		Message string `json:"message"`
	} `json:"error"`
	Detail any `json:"detail,omitempty"`
}

func NewResponse(status int, msg string) Response {
	resp := Response{Status: status}
	resp.Error.Message = msg
	return resp
}

// AbortWithError answers with msg and keeps err on the gin context for the
// request logger. Server errors are logged with a trimmed stack since their
// message never reaches the client.
func AbortWithError(c *gin.Context, status int, err error, msg string, detail any) {
	if err == nil {
		err = errs.New(msg)
	}

	if status >= http.StatusInternalServerError {
		slog.Error(msg,
			"path", c.FullPath(),
			"error", err.Error(),
			"stack", errs.ExtractStackLines(err, stackLinesOnServerError))
	}

	resp := NewResponse(status, msg)
	resp.Detail = detail

	_ = c.Error(gin.Error{
		Err:  err,
		Type: gin.ErrorTypePublic,
		Meta: resp,
	})
	c.AbortWithStatusJSON(status, resp)
}
