package middleware

import (
	"net/http"
	"runtime/debug"
	"time"

	"github.com/emicklei/go-restful/v3"
	"github.com/rs/zerolog/log"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Status  int    `json:"status"`
	Details string `json:"details,omitempty"`
}

// Logger logs every request with its status and latency.
func Logger(req *restful.Request, resp *restful.Response, chain *restful.FilterChain) {
	start := time.Now()
	chain.ProcessFilter(req, resp)

	log.Info().
		Str("method", req.Request.Method).
		Str("path", req.Request.URL.Path).
		Int("status", resp.StatusCode()).
		Dur("latency", time.Since(start)).
		Msg("HTTP request")
}

// RecoverPanic turns a handler panic into a 500.
func RecoverPanic(req *restful.Request, resp *restful.Response, chain *restful.FilterChain) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().
				Interface("panic", r).
				Str("path", req.Request.URL.Path).
				Bytes("stack", debug.Stack()).
				Msg("Recovered from panic")
			HandleError(resp, nil, http.StatusInternalServerError)
		}
	}()
	chain.ProcessFilter(req, resp)
}

func HandleError(resp *restful.Response, err error, status int) {
	body := ErrorResponse{
		Error:  http.StatusText(status),
		Status: status,
	}
	if err != nil {
		body.Details = err.Error()
	}
	if writeErr := resp.WriteHeaderAndEntity(status, body); writeErr != nil {
		log.Error().Err(writeErr).Msg("Failed to write error response")
	}
}
