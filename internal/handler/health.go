package handler

import (
	"net/http"

	"github.com/xsoluti-sigelo/sigelo/internal/errHandler"
	"github.com/xsoluti-sigelo/sigelo/internal/response"
	"github.com/xsoluti-sigelo/sigelo/internal/version"
)

type healthCheckHandler struct {
	errHandler *errHandler.ErrorRepository
}

func NewHealthCheckHandler(errHandler *errHandler.ErrorRepository) *healthCheckHandler {
	return &healthCheckHandler{
		errHandler: errHandler,
	}
}

func (h *healthCheckHandler) HandleHealthCheck(w http.ResponseWriter, r *http.Request) {
	data := map[string]string{
		"status":  "OK",
		"version": version.Get(),
	}

	err := response.JSONOkResponse(w, data, "", nil)
	if err != nil {
		h.errHandler.ServerError(w, r, err)
	}
}
