package helper

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"sync"
)

// ErrorReporter is the slice of the error handler that background
// tasks need; keeping it an interface avoids an import cycle.
type ErrorReporter interface {
	ReportServerError(r *http.Request, err error)
}

type HelperRepository struct {
	baseUrl    *string
	WG         *sync.WaitGroup
	errHandler ErrorReporter
}

func New(baseUrl *string, wg *sync.WaitGroup, errHandler ErrorReporter) *HelperRepository {
	return &HelperRepository{
		baseUrl:    baseUrl,
		WG:         wg,
		errHandler: errHandler,
	}
}

func (h *HelperRepository) SetErrorReporter(errHandler ErrorReporter) {
	h.errHandler = errHandler
}

func (h *HelperRepository) BaseURL() string {
	if h.baseUrl == nil {
		return ""
	}
	return *h.baseUrl
}

func (h *HelperRepository) NewEmailData() map[string]any {
	data := map[string]any{
		"BaseURL": h.baseUrl,
	}

	return data
}

func (h *HelperRepository) BackgroundTask(r *http.Request, fn func() error) {
	h.WG.Add(1)

	go func() {
		defer h.WG.Done()

		defer func() {
			err := recover()
			if err != nil && h.errHandler != nil {
				h.errHandler.ReportServerError(nil, fmt.Errorf("%s", err))
			}
		}()

		err := fn()
		if err != nil && h.errHandler != nil {
			h.errHandler.ReportServerError(nil, err)
		}
	}()
}

// NewToken returns a random token and the hex SHA-256 digest stored
// server-side. Only the digest ever touches the database.
func NewToken() (plaintext, hash string, err error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", "", err
	}

	plaintext = hex.EncodeToString(buf)
	return plaintext, HashToken(plaintext), nil
}

func HashToken(plaintext string) string {
	digest := sha256.Sum256([]byte(plaintext))
	return hex.EncodeToString(digest[:])
}
