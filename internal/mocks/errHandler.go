package mocks

import (
	"log"
	"net/http"
)

type MockErrorReporter struct{}

func (m *MockErrorReporter) ReportServerError(r *http.Request, err error) {
	log.Printf("Mock Error Reporter: %v", err)
}
