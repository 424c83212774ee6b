package mocks

import "github.com/stretchr/testify/mock"

type MockAuditProducer struct {
	mock.Mock
}

func (m *MockAuditProducer) ProduceMessage(topic, message string) error {
	args := m.Called(topic, message)
	return args.Error(0)
}
