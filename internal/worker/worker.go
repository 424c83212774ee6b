package worker

import (
	"log/slog"

	"github.com/xsoluti-sigelo/sigelo/internal/database"
	"github.com/xsoluti-sigelo/sigelo/internal/stream"
)

type Worker struct {
	db          *database.DB
	kafkaStream *stream.KafkaStream
	logger      *slog.Logger
}

func New(db *database.DB, kafkaStream *stream.KafkaStream, logger *slog.Logger) *Worker {
	return &Worker{
		db:          db,
		kafkaStream: kafkaStream,
		logger:      logger,
	}
}
