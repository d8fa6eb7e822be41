package logger

import (
	"strings"

	"go.uber.org/zap"
)

const (
	FieldRanker    = "ranker"
	FieldModel     = "ranker_model"
	FieldRequestID = "request_id"
	FieldProfileID = "profile_id"
	FieldLanguage  = "language"
)

// StringField describes a string-valued structured logging field.
type StringField struct {
	Key   string
	Value string
}

// StringFields converts the provided key/value pairs into zap fields, trimming
// whitespace and omitting entries with empty keys or values.
func StringFields(fields ...StringField) []zap.Field {
	result := make([]zap.Field, 0, len(fields))
	for _, field := range fields {
		key := strings.TrimSpace(field.Key)
		if key == "" {
			continue
		}

		value := strings.TrimSpace(field.Value)
		if value == "" {
			continue
		}

		result = append(result, zap.String(key, value))
	}

	return result
}

// WithFields attaches fields to logger, defaulting to a no-op logger when nil.
func WithFields(logger *zap.Logger, fields ...zap.Field) *zap.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}

	if len(fields) == 0 {
		return logger
	}

	return logger.With(fields...)
}

// WithRanker tags logger with the ranking backend in use.
func WithRanker(logger *zap.Logger, ranker, model string) *zap.Logger {
	return WithFields(logger, StringFields(
		StringField{Key: FieldRanker, Value: ranker},
		StringField{Key: FieldModel, Value: model},
	)...)
}

// WithMatch tags logger with the profile being matched and the reply language.
func WithMatch(logger *zap.Logger, profileID, language string) *zap.Logger {
	return WithFields(logger, StringFields(
		StringField{Key: FieldProfileID, Value: profileID},
		StringField{Key: FieldLanguage, Value: language},
	)...)
}
