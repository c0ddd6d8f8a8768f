package utils

import (
	"go.uber.org/zap"
)

// LogError logs an error if it's not nil
func LogError(logger *zap.Logger, err error, context string) {
	if err != nil {
		logger.Error("operation failed", zap.String("context", context), zap.Error(err))
	}
}
