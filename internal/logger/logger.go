// Package logger собирает zap-логгер сервиса с необязательной записью в файл с ротацией.
package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Параметры ротации файла журнала.
const (
	maxSizeMB  = 64
	maxBackups = 7
	maxAgeDays = 7
)

// New создаёт production-логгер. Если filename не пуст, записи дополнительно
// пишутся в файл в формате JSON с ротацией через lumberjack.
func New(filename string) (*zap.Logger, error) {
	if filename == "" {
		return zap.NewProduction()
	}

	level := zap.NewAtomicLevelAt(zapcore.InfoLevel)

	rotator := &lumberjack.Logger{
		Filename:   filename,
		MaxSize:    maxSizeMB,
		MaxBackups: maxBackups,
		MaxAge:     maxAgeDays,
	}

	core := zapcore.NewTee(
		zapcore.NewCore(
			zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
			zapcore.AddSync(rotator),
			level,
		),
		zapcore.NewCore(
			zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
			zapcore.Lock(os.Stdout),
			level,
		),
	)

	return zap.New(core, zap.AddCaller()), nil
}
