package logger

import (
	"fmt"
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config настройки логгера
type Config struct {
	Level    string
	File     string // читаемый лог
	JSONFile string // JSON-лог, его же читает панель логов в UI
}

// Глобальный экземпляр логгера
var (
	globalLogger = zap.NewNop()
	mu           sync.RWMutex
)

// Init инициализирует глобальный логгер.
// До вызова Init все записи отбрасываются.
func Init(cfg Config) error {
	l, err := newLogger(cfg)
	if err != nil {
		return err
	}

	mu.Lock()
	globalLogger = l
	mu.Unlock()
	return nil
}

// GetLogger возвращает глобальный экземпляр логгера
func GetLogger() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return globalLogger
}

// Named возвращает дочерний логгер для компонента без пропуска вызывающего кадра
func Named(name string) *zap.Logger {
	return GetLogger().WithOptions(zap.AddCallerSkip(-1)).Named(name)
}

// Вспомогательные функции для удобства использования
func Info(msg string, fields ...zap.Field) {
	GetLogger().Info(msg, fields...)
}

func Error(msg string, fields ...zap.Field) {
	GetLogger().Error(msg, fields...)
}

func Debug(msg string, fields ...zap.Field) {
	GetLogger().Debug(msg, fields...)
}

func Warn(msg string, fields ...zap.Field) {
	GetLogger().Warn(msg, fields...)
}

func Fatal(msg string, fields ...zap.Field) {
	GetLogger().Fatal(msg, fields...)
}

func newLogger(cfg Config) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if cfg.Level != "" {
		parsed, err := zapcore.ParseLevel(cfg.Level)
		if err != nil {
			return nil, fmt.Errorf("неизвестный уровень логирования %q: %w", cfg.Level, err)
		}
		level = parsed
	}

	// Конфигурация энкодера
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout(TimeLayout)
	encoderConfig.EncodeCaller = zapcore.ShortCallerEncoder

	readableConfig := encoderConfig
	readableConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	jsonConfig := encoderConfig
	jsonConfig.EncodeLevel = zapcore.CapitalLevelEncoder

	var cores []zapcore.Core
	if cfg.File != "" {
		f, err := os.OpenFile(cfg.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return nil, fmt.Errorf("ошибка открытия файла логов: %w", err)
		}
		cores = append(cores, zapcore.NewCore(zapcore.NewConsoleEncoder(readableConfig), zapcore.AddSync(f), level))
	}
	if cfg.JSONFile != "" {
		// JSON-лог очищается при перезапуске, панель логов показывает только текущий запуск
		f, err := os.OpenFile(cfg.JSONFile, os.O_TRUNC|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return nil, fmt.Errorf("ошибка открытия JSON-файла логов: %w", err)
		}
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(jsonConfig), zapcore.AddSync(f), level))
	}
	if len(cores) == 0 {
		return zap.NewNop(), nil
	}

	return zap.New(zapcore.NewTee(cores...), zap.AddCaller(), zap.AddCallerSkip(1)), nil
}

// TimeLayout формат времени в записях лога
const TimeLayout = "02.01.2006 - 15:04:05.000000000Z07:00"
