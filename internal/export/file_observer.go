package export

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"go.uber.org/zap"

	"github.com/kazakovdmitriy/go-pagespeed-audit/internal/model"
)

// FileObserver дописывает результаты аудитов в JSON-lines файл
type FileObserver struct {
	file     *os.File
	filePath string
	log      *zap.Logger
	mu       sync.Mutex
}

// NewFileObserver открывает файл результатов на дозапись
func NewFileObserver(filePath string, log *zap.Logger) (*FileObserver, error) {
	file, err := os.OpenFile(filePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	return &FileObserver{
		file:     file,
		filePath: filePath,
		log:      log,
	}, nil
}

// OnAuditCompleted записывает результат одной строкой JSON
func (f *FileObserver) OnAuditCompleted(result model.AuditResult) {
	jsonResult, err := json.Marshal(result)
	if err != nil {
		f.log.Error("Error marshaling result", zap.Error(err))
		return
	}
	jsonResult = append(jsonResult, '\n')

	f.mu.Lock()
	defer f.mu.Unlock()

	if _, err := f.file.Write(jsonResult); err != nil {
		f.log.Error("Error writing to file", zap.Error(err))
		return
	}

	f.log.Debug("Audit result exported", zap.String("url", result.URL))
}

// Close закрывает файл при завершении работы
func (f *FileObserver) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.file == nil {
		return nil
	}

	if err := f.file.Sync(); err != nil {
		f.log.Warn("Sync failed on close", zap.Error(err))
	}

	if err := f.file.Close(); err != nil {
		return fmt.Errorf("close file: %w", err)
	}

	f.file = nil
	f.log.Info("File observer closed", zap.String("path", f.filePath))
	return nil
}
