package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/skalibog/mtfsignal/internal/config"
	"github.com/skalibog/mtfsignal/pkg/models"
)

// ErrHistoryUnavailable история не ведется (хранилище отключено)
var ErrHistoryUnavailable = errors.New("история сигналов недоступна")

// Storage интерфейс для работы с хранилищем сигналов
type Storage interface {
	SaveSignal(ctx context.Context, signal *models.Signal) error
	GetSignalHistory(ctx context.Context, symbol string, limit int) ([]*models.Signal, error)
	Close()
}

// New создает хранилище по типу из конфигурации
func New(ctx context.Context, cfg config.StorageConfig) (Storage, error) {
	switch cfg.Type {
	case "", "none":
		return NopStorage{}, nil
	case "influxdb":
		store, err := NewInfluxDBStorage(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("неизвестный тип хранилища: %s", cfg.Type)
	}
}

// NopStorage ничего не сохраняет
type NopStorage struct{}

func (NopStorage) SaveSignal(context.Context, *models.Signal) error { return nil }

func (NopStorage) GetSignalHistory(context.Context, string, int) ([]*models.Signal, error) {
	return nil, ErrHistoryUnavailable
}

func (NopStorage) Close() {}
