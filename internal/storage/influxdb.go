// internal/storage/influxdb.go
package storage

import (
	"context"
	"fmt"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/query"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/skalibog/mtfsignal/internal/config"
	"github.com/skalibog/mtfsignal/pkg/models"
)

// signalsMeasurement измерение для сигналов
const signalsMeasurement = "signals"

// InfluxDBStorage реализует интерфейс Storage с использованием InfluxDB
type InfluxDBStorage struct {
	client   influxdb2.Client
	queryAPI api.QueryAPI
	writeAPI api.WriteAPIBlocking
	org      string
	bucket   string
}

// NewInfluxDBStorage создает новое хранилище InfluxDB
func NewInfluxDBStorage(ctx context.Context, cfg config.StorageConfig) (*InfluxDBStorage, error) {
	client := influxdb2.NewClient(cfg.URL, cfg.Token)

	// Проверка соединения
	health, err := client.Health(ctx)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("ошибка соединения с InfluxDB: %w", err)
	}
	if health == nil || health.Status != "pass" {
		client.Close()
		return nil, fmt.Errorf("InfluxDB не в состоянии 'pass': %+v", health)
	}

	return &InfluxDBStorage{
		client:   client,
		queryAPI: client.QueryAPI(cfg.Organization),
		writeAPI: client.WriteAPIBlocking(cfg.Organization, cfg.Bucket),
		org:      cfg.Organization,
		bucket:   cfg.Bucket,
	}, nil
}

// Close закрывает соединение с базой данных
func (s *InfluxDBStorage) Close() {
	s.client.Close()
}

// SaveSignal сохраняет сигнал
func (s *InfluxDBStorage) SaveSignal(ctx context.Context, signal *models.Signal) error {
	if err := s.writeAPI.WritePoint(ctx, signalPoint(signal)); err != nil {
		return fmt.Errorf("ошибка записи сигнала %s: %w", signal.Symbol, err)
	}
	return nil
}

// GetSignalHistory получает историю сигналов, новые первыми
func (s *InfluxDBStorage) GetSignalHistory(ctx context.Context, symbol string, limit int) ([]*models.Signal, error) {
	result, err := s.queryAPI.Query(ctx, historyQuery(s.bucket, symbol, limit))
	if err != nil {
		return nil, fmt.Errorf("ошибка запроса истории сигналов: %w", err)
	}
	defer result.Close()

	signals := []*models.Signal{}
	for result.Next() {
		signals = append(signals, signalFromRecord(symbol, result.Record()))
	}

	if result.Err() != nil {
		return nil, fmt.Errorf("ошибка при обработке результатов: %w", result.Err())
	}

	return signals, nil
}

// signalPoint: символ и направление - теги, остальное - поля
func signalPoint(signal *models.Signal) *write.Point {
	return influxdb2.NewPoint(
		signalsMeasurement,
		map[string]string{
			"symbol":    signal.Symbol,
			"direction": string(signal.Direction),
		},
		map[string]interface{}{
			"id":                  signal.ID,
			"price":               signal.Price,
			"bias":                signal.Bias,
			"confidence":          signal.Confidence,
			"entry":               signal.Entry,
			"sl":                  signal.SL,
			"tp":                  signal.TP,
			"rr":                  signal.RR,
			"reference_timeframe": signal.ReferenceTimeframe,
		},
		signal.Timestamp,
	)
}

func historyQuery(bucket, symbol string, limit int) string {
	return fmt.Sprintf(`
		from(bucket: "%s")
			|> range(start: -30d)
			|> filter(fn: (r) => r._measurement == "%s")
			|> filter(fn: (r) => r.symbol == "%s")
			|> pivot(rowKey:["_time"], columnKey: ["_field"], valueColumn: "_value")
			|> group()
			|> sort(columns: ["_time"], desc: true)
			|> limit(n: %d)
	`, bucket, signalsMeasurement, symbol, limit)
}

func signalFromRecord(symbol string, record *query.FluxRecord) *models.Signal {
	id, _ := record.ValueByKey("id").(string)
	direction, _ := record.ValueByKey("direction").(string)
	price, _ := record.ValueByKey("price").(float64)
	bias, _ := record.ValueByKey("bias").(float64)
	confidence, _ := record.ValueByKey("confidence").(int64)
	entry, _ := record.ValueByKey("entry").(float64)
	sl, _ := record.ValueByKey("sl").(float64)
	tp, _ := record.ValueByKey("tp").(float64)
	rr, _ := record.ValueByKey("rr").(float64)
	reference, _ := record.ValueByKey("reference_timeframe").(string)

	return &models.Signal{
		ID:                 id,
		Symbol:             symbol,
		Timestamp:          record.Time(),
		Price:              price,
		Direction:          models.Direction(direction),
		Bias:               bias,
		Confidence:         int(confidence),
		Entry:              entry,
		SL:                 sl,
		TP:                 tp,
		RR:                 rr,
		ReferenceTimeframe: reference,
	}
}
