package ingestion

import (
	"context"
	"time"

	"ingestion-service/internal/domain"

	"go.uber.org/zap"
)

// Defaults do orquestrador; todos ajustáveis via Config.
const (
	// defaultSyncThreshold separa os dois caminhos de execução: abaixo
	// disso o pipeline roda síncrono na goroutine do chamador.
	defaultSyncThreshold = 100 * 1024
	defaultTimeout       = 30 * time.Second
	defaultChunkRows     = 200
)

// Service define a interface do serviço de ingestão de extratos.
type Service interface {
	// Ingest processa os bytes de uma planilha de extrato e devolve o
	// relatório de parsing, os registros normalizados e o índice por
	// centavos. Erros estruturais (colunas obrigatórias ausentes, planilha
	// vazia, bytes ilegíveis) abortam a chamada inteira; erros por linha
	// ficam acumulados no relatório.
	Ingest(ctx context.Context, data []byte, operationDate string, opts Options) (*domain.IngestResult, error)

	// Reindex reconstrói o índice por centavos a partir de registros já
	// persistidos, sem reprocessar a planilha original.
	Reindex(records []domain.TransactionRecord) domain.ValueCentsIndex
}

// Config parametriza o orquestrador.
type Config struct {
	SyncThresholdBytes int
	Timeout            time.Duration
	ChunkRows          int
	DisableFallback    bool
}

// Options ajusta uma chamada individual de ingestão.
type Options struct {
	// Timeout substitui o tempo limite padrão do caminho em segundo plano.
	Timeout time.Duration
	// ForceSync pula a decisão por tamanho e roda tudo na goroutine do
	// chamador.
	ForceSync bool
	// OnProgress recebe eventos (percentual, etapa, mensagem). Entrega em
	// melhor esforço: eventos podem ser coalescidos, nunca fora de ordem.
	OnProgress ProgressFunc
}

type service struct {
	cfg Config
	log *zap.Logger
}

// NewService cria uma nova instância do serviço de ingestão.
func NewService(cfg Config, log *zap.Logger) Service {
	if cfg.SyncThresholdBytes <= 0 {
		cfg.SyncThresholdBytes = defaultSyncThreshold
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.ChunkRows <= 0 {
		cfg.ChunkRows = defaultChunkRows
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &service{cfg: cfg, log: log}
}

func (s *service) Ingest(ctx context.Context, data []byte, operationDate string, opts Options) (*domain.IngestResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, domain.ErrCancelled
	}

	if opts.ForceSync || len(data) < s.cfg.SyncThresholdBytes {
		s.log.Debug("ingestão síncrona", zap.Int("bytes", len(data)))
		return s.runPipeline(ctx, data, operationDate, opts.OnProgress)
	}

	s.log.Debug("ingestão em segundo plano", zap.Int("bytes", len(data)))
	result, err := s.runBackground(ctx, data, operationDate, opts)
	if err == nil {
		return result, nil
	}

	// cancelamento e erros estruturais nunca passam pelo fallback: o
	// primeiro é terminal por definição e o segundo se repetiria sobre os
	// mesmos bytes
	if isCancelled(err) || domain.IsStructural(err) {
		return nil, err
	}
	if s.cfg.DisableFallback {
		return nil, err
	}

	s.log.Warn("fallback síncrono após falha em segundo plano", zap.Error(err))
	result, syncErr := s.runPipeline(ctx, data, operationDate, opts.OnProgress)
	if syncErr != nil {
		if isCancelled(syncErr) || domain.IsStructural(syncErr) {
			return nil, syncErr
		}
		// segunda falha não é tentada de novo; os dois motivos seguem
		// juntos para diagnóstico
		return nil, &domain.FallbackError{Background: err, Sync: syncErr}
	}
	return result, nil
}

func (s *service) Reindex(records []domain.TransactionRecord) domain.ValueCentsIndex {
	return buildIndex(records)
}
