package ingestion

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"ingestion-service/internal/domain"

	"go.uber.org/zap"
)

// outcome é o resultado terminal de um worker em segundo plano.
type outcome struct {
	result *domain.IngestResult
	err    error
}

// worker é o contexto de execução isolado de uma única chamada de
// ingestão: uma goroutine dedicada, um canal de progresso e um canal de
// resultado. Pertence exclusivamente à chamada que o criou e nunca é
// reaproveitado depois de um término, para que estado cancelado ou
// expirado não vaze para uma execução seguinte.
type worker struct {
	events chan ProgressEvent
	done   chan outcome
	cancel context.CancelFunc
	once   sync.Once
}

func newWorker() (*worker, context.Context) {
	// contexto próprio, desacoplado do chamador: o orquestrador observa o
	// contexto do chamador e decide quando derrubar o worker
	ctx, cancel := context.WithCancel(context.Background())
	return &worker{
		events: make(chan ProgressEvent, 16),
		done:   make(chan outcome, 1),
		cancel: cancel,
	}, ctx
}

// emit publica um evento de progresso sem bloquear; com o consumidor
// lento, eventos intermediários são coalescidos.
func (w *worker) emit(ev ProgressEvent) {
	select {
	case w.events <- ev:
	default:
	}
}

// teardown derruba o contexto do worker; idempotente.
func (w *worker) teardown() {
	w.once.Do(w.cancel)
}

// run executa o pipeline dentro da goroutine do worker. Um pânico na
// computação vira um erro de execução comum, elegível para fallback.
func (w *worker) run(ctx context.Context, s *service, data []byte, operationDate string) {
	defer func() {
		if r := recover(); r != nil {
			w.done <- outcome{err: fmt.Errorf("falha interna no processamento em segundo plano: %v", r)}
		}
	}()

	result, err := s.runPipeline(ctx, data, operationDate, w.emit)
	w.done <- outcome{result: result, err: err}
}

// runBackground despacha o pipeline para um worker isolado e aguarda
// exatamente um vencedor entre resultado, cancelamento do chamador e tempo
// limite. Em qualquer transição terminal o worker é derrubado antes do
// retorno.
func (s *service) runBackground(ctx context.Context, data []byte, operationDate string, opts Options) (*domain.IngestResult, error) {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = s.cfg.Timeout
	}

	w, wctx := newWorker()
	defer w.teardown()

	go w.run(wctx, s, data, operationDate)

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		select {
		case ev := <-w.events:
			if opts.OnProgress != nil {
				opts.OnProgress(ev)
			}

		case out := <-w.done:
			if out.err != nil {
				return nil, out.err
			}
			// entrega os eventos finais ainda enfileirados antes de retornar
			for {
				select {
				case ev := <-w.events:
					if opts.OnProgress != nil {
						opts.OnProgress(ev)
					}
				default:
					return out.result, nil
				}
			}

		case <-ctx.Done():
			s.log.Info("ingestão cancelada, derrubando worker")
			w.teardown()
			return nil, domain.ErrCancelled

		case <-timer.C:
			s.log.Warn("tempo limite da ingestão em segundo plano", zap.Duration("timeout", timeout))
			w.teardown()
			return nil, fmt.Errorf("%w (%s)", domain.ErrTimeout, timeout)
		}
	}
}

func isCancelled(err error) bool {
	return errors.Is(err, domain.ErrCancelled)
}
