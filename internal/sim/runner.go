package sim

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/annel0/breaknblocks/internal/logging"
)

// ErrStopped возвращается, если цикл уже остановлен
var ErrStopped = errors.New("simulation stopped")

// DefaultFrameInterval - период кадра при 60 кадрах в секунду
const DefaultFrameInterval = time.Second / 60

type request struct {
	ctx   context.Context
	cmd   Command
	reply chan response
}

type response struct {
	res Result
	err error
}

// Runner владеет игрой и крутит её в отдельной горутине.
// Команды применяются в начале кадра, читатели получают последний снимок.
type Runner struct {
	game     *Game
	requests chan request
	interval time.Duration
	snapshot atomic.Pointer[Snapshot]
	done     chan struct{}
	log      *logging.Logger
}

// NewRunner создаёт цикл над игрой. queue задаёт размер очереди команд.
func NewRunner(game *Game, interval time.Duration, queue int) *Runner {
	if interval <= 0 {
		interval = DefaultFrameInterval
	}
	if queue <= 0 {
		queue = 64
	}
	r := &Runner{
		game:     game,
		requests: make(chan request, queue),
		interval: interval,
		done:     make(chan struct{}),
		log:      logging.GetSimLogger(),
	}
	r.snapshot.Store(game.Snapshot())
	return r
}

// Snapshot возвращает последний опубликованный снимок
func (r *Runner) Snapshot() *Snapshot {
	return r.snapshot.Load()
}

// Done закрывается после остановки цикла
func (r *Runner) Done() <-chan struct{} {
	return r.done
}

// Submit ставит команду в очередь и ждёт её применения
func (r *Runner) Submit(ctx context.Context, cmd Command) (Result, error) {
	req := request{ctx: ctx, cmd: cmd, reply: make(chan response, 1)}

	select {
	case r.requests <- req:
	case <-r.done:
		return Result{}, ErrStopped
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}

	select {
	case resp := <-req.reply:
		return resp.res, resp.err
	case <-r.done:
		return Result{}, ErrStopped
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
}

// Run крутит кадры до отмены контекста. Перед выходом сохраняет прогресс.
func (r *Runner) Run(ctx context.Context) error {
	defer close(r.done)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.log.Info("Цикл симуляции запущен, кадр %s", r.interval)
	last := time.Now()

	for {
		select {
		case <-ctx.Done():
			r.drain(ErrStopped)
			saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
			err := r.game.Economy().SaveAll(saveCtx)
			cancel()
			if err != nil {
				r.log.Warn("Финальное сохранение не удалось: %v", err)
			}
			r.log.Info("Цикл симуляции остановлен после %d кадров", r.game.Frames())
			return nil
		case now := <-ticker.C:
			r.applyPending(ctx)
			r.game.Frame(ctx, now.Sub(last).Seconds())
			last = now
			r.snapshot.Store(r.game.Snapshot())
		}
	}
}

// applyPending применяет все команды, накопившиеся к началу кадра
func (r *Runner) applyPending(ctx context.Context) {
	for {
		select {
		case req := <-r.requests:
			if err := req.ctx.Err(); err != nil {
				req.reply <- response{err: err}
				continue
			}
			res, err := r.game.Apply(ctx, req.cmd)
			req.reply <- response{res: res, err: err}
		default:
			return
		}
	}
}

func (r *Runner) drain(err error) {
	for {
		select {
		case req := <-r.requests:
			req.reply <- response{err: err}
		default:
			return
		}
	}
}
