package loop

import (
	"context"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"
)

// Task runs off the event loop and returns a completion that is applied back
// on it. A nil completion is allowed.
type Task func(ctx context.Context) func()

// CompletedMsg carries a finished task back to the bubbletea program.
type CompletedMsg struct {
	apply func()
}

// Loop queues asynchronous work on behalf of components that are owned by a
// single event loop. Tasks run on their own goroutines; completions only run
// where the owner calls Apply or RunUntilIdle.
type Loop struct {
	ctx    context.Context
	cancel context.CancelFunc
	limit  int

	mu      sync.Mutex
	pending []Task
}

// New returns a loop whose tasks are cancelled once ctx is done or Close is
// called. limit caps concurrent tasks in RunUntilIdle; zero means no cap.
func New(ctx context.Context, limit int) *Loop {
	ctx, cancel := context.WithCancel(ctx)
	return &Loop{ctx: ctx, cancel: cancel, limit: limit}
}

// Go queues task. It does not start until the owner drains the queue.
func (l *Loop) Go(task Task) {
	if l == nil || task == nil {
		return
	}
	l.mu.Lock()
	l.pending = append(l.pending, task)
	l.mu.Unlock()
}

// Pending reports the number of queued tasks.
func (l *Loop) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.pending)
}

func (l *Loop) drain() []Task {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.pending) == 0 {
		return nil
	}
	tasks := l.pending
	l.pending = nil
	return tasks
}

// Cmd turns the queued tasks into a batch of bubbletea commands. Each command
// yields a CompletedMsg which the model hands to Apply.
func (l *Loop) Cmd() tea.Cmd {
	if l == nil {
		return nil
	}
	tasks := l.drain()
	if len(tasks) == 0 {
		return nil
	}

	cmds := make([]tea.Cmd, 0, len(tasks))
	for _, task := range tasks {
		task := task
		cmds = append(cmds, func() tea.Msg {
			return CompletedMsg{apply: task(l.ctx)}
		})
	}
	return tea.Batch(cmds...)
}

// Apply runs the completion carried by msg. It must be called from the
// goroutine that owns the loop's components.
func (l *Loop) Apply(msg CompletedMsg) {
	if msg.apply != nil {
		msg.apply()
	}
}

// RunUntilIdle runs queued tasks, applies their completions on the calling
// goroutine in the order they finish, and repeats until no work is left.
// Completions may queue further tasks.
func (l *Loop) RunUntilIdle(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		tasks := l.drain()
		if len(tasks) == 0 {
			return nil
		}

		runCtx, cancel := context.WithCancel(ctx)
		stop := context.AfterFunc(l.ctx, cancel)

		completions := make(chan func(), len(tasks))
		g, gctx := errgroup.WithContext(runCtx)
		if l.limit > 0 {
			g.SetLimit(l.limit)
		}
		go func() {
			for _, task := range tasks {
				task := task
				g.Go(func() error {
					completions <- task(gctx)
					return nil
				})
			}
			_ = g.Wait()
			close(completions)
		}()

		for apply := range completions {
			if apply != nil {
				apply()
			}
		}
		stop()
		cancel()
	}
}

// Close cancels running tasks and drops queued ones.
func (l *Loop) Close() {
	if l == nil {
		return
	}
	l.cancel()
	l.mu.Lock()
	l.pending = nil
	l.mu.Unlock()
}
