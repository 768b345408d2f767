// Package keepalive runs the periodic activity loop: a pointer episode
// and/or a modifier tap each cycle, until the context is cancelled.
package keepalive

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/stigoleg/stayactive/internal/logging"
	"github.com/stigoleg/stayactive/internal/motion"
	"github.com/stigoleg/stayactive/internal/platform"
)

// DefaultInterval is the pause between cycles.
const DefaultInterval = 60 * time.Second

// ErrAlreadyRunning is returned by Run when the keeper is active.
var ErrAlreadyRunning = errors.New("keep-alive already running")

// State is the scheduler lifecycle.
type State int

const (
	StateIdle State = iota
	StateRunning
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateStopped:
		return "stopped"
	}
	return "unknown"
}

// Mode selects which actions run each cycle.
type Mode int

const (
	ModeBoth Mode = iota
	ModeMouseOnly
	ModeKeyOnly
)

func (m Mode) String() string {
	switch m {
	case ModeMouseOnly:
		return "mouse only"
	case ModeKeyOnly:
		return "keyboard only"
	}
	return "mouse and keyboard"
}

// Mouse reports whether pointer episodes run.
func (m Mode) Mouse() bool { return m != ModeKeyOnly }

// Keyboard reports whether modifier taps run.
func (m Mode) Keyboard() bool { return m != ModeMouseOnly }

// SimulationHealth summarizes recent action outcomes.
type SimulationHealth int

const (
	SimulationHealthUnknown SimulationHealth = iota
	SimulationHealthOK
	SimulationHealthFailed
)

func (h SimulationHealth) String() string {
	switch h {
	case SimulationHealthOK:
		return "ok"
	case SimulationHealthFailed:
		return "failing"
	}
	return "unknown"
}

// Stats counts what the keeper has done.
type Stats struct {
	Cycles     int
	MouseMoves int
	KeyPresses int
	Failures   int
	// ConsecutiveFailures resets on the next successful action.
	ConsecutiveFailures int
	// Health is Unknown before the first action, then Failed while
	// ConsecutiveFailures is non-zero.
	Health     SimulationHealth
	LastAction time.Time
	NextCycle  time.Time
}

// Config wires a Keeper.
type Config struct {
	Mode     Mode
	Interval time.Duration
	Rand     *rand.Rand
	// Sleep replaces the real-time wait between cycles.
	Sleep  motion.Sleeper
	Logger *log.Logger
	// OnAction is called synchronously after every action.
	OnAction func(Action)
}

// Keeper owns the loop. A Keeper runs at most once.
type Keeper struct {
	backend  platform.Backend
	mover    *motion.Mover
	mode     Mode
	interval time.Duration
	rnd      *rand.Rand
	sleep    motion.Sleeper
	logger   *log.Logger
	onAction func(Action)

	mu    sync.Mutex
	state State
	stats Stats
}

// New creates an idle keeper.
func New(backend platform.Backend, mover *motion.Mover, cfg Config) *Keeper {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.Rand == nil {
		cfg.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if cfg.Sleep == nil {
		cfg.Sleep = motion.Sleep
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Discard()
	}
	return &Keeper{
		backend:  backend,
		mover:    mover,
		mode:     cfg.Mode,
		interval: cfg.Interval,
		rnd:      cfg.Rand,
		sleep:    cfg.Sleep,
		logger:   cfg.Logger,
		onAction: cfg.OnAction,
	}
}

// State returns the lifecycle state.
func (k *Keeper) State() State {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.state
}

// Stats returns a snapshot of the counters.
func (k *Keeper) Stats() Stats {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.stats
}

// Run loops until ctx is cancelled, then returns nil. Failing actions are
// logged and counted; they never end the loop.
func (k *Keeper) Run(ctx context.Context) error {
	k.mu.Lock()
	if k.state != StateIdle {
		k.mu.Unlock()
		return ErrAlreadyRunning
	}
	k.state = StateRunning
	k.mu.Unlock()

	defer func() {
		k.mu.Lock()
		k.state = StateStopped
		k.mu.Unlock()
		k.logger.Info("Keep-alive stopped")
	}()

	k.logger.Info("Keep-alive started", "interval", k.interval, "mode", k.mode, "backend", k.backend.Name())

	if k.mode.Mouse() {
		k.center(ctx)
	}

	for ctx.Err() == nil {
		k.cycle(ctx)
		if ctx.Err() != nil {
			break
		}

		k.mu.Lock()
		k.stats.Cycles++
		k.stats.NextCycle = time.Now().Add(k.interval)
		k.mu.Unlock()

		if err := k.sleep(ctx, k.interval); err != nil {
			break
		}
	}
	return nil
}

func (k *Keeper) center(ctx context.Context) {
	err := k.mover.Center(ctx)
	switch {
	case err == nil:
		k.record(Action{Kind: ActionCenter})
	case errors.Is(err, motion.ErrCenteringUnavailable):
		k.logger.Info("Centering not available on this backend, skipping")
	default:
		k.record(Action{Kind: ActionCenter, Err: err})
	}
}

func (k *Keeper) cycle(ctx context.Context) {
	if k.mode.Mouse() {
		err := k.mover.Episode(ctx)
		if ctx.Err() != nil {
			return
		}
		k.record(Action{Kind: ActionMouse, Err: err})
	}
	if k.mode.Keyboard() {
		key := platform.ModifierKeys[k.rnd.Intn(len(platform.ModifierKeys))]
		err := k.backend.PressModifierKey(key)
		k.record(Action{Kind: ActionKey, Key: key, Err: err})
	}
}

func (k *Keeper) record(a Action) {
	a.Time = time.Now()

	k.mu.Lock()
	k.stats.LastAction = a.Time
	if a.Err != nil {
		k.stats.Failures++
		k.stats.ConsecutiveFailures++
		k.stats.Health = SimulationHealthFailed
	} else {
		k.stats.ConsecutiveFailures = 0
		k.stats.Health = SimulationHealthOK
		switch a.Kind {
		case ActionMouse:
			k.stats.MouseMoves++
		case ActionKey:
			k.stats.KeyPresses++
		}
	}
	k.mu.Unlock()

	if a.Err != nil {
		k.logger.Warn(a.String()+" failed", "err", a.Err)
	} else {
		k.logger.Info(a.String())
	}

	if k.onAction != nil {
		k.onAction(a)
	}
}
