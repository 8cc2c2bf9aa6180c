package playback

import (
	"errors"
	"fmt"
	"log"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"

	"phimhub/config"
	"phimhub/models"
)

// State of one playback session.
type State string

const (
	StateIdle       State = "idle"
	StateActive     State = "active"
	StateRecovering State = "recovering"
	StateExhausted  State = "exhausted"
	StateEnded      State = "ended"
)

var (
	// ErrSessionNotFound is returned for unknown session IDs.
	ErrSessionNotFound = errors.New("playback session not found")
	// ErrNoPlayableSource is returned when a source carries no link any
	// technology in the chain can present.
	ErrNoPlayableSource = errors.New("source has no playable link")
)

// Snapshot is the externally visible state of a session.
type Snapshot struct {
	ID          string                `json:"id"`
	State       State                 `json:"state"`
	Technology  string                `json:"technology"`
	Source      models.PlaybackSource `json:"source"`
	Position    float64               `json:"positionSeconds"`
	Duration    float64               `json:"durationSeconds"`
	LastError   string                `json:"lastError,omitempty"`
	Transitions []string              `json:"transitions"`
	Teardowns   int                   `json:"teardowns"`
}

type session struct {
	mu sync.Mutex

	id          string
	state       State
	source      models.PlaybackSource
	tech        string
	position    float64
	duration    float64
	lastError   string
	transitions []string
	teardowns   int

	// epoch invalidates in-flight recovery timers when the session is
	// reset or redirected while a recovery is pending.
	epoch int
	timer *time.Timer
}

func (s *session) snapshot() Snapshot {
	transitions := make([]string, len(s.transitions))
	copy(transitions, s.transitions)
	return Snapshot{
		ID:          s.id,
		State:       s.state,
		Technology:  s.tech,
		Source:      s.source,
		Position:    s.position,
		Duration:    s.duration,
		LastError:   s.lastError,
		Transitions: transitions,
		Teardowns:   s.teardowns,
	}
}

// Engine runs the playback state machine for every open session. A fatal
// player error tears the active technology down and walks a fixed fallback
// chain, one step per failure, until a technology holds or the chain runs
// out. Exhausted sessions stay exhausted until an explicit external reset.
type Engine struct {
	chain       []Technology
	manual      []Technology
	defaultTech string
	delay       time.Duration

	mu       sync.Mutex
	sessions map[string]*session
}

// NewEngine builds the engine with the default technology chain.
func NewEngine(cfg config.PlaybackSettings) *Engine {
	delay := time.Duration(cfg.RecoveryDelayMs) * time.Millisecond
	return NewEngineWithChain(DefaultChain(), cfg.DefaultTechnology, delay)
}

// NewEngineWithChain builds the engine over a custom chain.
func NewEngineWithChain(chain []Technology, defaultTech string, delay time.Duration) *Engine {
	e := &Engine{
		chain:    chain,
		manual:   ManualTechnologies(),
		delay:    delay,
		sessions: make(map[string]*session),
	}
	if _, ok := e.lookup(defaultTech); !ok && len(chain) > 0 {
		defaultTech = chain[0].Name()
	}
	e.defaultTech = defaultTech
	return e
}

// lookup finds a technology by name, chain members first, then the
// manual-only players.
func (e *Engine) lookup(name string) (Technology, bool) {
	for _, t := range e.chain {
		if t.Name() == name {
			return t, true
		}
	}
	for _, t := range e.manual {
		if t.Name() == name {
			return t, true
		}
	}
	return nil, false
}

// Start opens a session for the source. preferred names the technology to
// begin with; empty or unknown names fall back to the configured default.
// A manual player preference starts on that player when it can present the
// source; for chain members the session starts on the first chain entry, at
// or after the preferred one, that can present it.
func (e *Engine) Start(source models.PlaybackSource, preferred string) (Snapshot, error) {
	if source.IsZero() {
		return Snapshot{}, ErrNoPlayableSource
	}

	start := preferred
	if _, ok := e.lookup(start); start == "" || !ok {
		start = e.defaultTech
	}

	tech := ""
	if t, ok := e.lookup(start); ok && chainIndex(e.chain, start) < 0 && t.CanPresent(source) {
		tech = start
	} else {
		idx := e.firstPresentable(chainIndex(e.chain, start), source)
		if idx < 0 {
			return Snapshot{}, ErrNoPlayableSource
		}
		tech = e.chain[idx].Name()
	}

	s := &session{
		id:     uuid.NewString(),
		state:  StateActive,
		source: source,
		tech:   tech,
	}
	s.transitions = append(s.transitions, "start:"+s.tech)

	e.mu.Lock()
	e.sessions[s.id] = s
	e.mu.Unlock()

	log.Printf("[playback] session %s started on %s", s.id, s.tech)
	return s.snapshot(), nil
}

// ReportFatal handles a fatal player error. The active technology is torn
// down; the session either enters Recovering (and re-activates on the next
// chain entry after the recovery delay) or, when the failed technology was
// the dead-end or the chain has nothing left that can present the source,
// goes terminal. Fatal reports outside the Active state are ignored.
func (e *Engine) ReportFatal(id, cause string) (Snapshot, error) {
	s, err := e.get(id)
	if err != nil {
		return Snapshot{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateActive {
		return s.snapshot(), nil
	}

	s.lastError = cause
	s.teardowns++
	s.transitions = append(s.transitions, "teardown:"+s.tech)

	// Manual players sit outside the chain (cur == -1), so their failures
	// re-enter the chain at the top.
	cur := chainIndex(e.chain, s.tech)
	if cur >= 0 && e.chain[cur].DeadEnd() {
		s.state = StateExhausted
		s.transitions = append(s.transitions, "exhausted")
		log.Printf("[playback] session %s exhausted on dead-end %s: %s", s.id, s.tech, cause)
		return s.snapshot(), nil
	}

	next := e.firstPresentable(cur+1, s.source)
	if next < 0 {
		s.state = StateExhausted
		s.transitions = append(s.transitions, "exhausted")
		log.Printf("[playback] session %s exhausted, no fallback left: %s", s.id, cause)
		return s.snapshot(), nil
	}

	nextTech := e.chain[next].Name()
	s.state = StateRecovering
	s.epoch++
	epoch := s.epoch
	log.Printf("[playback] session %s failed on %s, recovering to %s: %s", s.id, s.tech, nextTech, cause)

	s.timer = time.AfterFunc(e.delay, func() {
		e.activate(s, epoch, nextTech)
	})
	return s.snapshot(), nil
}

// activate completes a pending recovery. Stale timers (session reset or
// redirected meanwhile) are dropped by the epoch check.
func (e *Engine) activate(s *session, epoch int, tech string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateRecovering || s.epoch != epoch {
		return
	}
	s.transitions = append(s.transitions, s.tech+"->"+tech)
	s.tech = tech
	s.state = StateActive
	log.Printf("[playback] session %s active on %s", s.id, tech)
}

// ReportEnded marks natural end of playback. The session stays addressable
// so a source change can reuse it; reports outside Active are ignored.
func (e *Engine) ReportEnded(id string) (Snapshot, error) {
	s, err := e.get(id)
	if err != nil {
		return Snapshot{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateActive {
		return s.snapshot(), nil
	}
	s.state = StateEnded
	s.transitions = append(s.transitions, "ended")
	return s.snapshot(), nil
}

// ReportProgress records the playhead. Non-finite values coming out of a
// dying player are dropped rather than stored.
func (e *Engine) ReportProgress(id string, position, duration float64) error {
	s, err := e.get(id)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if math.IsNaN(position) || math.IsInf(position, 0) ||
		math.IsNaN(duration) || math.IsInf(duration, 0) {
		return nil
	}
	if s.state != StateActive {
		return nil
	}
	s.position = position
	s.duration = duration
	return nil
}

// SelectTechnology is the explicit user override. It tears the current
// technology down, cancels any pending recovery and re-activates on the
// chosen player, manual ones included. This is one of the two external
// resets that clear an exhausted session; a later fatal continues from the
// selected player's chain position, or from the chain top for manual ones.
func (e *Engine) SelectTechnology(id, name string) (Snapshot, error) {
	s, err := e.get(id)
	if err != nil {
		return Snapshot{}, err
	}

	t, ok := e.lookup(name)

	s.mu.Lock()
	defer s.mu.Unlock()

	if !ok {
		return s.snapshot(), fmt.Errorf("unknown technology %q", name)
	}
	if !t.CanPresent(s.source) {
		return s.snapshot(), fmt.Errorf("technology %q cannot present this source", name)
	}

	s.cancelTimerLocked()
	s.transitions = append(s.transitions, "select:"+name)
	s.tech = name
	s.state = StateActive
	s.lastError = ""
	return s.snapshot(), nil
}

// SetSource swaps the media behind a session and restarts the chain from
// the top. This is the other external reset that clears Exhausted.
func (e *Engine) SetSource(id string, source models.PlaybackSource) (Snapshot, error) {
	s, err := e.get(id)
	if err != nil {
		return Snapshot{}, err
	}
	if source.IsZero() {
		return Snapshot{}, ErrNoPlayableSource
	}

	idx := e.firstPresentable(chainIndex(e.chain, e.defaultTech), source)
	if idx < 0 {
		return Snapshot{}, ErrNoPlayableSource
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.cancelTimerLocked()
	s.source = source
	s.tech = e.chain[idx].Name()
	s.state = StateActive
	s.position = 0
	s.duration = 0
	s.lastError = ""
	s.transitions = append(s.transitions, "source-change:"+s.tech)
	return s.snapshot(), nil
}

// Get returns the current snapshot of a session.
func (e *Engine) Get(id string) (Snapshot, error) {
	s, err := e.get(id)
	if err != nil {
		return Snapshot{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot(), nil
}

// Stop closes and forgets a session.
func (e *Engine) Stop(id string) error {
	e.mu.Lock()
	s, ok := e.sessions[id]
	if ok {
		delete(e.sessions, id)
	}
	e.mu.Unlock()
	if !ok {
		return ErrSessionNotFound
	}

	s.mu.Lock()
	s.cancelTimerLocked()
	s.state = StateIdle
	s.mu.Unlock()
	return nil
}

func (e *Engine) get(id string) (*session, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	s, ok := e.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// firstPresentable returns the first chain index at or after from whose
// technology can present the source.
func (e *Engine) firstPresentable(from int, source models.PlaybackSource) int {
	if from < 0 {
		from = 0
	}
	for i := from; i < len(e.chain); i++ {
		if e.chain[i].CanPresent(source) {
			return i
		}
	}
	return -1
}

func (s *session) cancelTimerLocked() {
	s.epoch++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}
