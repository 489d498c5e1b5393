package boss

import (
	"slices"
	"sync"
	"time"
)

// DefaultCooldown is the minimum gap between two dispatched interrupts.
const DefaultCooldown = 4 * time.Second

// TriggerKind selects what a rule watches.
type TriggerKind string

const (
	// TriggerTimeBelow fires once the remaining seconds drop to Threshold or less.
	TriggerTimeBelow TriggerKind = "time_below"
	// TriggerFilesResolved fires once the resolved file count reaches Threshold.
	TriggerFilesResolved TriggerKind = "files_resolved"
	// TriggerMistake fires on every wrong resolution.
	TriggerMistake TriggerKind = "mistake"
)

// Rule is a declarative interrupt trigger.
type Rule struct {
	Kind      TriggerKind `json:"kind" yaml:"kind" mapstructure:"kind"`
	Threshold int         `json:"threshold,omitempty" yaml:"threshold,omitempty" mapstructure:"threshold"`
	Speaker   string      `json:"speaker,omitempty" yaml:"speaker,omitempty" mapstructure:"speaker"`
	Message   string      `json:"message" yaml:"message" mapstructure:"message"`
}

// Snapshot is the encounter state a rule is evaluated against.
type Snapshot struct {
	Remaining     int
	FilesResolved int
	Mistake       bool
}

func (r Rule) matches(s Snapshot) bool {
	switch r.Kind {
	case TriggerTimeBelow:
		return s.Remaining <= r.Threshold
	case TriggerFilesResolved:
		return s.FilesResolved >= r.Threshold
	case TriggerMistake:
		return s.Mistake
	}
	return false
}

// repeatable rules may fire more than once; threshold rules fire a single time.
func (r Rule) repeatable() bool {
	return r.Kind == TriggerMistake
}

// Interrupt is a dispatched narrative interruption.
type Interrupt struct {
	Rule  Rule      `json:"rule"`
	Index int       `json:"index"`
	At    time.Time `json:"at"`
}

// Coordinator evaluates interrupt rules with a global cooldown.
// Only the first qualifying rule per evaluation fires. A threshold rule that is
// suppressed by the cooldown stays armed and can fire on a later evaluation.
// Safe for concurrent use.
type Coordinator struct {
	mu        sync.Mutex
	rules     []Rule
	spent     []bool
	cooldown  time.Duration
	now       func() time.Time
	last      time.Time
	hasFired  bool
	listeners []func(Interrupt)
}

// CoordinatorOption configures a Coordinator.
type CoordinatorOption func(*Coordinator)

// WithCooldown overrides DefaultCooldown.
func WithCooldown(d time.Duration) CoordinatorOption {
	return func(c *Coordinator) {
		c.cooldown = d
	}
}

// WithClock injects the time source used for the cooldown window.
func WithClock(now func() time.Time) CoordinatorOption {
	return func(c *Coordinator) {
		c.now = now
	}
}

// NewCoordinator creates a Coordinator for the given rules (evaluated in order).
func NewCoordinator(rules []Rule, opts ...CoordinatorOption) *Coordinator {
	c := &Coordinator{
		rules:    append([]Rule(nil), rules...),
		spent:    make([]bool, len(rules)),
		cooldown: DefaultCooldown,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// OnInterrupt registers a listener for dispatched interrupts.
func (c *Coordinator) OnInterrupt(fn func(Interrupt)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, fn)
}

// Evaluate checks the rules against s and dispatches at most one interrupt.
func (c *Coordinator) Evaluate(s Snapshot) (Interrupt, bool) {
	c.mu.Lock()
	now := c.now()
	if c.hasFired && now.Sub(c.last) < c.cooldown {
		c.mu.Unlock()
		return Interrupt{}, false
	}

	for i, r := range c.rules {
		if c.spent[i] || !r.matches(s) {
			continue
		}
		if !r.repeatable() {
			c.spent[i] = true
		}
		c.hasFired = true
		c.last = now
		ev := Interrupt{Rule: r, Index: i, At: now}
		listeners := slices.Clone(c.listeners)
		c.mu.Unlock()

		for _, fn := range listeners {
			fn(ev)
		}
		return ev, true
	}
	c.mu.Unlock()
	return Interrupt{}, false
}
