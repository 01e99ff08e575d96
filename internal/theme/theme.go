// Package theme keeps the light/dark flag, persists it, and tells subscribers
// when the presentation layer has to switch its dark-mode marker.
package theme

import (
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/mattn/go-isatty"

	"todoapp/internal/storage"
)

// StorageKey is the KV key the flag is saved under, as "true" or "false".
const StorageKey = "lightTheme"

// Preference reports the ambient color scheme. ok is false when it cannot be
// determined.
type Preference func() (light, ok bool)

// TerminalPreference asks the terminal for its background color. It only
// answers when stdout is a terminal.
func TerminalPreference() (light, ok bool) {
	fd := os.Stdout.Fd()
	if !isatty.IsTerminal(fd) && !isatty.IsCygwinTerminal(fd) {
		return false, false
	}
	return !lipgloss.HasDarkBackground(), true
}

// Mode is the configured override: "system" defers to the stored flag and the
// terminal, "light" and "dark" replace the terminal answer.
type Mode string

const (
	ModeSystem Mode = "system"
	ModeLight  Mode = "light"
	ModeDark   Mode = "dark"
)

func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return ModeSystem, nil
	case ModeSystem, ModeLight, ModeDark:
		return m, nil
	}
	return ModeSystem, fmt.Errorf("unknown theme %q", s)
}

type Controller struct {
	mu     sync.Mutex
	kv     storage.KV
	log    *log.Logger
	prefer Preference
	light  bool

	subMu   sync.Mutex
	subs    []subscriber
	nextSub int
}

type subscriber struct {
	id int
	fn func(light bool)
}

type Option func(*Controller)

func WithLogger(l *log.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.log = l
		}
	}
}

func WithPreference(p Preference) Option {
	return func(c *Controller) {
		if p != nil {
			c.prefer = p
		}
	}
}

// WithMode applies a configured override in front of the terminal preference.
func WithMode(m Mode) Option {
	return func(c *Controller) {
		switch m {
		case ModeLight:
			c.prefer = func() (bool, bool) { return true, true }
		case ModeDark:
			c.prefer = func() (bool, bool) { return false, true }
		}
	}
}

func New(kv storage.KV, opts ...Option) *Controller {
	c := &Controller{
		kv:     kv,
		log:    log.New(io.Discard),
		prefer: TerminalPreference,
		light:  true,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Initialize resolves the flag: stored value, then the ambient preference,
// then light.
func (c *Controller) Initialize() bool {
	c.mu.Lock()
	c.light = c.resolveLocked()
	light := c.light
	c.mu.Unlock()
	c.notify(light)
	return light
}

func (c *Controller) resolveLocked() bool {
	data, found, err := c.kv.Load(StorageKey)
	if err != nil {
		c.log.Warn("load theme failed", "err", err)
	}
	if found {
		if v, err := strconv.ParseBool(strings.TrimSpace(string(data))); err == nil {
			return v
		}
		c.log.Warn("ignoring stored theme", "value", string(data))
	}
	if light, ok := c.prefer(); ok {
		return light
	}
	return true
}

func (c *Controller) Light() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.light
}

func (c *Controller) SetLight() { c.set(true) }

func (c *Controller) SetDark() { c.set(false) }

func (c *Controller) Toggle() {
	c.set(!c.Light())
}

func (c *Controller) set(light bool) {
	c.mu.Lock()
	c.light = light
	if err := c.kv.Save(StorageKey, []byte(strconv.FormatBool(light))); err != nil {
		c.log.Error("save theme", "err", err)
	}
	c.mu.Unlock()
	c.log.Debug("theme changed", "light", light)
	c.notify(light)
}

// Subscribe registers fn to receive the flag after Initialize and every change.
func (c *Controller) Subscribe(fn func(light bool)) (unsubscribe func()) {
	c.subMu.Lock()
	defer c.subMu.Unlock()
	id := c.nextSub
	c.nextSub++
	c.subs = append(c.subs, subscriber{id: id, fn: fn})
	return func() {
		c.subMu.Lock()
		defer c.subMu.Unlock()
		c.subs = slices.DeleteFunc(c.subs, func(sub subscriber) bool { return sub.id == id })
	}
}

func (c *Controller) notify(light bool) {
	c.subMu.Lock()
	subs := slices.Clone(c.subs)
	c.subMu.Unlock()
	for _, sub := range subs {
		sub.fn(light)
	}
}
