// Package consciousness is the bridge's built-in decision source: a roster of
// agents, each with a mood and a bounded memory.
package consciousness

import (
	"go.uber.org/zap"

	"github.com/auranova/uebridge/internal/model/agent"
)

type Config struct {
	MemoryLimit int
}

// Snapshot is the externally visible state of one agent.
type Snapshot struct {
	Profile agent.Profile `json:"profile"`
	Mood    string        `json:"mood"`
	Memory  []Record      `json:"memory"`
}

// Collective owns one Agent per profile in the store.
type Collective struct {
	agents map[string]*Agent
	names  []string
	log    *zap.Logger
}

// NewCollective builds agents for every profile. mind may be nil, in which
// case agents decide and speak from their mood alone.
func NewCollective(store agent.Store, mind Mind, cfg Config, logger *zap.Logger) *Collective {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Collective{
		agents: make(map[string]*Agent),
		log:    logger,
	}
	for _, profile := range store.List() {
		if profile.Name == "" {
			continue
		}
		if _, dup := c.agents[profile.Name]; !dup {
			c.names = append(c.names, profile.Name)
		}
		c.agents[profile.Name] = newAgent(profile, mind, cfg.MemoryLimit, logger)
	}
	logger.Info("collective ready", zap.Strings("agents", c.names), zap.Bool("mind", mind != nil))
	return c
}

// Agent looks up an agent by exact name.
func (c *Collective) Agent(name string) (*Agent, bool) {
	a, ok := c.agents[name]
	return a, ok
}

// Names lists agents in roster order.
func (c *Collective) Names() []string {
	return append([]string(nil), c.names...)
}

// Snapshot reports an agent's mood and its most recent memory.
func (c *Collective) Snapshot(name string, recent int) (Snapshot, bool) {
	a, ok := c.agents[name]
	if !ok {
		return Snapshot{}, false
	}
	return Snapshot{
		Profile: a.Profile(),
		Mood:    a.CurrentMood(),
		Memory:  a.Memory().Recent(recent),
	}, true
}
