package npc

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"holdem-arcade/holdem"
)

// NPCInstance is a persona seated at a match.
type NPCInstance struct {
	Seat       int
	Name       string
	Persona    *NPCPersona // nil when the roster ran out and a default name was used
	ThinkDelay time.Duration
}

// Lineup is the set of NPCs for one match, indexed by seat.
type Lineup struct {
	Tier   holdem.Tier
	NPCs   []*NPCInstance
	bySeat map[int]*NPCInstance
}

// Names returns the NPC names in seat order, ready for holdem.Config.
func (l *Lineup) Names() []string {
	out := make([]string, 0, len(l.NPCs))
	for _, n := range l.NPCs {
		out = append(out, n.Name)
	}
	return out
}

// ThinkDelay returns the pacing delay for the NPC at seat.
func (l *Lineup) ThinkDelay(seat int) time.Duration {
	if n := l.bySeat[seat]; n != nil {
		return n.ThinkDelay
	}
	return time.Second
}

// Manager builds lineups from the persona registry.
type Manager struct {
	registry *PersonaRegistry
	logger   *log.Logger

	mu  sync.Mutex
	rng *rand.Rand
}

// NewManager creates an NPC manager. seed 0 seeds from the clock.
func NewManager(registry *PersonaRegistry, logger *log.Logger, seed int64) *Manager {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Manager{
		registry: registry,
		logger:   logger.WithPrefix("npc"),
		rng:      rand.New(rand.NewSource(seed)),
	}
}

// Registry returns the underlying PersonaRegistry.
func (m *Manager) Registry() *PersonaRegistry {
	return m.registry
}

// Lineup picks n personas of the given tier for seats 1..n. When the
// roster is short the remaining seats get the default "AI{n} {Tier}" name.
func (m *Manager) Lineup(tier holdem.Tier, n int) (*Lineup, error) {
	if !tier.Valid() {
		return nil, fmt.Errorf("invalid tier %d", tier)
	}
	if n < holdem.MinOpponents || n > holdem.MaxOpponents {
		return nil, fmt.Errorf("opponents must be in [%d,%d], got %d", holdem.MinOpponents, holdem.MaxOpponents, n)
	}

	pool := m.registry.ByTier(tier)

	m.mu.Lock()
	m.rng.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	l := &Lineup{Tier: tier, bySeat: make(map[int]*NPCInstance, n)}
	for i := 0; i < n; i++ {
		inst := &NPCInstance{Seat: i + 1}
		if i < len(pool) {
			p := pool[i]
			inst.Persona = p
			inst.Name = p.Name
			inst.ThinkDelay = p.baseDelay()
			if p.Pace.JitterMs > 0 {
				inst.ThinkDelay += time.Duration(m.rng.Intn(p.Pace.JitterMs)) * time.Millisecond
			}
		} else {
			inst.Name = fmt.Sprintf("AI%d %s", i+1, tier)
			inst.ThinkDelay = time.Second
		}
		l.NPCs = append(l.NPCs, inst)
		l.bySeat[inst.Seat] = inst
	}
	m.mu.Unlock()

	m.logger.Info("lineup built", "tier", tier, "npcs", l.Names())
	return l, nil
}
