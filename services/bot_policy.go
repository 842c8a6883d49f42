package services

import (
	"math/rand"
	"slices"
	"sync"
	"time"

	"github.com/wfunc/mafiaserver/game"
)

// BotPolicy 决定机器人的夜间目标和白天投票
type BotPolicy interface {
	NightTarget(role game.Role, candidates []string) string
	VoteTarget(voterID string, candidates []string) string
}

// RandomBotPolicy picks uniformly among the candidates.
type RandomBotPolicy struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewRandomBotPolicy(seed int64) *RandomBotPolicy {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &RandomBotPolicy{rng: rand.New(rand.NewSource(seed))}
}

func (p *RandomBotPolicy) pick(candidates []string) string {
	if len(candidates) == 0 {
		return ""
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return candidates[p.rng.Intn(len(candidates))]
}

func (p *RandomBotPolicy) NightTarget(_ game.Role, candidates []string) string {
	return p.pick(candidates)
}

// VoteTarget never votes for the voter itself.
func (p *RandomBotPolicy) VoteTarget(voterID string, candidates []string) string {
	others := slices.DeleteFunc(slices.Clone(candidates), func(id string) bool { return id == voterID })
	return p.pick(others)
}
