package memory

import (
	"context"
	"fmt"
	"os"
	"sort"
	"sync"

	"agent-chat-be/internal/entity"
	"agent-chat-be/internal/repository/contract"

	"gopkg.in/yaml.v3"
)

type agentsFile struct {
	Agents []*entity.Agent `yaml:"agents"`
}

// LoadAgents reads agent definitions from a YAML file of the form
//
//	agents:
//	  - key: yoda
//	    shortName: Yoda
//	    ...
func LoadAgents(path string) ([]*entity.Agent, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read agents file: %w", err)
	}
	return ParseAgents(data)
}

func ParseAgents(data []byte) ([]*entity.Agent, error) {
	var file agentsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse agents file: %w", err)
	}

	seen := make(map[string]bool, len(file.Agents))
	for i, a := range file.Agents {
		if a == nil || a.Key == "" {
			return nil, fmt.Errorf("agent #%d has no key", i)
		}
		if a.ShortName == "" || a.Persona == "" || a.ThemeColor == "" {
			return nil, fmt.Errorf("agent %q needs shortName, persona and themeColor", a.Key)
		}
		if seen[a.Key] {
			return nil, fmt.Errorf("duplicate agent key %q", a.Key)
		}
		seen[a.Key] = true
	}
	return file.Agents, nil
}

type AgentRepository struct {
	mu     sync.RWMutex
	agents map[string]*entity.Agent
}

var _ contract.AgentRepository = &AgentRepository{}

func NewAgentRepository(agents []*entity.Agent) *AgentRepository {
	r := &AgentRepository{agents: make(map[string]*entity.Agent, len(agents))}
	for _, a := range agents {
		cp := *a
		r.agents[a.Key] = &cp
	}
	return r
}

func (r *AgentRepository) FindOne(_ context.Context, key string) (*entity.Agent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.agents[key]
	if !ok {
		return nil, nil
	}
	cp := *a
	return &cp, nil
}

func (r *AgentRepository) FindAll(_ context.Context) ([]*entity.Agent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*entity.Agent, 0, len(r.agents))
	for _, a := range r.agents {
		cp := *a
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ShortName < out[j].ShortName })
	return out, nil
}

func (r *AgentRepository) Save(_ context.Context, agent *entity.Agent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cp := *agent
	r.agents[agent.Key] = &cp
	return nil
}
