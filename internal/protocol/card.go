package protocol

// Skill describes one capability a worker exposes for discovery.
type Skill struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// CapabilityCard is the static descriptor document an agent publishes so
// other agents can discover what it exposes.
type CapabilityCard struct {
	Name     string  `json:"name"`
	Protocol string  `json:"protocol"`
	Version  string  `json:"version"`
	Skills   []Skill `json:"skills"`
}

// BuildCapabilityCard assembles a capability card for an agent. Pure
// function, no side effects.
func BuildCapabilityCard(agentName string, skills []Skill) CapabilityCard {
	card := CapabilityCard{
		Name:     agentName,
		Protocol: "jsonrpc-" + JSONRPCVersion,
		Version:  "1.0",
		Skills:   make([]Skill, len(skills)),
	}
	copy(card.Skills, skills)
	return card
}
