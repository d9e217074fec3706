package config

// NegotiationConfig controls the evaluation step of the negotiation loop.
type NegotiationConfig struct {
	// PerturbationNil bounds the random adjustment applied to each
	// evaluation. Use Perturbation() to access. When nil, defaults to 5;
	// zero makes evaluation deterministic.
	PerturbationNil *int `json:"perturbation,omitempty" yaml:"perturbation,omitempty" mapstructure:"perturbation"`
}

func (c *NegotiationConfig) Perturbation() int {
	if c.PerturbationNil == nil {
		return 5
	}
	return max(0, *c.PerturbationNil)
}

func DefaultNegotiationConfig() NegotiationConfig {
	bound := 5
	return NegotiationConfig{PerturbationNil: &bound}
}

func (c *NegotiationConfig) Merge(source *NegotiationConfig) {
	if source.PerturbationNil != nil {
		c.PerturbationNil = source.PerturbationNil
	}
}
