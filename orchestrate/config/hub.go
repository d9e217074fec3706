package config

// HubConfig configures the run output hub.
type HubConfig struct {
	// Name identifies the hub in observer events
	Name string `json:"name" yaml:"name" mapstructure:"name"`

	// ChannelBufferSize is the per-subscriber message buffer
	ChannelBufferSize int `json:"channel_buffer_size" yaml:"channel_buffer_size" mapstructure:"channel_buffer_size"`
}

// DefaultHubConfig returns a hub with a 64 message buffer per subscriber.
func DefaultHubConfig() HubConfig {
	return HubConfig{
		Name:              "outputs",
		ChannelBufferSize: 64,
	}
}

func (c *HubConfig) Merge(source *HubConfig) {
	if source.Name != "" {
		c.Name = source.Name
	}

	if source.ChannelBufferSize > 0 {
		c.ChannelBufferSize = source.ChannelBufferSize
	}
}
