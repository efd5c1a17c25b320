package config

// Config is the top-level configuration file structure.
type Config struct {
	Version   string     `yaml:"version" toml:"version"`
	Topology  string     `yaml:"topology" toml:"topology"`   // NTF-like link list
	Multicast string     `yaml:"multicast" toml:"multicast"` // optional group declarations
	OutputDir string     `yaml:"output_dir" toml:"output_dir"`
	IPv4      bool       `yaml:"ipv4" toml:"ipv4"`
	Engine    EngineConf `yaml:"engine" toml:"engine"`
}

// EngineConf holds the route computation settings.
type EngineConf struct {
	Workers    int    `yaml:"workers" toml:"workers"`
	QueueDepth int    `yaml:"queue_depth" toml:"queue_depth"`
	TimeoutMs  int    `yaml:"timeout_ms" toml:"timeout_ms"`
	MaxNodes   int    `yaml:"max_nodes" toml:"max_nodes"`
	ECMPPolicy string `yaml:"ecmp_policy" toml:"ecmp_policy"` // "all" or "lowest"
}

// ApplyDefaults fills zero values with the defaults.
func (c *Config) ApplyDefaults() {
	if c.Engine.Workers == 0 {
		c.Engine.Workers = 8
	}
	if c.Engine.QueueDepth == 0 {
		c.Engine.QueueDepth = 1024
	}
	if c.Engine.TimeoutMs == 0 {
		c.Engine.TimeoutMs = 30000
	}
	if c.Engine.MaxNodes == 0 {
		c.Engine.MaxNodes = 10000
	}
	if c.Engine.ECMPPolicy == "" {
		c.Engine.ECMPPolicy = "lowest"
	}
}
