package config

// Application constants
const (
	AppName    = "datacli"
	AppVersion = "1.0.0"

	// EnvPrefix namespaces every environment variable, e.g. DATACLI_PIPELINE_MODE.
	EnvPrefix = "DATACLI"
	// EnvConfigFile names the variable holding an explicit config file path.
	EnvConfigFile = "DATACLI_CONFIG_FILE"

	DefaultConfigFile = "config.yaml"
	DefaultOutputDir  = "./output"
)
