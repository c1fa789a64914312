// Package config provides configuration loading for the datacli tools.
//
// # Configuration Sources
//
// Configuration is assembled from the following sources, later ones winning:
//
//	1. Default values (Default)
//	2. A YAML file (explicit path, DATACLI_CONFIG_FILE, or ./config.yaml)
//	3. Environment variables
//	4. Command-line flags (applied by the commands themselves)
//
// # Environment Variables
//
// Variables follow the pattern DATACLI_<SECTION>_<FIELD>:
//
//	DATACLI_LOGGING_LEVEL=debug
//	DATACLI_PIPELINE_MODE=csv
//	DATACLI_PIPELINE_OUTPUT_DIR=/tmp/out
//	DATACLI_PIPELINE_NA_VALUES=NA,-
//	DATACLI_RUNTIME_MAX_RETRIES=5
//
// # Validation
//
// Load validates the result with go-playground/validator struct tags and
// returns an error describing every offending field.
package config
