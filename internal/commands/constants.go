package commands

// Common constants used across command implementations
const (
	// Command usage patterns
	OptionsUsage = "[OPTIONS]"

	// Configuration file names
	ConfigFileName = ".pre-commit-config.yaml"
)
