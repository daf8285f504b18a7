package config

// Accepted values for enumerated settings
var (
	ValidLogLevels   = []string{"debug", "info", "warn", "error"}
	ValidLogFormats  = []string{"json", "text"}
	ValidEnvironment = []string{"dev", "staging", "production"}
)

// Example values shipped in .env.example that must not reach production
const (
	ExampleDBPassword = "change_this_secure_password"
)

// Port bounds
const (
	MinPort = 1
	MaxPort = 65535
)
