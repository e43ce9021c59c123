// Package utils exposes reusable helpers consumed by multiple commands.
//
// It houses the ConfigurationLoader, LoggerFactory, and command context
// plumbing that integrate Viper, environment variables, and zap logging
// for the albatross CLI.
package utils
