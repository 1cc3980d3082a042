// Package cmd provides the run subcommand and the kong/context plumbing
// shared by the ctrlfn CLI.
package cmd

// ConfigIdentifier is the kong variable identifier containing the path to the
// optional YAML configuration file.
var ConfigIdentifier = "config"
