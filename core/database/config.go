package database

import coreconfig "github.com/relaydesk/relaybot/core/config"

// Config is the database section of the application configuration. The
// struct itself lives in core/config so this package can depend on
// core/logger without creating an import cycle.
type Config = coreconfig.DatabaseConfig
