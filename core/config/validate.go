package config

import (
	pkgError "github.com/Richardson-Media-House/kirbi-discord-antiraid/pkg/error"
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Validate checks the settings every subcommand depends on. The Discord
// token is checked by the bot command itself.
func Validate(cfg *Config) error {
	err := validation.Errors{
		"store.driver":      validation.Validate(cfg.Store.Driver, validation.Required, validation.In(StoreDatabase, StoreValkey)),
		"database.driver":   validation.Validate(cfg.Database.Driver, validation.In("sqlite", "postgres")),
		"database.name":     validation.Validate(cfg.Database.Name, validation.Required),
		"valkey.address":    validation.Validate(cfg.Valkey.Address, validation.When(cfg.Store.Driver == StoreValkey, validation.Required)),
		"worker_pool.size":  validation.Validate(cfg.WorkerPool.Size, validation.Min(1)),
		"worker_pool.queue": validation.Validate(cfg.WorkerPool.QueueSize, validation.Min(1)),
		"monitor.buffer":    validation.Validate(cfg.Monitor.BufferSize, validation.Min(1)),
		"discord.prefix":    validation.Validate(cfg.Discord.CommandPrefix, validation.Required, validation.Length(1, 5)),
	}.Filter()

	if err != nil {
		return pkgError.ValidationError("invalid configuration: " + err.Error())
	}
	return nil
}
