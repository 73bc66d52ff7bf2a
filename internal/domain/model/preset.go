// Package model defines the core domain entities for the embedded daemon.
package model

// Preset identifies a supported disposable container backend.
//
// @Description Container preset name
// @Example "mongodb"
type Preset string

const (
	PresetMongoDB   Preset = "mongodb"
	PresetPostgres  Preset = "postgres"
	PresetRedis     Preset = "redis"
	PresetKafka     Preset = "kafka"
	PresetRabbitMQ  Preset = "rabbitmq"
	PresetVault     Preset = "vault"
	PresetKeycloak  Preset = "keycloak"
	PresetRegistry  Preset = "registry"
	PresetToxiproxy Preset = "toxiproxy"
	PresetMinIO     Preset = "minio"
)

// AllPresets returns every preset the daemon can start, in a stable order.
func AllPresets() []Preset {
	return []Preset{
		PresetMongoDB,
		PresetPostgres,
		PresetRedis,
		PresetKafka,
		PresetRabbitMQ,
		PresetVault,
		PresetKeycloak,
		PresetRegistry,
		PresetToxiproxy,
		PresetMinIO,
	}
}

// Valid reports whether p names a supported preset.
func (p Preset) Valid() bool {
	switch p {
	case PresetMongoDB, PresetPostgres, PresetRedis, PresetKafka, PresetRabbitMQ,
		PresetVault, PresetKeycloak, PresetRegistry, PresetToxiproxy, PresetMinIO:
		return true
	}
	return false
}

// String returns the preset name.
func (p Preset) String() string {
	return string(p)
}
