// Package config provides configuration management for tagpool registries.
//
// # Key Features
//
// - RegistryConfig: the ordered list of pools a session starts with, plus
// logging, metrics and tracing sections
// - YAML files with ${VAR_NAME} environment substitution
// - Viper overrides from TAGPOOL_* environment variables and CLI flags
// - Defaults and validation
//
// # Usage
//
//	cfg, err := config.LoadRegistryConfig("pools.yaml")
//	if err != nil {
//		log.Fatal(err)
//	}
//
// # Example File
//
//	name: arena
//	pools:
//	  - tag: bullet
//	    prototype: Bullet
//	    prewarm: 32
//	  - tag: explosion
//	    prototype: Explosion
//	logging:
//	  level: ${LOG_LEVEL}
//
// Pool order is significant: it is the order pools are created in and the
// order prototype lookups scan.
package config
