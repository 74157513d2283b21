package config_test

import (
	"fmt"

	"github.com/ajitpratap0/tagpool/pkg/config"
)

// ExampleNewRegistryConfig demonstrates building a configuration in code.
func ExampleNewRegistryConfig() {
	cfg := config.NewRegistryConfig("arena").
		AddPool("bullet", "Bullet", 32).
		AddPool("explosion", "Explosion", 0)

	if err := cfg.Validate(); err != nil {
		fmt.Println(err)
		return
	}

	for _, p := range cfg.Pools {
		fmt.Printf("%s <- %s (%d)\n", p.Tag, p.Prototype, p.Prewarm)
	}
	fmt.Println("log level:", cfg.Logging.Level)

	// Output:
	// bullet <- Bullet (32)
	// explosion <- Explosion (0)
	// log level: info
}

// ExampleParse shows decoding YAML into the defaults.
func ExampleParse() {
	cfg := config.NewRegistryConfig("default")
	err := config.Parse([]byte("name: arena\npools:\n  - tag: spark\n"), cfg)
	if err != nil {
		fmt.Println(err)
		return
	}

	fmt.Println(cfg.Name, cfg.Pools[0].Tag, cfg.Pools[0].PrototypeName())

	// Output:
	// arena spark spark
}
