// Package config loads enhance project configuration.
//
// Configuration lives in enhance.json at the project root. Every field can
// be overridden with an ENHANCE_* environment variable, and the command
// line overrides both.
//
// # Configuration File Structure
//
//	{
//	  "name": "my-site",
//	  "server": {"host": "localhost", "port": 8080, "dev": true},
//	  "paths": {"components": "components", "pages": "pages", "static": "public"},
//	  "render": {"maxDepth": 100, "lang": "en"},
//	  "sources": {"s3": {"bucket": "my-components", "prefix": "prod/"}},
//	  "cache": {"driver": "redis", "ttl": "5m", "redisAddr": "localhost:6379"},
//	  "telemetry": {"otlpEndpoint": "localhost:4318", "serviceName": "enhance"},
//	  "log": {"level": "info", "format": "text"}
//	}
//
// # Usage
//
//	cfg, err := config.Load(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Println("Listening on", cfg.Address())
package config
