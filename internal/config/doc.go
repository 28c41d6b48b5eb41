// Package config provides configuration parsing for the reactive tools.
//
// The configuration is stored in reactive.json (or reactive.yaml) at the
// project root. This package handles loading, saving, validating and
// converting it into runtime options.
//
// # Configuration File Structure
//
//	{
//	  "runtime": {
//	    "tracking": "rebuild",
//	    "maxDepth": 64,
//	    "logEffectRuns": false
//	  },
//	  "server": {
//	    "host": "localhost",
//	    "port": 8080,
//	    "pingInterval": "30s",
//	    "metricsPath": "/metrics"
//	  },
//	  "snapshot": {
//	    "backend": "s3",
//	    "bucket": "my-bucket",
//	    "prefix": "snapshots/",
//	    "region": "eu-west-1"
//	  },
//	  "log": {
//	    "level": "info",
//	    "format": "json"
//	  }
//	}
//
// # Usage
//
//	cfg, err := config.Load(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	rt := reactive.NewRuntime(cfg.RuntimeOptions()...)
package config
