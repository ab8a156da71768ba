// Package config provides centralized configuration management for revpulse.
// It handles loading configuration from multiple sources, validation, and provides
// a type-safe API for accessing configuration values throughout the application.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//	1. Environment variables (highest priority), including a local .env file
//	2. A YAML configuration file
//	3. Default values (lowest priority)
//
// # Environment Variables
//
// All environment variables follow the pattern REVPULSE_* for namespacing:
//
//	REVPULSE_SOURCES_MODE=scan
//	REVPULSE_SOURCES_SCAN_DIR=/srv/exports
//	REVPULSE_SOURCES_LOCATION_ALIASES=berko:Berkhamsted,ayles:Aylesbury
//	REVPULSE_SERVER_PORT=8080
//	REVPULSE_LOGGING_LEVEL=debug
//
// Static sources can only be declared in the YAML file:
//
//	sources:
//	  mode: static
//	  static:
//	    - location: Berkhamsted
//	      period: June
//	      file: exports/berko-june.csv
//	    - location: Aylesbury
//	      period: June
//	      text: |
//	        Date,Item,Quantity Sold,Amount Inc Tax
//	        02/06/2025,PT Session,2,90.00
//
// # Usage
//
//	cfg, err := config.Load("")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// # Testing
//
// Use config.Default() for a configuration that needs no environment or files.
package config
