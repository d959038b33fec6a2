// Package main is a diagnostic tool that loads a node's TLS configuration,
// builds all contexts, and reports the effective setup without serving
// traffic. It exits non-zero on any configuration or credential problem, so
// it doubles as a pre-start check.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/birbalkumarkumar/search-guard-ssl/internal/config"
	"github.com/birbalkumarkumar/search-guard-ssl/internal/observability"
	"github.com/birbalkumarkumar/search-guard-ssl/internal/ssl"
)

// Version information (set at build time).
var (
	version   = "dev"
	gitCommit = "unknown"
)

// cliFlags holds command line flags.
type cliFlags struct {
	configPath  string
	logLevel    string
	logFormat   string
	showVersion bool
}

func main() {
	flags := parseFlags()

	if flags.showVersion {
		fmt.Printf("tlscheck version %s (%s)\n", version, gitCommit)
		return
	}

	logger, err := observability.NewLogger(observability.LogConfig{
		Level:  flags.logLevel,
		Format: flags.logFormat,
		Output: "stderr",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid logging configuration: %v\n", err)
		os.Exit(2)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(flags.configPath, logger); err != nil {
		logger.Error("tls configuration check failed", observability.Error(err))
		os.Exit(1)
	}
}

// parseFlags parses command line flags.
func parseFlags() cliFlags {
	configPath := flag.String("config", getEnvOrDefault("TLSCHECK_CONFIG_PATH", "elasticsearch.yml"),
		"Path to configuration file")
	logLevel := flag.String("log-level", getEnvOrDefault("TLSCHECK_LOG_LEVEL", "info"),
		"Log level (debug, info, warn, error)")
	logFormat := flag.String("log-format", getEnvOrDefault("TLSCHECK_LOG_FORMAT", "console"),
		"Log format (json, console)")
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	return cliFlags{
		configPath:  *configPath,
		logLevel:    *logLevel,
		logFormat:   *logFormat,
		showVersion: *showVersion,
	}
}

func run(configPath string, logger observability.Logger) error {
	settings, err := config.NewFromFile(configPath)
	if err != nil {
		return err
	}

	provisioner, err := ssl.New(settings, ssl.WithLogger(logger))
	if err != nil {
		return err
	}

	report(provisioner, ssl.ListenerTransportServer, provisioner.TransportServerContext())
	report(provisioner, ssl.ListenerTransportClient, provisioner.TransportClientContext())
	report(provisioner, ssl.ListenerHTTP, provisioner.HTTPContext())
	return nil
}

// report prints the effective setup of one listener.
func report(p *ssl.Provisioner, listener ssl.Listener, c *ssl.Context) {
	if c == nil {
		fmt.Printf("%-17s disabled\n", listener)
		return
	}
	fmt.Printf("%-17s backend=%s clientAuth=%s\n", listener, p.ProviderName(listener), c.ClientAuth())
	fmt.Printf("  protocols: %v\n", c.Protocols().Names())
	fmt.Printf("  ciphers:   %s\n", strings.Join(describeCiphers(c.CipherSuites().Names()), ", "))
}

// describeCiphers annotates each negotiated suite with what the registry
// knows about it.
func describeCiphers(names []string) []string {
	out := make([]string, 0, len(names))
	for _, name := range names {
		suite, ok := ssl.LookupCipherSuite(name)
		switch {
		case !ok:
			out = append(out, name+" (unknown)")
		case suite.TLS13:
			out = append(out, name+" (TLSv1.3)")
		default:
			out = append(out, name)
		}
	}
	return out
}

// getEnvOrDefault returns the environment variable value or a default.
func getEnvOrDefault(key, def string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return def
}
