// Command cabcfg validates and inspects a cabinet device configuration.
//
//	cabcfg [-config path] [-env path] <validate|show|pins|header|check [-probe]>
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	config "gitlab.com/smartcabinet/cab.device_config/src/production/CAB.Config"
	firmware "gitlab.com/smartcabinet/cab.device_config/src/production/CAB.Firmware"
	logger "gitlab.com/smartcabinet/cab.device_config/src/production/CAB.Logger"
	messaging "gitlab.com/smartcabinet/cab.device_config/src/production/CAB.Messaging"
)

const usage = `usage: cabcfg [-config path] [-env path] <command>

commands:
  validate           load and validate the configuration
  show               print the redacted configuration as JSON
  pins               print the camera pin table
  header [-o file]   render the firmware config.h
  check [-probe]     validate and optionally connect to the broker
`

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr, os.LookupEnv))
}

type app struct {
	stdout io.Writer
	stderr io.Writer
	opts   config.LoadOptions
}

func run(args []string, stdout, stderr io.Writer, lookup func(string) (string, bool)) int {
	fs := flag.NewFlagSet("cabcfg", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { fmt.Fprint(stderr, usage) }
	configFile := fs.String("config", "", "YAML device configuration file")
	envFile := fs.String("env", "", "env file to load first")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return 2
	}

	a := &app{
		stdout: stdout,
		stderr: stderr,
		opts:   config.LoadOptions{ConfigFile: *configFile, EnvFile: *envFile, LookupEnv: lookup},
	}

	cmd, rest := fs.Arg(0), fs.Args()[1:]
	switch cmd {
	case "validate":
		return a.validate()
	case "show":
		return a.show()
	case "pins":
		return a.pins()
	case "header":
		return a.header(rest)
	case "check":
		return a.check(rest)
	default:
		fmt.Fprintf(stderr, "unknown command %q\n\n", cmd)
		fs.Usage()
		return 2
	}
}

// load prints every configuration problem and returns nil on failure
func (a *app) load() *config.Config {
	cfg, err := config.Load(a.opts)
	if err == nil {
		return cfg
	}

	problems := config.ConfigurationErrors(err)
	if len(problems) == 0 {
		fmt.Fprintln(a.stderr, err)
		return nil
	}
	fmt.Fprintf(a.stderr, "configuration is invalid (%d problems):\n", len(problems))
	for _, p := range problems {
		fmt.Fprintf(a.stderr, "  - %s\n", p)
	}
	return nil
}

func (a *app) warnPlaceholders(cfg *config.Config) {
	for _, field := range cfg.Placeholders() {
		fmt.Fprintf(a.stderr, "warning: %s still holds the example value\n", field)
	}
}

func (a *app) validate() int {
	cfg := a.load()
	if cfg == nil {
		return 1
	}
	a.warnPlaceholders(cfg)
	a.reportValid(cfg)
	return 0
}

func (a *app) reportValid(cfg *config.Config) {
	fmt.Fprintf(a.stdout, "configuration valid: cabinet %s, %s broker %s\n",
		cfg.CabinetID(), cfg.Broker().Kind(), cfg.BrokerEndpoint().Address())
}

func (a *app) show() int {
	cfg := a.load()
	if cfg == nil {
		return 1
	}
	enc := json.NewEncoder(a.stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(cfg.Summary()); err != nil {
		fmt.Fprintln(a.stderr, err)
		return 1
	}
	return 0
}

func (a *app) pins() int {
	cfg := a.load()
	if cfg == nil {
		return 1
	}
	tw := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ROLE\tDEFINE\tGPIO")
	for _, e := range cfg.Pins().Entries() {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", e.Role, e.Role.Define(), e.GPIO)
	}
	if err := tw.Flush(); err != nil {
		fmt.Fprintln(a.stderr, err)
		return 1
	}
	return 0
}

func (a *app) header(args []string) int {
	fs := flag.NewFlagSet("header", flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	out := fs.String("o", "", "write to file instead of stdout")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	cfg := a.load()
	if cfg == nil {
		return 1
	}
	a.warnPlaceholders(cfg)

	if *out != "" {
		if err := writeHeaderFile(*out, cfg); err != nil {
			fmt.Fprintln(a.stderr, err)
			return 1
		}
		return 0
	}

	if err := firmware.RenderHeader(a.stdout, cfg); err != nil {
		fmt.Fprintln(a.stderr, err)
		return 1
	}
	return 0
}

var createFile = func(path string) (io.WriteCloser, error) {
	return os.Create(path)
}

// writeHeaderFile renders config.h to path; a failed close is reported since it may lose the tail of the file
func writeHeaderFile(path string, cfg *config.Config) (err error) {
	f, err := createFile(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to write %s: %w", path, cerr)
		}
	}()
	return firmware.RenderHeader(f, cfg)
}

func (a *app) check(args []string) int {
	fs := flag.NewFlagSet("check", flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	probe := fs.Bool("probe", false, "connect to the configured broker")
	timeout := fs.Duration("timeout", 10*time.Second, "probe timeout")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	cfg := a.load()
	if cfg == nil {
		return 1
	}
	a.warnPlaceholders(cfg)
	a.reportValid(cfg)
	if !*probe {
		return 0
	}

	log := logger.New(a.stderr, cfg.Logging()).WithComponent("probe")

	opts := messaging.DefaultOptions()
	opts.ConnectTimeout = *timeout
	opts.Will = false

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	if err := messaging.Probe(ctx, cfg, opts, log); err != nil {
		fmt.Fprintf(a.stderr, "broker check failed: %v\n", err)
		return 1
	}
	fmt.Fprintf(a.stdout, "broker %s reachable\n", messaging.BrokerURL(cfg.BrokerEndpoint(), cfg.Broker().UsesTLS()))
	return 0
}
