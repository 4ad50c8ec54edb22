// pixcode builds, reads and inspects PIX "copia e cola" payment codes.
//
// Usage:
//
//	pixcode encode --key <key> --name <name> --city <city> [--amount 10.00]
//	pixcode decode [--stdin] [code...]
//	pixcode inspect <code>
//	pixcode classify <key...>
//	pixcode validate <key...>
//	pixcode crc [--verify] <text...>
//	pixcode qr [--file out.png] <code>
//	pixcode scan <image...>
package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/pflag"

	"github.com/nurycaroline/pix/internal/config"
)

// version is set at link time with -ldflags "-X main.version=...".
var version = "dev"

// errUsage means the command line was wrong; usage has been printed.
var errUsage = errors.New("invalid usage")

// env carries the process streams so commands can be run from tests.
type env struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

func main() {
	e := &env{stdin: os.Stdin, stdout: os.Stdout, stderr: os.Stderr}
	if err := run(os.Args[1:], e); err != nil {
		if err != errUsage {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		if errors.Is(err, errUsage) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func run(args []string, e *env) error {
	if len(args) < 1 {
		printUsage(e.stderr)
		return errUsage
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "encode":
		return encodeCmd(rest, e)
	case "decode":
		return decodeCmd(rest, e)
	case "inspect":
		return inspectCmd(rest, e)
	case "classify":
		return classifyCmd(rest, e)
	case "validate":
		return validateCmd(rest, e)
	case "crc":
		return crcCmd(rest, e)
	case "qr":
		return qrCmd(rest, e)
	case "scan":
		return scanCmd(rest, e)
	case "version", "--version", "-v":
		fmt.Fprintf(e.stdout, "pixcode %s\n", version)
		return nil
	case "help", "--help", "-h":
		printUsage(e.stdout)
		return nil
	default:
		fmt.Fprintf(e.stderr, "Unknown command: %s\n\n", cmd)
		printUsage(e.stderr)
		return errUsage
	}
}

func printUsage(w io.Writer) {
	fmt.Fprint(w, `pixcode - Build and read PIX payment codes

USAGE
    pixcode <command> [flags] [args...]

COMMANDS
    encode    Build a static PIX code
    decode    Decode PIX codes (arguments or one per line with --stdin)
    inspect   List every TLV field of a code, valid or not
    classify  Show the type of PIX keys
    validate  Check PIX keys (check digits, formats)
    crc       Compute or verify CRC16 checksums
    qr        Render a code as a PNG file or in the terminal
    scan      Read codes from QR images and decode them
    version   Show version

COMMON FLAGS
    --config PATH       YAML configuration file (default: $PIXCODE_CONFIG)
    -o, --output FMT    text, json, yaml or cbor
    --log-level LEVEL   debug, info, warn or error

EXAMPLES
    # Static code with an amount
    pixcode encode --key fulano@example.com --name "FULANO DE TAL" --city BRASILIA --amount 10.00

    # Decode codes from a file as JSON
    pixcode decode --stdin -o json < codes.txt

    # Save a QR image
    pixcode qr --file pix.png "00020101021226..."

ENVIRONMENT
    PIXCODE_CONFIG      Path to the configuration file
`)
}

// commonFlags are registered on every subcommand's flag set.
type commonFlags struct {
	configPath string
	output     string
	logLevel   string
}

func (c *commonFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&c.configPath, "config", "", "path to YAML config file (default: $"+config.EnvVar+")")
	fs.StringVarP(&c.output, "output", "o", "", "output format: text, json, yaml, cbor")
	fs.StringVar(&c.logLevel, "log-level", "", "log level: debug, info, warn, error")
}

// load reads the configuration, applies flag overrides and builds the
// logger.
func (c *commonFlags) load(e *env) (config.Config, *slog.Logger, error) {
	var (
		cfg config.Config
		err error
	)
	if c.configPath != "" {
		cfg, err = config.LoadFile(c.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return config.Config{}, nil, err
	}

	if c.output != "" {
		cfg.Output = c.output
	}
	if c.logLevel != "" {
		cfg.LogLevel = c.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, nil, err
	}

	level, _ := config.ParseLevel(cfg.LogLevel)
	logger := slog.New(slog.NewTextHandler(e.stderr, &slog.HandlerOptions{Level: level}))
	return cfg, logger, nil
}

// newFlagSet creates a subcommand flag set with the common flags.
func newFlagSet(name, usage string, e *env) (*pflag.FlagSet, *commonFlags) {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(e.stderr)
	fs.Usage = func() {
		fmt.Fprintf(e.stderr, "Usage:\n  pixcode %s\n\nFlags:\n%s", usage, fs.FlagUsages())
	}
	common := &commonFlags{}
	common.register(fs)
	return fs, common
}

// parse parses args. help is true when -h/--help was given and usage has
// already been printed.
func parse(fs *pflag.FlagSet, args []string) (help bool, err error) {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return true, nil
		}
		return false, fmt.Errorf("%w: %v", errUsage, err)
	}
	return false, nil
}
