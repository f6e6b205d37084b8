package main

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/saylorsolutions/xorlit/cmd/internal"
	"github.com/saylorsolutions/xorlit/internal/gen"
	flag "github.com/spf13/pflag"
)

var version = "dev"

func newFlagSet() *flag.FlagSet {
	flags := flag.NewFlagSet("xorlit", flag.ContinueOnError)
	flags.BoolP("help", "h", false, "Prints this usage information.")
	flags.Bool("version", false, "Prints the version of xorlit.")
	flags.BoolP("verbose", "v", false, "Log progress in addition to warnings.")
	flags.String("config", defaultConfigPath, "Config file with generation defaults. It's only required to exist if this flag is given.")
	flags.StringP("output", "o", "", "Directory to write generated files to. Defaults to the manifest's directory for literals, and the current directory for files.")
	flags.StringP("package", "p", "", "Package name of the generated file, if it should differ from the default.")
	flags.StringP("build-time", "t", "", fmt.Sprintf("Build time (HH:MM:SS) to derive keys from. Defaults to $%s, then $%s, then the current time.", gen.EnvBuildTime, gen.EnvSourceDateEpoch))

	flags.StringP("strategy", "s", string(gen.StrategyTime), "Key strategy for literals: time, decimal, line, site, or random.")
	flags.StringP("decode", "d", string(gen.DecodeInPlace), "How accessors unscreen literals: inplace or copy.")
	flags.StringP("key", "k", "", "A single hex key byte used for every literal without its own key. Can't be used with the line strategy.")
	flags.Bool("strict", false, "Fail generation if any literal key is zero, rather than warning.")
	flags.Bool("embed", false, "Write screened literals to a binary payload loaded with go:embed, instead of byte slice literals.")

	flags.BoolP("exposed", "E", false, "Make the unscreen function for an embedded file exposed. It's recommended to only expose from within an internal package.")
	flags.BoolP("compressed", "c", false, "Embedded file payload should be gzip compressed, which includes a checksum to help prevent tampering.")
	return flags
}

func main() {
	flags := newFlagSet()
	flags.Usage = func() {
		fmt.Printf(`
xorlit generates Go code that embeds XOR screened string literals or files, so their plain text doesn't appear in a compiled binary. This pairs well with go:generate comments.

USAGE:  xorlit [FLAGS] MANIFEST.go
        xorlit [FLAGS] FILE [KEY]

ARGS:
    MANIFEST.go is a Go file declaring literals with xorlit.Lit or xorlit.LitKey.
        It should have a '//go:build ignore' constraint so the plain text is never compiled.
        An accessor function is generated for each literal in MANIFEST_xorlit.go, next to the manifest.
    FILE is any other input file to be embedded.
        The name of the generated Go file is based on the name of the input file, replacing characters that match the regex pattern [^a-zA-Z0-9_] with "_".
        For example, given a file called super-secret.txt, a Go file will be created called super_secret_txt.go, containing a function called unscreenSuper_secret_txt.
    KEY is optional and may be given as hex to override secure random generation of a key for FILE. It will be used with offset 0.

EXAMPLE MANIFEST:
    //go:build ignore

    package config

    import "github.com/saylorsolutions/xorlit/pkg/xorlit"

    var (
        apiKey = xorlit.Lit("my-api-key")
        dbURL  = xorlit.LitKey("postgres://localhost/app", 0x2a)
    )

FLAGS:
%s
SECURITY:
    This is not encryption, this is obfuscation, and they are very different things!
XOR screening is intended to hide embedded data from passive binary analysis only, since XOR screening is easily reversible.
Literals are screened with a single byte key that is stored right next to the screened data.
A zero key leaves a literal unchanged, use --strict to make that an error.
`, flags.FlagUsages())
	}
	if len(os.Args) == 1 {
		flags.Usage()
		return
	}
	if err := flags.Parse(os.Args[1:]); err != nil {
		flags.Usage()
		internal.Fatal("Error parsing flags: %v", err)
	}
	if help, _ := flags.GetBool("help"); help {
		flags.Usage()
		return
	}
	if showVersion, _ := flags.GetBool("version"); showVersion {
		internal.Echo("xorlit %s", version)
		return
	}
	if flags.NArg() == 0 {
		internal.Fatal("Missing required MANIFEST or FILE argument")
	}

	// A .env file is optional, and only supplies build time variables.
	_ = godotenv.Load()

	verbose, _ := flags.GetBool("verbose")
	logger := internal.NewLogger(verbose)
	defer func() {
		_ = logger.Sync()
	}()

	opts, err := generationOptions(flags, os.Getenv, time.Now)
	if err != nil {
		internal.Fatal("%v", err)
	}
	opts = append(opts, gen.WithLogger(logger))

	input := flags.Arg(0)
	if strings.HasSuffix(input, ".go") {
		if flags.NArg() > 1 {
			internal.Fatal("The KEY argument only applies to embedded files, use --key for literal manifests")
		}
		if _, err := gen.GenerateLiterals(input, opts...); err != nil {
			internal.Fatal("Failed to generate literals: %v", err)
		}
		return
	}

	if flags.Changed("key") {
		internal.Fatal("The --key flag only applies to literal manifests, give KEY as an argument to embed a file")
	}
	switch flags.NArg() {
	case 1:
		opts = append(opts, gen.RandomKey())
	default:
		var key bytes.Buffer
		_, err := io.Copy(&key, hex.NewDecoder(strings.NewReader(flags.Arg(1))))
		if err != nil || key.Len() == 0 {
			internal.Fatal("Failed to decode KEY, must be a hex string with only the characters a-f, A-F, or 0-9")
		}
		opts = append(opts, gen.UseKeyOffset(key.Bytes(), 0))
	}
	if _, err := gen.GenerateFile(input, opts...); err != nil {
		internal.Fatal("Failed to generate file: %v", err)
	}
}

// generationOptions merges the config file with flags given on the command line, and resolves the build time.
func generationOptions(flags *flag.FlagSet, getenv func(string) string, now func() time.Time) ([]gen.ParamOpt, error) {
	configPath, _ := flags.GetString("config")
	config, err := LoadConfig(configPath, flags.Changed("config"))
	if err != nil {
		return nil, err
	}
	if err := applyFlags(flags, config); err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	buildTime, _ := flags.GetString("build-time")
	bt, err := gen.ResolveBuildTime(buildTime, getenv, now)
	if err != nil {
		return nil, err
	}
	output, _ := flags.GetString("output")
	opts := append(config.Options(), gen.AtBuildTime(bt), gen.OutputDir(output))

	if flags.Changed("key") {
		given, _ := flags.GetString("key")
		key, err := gen.ParseKey(given)
		if err != nil {
			return nil, err
		}
		opts = append(opts, gen.OverrideKey(key))
	}
	return opts, nil
}

// applyFlags overrides config values with any flags that were explicitly given.
func applyFlags(flags *flag.FlagSet, config *Config) error {
	strs := map[string]*string{
		"strategy": &config.Strategy,
		"decode":   &config.Decode,
		"package":  &config.Package,
	}
	for name, target := range strs {
		if !flags.Changed(name) {
			continue
		}
		val, err := flags.GetString(name)
		if err != nil {
			return err
		}
		*target = val
	}

	bools := map[string]*bool{
		"strict":     &config.Strict,
		"embed":      &config.Embed,
		"exposed":    &config.Exposed,
		"compressed": &config.Compressed,
	}
	for name, target := range bools {
		if !flags.Changed(name) {
			continue
		}
		val, err := flags.GetBool(name)
		if err != nil {
			return err
		}
		*target = val
	}
	return nil
}
