package gen

import (
	"fmt"
	"strings"

	"github.com/saylorsolutions/xorlit/pkg/xorlit"
	"go.uber.org/zap"
)

const (
	DefaultOutputSuffix = "_xorlit"
)

// Params holds everything needed to render a generated file.
// Exported fields are used by the templates.
type Params struct {
	Package        string
	Source         string
	Exposed        bool
	Compressed     bool
	FileMethodName string
	KeyString      string
	DataString     string
	Offset         int
	InPlace        bool
	Embed          bool
	BlobName       string
	BlobVar        string
	TableVar       string
	Literals       []LiteralData

	strategy       Strategy
	decode         DecodeMode
	strict         bool
	buildTime      xorlit.BuildTime
	buildTimeSet   bool
	overrideKey    *xorlit.Key
	outputDir      string
	outputSuffix   string
	logger         *zap.Logger
	keyData        []byte
	fileData       []byte
	screened       []byte
	targetFileName string
}

// LiteralData is a single screened literal, ready to be rendered as an accessor function.
type LiteralData struct {
	Name       string
	Position   string
	Index      int
	KeyString  string
	DataString string

	screened *xorlit.String
}

// ParamOpt operates on Params in a standard and predictable way, and is used in GenerateFile and GenerateLiterals.
// If any ParamOpt returns an error, then file generation ceases and the error is returned.
type ParamOpt = func(params *Params) error

func newParams() *Params {
	return &Params{
		strategy:     StrategyTime,
		decode:       DecodeInPlace,
		outputSuffix: DefaultOutputSuffix,
		logger:       zap.NewNop(),
	}
}

// CompressData indicates that embedded file data should be compressed.
func CompressData(val ...bool) ParamOpt {
	return func(params *Params) error {
		if len(val) > 0 {
			params.Compressed = val[0]
			return nil
		}
		params.Compressed = true
		return nil
	}
}

// ExposeFunctions indicates that functions generated for an embedded file should be exposed.
// Literal accessors are exposed based on the name declared in the manifest instead.
func ExposeFunctions(val ...bool) ParamOpt {
	return func(params *Params) error {
		if len(val) > 0 {
			params.Exposed = val[0]
			return nil
		}
		params.Exposed = true
		return nil
	}
}

// UseKeyOffset sets a multi-byte key for an embedded file to be used instead of generating one randomly.
func UseKeyOffset(key []byte, offset int) ParamOpt {
	return func(params *Params) error {
		params.keyData = key
		params.Offset = offset
		return nil
	}
}

// RandomKey generates a random key and offset for an embedded file based on the payload size.
func RandomKey() ParamOpt {
	return randomKey
}

// PackageName specifies the package name of the generated file.
// This is useful for cases where the expected package name doesn't match the name of the containing directory.
func PackageName(name string) ParamOpt {
	name = strings.TrimSpace(name)
	return func(params *Params) error {
		if len(name) == 0 {
			return nil
		}
		params.Package = name
		return nil
	}
}

// KeyStrategy selects how literal keys are derived.
func KeyStrategy(strategy Strategy) ParamOpt {
	return func(params *Params) error {
		st, err := ParseStrategy(string(strategy))
		if err != nil {
			return err
		}
		params.strategy = st
		return nil
	}
}

// DecodeWith selects how generated accessors unscreen their literal.
func DecodeWith(mode DecodeMode) ParamOpt {
	return func(params *Params) error {
		m, err := ParseDecodeMode(string(mode))
		if err != nil {
			return err
		}
		params.decode = m
		return nil
	}
}

// StrictKeys makes a zero key a generation error rather than a warning.
func StrictKeys(val ...bool) ParamOpt {
	return func(params *Params) error {
		if len(val) > 0 {
			params.strict = val[0]
			return nil
		}
		params.strict = true
		return nil
	}
}

// AtBuildTime sets the build time that keys are derived from, instead of the current time.
func AtBuildTime(bt xorlit.BuildTime) ParamOpt {
	return func(params *Params) error {
		params.buildTime = bt
		params.buildTimeSet = true
		return nil
	}
}

// OverrideKey uses the given key for every literal that doesn't declare its own.
// This can't be combined with StrategyLine, which always derives a key per call site.
func OverrideKey(key xorlit.Key) ParamOpt {
	return func(params *Params) error {
		params.overrideKey = &key
		return nil
	}
}

// OutputDir sets the directory that generated files are written to.
func OutputDir(dir string) ParamOpt {
	dir = strings.TrimSpace(dir)
	return func(params *Params) error {
		if len(dir) == 0 {
			return nil
		}
		params.outputDir = dir
		return nil
	}
}

// OutputSuffix sets the suffix appended to the manifest name to name the generated file.
func OutputSuffix(suffix string) ParamOpt {
	return func(params *Params) error {
		if len(suffix) == 0 {
			return nil
		}
		if fileCleansePattern.MatchString(suffix) {
			return fmt.Errorf("output suffix '%s' may only contain letters, digits, and underscores", suffix)
		}
		params.outputSuffix = suffix
		return nil
	}
}

// EmbedTable writes screened literals to a binary payload that's embedded with go:embed, rather than as byte slice literals.
func EmbedTable(val ...bool) ParamOpt {
	return func(params *Params) error {
		if len(val) > 0 {
			params.Embed = val[0]
			return nil
		}
		params.Embed = true
		return nil
	}
}

// WithLogger sets the logger used to report warnings and progress.
func WithLogger(logger *zap.Logger) ParamOpt {
	return func(params *Params) error {
		if logger == nil {
			return nil
		}
		params.logger = logger
		return nil
	}
}
