package gen

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/saylorsolutions/xorlit/pkg/xorlit"
)

const (
	EnvBuildTime       = "XORLIT_BUILD_TIME"
	EnvSourceDateEpoch = "SOURCE_DATE_EPOCH"
)

var (
	ErrUnsupportedStrategy = errors.New("unsupported key strategy")
	ErrUnsupportedDecode   = errors.New("unsupported decode mode")
)

// Strategy determines how keys are derived for literals without an explicit key.
type Strategy string

const (
	// StrategyTime uses xorlit.TimeKey, shared by every literal in a manifest.
	StrategyTime Strategy = "time"
	// StrategyDecimal uses xorlit.DecimalKey, shared by every literal in a manifest.
	StrategyDecimal Strategy = "decimal"
	// StrategyLine uses xorlit.LineKey with the line of each declaration.
	StrategyLine Strategy = "line"
	// StrategySite uses xorlit.SiteKey with the position of each declaration.
	StrategySite Strategy = "site"
	// StrategyRandom uses xorlit.RandomKey for each literal.
	StrategyRandom Strategy = "random"
)

func ParseStrategy(s string) (Strategy, error) {
	switch st := Strategy(strings.ToLower(strings.TrimSpace(s))); st {
	case StrategyTime, StrategyDecimal, StrategyLine, StrategySite, StrategyRandom:
		return st, nil
	default:
		return "", fmt.Errorf("%w: '%s'", ErrUnsupportedStrategy, s)
	}
}

// perSite reports whether each literal gets its own key.
func (s Strategy) perSite() bool {
	switch s {
	case StrategyLine, StrategySite, StrategyRandom:
		return true
	default:
		return false
	}
}

func (s Strategy) key(bt xorlit.BuildTime, lit Literal) (xorlit.Key, error) {
	switch s {
	case StrategyTime:
		return xorlit.TimeKey(bt), nil
	case StrategyDecimal:
		return xorlit.DecimalKey(bt), nil
	case StrategyLine:
		return xorlit.LineKey(bt, lit.Pos.Line), nil
	case StrategySite:
		return xorlit.SiteKey(filepath.Base(lit.Pos.Filename), lit.Pos.Line, lit.Pos.Column), nil
	case StrategyRandom:
		return xorlit.RandomKey()
	default:
		return 0, fmt.Errorf("%w: '%s'", ErrUnsupportedStrategy, s)
	}
}

// DecodeMode determines which String method a generated accessor calls.
type DecodeMode string

const (
	// DecodeInPlace unscreens the freshly constructed String in place.
	DecodeInPlace DecodeMode = "inplace"
	// DecodeCopy unscreens into a new buffer.
	DecodeCopy DecodeMode = "copy"
)

func ParseDecodeMode(s string) (DecodeMode, error) {
	switch m := DecodeMode(strings.ToLower(strings.TrimSpace(s))); m {
	case DecodeInPlace, DecodeCopy:
		return m, nil
	default:
		return "", fmt.Errorf("%w: '%s'", ErrUnsupportedDecode, s)
	}
}

// ParseKey parses a single key byte given as hex, with or without a 0x prefix.
func ParseKey(s string) (xorlit.Key, error) {
	s = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), "0x")
	n, err := strconv.ParseUint(s, 16, 8)
	if err != nil {
		return 0, fmt.Errorf("key must be a single hex byte: %w", err)
	}
	return xorlit.Key(n), nil
}

// ResolveBuildTime determines the build time keys are derived from.
// An explicitly given time wins, followed by XORLIT_BUILD_TIME, SOURCE_DATE_EPOCH (in UTC), and finally the current time.
func ResolveBuildTime(given string, getenv func(string) string, now func() time.Time) (xorlit.BuildTime, error) {
	if given = strings.TrimSpace(given); len(given) > 0 {
		return xorlit.ParseBuildTime(given)
	}
	if env := strings.TrimSpace(getenv(EnvBuildTime)); len(env) > 0 {
		bt, err := xorlit.ParseBuildTime(env)
		if err != nil {
			return xorlit.BuildTime{}, fmt.Errorf("%s: %w", EnvBuildTime, err)
		}
		return bt, nil
	}
	if env := strings.TrimSpace(getenv(EnvSourceDateEpoch)); len(env) > 0 {
		epoch, err := strconv.ParseInt(env, 10, 64)
		if err != nil {
			return xorlit.BuildTime{}, fmt.Errorf("%w: %s must be a unix timestamp: %v", xorlit.ErrInvalidBuildTime, EnvSourceDateEpoch, err)
		}
		return xorlit.BuildTimeOf(time.Unix(epoch, 0).UTC()), nil
	}
	return xorlit.BuildTimeOf(now()), nil
}
