package gen

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hengadev/errsx"
	"github.com/saylorsolutions/xorlit/pkg/xorlit"
	"go.uber.org/zap"
)

// GenerateLiterals screens every literal declared in the manifest and generates a Go file with an accessor function for each.
// The path of the generated file is returned.
// Various generation options may be passed as zero or more ParamOpt.
func GenerateLiterals(manifestPath string, opts ...ParamOpt) (string, error) {
	manifest, err := ParseManifest(manifestPath)
	if err != nil {
		return "", err
	}
	params := newParams()
	params.Package = manifest.Package
	params.outputDir = filepath.Dir(manifestPath)
	for _, opt := range opts {
		if err := opt(params); err != nil {
			return "", err
		}
	}
	if !params.buildTimeSet {
		params.buildTime = xorlit.BuildTimeOf(time.Now())
	}
	if params.overrideKey != nil && params.strategy == StrategyLine {
		return "", fmt.Errorf("%w: a key override can't be used with strategy '%s', which derives a key per call site", ErrUnsupportedStrategy, StrategyLine)
	}

	log := params.logger.With(zap.String("manifest", manifestPath))
	if !manifest.Excluded {
		log.Warn("Manifest isn't excluded from builds, its plain text will be compiled into any binary that includes it. Add a '//go:build ignore' constraint.")
	}
	if err := screenLiterals(params, manifest, log); err != nil {
		return "", err
	}

	base := strings.TrimSuffix(filepath.Base(manifestPath), ".go")
	params.targetFileName = fileCleansePattern.ReplaceAllString(base, "_") + params.outputSuffix
	params.Source = filepath.Base(manifestPath)
	params.InPlace = params.decode == DecodeInPlace
	if params.Embed {
		if err := writeTable(params); err != nil {
			return "", err
		}
	}

	target := filepath.Join(params.outputDir, params.targetFileName+".go")
	if err := render(literalsTemplate, params, target); err != nil {
		return "", err
	}
	log.Info("Generated screened literals",
		zap.String("output", target),
		zap.Int("literals", len(params.Literals)),
		zap.String("strategy", string(params.strategy)),
		zap.Stringer("buildTime", params.buildTime),
	)
	return target, nil
}

func screenLiterals(params *Params, manifest *Manifest, log *zap.Logger) error {
	var (
		errs      = make(errsx.Map)
		sharedKey xorlit.Key
		zeroKey   bool
	)
	if !params.strategy.perSite() {
		// One key for the whole manifest, derived once.
		key, err := params.strategy.key(params.buildTime, Literal{})
		if err != nil {
			return err
		}
		sharedKey = key
	}

	params.Literals = make([]LiteralData, 0, len(manifest.Literals))
	for _, lit := range manifest.Literals {
		key, err := literalKey(params, lit, sharedKey)
		if err != nil {
			errs.Set(lit.Pos.String(), err)
			continue
		}
		if err := xorlit.CheckKey(key); err != nil {
			if params.strict {
				errs.Set(lit.Pos.String(), fmt.Errorf("literal '%s': %w", lit.Name, err))
				zeroKey = true
				continue
			}
			log.Warn("Literal will not be screened, its key is zero",
				zap.String("literal", lit.Name),
				zap.String("position", lit.Pos.String()),
				zap.String("strategy", string(params.strategy)),
				zap.Stringer("buildTime", params.buildTime),
			)
		}

		screened := xorlit.Screen(lit.Value, key)
		params.Literals = append(params.Literals, LiteralData{
			Name:       lit.Name,
			Position:   fmt.Sprintf("%s:%d", filepath.Base(lit.Pos.Filename), lit.Pos.Line),
			Index:      len(params.Literals),
			KeyString:  keyString(key),
			DataString: fmt.Sprintf("%#v", screened.Raw()),
			screened:   screened,
		})
	}
	if !errs.IsEmpty() {
		if zeroKey {
			return fmt.Errorf("%w: %w", xorlit.ErrZeroKey, errs.AsError())
		}
		return errs.AsError()
	}
	return nil
}

func literalKey(params *Params, lit Literal, sharedKey xorlit.Key) (xorlit.Key, error) {
	switch {
	case lit.Key != nil:
		return *lit.Key, nil
	case params.overrideKey != nil:
		return *params.overrideKey, nil
	case params.strategy.perSite():
		return params.strategy.key(params.buildTime, lit)
	default:
		return sharedKey, nil
	}
}

func keyString(key xorlit.Key) string {
	return fmt.Sprintf("0x%02x", byte(key))
}

// writeTable writes screened literals to a binary payload next to the generated file.
func writeTable(params *Params) error {
	entries := make([]*xorlit.String, len(params.Literals))
	for i, lit := range params.Literals {
		entries[i] = lit.screened
	}
	data, err := xorlit.NewTable(entries...).MarshalBinary()
	if err != nil {
		return err
	}

	ident := unicap(strings.TrimSuffix(params.targetFileName, params.outputSuffix))
	params.BlobName = params.targetFileName + ".xlit"
	params.BlobVar = "xorlit" + ident + "Blob"
	params.TableVar = "xorlit" + ident + "Table"
	return os.WriteFile(filepath.Join(params.outputDir, params.BlobName), data, 0644)
}
