package gen

import (
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"unicode"
	"unicode/utf8"

	"github.com/saylorsolutions/xorlit/pkg/xorlit"
	"go.uber.org/zap"
)

const (
	idealMinKeyLen = 20
)

var (
	fileCleansePattern = regexp.MustCompile(`[^a-zA-Z0-9_]`)
)

// GenerateFile will generate a Go file embedding the input file with XOR screening, using a multi-byte key.
// The path of the generated file is returned.
// Various generation options may be passed as zero or more ParamOpt.
func GenerateFile(input string, opts ...ParamOpt) (string, error) {
	params := newParams()
	if err := populateContextData(params); err != nil {
		return "", err
	}
	if err := populateFileData(params, input); err != nil {
		return "", err
	}

	for _, opt := range opts {
		if err := opt(params); err != nil {
			return "", err
		}
	}
	if len(params.Package) == 0 {
		params.Package = fileCleansePattern.ReplaceAllString(filepath.Base(params.outputDir), "_")
	}

	if len(params.keyData) == 0 {
		if err := randomKey(params); err != nil {
			return "", err
		}
	}
	if err := screenData(params); err != nil {
		return "", err
	}

	target := filepath.Join(params.outputDir, params.targetFileName+".go")
	if err := render(fileTemplate, params, target); err != nil {
		return "", err
	}
	params.logger.Info("Generated screened file",
		zap.String("input", input),
		zap.String("output", target),
		zap.Int("keyLen", len(params.keyData)),
		zap.Bool("compressed", params.Compressed),
	)
	return target, nil
}

func populateContextData(params *Params) error {
	cwd, err := os.Getwd()
	if err != nil {
		return err
	}
	params.outputDir = cwd
	return nil
}

func populateFileData(params *Params, file string) error {
	data, err := os.ReadFile(file)
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return fmt.Errorf("input file '%s' is empty", file)
	}
	name := filepath.Base(file)
	params.fileData = data
	params.Source = name
	params.FileMethodName = fileCleansePattern.ReplaceAllString(unicap(name), "_")
	params.targetFileName = fileCleansePattern.ReplaceAllString(name, "_")
	return nil
}

// keyLength scales the key with the payload, but keeps it at least idealMinKeyLen where the payload allows.
func keyLength(size int) int {
	for _, div := range []int{3, 2} {
		if size > div*idealMinKeyLen {
			return size / div
		}
	}
	return size
}

func randomKey(params *Params) error {
	key, offset, err := xorlit.GenKeyAndOffset(keyLength(len(params.fileData)))
	if err != nil {
		return err
	}
	params.keyData = key
	params.Offset = offset
	params.logger.Debug("Generated random file key", zap.Int("keyLen", len(key)))
	return nil
}

// screenData streams the payload through optional compression and then the XOR screen, in a single pass.
func screenData(params *Params) error {
	var buf bytes.Buffer
	xw, err := xorlit.NewWriter(&buf, params.keyData, params.Offset)
	if err != nil {
		return err
	}

	var (
		out    io.Writer = xw
		finish           = func() error { return nil }
	)
	if params.Compressed {
		gz, err := gzip.NewWriterLevel(xw, gzip.BestCompression)
		if err != nil {
			return err
		}
		out, finish = gz, gz.Close
	}
	if _, err := out.Write(params.fileData); err != nil {
		return err
	}
	if err := finish(); err != nil {
		return err
	}

	params.screened = buf.Bytes()
	params.KeyString = fmt.Sprintf("%#v", params.keyData)
	params.DataString = fmt.Sprintf("%#v", params.screened)
	params.logger.Debug("Screened file payload",
		zap.Int("inputLen", len(params.fileData)),
		zap.Int("screenedLen", len(params.screened)),
	)
	return nil
}

func unicap(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 {
		return ""
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
