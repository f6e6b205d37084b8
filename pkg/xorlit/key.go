package xorlit

import (
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/crypto/blake2b"
)

var (
	ErrZeroKey          = errors.New("key acts as zero, screened data would be unchanged")
	ErrInvalidBuildTime = errors.New("invalid build time")
)

// buildTime may be injected with -ldflags "-X github.com/saylorsolutions/xorlit/pkg/xorlit.buildTime=15:04:05".
var buildTime string

// Key is the single byte used to screen every position of a String.
type Key byte

// BuildTime is the time of day that a build happened, at second precision.
type BuildTime struct {
	Hour   int
	Minute int
	Second int
}

// ParseBuildTime parses a build time in the HH:MM:SS layout.
func ParseBuildTime(s string) (BuildTime, error) {
	if len(s) != 8 || s[2] != ':' || s[5] != ':' {
		return BuildTime{}, fmt.Errorf("%w: expected HH:MM:SS, got '%s'", ErrInvalidBuildTime, s)
	}
	var fields [3]int
	for i := range fields {
		hi, lo := s[i*3], s[i*3+1]
		if !isDigit(hi) || !isDigit(lo) {
			return BuildTime{}, fmt.Errorf("%w: non-numeric field in '%s'", ErrInvalidBuildTime, s)
		}
		fields[i] = int(hi-'0')*10 + int(lo-'0')
	}
	bt := BuildTime{Hour: fields[0], Minute: fields[1], Second: fields[2]}
	if err := bt.validate(); err != nil {
		return BuildTime{}, err
	}
	return bt, nil
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// BuildTimeOf truncates t to a BuildTime.
func BuildTimeOf(t time.Time) BuildTime {
	return BuildTime{Hour: t.Hour(), Minute: t.Minute(), Second: t.Second()}
}

func (b BuildTime) validate() error {
	if b.Hour < 0 || b.Hour > 23 || b.Minute < 0 || b.Minute > 59 || b.Second < 0 || b.Second > 60 {
		return fmt.Errorf("%w: %02d:%02d:%02d out of range", ErrInvalidBuildTime, b.Hour, b.Minute, b.Second)
	}
	return nil
}

func (b BuildTime) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", b.Hour, b.Minute, b.Second)
}

// Digits returns the six decimal digits of the build time, most significant first.
func (b BuildTime) Digits() [6]int {
	return [6]int{
		b.Hour / 10, b.Hour % 10,
		b.Minute / 10, b.Minute % 10,
		b.Second / 10, b.Second % 10,
	}
}

// PackNibbles packs each digit into its own 4 bit slot, with the first hour digit in the lowest nibble.
func (b BuildTime) PackNibbles() uint32 {
	var packed uint32
	for i, d := range b.Digits() {
		packed |= uint32(d) << (4 * i)
	}
	return packed
}

// PackDecimal packs the digits positionally, so 12:34:56 becomes 123456.
func (b BuildTime) PackDecimal() uint32 {
	var packed uint32
	for _, d := range b.Digits() {
		packed = packed*10 + uint32(d)
	}
	return packed
}

// TimeKey is the default key for a build, taken from the low byte of the nibble packed build time.
// Only the hour digits reach the low byte, so builds between 00:00:00 and 00:59:59 produce a zero key.
func TimeKey(bt BuildTime) Key {
	return Key(bt.PackNibbles())
}

// DecimalKey is the low byte of the decimal packed build time.
func DecimalKey(bt BuildTime) Key {
	return Key(bt.PackDecimal())
}

// LineKey derives a key for a single call site by mixing the line number into the decimal packed build time.
// The result is reduced modulo 255, so it is zero whenever the sum is a multiple of 255.
func LineKey(bt BuildTime, line int) Key {
	sum := uint64(bt.PackDecimal()) + uint64(line)*100000
	return Key(sum % 255)
}

// SiteKey derives a key from the position of a call site.
// The first non-zero byte of the digest is used, so the result is never zero in practice.
func SiteKey(file string, line, col int) Key {
	sum := blake2b.Sum256([]byte(fmt.Sprintf("%s:%d:%d", file, line, col)))
	for _, b := range sum {
		if b != 0 {
			return Key(b)
		}
	}
	return 1
}

// RandomKey reads a non-zero key from the OS entropy pool.
func RandomKey() (Key, error) {
	buf := make([]byte, 1)
	for {
		if _, err := rand.Read(buf); err != nil {
			return 0, fmt.Errorf("failed to read random key: %w", err)
		}
		if buf[0] != 0 {
			return Key(buf[0]), nil
		}
	}
}

// CheckKey returns ErrZeroKey if the key would leave data unchanged.
func CheckKey(key Key) error {
	if key == 0 {
		return ErrZeroKey
	}
	return nil
}

var (
	defaultKeyOnce sync.Once
	defaultKey     Key
	startTime      = time.Now()
)

// DefaultKey is the key used by Lit.
// It's derived with TimeKey from the injected build time, falling back to the process start time if none was injected.
func DefaultKey() Key {
	defaultKeyOnce.Do(func() {
		defaultKey = TimeKey(injectedBuildTime())
	})
	return defaultKey
}

func injectedBuildTime() BuildTime {
	if bt, err := ParseBuildTime(buildTime); err == nil {
		return bt
	}
	return BuildTimeOf(startTime)
}

// GenKey will generate a multi-byte screening key with the given length.
func GenKey(length int) ([]byte, error) {
	if length <= 0 {
		return nil, errors.New("asked to generate a 0-length key")
	}
	buf := make([]byte, length)
	n, err := rand.Read(buf)
	if n < length {
		return nil, fmt.Errorf("failed to read requested bytes: %v", err)
	}
	return buf, nil
}

// GenKeyAndOffset generates a key like GenKey, along with a random starting offset within it.
func GenKeyAndOffset(length int) ([]byte, int, error) {
	key, err := GenKey(length)
	if err != nil {
		return nil, 0, err
	}
	buf := make([]byte, 4)
	_, err = rand.Read(buf)
	if err != nil {
		return nil, 0, err
	}
	return key, int(binary.BigEndian.Uint32(buf) % uint32(length)), nil
}
