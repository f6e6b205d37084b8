package xorlit

import (
	"bytes"
	"sync"
	"testing"
	"testing/quick"

	"github.com/stretchr/testify/assert"
)

func TestScreen_Known(t *testing.T) {
	s := Screen("abc", 0x2a)
	assert.Equal(t, []byte{0x4b, 0x48, 0x49, 0x2a}, s.Raw())
	assert.Equal(t, Key(0x2a), s.Key())
	assert.Equal(t, 3, s.Len())
	assert.Equal(t, 4, s.Size())
	assert.Equal(t, "abc", string(s.UnscreenInPlace()))
}

func TestScreen_ZeroKey(t *testing.T) {
	s := Screen("abc", 0)
	assert.Equal(t, []byte{0x61, 0x62, 0x63, 0x00}, s.Raw())
	assert.ErrorIs(t, CheckKey(s.Key()), ErrZeroKey)
}

func TestScreen_Empty(t *testing.T) {
	s := Screen("", 0x10)
	assert.Equal(t, []byte{0x10}, s.Raw())
	assert.Equal(t, 0, s.Len())
	assert.Equal(t, "", s.Reveal())
	assert.Empty(t, s.UnscreenInPlace())
}

func TestRoundTrip(t *testing.T) {
	f := func(plain string, key byte) bool {
		return Screen(plain, Key(key)).Reveal() == plain
	}
	assert.NoError(t, quick.Check(f, &quick.Config{MaxCount: 500}))
}

func TestScreen_ChangesRepresentation(t *testing.T) {
	f := func(plain string, key byte) bool {
		if len(plain) == 0 || key == 0 {
			return true
		}
		s := Screen(plain, Key(key))
		return !bytes.Equal(s.Raw()[:s.Len()], []byte(plain))
	}
	assert.NoError(t, quick.Check(f, &quick.Config{MaxCount: 500}))
}

func TestScreen_ZeroKeyIsIdentity(t *testing.T) {
	f := func(plain string) bool {
		s := Screen(plain, 0)
		return string(s.Raw()[:s.Len()]) == plain
	}
	assert.NoError(t, quick.Check(f, nil))
}

func TestUnscreen_LeavesStoredBytes(t *testing.T) {
	s := Screen("a test message that should be screened", 0x5a)
	orig := append([]byte(nil), s.Raw()...)

	first := s.Unscreen()
	second := s.Unscreen()
	assert.Equal(t, first, second)
	assert.Equal(t, "a test message that should be screened", string(first))
	assert.Equal(t, orig, s.Raw())

	first[0] = 'X'
	assert.Equal(t, "a test message that should be screened", s.Reveal())
}

func TestUnscreen_KeepsTerminator(t *testing.T) {
	buf := Screen("abc", 0x2a).Unscreen()
	assert.Equal(t, 4, cap(buf))
	assert.Equal(t, byte(0), buf[:cap(buf)][3])
}

func TestUnscreenInPlace_Toggles(t *testing.T) {
	s := Screen("abc", 0x2a)
	orig := append([]byte(nil), s.Raw()...)

	assert.Equal(t, "abc", string(s.UnscreenInPlace()))
	assert.Equal(t, []byte{'a', 'b', 'c', 0}, s.Raw())

	again := s.UnscreenInPlace()
	assert.Equal(t, orig[:3], again)
	assert.Equal(t, orig, s.Raw())
}

func TestFromScreened(t *testing.T) {
	s := FromScreened([]byte{0x4b, 0x48, 0x49, 0x2a}, 0x2a)
	assert.Equal(t, "abc", s.Reveal())
	assert.Equal(t, "abc", string(s.UnscreenInPlace()))

	empty := FromScreened(nil, 0x2a)
	assert.Equal(t, "", empty.Reveal())
	assert.Equal(t, 1, empty.Size())
}

func TestLitKey(t *testing.T) {
	s := LitKey("abc", 0x2a)
	assert.Equal(t, []byte{0x4b, 0x48, 0x49, 0x2a}, s.Raw())

	lit := Lit("abc")
	assert.Equal(t, DefaultKey(), lit.Key())
	assert.Equal(t, "abc", lit.Reveal())
}

func TestReveal_Concurrent(t *testing.T) {
	const plain = "shared between goroutines"
	var (
		s  = Screen(plain, 0x77)
		wg sync.WaitGroup
	)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				assert.Equal(t, plain, s.Reveal())
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, Screen(plain, 0x77).Raw(), s.Raw())
}

func TestString_ZeroValue(t *testing.T) {
	var s String
	assert.Equal(t, 0, s.Len())
	assert.Equal(t, 1, s.Size())
	assert.Equal(t, "", s.Reveal())
	assert.Empty(t, s.Unscreen())
	assert.Empty(t, s.UnscreenInPlace())

	// A failed decode leaves the zero value usable.
	var failed String
	assert.Error(t, failed.UnmarshalBinary([]byte{0x2a, 0, 0, 0, 4}))
	assert.Equal(t, "", failed.Reveal())
	assert.Equal(t, 0, failed.Len())
}
