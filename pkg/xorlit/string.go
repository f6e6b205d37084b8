package xorlit

// String is a screened literal: a fixed size buffer of screened bytes, terminated by a screened NUL, and the key used to screen it.
//
// String intentionally doesn't implement fmt.Stringer, to avoid revealing plain text by accident when it's logged.
type String struct {
	data []byte
	key  Key
}

// FromScreened wraps bytes that were already screened with key.
// The data is expected to include the screened NUL terminator, as produced by Screen.
// This is the constructor used by generated code.
func FromScreened(data []byte, key Key) *String {
	if len(data) == 0 {
		data = []byte{byte(key)}
	}
	return &String{data: data, key: key}
}

// UnscreenInPlace toggles the screen on every byte of the buffer and returns the buffer without its terminator.
//
// The String is mutated, so calling this again restores the screened form rather than returning plain text twice.
// It must not be called concurrently on the same String.
func (s *String) UnscreenInPlace() []byte {
	if len(s.data) == 0 {
		s.data = s.buffer()
	}
	toggle(s.data, s.data, s.key)
	return s.data[:len(s.data)-1]
}

// Unscreen returns a new buffer with the plain text, leaving the String unchanged.
// The returned slice has room for the NUL terminator just past its length.
func (s *String) Unscreen() []byte {
	src := s.buffer()
	buf := make([]byte, len(src))
	toggle(buf, src, s.key)
	return buf[:len(buf)-1]
}

// Reveal returns the plain text as a string, leaving the String unchanged.
func (s *String) Reveal() string {
	return string(s.Unscreen())
}

// Raw returns the buffer as it's currently held, including the terminator.
func (s *String) Raw() []byte {
	return s.buffer()
}

func (s *String) Key() Key {
	return s.key
}

// Len is the length of the plain text, not counting the terminator.
func (s *String) Len() int {
	return len(s.buffer()) - 1
}

// Size is the length of the buffer, including the terminator.
func (s *String) Size() int {
	return len(s.buffer())
}

// buffer is the held buffer, or only the screened terminator for a zero String.
func (s *String) buffer() []byte {
	if len(s.data) == 0 {
		return []byte{byte(s.key)}
	}
	return s.data
}

func (s *String) clone() *String {
	src := s.buffer()
	data := make([]byte, len(src))
	copy(data, src)
	return &String{data: data, key: s.key}
}
