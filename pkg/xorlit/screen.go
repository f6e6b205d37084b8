package xorlit

// Screen produces a String holding plain followed by a NUL terminator, with every byte XOR'd with key.
// This is what the generator runs at go:generate time, so that only the screened bytes are written to generated source.
func Screen(plain string, key Key) *String {
	size := len(plain) + 1
	data := make([]byte, size)
	data[size-1] = byte(key)
	for i := size - 2; i >= 0; i-- {
		data[i] = plain[i] ^ byte(key)
	}
	return &String{data: data, key: key}
}

// Lit screens plain with DefaultKey.
//
// Lit is the marker that the xorlit generator looks for in a manifest.
// Calling it in compiled code still places plain in the binary, which is why manifests should be excluded from builds.
func Lit(plain string) *String {
	return Screen(plain, DefaultKey())
}

// LitKey screens plain with an explicit key.
// Like Lit, it's intended to be used in a manifest.
func LitKey(plain string, key Key) *String {
	return Screen(plain, key)
}

func toggle(dst, src []byte, key Key) {
	for i := range src {
		dst[i] = src[i] ^ byte(key)
	}
}
