/*
Package xorlit provides screening of string literals so that their plain text doesn't appear in a compiled binary.

Note that this is NOT encryption, since it is trivially reversible.
This falls squarely under the obfuscation category, and the key is stored right next to the screened data.
It's useful for defeating casual static inspection of a binary (like running strings over it), and nothing more.

# How it works:

The xorlit generator (cmd/xorlit) reads a manifest file at go:generate time.
Each literal declared in the manifest is screened with a single byte key, and a Go file is generated that holds only the screened bytes and the key.
The manifest itself should carry a "//go:build ignore" constraint so that the plain text is never compiled.
Each generated accessor function constructs a String from the screened bytes and unscreens it once per call.

	//go:build ignore

	package config

	import "github.com/saylorsolutions/xorlit/pkg/xorlit"

	var (
		apiKey = xorlit.Lit("my-api-key")
		dbURL  = xorlit.LitKey("postgres://localhost/app", 0x2a)
	)

# Keys:

Keys are derived at generation time, from the build time (like __TIME__ in C) and optionally the call site position.
  - TimeKey packs the build time digits into nibbles and uses the low byte. One key is shared across a manifest.
  - DecimalKey is the same, but with decimal positional packing.
  - LineKey mixes in the line number of each declaration, so every call site gets its own key.
  - SiteKey and RandomKey never produce a zero key.

A zero key leaves the screened bytes identical to the plain text.
The generator warns about this, or fails outright in strict mode.

# Concurrency:

UnscreenInPlace mutates the String and must not be called concurrently on the same value.
Unscreen and Reveal allocate a new buffer and are safe to call from multiple goroutines.
*/
package xorlit
