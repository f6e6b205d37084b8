//go:build xorlit_strict

package xorlit

// Building with -tags xorlit_strict refuses to start a program whose DefaultKey would leave Lit data unscreened.
func init() {
	if err := CheckKey(DefaultKey()); err != nil {
		panic("xorlit: DefaultKey for build time " + injectedBuildTime().String() + ": " + err.Error())
	}
}
