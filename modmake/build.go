package main

import (
	. "github.com/saylorsolutions/modmake"
)

const (
	xorlitVersion = "0.1.0"
)

func main() {
	b := NewBuild()
	b.Generate().DependsOnRunner("tidy", "", Go().ModTidy())

	xorlit := NewAppBuild("xorlit", "cmd/xorlit", xorlitVersion)
	xorlit.Build(func(gb *GoBuild) {
		gb.
			StripDebugSymbols().
			SetVariable("main", "version", xorlitVersion)
	})
	xorlit.Variant("windows", "amd64")
	xorlit.Variant("linux", "amd64")
	xorlit.Variant("linux", "arm64")
	xorlit.Variant("darwin", "amd64")
	xorlit.Variant("darwin", "arm64")
	b.ImportApp(xorlit)

	b.Execute()
}
