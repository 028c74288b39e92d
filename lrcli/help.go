package lrcli

import (
	"fmt"

	"oss.terrastruct.com/lrviz/lib/xmain"

	"oss.terrastruct.com/lrviz/lib/version"
)

func help(ms *xmain.State) {
	fmt.Fprintf(ms.Stdout, `%[1]s %[2]s
Usage:
  %[1]s [--watch=false] [--config=lrviz.yaml] input.json [output.svg]

%[1]s lays out and renders an LR automaton or a derivation tree to output.svg.
It defaults to input.svg if an output path is not provided.

The input is JSON. An automaton is {"states": [{"id", "items", "transitions"}]},
a derivation tree is {"type": "Terminal" | "NonTerminal", "value": ...}.

Use - to have %[1]s read from stdin or write to stdout.

In --watch mode, %[1]s serves an interactive view of the input and reloads it
whenever the input or the config file changes. States can be dragged, the
background panned and the wheel zooms.

Flags:
%[3]s

See more docs and the source code at https://oss.terrastruct.com/lrviz.
`, ms.Name, version.Version, ms.Opts.Defaults())
}
