// Package lrcli is the lrviz command line: a one shot SVG render of an input
// file or, with --watch, a live interactive view served over HTTP.
package lrcli

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"cdr.dev/slog"
	"github.com/spf13/pflag"

	"oss.terrastruct.com/xdefer"

	"oss.terrastruct.com/lrviz/lib/go2"
	"oss.terrastruct.com/lrviz/lib/log"
	"oss.terrastruct.com/lrviz/lib/version"
	"oss.terrastruct.com/lrviz/lib/xmain"
	"oss.terrastruct.com/lrviz/lrgraph"
	"oss.terrastruct.com/lrviz/lrlayouts/lrforce"
	"oss.terrastruct.com/lrviz/lrrenderers/lrsvg"
	"oss.terrastruct.com/lrviz/lrview"
)

const (
	DEFAULT_WIDTH  = 1280
	DEFAULT_HEIGHT = 720
)

func Run(ctx context.Context, ms *xmain.State) (err error) {
	watchFlag, err := ms.Opts.Bool("LRVIZ_WATCH", "watch", "w", false, "watch for changes to input and live reload. Use $HOST and $PORT to specify the listening address.\n(default localhost:0, which will open on a randomly available local port).")
	if err != nil {
		return err
	}
	hostFlag := ms.Opts.String("HOST", "host", "", "localhost", "host listening address when used with watch")
	portFlag := ms.Opts.String("PORT", "port", "p", "0", "port listening address when used with watch")
	browserFlag, err := ms.Opts.Bool("LRVIZ_BROWSER", "browser", "", true, "open the watch page in a browser. $BROWSER picks the browser")
	if err != nil {
		return err
	}
	configFlag := ms.Opts.String("LRVIZ_CONFIG", "config", "c", "", "YAML or JSON file tuning the layout")
	widthFlag, err := ms.Opts.Float64("LRVIZ_WIDTH", "width", "", DEFAULT_WIDTH, "width of the viewport the layout is centered in")
	if err != nil {
		return err
	}
	heightFlag, err := ms.Opts.Float64("LRVIZ_HEIGHT", "height", "", DEFAULT_HEIGHT, "height of the viewport the layout is centered in")
	if err != nil {
		return err
	}
	stepsFlag, err := ms.Opts.Int64("LRVIZ_STEPS", "steps", "", 0, "number of simulation steps before rendering an automaton. 0 runs until the layout settles")
	if err != nil {
		return err
	}
	padFlag, err := ms.Opts.Int64("LRVIZ_PAD", "pad", "", lrsvg.DEFAULT_PADDING, "pixels padded around the rendered diagram")
	if err != nil {
		return err
	}
	accentFlag := ms.Opts.String("LRVIZ_ACCENT", "accent", "", "", "CSS color the node fills are derived from")
	noXMLTagFlag, err := ms.Opts.Bool("LRVIZ_NO_XML_TAG", "no-xml-tag", "", false, "omit XML tag (<?xml ...?>) from output SVG files")
	if err != nil {
		return err
	}
	debugFlag, err := ms.Opts.Bool("DEBUG", "debug", "d", false, "print debug logs.")
	if err != nil {
		ms.Log.Warn.Printf("Invalid DEBUG flag value ignored")
		debugFlag = go2.Pointer(false)
	}
	versionFlag, err := ms.Opts.Bool("", "version", "v", false, "get the version")
	if err != nil {
		return err
	}

	args, err := ms.Opts.Parse()
	if errors.Is(err, pflag.ErrHelp) {
		help(ms)
		return nil
	}
	if err != nil {
		return err
	}

	if *versionFlag {
		fmt.Fprintln(ms.Stdout, version.Version)
		return nil
	}
	if *debugFlag {
		ctx = log.Leveled(ctx, slog.LevelDebug)
	}

	if len(args) == 0 {
		help(ms)
		return xmain.UsageErrorf("input argument required")
	}
	if len(args) > 2 {
		return xmain.UsageErrorf("too many arguments passed")
	}
	inputPath := args[0]
	outputPath := outputPathFor(inputPath)
	if len(args) == 2 {
		outputPath = args[1]
	}

	renderOpts := &lrsvg.RenderOpts{
		Pad:      padFlag,
		NoXMLTag: noXMLTagFlag,
	}
	if *accentFlag != "" {
		renderOpts.Accent = accentFlag
	}

	if *watchFlag {
		if inputPath == "-" {
			return xmain.UsageErrorf("-w[atch] cannot be combined with reading input from stdin")
		}
		w, err := newWatcher(ctx, ms, watcherOpts{
			host:        *hostFlag,
			port:        *portFlag,
			inputPath:   inputPath,
			configPath:  *configFlag,
			width:       *widthFlag,
			height:      *heightFlag,
			renderOpts:  renderOpts,
			openBrowser: *browserFlag,
		})
		if err != nil {
			return err
		}
		return w.run()
	}

	input, err := ms.ReadPath(inputPath)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(*configFlag)
	if err != nil {
		return err
	}
	renderOpts.Fit = go2.Pointer(true)
	ctx, cancel := log.WithTimeout(ctx, time.Minute*2)
	defer cancel()
	svg, err := render(ctx, input, cfg, *widthFlag, *heightFlag, *stepsFlag, renderOpts)
	if err != nil {
		return err
	}
	err = ms.WritePath(outputPath, svg)
	if err != nil {
		return err
	}
	if outputPath != "-" {
		ms.Log.Success.Printf("successfully rendered %s to %s", ms.HumanPath(inputPath), ms.HumanPath(outputPath))
	}
	return nil
}

// outputPathFor swaps the extension of inputPath for .svg.
func outputPathFor(inputPath string) string {
	if inputPath == "-" {
		return "-"
	}
	ext := filepath.Ext(inputPath)
	return strings.TrimSuffix(inputPath, ext) + ".svg"
}

// loadConfig reads the config at path, or returns the defaults if path is empty.
func loadConfig(path string) (*lrview.Config, error) {
	if path == "" {
		return lrview.DefaultConfig(), nil
	}
	return lrview.LoadConfig(path)
}

func newView(ctx context.Context, doc *lrgraph.Document, cfg *lrview.Config) lrview.View {
	if doc.Kind == lrgraph.KindTree {
		return lrview.NewTreeView(ctx, doc.Tree, cfg)
	}
	return lrview.NewAutomatonView(ctx, doc.Automaton, cfg)
}

// render lays input out off screen and renders the final frame. steps <= 0 runs
// the simulation until it settles.
func render(ctx context.Context, input []byte, cfg *lrview.Config, width, height float64, steps int64, opts *lrsvg.RenderOpts) (_ []byte, err error) {
	defer xdefer.Errorf(&err, "failed to render")

	doc, err := lrgraph.Parse(input)
	if err != nil {
		return nil, err
	}

	offscreen := *cfg
	offscreen.FrameInterval = 0
	v := newView(ctx, doc, &offscreen)
	v.Render(width, height)
	defer v.Dispose()

	if steps <= 0 {
		steps = lrforce.MAX_TICKS
	}
	var i int64
	for ; i < steps && v.Step(); i++ {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
	}
	log.Debug(ctx, "laid out", slog.F("kind", doc.Kind), slog.F("steps", i), slog.F("settled", v.Settled()))

	return lrsvg.Render(v.Scene(), opts)
}
