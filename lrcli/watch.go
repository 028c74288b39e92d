package lrcli

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"cdr.dev/slog"
	"github.com/fsnotify/fsnotify"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"oss.terrastruct.com/lrviz/lib/env"
	"oss.terrastruct.com/lrviz/lib/log"
	"oss.terrastruct.com/lrviz/lib/xbrowser"
	"oss.terrastruct.com/lrviz/lib/xhttp"
	"oss.terrastruct.com/lrviz/lib/xmain"
	"oss.terrastruct.com/lrviz/lrgraph"
	"oss.terrastruct.com/lrviz/lrrenderers/lrsvg"
	"oss.terrastruct.com/lrviz/lrtarget"
	"oss.terrastruct.com/lrviz/lrview"
)

//go:embed static
var staticFS embed.FS

var rootTemplate = template.Must(template.New("root").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
	<meta charset="UTF-8">
	<meta name="viewport" content="width=device-width, initial-scale=1.0">
	<title>{{.}}</title>
	<script src="/static/watch.js"></script>
	<link rel="stylesheet" href="/static/watch.css">
</head>
<body>
	<div id="lrviz-err" style="display: none"></div>
	<div id="lrviz-svg-container"></div>
</body>
</html>`))

type watcherOpts struct {
	host        string
	port        string
	inputPath   string
	configPath  string
	width       float64
	height      float64
	renderOpts  *lrsvg.RenderOpts
	openBrowser bool
}

type watcher struct {
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	ms *xmain.State
	watcherOpts

	reloadCh chan struct{}

	fw               *fsnotify.Watcher
	l                net.Listener
	staticFileServer http.Handler

	// viewMu guards the view being served and the last size a client reported.
	viewMu sync.Mutex
	view   lrview.View
	width  float64
	height float64

	wsclientsMu sync.Mutex
	closing     bool
	wsclientsWG sync.WaitGroup
	wsclients   map[*wsclient]struct{}

	errMu sync.Mutex
	err   error

	resMu sync.Mutex
	res   *frameResult
}

// frameResult is what clients receive for every frame.
type frameResult struct {
	SVG string `json:"svg"`
	Err string `json:"err"`
}

// inputEvent is what clients send: pointer, wheel and resize events in screen
// coordinates.
type inputEvent struct {
	Type   string  `json:"type"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	DeltaY float64 `json:"deltaY"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func newWatcher(ctx context.Context, ms *xmain.State, opts watcherOpts) (*watcher, error) {
	ctx, cancel := context.WithCancel(log.Named(ctx, "watch"))

	w := &watcher{
		ctx:    ctx,
		cancel: cancel,

		ms:          ms,
		watcherOpts: opts,

		reloadCh:  make(chan struct{}, 1),
		wsclients: make(map[*wsclient]struct{}),
		width:     opts.width,
		height:    opts.height,
	}
	err := w.init()
	if err != nil {
		w.close()
		return nil, err
	}
	return w, nil
}

func (w *watcher) init() error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	w.fw = fw
	err = w.initStaticFileServer()
	if err != nil {
		return err
	}
	return w.listen()
}

func (w *watcher) initStaticFileServer() error {
	// Serve files straight from the source tree in dev mode for fast iteration.
	if env.DevOnly() {
		_, file, _, ok := runtime.Caller(0)
		if !ok {
			return errors.New("lrviz: runtime failed to provide path of watch.go")
		}
		w.staticFileServer = http.FileServer(http.Dir(filepath.Join(filepath.Dir(file), "static")))
		return nil
	}

	sfs, err := fs.Sub(staticFS, "static")
	if err != nil {
		return err
	}
	w.staticFileServer = http.FileServer(http.FS(sfs))
	return nil
}

func (w *watcher) run() error {
	defer w.close()

	w.goFunc(w.watchLoop)
	w.goFunc(w.reloadLoop)
	w.goServe()

	w.wg.Wait()
	w.close()
	return w.err
}

func (w *watcher) close() {
	w.wsclientsMu.Lock()
	if w.closing {
		w.wsclientsMu.Unlock()
		return
	}
	w.closing = true
	w.wsclientsMu.Unlock()

	w.cancel()
	if w.fw != nil {
		err := w.fw.Close()
		w.setErr(err)
	}
	if w.l != nil {
		err := w.l.Close()
		if !errors.Is(err, net.ErrClosed) {
			w.setErr(err)
		}
	}

	w.wsclientsWG.Wait()
	w.swapView(nil)
}

func (w *watcher) setErr(err error) {
	if errors.Is(err, context.Canceled) || errors.Is(err, http.ErrServerClosed) {
		return
	}
	w.errMu.Lock()
	if w.err == nil {
		w.err = err
	}
	w.errMu.Unlock()
}

func (w *watcher) goFunc(fn func(context.Context) error) {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer w.cancel()

		err := fn(w.ctx)
		w.setErr(err)
	}()
}

// watchLoop requests a reload whenever a watched file changes. Bursts of events
// are batched so an editor's write-chmod-write counts once.
func (w *watcher) watchLoop(ctx context.Context) error {
	lastModified := make(map[string]time.Time)

	for _, p := range w.watchedPaths() {
		mt, err := w.ensureAddWatch(ctx, p)
		if err != nil {
			return err
		}
		lastModified[p] = mt
	}
	w.ms.Log.Info.Printf("loading %v...", w.ms.HumanPath(w.inputPath))
	w.requestReload()

	eatBurstTimer := time.NewTimer(0)
	<-eatBurstTimer.C
	pollTicker := time.NewTicker(time.Second * 10)
	defer pollTicker.Stop()

	changed := make(map[string]struct{})

	for {
		select {
		case <-pollTicker.C:
			// Events can be missed, for example when an editor replaces the file.
			missedChanges := false
			for _, watched := range w.watchedPaths() {
				mt, err := w.ensureAddWatch(ctx, watched)
				if err != nil {
					return err
				}
				if mt2, ok := lastModified[watched]; !ok || !mt.Equal(mt2) {
					missedChanges = true
					lastModified[watched] = mt
				}
			}
			if missedChanges {
				w.requestReload()
			}
		case ev, ok := <-w.fw.Events:
			if !ok {
				return errors.New("fsnotify watcher closed")
			}
			log.Debug(ctx, "file system event", slog.F("event", ev.String()))
			mt, err := w.ensureAddWatch(ctx, ev.Name)
			if err != nil {
				return err
			}
			if ev.Op == fsnotify.Chmod {
				if mt.Equal(lastModified[ev.Name]) {
					continue
				}
			}
			lastModified[ev.Name] = mt
			changed[ev.Name] = struct{}{}
			eatBurstTimer.Reset(time.Millisecond * 16)
		case <-eatBurstTimer.C:
			var changedList []string
			for k := range changed {
				changedList = append(changedList, w.ms.HumanPath(k))
				delete(changed, k)
			}
			sort.Strings(changedList)
			w.ms.Log.Info.Printf("detected change in %s: reloading...", strings.Join(changedList, ", "))
			w.requestReload()
		case err, ok := <-w.fw.Errors:
			if !ok {
				return errors.New("fsnotify watcher closed")
			}
			log.Error(ctx, "fsnotify error", slog.Error(err))
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (w *watcher) watchedPaths() []string {
	if w.configPath == "" {
		return []string{w.inputPath}
	}
	return []string{w.inputPath, w.configPath}
}

func (w *watcher) requestReload() {
	select {
	case w.reloadCh <- struct{}{}:
	default:
	}
}

// ensureAddWatch keeps trying to watch path with a backoff, as a file being
// replaced disappears for a moment.
func (w *watcher) ensureAddWatch(ctx context.Context, path string) (time.Time, error) {
	interval := time.Millisecond * 16
	tc := time.NewTimer(0)
	<-tc.C
	for {
		mt, err := w.addWatch(path)
		if err == nil {
			return mt, nil
		}
		if interval >= time.Second {
			w.ms.Log.Error.Printf("failed to watch %q: %v (retrying in %v)", w.ms.HumanPath(path), err, interval)
		}

		tc.Reset(interval)
		select {
		case <-tc.C:
			if interval < time.Second {
				interval = time.Second
			}
			if interval < time.Second*16 {
				interval *= 2
			}
		case <-ctx.Done():
			return time.Time{}, ctx.Err()
		}
	}
}

func (w *watcher) addWatch(path string) (time.Time, error) {
	err := w.fw.Add(path)
	if err != nil {
		return time.Time{}, err
	}
	d, err := os.Stat(path)
	if err != nil {
		return time.Time{}, err
	}
	return d.ModTime(), nil
}

func (w *watcher) reloadLoop(ctx context.Context) error {
	first := true
	for {
		select {
		case <-w.reloadCh:
		case <-ctx.Done():
			return ctx.Err()
		}

		err := w.reload(ctx)
		if err != nil {
			prefix := ""
			if !first {
				prefix = "re"
			}
			err = fmt.Errorf("failed to %sload: %w", prefix, err)
			w.ms.Log.Error.Print(err)
			w.broadcast(&frameResult{Err: err.Error()})
		}

		if first {
			first = false
			if w.openBrowser {
				url := fmt.Sprintf("http://%s", w.l.Addr())
				err = xbrowser.Open(ctx, w.ms.Env, url)
				if err != nil {
					w.ms.Log.Warn.Printf("failed to open browser to %v: %v", url, err)
				}
			}
		}
	}
}

// reload replaces the served view with a fresh one for the current input and
// config. On error the previous view keeps running.
func (w *watcher) reload(ctx context.Context) error {
	input, err := os.ReadFile(w.inputPath)
	if err != nil {
		return err
	}
	doc, err := lrgraph.Parse(input)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(w.configPath)
	if err != nil {
		return err
	}

	v := newView(ctx, doc, cfg)
	v.OnFrame(w.frame)

	w.viewMu.Lock()
	width, height := w.width, w.height
	w.viewMu.Unlock()
	v.Render(width, height)
	w.swapView(v)
	w.frame(v.Scene())
	return nil
}

// swapView makes v the served view and disposes of the previous one.
func (w *watcher) swapView(v lrview.View) {
	w.viewMu.Lock()
	old := w.view
	w.view = v
	w.viewMu.Unlock()
	if old != nil {
		old.Dispose()
	}
}

func (w *watcher) currentView() lrview.View {
	w.viewMu.Lock()
	defer w.viewMu.Unlock()
	return w.view
}

func (w *watcher) frame(scene *lrtarget.Scene) {
	if scene == nil {
		return
	}
	svg, err := lrsvg.Render(scene, w.renderOpts)
	if err != nil {
		w.broadcast(&frameResult{Err: err.Error()})
		return
	}
	w.broadcast(&frameResult{SVG: string(svg)})
}

// handleEvent applies a client's input to the served view.
func (w *watcher) handleEvent(ev inputEvent) {
	if ev.Type == "resize" {
		w.viewMu.Lock()
		if ev.Width > 0 && ev.Height > 0 {
			w.width, w.height = ev.Width, ev.Height
		}
		w.viewMu.Unlock()
	}

	v := w.currentView()
	if v == nil {
		return
	}
	switch ev.Type {
	case "pointerdown":
		v.PointerDown(ev.X, ev.Y)
	case "pointermove":
		v.PointerMove(ev.X, ev.Y)
	case "pointerup":
		v.PointerUp(ev.X, ev.Y)
	case "wheel":
		v.Wheel(ev.X, ev.Y, ev.DeltaY)
	case "resize":
		v.Resize(ev.Width, ev.Height)
	default:
		log.Warn(w.ctx, "unknown client event", slog.F("type", ev.Type))
	}
}

func (w *watcher) listen() error {
	l, err := net.Listen("tcp", net.JoinHostPort(w.host, w.port))
	if err != nil {
		return err
	}
	w.l = l
	w.ms.Log.Success.Printf("listening on http://%v", w.l.Addr())
	return nil
}

func (w *watcher) goServe() {
	m := http.NewServeMux()
	m.HandleFunc("/", w.handleRoot)
	m.Handle("/static/", http.StripPrefix("/static", w.staticFileServer))
	m.Handle("/watch", xhttp.HandlerFunc(w.handleWatch))

	s := xhttp.NewServer(w.ctx, xhttp.Log(m))
	w.goFunc(func(ctx context.Context) error {
		return xhttp.Serve(ctx, time.Second*30, s, w.l)
	})
}

func (w *watcher) getRes() *frameResult {
	w.resMu.Lock()
	defer w.resMu.Unlock()
	return w.res
}

func (w *watcher) handleRoot(hw http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(hw, r)
		return
	}
	hw.Header().Set("Content-Type", "text/html; charset=utf-8")
	err := rootTemplate.Execute(hw, filepath.Base(w.inputPath))
	if err != nil {
		log.Error(r.Context(), "failed to write root page", slog.Error(err))
	}
}

func (w *watcher) handleWatch(hw http.ResponseWriter, r *http.Request) error {
	w.wsclientsMu.Lock()
	if w.closing {
		w.wsclientsMu.Unlock()
		return xhttp.Errorf(http.StatusServiceUnavailable, "server shutting down...", "server shutting down...")
	}
	// Registered before the upgrade so close waits for this client.
	w.wsclientsWG.Add(1)
	w.wsclientsMu.Unlock()

	c, err := websocket.Accept(hw, r, &websocket.AcceptOptions{
		CompressionMode: websocket.CompressionDisabled,
	})
	if err != nil {
		w.wsclientsWG.Done()
		return err
	}

	go func() {
		defer w.wsclientsWG.Done()
		defer c.Close(websocket.StatusInternalError, "the sky is falling")

		ctx, cancel := context.WithTimeout(w.ctx, time.Hour)
		defer cancel()

		cl := &wsclient{
			w:         w,
			resultsCh: make(chan struct{}, 1),
			c:         c,
		}

		w.wsclientsMu.Lock()
		w.wsclients[cl] = struct{}{}
		w.wsclientsMu.Unlock()
		defer func() {
			w.wsclientsMu.Lock()
			delete(w.wsclients, cl)
			w.wsclientsMu.Unlock()
		}()

		go func() {
			defer cancel()
			_ = cl.readLoop(ctx)
		}()
		go wsHeartbeat(ctx, cl.c)
		_ = cl.writeLoop(ctx)
	}()
	return nil
}

type wsclient struct {
	w         *watcher
	resultsCh chan struct{}
	c         *websocket.Conn
}

func (cl *wsclient) readLoop(ctx context.Context) error {
	for {
		var ev inputEvent
		err := wsjson.Read(ctx, cl.c, &ev)
		if err != nil {
			return err
		}
		cl.w.handleEvent(ev)
	}
}

func (cl *wsclient) writeLoop(ctx context.Context) error {
	for {
		res := cl.w.getRes()
		if res != nil {
			err := cl.write(ctx, res)
			if err != nil {
				return err
			}
		}

		select {
		case <-cl.resultsCh:
		case <-ctx.Done():
			cl.c.Close(websocket.StatusGoingAway, "server shutting down...")
			return ctx.Err()
		}
	}
}

func (cl *wsclient) write(ctx context.Context, res *frameResult) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*30)
	defer cancel()

	return wsjson.Write(ctx, cl.c, res)
}

// broadcast makes res the latest frame and wakes every client. Clients that
// fall behind skip straight to the latest frame.
func (w *watcher) broadcast(res *frameResult) {
	w.resMu.Lock()
	w.res = res
	w.resMu.Unlock()

	w.wsclientsMu.Lock()
	defer w.wsclientsMu.Unlock()
	for cl := range w.wsclients {
		select {
		case cl.resultsCh <- struct{}{}:
		default:
		}
	}
}

func wsHeartbeat(ctx context.Context, c *websocket.Conn) {
	defer c.Close(websocket.StatusInternalError, "the sky is falling")

	t := time.NewTimer(0)
	<-t.C
	for {
		err := c.Ping(ctx)
		if err != nil {
			return
		}

		t.Reset(time.Second * 30)
		select {
		case <-t.C:
		case <-ctx.Done():
			return
		}
	}
}
