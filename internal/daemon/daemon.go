package daemon

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/leonardotrapani/aslbridge/internal/bus"
	"github.com/leonardotrapani/aslbridge/internal/config"
	"github.com/leonardotrapani/aslbridge/internal/llm"
	"github.com/leonardotrapani/aslbridge/internal/metrics"
	"github.com/leonardotrapani/aslbridge/internal/notify"
	"github.com/leonardotrapani/aslbridge/internal/pipeline"
	"github.com/leonardotrapani/aslbridge/internal/recording"
	"github.com/leonardotrapani/aslbridge/internal/signvideo"
	"github.com/leonardotrapani/aslbridge/internal/transcriber"
)

var ErrBusy = errors.New("busy")

// depsBuilder prepares a pipeline run. An empty mediaPath means the microphone.
type depsBuilder func(cfg *config.Config, mediaPath string) (pipeline.Deps, error)

type Daemon struct {
	mu        sync.Mutex
	configMgr *config.Manager
	getConfig func() *config.Config
	notifier  notify.Notifier
	metrics   *metrics.Metrics
	build     depsBuilder

	ctx    context.Context
	cancel context.CancelFunc

	pipeline    pipeline.Pipeline
	metricsAddr net.Addr
}

func New(configMgr *config.Manager, n notify.Notifier, m *metrics.Metrics) *Daemon {
	d := newDaemon(configMgr.GetConfig, n, m)
	d.configMgr = configMgr
	return d
}

func newDaemon(getConfig func() *config.Config, n notify.Notifier, m *metrics.Metrics) *Daemon {
	if n == nil {
		n = notify.Desktop{}
	}
	if m == nil {
		m = metrics.New()
	}
	ctx, cancel := context.WithCancel(context.Background())
	d := &Daemon{
		getConfig: getConfig,
		notifier:  n,
		metrics:   m,
		ctx:       ctx,
		cancel:    cancel,
	}
	d.build = d.buildDeps
	return d
}

func (d *Daemon) status() pipeline.Status {
	if d.pipeline == nil {
		return pipeline.Idle
	}
	return d.pipeline.Status()
}

func (d *Daemon) busy() bool {
	switch d.status() {
	case pipeline.Recording, pipeline.Transcribing, pipeline.Translating:
		return true
	}
	return false
}

func (d *Daemon) Run() error {
	if err := bus.CheckExistingDaemon(); err != nil {
		return err
	}

	ln, err := bus.Listen()
	if err != nil {
		return err
	}
	defer ln.Close()

	if err := bus.CreatePidFile(); err != nil {
		return fmt.Errorf("failed to create PID file: %w", err)
	}
	defer bus.RemovePidFile()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
	defer signal.Stop(sigCh)

	go func() {
		select {
		case sig := <-sigCh:
			log.Printf("Received signal %v, shutting down gracefully", sig)
			d.cancel()
		case <-d.ctx.Done():
		}
	}()

	if d.configMgr != nil {
		d.configMgr.OnChange(func(*config.Config) {
			d.notifier.Notify("ASL Bridge", "Config reloaded")
		})
		if err := d.configMgr.StartWatching(d.ctx); err != nil {
			log.Printf("Config watching disabled: %v", err)
		} else {
			defer d.configMgr.Stop()
		}
	}

	if addr := d.getConfig().Metrics.Addr; addr != "" {
		if err := d.serveMetrics(addr); err != nil {
			log.Printf("Metrics endpoint disabled: %v", err)
		}
	}

	// Close the listener when context is done
	go func() {
		<-d.ctx.Done()
		ln.Close()
	}()

	log.Printf("Daemon started, listening on socket")

	for {
		c, err := ln.Accept()
		if err != nil {
			if d.ctx.Err() != nil {
				log.Printf("Shutdown requested")
				d.shutdownPipeline()
				return nil
			}
			log.Printf("Accept error: %v", err)
			return fmt.Errorf("accept failed: %w", err)
		}
		go d.handle(c)
	}
}

func (d *Daemon) serveMetrics(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", d.metrics.Handler())
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	d.mu.Lock()
	d.metricsAddr = ln.Addr()
	d.mu.Unlock()

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("Metrics server error: %v", err)
		}
	}()
	go func() {
		<-d.ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	log.Printf("Metrics available at http://%s/metrics", ln.Addr())
	return nil
}

// MetricsAddr returns the address of the metrics endpoint, or nil.
func (d *Daemon) MetricsAddr() net.Addr {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.metricsAddr
}

func (d *Daemon) shutdownPipeline() {
	d.mu.Lock()
	p := d.pipeline
	d.mu.Unlock()
	if p != nil {
		p.Stop()
	}
}

func (d *Daemon) handle(c net.Conn) {
	defer c.Close()

	line, err := bufio.NewReader(c).ReadString('\n')
	if err != nil {
		log.Printf("Client read error: %v", err)
		fmt.Fprintf(c, "ERR read_error: %v\n", err)
		return
	}
	cmd, arg, ok := bus.ParseRequest(line)
	if !ok {
		fmt.Fprint(c, "ERR empty\n")
		return
	}

	switch cmd {
	case bus.CmdToggle:
		resp, err := d.toggle()
		reply(c, resp, err)
	case bus.CmdMedia:
		if arg == "" {
			fmt.Fprint(c, "ERR missing media path\n")
			return
		}
		err := d.captureMedia(arg)
		reply(c, "OK capturing "+arg, err)
	case bus.CmdStatus:
		d.mu.Lock()
		status := d.status()
		d.mu.Unlock()
		fmt.Fprintf(c, "STATUS status=%s\n", status)
	case bus.CmdResult:
		fmt.Fprintln(c, d.result())
	case bus.CmdCancel:
		reply(c, "OK cancelled", d.cancelSession())
	case bus.CmdLog:
		log.Printf("Client: %s", arg)
		fmt.Fprint(c, "OK received\n")
	case bus.CmdVersion:
		fmt.Fprintf(c, "STATUS proto=%s\n", bus.ProtoVer)
	case bus.CmdQuit:
		fmt.Fprint(c, "OK quitting\n")
		d.cancel()
	default:
		log.Printf("Unknown command: %c", cmd)
		fmt.Fprintf(c, "ERR unknown=%q\n", cmd)
	}
}

func reply(c net.Conn, ok string, err error) {
	if err != nil {
		fmt.Fprintf(c, "ERR %v\n", err)
		return
	}
	fmt.Fprintln(c, ok)
}

// toggle starts microphone capture when idle and finishes it while recording.
func (d *Daemon) toggle() (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	switch d.status() {
	case pipeline.Recording:
		d.send(pipeline.Finish)
		return "OK finishing", nil
	case pipeline.Transcribing, pipeline.Translating:
		return "", ErrBusy
	default:
		if err := d.start(""); err != nil {
			return "", err
		}
		return "OK recording", nil
	}
}

func (d *Daemon) captureMedia(path string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.busy() {
		return ErrBusy
	}
	return d.start(path)
}

func (d *Daemon) cancelSession() error {
	d.mu.Lock()
	p := d.pipeline
	status := d.status()
	d.mu.Unlock()

	switch status {
	case pipeline.Recording:
		d.mu.Lock()
		d.send(pipeline.Cancel)
		d.mu.Unlock()
		p.Stop()
		return nil
	case pipeline.Transcribing, pipeline.Translating:
		p.Stop()
		return nil
	default:
		return errors.New("nothing to cancel")
	}
}

// send delivers an action without blocking if one is already queued.
func (d *Daemon) send(action pipeline.Action) {
	select {
	case d.pipeline.Actions() <- action:
	default:
		log.Printf("Pipeline action %s dropped: another action is pending", action)
	}
}

// start must be called with d.mu held.
func (d *Daemon) start(mediaPath string) error {
	deps, err := d.build(d.getConfig(), mediaPath)
	if err != nil {
		log.Printf("Failed to prepare session: %v", err)
		d.notifier.Error(err.Error())
		return err
	}

	p := pipeline.New(deps)
	p.Run(d.ctx)
	d.pipeline = p
	return nil
}

func (d *Daemon) result() string {
	d.mu.Lock()
	p := d.pipeline
	d.mu.Unlock()

	if p == nil {
		return "ERR no result"
	}
	res := p.Result()
	if res == nil {
		return fmt.Sprintf("RESULT status=%s", p.Status())
	}
	line := fmt.Sprintf("RESULT status=%s session=%s reason=%s transcript=%q video=%q",
		p.Status(), res.SessionID, res.StopReason, res.Transcript, res.VideoPath)
	if err := p.Err(); err != nil {
		line += fmt.Sprintf(" error=%q", err.Error())
	}
	return line
}

func (d *Daemon) buildDeps(cfg *config.Config, mediaPath string) (pipeline.Deps, error) {
	recCfg := cfg.ToRecordingConfig()
	deps := pipeline.Deps{
		Notifier:  d.notifier,
		Metrics:   d.metrics,
		EmptyText: cfg.EmptyText(),
	}

	if mediaPath != "" {
		media, err := recording.OpenMedia(mediaPath, recCfg)
		if err != nil {
			return deps, err
		}
		deps.Source = media
		deps.SourceName = filepath.Base(mediaPath)
		deps.MaxDuration = recCfg.MediaWindow
	} else {
		deps.Source = recording.NewMicSource(recCfg)
		deps.SourceName = "microphone"
		deps.MaxDuration = recCfg.Timeout
	}

	tr, err := transcriber.New(cfg.ToTranscriberConfig())
	if err != nil {
		return deps, fmt.Errorf("transcriber: %w", err)
	}
	deps.Transcriber = tr

	if cfg.IsLLMEnabled() {
		cleanup, err := llm.NewAdapter(cfg.ToLLMConfig())
		if err != nil {
			return deps, fmt.Errorf("llm: %w", err)
		}
		deps.Cleanup = cleanup
	}

	deps.Translator = signvideo.NewClient(cfg.ToSignConfig())

	dir, err := cfg.VideoDir()
	if err != nil {
		return deps, fmt.Errorf("video dir: %w", err)
	}
	deps.Store = signvideo.NewStore(dir)
	deps.Player = signvideo.NewPlayer(cfg.Sign.Player)

	attempts := time.Duration(cfg.Transcription.MaxRetries + 1)
	deps.ProcessTimeout = cfg.Transcription.Timeout*attempts + cfg.Sign.Timeout + 30*time.Second
	return deps, nil
}
