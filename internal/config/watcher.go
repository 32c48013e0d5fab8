package config

import (
	"context"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"verdant/internal/eventbus"
)

const defaultDebounce = 100 * time.Millisecond

// Watcher monitors the config file and republishes it on the bus when
// it changes, so a running session picks up edits without a restart.
type Watcher struct {
	svc      Service
	bus      eventbus.EventBus
	log      zerolog.Logger
	debounce time.Duration

	mu    sync.Mutex
	timer *time.Timer
	wg    sync.WaitGroup
}

// NewWatcher creates a watcher for the service's config path.
func NewWatcher(svc Service, bus eventbus.EventBus, log zerolog.Logger) *Watcher {
	return &Watcher{
		svc:      svc,
		bus:      bus,
		log:      log,
		debounce: defaultDebounce,
	}
}

// Start begins watching until ctx is cancelled.
func (w *Watcher) Start(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := fw.Add(w.svc.Path()); err != nil {
		fw.Close()
		return err
	}

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer fw.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-fw.Events:
				if !ok {
					return
				}
				if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
					w.scheduleReload()
				}
			case err, ok := <-fw.Errors:
				if !ok {
					return
				}
				w.log.Warn().Err(err).Msg("config watcher error")
			}
		}
	}()
	return nil
}

// Wait blocks until the watch goroutine has exited.
func (w *Watcher) Wait() {
	w.wg.Wait()
}

// scheduleReload debounces bursts of writes from editors that save in
// multiple steps.
func (w *Watcher) scheduleReload() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.reload)
}

func (w *Watcher) reload() {
	cfg, err := w.svc.LoadFromPath(w.svc.Path())
	if err != nil {
		w.log.Warn().Err(err).Msg("failed to reload config")
		return
	}
	w.log.Info().Str("server_url", cfg.ServerURL).Msg("config reloaded")
	w.bus.Publish(eventbus.ConfigChangedEvent{
		ServerURL:          cfg.ServerURL,
		Timezone:           cfg.Timezone,
		ShowCareTimes:      cfg.UISettings.ShowCareTimes,
		ConfirmBulkActions: cfg.UISettings.ConfirmBulkActions,
		ShowArchived:       cfg.UISettings.ShowArchived,
	})
}
