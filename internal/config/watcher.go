package config

import (
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/go-logr/logr"
	"github.com/spf13/viper"
)

// Watcher re-reads the configuration file on change and hands every new
// generation to its subscribers, in subscription order.
type Watcher struct {
	mu          sync.Mutex
	subscribers []func(Config)

	logger *logr.Logger
}

func NewWatcher() *Watcher {
	return &Watcher{}
}

func (w *Watcher) WithLogger(logger logr.Logger) *Watcher {
	w.logger = &logger

	return w
}

func (w *Watcher) Subscribe(fn func(Config)) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.subscribers = append(w.subscribers, fn)
}

// Start hooks the watcher on viper. It only has an effect when a config file was read.
func (w *Watcher) Start() {
	viper.OnConfigChange(w.onChange)
	viper.WatchConfig()
}

func (w *Watcher) onChange(event fsnotify.Event) {
	if w.logger != nil {
		w.logger.V(1).Info("Config file changed", "file", event.Name, "op", event.Op.String())
	}

	next := Config{}

	err := viper.Unmarshal(&next)
	if err != nil {
		if w.logger != nil {
			w.logger.Error(err, "Failed to unmarshal changed config, keeping previous one")
		}

		return
	}

	w.Notify(next)
}

// Notify pushes a configuration generation to all subscribers.
func (w *Watcher) Notify(c Config) {
	w.mu.Lock()
	subscribers := make([]func(Config), len(w.subscribers))
	copy(subscribers, w.subscribers)
	w.mu.Unlock()

	for _, fn := range subscribers {
		fn(c)
	}
}
