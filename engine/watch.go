package engine

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const reloadDebounce = 100 * time.Millisecond

// ConfigWatcher reloads a config file whenever it changes on disk. The
// directory is watched rather than the file so editors that save by
// rename keep working.
type ConfigWatcher struct {
	path    string
	watcher *fsnotify.Watcher
	Configs chan *Config
	Errors  chan error
	closeCh chan struct{}
	done    chan struct{}
	once    sync.Once
}

func WatchConfig(path string) (*ConfigWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		_ = w.Close()
		return nil, err
	}

	cw := &ConfigWatcher{
		path:    abs,
		watcher: w,
		Configs: make(chan *Config, 4),
		Errors:  make(chan error, 1),
		closeCh: make(chan struct{}),
		done:    make(chan struct{}),
	}
	go cw.run()
	return cw, nil
}

func (cw *ConfigWatcher) Close() error {
	var err error
	cw.once.Do(func() {
		close(cw.closeCh)
		err = cw.watcher.Close()
		<-cw.done
		close(cw.Configs)
		close(cw.Errors)
	})
	return err
}

// run reloads once writes have been quiet for reloadDebounce, so a file
// saved in several writes is read whole.
func (cw *ConfigWatcher) run() {
	defer close(cw.done)
	timer := time.NewTimer(reloadDebounce)
	timer.Stop()
	defer timer.Stop()
	for {
		select {
		case event, ok := <-cw.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if filepath.Clean(event.Name) != cw.path {
				continue
			}
			timer.Reset(reloadDebounce)
		case <-timer.C:
			cfg, err := LoadConfig(cw.path)
			if err != nil {
				cw.sendErr(err)
				continue
			}
			select {
			case cw.Configs <- cfg:
			case <-cw.closeCh:
				return
			}
		case err, ok := <-cw.watcher.Errors:
			if !ok {
				return
			}
			cw.sendErr(err)
		case <-cw.closeCh:
			return
		}
	}
}

// sendErr drops the error if the previous one has not been read yet.
func (cw *ConfigWatcher) sendErr(err error) {
	select {
	case cw.Errors <- err:
	default:
	}
}
