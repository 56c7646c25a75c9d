package tlsroots

import (
	"crypto/tls"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// CertReloader serves the listener certificate and reloads it when the
// certificate or key file changes on disk.
type CertReloader struct {
	certFile string
	keyFile  string

	mu   sync.RWMutex
	cert *tls.Certificate

	watcher  *fsnotify.Watcher
	done     chan struct{}
	stopOnce sync.Once
	logger   *slog.Logger

	// Debounce settings to avoid multiple reloads
	debounce   time.Duration
	lastReload time.Time
	reloadMu   sync.Mutex
}

// ReloaderOption configures a CertReloader.
type ReloaderOption func(*CertReloader)

// WithLogger sets the logger for the reloader.
func WithLogger(logger *slog.Logger) ReloaderOption {
	return func(r *CertReloader) {
		r.logger = logger
	}
}

// WithDebounce sets the debounce duration.
func WithDebounce(d time.Duration) ReloaderOption {
	return func(r *CertReloader) {
		r.debounce = d
	}
}

// NewCertReloader loads the key pair and prepares the file watch. Call
// StartAsync to begin reloading.
func NewCertReloader(certFile, keyFile string, opts ...ReloaderOption) (*CertReloader, error) {
	r := &CertReloader{
		certFile: certFile,
		keyFile:  keyFile,
		done:     make(chan struct{}),
		logger:   slog.Default(),
		debounce: 500 * time.Millisecond,
	}

	for _, opt := range opts {
		opt(r)
	}

	if err := r.reload(); err != nil {
		return nil, fmt.Errorf("tlsroots: initial load: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("tlsroots: create watcher: %w", err)
	}

	// Watch directories rather than files so editor-style renames are seen.
	dirs := map[string]bool{filepath.Dir(certFile): true, filepath.Dir(keyFile): true}
	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			watcher.Close()
			return nil, fmt.Errorf("tlsroots: watch dir %s: %w", dir, err)
		}
	}
	r.watcher = watcher

	return r, nil
}

// Start reloads on file changes until Stop is called.
func (r *CertReloader) Start() {
	r.logger.Info("certificate watcher started",
		"cert_file", r.certFile,
		"key_file", r.keyFile,
	)

	certBase := filepath.Base(r.certFile)
	keyBase := filepath.Base(r.keyFile)

	for {
		select {
		case event, ok := <-r.watcher.Events:
			if !ok {
				return
			}

			changedBase := filepath.Base(event.Name)
			if changedBase != certBase && changedBase != keyBase {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			r.logger.Debug("certificate file changed",
				"file", event.Name,
				"op", event.Op.String(),
			)

			if err := r.debouncedReload(); err != nil {
				// Keep serving the previous certificate.
				r.logger.Error("certificate reload failed",
					"error", err,
					"cert_file", r.certFile,
				)
			}

		case err, ok := <-r.watcher.Errors:
			if !ok {
				return
			}
			r.logger.Error("certificate watcher error", "error", err)

		case <-r.done:
			return
		}
	}
}

// StartAsync starts watching in a goroutine.
func (r *CertReloader) StartAsync() {
	go r.Start()
}

// Stop stops watching. It is safe to call more than once.
func (r *CertReloader) Stop() error {
	var err error
	r.stopOnce.Do(func() {
		close(r.done)
		err = r.watcher.Close()
	})
	return err
}

// GetCertificate implements tls.Config.GetCertificate.
func (r *CertReloader) GetCertificate(*tls.ClientHelloInfo) (*tls.Certificate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.cert, nil
}

// ServerTLSConfig returns a listener config backed by the reloader.
func (r *CertReloader) ServerTLSConfig() *tls.Config {
	return &tls.Config{
		GetCertificate: r.GetCertificate,
		MinVersion:     tls.VersionTLS12,
	}
}

// debouncedReload reloads the certificate with debouncing.
func (r *CertReloader) debouncedReload() error {
	r.reloadMu.Lock()
	defer r.reloadMu.Unlock()

	now := time.Now()
	if now.Sub(r.lastReload) < r.debounce {
		return nil
	}
	r.lastReload = now

	// Small delay to ensure file write is complete
	time.Sleep(100 * time.Millisecond)

	return r.reload()
}

func (r *CertReloader) reload() error {
	cert, err := tls.LoadX509KeyPair(r.certFile, r.keyFile)
	if err != nil {
		return fmt.Errorf("load key pair: %w", err)
	}

	r.mu.Lock()
	r.cert = &cert
	r.mu.Unlock()

	r.logger.Info("certificate loaded", "cert_file", r.certFile)

	return nil
}
