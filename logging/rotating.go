package logging

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

const (
	filePrefix         = "interactions-"
	defaultMaxFileSize = 100 * 1024 * 1024
	cleanupInterval    = 24 * time.Hour
)

var numberedFilePattern = regexp.MustCompile(`^interactions-\d{4}-W\d{2}_(\d{2})\.log$`)

// RotatingLogger is an io.Writer that starts a new file every ISO week and
// whenever the current file would exceed maxFileSize. Files older than the
// retention period are removed by a background sweep.
type RotatingLogger struct {
	logDir      string
	currentFile *os.File
	currentWeek string
	retention   time.Duration
	maxFileSize int64
	currentSize atomic.Int64
	mu          sync.Mutex
	cancel      context.CancelFunc
	sweepDone   chan struct{}
}

// NewRotatingLogger opens the file for the current week and starts the
// retention sweep. maxFileSize <= 0 uses the 100MB default.
func NewRotatingLogger(logDir string, retentionWeeks int, maxFileSize int64) (*RotatingLogger, error) {
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory %s: %w", logDir, err)
	}
	if retentionWeeks <= 0 {
		retentionWeeks = 4
	}
	if maxFileSize <= 0 {
		maxFileSize = defaultMaxFileSize
	}

	ctx, cancel := context.WithCancel(context.Background())
	rl := &RotatingLogger{
		logDir:      logDir,
		retention:   time.Duration(retentionWeeks) * 7 * 24 * time.Hour,
		maxFileSize: maxFileSize,
		cancel:      cancel,
		sweepDone:   make(chan struct{}),
	}

	rl.mu.Lock()
	err := rl.rotate(weekKey(time.Now()), false)
	rl.mu.Unlock()
	if err != nil {
		cancel()
		return nil, err
	}

	go rl.sweepLoop(ctx)
	return rl, nil
}

// weekKey returns the ISO week in YYYY-Www form
func weekKey(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}

// rotate switches to the right file for week. Caller holds mu.
func (rl *RotatingLogger) rotate(week string, full bool) error {
	if rl.currentFile != nil {
		if err := rl.currentFile.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "failed to close log file during rotation: %v\n", err)
		}
		rl.currentFile = nil
	}

	name := rl.pickFile(week, full)
	path := filepath.Join(rl.logDir, name)
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log file %s: %w", path, err)
	}

	rl.currentFile = file
	rl.currentWeek = week
	rl.currentSize.Store(0)
	if info, err := file.Stat(); err == nil {
		rl.currentSize.Store(info.Size())
	}
	return nil
}

// pickFile returns the base file for the week while it has room, then the
// highest numbered overflow file, then a fresh numbered file.
func (rl *RotatingLogger) pickFile(week string, full bool) string {
	base := filePrefix + week + ".log"
	if !full {
		info, err := os.Stat(filepath.Join(rl.logDir, base))
		if err != nil || info.Size() < rl.maxFileSize {
			return base
		}
	}

	highest := 0
	var highestSize int64
	matches, _ := filepath.Glob(filepath.Join(rl.logDir, filePrefix+week+"_??.log"))
	for _, match := range matches {
		m := numberedFilePattern.FindStringSubmatch(filepath.Base(match))
		if len(m) < 2 {
			continue
		}
		num, _ := strconv.Atoi(m[1])
		if num > highest {
			highest = num
			highestSize = 0
			if info, err := os.Stat(match); err == nil {
				highestSize = info.Size()
			}
		}
	}

	if highest > 0 && !full && highestSize < rl.maxFileSize {
		return fmt.Sprintf("%s%s_%02d.log", filePrefix, week, highest)
	}
	return fmt.Sprintf("%s%s_%02d.log", filePrefix, week, highest+1)
}

// Write implements io.Writer
func (rl *RotatingLogger) Write(p []byte) (int, error) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	week := weekKey(time.Now())
	switch {
	case rl.currentWeek != week:
		if err := rl.rotate(week, false); err != nil {
			return 0, err
		}
	case rl.currentSize.Load()+int64(len(p)) > rl.maxFileSize && rl.currentSize.Load() > 0:
		if err := rl.rotate(week, true); err != nil {
			return 0, err
		}
	}

	if rl.currentFile == nil {
		return 0, fmt.Errorf("no log file available")
	}

	n, err := rl.currentFile.Write(p)
	rl.currentSize.Add(int64(n))
	return n, err
}

func (rl *RotatingLogger) sweepLoop(ctx context.Context) {
	defer close(rl.sweepDone)

	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := rl.removeExpired(time.Now()); err != nil {
				fmt.Fprintf(os.Stderr, "failed to clean up old logs: %v\n", err)
			}
		}
	}
}

// removeExpired deletes log files last modified before now minus retention
func (rl *RotatingLogger) removeExpired(now time.Time) (int, error) {
	entries, err := os.ReadDir(rl.logDir)
	if err != nil {
		return 0, fmt.Errorf("failed to read log directory: %w", err)
	}

	cutoff := now.Add(-rl.retention)
	removed := 0
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, filePrefix) || !strings.HasSuffix(name, ".log") {
			continue
		}
		info, err := entry.Info()
		if err != nil || !info.ModTime().Before(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(rl.logDir, name)); err == nil {
			removed++
		}
	}
	return removed, nil
}

// Close stops the sweep and closes the current file
func (rl *RotatingLogger) Close() error {
	rl.cancel()
	select {
	case <-rl.sweepDone:
	case <-time.After(time.Second):
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()

	if rl.currentFile == nil {
		return nil
	}
	err := rl.currentFile.Close()
	rl.currentFile = nil
	return err
}

// SetupLogger builds a logger writing text to stdout and JSON to a rotating
// file. If the file sink cannot be created it logs to the console only.
func SetupLogger(opts Options) (*slog.Logger, *RotatingLogger) {
	handlerOpts := &slog.HandlerOptions{Level: opts.Level}
	consoleHandler := slog.NewTextHandler(os.Stdout, handlerOpts)

	if opts.Dir == "" {
		return slog.New(consoleHandler), nil
	}

	rotating, err := NewRotatingLogger(opts.Dir, opts.RetentionWeeks, opts.MaxFileSize)
	if err != nil {
		logger := slog.New(consoleHandler)
		logger.Error("Failed to initialize rotating logger", "error", err)
		return logger, nil
	}

	fileHandler := slog.NewJSONHandler(rotating, handlerOpts)
	return slog.New(&multiHandler{handlers: []slog.Handler{consoleHandler, fileHandler}}), rotating
}

// multiHandler fans records out to several handlers
type multiHandler struct {
	handlers []slog.Handler
}

func (m *multiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range m.handlers {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (m *multiHandler) Handle(ctx context.Context, r slog.Record) error {
	for _, h := range m.handlers {
		if h.Enabled(ctx, r.Level) {
			if err := h.Handle(ctx, r.Clone()); err != nil {
				return err
			}
		}
	}
	return nil
}

func (m *multiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	handlers := make([]slog.Handler, len(m.handlers))
	for i, h := range m.handlers {
		handlers[i] = h.WithAttrs(attrs)
	}
	return &multiHandler{handlers: handlers}
}

func (m *multiHandler) WithGroup(name string) slog.Handler {
	handlers := make([]slog.Handler, len(m.handlers))
	for i, h := range m.handlers {
		handlers[i] = h.WithGroup(name)
	}
	return &multiHandler{handlers: handlers}
}
