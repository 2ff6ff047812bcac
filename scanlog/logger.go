package scanlog

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// dailyFile appends to <dir>/<YYYY-MM-DD>.log, switching files when the local
// date changes.
type dailyFile struct {
	dir string
	now func() time.Time

	mu   sync.Mutex
	day  string
	file *os.File
}

func newDailyFile(dir string) *dailyFile {
	return &dailyFile{dir: dir, now: time.Now}
}

func (d *dailyFile) Write(p []byte) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	day := d.now().Format(DateLayout)
	if d.file == nil || d.day != day {
		if d.file != nil {
			_ = d.file.Close()
			d.file = nil
		}
		if err := os.MkdirAll(d.dir, 0o755); err != nil {
			return 0, err
		}
		f, err := os.OpenFile(filepath.Join(d.dir, day+".log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return 0, err
		}
		d.file = f
		d.day = day
	}
	return d.file.Write(p)
}

func (d *dailyFile) Sync() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.file == nil {
		return nil
	}
	return d.file.Sync()
}

func (d *dailyFile) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.file == nil {
		return nil
	}
	err := d.file.Close()
	d.file = nil
	return err
}

// NewLogger tees console output with the operational log under
// <workDir>/logs. The returned func flushes and closes the file.
func NewLogger(workDir string, debug bool) (*zap.SugaredLogger, func() error) {
	level := zap.NewAtomicLevelAt(zap.InfoLevel)
	if debug {
		level.SetLevel(zap.DebugLevel)
	}

	consoleCfg := zap.NewProductionEncoderConfig()
	if debug {
		consoleCfg = zap.NewDevelopmentEncoderConfig()
	}
	consoleCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	fileCfg := zap.NewProductionEncoderConfig()
	fileCfg.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05")
	fileCfg.ConsoleSeparator = " "

	file := newDailyFile(Layout{WorkDir: workDir}.LogsDir())
	core := zapcore.NewTee(
		zapcore.NewCore(zapcore.NewConsoleEncoder(consoleCfg), zapcore.Lock(os.Stderr), level),
		zapcore.NewCore(zapcore.NewConsoleEncoder(fileCfg), file, level),
	)
	logger := zap.New(core, zap.AddCaller())
	return logger.Sugar(), func() error {
		_ = logger.Sync()
		return file.Close()
	}
}
