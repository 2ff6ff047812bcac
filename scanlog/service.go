package scanlog

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Code is the status carried by every command result.
type Code int

const (
	CodeSuccess   Code = 200
	CodeFail      Code = 400
	CodeNotFound  Code = 404
	CodeDuplicate Code = 409
	CodeError     Code = 500
)

func (c Code) String() string {
	switch c {
	case CodeSuccess:
		return "SUCCESS"
	case CodeFail:
		return "FAIL"
	case CodeNotFound:
		return "NOT_FOUND"
	case CodeDuplicate:
		return "DUPLICATE"
	default:
		return "INTERNAL_ERROR"
	}
}

// Result is the envelope returned to the UI layer.
type Result struct {
	Code    Code   `json:"code"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func (r Result) OK() bool {
	return r.Code == CodeSuccess
}

var errExportFailed = errors.New("export failed")

// Service is the command surface. Every command returns a Result; errors are
// mapped to codes here and never cross the boundary.
type Service struct {
	settingsPath string
	log          *zap.SugaredLogger
	now          func() time.Time
	loc          *time.Location

	mu       sync.RWMutex
	settings Settings
	store    *Store
	journal  *Journal
	// lock, when held, follows the working directory across settings saves.
	lock *InstanceLock
}

func NewService(settingsPath string, settings Settings, log *zap.SugaredLogger) (*Service, error) {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	s := &Service{
		settingsPath: settingsPath,
		log:          log,
		now:          time.Now,
		loc:          time.Local,
		settings:     settings,
	}
	store, journal, err := s.open(settings)
	if err != nil {
		return nil, err
	}
	s.store = store
	s.journal = journal
	return s, nil
}

func (s *Service) open(settings Settings) (*Store, *Journal, error) {
	layout := Layout{WorkDir: settings.WorkDir}
	store, err := OpenStore(layout, s.log)
	if err != nil {
		return nil, nil, fmt.Errorf("open store %s: %w", settings.WorkDir, err)
	}
	return store, NewJournal(layout.LogsDir()), nil
}

// HoldInstanceLock hands the working directory lock to the service. A
// settings save that changes the working directory moves it, and Close
// releases it.
func (s *Service) HoldInstanceLock(l *InstanceLock) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lock = l
}

func (s *Service) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return errors.Join(s.journal.Close(), s.lock.Release())
}

func (s *Service) Store() *Store {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.store
}

// call carries per-command context into run.
type call struct {
	store       *Store
	lang        string
	objectValue string
	scanDate    string

	// quiet commands are not journaled.
	quiet     bool
	duplicate msgKey
	notFound  msgKey
	invalid   msgKey
}

func (s *Service) run(command string, c call, fn func(c *call) (any, error)) Result {
	start := s.now()
	s.mu.RLock()
	c.store = s.store
	c.lang = s.settings.Language
	s.mu.RUnlock()

	data, err := fn(&c)
	res := Result{Code: CodeSuccess, Message: T(c.lang, msgSuccess), Data: data}
	if err != nil {
		res.Code, res.Message = classify(err, &c)
		if !errors.Is(err, errExportFailed) {
			res.Data = nil
		}
		s.log.Warnf("command failed command=%q object=%q date=%q code=%s err=%v",
			command, c.objectValue, c.scanDate, res.Code, err)
	} else {
		s.log.Debugf("command ok command=%q object=%q date=%q", command, c.objectValue, c.scanDate)
	}

	elapsed := s.now().Sub(start)
	commandsTotal.WithLabelValues(command, res.Code.String()).Inc()
	commandDuration.WithLabelValues(command).Observe(elapsed.Seconds())

	if !c.quiet {
		entry := JournalEntry{
			RequestID:   uuid.NewString(),
			At:          start,
			Command:     command,
			ObjectValue: c.objectValue,
			ScanDate:    c.scanDate,
			Code:        int(res.Code),
			ElapsedMs:   elapsed.Milliseconds(),
		}
		if err != nil {
			entry.Message = err.Error()
		}
		// read after fn: save-settings may have swapped the journal
		s.mu.RLock()
		journal := s.journal
		s.mu.RUnlock()
		if jerr := journal.Record(entry); jerr != nil {
			s.log.Warnf("journal write failed command=%q err=%v", command, jerr)
		}
	}
	return res
}

func classify(err error, c *call) (Code, string) {
	msg := func(key msgKey) string {
		if key == "" {
			return T(c.lang, msgFailed)
		}
		return T(c.lang, key)
	}
	switch {
	case errors.Is(err, ErrDuplicate):
		return CodeDuplicate, msg(c.duplicate)
	case errors.Is(err, ErrNotFound):
		return CodeNotFound, msg(c.notFound)
	case errors.Is(err, ErrPartitionBusy):
		return CodeError, T(c.lang, msgPartitionBusy)
	case errors.Is(err, errExportFailed):
		return CodeFail, T(c.lang, msgExportFailed) + ": " + strings.TrimPrefix(err.Error(), errExportFailed.Error()+": ")
	case errors.Is(err, ErrBarcodeFormat):
		return CodeFail, T(c.lang, msgInvalidBarcode)
	case errors.Is(err, ErrLocked):
		return CodeFail, T(c.lang, msgFailed) + ": " + err.Error()
	case errors.Is(err, ErrInvalid):
		if c.invalid != "" {
			return CodeFail, T(c.lang, c.invalid)
		}
		return CodeFail, T(c.lang, msgFailed) + ": " + err.Error()
	default:
		return CodeError, T(c.lang, msgFailed) + ": " + err.Error()
	}
}

func (s *Service) SaveObject(obj ScanObject) Result {
	return s.run("save-scan-object", call{objectValue: obj.Value, duplicate: msgDuplicateScanObject, notFound: msgScanObjectNotExist},
		func(c *call) (any, error) {
			saved, err := c.store.SaveObject(obj)
			if err != nil {
				return nil, err
			}
			c.objectValue = saved.Value
			return saved, nil
		})
}

func (s *Service) ListObjects() Result {
	return s.run("list-scan-objects", call{quiet: true}, func(c *call) (any, error) {
		return c.store.Catalog().Objects, nil
	})
}

func (s *Service) DeleteObject(id int) Result {
	return s.run("delete-scan-object", call{notFound: msgScanObjectNotExist}, func(c *call) (any, error) {
		removed, err := c.store.DeleteObject(id)
		if err != nil {
			return nil, err
		}
		c.objectValue = removed.Value
		return removed, nil
	})
}

func (s *Service) SaveRule(rule ScanRule) Result {
	return s.run("save-scan-rule", call{duplicate: msgDuplicateScanRule, notFound: msgScanRuleNotExist},
		func(c *call) (any, error) {
			return c.store.SaveRule(rule)
		})
}

func (s *Service) ListRules() Result {
	return s.run("list-scan-rules", call{quiet: true}, func(c *call) (any, error) {
		return c.store.Catalog().Rules, nil
	})
}

func (s *Service) DeleteRule(id int) Result {
	return s.run("delete-scan-rule", call{notFound: msgScanRuleNotExist}, func(c *call) (any, error) {
		return c.store.DeleteRule(id)
	})
}

// SaveRecord appends qrcode to the (object, date) partition. A zero at means
// now; an empty date means the local date of at.
func (s *Service) SaveRecord(objectID int, date string, qrcode string, at time.Time) Result {
	if at.IsZero() {
		at = s.now()
	}
	if date == "" {
		date = FormatDate(at)
	}
	return s.run("save-scan-record", call{
		scanDate:  date,
		duplicate: msgDuplicateQRCode,
		notFound:  msgScanObjectNotExist,
	}, func(c *call) (any, error) {
		var rec ScanRecord
		err := c.store.WithObject(objectID, func(obj ScanObject) error {
			c.objectValue = obj.Value
			code := NormalizeBarcode(qrcode)
			if code == "" {
				return fmt.Errorf("%w: empty qrcode", ErrInvalid)
			}
			if err := ValidateBarcode(obj, code, at.In(s.loc)); err != nil {
				return err
			}
			var err error
			rec, err = c.store.AppendRecord(obj, date, ScanRecord{
				ObjectName:  obj.Name,
				ObjectValue: obj.Value,
				QRCode:      code,
				Date:        at.UnixMilli(),
			})
			return err
		})
		if errors.Is(err, ErrDuplicate) {
			duplicatesRejected.Inc()
		}
		if err != nil {
			return nil, err
		}
		recordsSaved.Inc()
		return rec, nil
	})
}

func (s *Service) QueryPage(objectID int, date string, q PageQuery) Result {
	if date == "" {
		date = FormatDate(s.now())
	}
	return s.run("query-page", call{scanDate: date, quiet: true, notFound: msgScanObjectNotExist},
		func(c *call) (any, error) {
			var page PageResult
			err := c.store.WithObject(objectID, func(obj ScanObject) error {
				c.objectValue = obj.Value
				p, err := c.store.Partition(obj, date)
				if err != nil {
					return err
				}
				page = Page(p.Records, q)
				return nil
			})
			if err != nil {
				return nil, err
			}
			return page, nil
		})
}

func (s *Service) Snapshot(objectID int, date string) Result {
	if date == "" {
		date = FormatDate(s.now())
	}
	return s.run("get-snapshot", call{scanDate: date, quiet: true, notFound: msgScanObjectNotExist},
		func(c *call) (any, error) {
			var snap Snapshot
			err := c.store.WithObject(objectID, func(obj ScanObject) error {
				c.objectValue = obj.Value
				p, err := c.store.Partition(obj, date)
				if err != nil {
					return err
				}
				snap = ComputeSnapshot(p.Records, s.loc)
				return nil
			})
			if err != nil {
				return nil, err
			}
			return snap, nil
		})
}

// History lists partitions on disk for year; an empty year is the current one.
func (s *Service) History(objectID int, year string) Result {
	if year == "" {
		year = strconv.Itoa(s.now().Year())
	}
	return s.run("list-history", call{quiet: true, notFound: msgScanObjectNotExist}, func(c *call) (any, error) {
		obj, err := c.store.Object(objectID)
		if err != nil {
			return nil, err
		}
		c.objectValue = obj.Value
		return c.store.Layout().History(obj.Value, year)
	})
}

// ExportRecords writes one spreadsheet per date. Any failed date makes the
// result FAIL; the outcomes of every date are returned as data either way.
func (s *Service) ExportRecords(objectID int, dates []string) Result {
	return s.run("export-records", call{scanDate: strings.Join(dates, ","), notFound: msgScanObjectNotExist},
		func(c *call) (any, error) {
			if len(dates) == 0 {
				return nil, fmt.Errorf("%w: no dates to export", ErrInvalid)
			}
			var outcomes []ExportOutcome
			err := c.store.WithObject(objectID, func(obj ScanObject) error {
				c.objectValue = obj.Value
				outcomes = c.store.ExportPartitions(obj, dates, c.lang)
				return nil
			})
			if err != nil {
				return nil, err
			}
			var failed []string
			for _, o := range outcomes {
				if !o.OK() {
					failed = append(failed, o.Date)
				}
			}
			if len(failed) > 0 {
				return outcomes, fmt.Errorf("%w: %s", errExportFailed, strings.Join(failed, ", "))
			}
			return outcomes, nil
		})
}

// DownloadsDir returns (and creates) the export folder of the object.
func (s *Service) DownloadsDir(objectID int) Result {
	return s.run("downloads-dir", call{quiet: true, notFound: msgScanObjectNotExist}, func(c *call) (any, error) {
		obj, err := c.store.Object(objectID)
		if err != nil {
			return nil, err
		}
		c.objectValue = obj.Value
		dir, err := c.store.Layout().DownloadsDir(obj.Name)
		if err != nil {
			return nil, err
		}
		if err := EnsureDir(dir); err != nil {
			return nil, err
		}
		return dir, nil
	})
}

func (s *Service) ExportWorkingDirectory(dest string) Result {
	return s.run("export-working-directory", call{invalid: msgExportSourceFailed}, func(c *call) (any, error) {
		res, err := c.store.Layout().Backup(dest)
		if err != nil {
			return nil, err
		}
		s.log.Infof("working directory exported path=%q files=%d bytes=%d", res.Path, res.Files, res.Bytes)
		return res, nil
	})
}

func (s *Service) GetSettings() Result {
	return s.run("get-settings", call{quiet: true}, func(c *call) (any, error) {
		return s.Settings(), nil
	})
}

func (s *Service) Settings() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings
}

// SaveSettings persists the patched settings and re-opens the engine on the
// (possibly new) working directory.
func (s *Service) SaveSettings(p SettingsPatch) Result {
	return s.run("save-settings", call{}, func(c *call) (any, error) {
		return s.applySettings(p)
	})
}

func (s *Service) applySettings(p SettingsPatch) (Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.settings.Apply(p)
	if err := next.Validate(); err != nil {
		return Settings{}, err
	}
	moved := next.WorkDir != s.settings.WorkDir
	var lock *InstanceLock
	if moved && s.lock != nil {
		var err error
		if lock, err = AcquireInstanceLock(next.WorkDir); err != nil {
			return Settings{}, fmt.Errorf("lock %s: %w", next.WorkDir, err)
		}
	}
	store, journal, err := s.open(next)
	if err != nil {
		_ = lock.Release()
		return Settings{}, err
	}
	if err := SaveSettings(s.settingsPath, next); err != nil {
		_ = journal.Close()
		_ = lock.Release()
		return Settings{}, fmt.Errorf("save settings: %w", err)
	}
	if err := s.journal.Close(); err != nil {
		s.log.Warnf("close journal err=%v", err)
	}
	s.store.Evict()
	if lock != nil {
		if err := s.lock.Release(); err != nil {
			s.log.Warnf("release lock dir=%q err=%v", s.settings.WorkDir, err)
		}
		s.lock = lock
	}
	if moved {
		s.log.Infof("working directory changed from=%q to=%q", s.settings.WorkDir, next.WorkDir)
	}
	s.settings = next
	s.store = store
	s.journal = journal
	return next, nil
}

func (s *Service) Journal(limit int) Result {
	return s.run("journal", call{quiet: true}, func(c *call) (any, error) {
		s.mu.RLock()
		journal := s.journal
		s.mu.RUnlock()
		return journal.Recent(limit)
	})
}
