package scanlog

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const journalPrefix = "journal_"

// Journal appends command outcomes to a sqlite DB that rolls over each
// natural month: <logs>/journal_YYYYMM.db.
type Journal struct {
	folder string
	now    func() time.Time

	mu    sync.Mutex
	db    *gorm.DB
	dbKey string
}

func OpenJournalDB(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&JournalEntry{}); err != nil {
		return nil, err
	}
	return db, nil
}

func NewJournal(folder string) *Journal {
	return &Journal{folder: folder, now: time.Now}
}

func (j *Journal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.closeLocked()
}

func (j *Journal) closeLocked() error {
	if j.db == nil {
		return nil
	}
	sqlDB, err := j.db.DB()
	if err != nil {
		return err
	}
	err = sqlDB.Close()
	j.db = nil
	j.dbKey = ""
	return err
}

func (j *Journal) ensureDBForNow() error {
	now := j.now()
	key := fmt.Sprintf("%04d%02d", now.Year(), int(now.Month()))
	if j.db != nil && j.dbKey == key {
		return nil
	}
	// switch DB per natural month
	_ = j.closeLocked()
	if err := os.MkdirAll(j.folder, 0o755); err != nil {
		return err
	}
	db, err := OpenJournalDB(filepath.Join(j.folder, journalPrefix+key+".db"))
	if err != nil {
		return err
	}
	j.db = db
	j.dbKey = key
	return nil
}

func (j *Journal) Record(e JournalEntry) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if err := j.ensureDBForNow(); err != nil {
		return err
	}
	return j.db.Create(&e).Error
}

// Recent returns up to limit entries, newest first, reading the current
// month and earlier months until the limit is reached.
func (j *Journal) Recent(limit int) ([]JournalEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	if err := j.ensureDBForNow(); err != nil {
		return nil, err
	}

	var out []JournalEntry
	if err := j.db.Order("id desc").Limit(limit).Find(&out).Error; err != nil {
		return nil, err
	}
	older, err := listMonthlyDBs(j.folder, journalPrefix)
	if err != nil {
		return nil, err
	}
	current := filepath.Join(j.folder, journalPrefix+j.dbKey+".db")
	for i := len(older) - 1; i >= 0 && len(out) < limit; i-- {
		if older[i] >= current {
			continue
		}
		entries, err := readJournalDB(older[i], limit-len(out))
		if err != nil {
			return nil, err
		}
		out = append(out, entries...)
	}
	return out, nil
}

func readJournalDB(path string, limit int) ([]JournalEntry, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	defer sqlDB.Close()
	var entries []JournalEntry
	if err := db.Order("id desc").Limit(limit).Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// listMonthlyDBs returns <prefix><YYYYMM>.db files in folder, oldest first.
func listMonthlyDBs(folder string, prefix string) ([]string, error) {
	candidates, err := filepath.Glob(filepath.Join(folder, prefix+"*.db"))
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(candidates))
	for _, p := range candidates {
		yyyymm := strings.TrimSuffix(strings.TrimPrefix(filepath.Base(p), prefix), ".db")
		if len(yyyymm) != 6 {
			continue
		}
		if _, err := time.Parse("200601", yyyymm); err != nil {
			continue
		}
		out = append(out, p)
	}
	sort.Strings(out)
	return out, nil
}
