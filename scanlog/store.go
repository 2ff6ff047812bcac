package scanlog

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"sync"

	"github.com/EagleChen/mapmutex"
	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
)

type partitionKey struct {
	ObjectID int
	Date     string
}

type cachedPartition struct {
	path string
	doc  Partition
}

// Store owns the in-memory catalog and the single active partition.
// Every mutation is a whole-document rewrite.
type Store struct {
	layout Layout
	log    *zap.SugaredLogger

	mu      sync.RWMutex
	catalog Catalog

	// active holds at most one partition: requesting another evicts it.
	active *lru.Cache[partitionKey, *cachedPartition]
	// locks serializes read-modify-write cycles per partition path.
	locks *mapmutex.Mutex
}

func OpenStore(layout Layout, log *zap.SugaredLogger) (*Store, error) {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	active, err := lru.New[partitionKey, *cachedPartition](1)
	if err != nil {
		return nil, err
	}
	s := &Store{
		layout: layout,
		log:    log,
		active: active,
		// maxRetry, maxDelay(ns), baseDelay(ns), factor, jitter: gives up after ~10s
		locks: mapmutex.NewCustomizedMapMutex(200, 50_000_000, 1_000, 1.5, 0.2),
	}
	if err := s.LoadCatalog(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) Layout() Layout {
	return s.layout
}

// LoadCatalog reads base.json, or writes the built-in default catalog when the
// file does not exist yet.
func (s *Store) LoadCatalog() error {
	if err := EnsureDir(s.layout.DataDir()); err != nil {
		return err
	}
	cat, created, err := loadOrCreate(s.layout.CatalogPath(), defaultCatalog)
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}
	if created {
		s.log.Infof("catalog initialized path=%q", s.layout.CatalogPath())
	}
	s.mu.Lock()
	s.catalog = cat
	s.mu.Unlock()
	return nil
}

// Catalog returns a copy of the catalog; mutate through commitCatalog.
func (s *Store) Catalog() Catalog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneCatalog(s.catalog)
}

func (s *Store) Object(id int) (ScanObject, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.objectLocked(id)
}

// WithObject runs fn with the object while holding the catalog read lock, so
// a rename of the object's directory cannot happen until fn returns. fn may
// use the partition methods but must not call back into catalog methods.
func (s *Store) WithObject(id int, fn func(ScanObject) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	obj, err := s.objectLocked(id)
	if err != nil {
		return err
	}
	return fn(obj)
}

func (s *Store) objectLocked(id int) (ScanObject, error) {
	for _, o := range s.catalog.Objects {
		if o.ID == id {
			return o, nil
		}
	}
	return ScanObject{}, fmt.Errorf("%w: scan object id=%d", ErrNotFound, id)
}

// commitCatalog applies fn to a copy of the catalog and writes it. The
// in-memory catalog is replaced only after the write succeeded.
func (s *Store) commitCatalog(fn func(*Catalog) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := cloneCatalog(s.catalog)
	if err := fn(&next); err != nil {
		return err
	}
	if err := writeDocument(s.layout.CatalogPath(), next); err != nil {
		return fmt.Errorf("write catalog: %w", err)
	}
	s.catalog = next
	return nil
}

// Partition returns a copy of the (object, date) partition. The file is
// created empty when it does not exist.
func (s *Store) Partition(obj ScanObject, date string) (Partition, error) {
	path, err := s.layout.PartitionPath(obj.Value, date)
	if err != nil {
		return Partition{}, err
	}
	if !s.locks.TryLock(path) {
		return Partition{}, fmt.Errorf("%w: %s", ErrPartitionBusy, path)
	}
	defer s.locks.Unlock(path)

	cp, err := s.activePartition(partitionKey{ObjectID: obj.ID, Date: date}, path)
	if err != nil {
		return Partition{}, err
	}
	return clonePartition(cp.doc), nil
}

func (s *Store) activePartition(key partitionKey, path string) (*cachedPartition, error) {
	if cp, ok := s.active.Get(key); ok && cp.path == path {
		return cp, nil
	}
	doc, created, err := loadOrCreate(path, func() Partition {
		return Partition{Records: []ScanRecord{}, Date: key.Date}
	})
	if err != nil {
		return nil, fmt.Errorf("load partition: %w", err)
	}
	if created {
		s.log.Debugf("partition created path=%q", path)
	}
	cp := &cachedPartition{path: path, doc: doc}
	s.active.Add(key, cp)
	return cp, nil
}

// mutatePartition runs fn inside a read-modify-write cycle on the partition
// file and refreshes the active cache with the written document.
func (s *Store) mutatePartition(obj ScanObject, date string, fn func(*Partition) error) (Partition, error) {
	path, err := s.layout.PartitionPath(obj.Value, date)
	if err != nil {
		return Partition{}, err
	}
	if !s.locks.TryLock(path) {
		return Partition{}, fmt.Errorf("%w: %s", ErrPartitionBusy, path)
	}
	defer s.locks.Unlock(path)

	doc, err := withDocument(path, func() Partition {
		return Partition{Records: []ScanRecord{}, Date: date}
	}, fn)
	if err != nil {
		return Partition{}, err
	}
	s.active.Add(partitionKey{ObjectID: obj.ID, Date: date}, &cachedPartition{path: path, doc: doc})
	return clonePartition(doc), nil
}

// AppendRecord stores rec in the partition unless its qrcode is already
// present there (ErrDuplicate).
func (s *Store) AppendRecord(obj ScanObject, date string, rec ScanRecord) (ScanRecord, error) {
	var stored ScanRecord
	_, err := s.mutatePartition(obj, date, func(p *Partition) error {
		r, err := TryAppend(p, rec)
		if err != nil {
			return err
		}
		stored = r
		return nil
	})
	if err != nil {
		return ScanRecord{}, err
	}
	return stored, nil
}

// renameObjectDir moves data/<from> to data/<to>. A missing source is fine.
func (s *Store) renameObjectDir(from, to string) (bool, error) {
	oldDir, err := s.layout.ObjectDir(from)
	if err != nil {
		return false, err
	}
	newDir, err := s.layout.ObjectDir(to)
	if err != nil {
		return false, err
	}
	if _, err := os.Stat(oldDir); errors.Is(err, os.ErrNotExist) {
		return false, nil
	} else if err != nil {
		return false, err
	}
	if _, err := os.Stat(newDir); err == nil {
		return false, fmt.Errorf("%w: directory for %q already exists", ErrDuplicate, to)
	}
	if err := os.Rename(oldDir, newDir); err != nil {
		return false, fmt.Errorf("rename %s: %w", oldDir, err)
	}
	return true, nil
}

// Evict drops the active partition so the next access re-reads disk.
func (s *Store) Evict() {
	s.active.Purge()
}

func cloneCatalog(c Catalog) Catalog {
	out := Catalog{
		Objects: slices.Clone(c.Objects),
		Rules:   slices.Clone(c.Rules),
	}
	if out.Objects == nil {
		out.Objects = []ScanObject{}
	}
	if out.Rules == nil {
		out.Rules = []ScanRule{}
	}
	return out
}

func clonePartition(p Partition) Partition {
	recs := slices.Clone(p.Records)
	if recs == nil {
		recs = []ScanRecord{}
	}
	return Partition{Records: recs, Date: p.Date}
}
