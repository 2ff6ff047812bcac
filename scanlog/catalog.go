package scanlog

import (
	"fmt"
	"os"
	"slices"
	"strings"
)

// SaveObject creates (ID == 0) or updates a scan object. An update merges
// the non-empty fields of in over the stored object. When it changes Value,
// data/<old> is renamed to data/<new> before the catalog is written, and
// renamed back if that write fails.
func (s *Store) SaveObject(in ScanObject) (ScanObject, error) {
	in.Name = NormalizeText(in.Name)
	in.Value = strings.TrimSpace(in.Value)

	s.mu.Lock()
	defer s.mu.Unlock()

	next := cloneCatalog(s.catalog)
	idx := -1
	var old ScanObject
	if in.ID != 0 {
		idx = slices.IndexFunc(next.Objects, func(o ScanObject) bool { return o.ID == in.ID })
		if idx < 0 {
			return ScanObject{}, fmt.Errorf("%w: scan object id=%d", ErrNotFound, in.ID)
		}
		old = next.Objects[idx]
		in = mergeObject(old, in)
	}
	in, err := checkObject(in)
	if err != nil {
		return ScanObject{}, err
	}
	for _, o := range next.Objects {
		if o.Value == in.Value && o.ID != in.ID {
			return ScanObject{}, fmt.Errorf("%w: scan object %q", ErrDuplicate, in.Value)
		}
	}

	if idx < 0 {
		in.ID = nextObjectID(next.Objects)
		next.Objects = append(next.Objects, in)
		if err := writeDocument(s.layout.CatalogPath(), next); err != nil {
			return ScanObject{}, fmt.Errorf("write catalog: %w", err)
		}
		s.catalog = next
		return in, nil
	}
	next.Objects[idx] = in

	renamed := false
	if old.Value != in.Value {
		renamed, err = s.renameObjectDir(old.Value, in.Value)
		if err != nil {
			return ScanObject{}, err
		}
		s.active.Purge()
	}
	if err := writeDocument(s.layout.CatalogPath(), next); err != nil {
		if renamed {
			if _, undoErr := s.renameObjectDir(in.Value, old.Value); undoErr != nil {
				s.log.Errorf("rollback rename value=%q->%q err=%v", in.Value, old.Value, undoErr)
			}
		}
		return ScanObject{}, fmt.Errorf("write catalog: %w", err)
	}
	if renamed {
		s.log.Infof("scan object renamed id=%d value=%q->%q", in.ID, old.Value, in.Value)
	}
	s.catalog = next
	return in, nil
}

// mergeObject overlays the non-empty fields of in onto old.
func mergeObject(old, in ScanObject) ScanObject {
	out := old
	if in.Name != "" {
		out.Name = in.Name
	}
	if in.Value != "" {
		out.Value = in.Value
	}
	if in.MaterialNumber != "" {
		out.MaterialNumber = in.MaterialNumber
	}
	if in.RuleType != "" {
		out.RuleType = in.RuleType
	}
	if in.Rule != "" {
		out.Rule = in.Rule
	}
	return out
}

// checkObject fills the derived fields of a new or merged object and
// validates it.
func checkObject(o ScanObject) (ScanObject, error) {
	if o.Name == "" {
		return ScanObject{}, fmt.Errorf("%w: scan object name is empty", ErrInvalid)
	}
	if o.Value == "" {
		o.Value = Slugify(o.Name)
	}
	if err := checkPathKey(o.Value); err != nil {
		return ScanObject{}, err
	}
	if o.RuleType == "" {
		o.RuleType = RuleTypeDefault
	}
	switch o.RuleType {
	case RuleTypeDefault, RuleTypeCustom, RuleTypeMaterialNumber:
	default:
		return ScanObject{}, fmt.Errorf("%w: scan rule type %q", ErrInvalid, o.RuleType)
	}
	if _, err := CompileRule(o.Rule); err != nil {
		return ScanObject{}, err
	}
	return o, nil
}

// DeleteObject removes the object from the catalog. Its partitions stay on disk.
func (s *Store) DeleteObject(id int) (ScanObject, error) {
	var removed ScanObject
	err := s.commitCatalog(func(c *Catalog) error {
		idx := slices.IndexFunc(c.Objects, func(o ScanObject) bool { return o.ID == id })
		if idx < 0 {
			return fmt.Errorf("%w: scan object id=%d", ErrNotFound, id)
		}
		removed = c.Objects[idx]
		c.Objects = slices.Delete(c.Objects, idx, idx+1)
		return nil
	})
	if err == nil && s.objectDirExists(removed.Value) {
		s.log.Infof("scan object deleted id=%d, partitions kept under value=%q", id, removed.Value)
	}
	return removed, err
}

// SaveRule creates or updates a scan rule. An update keeps the stored name,
// pattern and default flag unless in sets them. A rule saved as default
// clears the flag on every other rule in the same write.
func (s *Store) SaveRule(in ScanRule) (ScanRule, error) {
	in.Name = NormalizeText(in.Name)

	err := s.commitCatalog(func(c *Catalog) error {
		idx := -1
		if in.ID != 0 {
			idx = slices.IndexFunc(c.Rules, func(r ScanRule) bool { return r.ID == in.ID })
			if idx < 0 {
				return fmt.Errorf("%w: scan rule id=%d", ErrNotFound, in.ID)
			}
			in = mergeRule(c.Rules[idx], in)
		}
		if in.Value == "" {
			return fmt.Errorf("%w: scan rule value is empty", ErrInvalid)
		}
		if _, err := CompileRule(in.Value); err != nil {
			return err
		}
		for _, r := range c.Rules {
			if r.Value == in.Value && r.ID != in.ID {
				return fmt.Errorf("%w: scan rule %q", ErrDuplicate, in.Value)
			}
		}
		if idx < 0 {
			in.ID = nextRuleID(c.Rules)
			c.Rules = append(c.Rules, in)
		} else {
			c.Rules[idx] = in
		}
		if in.IsDefault {
			for i := range c.Rules {
				c.Rules[i].IsDefault = c.Rules[i].ID == in.ID
			}
		}
		return nil
	})
	if err != nil {
		return ScanRule{}, err
	}
	return in, nil
}

// mergeRule overlays in onto old. The default flag only moves to another
// rule; an update cannot clear it.
func mergeRule(old, in ScanRule) ScanRule {
	out := old
	if in.Name != "" {
		out.Name = in.Name
	}
	if in.Value != "" {
		out.Value = in.Value
	}
	out.IsDefault = old.IsDefault || in.IsDefault
	return out
}

func (s *Store) DeleteRule(id int) (ScanRule, error) {
	var removed ScanRule
	err := s.commitCatalog(func(c *Catalog) error {
		idx := slices.IndexFunc(c.Rules, func(r ScanRule) bool { return r.ID == id })
		if idx < 0 {
			return fmt.Errorf("%w: scan rule id=%d", ErrNotFound, id)
		}
		removed = c.Rules[idx]
		c.Rules = slices.Delete(c.Rules, idx, idx+1)
		return nil
	})
	return removed, err
}

// DefaultRule returns the rule flagged as default, if any.
func (c Catalog) DefaultRule() (ScanRule, bool) {
	for _, r := range c.Rules {
		if r.IsDefault {
			return r, true
		}
	}
	return ScanRule{}, false
}

func nextObjectID(objs []ScanObject) int {
	maxID := 0
	for _, o := range objs {
		maxID = max(maxID, o.ID)
	}
	return maxID + 1
}

func nextRuleID(rules []ScanRule) int {
	maxID := 0
	for _, r := range rules {
		maxID = max(maxID, r.ID)
	}
	return maxID + 1
}

// objectDirExists reports whether any partition was ever written for value.
func (s *Store) objectDirExists(value string) bool {
	dir, err := s.layout.ObjectDir(value)
	if err != nil {
		return false
	}
	_, err = os.Stat(dir)
	return err == nil
}
