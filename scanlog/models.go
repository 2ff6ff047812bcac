package scanlog

import "time"

type RuleType string

const (
	RuleTypeDefault        RuleType = "default"
	RuleTypeCustom         RuleType = "custom"
	RuleTypeMaterialNumber RuleType = "material-number"
)

// ScanObject is a scanning target (product or test station). Value is the
// partition key on disk and must be unique across the catalog.
type ScanObject struct {
	ID             int      `json:"id"`
	Name           string   `json:"scanObjectName"`
	Value          string   `json:"scanObjectValue"`
	MaterialNumber string   `json:"materialNumber,omitempty"`
	RuleType       RuleType `json:"scanRuleType,omitempty"`
	Rule           string   `json:"scanRule,omitempty"`
}

type ScanRule struct {
	ID        int    `json:"id"`
	Name      string `json:"scanRuleName"`
	Value     string `json:"scanRuleValue"`
	IsDefault bool   `json:"isDefault"`
}

// ScanRecord is one accepted scan. Object name/value are copied at write time.
type ScanRecord struct {
	ID          int    `json:"id"`
	ObjectName  string `json:"scanObjectName"`
	ObjectValue string `json:"scanObjectValue"`
	QRCode      string `json:"qrcode"`
	// Date is the scan time in epoch milliseconds.
	Date int64 `json:"date"`
}

func (r ScanRecord) Time() time.Time {
	return time.UnixMilli(r.Date)
}

// Partition is the data.json document of one (object, date) pair.
type Partition struct {
	Records []ScanRecord `json:"scanList"`
	Date    string       `json:"scanDate"`
}

// Catalog is the base.json document.
type Catalog struct {
	Objects []ScanObject `json:"scanObjects"`
	Rules   []ScanRule   `json:"scanRules"`
}

func defaultCatalog() Catalog {
	return Catalog{
		Objects: []ScanObject{{
			ID:             1,
			Name:           "通用扫码对象",
			Value:          "common",
			MaterialNumber: "0000000",
			RuleType:       RuleTypeDefault,
			Rule:           ".*",
		}},
		Rules: []ScanRule{{
			ID:        1,
			Name:      "通用规则",
			Value:     ".*",
			IsDefault: true,
		}},
	}
}

// JournalEntry is one command outcome kept in the monthly journal DB.
type JournalEntry struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	RequestID   string    `gorm:"uniqueIndex;size:36" json:"requestId"`
	At          time.Time `gorm:"index" json:"at"`
	Command     string    `gorm:"index;size:64" json:"command"`
	ObjectValue string    `gorm:"index;size:255" json:"objectValue,omitempty"`
	ScanDate    string    `gorm:"index;size:10" json:"scanDate,omitempty"`
	Code        int       `gorm:"index" json:"code"`
	Message     string    `gorm:"type:text" json:"message,omitempty"`
	ElapsedMs   int64     `json:"elapsedMs"`
}
