package scanlog

import (
	"fmt"
	"regexp"
	"time"
)

// materialDatePattern finds the W+YYMMDD production date in material-number
// barcodes.
var materialDatePattern = regexp.MustCompile(`W(\d{6})`)

// CompileRule compiles a barcode pattern. An empty pattern accepts anything.
func CompileRule(pattern string) (*regexp.Regexp, error) {
	if pattern == "" {
		return nil, nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("%w: rule %q: %v", ErrInvalid, pattern, err)
	}
	return re, nil
}

// ExtractMaterialDate returns the embedded YYMMDD date, if any.
func ExtractMaterialDate(code string, loc *time.Location) (time.Time, bool, error) {
	m := materialDatePattern.FindStringSubmatch(code)
	if m == nil {
		return time.Time{}, false, nil
	}
	if loc == nil {
		loc = time.Local
	}
	day, err := time.ParseInLocation("060102", m[1], loc)
	if err != nil {
		return time.Time{}, true, err
	}
	return day, true, nil
}

// ValidateBarcode checks code against the object's rule. For material-number
// objects the embedded production date must be the scan day.
func ValidateBarcode(obj ScanObject, code string, at time.Time) error {
	re, err := CompileRule(obj.Rule)
	if err != nil {
		return err
	}
	if re != nil && !re.MatchString(code) {
		return fmt.Errorf("%w: %q does not match rule %q", ErrBarcodeFormat, code, obj.Rule)
	}
	if obj.RuleType != RuleTypeMaterialNumber {
		return nil
	}
	day, found, err := ExtractMaterialDate(code, at.Location())
	if !found {
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w: %q has a malformed date", ErrBarcodeFormat, code)
	}
	if day.Format(DateLayout) != at.Format(DateLayout) {
		return fmt.Errorf("%w: %q is dated %s, scanned %s", ErrBarcodeFormat, code, day.Format(DateLayout), at.Format(DateLayout))
	}
	return nil
}
