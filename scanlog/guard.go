package scanlog

import "fmt"

// TryAppend appends rec to p with id = len+1 unless a record with the same
// qrcode already exists. On ErrDuplicate p is left untouched.
// Callers must hold the partition lock.
func TryAppend(p *Partition, rec ScanRecord) (ScanRecord, error) {
	for _, existing := range p.Records {
		if existing.QRCode == rec.QRCode {
			return ScanRecord{}, fmt.Errorf("%w: qrcode %q already scanned (id=%d)", ErrDuplicate, rec.QRCode, existing.ID)
		}
	}
	rec.ID = len(p.Records) + 1
	p.Records = append(p.Records, rec)
	return rec, nil
}
