package scanlog

import (
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	dir := t.TempDir()
	settings := DefaultSettings()
	settings.WorkDir = filepath.Join(dir, "work")
	settings.Language = "en"
	svc, err := NewService(filepath.Join(dir, SettingsFileName), settings, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = svc.Close() })
	return svc
}

func TestService_SaveRecordCodes(t *testing.T) {
	svc := newTestService(t)
	at := time.Date(2024, 3, 7, 9, 0, 0, 0, time.Local)

	res := svc.SaveRecord(1, "2024-03-07", " A1\n", at)
	require.Equal(t, CodeSuccess, res.Code)
	rec := res.Data.(ScanRecord)
	require.Equal(t, 1, rec.ID)
	require.Equal(t, "A1", rec.QRCode)
	require.Equal(t, "common", rec.ObjectValue)
	require.Equal(t, at.UnixMilli(), rec.Date)

	res = svc.SaveRecord(1, "2024-03-07", "A1", at.Add(time.Second))
	require.Equal(t, CodeDuplicate, res.Code)
	require.Equal(t, "Current scanned QR code is duplicate!", res.Message)
	require.Nil(t, res.Data)

	res = svc.SaveRecord(99, "2024-03-07", "A2", at)
	require.Equal(t, CodeNotFound, res.Code)

	res = svc.SaveRecord(1, "2024-03-07", "   ", at)
	require.Equal(t, CodeFail, res.Code)

	page := svc.QueryPage(1, "2024-03-07", PageQuery{PageIndex: 1, PageSize: 10})
	require.True(t, page.OK())
	require.Equal(t, 1, page.Data.(PageResult).Total)
}

func TestService_SaveRecordDefaultsDateToScanDay(t *testing.T) {
	svc := newTestService(t)
	at := time.Date(2024, 3, 7, 9, 0, 0, 0, time.Local)
	require.True(t, svc.SaveRecord(1, "", "A1", at).OK())

	res := svc.History(1, "2024")
	require.True(t, res.OK())
	require.Equal(t, []HistoryEntry{{Date: "2024-03-07", Name: "2024-03-07"}}, res.Data)
}

func TestService_SaveRecordChecksRule(t *testing.T) {
	svc := newTestService(t)
	res := svc.SaveObject(ScanObject{Name: "Bench", RuleType: RuleTypeCustom, Rule: `^SN\d+$`})
	require.True(t, res.OK(), res.Message)
	obj := res.Data.(ScanObject)

	res = svc.SaveRecord(obj.ID, "2024-03-07", "XX1", time.Time{})
	require.Equal(t, CodeFail, res.Code)
	require.Equal(t, "The barcode format is incorrect", res.Message)
	require.True(t, svc.SaveRecord(obj.ID, "2024-03-07", "SN1", time.Time{}).OK())
}

func TestService_SaveRecordBadInputIsGenericFailure(t *testing.T) {
	svc := newTestService(t)
	at := time.Date(2024, 1, 5, 9, 0, 0, 0, time.Local)

	for _, tc := range []struct{ date, code string }{
		{"2024-1-5", "A1"},
		{"2024-01-05", "  "},
	} {
		res := svc.SaveRecord(1, tc.date, tc.code, at)
		require.Equal(t, CodeFail, res.Code, tc)
		require.True(t, strings.HasPrefix(res.Message, "Operation failed"), res.Message)
		require.NotEqual(t, "The barcode format is incorrect", res.Message)
	}
}

func TestService_CatalogCodes(t *testing.T) {
	svc := newTestService(t)

	res := svc.SaveObject(ScanObject{Name: "dup", Value: "common"})
	require.Equal(t, CodeDuplicate, res.Code)
	require.Equal(t, "Duplicate scan object name", res.Message)

	res = svc.DeleteObject(7)
	require.Equal(t, CodeNotFound, res.Code)
	require.Equal(t, "Scan object does not exist", res.Message)

	res = svc.SaveRule(ScanRule{Name: "dup", Value: ".*"})
	require.Equal(t, CodeDuplicate, res.Code)
	res = svc.DeleteRule(7)
	require.Equal(t, CodeNotFound, res.Code)
	require.Equal(t, "Scan rule does not exist", res.Message)

	res = svc.ListObjects()
	require.True(t, res.OK())
	require.Len(t, res.Data.([]ScanObject), 1)
	res = svc.ListRules()
	require.True(t, res.OK())
	require.Len(t, res.Data.([]ScanRule), 1)
}

func TestService_Snapshot(t *testing.T) {
	svc := newTestService(t)
	day := time.Date(2024, 3, 7, 0, 0, 0, 0, time.Local)
	for i := 0; i < 3; i++ {
		require.True(t, svc.SaveRecord(1, "2024-03-07", "n9-"+strconv.Itoa(i), day.Add(9*time.Hour+time.Duration(i)*time.Minute)).OK())
	}
	for i := 0; i < 5; i++ {
		require.True(t, svc.SaveRecord(1, "2024-03-07", "n14-"+strconv.Itoa(i), day.Add(14*time.Hour+time.Duration(i)*time.Minute)).OK())
	}

	res := svc.Snapshot(1, "2024-03-07")
	require.True(t, res.OK())
	snap := res.Data.(Snapshot)
	require.Equal(t, 5, snap.LastHourCapacity)
	require.Equal(t, 8, snap.TotalCapacity)
	require.InDelta(t, 2.0/3.0, snap.Growth, 1e-9)
	require.Equal(t, []ChartPoint{{Time: "09:00", Capacity: 3}, {Time: "14:00", Capacity: 5}}, snap.ChartData)
}

func TestService_ExportRecordsReportsFailedDates(t *testing.T) {
	svc := newTestService(t)
	require.True(t, svc.SaveRecord(1, "2024-03-07", "A1", time.Time{}).OK())

	res := svc.ExportRecords(1, []string{"2024-03-07", "bad"})
	require.Equal(t, CodeFail, res.Code)
	require.True(t, strings.HasPrefix(res.Message, "Export failed"), res.Message)
	require.Contains(t, res.Message, "bad")
	outcomes := res.Data.([]ExportOutcome)
	require.Len(t, outcomes, 2)
	require.True(t, outcomes[0].OK())
	require.False(t, outcomes[1].OK())

	res = svc.ExportRecords(1, []string{"2024-03-07"})
	require.True(t, res.OK())

	res = svc.ExportRecords(1, nil)
	require.Equal(t, CodeFail, res.Code)
}

func TestService_DownloadsAndWorkDirExport(t *testing.T) {
	svc := newTestService(t)
	res := svc.DownloadsDir(1)
	require.True(t, res.OK())
	require.Equal(t, filepath.Join(svc.Settings().WorkDir, "downloads", "通用扫码对象"), res.Data)

	dest := t.TempDir()
	res = svc.ExportWorkingDirectory(dest)
	require.True(t, res.OK(), res.Message)
	require.Equal(t, filepath.Join(dest, BackupDirName), res.Data.(BackupResult).Path)

	res = svc.ExportWorkingDirectory(svc.Settings().WorkDir)
	require.Equal(t, CodeFail, res.Code)
}

func TestService_SaveSettingsReopensEngine(t *testing.T) {
	svc := newTestService(t)
	require.True(t, svc.SaveRecord(1, "2024-03-07", "A1", time.Time{}).OK())

	newDir := filepath.Join(t.TempDir(), "moved")
	lang := "zh"
	res := svc.SaveSettings(SettingsPatch{WorkDir: &newDir, Language: &lang})
	require.True(t, res.OK(), res.Message)
	require.Equal(t, newDir, svc.Settings().WorkDir)
	require.Equal(t, newDir, svc.Store().Layout().WorkDir)

	// the new working directory starts with its own catalog and no partitions
	page := svc.QueryPage(1, "2024-03-07", PageQuery{})
	require.True(t, page.OK())
	require.Equal(t, 0, page.Data.(PageResult).Total)

	loaded, err := LoadSettings(svc.settingsPath)
	require.NoError(t, err)
	require.Equal(t, newDir, loaded.WorkDir)
	require.Equal(t, "zh", loaded.Language)

	bad := "fr"
	res = svc.SaveSettings(SettingsPatch{Language: &bad})
	require.Equal(t, CodeFail, res.Code)
	require.Equal(t, "zh", svc.Settings().Language)
}

func TestService_JournalRecordsMutations(t *testing.T) {
	svc := newTestService(t)
	require.True(t, svc.SaveRecord(1, "2024-03-07", "A1", time.Time{}).OK())
	require.Equal(t, CodeDuplicate, svc.SaveRecord(1, "2024-03-07", "A1", time.Time{}).Code)
	require.True(t, svc.ListObjects().OK())

	res := svc.Journal(10)
	require.True(t, res.OK())
	entries := res.Data.([]JournalEntry)
	require.Len(t, entries, 2)
	require.Equal(t, "save-scan-record", entries[0].Command)
	require.Equal(t, int(CodeDuplicate), entries[0].Code)
	require.Equal(t, "common", entries[0].ObjectValue)
	require.Equal(t, "2024-03-07", entries[0].ScanDate)
	require.NotEmpty(t, entries[0].Message)
	require.Equal(t, int(CodeSuccess), entries[1].Code)
	require.NotEqual(t, entries[0].RequestID, entries[1].RequestID)
}

func TestService_SaveSettingsMovesInstanceLock(t *testing.T) {
	svc := newTestService(t)
	oldDir := svc.Settings().WorkDir
	lock, err := AcquireInstanceLock(oldDir)
	require.NoError(t, err)
	svc.HoldInstanceLock(lock)

	newDir := filepath.Join(t.TempDir(), "moved")
	res := svc.SaveSettings(SettingsPatch{WorkDir: &newDir})
	require.True(t, res.OK(), res.Message)

	_, err = AcquireInstanceLock(newDir)
	require.ErrorIs(t, err, ErrLocked)
	old, err := AcquireInstanceLock(oldDir)
	require.NoError(t, err)
	require.NoError(t, old.Release())

	// a directory held by another instance is refused and nothing moves
	busyDir := filepath.Join(t.TempDir(), "busy")
	other, err := AcquireInstanceLock(busyDir)
	require.NoError(t, err)
	defer other.Release()
	res = svc.SaveSettings(SettingsPatch{WorkDir: &busyDir})
	require.Equal(t, CodeFail, res.Code)
	require.Equal(t, newDir, svc.Settings().WorkDir)
	_, err = AcquireInstanceLock(newDir)
	require.ErrorIs(t, err, ErrLocked)
}
