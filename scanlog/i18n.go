package scanlog

const defaultLanguage = "zh"

type msgKey string

const (
	msgScanObjectName      msgKey = "scanObjectName"
	msgQRCode              msgKey = "qrcode"
	msgState               msgKey = "state"
	msgDate                msgKey = "date"
	msgExportData          msgKey = "exportData"
	msgSuccess             msgKey = "success"
	msgFailed              msgKey = "failed"
	msgDuplicateScanObject msgKey = "duplicateScanObject"
	msgScanObjectNotExist  msgKey = "scanObjectNotExist"
	msgDuplicateScanRule   msgKey = "duplicateScanRule"
	msgScanRuleNotExist    msgKey = "scanRuleNotExist"
	msgDuplicateQRCode     msgKey = "duplicateQrcode"
	msgInvalidBarcode      msgKey = "invalidBarcode"
	msgExportFailed        msgKey = "exportFailed"
	msgExportSourceFailed  msgKey = "exportDataSourceFailed"
	msgPartitionBusy       msgKey = "partitionBusy"
)

var messages = map[string]map[msgKey]string{
	"zh": {
		msgScanObjectName:      "扫码对象名称",
		msgQRCode:              "扫码对象条码",
		msgState:               "测试状态",
		msgDate:                "扫码时间",
		msgExportData:          "导出数据",
		msgSuccess:             "操作成功",
		msgFailed:              "操作失败",
		msgDuplicateScanObject: "扫码对象名称重复",
		msgScanObjectNotExist:  "扫码对象不存在",
		msgDuplicateScanRule:   "扫码规则名称重复",
		msgScanRuleNotExist:    "扫码规则不存在",
		msgDuplicateQRCode:     "当前扫描的条码重复!",
		msgInvalidBarcode:      "条码格式不正确",
		msgExportFailed:        "导出失败",
		msgExportSourceFailed:  "数据源导出失败",
		msgPartitionBusy:       "数据正在写入，请稍后重试",
	},
	"en": {
		msgScanObjectName:      "Scan Object Name",
		msgQRCode:              "Scan Object QR Code",
		msgState:               "Test Status",
		msgDate:                "Scan Time",
		msgExportData:          "Export Data",
		msgSuccess:             "Operation succeeded",
		msgFailed:              "Operation failed",
		msgDuplicateScanObject: "Duplicate scan object name",
		msgScanObjectNotExist:  "Scan object does not exist",
		msgDuplicateScanRule:   "Duplicate scan rule name",
		msgScanRuleNotExist:    "Scan rule does not exist",
		msgDuplicateQRCode:     "Current scanned QR code is duplicate!",
		msgInvalidBarcode:      "The barcode format is incorrect",
		msgExportFailed:        "Export failed",
		msgExportSourceFailed:  "Failed to export data source",
		msgPartitionBusy:       "Data is being written, please retry",
	},
	"vi": {
		msgScanObjectName:      "Tên đối tượng quét",
		msgQRCode:              "Mã QR đối tượng quét",
		msgState:               "Trạng thái kiểm tra",
		msgDate:                "Thời gian quét",
		msgExportData:          "Xuất dữ liệu",
		msgSuccess:             "Thao tác thành công",
		msgFailed:              "Thao tác thất bại",
		msgDuplicateScanObject: "Tên đối tượng quét trùng lặp",
		msgScanObjectNotExist:  "Đối tượng quét không tồn tại",
		msgDuplicateScanRule:   "Tên quy tắc quét trùng lặp",
		msgScanRuleNotExist:    "Quy tắc quét không tồn tại",
		msgDuplicateQRCode:     "Mã QR quét hiện tại bị trùng lặp!",
		msgInvalidBarcode:      "Định dạng mã vạch không đúng",
		msgExportFailed:        "Xuất thất bại",
		msgExportSourceFailed:  "Xuất nguồn dữ liệu thất bại",
		msgPartitionBusy:       "Dữ liệu đang được ghi, vui lòng thử lại",
	},
	"jap": {
		msgScanObjectName:      "スキャンオブジェクト名",
		msgQRCode:              "スキャンオブジェクトQRコード",
		msgState:               "テストステータス",
		msgDate:                "スキャン時間",
		msgExportData:          "データをエクスポート",
		msgSuccess:             "操作に成功しました",
		msgFailed:              "操作に失敗しました",
		msgDuplicateScanObject: "スキャンオブジェクト名が重複しています",
		msgScanObjectNotExist:  "スキャンオブジェクトが存在しません",
		msgDuplicateScanRule:   "スキャンルール名が重複しています",
		msgScanRuleNotExist:    "スキャンルールが存在しません",
		msgDuplicateQRCode:     "現在スキャンされたQRコードが重複しています！",
		msgInvalidBarcode:      "バーコードの形式が正しくありません",
		msgExportFailed:        "エクスポートに失敗しました",
		msgExportSourceFailed:  "データソースのエクスポートに失敗しました",
		msgPartitionBusy:       "データを書き込み中です。しばらくしてから再試行してください",
	},
}

// T returns the message for key in lang, falling back to Chinese.
func T(lang string, key msgKey) string {
	if m, ok := messages[lang]; ok {
		if s, ok := m[key]; ok {
			return s
		}
	}
	return messages[defaultLanguage][key]
}

func SupportedLanguage(lang string) bool {
	_, ok := messages[lang]
	return ok
}
