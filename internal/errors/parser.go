package errors

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// ErrorInfo 錯誤資訊
type ErrorInfo struct {
	Code    string // 錯誤代碼 (見 codes.go)
	Message string // 使用者看得懂的訊息
}

// ParseError 將底層錯誤轉換成錯誤代碼與訊息。
// 不洩漏資料庫細節，但保留足夠資訊讓使用者修正請求。
func ParseError(err error, context string) ErrorInfo {
	if err == nil {
		return ErrorInfo{
			Code:    InternalServerError,
			Message: "伺服器發生錯誤",
		}
	}

	errStrLower := strings.ToLower(err.Error())

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrorInfo{
			Code:    ResourceNotFound,
			Message: getNotFoundMessage(context),
		}
	}

	// unique constraint (PostgreSQL 23505 / sqlite UNIQUE)
	if strings.Contains(errStrLower, "duplicate key") || strings.Contains(errStrLower, "unique constraint") {
		return parseDuplicateKeyError(errStrLower)
	}

	// foreign key constraint (23503)
	if strings.Contains(errStrLower, "foreign key constraint") {
		return ErrorInfo{
			Code:    ResourceConflict,
			Message: "有關聯資料，無法完成操作",
		}
	}

	// not null constraint (23502)
	if strings.Contains(errStrLower, "null value") && strings.Contains(errStrLower, "not-null constraint") {
		return ErrorInfo{
			Code:    ValidationRequired,
			Message: "必填欄位缺漏",
		}
	}

	// 網路 / 連線錯誤
	if strings.Contains(errStrLower, "connection refused") ||
		strings.Contains(errStrLower, "no such host") ||
		strings.Contains(errStrLower, "timeout") {
		return ErrorInfo{
			Code:    InternalExternalAPI,
			Message: "外部服務連線失敗，請稍後再試",
		}
	}

	return ErrorInfo{
		Code:    InternalServerError,
		Message: "伺服器發生錯誤，請稍後再試",
	}
}

func parseDuplicateKeyError(errLower string) ErrorInfo {
	if strings.Contains(errLower, "idx_restaurants_group_name") || strings.Contains(errLower, "restaurants") {
		return ErrorInfo{
			Code:    RestaurantExists,
			Message: "這個群組已經有同名餐廳了",
		}
	}
	if strings.Contains(errLower, "idx_bindings_tuple") || strings.Contains(errLower, "office_bindings") {
		return ErrorInfo{
			Code:    BindingExists,
			Message: "這間餐廳已經綁定在這個辦公室了",
		}
	}
	if strings.Contains(errLower, "group_configs") || strings.Contains(errLower, "group_id") {
		return ErrorInfo{
			Code:    GroupConfigExists,
			Message: "群組設定已存在",
		}
	}
	return ErrorInfo{
		Code:    ResourceAlreadyExists,
		Message: "資料已經存在",
	}
}

func getNotFoundMessage(context string) string {
	contextLower := strings.ToLower(context)

	if strings.Contains(contextLower, "restaurant") || strings.Contains(contextLower, "餐廳") {
		return "找不到餐廳"
	}
	if strings.Contains(contextLower, "binding") || strings.Contains(contextLower, "綁定") {
		return "找不到綁定紀錄"
	}
	if strings.Contains(contextLower, "config") || strings.Contains(contextLower, "設定") {
		return "找不到群組設定"
	}
	return "找不到資料"
}
