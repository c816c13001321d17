package errors

// 錯誤代碼常數
// 格式: CATEGORY_SPECIFIC_DETAIL
// 前端與 LINE 指令層依這些代碼對應訊息

const (
	// ==================== 檢驗 (VALIDATION_) ====================
	ValidationInvalidInput = "VALIDATION_INVALID_INPUT" // 輸入不正確
	ValidationInvalidID    = "VALIDATION_INVALID_ID"    // ID 格式錯誤
	ValidationRequired     = "VALIDATION_REQUIRED"      // 必填欄位缺漏
	ValidationInvalidDate  = "VALIDATION_INVALID_DATE"  // 日期格式錯誤

	// ==================== 資源 (RESOURCE_) ====================
	ResourceNotFound      = "RESOURCE_NOT_FOUND"      // 資源不存在
	ResourceAlreadyExists = "RESOURCE_ALREADY_EXISTS" // 已經存在
	ResourceConflict      = "RESOURCE_CONFLICT"       // 衝突

	// ==================== 餐廳 (RESTAURANT_) ====================
	RestaurantNotFound = "RESTAURANT_NOT_FOUND" // 餐廳不存在
	RestaurantExists   = "RESTAURANT_EXISTS"    // 群組內餐廳名稱重複

	// ==================== 綁定 (BINDING_) ====================
	BindingNotFound = "BINDING_NOT_FOUND" // 綁定不存在
	BindingExists   = "BINDING_EXISTS"    // 同一辦公室重複綁定

	// ==================== 辦公室 (OFFICE_) ====================
	OfficeInvalid      = "OFFICE_INVALID"        // 不在群組辦公室列表
	OfficeInUse        = "OFFICE_IN_USE"         // 正在使用中, 不能移除
	GroupNotConfigured = "GROUP_NOT_CONFIGURED"  // 群組尚未設定
	GroupConfigExists  = "GROUP_CONFIG_EXISTS"   // 群組設定已存在

	// ==================== 抽籤 (DRAW_) ====================
	DrawNothingEligible = "DRAW_NOTHING_ELIGIBLE" // 沒有可以抽的餐廳

	// ==================== 上傳 (UPLOAD_) ====================
	UploadTooManyImages   = "UPLOAD_TOO_MANY_IMAGES"   // 圖片數量超過上限
	UploadInvalidFileType = "UPLOAD_INVALID_FILE_TYPE" // 檔案格式錯誤
	UploadFailed          = "UPLOAD_FAILED"            // 上傳失敗

	// ==================== 推播 (CHAT_) ====================
	ChatDeliveryFailed = "CHAT_DELIVERY_FAILED" // LINE 推播失敗

	// ==================== 內部 (INTERNAL_) ====================
	InternalServerError   = "INTERNAL_SERVER_ERROR"   // 伺服器錯誤
	InternalDatabaseError = "INTERNAL_DATABASE_ERROR" // 資料庫錯誤
	InternalExternalAPI   = "INTERNAL_EXTERNAL_API"   // 外部服務錯誤
)
