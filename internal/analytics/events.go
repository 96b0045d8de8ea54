// ABOUTME: Analytics event and parameter names.
// ABOUTME: One constant per event so callers never hand-type names.
package analytics

// Event names.
const (
	EventAppLaunch               = "app_launch"
	EventTimerStart              = "timer_start"
	EventTimerPause              = "timer_pause"
	EventTimerResume             = "timer_resume"
	EventTimerComplete           = "timer_complete"
	EventTimerCancel             = "timer_cancel"
	EventCategoryAdd             = "category_add"
	EventCategoryDelete          = "category_delete"
	EventFocusSessionStart       = "focus_session_start"
	EventFocusSessionComplete    = "focus_session_complete"
	EventConsecutiveDaysAchieved = "consecutive_days_achieved"
	EventSettingsChanged         = "settings_changed"
	EventScreenView              = "screen_view"
)

// Parameter keys.
const (
	ParamDuration        = "duration"
	ParamCategory        = "category"
	ParamCategoryName    = "category_name"
	ParamConsecutiveDays = "consecutive_days"
	ParamSettingName     = "setting_name"
	ParamSettingValue    = "setting_value"
	ParamTimestamp       = "timestamp"
	ParamDebugMode       = "debug_mode"
	ParamScreenName      = "screen_name"
	ParamScreenClass     = "screen_class"
)

// Params carries event parameters.
type Params map[string]interface{}
