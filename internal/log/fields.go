package log

// Common field names for structured logging.
const (
	FieldComponent  = "component"
	FieldRequestID  = "request_id"
	FieldClientIP   = "client_ip"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldStatusCode = "status_code"
	FieldDuration   = "duration_ms"
	FieldError      = "error"
	FieldOperation  = "operation"

	FieldCategoryID   = "category_id"
	FieldCategoryName = "category_name"
	FieldPointID      = "point_id"
	FieldPointName    = "point_name"
	FieldRatingID     = "rating_id"
	FieldRatingDate   = "rating_date"
	FieldScoreCount   = "score_count"
	FieldTimeFilter   = "time_filter"
	FieldChartKind    = "chart_kind"
	FieldTrashID      = "trash_id"
)

// Components defines standard component names.
const (
	ComponentApp     = "app"
	ComponentHTTP    = "http"
	ComponentJournal = "journal"
	ComponentCharts  = "charts"
	ComponentStorage = "storage"
	ComponentCache   = "cache"
	ComponentBackend = "backend"
	ComponentExport  = "export"
)

// Operations defines standard operation names.
const (
	OpCreate   = "create"
	OpUpdate   = "update"
	OpDelete   = "delete"
	OpList     = "list"
	OpRecord   = "record"
	OpPurge    = "purge"
	OpResolve  = "resolve"
	OpStartup  = "startup"
	OpShutdown = "shutdown"
)
