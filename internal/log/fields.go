package log

// Common field names for structured logging
const (
	FieldComponent  = "component"
	FieldRequestID  = "request_id"
	FieldClientIP   = "client_ip"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldQuery      = "query"
	FieldStatusCode = "status_code"
	FieldDuration   = "duration_ms"
	FieldUserAgent  = "user_agent"
	FieldSuccess    = "success"
	FieldError      = "error"
	FieldOperation  = "operation"
	FieldOwnerID    = "owner_id"
	FieldMonth      = "month"
	FieldTxID       = "transaction_id"
	FieldTxType     = "transaction_type"
	FieldTxStatus   = "transaction_status"
	FieldCategory   = "category"
	FieldAmount     = "amount"
	FieldEvent      = "event"
)

// Components defines standard component names
const (
	ComponentApp       = "app"
	ComponentHTTP      = "http"
	ComponentLedger    = "ledger"
	ComponentDashboard = "dashboard"
	ComponentInsights  = "insights"
	ComponentReport    = "report"
	ComponentStorage   = "storage"
	ComponentAMQP      = "amqp"
	ComponentWorker    = "worker"
	ComponentCache     = "cache"
	ComponentSecurity  = "security"
	ComponentRateLimit = "rate_limit"
)

// Operations defines standard operation names
const (
	OpCreate   = "create"
	OpComplete = "complete"
	OpRevert   = "revert"
	OpList     = "list"
	OpSummary  = "summary"
	OpInsights = "insights"
	OpExport   = "export"
	OpNotify   = "notify"
	OpShutdown = "shutdown"
	OpStartup  = "startup"
)
