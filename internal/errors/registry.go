package errors

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Runtime Errors (R001-R019)
	// ============================================

	"R001": {
		Category: CategoryRuntime,
		Message:  "Cascade depth exceeded",
		Detail:   "A notification cascade nested deeper than the runtime's configured maximum depth. This usually means two effects write signals that the other one reads.",
	},
	"R002": {
		Category: CategoryRuntime,
		Message:  "Effect disposed",
		Detail:   "The effect has been disposed and can no longer run.",
	},
	"R003": {
		Category: CategoryRuntime,
		Message:  "Owner disposed",
		Detail:   "The owner has been disposed. Effects can no longer be created inside it.",
	},
	"R004": {
		Category: CategoryRuntime,
		Message:  "Reactive computation panicked",
		Detail:   "A signal updater, effect body or memo computation panicked.",
	},

	// ============================================
	// Protocol Errors (P060-P069)
	// ============================================

	"P060": {
		Category: CategoryProtocol,
		Message:  "WebSocket connection failed",
		Detail:   "The WebSocket connection could not be established or was closed unexpectedly.",
	},
	"P061": {
		Category: CategoryProtocol,
		Message:  "Invalid client message",
		Detail:   "The client sent a message that could not be decoded or names an unknown operation.",
	},
	"P062": {
		Category: CategoryProtocol,
		Message:  "Host stopped",
		Detail:   "The reactive host loop is no longer accepting work.",
	},

	// ============================================
	// Storage Errors (S080-S089)
	// ============================================

	"S080": {
		Category: CategoryStorage,
		Message:  "Snapshot read failed",
		Detail:   "The snapshot could not be read from the configured store.",
	},
	"S081": {
		Category: CategoryStorage,
		Message:  "Snapshot write failed",
		Detail:   "The snapshot could not be written to the configured store.",
	},
	"S082": {
		Category: CategoryStorage,
		Message:  "Snapshot type mismatch",
		Detail:   "A stored value could not be decoded into the type of the registered signal.",
	},

	// ============================================
	// Config Errors (C120-C149)
	// ============================================

	"C120": {
		Category: CategoryConfig,
		Message:  "Invalid configuration",
		Detail:   "The configuration file contains invalid values.",
	},
	"C121": {
		Category: CategoryConfig,
		Message:  "Unknown tracking mode",
		Detail:   "runtime.tracking must be \"rebuild\" or \"accumulate\".",
	},
	"C141": {
		Category: CategoryConfig,
		Message:  "Configuration file not found",
		Detail:   "No reactive.json or reactive.yaml was found.",
	},

	// ============================================
	// CLI Errors (C160-C169)
	// ============================================

	"C160": {
		Category: CategoryCLI,
		Message:  "Unknown demo",
		Detail:   "The requested demo scenario does not exist.",
	},
}

// Lookup returns the template registered for code.
func Lookup(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}
