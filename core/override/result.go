package override

// ErrorType classifies which pipeline stage failed an override request.
type ErrorType string

const (
	ErrTypeValidation ErrorType = "VALIDATION_ERROR"
	ErrTypeDatabase   ErrorType = "DATABASE_ERROR"
	ErrTypeSchedule   ErrorType = "SCHEDULE_ERROR"
	ErrTypeNotion     ErrorType = "NOTION_ERROR"
	ErrTypeUnknown    ErrorType = "UNKNOWN_ERROR"
)

// Stage names the steps of the override pipeline, in order.
type Stage string

const (
	StageReceived   Stage = "received"
	StageValidated  Stage = "validated"
	StagePersisted  Stage = "persisted"
	StageRegenerate Stage = "regenerate"
	StageMirror     Stage = "mirror"
	StageNotify     Stage = "notify"
	StageComplete   Stage = "complete"
)

// Classify maps a failing pipeline stage to the error type reported to
// callers.
func Classify(stage Stage) ErrorType {
	switch stage {
	case StageReceived, StageValidated:
		return ErrTypeValidation
	case StagePersisted:
		return ErrTypeDatabase
	case StageRegenerate:
		return ErrTypeSchedule
	case StageMirror:
		return ErrTypeNotion
	default:
		return ErrTypeUnknown
	}
}

// Result is the structured outcome returned for every override request.
// Requests never surface raw errors to callers: failures are folded into
// Error and ErrorType.
type Result struct {
	Success           bool      `json:"success"`
	Message           string    `json:"message,omitempty"`
	OverriddenDates   []string  `json:"overridden_dates,omitempty"`
	ReplacedEngineers []string  `json:"replaced_engineers,omitempty"`
	Error             string    `json:"error,omitempty"`
	ErrorType         ErrorType `json:"error_type,omitempty"`
}

func failure(stage Stage, msg string) Result {
	return Result{Error: msg, ErrorType: Classify(stage)}
}
