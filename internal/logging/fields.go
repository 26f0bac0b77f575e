package logging

// Standardized attribute keys. Keep these aligned across components so log
// lines stay grep-able.
const (
	FieldComponent  = "component"
	FieldEventType  = "event_type"
	FieldFile       = "file"
	FieldStrategy   = "strategy"
	FieldAnalysisID = "analysis_id"
	FieldRunID      = "run_id"
	FieldDuration   = "duration"
	FieldErrorHint  = "error_hint"
)
