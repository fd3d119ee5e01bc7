package logging

// Standardized field names for structured logging. These constants keep the
// application's log output consistent and easy to filter.
const (
	FieldTransactionID = "transaction_id"
	FieldMerchant      = "merchant"
	FieldCategory      = "category"
	FieldConfidence    = "confidence"
	FieldSource        = "source"
	FieldReason        = "reason"
	FieldPass          = "pass"
	FieldGroup         = "recurring_group"
	FieldCount         = "count"
	FieldInputFile     = "input_file"
	FieldOutputFile    = "output_file"
	FieldError         = "error"
	FieldDuration      = "duration_ms"
)
