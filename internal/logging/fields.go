package logging

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldRunID is the standardized structured logging key for pipeline run identifiers.
	FieldRunID = "run_id"
	// FieldMovieKey is the standardized structured logging key for normalized movie identities.
	FieldMovieKey = "movie_key"
	// FieldStage is the standardized structured logging key for pipeline stage names.
	FieldStage = "stage"
)
