package services

import "errors"

var (
	// ErrNotFound covers a missing entity, version, or linked record.
	ErrNotFound = errors.New("not found")

	// ErrMissingAssignmentLink is returned when a session reading
	// rederivation is requested for a session with no linked assignment.
	ErrMissingAssignmentLink = errors.New("session has no linked assignment")

	// ErrAssignmentSourceUnavailable is returned when a linked assignment
	// cannot be consulted because no external assignment source was
	// configured at startup.
	ErrAssignmentSourceUnavailable = errors.New("assignment source not configured")

	// ErrInvalidGenerationOutput is returned when the refinement workflow
	// produced content that was required to be JSON but is not parseable.
	ErrInvalidGenerationOutput = errors.New("generation output is not valid JSON")

	// ErrVersionMismatch is returned when a revert names a version that
	// belongs to a different entity.
	ErrVersionMismatch = errors.New("version does not belong to this entity")
)
