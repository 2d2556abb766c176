package domain

import (
	"maps"
	"time"
)

// ExecutionRecord is the fingerprint-relevant state of one task execution.
type ExecutionRecord struct {
	OutputFiles FileSet
	Properties  map[string]Property
	RecordedAt  time.Time

	input  SnapshotRef
	output SnapshotRef
}

// NewExecutionRecord creates a record for an execution producing outputFiles.
func NewExecutionRecord(outputFiles []string, recordedAt time.Time) *ExecutionRecord {
	return &ExecutionRecord{
		OutputFiles: NewFileSet(outputFiles...),
		Properties:  make(map[string]Property),
		RecordedAt:  recordedAt,
	}
}

// RestoreExecutionRecord rebuilds a persisted record whose snapshots are
// referenced by durable identifiers and loaded on first access.
func RestoreExecutionRecord(
	outputFiles []string,
	properties map[string]Property,
	recordedAt time.Time,
	inputID, outputID string,
) *ExecutionRecord {
	props := make(map[string]Property, len(properties))
	maps.Copy(props, properties)
	return &ExecutionRecord{
		OutputFiles: NewFileSet(outputFiles...),
		Properties:  props,
		RecordedAt:  recordedAt,
		input:       DeferredSnapshot(inputID),
		output:      DeferredSnapshot(outputID),
	}
}

// InputSnapshot returns the input snapshot, loading it once through loader
// if only its identifier is held.
func (e *ExecutionRecord) InputSnapshot(loader SnapshotLoader) (FileSnapshot, error) {
	return resolveInto(&e.input, loader)
}

// OutputSnapshot returns the output snapshot, loading it once through loader
// if only its identifier is held.
func (e *ExecutionRecord) OutputSnapshot(loader SnapshotLoader) (FileSnapshot, error) {
	return resolveInto(&e.output, loader)
}

// SetInputSnapshot replaces the input snapshot and marks it for persisting.
func (e *ExecutionRecord) SetInputSnapshot(v FileSnapshot) {
	e.input = ResolvedSnapshot(v)
}

// SetOutputSnapshot replaces the output snapshot and marks it for persisting.
func (e *ExecutionRecord) SetOutputSnapshot(v FileSnapshot) {
	e.output = ResolvedSnapshot(v)
}

// InputRef returns the input snapshot reference.
func (e *ExecutionRecord) InputRef() SnapshotRef {
	return e.input
}

// OutputRef returns the output snapshot reference.
func (e *ExecutionRecord) OutputRef() SnapshotRef {
	return e.output
}

// SetInputRef replaces the input snapshot reference as is.
func (e *ExecutionRecord) SetInputRef(r SnapshotRef) {
	e.input = r
}

// SetOutputRef replaces the output snapshot reference as is.
func (e *ExecutionRecord) SetOutputRef(r SnapshotRef) {
	e.output = r
}

func resolveInto(ref *SnapshotRef, loader SnapshotLoader) (FileSnapshot, error) {
	if ref.resolved {
		return ref.value, nil
	}

	v, err := ResolveSnapshot(*ref, loader)
	if err != nil {
		return FileSnapshot{}, err
	}

	ref.value = v
	ref.resolved = true
	return v, nil
}
