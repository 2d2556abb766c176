package recordstore

import (
	"encoding/json"
	"time"

	"go.trai.ch/taskhistory/internal/core/domain"
	"go.trai.ch/zerr"
)

type historyDocument struct {
	Executions []executionDocument `json:"executions"`
}

type executionDocument struct {
	OutputFiles    []string                    `json:"output_files,omitempty"`
	InputSnapshot  string                      `json:"input_snapshot"`
	OutputSnapshot string                      `json:"output_snapshot"`
	RecordedAt     time.Time                   `json:"recorded_at,omitzero"`
	Properties     map[string]propertyDocument `json:"properties,omitempty"`
}

type propertyDocument struct {
	Kind  string          `json:"kind"`
	Value json.RawMessage `json:"value"`
}

// encodeHistory serializes history. Every snapshot reference must already
// carry a durable identifier.
func encodeHistory(history *domain.TaskHistory) ([]byte, error) {
	doc := historyDocument{Executions: make([]executionDocument, 0, history.Len())}

	for i, rec := range history.Executions() {
		inputID, ok := rec.InputRef().ID()
		if !ok {
			return nil, zerr.With(zerr.With(domain.ErrSnapshotNotPersisted, "snapshot", "input"), "execution", i)
		}
		outputID, ok := rec.OutputRef().ID()
		if !ok {
			return nil, zerr.With(zerr.With(domain.ErrSnapshotNotPersisted, "snapshot", "output"), "execution", i)
		}

		props, err := encodeProperties(rec.Properties)
		if err != nil {
			return nil, zerr.With(err, "execution", i)
		}

		doc.Executions = append(doc.Executions, executionDocument{
			OutputFiles:    rec.OutputFiles.Paths(),
			InputSnapshot:  inputID,
			OutputSnapshot: outputID,
			RecordedAt:     rec.RecordedAt,
			Properties:     props,
		})
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return nil, zerr.Wrap(err, domain.ErrStoreMarshalFailed.Error())
	}
	return data, nil
}

func encodeProperties(props map[string]domain.Property) (map[string]propertyDocument, error) {
	if len(props) == 0 {
		return nil, nil
	}

	out := make(map[string]propertyDocument, len(props))
	for name, p := range props {
		raw, err := json.Marshal(p.Value)
		if err != nil {
			return nil, zerr.With(zerr.Wrap(err, domain.ErrStoreMarshalFailed.Error()), "property", name)
		}
		out[name] = propertyDocument{Kind: p.Kind, Value: raw}
	}
	return out, nil
}

// decodeHistory deserializes a history, resolving property kinds through types.
// Snapshots come back as deferred references.
func decodeHistory(data []byte, types *domain.TypeRegistry) (*domain.TaskHistory, error) {
	var doc historyDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, zerr.Wrap(err, domain.ErrStoreUnmarshalFailed.Error())
	}

	recs := make([]*domain.ExecutionRecord, 0, len(doc.Executions))
	for i, e := range doc.Executions {
		props, err := decodeProperties(e.Properties, types)
		if err != nil {
			return nil, zerr.With(err, "execution", i)
		}
		recs = append(recs, domain.RestoreExecutionRecord(
			e.OutputFiles,
			props,
			e.RecordedAt,
			e.InputSnapshot,
			e.OutputSnapshot,
		))
	}

	return domain.NewTaskHistory(recs...), nil
}

func decodeProperties(docs map[string]propertyDocument, types *domain.TypeRegistry) (map[string]domain.Property, error) {
	out := make(map[string]domain.Property, len(docs))
	for name, d := range docs {
		v, err := types.New(d.Kind)
		if err != nil {
			return nil, zerr.With(zerr.Wrap(err, domain.ErrStoreUnmarshalFailed.Error()), "property", name)
		}
		if err := json.Unmarshal(d.Value, v); err != nil {
			return nil, zerr.With(zerr.Wrap(err, domain.ErrStoreUnmarshalFailed.Error()), "property", name)
		}
		out[name] = domain.Property{Kind: d.Kind, Value: v}
	}
	return out, nil
}
