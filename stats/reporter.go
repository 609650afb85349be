package stats

import (
	"encoding/json"
	"fmt"
	"os"

	"go.uber.org/zap"
)

// SlotReport is one slot's accounting, shaped for the JSON report file.
// Counts is sparse: only identifiers with a non-zero counter appear.
type SlotReport struct {
	Slot        int               `json:"slot"`
	StartTimeMS uint64            `json:"start_time_ms"`
	Counts      map[uint64]uint32 `json:"counts"`
}

// Reporter writes accounting snapshots somewhere an operator can read them.
type Reporter interface {
	WriteFile(filepath string) error
}

type jsonReporter struct {
	logger *zap.SugaredLogger
	store  *Store
}

// NewJSONReporter reports every slot with non-zero accounting as JSON.
func NewJSONReporter(logger *zap.SugaredLogger, store *Store) Reporter {
	return &jsonReporter{logger: logger, store: store}
}

func (r *jsonReporter) snapshot() []SlotReport {
	tasks := r.store.ExclusiveAccess()
	defer tasks.Release()

	var reports []SlotReport

	for slot, block := range tasks.Value() {
		counts := make(map[uint64]uint32)

		for id, n := range block.CallTimes {
			if n != 0 {
				counts[uint64(id)] = n
			}
		}

		if len(counts) == 0 && block.StartTimeMS == 0 {
			continue
		}

		reports = append(reports, SlotReport{
			Slot:        slot,
			StartTimeMS: block.StartTimeMS,
			Counts:      counts,
		})
	}

	return reports
}

func (r *jsonReporter) WriteFile(filepath string) error {
	r.logger.Infow("saving count stats", "path", filepath)

	bts, err := json.Marshal(r.snapshot())
	if err != nil {
		return fmt.Errorf("failed to marshal stats: %w", err)
	}

	if err := os.WriteFile(filepath, bts, 0o644); err != nil {
		return fmt.Errorf("failed to save syscall stats: %w", err)
	}

	return nil
}
