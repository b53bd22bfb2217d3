package snapshot

import (
	"os"
	"sort"
	"strings"

	"github.com/pders01/timewarp/internal/models"
)

// Keep reasons reported in a Plan.
const (
	ReasonKeep       = "keep"
	ReasonReferenced = "referenced by issue"
)

// Kept is a snapshot the collector will not delete.
type Kept struct {
	SnapshotID string   `json:"snapshot_id"`
	Reason     string   `json:"reason"`
	Issues     []string `json:"issues,omitempty"`
}

// Plan is the outcome of a garbage collection pass, computed before anything
// is deleted.
type Plan struct {
	Skipped bool     `json:"skipped"`
	Reason  string   `json:"reason,omitempty"`
	Delete  []string `json:"delete"`
	Keep    []Kept   `json:"keep"`
	Failed  []string `json:"failed,omitempty"`
}

// PlanGC decides which snapshots a collection keeping keepID would delete.
// While the workspace is in the past nothing is collected.
func (m *Manager) PlanGC(keepID string) (Plan, error) {
	plan := Plan{Delete: []string{}, Keep: []Kept{}}

	if st := m.states.Load(); st.Mode == models.ModePast {
		plan.Skipped = true
		plan.Reason = "workspace is in past mode"
		return plan, nil
	}

	ids, err := m.IDs()
	if err != nil {
		return plan, err
	}
	pins := m.pinned()
	for _, id := range ids {
		switch issues, pinned := pins[id]; {
		case id == keepID:
			plan.Keep = append(plan.Keep, Kept{SnapshotID: id, Reason: ReasonKeep})
		case pinned:
			sorted := append([]string(nil), issues...)
			sort.Strings(sorted)
			plan.Keep = append(plan.Keep, Kept{SnapshotID: id, Reason: ReasonReferenced, Issues: sorted})
		default:
			plan.Delete = append(plan.Delete, id)
		}
	}
	return plan, nil
}

// Cleanup deletes every snapshot that is neither keepID nor referenced by an
// issue. Deletion is best-effort: failures are logged and listed in the
// returned plan's Failed field.
func (m *Manager) Cleanup(keepID string) (Plan, error) {
	plan, err := m.PlanGC(keepID)
	if err != nil || plan.Skipped {
		return plan, err
	}
	for _, id := range plan.Delete {
		if err := os.RemoveAll(m.paths.SnapshotDir(id)); err != nil {
			m.log.WithError(err).WithField("snapshot_id", id).Warn("failed to delete snapshot")
			plan.Failed = append(plan.Failed, id)
			continue
		}
		m.log.WithField("snapshot_id", id).Debug("snapshot deleted")
	}
	if len(plan.Delete) > 0 {
		m.log.WithField("deleted", strings.Join(plan.Delete, ",")).Info("unreferenced snapshots collected")
	}
	return plan, nil
}
