package application

import "time"

const (
	metaKey              = "meta"
	metaResubmittedFrom  = "resubmittedFromId"
	metaResubmittedAtKey = "resubmittedAt"
)

// ResubmissionMeta links a new application to the one it was created from.
// Attached exactly once, at resubmission time, and never mutated afterward.
type ResubmissionMeta struct {
	ResubmittedFromID int64     `json:"resubmittedFromId"`
	ResubmittedAt     time.Time `json:"resubmittedAt"`
}

// BuildResubmissionMeta computes the parent link for a new application
// derived from source. A rejected source becomes the direct parent; a
// not-rejected source (a linked draft that was saved and reopened) passes
// its own ancestor through unchanged, so reopening a draft does not grow
// the chain. Returns nil when there is nothing to link.
func BuildResubmissionMeta(source *Application, now time.Time) *ResubmissionMeta {
	if source == nil {
		return nil
	}

	var parentID int64
	if source.Status == StatusRejected {
		parentID = source.ID
	} else {
		parentID = resubmittedFromID(source.FormData)
	}

	if parentID == 0 {
		return nil
	}

	return &ResubmissionMeta{
		ResubmittedFromID: parentID,
		ResubmittedAt:     now,
	}
}

// AttachResubmissionMeta merges meta into formData.meta, preserving any
// other meta keys. A nil meta returns formData unchanged.
func AttachResubmissionMeta(formData FormData, meta *ResubmissionMeta) FormData {
	if meta == nil {
		return formData
	}

	result := FormData{}
	for k, v := range formData {
		result[k] = v
	}

	metaMap := map[string]any{}
	if existing, ok := result[metaKey].(map[string]any); ok {
		for k, v := range existing {
			metaMap[k] = v
		}
	}
	metaMap[metaResubmittedFrom] = meta.ResubmittedFromID
	metaMap[metaResubmittedAtKey] = meta.ResubmittedAt.Format(time.RFC3339)
	result[metaKey] = metaMap

	return result
}

// LinkSummary is the derived resubmission relation over a list of
// applications, used for list-view badges.
type LinkSummary struct {
	// ParentIDs holds every application id that has at least one resubmission.
	ParentIDs map[int64]struct{}
	// ChildToParent maps a resubmitted application to its direct parent.
	ChildToParent map[int64]int64
}

func (s LinkSummary) HasResubmission(id int64) bool {
	_, ok := s.ParentIDs[id]
	return ok
}

func (s LinkSummary) ParentOf(id int64) (int64, bool) {
	parent, ok := s.ChildToParent[id]
	return parent, ok
}

// SummarizeLinks derives the reverse resubmission index in a single pass.
func SummarizeLinks(apps []*Application) LinkSummary {
	summary := LinkSummary{
		ParentIDs:     make(map[int64]struct{}),
		ChildToParent: make(map[int64]int64),
	}

	for _, app := range apps {
		parentID := resubmittedFromID(app.FormData)
		if parentID == 0 {
			continue
		}
		summary.ParentIDs[parentID] = struct{}{}
		summary.ChildToParent[app.ID] = parentID
	}

	return summary
}

func resubmittedFromID(formData FormData) int64 {
	meta, ok := formData[metaKey].(map[string]any)
	if !ok {
		return 0
	}

	switch v := meta[metaResubmittedFrom].(type) {
	case float64:
		return int64(v)
	case int64:
		return v
	case int:
		return int64(v)
	}
	return 0
}
