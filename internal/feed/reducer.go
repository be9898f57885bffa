package feed

import "speechcraft/internal/domain"

// Reduce applies one change event to a newest-first job list and returns
// the updated list. It is pure: the input slice is never mutated.
//
// Semantics, chosen so at-least-once delivery converges:
//
//   - insert: prepend; if the job is already present, the event's copy
//     replaces it in place instead (last write wins).
//   - update: replace in place; if the job is absent, prepend it so a
//     missed insert still surfaces the row.
//   - delete: remove by id; absent id is a no-op.
func Reduce(list []domain.TranscriptionJob, ev domain.ChangeEvent) []domain.TranscriptionJob {
	switch ev.Type {
	case domain.ChangeInsert:
		if ev.Job == nil {
			return list
		}
		if i := indexOf(list, ev.JobID); i >= 0 {
			return replaceAt(list, i, *ev.Job)
		}
		out := make([]domain.TranscriptionJob, 0, len(list)+1)
		out = append(out, *ev.Job)
		return append(out, list...)

	case domain.ChangeUpdate:
		if ev.Job == nil {
			return list
		}
		if i := indexOf(list, ev.JobID); i >= 0 {
			return replaceAt(list, i, *ev.Job)
		}
		out := make([]domain.TranscriptionJob, 0, len(list)+1)
		out = append(out, *ev.Job)
		return append(out, list...)

	case domain.ChangeDelete:
		i := indexOf(list, ev.JobID)
		if i < 0 {
			return list
		}
		out := make([]domain.TranscriptionJob, 0, len(list)-1)
		out = append(out, list[:i]...)
		return append(out, list[i+1:]...)
	}

	return list
}

func indexOf(list []domain.TranscriptionJob, id string) int {
	for i := range list {
		if list[i].ID == id {
			return i
		}
	}
	return -1
}

func replaceAt(list []domain.TranscriptionJob, i int, job domain.TranscriptionJob) []domain.TranscriptionJob {
	out := make([]domain.TranscriptionJob, len(list))
	copy(out, list)
	out[i] = job
	return out
}
