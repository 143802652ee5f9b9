package forensics

// SessionStreakThreshold is the streak length of one RSID that closes a
// session when the streak ends.
const SessionStreakThreshold = 10

// SegmentSessions partitions timeline into sessions. A session closes at
// position i when timeline[i] differs from timeline[i-1] and the streak
// ending at i-1 is at least SessionStreakThreshold long. The final session
// is always closed at the end of the timeline.
//
// Concatenating the RSIDs of the returned sessions reproduces timeline.
func SegmentSessions(timeline []string) []Session {
	sessions := []Session{}
	if len(timeline) == 0 {
		return sessions
	}

	start := 0
	streak := 1
	for i := 1; i < len(timeline); i++ {
		if timeline[i] == timeline[i-1] {
			streak++
			continue
		}
		if streak >= SessionStreakThreshold {
			sessions = append(sessions, newSession(timeline, start, i))
			start = i
		}
		streak = 1
	}
	return append(sessions, newSession(timeline, start, len(timeline)))
}

func newSession(timeline []string, start, end int) Session {
	ids := append([]string(nil), timeline[start:end]...)
	return Session{
		Start:       start,
		RSIDs:       ids,
		UniqueRSIDs: distinct(ids),
	}
}

// SummarizeSessions reports averages over sessions. When totalEditMinutes
// is known (> 0) it is spread evenly across sessions.
func SummarizeSessions(sessions []Session, totalEditMinutes int) SessionSummary {
	if sessions == nil {
		sessions = []Session{}
	}
	s := SessionSummary{
		Sessions:         sessions,
		Count:            len(sessions),
		TotalEditMinutes: totalEditMinutes,
	}
	if s.Count == 0 {
		return s
	}

	lengths := make([]float64, s.Count)
	unique := make([]float64, s.Count)
	for i, sess := range sessions {
		lengths[i] = float64(sess.Len())
		unique[i] = float64(sess.UniqueRSIDs)
	}
	s.AvgLength = mean(lengths)
	s.AvgUniqueRSIDs = mean(unique)
	if totalEditMinutes > 0 {
		s.EstimatedMinutesPerSession = float64(totalEditMinutes) / float64(s.Count)
	}
	return s
}

func distinct(values []string) int {
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		seen[v] = struct{}{}
	}
	return len(seen)
}
