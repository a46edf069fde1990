package store

import (
	"context"
	"fmt"
	"sort"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

var sessionEventSelectColumns = []string{
	"id", "sequence", "timestamp", "session_id", "action", "mode", "topic",
	"score", "total", "percentage", "duration_secs", "timed_out", "mastered",
}

func (r *eventRepo) AppendSessionEvent(ctx context.Context, data SessionEventData) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}

	q, args := sqlite().Insert(sessEventsTable).
		Columns(sessionEventSelectColumns[1:]...).
		Values(
			seqNum, time.Now().UTC(), data.SessionID, data.Action, data.Mode, data.Topic,
			data.Score, data.Total, data.Percentage, data.DurationSecs, data.TimedOut, data.Mastered,
		).
		Query()
	if err := r.drv.Exec(ctx, q, args, nil); err != nil {
		return fmt.Errorf("save session event: %w", err)
	}
	return nil
}

func (r *eventRepo) QuerySessionEvents(ctx context.Context, opts QueryOpts) ([]SessionEventRecord, error) {
	sel := sqlite().Select(sessionEventSelectColumns...).From(entsql.Table(sessEventsTable))
	applyQueryOpts(sel, opts)

	var out []SessionEventRecord
	err := r.query(ctx, sel, func(rows *entsql.Rows) error {
		var e SessionEventRecord
		if err := rows.Scan(
			&e.ID, &e.Sequence, &e.Timestamp, &e.SessionID, &e.Action, &e.Mode, &e.Topic,
			&e.Score, &e.Total, &e.Percentage, &e.DurationSecs, &e.TimedOut, &e.Mastered,
		); err != nil {
			return err
		}
		out = append(out, e)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("query session events: %w", err)
	}
	return out, nil
}

// SessionStats aggregates "end" and "mastered" events per topic. Tutor
// sessions have no topic and are skipped.
func (r *eventRepo) SessionStats(ctx context.Context) ([]TopicStats, error) {
	sel := sqlite().Select("topic", "action", "percentage").
		From(entsql.Table(sessEventsTable)).
		Where(entsql.And(
			entsql.NEQ("topic", ""),
			entsql.In("action", ActionEnd, ActionMastered),
		))

	byTopic := make(map[string]*TopicStats)
	err := r.query(ctx, sel, func(rows *entsql.Rows) error {
		var topic, action string
		var pct int
		if err := rows.Scan(&topic, &action, &pct); err != nil {
			return err
		}
		st, ok := byTopic[topic]
		if !ok {
			st = &TopicStats{Topic: topic}
			byTopic[topic] = st
		}
		switch action {
		case ActionEnd:
			st.Sessions++
			if pct > st.BestPercent {
				st.BestPercent = pct
			}
		case ActionMastered:
			st.Mastered = true
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("query session stats: %w", err)
	}

	out := make([]TopicStats, 0, len(byTopic))
	for _, st := range byTopic {
		out = append(out, *st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Topic < out[j].Topic })
	return out, nil
}
