package service

import (
	"context"
	"log/slog"
	"sort"

	"github.com/addonindex/idxstat/internal/domain"
	"github.com/addonindex/idxstat/internal/indexstatus"
	"github.com/lithammer/fuzzysearch/fuzzy"
)

// RowBadgePolicy decides which badge a row without a record shows
type RowBadgePolicy int

const (
	// BadgeLegacy shows pending rows with the Okay badge, matching the web view
	BadgeLegacy RowBadgePolicy = iota
	// BadgeStrict shows pending rows with a Pending badge
	BadgeStrict
)

// Row is one line of the status table
type Row struct {
	UID    string
	State  domain.ItemState // classification used by the summary
	Badge  domain.ItemState // what the row displays
	Record domain.StatusRecord
	// HasRecord is false when the server has no entry for UID
	HasRecord bool
	// RecordJSON is the indented record, empty when there is no entry
	RecordJSON string
}

// Report is the projection rendered by both front ends
type Report struct {
	Counts domain.Counts
	Rows   []Row
	// LegacyPendingRows counts pending rows displayed with the Okay badge
	LegacyPendingRows int
}

// BuildReport classifies every expected item once, in server order
func BuildReport(resp *domain.StatusResponse, policy RowBadgePolicy) Report {
	items := resp.Items()
	report := Report{Rows: make([]Row, 0, len(items))}

	for _, item := range items {
		state := resp.Classify(item.UID)
		report.Counts.Add(state)

		rec, ok := resp.Record(item.UID)
		row := Row{
			UID:       item.UID,
			State:     state,
			Badge:     rowBadge(state, policy),
			Record:    rec,
			HasRecord: ok,
		}
		if ok {
			row.RecordJSON = rec.Indented()
		}
		if state == domain.StatePending && row.Badge == domain.StateOkay {
			report.LegacyPendingRows++
		}
		report.Rows = append(report.Rows, row)
	}

	return report
}

// rowBadge mirrors the per-row check of the web view: only a record with
// an error shows Error, everything else shows Okay unless strict.
func rowBadge(state domain.ItemState, policy RowBadgePolicy) domain.ItemState {
	switch state {
	case domain.StateError:
		return domain.StateError
	case domain.StatePending:
		if policy == BadgeStrict {
			return domain.StatePending
		}
		return domain.StateOkay
	default:
		return domain.StateOkay
	}
}

// FilterRows returns the rows whose uid fuzzily matches query, best match
// first. Ties keep server order.
func FilterRows(rows []Row, query string) []Row {
	if query == "" {
		return rows
	}

	uids := make([]string, len(rows))
	for i, r := range rows {
		uids[i] = r.UID
	}

	ranks := fuzzy.RankFindFold(query, uids)
	sort.SliceStable(ranks, func(i, j int) bool {
		if ranks[i].Distance != ranks[j].Distance {
			return ranks[i].Distance < ranks[j].Distance
		}
		return ranks[i].OriginalIndex < ranks[j].OriginalIndex
	})

	out := make([]Row, 0, len(ranks))
	for _, r := range ranks {
		out = append(out, rows[r.OriginalIndex])
	}
	return out
}

// RowsInState keeps the rows classified as state, in order
func RowsInState(rows []Row, state domain.ItemState) []Row {
	var out []Row
	for _, r := range rows {
		if r.State == state {
			out = append(out, r)
		}
	}
	return out
}

// StatusService loads the status and turns it into a Report
type StatusService struct {
	source indexstatus.Source
	policy RowBadgePolicy
	logger *slog.Logger
}

// NewStatusService creates a new status service
func NewStatusService(source indexstatus.Source, policy RowBadgePolicy, logger *slog.Logger) *StatusService {
	if logger == nil {
		logger = slog.Default()
	}
	return &StatusService{
		source: source,
		policy: policy,
		logger: logger,
	}
}

// Load fetches the status once and builds the report
func (s *StatusService) Load(ctx context.Context) (Report, error) {
	resp, err := s.source.FetchStatus(ctx)
	if err != nil {
		if ctx.Err() == nil {
			s.logger.Error("loading indexing status failed",
				"kind", domain.FailureKindOf(err).String(),
				"error", err)
		}
		return Report{}, err
	}

	report := BuildReport(resp, s.policy)
	s.logger.Info("indexing status loaded",
		"okay", report.Counts.Okay,
		"error", report.Counts.Error,
		"pending", report.Counts.Pending)
	if report.LegacyPendingRows > 0 {
		s.logger.Warn("pending rows are displayed with the Okay badge; set ui.row_badges=strict to badge them as Pending",
			"rows", report.LegacyPendingRows)
	}
	return report, nil
}
