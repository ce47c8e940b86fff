package intent

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"
)

// Canonical status values.
const (
	StatusPending    = "pending"
	StatusInProgress = "in_progress"
	StatusDone       = "done"
)

// canonicalStatuses is the scan order for explicit English status keywords.
var canonicalStatuses = []string{StatusPending, StatusInProgress, StatusDone}

type alias struct {
	term   string
	status string
}

// statusAliases maps Persian and English surface terms onto the three
// canonical statuses. Order is significant for equal-length matches.
var statusAliases = []alias{
	// Persian
	{"انجام‌شده", StatusDone},
	{"انجام شده", StatusDone},
	{"تمام شده", StatusDone},
	{"تموم شده", StatusDone},
	{"انجام", StatusDone},
	{"تمام", StatusDone},
	{"در حال انجام", StatusInProgress},
	{"درحال انجام", StatusInProgress},
	{"در جریان", StatusInProgress},
	{"شروع شده", StatusInProgress},
	{"معلق", StatusPending},
	{"در انتظار", StatusPending},
	{"منتظر", StatusPending},
	// English
	{"done", StatusDone},
	{"completed", StatusDone},
	{"finish", StatusDone},
	{"finished", StatusDone},
	{"in_progress", StatusInProgress},
	{"in progress", StatusInProgress},
	{"inprogress", StatusInProgress},
	{"started", StatusInProgress},
	{"working", StatusInProgress},
	{"pending", StatusPending},
	{"waiting", StatusPending},
	{"new", StatusPending},
}

var (
	aliasIndex = func() map[string]string {
		m := make(map[string]string, len(statusAliases))
		for _, a := range statusAliases {
			m[a.term] = a.status
		}
		return m
	}()

	// aliasesByLength holds the table longest term first so that a scan
	// prefers "در حال انجام" over the "انجام" it contains.
	aliasesByLength = func() []alias {
		sorted := append([]alias(nil), statusAliases...)
		sort.SliceStable(sorted, func(i, j int) bool {
			return utf8.RuneCountInString(sorted[i].term) > utf8.RuneCountInString(sorted[j].term)
		})
		return sorted
	}()

	// statusAlternation is a regexp alternation of every alias, longest first.
	statusAlternation = func() string {
		terms := make([]string, len(aliasesByLength))
		for i, a := range aliasesByLength {
			terms[i] = regexp.QuoteMeta(a.term)
		}
		return strings.Join(terms, "|")
	}()
)

// ResolveStatus maps a status term onto its canonical value. Canonical values
// resolve to themselves.
func ResolveStatus(term string) (string, bool) {
	key := strings.TrimSpace(term)
	if s, ok := aliasIndex[key]; ok {
		return s, true
	}
	s, ok := aliasIndex[strings.ToLower(key)]
	return s, ok
}

// Aliases returns a copy of the alias table as term → canonical status.
func Aliases() map[string]string {
	m := make(map[string]string, len(aliasIndex))
	for k, v := range aliasIndex {
		m[k] = v
	}
	return m
}

// findAlias returns the canonical status of the longest alias contained in
// text.
func findAlias(text string) (string, bool) {
	for _, a := range aliasesByLength {
		if strings.Contains(text, a.term) {
			return a.status, true
		}
	}
	return "", false
}

// findCanonical returns the first explicit canonical English status in text.
func findCanonical(text string) (string, bool) {
	for _, s := range canonicalStatuses {
		if strings.Contains(text, s) {
			return s, true
		}
	}
	return "", false
}
