// Package intent maps free-form Persian/English task commands onto one of the
// five task tools. Matching is rule-ordered and deterministic: pattern groups
// are tried in a fixed order and the first group that matches wins.
package intent

import (
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Name is a canonical tool name.
type Name string

const (
	ListTasks        Name = "list_tasks"
	GetTaskByID      Name = "get_task_by_id"
	CreateTask       Name = "create_task"
	UpdateTaskStatus Name = "update_task_status"
	DeleteTask       Name = "delete_task"
)

// Result is the outcome of parsing one utterance. An empty Intent means the
// input was not understood; Args is then empty and no tool may be called.
type Result struct {
	Intent Name           `json:"intent,omitempty"`
	Args   map[string]any `json:"arguments"`
}

// Recognized reports whether an intent was found.
func (r Result) Recognized() bool {
	return r.Intent != ""
}

func none() Result {
	return Result{Args: map[string]any{}}
}

// utterance holds the input in the forms the groups need.
type utterance struct {
	raw   string // trimmed input as typed (titles)
	text  string // normalized, original casing
	lower string // normalized, lower-cased (matching)
}

// persianFolder maps Persian and Arabic-Indic digits to ASCII and the Arabic
// yeh/kaf to their Persian forms.
var persianFolder = strings.NewReplacer(
	"۰", "0", "۱", "1", "۲", "2", "۳", "3", "۴", "4",
	"۵", "5", "۶", "6", "۷", "7", "۸", "8", "۹", "9",
	"٠", "0", "١", "1", "٢", "2", "٣", "3", "٤", "4",
	"٥", "5", "٦", "6", "٧", "7", "٨", "8", "٩", "9",
	"ي", "ی", "ك", "ک",
)

func normalize(input string) utterance {
	text := strings.TrimSpace(persianFolder.Replace(norm.NFKC.String(input)))
	return utterance{raw: strings.TrimSpace(input), text: text, lower: strings.ToLower(text)}
}

// group is one precedence level of the matcher.
type group struct {
	name     string
	patterns []*regexp.Regexp
	match    func(m []string, u utterance) (Result, bool)
}

func compile(exprs ...string) []*regexp.Regexp {
	res := make([]*regexp.Regexp, len(exprs))
	for i, e := range exprs {
		res[i] = regexp.MustCompile(strings.ReplaceAll(e, "STATUS", statusAlternation))
	}
	return res
}

var listPatterns = compile(
	`لیست.*تسک`,
	`تسک.*ها.*نشون`,
	`نشون.*بده.*تسک`,
	`همه.*تسک`,
	`لیست.*(pending|in_progress|done|انجام|معلق)`,
	`(pending|in_progress|done).*لیست`,
	`list.*task`,
	`show.*tasks`,
	`get.*tasks`,
	`all.*task`,
	`list.*(pending|in_progress|done)`,
	`(pending|in_progress|done).*list`,
)

// createPatterns run against the input as typed so titles keep the user's
// casing, digits and letter forms. The normalized text is tried second.
var createPatterns = compile(
	`(?i)(?:یک\s*)?تسک.*(?:جدید\s*)?(?:با\s*عنوان|عنوان)\s+["']?(.+?)["']?(?:\s*بساز)?$`,
	`(?i)(?:بساز|ایجاد).*تسک.*(?:با\s*عنوان|عنوان)\s+["']?(.+?)["']?$`,
	`(?i)(?:تسک\s*)?(?:جدید\s*)?(?:با\s*عنوان|عنوان)\s+["']?(.+?)["']?\s*(?:بساز|ایجاد)`,
	`(?i)create.*task.*(?:titled?|with)\s+["']?(.+)["']?$`,
	`(?i)new.*task\s+["']?(.+)["']?$`,
	`(?i)add.*task\s+["']?(.+)["']?$`,
)

var updatePatterns = compile(
	`وضعیت.*?تسک\s*(\d+).*?(?:رو|را)?\s*(STATUS)`,
	`(?:تسک\s*)?(\d+).*?(?:رو|را)?\s*(STATUS)\s*کن`,
	`(?:تغییر|آپدیت).*?(?:وضعیت)?.*?(\d+).*?(?:به)?\s*(STATUS)`,
	`update.*?(?:task\s*)?(\d+).*?(?:to|status)?\s*(STATUS)`,
	`(?:mark|set).*?(?:task\s*)?(\d+).*?(?:as|to)?\s*(STATUS)`,
)

var detailPatterns = compile(
	`جزئیات.*تسک\s*(\d+)`,
	`تسک\s*(\d+).*(?:جزئیات|نشون|ببین)`,
	`(?:نشون|نمایش).*تسک\s*(\d+)`,
	`(?:get|show|view).*task\s*(\d+)`,
	`task\s*(\d+).*(?:detail|info)`,
	`(?:detail|info).*(?:of|for)?.*task\s*(\d+)`,
)

var deletePatterns = compile(
	`(?:حذف|پاک).*تسک\s*(\d+)`,
	`تسک\s*(\d+).*(?:رو|را)?\s*(?:حذف|پاک)\s*کن`,
	`delete.*task\s*(\d+)`,
	`remove.*task\s*(\d+)`,
	`task\s*(\d+).*delete`,
)

var (
	// trailingVerbs strips creation verbs that leak into a captured title.
	trailingVerbs = regexp.MustCompile(`(?i)\s*(بساز|ایجاد کن|create|add).*$`)
	firstNumber   = regexp.MustCompile(`\d+`)

	detailWords = []string{"جزئیات", "detail", "نشون", "show"}
	taskWords   = []string{"تسک", "task", "list", "لیست", "همه", "all"}
)

// groups is the precedence order. A sentence matching several groups is
// classified by the first.
var groups = []group{
	{name: "list", patterns: listPatterns, match: matchList},
	{name: "create", patterns: createPatterns, match: matchCreate},
	{name: "update", patterns: updatePatterns, match: matchUpdate},
	{name: "detail", patterns: detailPatterns, match: matchID(GetTaskByID)},
	{name: "delete", patterns: deletePatterns, match: matchID(DeleteTask)},
}

// Parse maps an utterance onto a tool name and its arguments. It is a pure
// function and safe for concurrent use.
func Parse(input string) Result {
	u := normalize(input)
	if u.text == "" {
		return none()
	}

	for _, g := range groups {
		subjects := []string{u.lower}
		if g.name == "create" {
			subjects = []string{u.raw}
			if u.text != u.raw {
				subjects = append(subjects, u.text)
			}
		}
		for _, subject := range subjects {
			for _, p := range g.patterns {
				m := p.FindStringSubmatch(subject)
				if m == nil {
					continue
				}
				if r, ok := g.match(m, u); ok {
					return r
				}
			}
		}
	}

	return fallback(u)
}

func matchList(_ []string, u utterance) (Result, bool) {
	args := map[string]any{}
	status, ok := findCanonical(u.lower)
	if !ok {
		status, ok = findAlias(u.lower)
	}
	if ok {
		args["status"] = status
	}
	return Result{Intent: ListTasks, Args: args}, true
}

func matchCreate(m []string, _ utterance) (Result, bool) {
	title := CleanTitle(m[1])
	if title == "" {
		return Result{}, false
	}
	return Result{Intent: CreateTask, Args: map[string]any{"title": title}}, true
}

func matchUpdate(m []string, _ utterance) (Result, bool) {
	id := idArg(m[1])
	raw := strings.TrimSpace(m[2])
	status, ok := ResolveStatus(raw)
	if !ok {
		status = raw
	}
	return Result{Intent: UpdateTaskStatus, Args: map[string]any{"id": id, "status": status}}, true
}

func matchID(name Name) func([]string, utterance) (Result, bool) {
	return func(m []string, _ utterance) (Result, bool) {
		return Result{Intent: name, Args: map[string]any{"id": idArg(m[1])}}, true
	}
}

// fallback runs when no group matched: a bare number with a status word is a
// status update, a number with detail vocabulary is a lookup, and any task
// vocabulary defaults to listing everything.
func fallback(u utterance) Result {
	if n := firstNumber.FindString(u.lower); n != "" {
		id := idArg(n)
		if status, ok := findAlias(u.lower); ok {
			return Result{Intent: UpdateTaskStatus, Args: map[string]any{"id": id, "status": status}}
		}
		if containsAny(u.lower, detailWords) {
			return Result{Intent: GetTaskByID, Args: map[string]any{"id": id}}
		}
	}

	if containsAny(u.lower, taskWords) {
		return Result{Intent: ListTasks, Args: map[string]any{}}
	}
	return none()
}

// CleanTitle strips trailing creation verbs, surrounding whitespace and
// quote characters from a captured title. A title that legitimately ends
// with one of the verbs loses it.
func CleanTitle(captured string) string {
	title := strings.TrimSpace(captured)
	title = trailingVerbs.ReplaceAllString(title, "")
	return strings.Trim(strings.TrimSpace(title), `"'`)
}

// idArg converts a matched digit run to an int. A run too long for int is
// passed on as the digit string and rejected by the executor.
func idArg(digits string) any {
	id, err := strconv.Atoi(digits)
	if err != nil {
		return digits
	}
	return id
}

func containsAny(text string, words []string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}
