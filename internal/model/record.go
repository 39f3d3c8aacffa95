package model

// Kind is a backend collection name
type Kind string

const (
	KindTasks      Kind = "tasks"
	KindActivities Kind = "activities"
	KindMatters    Kind = "matters"
	KindNotes      Kind = "notes"
)

var Kinds = []Kind{KindTasks, KindActivities, KindMatters, KindNotes}

func ParseKind(s string) (Kind, bool) {
	for _, k := range Kinds {
		if string(k) == s {
			return k, true
		}
	}
	return "", false
}

// Singular returns the label used on forms ("task", "note", ...)
func (k Kind) Singular() string {
	switch k {
	case KindActivities:
		return "activity"
	case KindTasks, KindMatters, KindNotes:
		return string(k[:len(k)-1])
	}
	return string(k)
}

type Record struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Status      string    `json:"status,omitempty"`
	Completed   bool      `json:"completed"`
	Matter      string    `json:"matter,omitempty"`
	User        string    `json:"user,omitempty"`
	Created     DateTime  `json:"created"`
	Updated     DateTime  `json:"updated"`
}

// Fields is the form payload sent on create/update. Nil pointers are left out of PATCH bodies.
type Fields struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Status      *string `json:"status,omitempty"`
	Completed   *bool   `json:"completed,omitempty"`
	Matter      *string `json:"matter,omitempty"`
	User        *string `json:"user,omitempty"`
}

type ListResult struct {
	Page       int      `json:"page"`
	PerPage    int      `json:"perPage"`
	TotalItems int      `json:"totalItems"`
	TotalPages int      `json:"totalPages"`
	Items      []Record `json:"items"`
}
