package db

// Store is the interface for all task persistence. Both SQLite (local) and
// PostgreSQL (DATABASE_URL) backends implement it.
type Store interface {
	// Close closes the database connection.
	Close() error

	CreateTask(input CreateTaskInput) (*Task, error)
	GetTask(id int64) (*Task, error)
	ListTasks(opts ListOptions) ([]*Task, error)
	UpdateTask(id int64, input UpdateTaskInput) (*Task, error)
	UpdateTaskStatus(id int64, status Status) (*Task, error)
	DeleteTask(id int64) error

	// CountByStatus returns the number of tasks per status. Statuses with no
	// tasks are present with a zero count.
	CountByStatus() (map[Status]int, error)

	// ImportTask writes a task with its original id and timestamps, replacing
	// any existing row with the same id.
	ImportTask(t *Task) error
}
