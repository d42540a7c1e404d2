package db

const (
	// timeFormat is how timestamps are stored. Always UTC.
	timeFormat = "2006-01-02 15:04:05"

	// defaultEventLimit caps GetKeyEvents when no limit is given.
	defaultEventLimit = 100
)
