package command

// Sink is the logical log framework's consumption hook: addCommand at
// prepare time, injectCommand during recovery replay. The log
// framework itself — durable storage, fsync discipline, on-disk layout
// — is out of scope; this package only carries the seam.
type Sink interface {
	AddCommand(cmd Command) error
	InjectCommand(cmd Command) error
}

// Log is an in-memory ordered command log: every AddCommand or
// InjectCommand call appends to the same sequence, in the order
// received. Used directly by tests and by the bench CLI in place of a
// durable log framework.
type Log struct {
	commands []Command
}

// NewLog builds an empty in-memory log.
func NewLog() *Log {
	return &Log{}
}

// AddCommand appends a freshly prepared command.
func (l *Log) AddCommand(cmd Command) error {
	l.commands = append(l.commands, cmd)
	return nil
}

// InjectCommand appends a command being replayed from a durable log.
// For this in-memory stand-in the two entrypoints behave identically;
// a real log framework distinguishes them by write path (new append vs.
// re-reading an existing record).
func (l *Log) InjectCommand(cmd Command) error {
	l.commands = append(l.commands, cmd)
	return nil
}

// Commands returns every command appended so far, in order.
func (l *Log) Commands() []Command {
	return l.commands
}

// Len reports how many commands are in the log.
func (l *Log) Len() int {
	return len(l.commands)
}
