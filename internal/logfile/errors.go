package logfile

import "fmt"

// InvalidFormatError indicates the load attempt failed because the log is
// structurally unusable: the decoder rejected the byte stream, or no
// synchronization record was ever observed. Fatal to the attempt; no
// partially aggregated state is returned alongside it.
type InvalidFormatError struct {
	Reason string
	Err    error
}

func (e *InvalidFormatError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid data log file: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("invalid data log file: %s", e.Reason)
}

func (e *InvalidFormatError) Unwrap() error { return e.Err }

// UnknownEntryError indicates a data record referenced an entry id with no
// prior start record. Fatal to the load attempt.
type UnknownEntryError struct {
	Entry int
}

func (e *UnknownEntryError) Error() string {
	return fmt.Sprintf("data record references unknown entry %d", e.Entry)
}
