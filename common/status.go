package common

//go:generate enumer -json -sql -type Status -trimprefix Status

// Status of a MergeJob
type Status int

const (
	StatusNEW Status = iota
	StatusPENDING
	StatusDONE
	StatusFAILED
	StatusRETRY
)
