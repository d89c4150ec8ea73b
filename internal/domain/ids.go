package domain

// RecordID identifies a record within one loaded record set.
// It is opaque: its format is controlled by whatever produced the data.
type RecordID string
