package database

const (
	// PrefixHealth defines the prefix of the health realm.
	PrefixHealth byte = iota
	// PrefixVersion defines the prefix of the schema version realm.
	PrefixVersion
	// PrefixTangle defines the storage prefix of the transactions, milestones and their indexes.
	PrefixTangle
)
