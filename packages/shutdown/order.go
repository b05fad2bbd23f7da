package shutdown

const (
	PriorityDatabase = iota
	PriorityTangle
	PriorityLedger
	PriorityMilestoneTracker
	PriorityRequester
	PriorityTipSelection
	PriorityNotification
	PriorityPrometheus
	PriorityWebAPI
	PriorityHealthz
)
